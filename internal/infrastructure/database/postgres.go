package database

import (
	"fmt"

	"github.com/sangkips/clientbook-api/internal/config"
	"github.com/sangkips/clientbook-api/internal/domain/entity"
	applog "github.com/sangkips/clientbook-api/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB to set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	applog.App().Info("Successfully connected to PostgreSQL database")
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	applog.App().Info("Running database migrations...")

	err := db.AutoMigrate(
		&entity.Business{},
		&entity.Client{},
		&entity.Booking{},
		&entity.IdempotencyKey{},
		&entity.ReminderLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := EnsureIndexes(db); err != nil {
		return err
	}

	applog.App().Info("Database migrations completed successfully")
	return nil
}

// clientIndexes enforce at most one active client per identifier within a
// business. Phones shorter than seven digits are not identifiers.
var clientIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_clients_active_email
		ON clients (business_id, email_normalized)
		WHERE active AND email_normalized <> ''`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_clients_active_phone
		ON clients (business_id, phone_normalized)
		WHERE active AND length(phone_normalized) >= 7`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_customer_email
		ON bookings (business_id, lower(trim(customer_email)))`,
}

// EnsureIndexes creates the partial and expression indexes AutoMigrate
// cannot express.
func EnsureIndexes(db *gorm.DB) error {
	for _, stmt := range clientIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
