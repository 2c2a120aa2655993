// Package storage opens the repositories for the configured database driver.
package storage

import (
	"context"
	"fmt"

	"github.com/sangkips/clientbook-api/internal/config"
	"github.com/sangkips/clientbook-api/internal/domain/repository"
	"github.com/sangkips/clientbook-api/internal/infrastructure/database"
	"github.com/sangkips/clientbook-api/internal/infrastructure/memstore"
	"github.com/sangkips/clientbook-api/internal/infrastructure/mongostore"
	gormrepo "github.com/sangkips/clientbook-api/internal/infrastructure/repository"
	applog "github.com/sangkips/clientbook-api/pkg/logger"
)

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Repositories is the full set of stores the services need.
type Repositories struct {
	Driver      string
	Clients     repository.ClientRepository
	Bookings    repository.BookingRepository
	Businesses  repository.BusinessRepository
	Idempotency repository.IdempotencyRepository
	Reminders   repository.ReminderLogRepository

	close func() error
}

// Close releases the underlying connection.
func (r *Repositories) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}

// Open connects to the configured driver, prepares its schema and seeds the
// configured business.
func Open(ctx context.Context, cfg *config.Config) (*Repositories, error) {
	var (
		repos *Repositories
		err   error
	)
	switch cfg.Database.Driver {
	case DriverPostgres, "":
		repos, err = openPostgres(cfg)
	case DriverMongo:
		repos, err = openMongo(ctx, cfg)
	case DriverMemory:
		repos = NewMemory(memstore.New())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	if err != nil {
		return nil, err
	}

	if _, err := database.SeedBusiness(ctx, repos.Businesses, cfg.Seed); err != nil {
		_ = repos.Close()
		return nil, err
	}

	applog.App().WithField("driver", repos.Driver).Info("Storage ready")
	return repos, nil
}

func openPostgres(cfg *config.Config) (*Repositories, error) {
	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}

	return &Repositories{
		Driver:      DriverPostgres,
		Clients:     gormrepo.NewClientRepository(db),
		Bookings:    gormrepo.NewBookingRepository(db),
		Businesses:  gormrepo.NewBusinessRepository(db),
		Idempotency: gormrepo.NewIdempotencyRepository(db),
		Reminders:   gormrepo.NewReminderLogRepository(db),
		close: func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}, nil
}

func openMongo(ctx context.Context, cfg *config.Config) (*Repositories, error) {
	client, err := database.NewMongoClient(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	db := client.Database(cfg.Database.MongoDatabase)
	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		_ = database.CloseMongo(client)
		return nil, err
	}

	store := mongostore.New(db)
	return &Repositories{
		Driver:      DriverMongo,
		Clients:     store.Clients(),
		Bookings:    store.Bookings(),
		Businesses:  store.Businesses(),
		Idempotency: store.Idempotency(),
		Reminders:   store.Reminders(),
		close:       func() error { return database.CloseMongo(client) },
	}, nil
}

// NewMemory wraps an in-process store.
func NewMemory(store *memstore.Store) *Repositories {
	return &Repositories{
		Driver:      DriverMemory,
		Clients:     store.Clients(),
		Bookings:    store.Bookings(),
		Businesses:  store.Businesses(),
		Idempotency: store.Idempotency(),
		Reminders:   store.Reminders(),
	}
}
