package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sangkips/clientbook-api/pkg/logger"
	"github.com/sangkips/clientbook-api/pkg/money"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	Identity  IdentityConfig
	Stats     StatsConfig
	Reminder  ReminderConfig
	Seed      SeedConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

// DatabaseConfig selects the storage driver: "postgres", "mongo" or "memory".
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string

	MongoURI      string
	MongoDatabase string
	MongoTimeout  time.Duration
}

type JWTConfig struct {
	Secret      string
	Issuer      string
	ExpiryHours time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// RateLimitConfig is a per-business token bucket: Requests per Duration seconds.
type RateLimitConfig struct {
	Requests int
	Duration int
}

type LogConfig struct {
	Level      string
	Format     string
	Output     string
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type IdentityConfig struct {
	// PhoneScanLimit caps the slow-path scan for clients without a stored
	// phone key. 0 disables the scan.
	PhoneScanLimit int
}

type StatsConfig struct {
	BookingHistoryLimit int
	// LegacyPriceHeuristic reads prices under 100 as major units.
	LegacyPriceHeuristic bool
}

type ReminderConfig struct {
	Enabled        bool
	Schedule       string
	Cooldown       time.Duration
	TwilioSID      string
	TwilioToken    string
	TwilioFrom     string
	TwilioWhatsApp string
}

// SeedConfig describes a business created at startup when it does not exist.
type SeedConfig struct {
	BusinessName     string
	BusinessSlug     string
	BusinessTimezone string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	viper.SetDefault("APP_NAME", "clientbook-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "clientbook")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "UTC")
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DATABASE", "clientbook")
	viper.SetDefault("MONGO_TIMEOUT_SECONDS", 10)
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_ISSUER", "clientbook-api")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("LOG_OUTPUT", "stdout")
	viper.SetDefault("LOG_PATH", "./logs")
	viper.SetDefault("LOG_MAX_SIZE_MB", 100)
	viper.SetDefault("LOG_MAX_BACKUPS", 5)
	viper.SetDefault("LOG_MAX_AGE_DAYS", 30)
	viper.SetDefault("IDENTITY_PHONE_SCAN_LIMIT", 500)
	viper.SetDefault("STATS_BOOKING_HISTORY_LIMIT", 500)
	viper.SetDefault("STATS_LEGACY_PRICE_HEURISTIC", false)
	viper.SetDefault("REMINDER_ENABLED", false)
	viper.SetDefault("REMINDER_SCHEDULE", "0 9 * * *")
	viper.SetDefault("REMINDER_COOLDOWN_DAYS", 30)
	viper.SetDefault("SEED_BUSINESS_TIMEZONE", "Europe/London")

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		Database: DatabaseConfig{
			Driver:        strings.ToLower(viper.GetString("DB_DRIVER")),
			Host:          viper.GetString("DB_HOST"),
			Port:          viper.GetString("DB_PORT"),
			Name:          viper.GetString("DB_NAME"),
			User:          viper.GetString("DB_USER"),
			Password:      viper.GetString("DB_PASSWORD"),
			SSLMode:       viper.GetString("DB_SSL_MODE"),
			Timezone:      viper.GetString("DB_TIMEZONE"),
			MongoURI:      viper.GetString("MONGO_URI"),
			MongoDatabase: viper.GetString("MONGO_DATABASE"),
			MongoTimeout:  time.Duration(viper.GetInt("MONGO_TIMEOUT_SECONDS")) * time.Second,
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			Issuer:      viper.GetString("JWT_ISSUER"),
			ExpiryHours: time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Log: LogConfig{
			Level:      viper.GetString("LOG_LEVEL"),
			Format:     viper.GetString("LOG_FORMAT"),
			Output:     viper.GetString("LOG_OUTPUT"),
			Path:       viper.GetString("LOG_PATH"),
			MaxSizeMB:  viper.GetInt("LOG_MAX_SIZE_MB"),
			MaxBackups: viper.GetInt("LOG_MAX_BACKUPS"),
			MaxAgeDays: viper.GetInt("LOG_MAX_AGE_DAYS"),
		},
		Identity: IdentityConfig{
			PhoneScanLimit: viper.GetInt("IDENTITY_PHONE_SCAN_LIMIT"),
		},
		Stats: StatsConfig{
			BookingHistoryLimit:  viper.GetInt("STATS_BOOKING_HISTORY_LIMIT"),
			LegacyPriceHeuristic: viper.GetBool("STATS_LEGACY_PRICE_HEURISTIC"),
		},
		Reminder: ReminderConfig{
			Enabled:        viper.GetBool("REMINDER_ENABLED"),
			Schedule:       viper.GetString("REMINDER_SCHEDULE"),
			Cooldown:       time.Duration(viper.GetInt("REMINDER_COOLDOWN_DAYS")) * 24 * time.Hour,
			TwilioSID:      viper.GetString("TWILIO_ACCOUNT_SID"),
			TwilioToken:    viper.GetString("TWILIO_AUTH_TOKEN"),
			TwilioFrom:     viper.GetString("TWILIO_FROM_NUMBER"),
			TwilioWhatsApp: viper.GetString("TWILIO_WHATSAPP_NUMBER"),
		},
		Seed: SeedConfig{
			BusinessName:     viper.GetString("SEED_BUSINESS_NAME"),
			BusinessSlug:     viper.GetString("SEED_BUSINESS_SLUG"),
			BusinessTimezone: viper.GetString("SEED_BUSINESS_TIMEZONE"),
		},
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

// LoggerConfig converts the log section for logger.Init.
func (c LogConfig) LoggerConfig() *logger.Config {
	return &logger.Config{
		Level:      c.Level,
		Format:     c.Format,
		Output:     c.Output,
		Path:       c.Path,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
	}
}

// PriceMode returns how stored booking prices are read.
func (c StatsConfig) PriceMode() money.PriceMode {
	if c.LegacyPriceHeuristic {
		return money.PriceModeLegacy
	}
	return money.PriceModeMinor
}
