package config

import (
	"testing"
	"time"

	"github.com/sangkips/clientbook-api/pkg/money"
	"github.com/stretchr/testify/assert"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "Mongo")
	t.Setenv("IDENTITY_PHONE_SCAN_LIMIT", "25")
	t.Setenv("REMINDER_COOLDOWN_DAYS", "7")
	t.Setenv("STATS_LEGACY_PRICE_HEURISTIC", "true")

	cfg := Load()

	assert.Equal(t, "mongo", cfg.Database.Driver)
	assert.Equal(t, 25, cfg.Identity.PhoneScanLimit)
	assert.Equal(t, 7*24*time.Hour, cfg.Reminder.Cooldown)
	assert.True(t, cfg.Stats.LegacyPriceHeuristic)
	assert.Equal(t, money.PriceModeLegacy, cfg.Stats.PriceMode())
	assert.Equal(t, "0 9 * * *", cfg.Reminder.Schedule)
	assert.Equal(t, 500, cfg.Stats.BookingHistoryLimit)
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", User: "u", Password: "p", Name: "n", Port: "5432", SSLMode: "disable", Timezone: "UTC"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC", c.DSN())
}

func TestLoggerConfig(t *testing.T) {
	lc := LogConfig{Level: "debug", Format: "text", Output: "file", Path: "/tmp/logs", MaxSizeMB: 5}.LoggerConfig()
	assert.Equal(t, "debug", lc.Level)
	assert.Equal(t, "file", lc.Output)
	assert.Equal(t, 5, lc.MaxSizeMB)
}
