package storage

import (
	"context"
	"testing"

	"github.com/sangkips/clientbook-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMemorySeedsBusiness(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: DriverMemory},
		Seed:     config.SeedConfig{BusinessName: "Studio", BusinessSlug: "studio"},
	}

	repos, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer repos.Close()

	b, err := repos.Businesses.GetBySlug(context.Background(), "studio")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, "Studio", b.Name)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{Database: config.DatabaseConfig{Driver: "sqlite"}})
	assert.ErrorContains(t, err, "unsupported database driver")
}
