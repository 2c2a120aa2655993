package database

import (
	"context"
	"testing"

	"github.com/sangkips/clientbook-api/internal/config"
	"github.com/sangkips/clientbook-api/internal/infrastructure/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeedBusiness(t *testing.T) {
	b := NewSeedBusiness(config.SeedConfig{BusinessSlug: "studio", BusinessTimezone: "Europe/Paris"})

	assert.Equal(t, "studio", b.Name)
	assert.True(t, b.Active)
	assert.Equal(t, "Europe/Paris", b.Settings.Data().Timezone)
	assert.Equal(t, "Europe/Paris", b.Location().String())
}

func TestSeedBusiness(t *testing.T) {
	ctx := context.Background()
	businesses := memstore.New().Businesses()
	cfg := config.SeedConfig{BusinessName: "Studio", BusinessSlug: "studio"}

	created, err := SeedBusiness(ctx, businesses, cfg)
	require.NoError(t, err)
	require.NotNil(t, created)

	again, err := SeedBusiness(ctx, businesses, cfg)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	none, err := SeedBusiness(ctx, businesses, config.SeedConfig{})
	require.NoError(t, err)
	assert.Nil(t, none)
}
