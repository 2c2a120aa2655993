package database

import (
	"context"
	"fmt"

	"github.com/sangkips/clientbook-api/internal/config"
	"github.com/sangkips/clientbook-api/internal/domain/entity"
	"github.com/sangkips/clientbook-api/internal/domain/repository"
	applog "github.com/sangkips/clientbook-api/pkg/logger"
	"github.com/sangkips/clientbook-api/pkg/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// NewSeedBusiness builds the business described by cfg with default settings.
func NewSeedBusiness(cfg config.SeedConfig) *entity.Business {
	settings := entity.DefaultBusinessSettings()
	if cfg.BusinessTimezone != "" {
		settings.Timezone = cfg.BusinessTimezone
	}
	name := cfg.BusinessName
	if name == "" {
		name = cfg.BusinessSlug
	}
	slug := cfg.BusinessSlug
	if slug == "" {
		slug = utils.Slugify(name)
	}
	return &entity.Business{
		Name:     name,
		Slug:     slug,
		Active:   true,
		Settings: datatypes.NewJSONType(settings),
	}
}

// SeedBusiness creates the configured business when it does not exist yet.
// It returns the stored business, or nil when nothing is configured.
func SeedBusiness(ctx context.Context, businesses repository.BusinessRepository, cfg config.SeedConfig) (*entity.Business, error) {
	if cfg.BusinessSlug == "" && cfg.BusinessName == "" {
		return nil, nil
	}

	business := NewSeedBusiness(cfg)
	existing, err := businesses.GetBySlug(ctx, business.Slug)
	if err != nil {
		return nil, fmt.Errorf("failed to look up seed business: %w", err)
	}
	if existing != nil {
		applog.App().WithField("slug", business.Slug).Info("Seed business already exists")
		return existing, nil
	}

	if err := businesses.Create(ctx, business); err != nil {
		return nil, fmt.Errorf("failed to seed business: %w", err)
	}
	applog.App().WithFields(logrus.Fields{
		"slug": business.Slug,
		"id":   business.ID,
	}).Info("Seed business created")
	return business, nil
}
