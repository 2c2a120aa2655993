package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/clientbook-api/internal/domain/entity"
)

// BusinessRepository defines the interface for business (tenant) lookups
type BusinessRepository interface {
	Create(ctx context.Context, business *entity.Business) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Business, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Business, error)
	// ListActive returns every active business, used by scheduled jobs.
	ListActive(ctx context.Context) ([]entity.Business, error)
}
