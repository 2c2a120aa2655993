package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/clientbook-api/internal/domain/entity"
	domainRepo "github.com/sangkips/clientbook-api/internal/domain/repository"
	"gorm.io/gorm"
)

type businessRepository struct {
	db *gorm.DB
}

// NewBusinessRepository creates a new business repository
func NewBusinessRepository(db *gorm.DB) domainRepo.BusinessRepository {
	return &businessRepository{db: db}
}

func (r *businessRepository) Create(ctx context.Context, business *entity.Business) error {
	return r.db.WithContext(ctx).Create(business).Error
}

func (r *businessRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Business, error) {
	var business entity.Business
	err := r.db.WithContext(ctx).First(&business, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &business, err
}

func (r *businessRepository) GetBySlug(ctx context.Context, slug string) (*entity.Business, error) {
	var business entity.Business
	err := r.db.WithContext(ctx).First(&business, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &business, err
}

func (r *businessRepository) ListActive(ctx context.Context) ([]entity.Business, error) {
	var businesses []entity.Business
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("name ASC").
		Find(&businesses).Error
	return businesses, err
}
