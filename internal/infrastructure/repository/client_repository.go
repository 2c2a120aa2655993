package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/clientbook-api/internal/domain/entity"
	"github.com/sangkips/clientbook-api/internal/domain/identity"
	domainRepo "github.com/sangkips/clientbook-api/internal/domain/repository"
	"github.com/sangkips/clientbook-api/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository. Identifier uniqueness
// is enforced by the partial unique indexes created in database.EnsureIndexes.
func NewClientRepository(db *gorm.DB) domainRepo.ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *entity.Client) error {
	return translateError(r.db.WithContext(ctx).Create(client).Error)
}

func (r *clientRepository) GetByID(ctx context.Context, businessID, id uuid.UUID) (*entity.Client, error) {
	return r.first(ctx, businessID, "id = ?", id)
}

func (r *clientRepository) FindByEmail(ctx context.Context, businessID uuid.UUID, emailKey string) (*entity.Client, error) {
	if emailKey == "" {
		return nil, nil
	}
	return r.first(ctx, businessID, "email_normalized = ?", emailKey)
}

func (r *clientRepository) FindByPhone(ctx context.Context, businessID uuid.UUID, phoneKey string) (*entity.Client, error) {
	if phoneKey == "" {
		return nil, nil
	}
	return r.first(ctx, businessID, "phone_normalized = ?", phoneKey)
}

func (r *clientRepository) first(ctx context.Context, businessID uuid.UUID, query string, args ...interface{}) (*entity.Client, error) {
	var client entity.Client
	err := r.db.WithContext(ctx).
		Scopes(ActiveClientScope(businessID)).
		Where(query, args...).
		Order("created_at ASC").
		First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) ScanByPhone(ctx context.Context, businessID uuid.UUID, phoneKey string, limit int) (*entity.Client, error) {
	if phoneKey == "" || limit <= 0 {
		return nil, nil
	}

	var candidates []entity.Client
	err := r.db.WithContext(ctx).
		Scopes(ActiveClientScope(businessID)).
		Where("phone <> '' AND (phone_normalized IS NULL OR phone_normalized = '')").
		Order("created_at ASC").
		Limit(limit).
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		if identity.NormalizePhone(candidates[i].Phone) == phoneKey {
			return &candidates[i], nil
		}
	}
	return nil, nil
}

func (r *clientRepository) Update(ctx context.Context, businessID, id uuid.UUID, patch domainRepo.ClientPatch) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var client entity.Client
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Scopes(ActiveClientScope(businessID)).
			First(&client, "id = ?", id).Error
		if err != nil {
			return err
		}

		patch.Apply(&client, time.Now())
		return tx.Save(&client).Error
	})
	return translateError(err)
}

func (r *clientRepository) List(ctx context.Context, businessID uuid.UUID, filter *domainRepo.ClientFilter, sort domainRepo.ClientSort, params *pagination.PaginationParams) ([]entity.Client, int64, error) {
	var clients []entity.Client
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Client{}).
		Scopes(ActiveClientScope(businessID), ClientFilterScope(filter))

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Scopes(ClientSortScope(sort)).
		Offset(params.Offset()).Limit(params.PerPage).
		Find(&clients).Error

	return clients, total, err
}

func (r *clientRepository) Count(ctx context.Context, businessID uuid.UUID, filter *domainRepo.ClientFilter) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.Client{}).
		Scopes(ActiveClientScope(businessID), ClientFilterScope(filter)).
		Count(&total).Error
	return total, err
}
