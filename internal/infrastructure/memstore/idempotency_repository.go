package memstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/clientbook-api/internal/domain/entity"
	"github.com/sangkips/clientbook-api/internal/domain/repository"
)

// IdempotencyRepository implements repository.IdempotencyRepository in memory.
type IdempotencyRepository struct {
	s *Store
}

var _ repository.IdempotencyRepository = (*IdempotencyRepository)(nil)

func idempotencyMapKey(businessID uuid.UUID, key string) string {
	return businessID.String() + "/" + key
}

func (r *IdempotencyRepository) GetByKey(ctx context.Context, businessID uuid.UUID, key string) (*entity.IdempotencyKey, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	k, ok := r.s.idempotency[idempotencyMapKey(businessID, key)]
	if !ok || r.s.now().After(k.ExpiresAt) {
		return nil, nil
	}
	cp := *k
	return &cp, nil
}

func (r *IdempotencyRepository) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if ikey.ID == uuid.Nil {
		ikey.ID = uuid.New()
	}
	ikey.CreatedAt = r.s.now()
	cp := *ikey
	r.s.idempotency[idempotencyMapKey(ikey.BusinessID, ikey.Key)] = &cp
	return nil
}

func (r *IdempotencyRepository) DeleteExpired(ctx context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	for k, v := range r.s.idempotency {
		if now.After(v.ExpiresAt) {
			delete(r.s.idempotency, k)
		}
	}
	return nil
}
