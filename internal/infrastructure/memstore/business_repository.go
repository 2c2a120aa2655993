package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/sangkips/clientbook-api/internal/domain/entity"
	"github.com/sangkips/clientbook-api/internal/domain/repository"
)

// BusinessRepository implements repository.BusinessRepository in memory.
type BusinessRepository struct {
	s *Store
}

var _ repository.BusinessRepository = (*BusinessRepository)(nil)

func (r *BusinessRepository) Create(ctx context.Context, b *entity.Business) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	now := r.s.now()
	b.CreatedAt, b.UpdatedAt = now, now
	cp := *b
	r.s.businesses[b.ID] = &cp
	return nil
}

func (r *BusinessRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Business, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.businesses[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *BusinessRepository) GetBySlug(ctx context.Context, slug string) (*entity.Business, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, b := range r.s.businesses {
		if b.Slug == slug {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *BusinessRepository) ListActive(ctx context.Context) ([]entity.Business, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []entity.Business
	for _, b := range r.s.businesses {
		if b.Active {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
