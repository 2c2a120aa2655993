package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/sangkips/clientbook-api/internal/domain/entity"
	"github.com/sangkips/clientbook-api/internal/domain/enum"
	"github.com/sangkips/clientbook-api/internal/domain/identity"
	"github.com/sangkips/clientbook-api/internal/domain/repository"
)

// BookingRepository implements repository.BookingRepository in memory.
type BookingRepository struct {
	s *Store
}

var _ repository.BookingRepository = (*BookingRepository)(nil)

// Save inserts or replaces a booking. The booking subsystem owns bookings,
// so this is only used to seed the memory driver and tests.
func (r *BookingRepository) Save(ctx context.Context, b *entity.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	now := r.s.now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	cp := *b
	r.s.bookings[b.ID] = &cp
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, businessID, id uuid.UUID) (*entity.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.bookings[id]
	if !ok || b.BusinessID != businessID || b.DeletedAt.Valid {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *BookingRepository) FindForIdentity(ctx context.Context, businessID uuid.UUID, filter identity.Filter, limit int) ([]entity.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []entity.Booking
	for _, b := range r.s.bookings {
		if b.Status == enum.BookingStatusCancelled || !r.matches(b, businessID, filter) {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *BookingRepository) CountCancelledForIdentity(ctx context.Context, businessID uuid.UUID, filter identity.Filter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, b := range r.s.bookings {
		if b.Status == enum.BookingStatusCancelled && r.matches(b, businessID, filter) {
			n++
		}
	}
	return n, nil
}

func (r *BookingRepository) AssignCustomer(ctx context.Context, businessID, bookingID, clientID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookings[bookingID]
	if !ok || b.BusinessID != businessID || b.DeletedAt.Valid {
		return repository.ErrNotFound
	}
	id := clientID
	b.CustomerID = &id
	b.UpdatedAt = r.s.now()
	return nil
}

func (r *BookingRepository) matches(b *entity.Booking, businessID uuid.UUID, f identity.Filter) bool {
	if b.BusinessID != businessID || b.DeletedAt.Valid {
		return false
	}
	return f.Matches(b.CustomerID, b.Customer.Email, b.Customer.Phone)
}
