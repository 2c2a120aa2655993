package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/clientbook-api/internal/domain/entity"
	"github.com/sangkips/clientbook-api/internal/domain/identity"
)

// BookingRepository reads the booking history owned by the booking subsystem.
// Soft-deleted bookings are never returned.
type BookingRepository interface {
	GetByID(ctx context.Context, businessID, id uuid.UUID) (*entity.Booking, error)

	// FindForIdentity returns non-cancelled bookings matching the filter,
	// newest first, at most limit of them.
	FindForIdentity(ctx context.Context, businessID uuid.UUID, filter identity.Filter, limit int) ([]entity.Booking, error)

	// CountCancelledForIdentity counts cancelled bookings matching the filter.
	CountCancelledForIdentity(ctx context.Context, businessID uuid.UUID, filter identity.Filter) (int64, error)

	// AssignCustomer links a booking to the client it resolved to.
	AssignCustomer(ctx context.Context, businessID, bookingID, clientID uuid.UUID) error
}
