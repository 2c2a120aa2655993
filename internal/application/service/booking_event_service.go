package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/clientbook-api/internal/domain/entity"
	"github.com/sangkips/clientbook-api/internal/domain/enum"
	"github.com/sangkips/clientbook-api/internal/domain/identity"
	"github.com/sangkips/clientbook-api/internal/domain/repository"
	"github.com/sangkips/clientbook-api/pkg/apperror"
	"github.com/sangkips/clientbook-api/pkg/logger"
	"github.com/sirupsen/logrus"
)

// BookingEventService reacts to booking lifecycle events: it links new
// bookings to a client and keeps that client's stats current.
type BookingEventService struct {
	resolver   *IdentityResolver
	aggregator *StatsAggregator
	bookings   repository.BookingRepository
	log        *logrus.Logger
}

// NewBookingEventService creates a new booking event service
func NewBookingEventService(resolver *IdentityResolver, aggregator *StatsAggregator, bookings repository.BookingRepository) *BookingEventService {
	return &BookingEventService{
		resolver:   resolver,
		aggregator: aggregator,
		bookings:   bookings,
		log:        logger.GetLogger("booking-events"),
	}
}

// BookingCreatedInput describes a newly created booking. When BookingID is set
// and Contact is empty, contact and date are read from the stored booking.
type BookingCreatedInput struct {
	BookingID *uuid.UUID
	Contact   identity.Contact
	Date      string
	Source    enum.ClientSource
}

// BookingEventResult reports the client a booking resolved to. ClientID is
// nil for guest bookings that carry no usable identifier.
type BookingEventResult struct {
	ClientID  *uuid.UUID          `json:"client_id"`
	Created   bool                `json:"created"`
	MatchedBy enum.MatchKind      `json:"matched_by,omitempty"`
	Stats     *entity.ClientStats `json:"stats,omitempty"`
}

// OnBookingCreated resolves the booking contact, links the booking and
// recomputes the client's stats.
func (s *BookingEventService) OnBookingCreated(ctx context.Context, businessID uuid.UUID, input *BookingCreatedInput) (*BookingEventResult, error) {
	contact, date := input.Contact, input.Date
	if input.BookingID != nil && contact == (identity.Contact{}) {
		booking, err := s.bookings.GetByID(ctx, businessID, *input.BookingID)
		if err != nil {
			return nil, fmt.Errorf("load booking: %w", err)
		}
		if booking == nil {
			return nil, apperror.NewNotFoundError("Booking")
		}
		contact = identity.Contact{Name: booking.Customer.Name, Email: booking.Customer.Email, Phone: booking.Customer.Phone}
		if date == "" {
			date = booking.Date
		}
	}

	if date != "" && !validDate(date) {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "date", Message: "Date must be YYYY-MM-DD"}})
	}

	var observed *string
	if date != "" {
		observed = &date
	}

	res, err := s.resolver.Resolve(ctx, ResolveInput{
		BusinessID:   businessID,
		Contact:      contact,
		Source:       input.Source,
		ObservedDate: observed,
	})
	if err != nil {
		return nil, err
	}
	if res == nil {
		s.log.WithField("business_id", businessID).Debug("booking has no usable contact; kept as guest")
		return &BookingEventResult{}, nil
	}

	if input.BookingID != nil {
		err := s.bookings.AssignCustomer(ctx, businessID, *input.BookingID, res.ClientID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NewNotFoundError("Booking")
		}
		if err != nil {
			return nil, fmt.Errorf("link booking to client: %w", err)
		}
	}

	stats, err := s.aggregator.Recompute(ctx, businessID, res.ClientID)
	if err != nil {
		return nil, err
	}

	clientID := res.ClientID
	return &BookingEventResult{
		ClientID:  &clientID,
		Created:   res.Created,
		MatchedBy: res.MatchedBy,
		Stats:     stats,
	}, nil
}

// BookingStatusChangedInput names the affected client directly or through
// the booking it is linked to.
type BookingStatusChangedInput struct {
	ClientID  *uuid.UUID
	BookingID *uuid.UUID
}

// OnBookingStatusChanged recomputes stats for the affected client only.
// Status changes, cancellations and edits all go through here.
func (s *BookingEventService) OnBookingStatusChanged(ctx context.Context, businessID uuid.UUID, input *BookingStatusChangedInput) (*BookingEventResult, error) {
	clientID := input.ClientID
	if clientID == nil && input.BookingID != nil {
		booking, err := s.bookings.GetByID(ctx, businessID, *input.BookingID)
		if err != nil {
			return nil, fmt.Errorf("load booking: %w", err)
		}
		if booking == nil {
			return nil, apperror.NewNotFoundError("Booking")
		}
		clientID = booking.CustomerID
	}
	if clientID == nil {
		// guest booking: no client to refresh
		return &BookingEventResult{}, nil
	}

	stats, err := s.aggregator.Recompute(ctx, businessID, *clientID)
	if err != nil {
		return nil, err
	}
	return &BookingEventResult{ClientID: clientID, Stats: stats}, nil
}
