package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/clientbook-api/internal/domain/entity"
	"github.com/sangkips/clientbook-api/internal/domain/enum"
	"github.com/sangkips/clientbook-api/internal/domain/repository"
	"github.com/sangkips/clientbook-api/pkg/apperror"
	"github.com/sangkips/clientbook-api/pkg/money"
)

// DefaultBookingHistoryLimit caps the bookings read per recompute.
const DefaultBookingHistoryLimit = 500

// StatsAggregator rebuilds a client's lifetime stats from booking history.
type StatsAggregator struct {
	clients      repository.ClientRepository
	bookings     repository.BookingRepository
	historyLimit int
	priceMode    money.PriceMode
}

// NewStatsAggregator creates a new stats aggregator
func NewStatsAggregator(clients repository.ClientRepository, bookings repository.BookingRepository, historyLimit int, priceMode money.PriceMode) *StatsAggregator {
	if historyLimit <= 0 {
		historyLimit = DefaultBookingHistoryLimit
	}
	return &StatsAggregator{
		clients:      clients,
		bookings:     bookings,
		historyLimit: historyLimit,
		priceMode:    priceMode,
	}
}

// Recompute derives the client's stats from every booking linked to it or
// carrying its email or phone, and replaces the stored stats wholesale.
func (a *StatsAggregator) Recompute(ctx context.Context, businessID, clientID uuid.UUID) (*entity.ClientStats, error) {
	client, err := a.clients.GetByID(ctx, businessID, clientID)
	if err != nil {
		return nil, fmt.Errorf("load client: %w", err)
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}

	filter := client.IdentityFilter()
	bookings, err := a.bookings.FindForIdentity(ctx, businessID, filter, a.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("load booking history: %w", err)
	}
	cancelled, err := a.bookings.CountCancelledForIdentity(ctx, businessID, filter)
	if err != nil {
		return nil, fmt.Errorf("count cancelled bookings: %w", err)
	}

	stats := ComputeStats(bookings, cancelled, a.priceMode)
	if err := a.clients.Update(ctx, businessID, clientID, repository.ClientPatch{Stats: &stats}); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NewNotFoundError("Client")
		}
		return nil, fmt.Errorf("save client stats: %w", err)
	}
	return &stats, nil
}

// ComputeStats is the pure stats function. bookings must exclude cancelled
// bookings; cancellations is their separate count.
func ComputeStats(bookings []entity.Booking, cancellations int64, mode money.PriceMode) entity.ClientStats {
	stats := entity.ClientStats{Cancellations: int(cancellations)}

	var first, last string
	for _, b := range bookings {
		switch b.Status {
		case enum.BookingStatusCompleted:
			stats.TotalBookings++
			stats.TotalSpent += money.ToMinor(b.Service.Price, mode)
		case enum.BookingStatusNoShow:
			stats.NoShows++
		}

		if b.Date == "" {
			continue
		}
		if first == "" || b.Date < first {
			first = b.Date
		}
		if b.Date > last {
			last = b.Date
		}
	}

	if first != "" {
		stats.FirstVisit = &first
		stats.LastVisit = &last
	}
	if stats.TotalBookings > 0 {
		stats.AverageSpend = stats.TotalSpent / int64(stats.TotalBookings)
	}
	return stats
}
