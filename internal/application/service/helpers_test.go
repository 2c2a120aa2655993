package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/clientbook-api/internal/domain/entity"
	"github.com/sangkips/clientbook-api/internal/domain/enum"
	"github.com/sangkips/clientbook-api/internal/infrastructure/memstore"
	"github.com/sangkips/clientbook-api/pkg/money"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

// fixture wires every service against one in-memory store with a pinned clock.
type fixture struct {
	store      *memstore.Store
	businessID uuid.UUID
	now        time.Time

	resolver   *IdentityResolver
	aggregator *StatsAggregator
	segments   *SegmentClassifier
	clients    *ClientService
	events     *BookingEventService
	transfer   *ClientTransferService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store: memstore.New(),
		now:   time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	f.store.SetClock(clock)

	business := &entity.Business{
		Name:     "Studio B1",
		Slug:     "b1",
		Active:   true,
		Settings: datatypes.NewJSONType(entity.BusinessSettings{Timezone: "UTC", RemindersEnabled: true}),
	}
	require.NoError(t, f.store.Businesses().Create(context.Background(), business))
	f.businessID = business.ID

	f.resolver = NewIdentityResolver(f.store.Clients(), 100)
	f.aggregator = NewStatsAggregator(f.store.Clients(), f.store.Bookings(), 0, money.PriceModeMinor)
	f.segments = NewSegmentClassifier(f.store.Clients(), f.store.Businesses(), clock)
	f.clients = NewClientService(f.store.Clients(), f.store.Bookings(), f.aggregator, f.segments, clock)
	f.events = NewBookingEventService(f.resolver, f.aggregator, f.store.Bookings())
	f.transfer = NewClientTransferService(f.store.Clients())
	return f
}

func (f *fixture) booking(t *testing.T, name, email, phone, date string, status enum.BookingStatus, price int64) *entity.Booking {
	t.Helper()
	b := &entity.Booking{
		BusinessID: f.businessID,
		Customer:   entity.BookingCustomer{Name: name, Email: email, Phone: phone},
		Date:       date,
		Status:     status,
		Service:    entity.BookingService{Name: "Cut", Price: price},
	}
	require.NoError(t, f.store.Bookings().Save(context.Background(), b))
	return b
}

func (f *fixture) setStatus(t *testing.T, b *entity.Booking, status enum.BookingStatus) {
	t.Helper()
	stored, err := f.store.Bookings().GetByID(context.Background(), f.businessID, b.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	stored.Status = status
	require.NoError(t, f.store.Bookings().Save(context.Background(), stored))
}

func (f *fixture) client(t *testing.T, id uuid.UUID) *entity.Client {
	t.Helper()
	c, err := f.store.Clients().GetByID(context.Background(), f.businessID, id)
	require.NoError(t, err)
	require.NotNil(t, c)
	return c
}

func ptr[T any](v T) *T { return &v }
