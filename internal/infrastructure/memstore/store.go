// Package memstore keeps every repository in process memory. It backs the
// "memory" database driver for local runs and the service tests.
package memstore

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/clientbook-api/internal/domain/entity"
)

// Store holds all records behind one lock.
type Store struct {
	mu          sync.RWMutex
	clients     map[uuid.UUID]*entity.Client
	bookings    map[uuid.UUID]*entity.Booking
	businesses  map[uuid.UUID]*entity.Business
	idempotency map[string]*entity.IdempotencyKey
	reminders   []entity.ReminderLog
	now         func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{
		clients:     make(map[uuid.UUID]*entity.Client),
		bookings:    make(map[uuid.UUID]*entity.Booking),
		businesses:  make(map[uuid.UUID]*entity.Business),
		idempotency: make(map[string]*entity.IdempotencyKey),
		now:         time.Now,
	}
}

// SetClock replaces the clock used for timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Clients returns the client repository view of the store.
func (s *Store) Clients() *ClientRepository { return &ClientRepository{s: s} }

// Bookings returns the booking repository view of the store.
func (s *Store) Bookings() *BookingRepository { return &BookingRepository{s: s} }

// Businesses returns the business repository view of the store.
func (s *Store) Businesses() *BusinessRepository { return &BusinessRepository{s: s} }

// Idempotency returns the idempotency key repository view of the store.
func (s *Store) Idempotency() *IdempotencyRepository { return &IdempotencyRepository{s: s} }

// Reminders returns the reminder log repository view of the store.
func (s *Store) Reminders() *ReminderLogRepository { return &ReminderLogRepository{s: s} }

func cloneClient(c *entity.Client) *entity.Client {
	cp := *c
	cp.Tags = append([]string{}, c.Tags...)
	cp.Notes = append([]entity.ClientNote{}, c.Notes...)
	cp.Stats.LastVisit = cloneString(c.Stats.LastVisit)
	cp.Stats.FirstVisit = cloneString(c.Stats.FirstVisit)
	return &cp
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
