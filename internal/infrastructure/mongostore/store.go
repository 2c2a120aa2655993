// Package mongostore implements the repositories on MongoDB. Entities are
// mapped to document structs at the boundary; defaults for missing fields are
// applied once, on load.
package mongostore

import (
	"errors"
	"time"

	"github.com/sangkips/clientbook-api/internal/domain/repository"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store groups the repositories over one database.
type Store struct {
	db  *mongo.Database
	now func() time.Time
}

// New creates a store over db.
func New(db *mongo.Database) *Store {
	return &Store{db: db, now: time.Now}
}

// Clients returns the client repository.
func (s *Store) Clients() *ClientRepository {
	return &ClientRepository{coll: s.db.Collection(collClients), now: s.now}
}

// Bookings returns the booking repository.
func (s *Store) Bookings() *BookingRepository {
	return &BookingRepository{coll: s.db.Collection(collBookings), now: s.now}
}

// Businesses returns the business repository.
func (s *Store) Businesses() *BusinessRepository {
	return &BusinessRepository{coll: s.db.Collection(collBusinesses), now: s.now}
}

// Idempotency returns the idempotency key repository.
func (s *Store) Idempotency() *IdempotencyRepository {
	return &IdempotencyRepository{coll: s.db.Collection(collIdempotency), now: s.now}
}

// Reminders returns the reminder log repository.
func (s *Store) Reminders() *ReminderLogRepository {
	return &ReminderLogRepository{coll: s.db.Collection(collReminders)}
}

// translateError maps driver errors onto the domain sentinels.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case mongo.IsDuplicateKeyError(err):
		return repository.ErrDuplicateIdentifier
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	}
	return err
}
