package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/clientbook-api/internal/domain/entity"
)

// ReminderLogRepository stores win-back reminder attempts.
type ReminderLogRepository interface {
	Create(ctx context.Context, log *entity.ReminderLog) error
	// LastSentAt returns when the client was last sent a reminder successfully,
	// or nil if never.
	LastSentAt(ctx context.Context, businessID, clientID uuid.UUID) (*time.Time, error)
}
