package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/clientbook-api/internal/domain/entity"
	"github.com/sangkips/clientbook-api/internal/domain/repository"
)

// ReminderLogRepository implements repository.ReminderLogRepository in memory.
type ReminderLogRepository struct {
	s *Store
}

var _ repository.ReminderLogRepository = (*ReminderLogRepository)(nil)

func (r *ReminderLogRepository) Create(ctx context.Context, log *entity.ReminderLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.SentAt.IsZero() {
		log.SentAt = r.s.now()
	}
	r.s.reminders = append(r.s.reminders, *log)
	return nil
}

func (r *ReminderLogRepository) LastSentAt(ctx context.Context, businessID, clientID uuid.UUID) (*time.Time, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var last *time.Time
	for i := range r.s.reminders {
		l := r.s.reminders[i]
		if l.BusinessID != businessID || l.ClientID != clientID || l.Status != entity.ReminderStatusSent {
			continue
		}
		if last == nil || l.SentAt.After(*last) {
			t := l.SentAt
			last = &t
		}
	}
	return last, nil
}

// All returns every logged reminder, oldest first.
func (r *ReminderLogRepository) All() []entity.ReminderLog {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]entity.ReminderLog{}, r.s.reminders...)
}
