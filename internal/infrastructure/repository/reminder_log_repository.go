package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/clientbook-api/internal/domain/entity"
	domainRepo "github.com/sangkips/clientbook-api/internal/domain/repository"
	"gorm.io/gorm"
)

type reminderLogRepository struct {
	db *gorm.DB
}

// NewReminderLogRepository creates a new reminder log repository
func NewReminderLogRepository(db *gorm.DB) domainRepo.ReminderLogRepository {
	return &reminderLogRepository{db: db}
}

func (r *reminderLogRepository) Create(ctx context.Context, log *entity.ReminderLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *reminderLogRepository) LastSentAt(ctx context.Context, businessID, clientID uuid.UUID) (*time.Time, error) {
	var last entity.ReminderLog
	err := r.db.WithContext(ctx).
		Scopes(BusinessScope(businessID)).
		Where("client_id = ? AND status = ?", clientID, entity.ReminderStatusSent).
		Order("sent_at DESC").
		First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &last.SentAt, nil
}
