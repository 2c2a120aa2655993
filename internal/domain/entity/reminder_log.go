package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ReminderStatusSent   = "sent"
	ReminderStatusFailed = "failed"
)

// ReminderLog records one win-back message sent to a client.
type ReminderLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	BusinessID uuid.UUID `gorm:"type:uuid;not null;index:idx_reminder_client" json:"business_id"`
	ClientID   uuid.UUID `gorm:"type:uuid;not null;index:idx_reminder_client" json:"client_id"`
	Channel    string    `gorm:"size:20;not null" json:"channel"`
	Recipient  string    `gorm:"size:50" json:"recipient"`
	Status     string    `gorm:"size:20;not null" json:"status"`
	ProviderID string    `gorm:"size:100" json:"provider_id,omitempty"`
	Error      string    `gorm:"type:text" json:"error,omitempty"`
	SentAt     time.Time `gorm:"not null;index" json:"sent_at"`
}

func (r *ReminderLog) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (ReminderLog) TableName() string {
	return "reminder_logs"
}
