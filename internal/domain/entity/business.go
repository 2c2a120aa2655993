package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Business is a tenant of the booking platform. Every client belongs to one.
type Business struct {
	ID        uuid.UUID                            `gorm:"type:uuid;primary_key" json:"id"`
	Name      string                               `gorm:"size:255;not null" json:"name"`
	Slug      string                               `gorm:"size:255;unique;not null" json:"slug"`
	Active    bool                                 `gorm:"not null;default:true" json:"active"`
	Settings  datatypes.JSONType[BusinessSettings] `gorm:"type:jsonb" json:"settings"`
	CreatedAt time.Time                            `json:"created_at"`
	UpdatedAt time.Time                            `json:"updated_at"`
}

// BusinessSettings holds the per-business options the CRM reads.
type BusinessSettings struct {
	Timezone         string `json:"timezone,omitempty"`
	Currency         string `json:"currency,omitempty"`
	RemindersEnabled bool   `json:"reminders_enabled"`
	ReminderMessage  string `json:"reminder_message,omitempty"`
}

// BeforeCreate generates a UUID before creating a new business
func (b *Business) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Business model
func (Business) TableName() string {
	return "businesses"
}

// Location returns the business timezone, falling back to UTC when it is
// unset or unknown.
func (b *Business) Location() *time.Location {
	tz := b.Settings.Data().Timezone
	if tz == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DefaultBusinessSettings returns default settings for new businesses
func DefaultBusinessSettings() BusinessSettings {
	return BusinessSettings{
		Timezone:        "Europe/London",
		Currency:        "GBP",
		ReminderMessage: "Hi {name}, we miss you at {business}! Book your next visit any time.",
	}
}
