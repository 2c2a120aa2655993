package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sangkips/clientbook-api/internal/domain/enum"
	"github.com/sangkips/clientbook-api/internal/domain/identity"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PlaceholderClientName is used when a booking arrives without a name.
const PlaceholderClientName = "Unnamed client"

// Client is the canonical CRM record for one real-world customer of a business.
type Client struct {
	ID              uuid.UUID                       `gorm:"type:uuid;primary_key" json:"id"`
	BusinessID      uuid.UUID                       `gorm:"type:uuid;not null;index" json:"business_id"`
	Name            string                          `gorm:"size:255;not null" json:"name"`
	Email           string                          `gorm:"size:255" json:"email"`
	EmailNormalized string                          `gorm:"size:255;index" json:"-"`
	Phone           string                          `gorm:"size:50" json:"phone"`
	PhoneNormalized string                          `gorm:"size:20;index" json:"-"`
	Tags            pq.StringArray                  `gorm:"type:text[]" json:"tags"`
	Notes           datatypes.JSONSlice[ClientNote] `gorm:"type:jsonb" json:"notes"`
	Stats           ClientStats                     `gorm:"embedded;embeddedPrefix:stats_" json:"stats"`
	Source          enum.ClientSource               `gorm:"size:20;not null;default:'manual'" json:"source"`
	Active          bool                            `gorm:"not null;default:true;index" json:"active"`
	CreatedAt       time.Time                       `json:"created_at"`
	UpdatedAt       time.Time                       `json:"updated_at"`
}

// ClientStats is derived entirely from booking history and is only ever
// replaced as a whole.
type ClientStats struct {
	TotalBookings int     `gorm:"not null;default:0" json:"total_bookings"`
	TotalSpent    int64   `gorm:"not null;default:0" json:"total_spent"`
	AverageSpend  int64   `gorm:"not null;default:0" json:"average_spend"`
	LastVisit     *string `gorm:"size:10;index" json:"last_visit"`
	FirstVisit    *string `gorm:"size:10" json:"first_visit"`
	NoShows       int     `gorm:"not null;default:0" json:"no_shows"`
	Cancellations int     `gorm:"not null;default:0" json:"cancellations"`
}

// ClientNote is a timestamped annotation on a client.
type ClientNote struct {
	ID        uuid.UUID  `json:"id"`
	Text      string     `json:"text"`
	CreatedBy *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new client
func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.ApplyDefaults()
	return nil
}

// AfterFind fills defaults for rows written before a column existed.
func (c *Client) AfterFind(tx *gorm.DB) error {
	c.ApplyDefaults()
	return nil
}

// TableName returns the table name for the Client model
func (Client) TableName() string {
	return "clients"
}

// ApplyDefaults fills absent fields and re-derives the normalized keys. Every
// store calls it once when a record crosses the storage boundary.
func (c *Client) ApplyDefaults() {
	if c.Tags == nil {
		c.Tags = pq.StringArray{}
	}
	if c.Notes == nil {
		c.Notes = datatypes.JSONSlice[ClientNote]{}
	}
	if c.Source == "" {
		c.Source = enum.ClientSourceManual
	}
	if strings.TrimSpace(c.Name) == "" {
		c.Name = PlaceholderClientName
	}
	c.SetEmail(c.Email)
	c.SetPhone(c.Phone)
}

// SetEmail stores the raw email and its normalized key.
func (c *Client) SetEmail(raw string) {
	c.Email = strings.TrimSpace(raw)
	c.EmailNormalized = identity.NormalizeEmail(raw)
}

// SetPhone stores the raw phone and its normalized key.
func (c *Client) SetPhone(raw string) {
	c.Phone = strings.TrimSpace(raw)
	c.PhoneNormalized = identity.NormalizePhone(raw)
}

// MatchablePhone returns the phone key when it is long enough to match on.
func (c *Client) MatchablePhone() string {
	if identity.IsMatchablePhone(c.PhoneNormalized) {
		return c.PhoneNormalized
	}
	return ""
}

// IdentityFilter selects the bookings that belong to this client.
func (c *Client) IdentityFilter() identity.Filter {
	return identity.Filter{
		ClientID: c.ID,
		EmailKey: c.EmailNormalized,
		PhoneKey: c.MatchablePhone(),
	}
}

// HasTag reports whether tag is present, ignoring case.
func (c *Client) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// NormalizeTag trims a tag; empty results are rejected by callers.
func NormalizeTag(tag string) string {
	return strings.TrimSpace(tag)
}
