package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/clientbook-api/internal/domain/enum"
	"gorm.io/gorm"
)

// DateLayout is the ISO date format used for booking dates and visit stats.
const DateLayout = "2006-01-02"

// Booking is owned by the booking subsystem. This service reads bookings to
// compute client statistics and only writes CustomerID when linking a booking
// to the client it resolved to.
type Booking struct {
	ID         uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	BusinessID uuid.UUID          `gorm:"type:uuid;not null;index" json:"business_id"`
	CustomerID *uuid.UUID         `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	Customer   BookingCustomer    `gorm:"embedded;embeddedPrefix:customer_" json:"customer"`
	Date       string             `gorm:"size:10;not null;index" json:"date"`
	Status     enum.BookingStatus `gorm:"size:20;not null;index" json:"status"`
	Service    BookingService     `gorm:"embedded;embeddedPrefix:service_" json:"service"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
	DeletedAt  gorm.DeletedAt     `gorm:"index" json:"-"`
}

// BookingCustomer is the contact captured on the booking form.
type BookingCustomer struct {
	Name  string `gorm:"size:255" json:"name"`
	Email string `gorm:"size:255" json:"email"`
	Phone string `gorm:"size:50" json:"phone"`
}

// BookingService is the booked service; Price is in minor units.
type BookingService struct {
	Name  string `gorm:"size:255" json:"name"`
	Price int64  `gorm:"not null;default:0" json:"price"`
}

// BeforeCreate generates a UUID before creating a new booking
func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Booking model
func (Booking) TableName() string {
	return "bookings"
}
