package identity

import (
	"strings"

	"github.com/google/uuid"
)

// Contact is the loosely structured customer payload attached to a booking.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Keys returns the normalized email key and the matchable phone key.
func (c Contact) Keys() (emailKey, phoneKey string) {
	return NormalizeEmail(c.Email), MatchablePhone(c.Phone)
}

// Resolvable reports whether the contact carries any usable identifier.
func (c Contact) Resolvable() bool {
	e, p := c.Keys()
	return e != "" || p != ""
}

// DisplayName returns the trimmed name.
func (c Contact) DisplayName() string {
	return strings.TrimSpace(c.Name)
}

// Filter selects the bookings that belong to one client: bookings linked to
// ClientID, or whose embedded contact matches EmailKey or PhoneKey. Empty
// parts never match.
type Filter struct {
	ClientID uuid.UUID
	EmailKey string
	PhoneKey string
}

// NewFilter builds a filter from raw identifiers.
func NewFilter(clientID uuid.UUID, email, phone string) Filter {
	return Filter{
		ClientID: clientID,
		EmailKey: NormalizeEmail(email),
		PhoneKey: MatchablePhone(phone),
	}
}

// IsEmpty reports whether the filter can match nothing.
func (f Filter) IsEmpty() bool {
	return f.ClientID == uuid.Nil && f.EmailKey == "" && f.PhoneKey == ""
}

// Matches applies the filter to a booking's link and embedded contact.
func (f Filter) Matches(customerID *uuid.UUID, email, phone string) bool {
	if f.ClientID != uuid.Nil && customerID != nil && *customerID == f.ClientID {
		return true
	}
	if f.EmailKey != "" && NormalizeEmail(email) == f.EmailKey {
		return true
	}
	if f.PhoneKey != "" && NormalizePhone(phone) == f.PhoneKey {
		return true
	}
	return false
}
