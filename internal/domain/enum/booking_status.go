package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCheckedIn BookingStatus = "checked_in"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusNoShow    BookingStatus = "no_show"
)

var bookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusCheckedIn,
	BookingStatusCompleted,
	BookingStatusCancelled,
	BookingStatusNoShow,
}

// ParseBookingStatus accepts any casing and "-" or " " as separators.
func ParseBookingStatus(s string) (BookingStatus, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	for _, st := range bookingStatuses {
		if string(st) == norm {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown booking status %q", s)
}

func (s BookingStatus) String() string {
	return string(s)
}

func (s BookingStatus) IsValid() bool {
	_, err := ParseBookingStatus(string(s))
	return err == nil
}

func (s *BookingStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseBookingStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s BookingStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// Scan reads a stored status through ParseBookingStatus so legacy spellings
// such as "Completed" or "no-show" are counted. Unknown values are kept raw.
func (s *BookingStatus) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case nil:
		*s = BookingStatusPending
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into BookingStatus", value)
	}
	if parsed, err := ParseBookingStatus(raw); err == nil {
		*s = parsed
		return nil
	}
	*s = BookingStatus(raw)
	return nil
}
