package service

import (
	"time"

	"github.com/sangkips/clientbook-api/internal/domain/entity"
)

// Clock returns the current instant. Services take one so tests can pin "today".
type Clock func() time.Time

// SystemClock is the wall clock.
func SystemClock() time.Time { return time.Now() }

// startOfDay returns midnight of t's calendar date in loc.
func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// daysAgo formats the date n days before today.
func daysAgo(today time.Time, n int) string {
	return today.AddDate(0, 0, -n).Format(entity.DateLayout)
}

// validDate reports whether s is an ISO calendar date.
func validDate(s string) bool {
	_, err := time.Parse(entity.DateLayout, s)
	return err == nil
}
