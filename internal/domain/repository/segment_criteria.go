package repository

import "github.com/sangkips/clientbook-api/internal/domain/entity"

// SegmentCriteria is a predicate over client stats. Dates are ISO
// "YYYY-MM-DD" strings and compare lexicographically. Empty bounds are
// ignored. The same value is evaluated in memory by Matches and translated
// into a query by each store.
type SegmentCriteria struct {
	// FirstVisitFrom keeps clients whose first visit is on or after the date.
	FirstVisitFrom string
	// LastVisitFrom keeps clients whose last visit is on or after the date.
	LastVisitFrom string
	// LastVisitBefore keeps clients whose last visit is strictly before the date.
	LastVisitBefore string
	// OrNoVisit also keeps clients with no recorded visit.
	OrNoVisit bool
	// MinTotalBookings keeps clients with at least this many completed bookings.
	MinTotalBookings int
}

// HasVisitBounds reports whether any last-visit bound is set.
func (c SegmentCriteria) HasVisitBounds() bool {
	return c.LastVisitFrom != "" || c.LastVisitBefore != ""
}

// Matches evaluates the criteria against stats.
func (c SegmentCriteria) Matches(stats entity.ClientStats) bool {
	if c.MinTotalBookings > 0 && stats.TotalBookings < c.MinTotalBookings {
		return false
	}
	if c.FirstVisitFrom != "" {
		if stats.FirstVisit == nil || *stats.FirstVisit < c.FirstVisitFrom {
			return false
		}
	}
	if c.HasVisitBounds() || c.OrNoVisit {
		if stats.LastVisit == nil {
			return c.OrNoVisit
		}
		last := *stats.LastVisit
		if c.LastVisitFrom != "" && last < c.LastVisitFrom {
			return false
		}
		if c.LastVisitBefore != "" && last >= c.LastVisitBefore {
			return false
		}
	}
	return true
}
