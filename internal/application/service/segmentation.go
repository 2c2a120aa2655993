package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/clientbook-api/internal/domain/entity"
	"github.com/sangkips/clientbook-api/internal/domain/enum"
	"github.com/sangkips/clientbook-api/internal/domain/repository"
)

// Segment windows, in days before today.
const (
	NewClientWindowDays  = 30
	ReturningMinBookings = 2
	InactiveAfterDays    = 60
	AtRiskAfterDays      = 90
)

// SegmentClassifier evaluates segment predicates for one client and counts
// clients per segment. "Today" is the calendar date in the business timezone.
type SegmentClassifier struct {
	clients    repository.ClientRepository
	businesses repository.BusinessRepository
	now        Clock
}

// NewSegmentClassifier creates a new segment classifier
func NewSegmentClassifier(clients repository.ClientRepository, businesses repository.BusinessRepository, now Clock) *SegmentClassifier {
	if now == nil {
		now = SystemClock
	}
	return &SegmentClassifier{clients: clients, businesses: businesses, now: now}
}

// Criteria returns the predicate for seg relative to today.
//
//	new        first visit within the last 30 days
//	returning  at least 2 completed bookings
//	inactive   last visit 60 to 89 days ago
//	at_risk    last visit 90 or more days ago, or never
func Criteria(seg enum.Segment, today time.Time) repository.SegmentCriteria {
	switch seg {
	case enum.SegmentNew:
		return repository.SegmentCriteria{FirstVisitFrom: daysAgo(today, NewClientWindowDays)}
	case enum.SegmentReturning:
		return repository.SegmentCriteria{MinTotalBookings: ReturningMinBookings}
	case enum.SegmentInactive:
		return repository.SegmentCriteria{
			LastVisitFrom:   daysAgo(today, AtRiskAfterDays-1),
			LastVisitBefore: daysAgo(today, InactiveAfterDays-1),
		}
	case enum.SegmentAtRisk:
		return repository.SegmentCriteria{
			LastVisitBefore: daysAgo(today, AtRiskAfterDays-1),
			OrNoVisit:       true,
		}
	}
	return repository.SegmentCriteria{}
}

// Classify returns every segment the stats fall into, in display order.
func Classify(stats entity.ClientStats, today time.Time) []enum.Segment {
	segments := []enum.Segment{}
	for _, seg := range enum.AllSegments() {
		if Criteria(seg, today).Matches(stats) {
			segments = append(segments, seg)
		}
	}
	return segments
}

// Today returns midnight of the current date in the business timezone.
// Unknown businesses use UTC.
func (c *SegmentClassifier) Today(ctx context.Context, businessID uuid.UUID) (time.Time, error) {
	loc := time.UTC
	if c.businesses != nil {
		b, err := c.businesses.GetByID(ctx, businessID)
		if err != nil {
			return time.Time{}, fmt.Errorf("load business: %w", err)
		}
		if b != nil {
			loc = b.Location()
		}
	}
	return startOfDay(c.now(), loc), nil
}

// TodayFor is Today for an already loaded business.
func (c *SegmentClassifier) TodayFor(b *entity.Business) time.Time {
	return startOfDay(c.now(), b.Location())
}

// CountBySegment re-applies each predicate as a filter over the business's
// active clients. Counts are not cached.
func (c *SegmentClassifier) CountBySegment(ctx context.Context, businessID uuid.UUID, today time.Time) (map[enum.Segment]int64, error) {
	counts := make(map[enum.Segment]int64, len(enum.AllSegments()))
	for _, seg := range enum.AllSegments() {
		criteria := Criteria(seg, today)
		n, err := c.clients.Count(ctx, businessID, &repository.ClientFilter{Segment: &criteria})
		if err != nil {
			return nil, fmt.Errorf("count %s clients: %w", seg, err)
		}
		counts[seg] = n
	}
	return counts, nil
}
