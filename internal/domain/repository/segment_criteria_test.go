package repository

import (
	"testing"

	"github.com/sangkips/clientbook-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
)

func date(s string) *string { return &s }

func TestSegmentCriteriaMatches(t *testing.T) {
	atRisk := SegmentCriteria{LastVisitBefore: "2025-01-02", OrNoVisit: true}
	inactive := SegmentCriteria{LastVisitFrom: "2024-12-03", LastVisitBefore: "2025-01-02"}
	returning := SegmentCriteria{MinTotalBookings: 2}
	newClients := SegmentCriteria{FirstVisitFrom: "2025-03-01"}

	tests := []struct {
		name     string
		criteria SegmentCriteria
		stats    entity.ClientStats
		want     bool
	}{
		{"at risk with no visit", atRisk, entity.ClientStats{}, true},
		{"at risk on boundary", atRisk, entity.ClientStats{LastVisit: date("2025-01-01")}, true},
		{"not at risk after boundary", atRisk, entity.ClientStats{LastVisit: date("2025-01-02")}, false},
		{"inactive inside window", inactive, entity.ClientStats{LastVisit: date("2024-12-20")}, true},
		{"inactive excludes no visit", inactive, entity.ClientStats{}, false},
		{"inactive lower bound inclusive", inactive, entity.ClientStats{LastVisit: date("2024-12-03")}, true},
		{"returning needs two", returning, entity.ClientStats{TotalBookings: 1}, false},
		{"returning with two", returning, entity.ClientStats{TotalBookings: 2}, true},
		{"new needs first visit", newClients, entity.ClientStats{}, false},
		{"new recent first visit", newClients, entity.ClientStats{FirstVisit: date("2025-03-05")}, true},
		{"empty criteria matches all", SegmentCriteria{}, entity.ClientStats{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.criteria.Matches(tt.stats))
		})
	}
}
