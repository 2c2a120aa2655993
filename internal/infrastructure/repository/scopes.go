package repository

import (
	"strings"

	"github.com/google/uuid"
	domainRepo "github.com/sangkips/clientbook-api/internal/domain/repository"
	"github.com/sangkips/clientbook-api/pkg/pagination"
	"gorm.io/gorm"
)

// BusinessScope restricts a query to one business. Every tenant-owned table
// carries business_id.
func BusinessScope(businessID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("business_id = ?", businessID)
	}
}

// ActiveClientScope restricts a client query to one business's active clients.
func ActiveClientScope(businessID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("business_id = ? AND active = ?", businessID, true)
	}
}

// ClientFilterScope translates a listing filter into SQL.
func ClientFilterScope(f *domainRepo.ClientFilter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f == nil {
			return db
		}
		if search := strings.TrimSpace(f.Search); search != "" {
			like := "%" + search + "%"
			db = db.Where("name ILIKE ? OR email ILIKE ? OR phone ILIKE ?", like, like, like)
		}
		if f.Tag != "" {
			db = db.Where("EXISTS (SELECT 1 FROM unnest(tags) AS t WHERE lower(t) = lower(?))", f.Tag)
		}
		if f.HasPhone {
			db = db.Where("phone <> ''")
		}
		if f.Segment != nil {
			db = db.Scopes(SegmentScope(*f.Segment))
		}
		return db
	}
}

// SegmentScope is the SQL form of SegmentCriteria.Matches.
func SegmentScope(c domainRepo.SegmentCriteria) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if c.MinTotalBookings > 0 {
			db = db.Where("stats_total_bookings >= ?", c.MinTotalBookings)
		}
		if c.FirstVisitFrom != "" {
			db = db.Where("stats_first_visit >= ?", c.FirstVisitFrom)
		}
		if !c.HasVisitBounds() {
			return db
		}

		var conds []string
		var args []interface{}
		if c.LastVisitFrom != "" {
			conds = append(conds, "stats_last_visit >= ?")
			args = append(args, c.LastVisitFrom)
		}
		if c.LastVisitBefore != "" {
			conds = append(conds, "stats_last_visit < ?")
			args = append(args, c.LastVisitBefore)
		}
		bounds := strings.Join(conds, " AND ")
		if c.OrNoVisit {
			return db.Where("(stats_last_visit IS NULL OR ("+bounds+"))", args...)
		}
		return db.Where(bounds, args...)
	}
}

var clientSortColumns = map[string]string{
	domainRepo.ClientSortName:          "lower(name)",
	domainRepo.ClientSortCreatedAt:     "created_at",
	domainRepo.ClientSortLastVisit:     "stats_last_visit",
	domainRepo.ClientSortTotalSpent:    "stats_total_spent",
	domainRepo.ClientSortTotalBookings: "stats_total_bookings",
}

// ClientSortScope orders a listing; ties break on id so pages are stable.
func ClientSortScope(s domainRepo.ClientSort) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		column, ok := clientSortColumns[s.Field]
		if !ok {
			column = "created_at"
		}
		direction := "ASC NULLS FIRST"
		if s.Order == pagination.SortDesc {
			direction = "DESC NULLS LAST"
		}
		return db.Order(column + " " + direction).Order("id ASC")
	}
}
