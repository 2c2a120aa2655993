package mongostore

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/clientbook-api/internal/domain/enum"
	"github.com/sangkips/clientbook-api/internal/domain/identity"
	"github.com/sangkips/clientbook-api/internal/domain/repository"
	"github.com/sangkips/clientbook-api/pkg/pagination"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// activeClients selects one business's active clients.
func activeClients(businessID uuid.UUID) bson.M {
	return bson.M{"business_id": businessID.String(), "active": true}
}

// clientFilter translates a listing filter. Clauses that reuse an operator
// key are combined under $and.
func clientFilter(businessID uuid.UUID, f *repository.ClientFilter) bson.M {
	filter := activeClients(businessID)
	if f == nil {
		return filter
	}

	var and []bson.M
	if search := strings.TrimSpace(f.Search); search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		and = append(and, bson.M{"$or": bson.A{
			bson.M{"name": re},
			bson.M{"email": re},
			bson.M{"phone": re},
		}})
	}
	if f.Tag != "" {
		filter["tags"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(f.Tag) + "$", Options: "i"}
	}
	if f.HasPhone {
		filter["phone"] = bson.M{"$nin": bson.A{"", nil}}
	}
	if f.Segment != nil {
		and = append(and, segmentFilter(*f.Segment)...)
	}
	if len(and) > 0 {
		filter["$and"] = and
	}
	return filter
}

// segmentFilter is the query form of SegmentCriteria.Matches. A null or
// missing date never satisfies a range comparison.
func segmentFilter(c repository.SegmentCriteria) []bson.M {
	var clauses []bson.M
	if c.MinTotalBookings > 0 {
		clauses = append(clauses, bson.M{"stats.total_bookings": bson.M{"$gte": c.MinTotalBookings}})
	}
	if c.FirstVisitFrom != "" {
		clauses = append(clauses, bson.M{"stats.first_visit": bson.M{"$gte": c.FirstVisitFrom}})
	}
	if !c.HasVisitBounds() {
		return clauses
	}

	bounds := bson.M{}
	if c.LastVisitFrom != "" {
		bounds["$gte"] = c.LastVisitFrom
	}
	if c.LastVisitBefore != "" {
		bounds["$lt"] = c.LastVisitBefore
	}
	if c.OrNoVisit {
		return append(clauses, bson.M{"$or": bson.A{
			bson.M{"stats.last_visit": nil},
			bson.M{"stats.last_visit": bounds},
		}})
	}
	return append(clauses, bson.M{"stats.last_visit": bounds})
}

var clientSortFields = map[string]string{
	repository.ClientSortName:          "name",
	repository.ClientSortCreatedAt:     "created_at",
	repository.ClientSortLastVisit:     "stats.last_visit",
	repository.ClientSortTotalSpent:    "stats.total_spent",
	repository.ClientSortTotalBookings: "stats.total_bookings",
}

// clientSort orders a listing; ties break on _id so pages are stable.
func clientSort(s repository.ClientSort) bson.D {
	field, ok := clientSortFields[s.Field]
	if !ok {
		field = "created_at"
	}
	dir := 1
	if s.Order == pagination.SortDesc {
		dir = -1
	}
	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: 1}}
}

// identityFilter selects bookings linked to the client or carrying its email
// or phone. Raw contact fields are matched with patterns that agree with the
// normalizers, so unnormalized booking data still matches.
func identityFilter(businessID uuid.UUID, f identity.Filter) bson.M {
	var or bson.A
	if f.ClientID != uuid.Nil {
		or = append(or, bson.M{"customer_id": f.ClientID.String()})
	}
	if f.EmailKey != "" {
		or = append(or, bson.M{"customer.email": primitive.Regex{Pattern: identity.EmailPattern(f.EmailKey)}})
	}
	if f.PhoneKey != "" {
		or = append(or, bson.M{"customer.phone": primitive.Regex{Pattern: identity.PhonePattern(f.PhoneKey)}})
	}
	return bson.M{
		"business_id": businessID.String(),
		"deleted_at":  nil,
		"$or":         or,
	}
}

// notCancelled and onlyCancelled split a booking history by status.
func notCancelled(filter bson.M) bson.M {
	filter["status"] = bson.M{"$ne": string(enum.BookingStatusCancelled)}
	return filter
}

func onlyCancelled(filter bson.M) bson.M {
	filter["status"] = string(enum.BookingStatusCancelled)
	return filter
}
