package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/clientbook-api/internal/domain/entity"
	"github.com/sangkips/clientbook-api/pkg/pagination"
)

// Sortable client fields.
const (
	ClientSortName          = "name"
	ClientSortCreatedAt     = "created_at"
	ClientSortLastVisit     = "last_visit"
	ClientSortTotalSpent    = "total_spent"
	ClientSortTotalBookings = "total_bookings"
)

// ClientSortFields lists the fields a listing may be sorted by.
var ClientSortFields = []string{
	ClientSortName,
	ClientSortCreatedAt,
	ClientSortLastVisit,
	ClientSortTotalSpent,
	ClientSortTotalBookings,
}

// ClientFilter narrows a listing of active clients. Zero values are ignored.
type ClientFilter struct {
	// Search matches name, email or phone, case-insensitively.
	Search   string
	Tag      string
	Segment  *SegmentCriteria
	HasPhone bool
}

// ClientSort orders a listing.
type ClientSort struct {
	Field string
	Order pagination.SortOrder
}

// ClientPatch is a partial update. Nil fields are left untouched. Setting
// Email or Phone also re-derives the normalized key.
type ClientPatch struct {
	Name   *string
	Email  *string
	Phone  *string
	Tags   *[]string
	Notes  *[]entity.ClientNote
	Stats  *entity.ClientStats
	Active *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p ClientPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil && p.Tags == nil &&
		p.Notes == nil && p.Stats == nil && p.Active == nil
}

// Apply writes the patch onto c and stamps UpdatedAt.
func (p ClientPatch) Apply(c *entity.Client, now time.Time) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.SetEmail(*p.Email)
	}
	if p.Phone != nil {
		c.SetPhone(*p.Phone)
	}
	if p.Tags != nil {
		c.Tags = append([]string{}, (*p.Tags)...)
	}
	if p.Notes != nil {
		c.Notes = append([]entity.ClientNote{}, (*p.Notes)...)
	}
	if p.Stats != nil {
		c.Stats = *p.Stats
	}
	if p.Active != nil {
		c.Active = *p.Active
	}
	c.UpdatedAt = now
}

// ClientRepository is the business-scoped client registry. Lookups only
// consider active clients and return (nil, nil) when nothing matches.
type ClientRepository interface {
	// Create inserts a client. Returns ErrDuplicateIdentifier when another
	// active client already owns its email or phone key.
	Create(ctx context.Context, client *entity.Client) error

	GetByID(ctx context.Context, businessID, id uuid.UUID) (*entity.Client, error)

	// FindByEmail matches the normalized email key exactly.
	FindByEmail(ctx context.Context, businessID uuid.UUID, emailKey string) (*entity.Client, error)

	// FindByPhone matches the stored normalized phone key exactly.
	FindByPhone(ctx context.Context, businessID uuid.UUID, phoneKey string) (*entity.Client, error)

	// ScanByPhone is the slow path for records whose stored phone key is
	// missing or stale. It normalizes the raw phone of at most limit active
	// clients with a non-empty phone and no stored key, and returns the
	// first one matching phoneKey.
	ScanByPhone(ctx context.Context, businessID uuid.UUID, phoneKey string, limit int) (*entity.Client, error)

	// Update applies a last-write-wins partial update to an active client.
	// Returns ErrNotFound or ErrDuplicateIdentifier.
	Update(ctx context.Context, businessID, id uuid.UUID, patch ClientPatch) error

	List(ctx context.Context, businessID uuid.UUID, filter *ClientFilter, sort ClientSort, params *pagination.PaginationParams) ([]entity.Client, int64, error)

	Count(ctx context.Context, businessID uuid.UUID, filter *ClientFilter) (int64, error)
}
