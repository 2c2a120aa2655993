package memstore

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/clientbook-api/internal/domain/entity"
	"github.com/sangkips/clientbook-api/internal/domain/identity"
	"github.com/sangkips/clientbook-api/internal/domain/repository"
	"github.com/sangkips/clientbook-api/pkg/pagination"
)

// ClientRepository implements repository.ClientRepository in memory. The
// uniqueness of active email and phone keys per business is checked under
// the store lock, like a partial unique index.
type ClientRepository struct {
	s *Store
}

var _ repository.ClientRepository = (*ClientRepository)(nil)

func (r *ClientRepository) Create(ctx context.Context, client *entity.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	client.ApplyDefaults()
	if r.conflictsLocked(client, uuid.Nil) {
		return repository.ErrDuplicateIdentifier
	}
	now := r.s.now()
	if client.CreatedAt.IsZero() {
		client.CreatedAt = now
	}
	client.UpdatedAt = now
	r.s.clients[client.ID] = cloneClient(client)
	return nil
}

// Restore stores a client exactly as given, skipping key derivation and
// conflict checks. It loads rows written by older releases, whose phone keys
// may be missing.
func (r *ClientRepository) Restore(client *entity.Client) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	now := r.s.now()
	if client.CreatedAt.IsZero() {
		client.CreatedAt = now
	}
	if client.UpdatedAt.IsZero() {
		client.UpdatedAt = now
	}
	r.s.clients[client.ID] = cloneClient(client)
}

// conflictsLocked reports whether another active client of the same business
// owns c's email or phone key. The caller holds the lock.
func (r *ClientRepository) conflictsLocked(c *entity.Client, self uuid.UUID) bool {
	if !c.Active {
		return false
	}
	for id, other := range r.s.clients {
		if id == self || id == c.ID || !other.Active || other.BusinessID != c.BusinessID {
			continue
		}
		if c.EmailNormalized != "" && other.EmailNormalized == c.EmailNormalized {
			return true
		}
		if key := c.MatchablePhone(); key != "" && other.PhoneNormalized == key {
			return true
		}
	}
	return false
}

func (r *ClientRepository) GetByID(ctx context.Context, businessID, id uuid.UUID) (*entity.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.clients[id]
	if !ok || !c.Active || c.BusinessID != businessID {
		return nil, nil
	}
	return cloneClient(c), nil
}

func (r *ClientRepository) FindByEmail(ctx context.Context, businessID uuid.UUID, emailKey string) (*entity.Client, error) {
	if emailKey == "" {
		return nil, nil
	}
	return r.findFirst(businessID, func(c *entity.Client) bool {
		return c.EmailNormalized == emailKey
	}), nil
}

func (r *ClientRepository) FindByPhone(ctx context.Context, businessID uuid.UUID, phoneKey string) (*entity.Client, error) {
	if phoneKey == "" {
		return nil, nil
	}
	return r.findFirst(businessID, func(c *entity.Client) bool {
		return c.PhoneNormalized == phoneKey
	}), nil
}

func (r *ClientRepository) ScanByPhone(ctx context.Context, businessID uuid.UUID, phoneKey string, limit int) (*entity.Client, error) {
	if phoneKey == "" || limit <= 0 {
		return nil, nil
	}
	scanned := 0
	return r.findFirst(businessID, func(c *entity.Client) bool {
		if c.PhoneNormalized != "" || c.Phone == "" || scanned >= limit {
			return false
		}
		scanned++
		return identity.NormalizePhone(c.Phone) == phoneKey
	}), nil
}

// findFirst returns the oldest active client of the business matching fn.
func (r *ClientRepository) findFirst(businessID uuid.UUID, fn func(*entity.Client) bool) *entity.Client {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, c := range r.sortedLocked(businessID, repository.ClientSort{Field: repository.ClientSortCreatedAt, Order: pagination.SortAsc}) {
		if fn(c) {
			return cloneClient(c)
		}
	}
	return nil
}

func (r *ClientRepository) Update(ctx context.Context, businessID, id uuid.UUID, patch repository.ClientPatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.clients[id]
	if !ok || !c.Active || c.BusinessID != businessID {
		return repository.ErrNotFound
	}
	next := cloneClient(c)
	patch.Apply(next, r.s.now())
	if r.conflictsLocked(next, id) {
		return repository.ErrDuplicateIdentifier
	}
	r.s.clients[id] = next
	return nil
}

func (r *ClientRepository) List(ctx context.Context, businessID uuid.UUID, filter *repository.ClientFilter, sort repository.ClientSort, params *pagination.PaginationParams) ([]entity.Client, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []entity.Client
	for _, c := range r.sortedLocked(businessID, sort) {
		if matchesFilter(c, filter) {
			matched = append(matched, *cloneClient(c))
		}
	}

	total := int64(len(matched))
	start := params.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + params.PerPage
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *ClientRepository) Count(ctx context.Context, businessID uuid.UUID, filter *repository.ClientFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, c := range r.s.clients {
		if c.Active && c.BusinessID == businessID && matchesFilter(c, filter) {
			n++
		}
	}
	return n, nil
}

func matchesFilter(c *entity.Client, f *repository.ClientFilter) bool {
	if f == nil {
		return true
	}
	if f.Search != "" {
		q := strings.ToLower(strings.TrimSpace(f.Search))
		if !strings.Contains(strings.ToLower(c.Name), q) &&
			!strings.Contains(strings.ToLower(c.Email), q) &&
			!strings.Contains(c.Phone, q) {
			return false
		}
	}
	if f.Tag != "" && !c.HasTag(f.Tag) {
		return false
	}
	if f.HasPhone && c.Phone == "" {
		return false
	}
	if f.Segment != nil && !f.Segment.Matches(c.Stats) {
		return false
	}
	return true
}

// sortedLocked returns the active clients of a business in listing order.
// Ties break on id so pages are stable.
func (r *ClientRepository) sortedLocked(businessID uuid.UUID, s repository.ClientSort) []*entity.Client {
	var out []*entity.Client
	for _, c := range r.s.clients {
		if c.Active && c.BusinessID == businessID {
			out = append(out, c)
		}
	}

	less := func(a, b *entity.Client) int {
		switch s.Field {
		case repository.ClientSortName:
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		case repository.ClientSortLastVisit:
			return strings.Compare(deref(a.Stats.LastVisit), deref(b.Stats.LastVisit))
		case repository.ClientSortTotalSpent:
			return compareInt64(a.Stats.TotalSpent, b.Stats.TotalSpent)
		case repository.ClientSortTotalBookings:
			return compareInt64(int64(a.Stats.TotalBookings), int64(b.Stats.TotalBookings))
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		c := less(out[i], out[j])
		if s.Order == pagination.SortDesc {
			c = -c
		}
		if c == 0 {
			return out[i].ID.String() < out[j].ID.String()
		}
		return c < 0
	})
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
