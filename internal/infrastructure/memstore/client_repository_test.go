package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/clientbook-api/internal/domain/entity"
	"github.com/sangkips/clientbook-api/internal/domain/repository"
	"github.com/sangkips/clientbook-api/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(businessID uuid.UUID, name, email, phone string) *entity.Client {
	return &entity.Client{BusinessID: businessID, Name: name, Email: email, Phone: phone, Active: true}
}

func TestClientRepositoryUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := New().Clients()
	biz := uuid.New()

	require.NoError(t, repo.Create(ctx, newClient(biz, "Alice", "alice@x.com", "07700 900123")))

	err := repo.Create(ctx, newClient(biz, "Other", "ALICE@x.com", ""))
	assert.ErrorIs(t, err, repository.ErrDuplicateIdentifier)

	err = repo.Create(ctx, newClient(biz, "Other", "", "+44 7700 900123"))
	assert.ErrorIs(t, err, repository.ErrDuplicateIdentifier)

	// short phone keys are never matched, so they never collide
	require.NoError(t, repo.Create(ctx, newClient(biz, "A", "a@x.com", "123")))
	require.NoError(t, repo.Create(ctx, newClient(biz, "B", "b@x.com", "123")))

	// another business is a separate namespace
	require.NoError(t, repo.Create(ctx, newClient(uuid.New(), "Alice", "alice@x.com", "")))
}

func TestClientRepositoryUpdateAndSoftDelete(t *testing.T) {
	ctx := context.Background()
	repo := New().Clients()
	biz := uuid.New()

	c := newClient(biz, "Alice", "alice@x.com", "")
	require.NoError(t, repo.Create(ctx, c))

	phone := "07700 900123"
	require.NoError(t, repo.Update(ctx, biz, c.ID, repository.ClientPatch{Phone: &phone}))

	found, err := repo.FindByPhone(ctx, biz, "7700900123")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, c.ID, found.ID)

	inactive := false
	require.NoError(t, repo.Update(ctx, biz, c.ID, repository.ClientPatch{Active: &inactive}))

	found, err = repo.FindByEmail(ctx, biz, "alice@x.com")
	require.NoError(t, err)
	assert.Nil(t, found)

	assert.ErrorIs(t, repo.Update(ctx, biz, c.ID, repository.ClientPatch{Active: &inactive}), repository.ErrNotFound)

	// the email is free again once the owner is inactive
	require.NoError(t, repo.Create(ctx, newClient(biz, "Alice 2", "alice@x.com", "")))
}

func TestClientRepositoryScanByPhone(t *testing.T) {
	ctx := context.Background()
	store := New()
	repo := store.Clients()
	biz := uuid.New()

	legacy := newClient(biz, "Legacy", "", "+44 (0)7700 900123")
	repo.Restore(legacy)
	assert.Empty(t, legacy.PhoneNormalized)

	found, err := repo.FindByPhone(ctx, biz, "7700900123")
	require.NoError(t, err)
	assert.Nil(t, found)

	found, err = repo.ScanByPhone(ctx, biz, "7700900123", 10)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, legacy.ID, found.ID)

	found, err = repo.ScanByPhone(ctx, biz, "7700900123", 0)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestClientRepositoryListSortAndPage(t *testing.T) {
	ctx := context.Background()
	store := New()
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	store.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})
	repo := store.Clients()
	biz := uuid.New()

	for i, name := range []string{"Carol", "alice", "Bob"} {
		c := newClient(biz, name, name+"@x.com", "")
		c.Stats.TotalSpent = int64(100 * (i + 1))
		if name == "Bob" {
			c.Tags = []string{"VIP"}
		}
		require.NoError(t, repo.Create(ctx, c))
	}

	params := &pagination.PaginationParams{Page: 1, PerPage: 2}
	items, total, err := repo.List(ctx, biz, nil, repository.ClientSort{Field: repository.ClientSortName, Order: pagination.SortAsc}, params)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, items, 2)
	assert.Equal(t, "alice", items[0].Name)
	assert.Equal(t, "Bob", items[1].Name)

	items, _, err = repo.List(ctx, biz, nil, repository.ClientSort{Field: repository.ClientSortTotalSpent, Order: pagination.SortDesc}, &pagination.PaginationParams{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, "Bob", items[0].Name)

	items, total, err = repo.List(ctx, biz, &repository.ClientFilter{Tag: "vip"}, repository.ClientSort{}, &pagination.PaginationParams{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Bob", items[0].Name)

	n, err := repo.Count(ctx, biz, &repository.ClientFilter{Search: "CAR"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
