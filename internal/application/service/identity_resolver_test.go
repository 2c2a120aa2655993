package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/clientbook-api/internal/domain/entity"
	"github.com/sangkips/clientbook-api/internal/domain/enum"
	"github.com/sangkips/clientbook-api/internal/domain/identity"
	"github.com/sangkips/clientbook-api/internal/domain/repository"
	"github.com/sangkips/clientbook-api/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveUnresolvableContact(t *testing.T) {
	f := newFixture(t)

	res, err := f.resolver.Resolve(context.Background(), ResolveInput{
		BusinessID: f.businessID,
		Contact:    identity.Contact{Name: "Walk-in", Phone: "123"},
	})
	require.NoError(t, err)
	assert.Nil(t, res)

	n, err := f.store.Clients().Count(context.Background(), f.businessID, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestResolveIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := ResolveInput{
		BusinessID:   f.businessID,
		Contact:      identity.Contact{Name: "Alice", Email: "alice@x.com", Phone: "07700 900123"},
		Source:       enum.ClientSourceOnline,
		ObservedDate: ptr("2025-01-10"),
	}

	first, err := f.resolver.Resolve(ctx, in)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.True(t, first.Created)

	second, err := f.resolver.Resolve(ctx, in)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.False(t, second.Created)
	assert.Equal(t, first.ClientID, second.ClientID)
	assert.Equal(t, enum.MatchKindEmail, second.MatchedBy)

	n, err := f.store.Clients().Count(ctx, f.businessID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	c := f.client(t, first.ClientID)
	assert.Equal(t, enum.ClientSourceOnline, c.Source)
	assert.Equal(t, "2025-01-10", *c.Stats.FirstVisit)
	assert.Equal(t, "2025-01-10", *c.Stats.LastVisit)
}

func TestResolveEmailTakesPriorityOverPhone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.resolver.Resolve(ctx, ResolveInput{BusinessID: f.businessID, Contact: identity.Contact{Name: "A", Email: "a@x.com"}})
	require.NoError(t, err)
	b, err := f.resolver.Resolve(ctx, ResolveInput{BusinessID: f.businessID, Contact: identity.Contact{Name: "B", Phone: "07700 900999"}})
	require.NoError(t, err)
	require.NotEqual(t, a.ClientID, b.ClientID)

	res, err := f.resolver.Resolve(ctx, ResolveInput{
		BusinessID: f.businessID,
		Contact:    identity.Contact{Name: "A again", Email: "A@X.com", Phone: "+44 7700 900999"},
	})
	require.NoError(t, err)
	assert.Equal(t, a.ClientID, res.ClientID)
	assert.Equal(t, enum.MatchKindEmail, res.MatchedBy)

	// B keeps the phone; A is not given a phone another client owns
	assert.Empty(t, f.client(t, a.ClientID).Phone)
	assert.Equal(t, "A again", f.client(t, a.ClientID).Name)
}

func TestResolveMatchesByPhoneAndFillsEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.resolver.Resolve(ctx, ResolveInput{BusinessID: f.businessID, Contact: identity.Contact{Name: "Bo", Phone: "+44 7700 900123"}})
	require.NoError(t, err)

	res, err := f.resolver.Resolve(ctx, ResolveInput{BusinessID: f.businessID, Contact: identity.Contact{Name: "", Email: "bo@x.com", Phone: "07700900123"}})
	require.NoError(t, err)
	assert.Equal(t, first.ClientID, res.ClientID)
	assert.Equal(t, enum.MatchKindPhone, res.MatchedBy)

	c := f.client(t, first.ClientID)
	assert.Equal(t, "Bo", c.Name, "blank names do not overwrite")
	assert.Equal(t, "bo@x.com", c.EmailNormalized)
}

func TestResolvePlaceholderName(t *testing.T) {
	f := newFixture(t)
	res, err := f.resolver.Resolve(context.Background(), ResolveInput{BusinessID: f.businessID, Contact: identity.Contact{Email: "anon@x.com"}})
	require.NoError(t, err)
	assert.Equal(t, entity.PlaceholderClientName, f.client(t, res.ClientID).Name)
}

func TestResolveIsScopedToBusiness(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contact := identity.Contact{Name: "Alice", Email: "alice@x.com"}

	a, err := f.resolver.Resolve(ctx, ResolveInput{BusinessID: f.businessID, Contact: contact})
	require.NoError(t, err)
	b, err := f.resolver.Resolve(ctx, ResolveInput{BusinessID: uuid.New(), Contact: contact})
	require.NoError(t, err)
	assert.NotEqual(t, a.ClientID, b.ClientID)
	assert.True(t, b.Created)
}

// racingClients makes the first lookup miss, as if a concurrent request had
// not yet committed its insert.
type racingClients struct {
	repository.ClientRepository
	misses int
}

func (r *racingClients) FindByEmail(ctx context.Context, businessID uuid.UUID, key string) (*entity.Client, error) {
	if r.misses > 0 {
		r.misses--
		return nil, nil
	}
	return r.ClientRepository.FindByEmail(ctx, businessID, key)
}

func TestResolveRecoversFromConcurrentCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contact := identity.Contact{Name: "Alice", Email: "alice@x.com"}

	winner, err := f.resolver.Resolve(ctx, ResolveInput{BusinessID: f.businessID, Contact: contact})
	require.NoError(t, err)

	loser := NewIdentityResolver(&racingClients{ClientRepository: f.store.Clients(), misses: 1}, 0)
	res, err := loser.Resolve(ctx, ResolveInput{BusinessID: f.businessID, Contact: contact})
	require.NoError(t, err)
	assert.Equal(t, winner.ClientID, res.ClientID)
	assert.False(t, res.Created)

	items, total, err := f.store.Clients().List(ctx, f.businessID, nil, repository.ClientSort{}, pagination.DefaultPagination())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, items, 1)
}

func TestResolveScansUnkeyedPhoneAndBackfills(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	legacy := &entity.Client{BusinessID: f.businessID, Name: "Legacy", Phone: "+44 (0)7700 900123", Active: true}
	f.store.Clients().Restore(legacy)
	require.Empty(t, f.client(t, legacy.ID).PhoneNormalized)

	res, err := f.resolver.Resolve(ctx, ResolveInput{
		BusinessID: f.businessID,
		Contact:    identity.Contact{Name: "Legacy", Phone: "07700 900123"},
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, legacy.ID, res.ClientID)
	assert.False(t, res.Created)
	assert.Equal(t, enum.MatchKindPhone, res.MatchedBy)

	assert.Equal(t, "7700900123", f.client(t, legacy.ID).PhoneNormalized)
	found, err := f.store.Clients().FindByPhone(ctx, f.businessID, "7700900123")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, legacy.ID, found.ID)
}

func TestResolveSkipsPhoneScanWhenDisabled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	legacy := &entity.Client{BusinessID: f.businessID, Name: "Legacy", Phone: "+44 (0)7700 900123", Active: true}
	f.store.Clients().Restore(legacy)

	res, err := NewIdentityResolver(f.store.Clients(), 0).Resolve(ctx, ResolveInput{
		BusinessID: f.businessID,
		Contact:    identity.Contact{Name: "Legacy", Phone: "07700 900123"},
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.Created)
	assert.NotEqual(t, legacy.ID, res.ClientID)
	assert.Empty(t, f.client(t, legacy.ID).PhoneNormalized)
}
