package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/clientbook-api/internal/domain/entity"
	"github.com/sangkips/clientbook-api/internal/domain/enum"
	"github.com/sangkips/clientbook-api/pkg/apperror"
	"github.com/sangkips/clientbook-api/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createClient(t *testing.T, f *fixture, name, email, phone string, tags ...string) *entity.Client {
	t.Helper()
	res, err := f.clients.CreateClient(context.Background(), f.businessID, &CreateClientInput{
		Name: name, Email: email, Phone: phone, Tags: tags,
	})
	require.NoError(t, err)
	require.Nil(t, res.Duplicate)
	require.NotNil(t, res.Client)
	return res.Client
}

func TestCreateClient(t *testing.T) {
	f := newFixture(t)
	c := createClient(t, f, " Hana ", "Hana@X.com", "07700 900111", "vip", "VIP", " colour ")

	assert.Equal(t, "Hana", c.Name)
	assert.Equal(t, "hana@x.com", c.EmailNormalized)
	assert.Equal(t, "7700900111", c.PhoneNormalized)
	assert.Equal(t, enum.ClientSourceManual, c.Source)
	assert.Equal(t, []string{"vip", "colour"}, []string(c.Tags))
}

func TestCreateClientDuplicateWarning(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	existing := createClient(t, f, "Hana", "hana@x.com", "07700 900111")

	res, err := f.clients.CreateClient(ctx, f.businessID, &CreateClientInput{Name: "Other", Phone: "+44 7700 900111"})
	require.NoError(t, err)
	assert.Nil(t, res.Client)
	require.NotNil(t, res.Duplicate)
	assert.Equal(t, existing.ID, res.Duplicate.ExistingClientID)
	assert.Equal(t, enum.MatchKindPhone, res.Duplicate.MatchedBy)

	n, err := f.store.Clients().Count(ctx, f.businessID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestCreateClientValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.clients.CreateClient(ctx, f.businessID, &CreateClientInput{Name: "Nobody"})
	appErr := apperror.GetAppError(err)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.Code)

	_, err = f.clients.CreateClient(ctx, f.businessID, &CreateClientInput{Name: "Bad", Email: "not-an-email"})
	appErr = apperror.GetAppError(err)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.Code)
	require.Len(t, appErr.Errors, 1)
	assert.Equal(t, "email", appErr.Errors[0].Field)
}

func TestUpdateClientChangesIdentifiersAndRecomputes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := createClient(t, f, "Ivy", "ivy@x.com", "")
	f.booking(t, "Ivy", "", "07700 900444", "2025-05-01", enum.BookingStatusCompleted, 2000)

	updated, err := f.clients.UpdateClient(ctx, f.businessID, c.ID, &UpdateClientInput{
		Name:  ptr("Ivy Jones"),
		Phone: ptr("07700 900444"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ivy Jones", updated.Name)
	assert.Equal(t, "7700900444", updated.PhoneNormalized)
	assert.Equal(t, 1, updated.Stats.TotalBookings)
	assert.Equal(t, int64(2000), updated.Stats.TotalSpent)
}

func TestUpdateClientConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	createClient(t, f, "Ivy", "ivy@x.com", "")
	other := createClient(t, f, "Jo", "jo@x.com", "")

	_, err := f.clients.UpdateClient(ctx, f.businessID, other.ID, &UpdateClientInput{Email: ptr("IVY@x.com")})
	appErr := apperror.GetAppError(err)
	assert.Equal(t, http.StatusConflict, appErr.Code)

	_, err = f.clients.UpdateClient(ctx, f.businessID, uuid.New(), &UpdateClientInput{Name: ptr("x")})
	assert.True(t, apperror.IsNotFound(err))
}

func TestDeleteClientFreesIdentifiers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := createClient(t, f, "Kim", "kim@x.com", "")

	require.NoError(t, f.clients.DeleteClient(ctx, f.businessID, c.ID))
	_, err := f.clients.GetClient(ctx, f.businessID, c.ID)
	assert.True(t, apperror.IsNotFound(err))

	again := createClient(t, f, "Kim", "kim@x.com", "")
	assert.NotEqual(t, c.ID, again.ID)

	assert.True(t, apperror.IsNotFound(f.clients.DeleteClient(ctx, f.businessID, c.ID)))
}

func TestClientTags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := createClient(t, f, "Lea", "lea@x.com", "", "vip")

	got, err := f.clients.AddTag(ctx, f.businessID, c.ID, "VIP")
	require.NoError(t, err)
	assert.Equal(t, []string{"vip"}, []string(got.Tags))

	got, err = f.clients.AddTag(ctx, f.businessID, c.ID, "  blonde ")
	require.NoError(t, err)
	assert.Equal(t, []string{"vip", "blonde"}, []string(got.Tags))

	got, err = f.clients.RemoveTag(ctx, f.businessID, c.ID, "Vip")
	require.NoError(t, err)
	assert.Equal(t, []string{"blonde"}, []string(got.Tags))

	_, err = f.clients.AddTag(ctx, f.businessID, c.ID, " ")
	assert.Equal(t, http.StatusUnprocessableEntity, apperror.GetAppError(err).Code)
}

func TestClientNotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := createClient(t, f, "Mo", "mo@x.com", "")
	author := uuid.New()

	note, err := f.clients.AddNote(ctx, f.businessID, c.ID, " Prefers mornings ", &author)
	require.NoError(t, err)
	assert.Equal(t, "Prefers mornings", note.Text)
	assert.True(t, f.now.Equal(note.CreatedAt))

	stored := f.client(t, c.ID)
	require.Len(t, stored.Notes, 1)
	assert.Equal(t, note.ID, stored.Notes[0].ID)

	require.NoError(t, f.clients.RemoveNote(ctx, f.businessID, c.ID, note.ID))
	assert.Empty(t, f.client(t, c.ID).Notes)
	assert.True(t, apperror.IsNotFound(f.clients.RemoveNote(ctx, f.businessID, c.ID, note.ID)))
}

func TestGetClientRecomputesAndListsRecentBookings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := createClient(t, f, "Nia", "nia@x.com", "")
	f.booking(t, "Nia", "NIA@x.com", "", "2025-05-25", enum.BookingStatusCompleted, 5000)
	f.booking(t, "Nia", "nia@x.com", "", "2025-05-28", enum.BookingStatusCancelled, 5000)

	detail, err := f.clients.GetClient(ctx, f.businessID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.Stats.TotalBookings)
	assert.Equal(t, 1, detail.Stats.Cancellations)
	assert.Len(t, detail.RecentBookings, 1)
	assert.Equal(t, []enum.Segment{enum.SegmentNew}, detail.Segments)
}

func TestListClients(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	createClient(t, f, "Olu", "olu@x.com", "", "vip")
	createClient(t, f, "Pat", "pat@x.com", "07700 900777")
	rita := createClient(t, f, "Rita", "rita@x.com", "")
	f.booking(t, "Rita", "rita@x.com", "", "2025-05-30", enum.BookingStatusCompleted, 1000)
	_, err := f.aggregator.Recompute(ctx, f.businessID, rita.ID)
	require.NoError(t, err)

	res, err := f.clients.ListClients(ctx, f.businessID, &ListClientsInput{
		Sort: pagination.SortParams{Field: "name", Order: "asc"},
	})
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	assert.Equal(t, "Olu", res.Items[0].Name)
	assert.Equal(t, int64(3), res.Pagination.Total)
	assert.Equal(t, int64(1), res.SegmentCounts[enum.SegmentNew])
	assert.Equal(t, int64(2), res.SegmentCounts[enum.SegmentAtRisk])

	res, err = f.clients.ListClients(ctx, f.businessID, &ListClientsInput{Segment: "new"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, rita.ID, res.Items[0].ID)

	res, err = f.clients.ListClients(ctx, f.businessID, &ListClientsInput{Tag: "VIP"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Olu", res.Items[0].Name)

	res, err = f.clients.ListClients(ctx, f.businessID, &ListClientsInput{Search: "0777"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Pat", res.Items[0].Name)

	_, err = f.clients.ListClients(ctx, f.businessID, &ListClientsInput{Segment: "vip"})
	assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)
}
