package mongostore

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/clientbook-api/internal/domain/entity"
	"github.com/sangkips/clientbook-api/internal/domain/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestClientDocPhoneMatchKey(t *testing.T) {
	c := &entity.Client{ID: uuid.New(), BusinessID: uuid.New(), Name: "Alice", Phone: "123"}
	c.ApplyDefaults()
	assert.Empty(t, newClientDoc(c).PhoneMatchKey)

	c.SetPhone("+44 7700 900123")
	assert.Equal(t, "7700900123", newClientDoc(c).PhoneMatchKey)
}

func TestClientDocRoundTripAppliesDefaults(t *testing.T) {
	raw, err := bson.Marshal(bson.M{
		"_id":         uuid.NewString(),
		"business_id": uuid.NewString(),
		"name":        "",
		"email":       " Alice@Example.com ",
		"phone":       "07700 900123",
		"active":      true,
		"created_at":  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	var doc clientDoc
	require.NoError(t, bson.Unmarshal(raw, &doc))
	c := doc.toEntity()

	assert.Equal(t, entity.PlaceholderClientName, c.Name)
	assert.Equal(t, "alice@example.com", c.EmailNormalized)
	assert.Equal(t, "7700900123", c.PhoneNormalized)
	assert.Equal(t, enum.ClientSourceManual, c.Source)
	assert.NotNil(t, c.Tags)
	assert.NotNil(t, c.Notes)
	assert.Nil(t, c.Stats.LastVisit)
}

func TestClientDocNotes(t *testing.T) {
	author := uuid.New()
	c := &entity.Client{ID: uuid.New(), BusinessID: uuid.New(), Name: "Alice"}
	c.ApplyDefaults()
	c.Notes = append(c.Notes,
		entity.ClientNote{ID: uuid.New(), Text: "prefers mornings", CreatedBy: &author},
		entity.ClientNote{ID: uuid.New(), Text: "imported"},
	)

	got := newClientDoc(c).toEntity()

	require.Len(t, got.Notes, 2)
	assert.Equal(t, author, *got.Notes[0].CreatedBy)
	assert.Nil(t, got.Notes[1].CreatedBy)
}

func TestBookingDoc(t *testing.T) {
	clientID := uuid.New()
	b := &entity.Booking{
		ID:         uuid.New(),
		BusinessID: uuid.New(),
		CustomerID: &clientID,
		Customer:   entity.BookingCustomer{Name: "Alice", Email: "alice@example.com"},
		Date:       "2025-05-01",
		Status:     enum.BookingStatusCompleted,
		Service:    entity.BookingService{Name: "Cut", Price: 4500},
	}

	got := newBookingDoc(b).toEntity()
	assert.Equal(t, clientID, *got.CustomerID)
	assert.Equal(t, b.Customer, got.Customer)
	assert.Equal(t, b.Service, got.Service)

	doc := newBookingDoc(b)
	doc.Status = "rescheduled"
	doc.CustomerID = ""
	got = doc.toEntity()
	assert.Equal(t, enum.BookingStatusPending, got.Status)
	assert.Nil(t, got.CustomerID)
}

func TestIndexSpecs(t *testing.T) {
	specs := indexSpecs()
	require.Contains(t, specs, collClients)
	assert.Len(t, specs[collClients], 4)
	require.Contains(t, specs, collIdempotency)
}
