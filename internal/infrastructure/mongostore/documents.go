package mongostore

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sangkips/clientbook-api/internal/domain/entity"
	"github.com/sangkips/clientbook-api/internal/domain/enum"
	"gorm.io/datatypes"
)

// Collection names.
const (
	collClients     = "clients"
	collBookings    = "bookings"
	collBusinesses  = "businesses"
	collIdempotency = "idempotency_keys"
	collReminders   = "reminder_logs"
)

// clientDoc is the stored shape of a client. PhoneMatchKey duplicates the
// phone key only when it is long enough to identify someone, so the partial
// unique index on it ignores short numbers.
type clientDoc struct {
	ID              string    `bson:"_id"`
	BusinessID      string    `bson:"business_id"`
	Name            string    `bson:"name"`
	Email           string    `bson:"email"`
	EmailNormalized string    `bson:"email_normalized"`
	Phone           string    `bson:"phone"`
	PhoneNormalized string    `bson:"phone_normalized"`
	PhoneMatchKey   string    `bson:"phone_match_key,omitempty"`
	Tags            []string  `bson:"tags"`
	Notes           []noteDoc `bson:"notes"`
	Stats           statsDoc  `bson:"stats"`
	Source          string    `bson:"source"`
	Active          bool      `bson:"active"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

type statsDoc struct {
	TotalBookings int     `bson:"total_bookings"`
	TotalSpent    int64   `bson:"total_spent"`
	AverageSpend  int64   `bson:"average_spend"`
	LastVisit     *string `bson:"last_visit"`
	FirstVisit    *string `bson:"first_visit"`
	NoShows       int     `bson:"no_shows"`
	Cancellations int     `bson:"cancellations"`
}

type noteDoc struct {
	ID        string    `bson:"id"`
	Text      string    `bson:"text"`
	CreatedBy string    `bson:"created_by,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

func newClientDoc(c *entity.Client) clientDoc {
	doc := clientDoc{
		ID:              c.ID.String(),
		BusinessID:      c.BusinessID.String(),
		Name:            c.Name,
		Email:           c.Email,
		EmailNormalized: c.EmailNormalized,
		Phone:           c.Phone,
		PhoneNormalized: c.PhoneNormalized,
		PhoneMatchKey:   c.MatchablePhone(),
		Tags:            append([]string{}, c.Tags...),
		Notes:           make([]noteDoc, 0, len(c.Notes)),
		Stats:           statsDoc(c.Stats),
		Source:          string(c.Source),
		Active:          c.Active,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
	for _, n := range c.Notes {
		nd := noteDoc{ID: n.ID.String(), Text: n.Text, CreatedAt: n.CreatedAt}
		if n.CreatedBy != nil {
			nd.CreatedBy = n.CreatedBy.String()
		}
		doc.Notes = append(doc.Notes, nd)
	}
	return doc
}

// toEntity converts a stored document and applies load-time defaults, so
// documents missing newer fields come back complete.
func (d clientDoc) toEntity() *entity.Client {
	c := &entity.Client{
		ID:         parseUUID(d.ID),
		BusinessID: parseUUID(d.BusinessID),
		Name:       d.Name,
		Email:      d.Email,
		Phone:      d.Phone,
		Tags:       pq.StringArray(d.Tags),
		Stats:      entity.ClientStats(d.Stats),
		Source:     enum.ClientSource(d.Source),
		Active:     d.Active,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
	if d.Notes != nil {
		notes := make(datatypes.JSONSlice[entity.ClientNote], 0, len(d.Notes))
		for _, n := range d.Notes {
			note := entity.ClientNote{ID: parseUUID(n.ID), Text: n.Text, CreatedAt: n.CreatedAt}
			if n.CreatedBy != "" {
				id := parseUUID(n.CreatedBy)
				note.CreatedBy = &id
			}
			notes = append(notes, note)
		}
		c.Notes = notes
	}
	c.ApplyDefaults()
	return c
}

type bookingDoc struct {
	ID         string             `bson:"_id"`
	BusinessID string             `bson:"business_id"`
	CustomerID string             `bson:"customer_id,omitempty"`
	Customer   bookingCustomerDoc `bson:"customer"`
	Date       string             `bson:"date"`
	Status     string             `bson:"status"`
	Service    bookingServiceDoc  `bson:"service"`
	CreatedAt  time.Time          `bson:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at"`
	DeletedAt  *time.Time         `bson:"deleted_at,omitempty"`
}

type bookingCustomerDoc struct {
	Name  string `bson:"name"`
	Email string `bson:"email"`
	Phone string `bson:"phone"`
}

type bookingServiceDoc struct {
	Name  string `bson:"name"`
	Price int64  `bson:"price"`
}

func newBookingDoc(b *entity.Booking) bookingDoc {
	doc := bookingDoc{
		ID:         b.ID.String(),
		BusinessID: b.BusinessID.String(),
		Date:       b.Date,
		Status:     string(b.Status),
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
	if b.CustomerID != nil {
		doc.CustomerID = b.CustomerID.String()
	}
	doc.Customer = bookingCustomerDoc(b.Customer)
	doc.Service = bookingServiceDoc(b.Service)
	return doc
}

func (d bookingDoc) toEntity() entity.Booking {
	b := entity.Booking{
		ID:         parseUUID(d.ID),
		BusinessID: parseUUID(d.BusinessID),
		Customer:   entity.BookingCustomer(d.Customer),
		Date:       d.Date,
		Status:     parseStatus(d.Status),
		Service:    entity.BookingService(d.Service),
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
	if d.CustomerID != "" {
		id := parseUUID(d.CustomerID)
		b.CustomerID = &id
	}
	return b
}

type businessDoc struct {
	ID        string                  `bson:"_id"`
	Name      string                  `bson:"name"`
	Slug      string                  `bson:"slug"`
	Active    bool                    `bson:"active"`
	Settings  entity.BusinessSettings `bson:"settings"`
	CreatedAt time.Time               `bson:"created_at"`
	UpdatedAt time.Time               `bson:"updated_at"`
}

func (d businessDoc) toEntity() *entity.Business {
	return &entity.Business{
		ID:        parseUUID(d.ID),
		Name:      d.Name,
		Slug:      d.Slug,
		Active:    d.Active,
		Settings:  datatypes.NewJSONType(d.Settings),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type idempotencyDoc struct {
	ID           string    `bson:"_id"`
	Key          string    `bson:"key"`
	BusinessID   string    `bson:"business_id"`
	Endpoint     string    `bson:"endpoint"`
	ResponseCode int       `bson:"response_code"`
	ResponseBody string    `bson:"response_body"`
	CreatedAt    time.Time `bson:"created_at"`
	ExpiresAt    time.Time `bson:"expires_at"`
}

type reminderDoc struct {
	ID         string    `bson:"_id"`
	BusinessID string    `bson:"business_id"`
	ClientID   string    `bson:"client_id"`
	Channel    string    `bson:"channel"`
	Recipient  string    `bson:"recipient"`
	Status     string    `bson:"status"`
	ProviderID string    `bson:"provider_id,omitempty"`
	Error      string    `bson:"error,omitempty"`
	SentAt     time.Time `bson:"sent_at"`
}

func parseUUID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// parseStatus reads unknown statuses as pending rather than failing the
// whole history.
func parseStatus(s string) enum.BookingStatus {
	status, err := enum.ParseBookingStatus(s)
	if err != nil {
		return enum.BookingStatusPending
	}
	return status
}
