package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/clientbook-api/internal/domain/entity"
	"github.com/sangkips/clientbook-api/internal/domain/enum"
	"github.com/sangkips/clientbook-api/internal/domain/identity"
	"github.com/sangkips/clientbook-api/internal/domain/repository"
	"github.com/sangkips/clientbook-api/pkg/logger"
	"github.com/sirupsen/logrus"
)

// IdentityResolver maps a booking contact to the single active client of a
// business that owns its email or phone, creating the client when none does.
type IdentityResolver struct {
	clients        repository.ClientRepository
	phoneScanLimit int
	log            *logrus.Logger
}

// NewIdentityResolver creates a resolver. phoneScanLimit bounds the slow-path
// scan for clients whose phone key was never stored; 0 disables it.
func NewIdentityResolver(clients repository.ClientRepository, phoneScanLimit int) *IdentityResolver {
	return &IdentityResolver{
		clients:        clients,
		phoneScanLimit: phoneScanLimit,
		log:            logger.GetLogger("identity"),
	}
}

// ResolveInput is the contact captured on a booking.
type ResolveInput struct {
	BusinessID   uuid.UUID
	Contact      identity.Contact
	Source       enum.ClientSource
	ObservedDate *string
}

// Resolution is the outcome of a successful resolve.
type Resolution struct {
	ClientID  uuid.UUID      `json:"client_id"`
	Created   bool           `json:"created"`
	MatchedBy enum.MatchKind `json:"matched_by,omitempty"`
}

// Resolve returns the client for the contact. Email wins over phone. It
// returns (nil, nil) when the contact has neither a usable email nor phone,
// in which case the booking stays a guest booking.
func (r *IdentityResolver) Resolve(ctx context.Context, in ResolveInput) (*Resolution, error) {
	emailKey, phoneKey := in.Contact.Keys()
	if emailKey == "" && phoneKey == "" {
		return nil, nil
	}

	existing, kind, err := r.lookup(ctx, in.BusinessID, emailKey, phoneKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return r.refresh(ctx, existing, in.Contact, kind)
	}

	client := newClientFromContact(in.BusinessID, in.Contact, in.Source)
	if in.ObservedDate != nil && *in.ObservedDate != "" {
		first, last := *in.ObservedDate, *in.ObservedDate
		client.Stats.FirstVisit = &first
		client.Stats.LastVisit = &last
	}

	err = r.clients.Create(ctx, client)
	if errors.Is(err, repository.ErrDuplicateIdentifier) {
		// a concurrent request created the client first
		existing, kind, err = r.lookup(ctx, in.BusinessID, emailKey, phoneKey)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, fmt.Errorf("resolve contact: %w", repository.ErrDuplicateIdentifier)
		}
		return r.refresh(ctx, existing, in.Contact, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"business_id": in.BusinessID,
		"client_id":   client.ID,
		"source":      client.Source,
	}).Info("created client from booking contact")

	return &Resolution{ClientID: client.ID, Created: true}, nil
}

// lookup finds the client owning emailKey, falling back to phoneKey.
func (r *IdentityResolver) lookup(ctx context.Context, businessID uuid.UUID, emailKey, phoneKey string) (*entity.Client, enum.MatchKind, error) {
	if emailKey != "" {
		c, err := r.clients.FindByEmail(ctx, businessID, emailKey)
		if err != nil {
			return nil, enum.MatchKindNone, fmt.Errorf("find client by email: %w", err)
		}
		if c != nil {
			return c, enum.MatchKindEmail, nil
		}
	}

	if phoneKey == "" {
		return nil, enum.MatchKindNone, nil
	}

	c, err := r.clients.FindByPhone(ctx, businessID, phoneKey)
	if err != nil {
		return nil, enum.MatchKindNone, fmt.Errorf("find client by phone: %w", err)
	}
	if c != nil {
		return c, enum.MatchKindPhone, nil
	}

	c, err = r.scanByPhone(ctx, businessID, phoneKey)
	if err != nil || c == nil {
		return nil, enum.MatchKindNone, err
	}
	return c, enum.MatchKindPhone, nil
}

// scanByPhone is the bounded slow path. A hit gets its phone key written so
// the next lookup is indexed.
func (r *IdentityResolver) scanByPhone(ctx context.Context, businessID uuid.UUID, phoneKey string) (*entity.Client, error) {
	if r.phoneScanLimit <= 0 {
		return nil, nil
	}
	c, err := r.clients.ScanByPhone(ctx, businessID, phoneKey, r.phoneScanLimit)
	if err != nil {
		return nil, fmt.Errorf("scan clients by phone: %w", err)
	}
	if c == nil {
		return nil, nil
	}

	r.log.WithFields(logrus.Fields{
		"business_id": businessID,
		"client_id":   c.ID,
	}).Warn("client matched by phone scan; backfilling phone key")

	phone := c.Phone
	if err := r.clients.Update(ctx, businessID, c.ID, repository.ClientPatch{Phone: &phone}); err != nil && !errors.Is(err, repository.ErrDuplicateIdentifier) {
		return nil, fmt.Errorf("backfill phone key: %w", err)
	}
	c.SetPhone(phone)
	return c, nil
}

// refresh applies the latest name from the contact and fills an identifier
// the client lacks when no other active client owns it.
func (r *IdentityResolver) refresh(ctx context.Context, c *entity.Client, contact identity.Contact, kind enum.MatchKind) (*Resolution, error) {
	var patch repository.ClientPatch
	if name := contact.DisplayName(); name != "" && name != c.Name {
		patch.Name = &name
	}

	emailKey, phoneKey := contact.Keys()
	if c.EmailNormalized == "" && emailKey != "" {
		owner, err := r.clients.FindByEmail(ctx, c.BusinessID, emailKey)
		if err != nil {
			return nil, fmt.Errorf("find client by email: %w", err)
		}
		if owner == nil {
			email := contact.Email
			patch.Email = &email
		}
	}
	if c.MatchablePhone() == "" && phoneKey != "" {
		owner, err := r.clients.FindByPhone(ctx, c.BusinessID, phoneKey)
		if err != nil {
			return nil, fmt.Errorf("find client by phone: %w", err)
		}
		if owner == nil {
			phone := contact.Phone
			patch.Phone = &phone
		}
	}

	err := r.clients.Update(ctx, c.BusinessID, c.ID, patch)
	if errors.Is(err, repository.ErrDuplicateIdentifier) {
		// lost a race for the identifier; keep the name refresh only
		err = r.clients.Update(ctx, c.BusinessID, c.ID, repository.ClientPatch{Name: patch.Name})
	}
	if err != nil {
		return nil, fmt.Errorf("refresh client: %w", err)
	}

	return &Resolution{ClientID: c.ID, MatchedBy: kind}, nil
}

func newClientFromContact(businessID uuid.UUID, contact identity.Contact, source enum.ClientSource) *entity.Client {
	if !source.IsValid() {
		source = enum.ClientSourceOnline
	}
	client := &entity.Client{
		BusinessID: businessID,
		Name:       contact.DisplayName(),
		Source:     source,
		Active:     true,
	}
	client.SetEmail(contact.Email)
	client.SetPhone(contact.Phone)
	client.ApplyDefaults()
	return client
}
