package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sangkips/clientbook-api/internal/domain/entity"
	"github.com/sangkips/clientbook-api/internal/domain/enum"
	"github.com/sangkips/clientbook-api/internal/domain/identity"
	"github.com/sangkips/clientbook-api/internal/domain/repository"
	"github.com/sangkips/clientbook-api/pkg/apperror"
	"github.com/sangkips/clientbook-api/pkg/pagination"
)

// RecentBookingsLimit is the number of bookings shown on a client detail.
const RecentBookingsLimit = 10

// ClientService handles CRM operations on clients. These bypass the identity
// resolver: they edit records directly.
type ClientService struct {
	clients    repository.ClientRepository
	bookings   repository.BookingRepository
	aggregator *StatsAggregator
	segments   *SegmentClassifier
	now        Clock
}

// NewClientService creates a new client service
func NewClientService(clients repository.ClientRepository, bookings repository.BookingRepository, aggregator *StatsAggregator, segments *SegmentClassifier, now Clock) *ClientService {
	if now == nil {
		now = SystemClock
	}
	return &ClientService{
		clients:    clients,
		bookings:   bookings,
		aggregator: aggregator,
		segments:   segments,
		now:        now,
	}
}

// ClientView is a client with the segments it currently falls into.
type ClientView struct {
	entity.Client
	Segments []enum.Segment `json:"segments"`
}

// ClientDetail is the freshly recomputed client with its recent bookings.
type ClientDetail struct {
	ClientView
	RecentBookings []entity.Booking `json:"recent_bookings"`
}

// ListClientsInput represents the list clients input
type ListClientsInput struct {
	Search  string
	Tag     string
	Segment string
	Sort    pagination.SortParams
	Params  pagination.PaginationParams
}

// ClientListResult is one page of clients plus per-segment tallies for the
// whole business.
type ClientListResult struct {
	Items         []ClientView           `json:"items"`
	Pagination    *pagination.Pagination `json:"pagination"`
	SegmentCounts map[enum.Segment]int64 `json:"segment_counts"`
}

// ListClients lists active clients with segment labels and counts.
func (s *ClientService) ListClients(ctx context.Context, businessID uuid.UUID, input *ListClientsInput) (*ClientListResult, error) {
	input.Params.Validate()

	today, err := s.segments.Today(ctx, businessID)
	if err != nil {
		return nil, err
	}

	filter := &repository.ClientFilter{
		Search: strings.TrimSpace(input.Search),
		Tag:    entity.NormalizeTag(input.Tag),
	}
	if input.Segment != "" {
		seg, err := enum.ParseSegment(input.Segment)
		if err != nil {
			return nil, apperror.NewBadRequestError("Unknown segment: " + input.Segment)
		}
		criteria := Criteria(seg, today)
		filter.Segment = &criteria
	}

	field, order := input.Sort.Resolve(repository.ClientSortFields, repository.ClientSortCreatedAt, pagination.SortDesc)
	clients, total, err := s.clients.List(ctx, businessID, filter, repository.ClientSort{Field: field, Order: order}, &input.Params)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	counts, err := s.segments.CountBySegment(ctx, businessID, today)
	if err != nil {
		return nil, err
	}

	views := make([]ClientView, 0, len(clients))
	for _, c := range clients {
		views = append(views, ClientView{Client: c, Segments: Classify(c.Stats, today)})
	}

	return &ClientListResult{
		Items:         views,
		Pagination:    pagination.NewPagination(input.Params.Page, input.Params.PerPage, total),
		SegmentCounts: counts,
	}, nil
}

// SegmentCounts returns the number of active clients in each segment.
func (s *ClientService) SegmentCounts(ctx context.Context, businessID uuid.UUID) (map[enum.Segment]int64, error) {
	today, err := s.segments.Today(ctx, businessID)
	if err != nil {
		return nil, err
	}
	return s.segments.CountBySegment(ctx, businessID, today)
}

// GetClient recomputes the client's stats and returns the current detail.
func (s *ClientService) GetClient(ctx context.Context, businessID, id uuid.UUID) (*ClientDetail, error) {
	if _, err := s.aggregator.Recompute(ctx, businessID, id); err != nil {
		return nil, err
	}

	client, err := s.getActive(ctx, businessID, id)
	if err != nil {
		return nil, err
	}

	recent, err := s.bookings.FindForIdentity(ctx, businessID, client.IdentityFilter(), RecentBookingsLimit)
	if err != nil {
		return nil, fmt.Errorf("load recent bookings: %w", err)
	}
	if recent == nil {
		recent = []entity.Booking{}
	}

	today, err := s.segments.Today(ctx, businessID)
	if err != nil {
		return nil, err
	}

	return &ClientDetail{
		ClientView:     ClientView{Client: *client, Segments: Classify(client.Stats, today)},
		RecentBookings: recent,
	}, nil
}

// CreateClientInput represents the create client input
type CreateClientInput struct {
	Name   string
	Email  string
	Phone  string
	Tags   []string
	Source enum.ClientSource
}

// DuplicateWarning points at the active client that already owns an identifier.
type DuplicateWarning struct {
	ExistingClientID uuid.UUID      `json:"existing_client_id"`
	MatchedBy        enum.MatchKind `json:"matched_by"`
	Message          string         `json:"message"`
}

// CreateClientResult carries either the new client or a duplicate warning.
type CreateClientResult struct {
	Client    *entity.Client    `json:"client,omitempty"`
	Duplicate *DuplicateWarning `json:"duplicate,omitempty"`
}

// CreateClient creates a client from manual CRM entry. A client whose email or
// phone is already taken is not created; the result carries a warning with
// the existing client's id instead.
func (s *ClientService) CreateClient(ctx context.Context, businessID uuid.UUID, input *CreateClientInput) (*CreateClientResult, error) {
	if errs := validateContact(input.Email, input.Phone, true); len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	dup, err := s.findDuplicate(ctx, businessID, input.Email, input.Phone, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if dup != nil {
		return &CreateClientResult{Duplicate: dup}, nil
	}

	source := input.Source
	if !source.IsValid() {
		source = enum.ClientSourceManual
	}
	client := &entity.Client{
		BusinessID: businessID,
		Name:       strings.TrimSpace(input.Name),
		Tags:       uniqueTags(input.Tags),
		Source:     source,
		Active:     true,
	}
	client.SetEmail(input.Email)
	client.SetPhone(input.Phone)

	err = s.clients.Create(ctx, client)
	if errors.Is(err, repository.ErrDuplicateIdentifier) {
		dup, lookupErr := s.findDuplicate(ctx, businessID, input.Email, input.Phone, uuid.Nil)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if dup != nil {
			return &CreateClientResult{Duplicate: dup}, nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	return &CreateClientResult{Client: client}, nil
}

// findDuplicate returns a warning when an active client other than self owns
// the email or phone.
func (s *ClientService) findDuplicate(ctx context.Context, businessID uuid.UUID, email, phone string, self uuid.UUID) (*DuplicateWarning, error) {
	if key := identity.NormalizeEmail(email); key != "" {
		c, err := s.clients.FindByEmail(ctx, businessID, key)
		if err != nil {
			return nil, fmt.Errorf("find client by email: %w", err)
		}
		if c != nil && c.ID != self {
			return &DuplicateWarning{
				ExistingClientID: c.ID,
				MatchedBy:        enum.MatchKindEmail,
				Message:          "A client with this email already exists",
			}, nil
		}
	}
	if key := identity.MatchablePhone(phone); key != "" {
		c, err := s.clients.FindByPhone(ctx, businessID, key)
		if err != nil {
			return nil, fmt.Errorf("find client by phone: %w", err)
		}
		if c != nil && c.ID != self {
			return &DuplicateWarning{
				ExistingClientID: c.ID,
				MatchedBy:        enum.MatchKindPhone,
				Message:          "A client with this phone number already exists",
			}, nil
		}
	}
	return nil, nil
}

// UpdateClientInput represents the update client input
type UpdateClientInput struct {
	Name  *string
	Email *string
	Phone *string
	Tags  *[]string
}

// UpdateClient edits contact fields. Changing email or phone re-derives the
// keys and recomputes stats, since a different set of bookings now matches.
func (s *ClientService) UpdateClient(ctx context.Context, businessID, id uuid.UUID, input *UpdateClientInput) (*entity.Client, error) {
	client, err := s.getActive(ctx, businessID, id)
	if err != nil {
		return nil, err
	}

	email, phone := client.Email, client.Phone
	if input.Email != nil {
		email = *input.Email
	}
	if input.Phone != nil {
		phone = *input.Phone
	}
	if errs := validateContact(email, phone, input.Email != nil || input.Phone != nil); len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	var patch repository.ClientPatch
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			name = entity.PlaceholderClientName
		}
		patch.Name = &name
	}
	if input.Email != nil {
		patch.Email = input.Email
	}
	if input.Phone != nil {
		patch.Phone = input.Phone
	}
	if input.Tags != nil {
		tags := uniqueTags(*input.Tags)
		patch.Tags = &tags
	}

	if err := s.update(ctx, businessID, id, patch); err != nil {
		return nil, err
	}

	identifiersChanged := identity.NormalizeEmail(email) != client.EmailNormalized ||
		identity.NormalizePhone(phone) != client.PhoneNormalized
	if identifiersChanged {
		if _, err := s.aggregator.Recompute(ctx, businessID, id); err != nil {
			return nil, err
		}
	}

	return s.getActive(ctx, businessID, id)
}

// DeleteClient soft-deletes a client. Its identifiers become free for reuse.
func (s *ClientService) DeleteClient(ctx context.Context, businessID, id uuid.UUID) error {
	inactive := false
	return s.update(ctx, businessID, id, repository.ClientPatch{Active: &inactive})
}

// AddTag adds a tag; tags are a set, so adding an existing tag is a no-op.
func (s *ClientService) AddTag(ctx context.Context, businessID, id uuid.UUID, tag string) (*entity.Client, error) {
	tag = entity.NormalizeTag(tag)
	if tag == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "tag", Message: "Tag is required"}})
	}

	client, err := s.getActive(ctx, businessID, id)
	if err != nil {
		return nil, err
	}
	if client.HasTag(tag) {
		return client, nil
	}

	tags := append([]string(client.Tags), tag)
	if err := s.update(ctx, businessID, id, repository.ClientPatch{Tags: &tags}); err != nil {
		return nil, err
	}
	client.Tags = tags
	return client, nil
}

// RemoveTag removes a tag if present.
func (s *ClientService) RemoveTag(ctx context.Context, businessID, id uuid.UUID, tag string) (*entity.Client, error) {
	client, err := s.getActive(ctx, businessID, id)
	if err != nil {
		return nil, err
	}

	tag = entity.NormalizeTag(tag)
	tags := make([]string, 0, len(client.Tags))
	for _, t := range client.Tags {
		if !strings.EqualFold(t, tag) {
			tags = append(tags, t)
		}
	}
	if len(tags) == len(client.Tags) {
		return client, nil
	}

	if err := s.update(ctx, businessID, id, repository.ClientPatch{Tags: &tags}); err != nil {
		return nil, err
	}
	client.Tags = tags
	return client, nil
}

// AddNote appends a timestamped note.
func (s *ClientService) AddNote(ctx context.Context, businessID, id uuid.UUID, text string, author *uuid.UUID) (*entity.ClientNote, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "text", Message: "Note text is required"}})
	}

	client, err := s.getActive(ctx, businessID, id)
	if err != nil {
		return nil, err
	}

	note := entity.ClientNote{
		ID:        uuid.New(),
		Text:      text,
		CreatedBy: author,
		CreatedAt: s.now().UTC(),
	}
	notes := append([]entity.ClientNote(client.Notes), note)
	if err := s.update(ctx, businessID, id, repository.ClientPatch{Notes: &notes}); err != nil {
		return nil, err
	}
	return &note, nil
}

// RemoveNote deletes a note by id.
func (s *ClientService) RemoveNote(ctx context.Context, businessID, id, noteID uuid.UUID) error {
	client, err := s.getActive(ctx, businessID, id)
	if err != nil {
		return err
	}

	notes := make([]entity.ClientNote, 0, len(client.Notes))
	for _, n := range client.Notes {
		if n.ID != noteID {
			notes = append(notes, n)
		}
	}
	if len(notes) == len(client.Notes) {
		return apperror.NewNotFoundError("Note")
	}
	return s.update(ctx, businessID, id, repository.ClientPatch{Notes: &notes})
}

func (s *ClientService) getActive(ctx context.Context, businessID, id uuid.UUID) (*entity.Client, error) {
	client, err := s.clients.GetByID(ctx, businessID, id)
	if err != nil {
		return nil, fmt.Errorf("load client: %w", err)
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}
	return client, nil
}

// update maps store sentinels to application errors.
func (s *ClientService) update(ctx context.Context, businessID, id uuid.UUID, patch repository.ClientPatch) error {
	err := s.clients.Update(ctx, businessID, id, patch)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NewNotFoundError("Client")
	case errors.Is(err, repository.ErrDuplicateIdentifier):
		return apperror.NewConflictError("Email or phone already belongs to another client")
	}
	return fmt.Errorf("update client: %w", err)
}

var validate = validator.New()

// validateContact checks that the client keeps at least one identifier and
// that a supplied email parses.
func validateContact(email, phone string, required bool) []apperror.FieldError {
	var errs []apperror.FieldError
	email = strings.TrimSpace(email)
	if required && email == "" && strings.TrimSpace(phone) == "" {
		errs = append(errs, apperror.FieldError{Field: "email", Message: "Email or phone is required"})
	}
	if email != "" {
		if err := validate.Var(email, "email"); err != nil {
			errs = append(errs, apperror.FieldError{Field: "email", Message: "Email is not valid"})
		}
	}
	return errs
}

func uniqueTags(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		t = entity.NormalizeTag(t)
		key := strings.ToLower(t)
		if t == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}
