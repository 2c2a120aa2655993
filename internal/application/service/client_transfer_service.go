package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/clientbook-api/internal/domain/entity"
	"github.com/sangkips/clientbook-api/internal/domain/enum"
	"github.com/sangkips/clientbook-api/internal/domain/repository"
	"github.com/sangkips/clientbook-api/pkg/logger"
	"github.com/sangkips/clientbook-api/pkg/money"
	"github.com/sangkips/clientbook-api/pkg/pagination"
	"github.com/sangkips/clientbook-api/pkg/tabular"
)

// exportPageSize is the page size used while streaming an export.
const exportPageSize = 100

// ClientTransferService bulk imports and exports clients.
type ClientTransferService struct {
	clients repository.ClientRepository
}

// NewClientTransferService creates a new client transfer service
func NewClientTransferService(clients repository.ClientRepository) *ClientTransferService {
	return &ClientTransferService{clients: clients}
}

// ImportRow represents a single row from an import file
type ImportRow struct {
	Row   int // 1-indexed line in the source file
	Name  string
	Email string
	Phone string
	Tags  []string
}

// ImportRowsFromRecords maps parsed file records onto import rows. Common
// header spellings are accepted; tags may be separated by ";" or ",".
func ImportRowsFromRecords(records []tabular.Record) []ImportRow {
	rows := make([]ImportRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, ImportRow{
			Row:   rec.Line,
			Name:  rec.Get("name", "full_name", "client_name", "customer_name"),
			Email: rec.Get("email", "email_address"),
			Phone: rec.Get("phone", "phone_number", "mobile", "telephone"),
			Tags: strings.FieldsFunc(rec.Get("tags"), func(r rune) bool {
				return r == ';' || r == ','
			}),
		})
	}
	return rows
}

// ImportOutcome is the per-row result of an import.
type ImportOutcome string

const (
	ImportOutcomeImported  ImportOutcome = "imported"
	ImportOutcomeDuplicate ImportOutcome = "duplicate"
	ImportOutcomeError     ImportOutcome = "error"
)

// ImportRowResult describes what happened to one row.
type ImportRowResult struct {
	Row      int           `json:"row"`
	Outcome  ImportOutcome `json:"outcome"`
	ClientID *uuid.UUID    `json:"client_id,omitempty"`
	Message  string        `json:"message,omitempty"`
}

// ImportResult contains the result of a client import operation
type ImportResult struct {
	TotalRows  int               `json:"total_rows"`
	Imported   int               `json:"imported"`
	Duplicates int               `json:"duplicates"`
	Failed     int               `json:"failed"`
	Rows       []ImportRowResult `json:"rows"`
}

func (r *ImportResult) add(res ImportRowResult) {
	switch res.Outcome {
	case ImportOutcomeImported:
		r.Imported++
	case ImportOutcomeDuplicate:
		r.Duplicates++
	default:
		r.Failed++
	}
	r.Rows = append(r.Rows, res)
}

// Import inserts each row that does not match an active client by email, then
// phone. Rows are independent: a failed row does not stop the import. Rows
// are inserted as they go, so a later row duplicating an earlier one in the
// same file is reported as a duplicate. progress, if set, is called once per row.
func (s *ClientTransferService) Import(ctx context.Context, businessID uuid.UUID, rows []ImportRow, progress func()) (*ImportResult, error) {
	result := &ImportResult{TotalRows: len(rows), Rows: make([]ImportRowResult, 0, len(rows))}
	log := logger.GetLogger("transfer").WithField("business_id", businessID)

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := s.importRow(ctx, businessID, row)
		if err != nil {
			res = ImportRowResult{Row: row.Row, Outcome: ImportOutcomeError, Message: err.Error()}
		}
		result.add(res)
		if progress != nil {
			progress()
		}
	}

	log.WithField("imported", result.Imported).
		WithField("duplicates", result.Duplicates).
		WithField("failed", result.Failed).
		Info("client import finished")
	return result, nil
}

func (s *ClientTransferService) importRow(ctx context.Context, businessID uuid.UUID, row ImportRow) (ImportRowResult, error) {
	if errs := validateContact(row.Email, row.Phone, true); len(errs) > 0 {
		return ImportRowResult{Row: row.Row, Outcome: ImportOutcomeError, Message: errs[0].Message}, nil
	}

	dup, err := s.duplicateOf(ctx, businessID, row)
	if err != nil {
		return ImportRowResult{}, err
	}
	if dup != nil {
		return ImportRowResult{Row: row.Row, Outcome: ImportOutcomeDuplicate, ClientID: dup, Message: "Client already exists"}, nil
	}

	client := &entity.Client{
		BusinessID: businessID,
		Name:       strings.TrimSpace(row.Name),
		Tags:       uniqueTags(row.Tags),
		Source:     enum.ClientSourceImport,
		Active:     true,
	}
	client.SetEmail(row.Email)
	client.SetPhone(row.Phone)

	err = s.clients.Create(ctx, client)
	if errors.Is(err, repository.ErrDuplicateIdentifier) {
		dup, lookupErr := s.duplicateOf(ctx, businessID, row)
		if lookupErr != nil {
			return ImportRowResult{}, lookupErr
		}
		return ImportRowResult{Row: row.Row, Outcome: ImportOutcomeDuplicate, ClientID: dup, Message: "Client already exists"}, nil
	}
	if err != nil {
		return ImportRowResult{}, fmt.Errorf("create client: %w", err)
	}

	id := client.ID
	return ImportRowResult{Row: row.Row, Outcome: ImportOutcomeImported, ClientID: &id}, nil
}

// duplicateOf returns the id of the active client owning the row's email,
// else its phone.
func (s *ClientTransferService) duplicateOf(ctx context.Context, businessID uuid.UUID, row ImportRow) (*uuid.UUID, error) {
	candidate := entity.Client{}
	candidate.SetEmail(row.Email)
	candidate.SetPhone(row.Phone)

	if candidate.EmailNormalized != "" {
		c, err := s.clients.FindByEmail(ctx, businessID, candidate.EmailNormalized)
		if err != nil {
			return nil, fmt.Errorf("find client by email: %w", err)
		}
		if c != nil {
			return &c.ID, nil
		}
	}
	if key := candidate.MatchablePhone(); key != "" {
		c, err := s.clients.FindByPhone(ctx, businessID, key)
		if err != nil {
			return nil, fmt.Errorf("find client by phone: %w", err)
		}
		if c != nil {
			return &c.ID, nil
		}
	}
	return nil, nil
}

// ExportRow is the flat snapshot of one client.
type ExportRow struct {
	Name          string
	Email         string
	Phone         string
	TotalBookings int
	TotalSpent    int64
	AverageSpend  int64
	LastVisit     string
	Tags          []string
	Source        enum.ClientSource
}

// ExportHeader is the column order of an export file.
var ExportHeader = []string{
	"name", "email", "phone", "total_bookings", "total_spent",
	"average_spend", "last_visit", "tags", "source",
}

// Values renders the row in ExportHeader order, with amounts in major units.
func (r ExportRow) Values() []string {
	return []string{
		r.Name,
		r.Email,
		r.Phone,
		strconv.Itoa(r.TotalBookings),
		money.FormatMinor(r.TotalSpent),
		money.FormatMinor(r.AverageSpend),
		r.LastVisit,
		strings.Join(r.Tags, ";"),
		string(r.Source),
	}
}

// Export streams every active client, oldest first, to write. It returns the
// number of rows written.
func (s *ClientTransferService) Export(ctx context.Context, businessID uuid.UUID, write func(ExportRow) error) (int, error) {
	sort := repository.ClientSort{Field: repository.ClientSortCreatedAt, Order: pagination.SortAsc}
	params := &pagination.PaginationParams{Page: 1, PerPage: exportPageSize}
	written := 0

	for {
		clients, total, err := s.clients.List(ctx, businessID, nil, sort, params)
		if err != nil {
			return written, fmt.Errorf("list clients: %w", err)
		}
		for _, c := range clients {
			if err := write(toExportRow(c)); err != nil {
				return written, err
			}
			written++
		}
		if len(clients) == 0 || int64(params.Offset()+len(clients)) >= total {
			return written, nil
		}
		params.Page++
	}
}

func toExportRow(c entity.Client) ExportRow {
	row := ExportRow{
		Name:          c.Name,
		Email:         c.Email,
		Phone:         c.Phone,
		TotalBookings: c.Stats.TotalBookings,
		TotalSpent:    c.Stats.TotalSpent,
		AverageSpend:  c.Stats.AverageSpend,
		Tags:          append([]string{}, c.Tags...),
		Source:        c.Source,
	}
	if c.Stats.LastVisit != nil {
		row.LastVisit = *c.Stats.LastVisit
	}
	return row
}
