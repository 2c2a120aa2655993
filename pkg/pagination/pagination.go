package pagination

import (
	"math"
	"strings"
)

const (
	DefaultPerPage = 15
	MaxPerPage     = 100
)

// Pagination represents pagination metadata returned with a page of items
type Pagination struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrev     bool  `json:"has_prev"`
}

// PaginationParams represents input parameters for pagination
type PaginationParams struct {
	Page    int `form:"page" json:"page"`
	PerPage int `form:"per_page" json:"per_page"`
}

// DefaultPagination returns default pagination values
func DefaultPagination() *PaginationParams {
	return &PaginationParams{
		Page:    1,
		PerPage: DefaultPerPage,
	}
}

// Validate ensures pagination parameters are within valid ranges
func (p *PaginationParams) Validate() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
}

// Offset calculates the offset for store queries
func (p *PaginationParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// NewPagination creates a new Pagination response
func NewPagination(page, perPage int, total int64) *Pagination {
	totalPages := 0
	if perPage > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(perPage)))
	}

	return &Pagination{
		CurrentPage: page,
		PerPage:     perPage,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
}

// SortOrder is the direction of a sorted listing.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortParams names a sort field and direction. Field is checked against a
// whitelist by Resolve; unknown fields fall back to the default.
type SortParams struct {
	Field string    `form:"sort" json:"sort"`
	Order SortOrder `form:"order" json:"order"`
}

// Resolve returns the sort field and order, substituting defaults for values
// not present in allowed.
func (s SortParams) Resolve(allowed []string, defaultField string, defaultOrder SortOrder) (string, SortOrder) {
	field := defaultField
	for _, f := range allowed {
		if strings.EqualFold(s.Field, f) {
			field = f
			break
		}
	}

	order := defaultOrder
	switch SortOrder(strings.ToLower(string(s.Order))) {
	case SortAsc:
		order = SortAsc
	case SortDesc:
		order = SortDesc
	}
	return field, order
}
