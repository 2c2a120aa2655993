package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginationParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      PaginationParams
		page    int
		perPage int
		offset  int
	}{
		{"defaults", PaginationParams{}, 1, DefaultPerPage, 0},
		{"clamps per page", PaginationParams{Page: 2, PerPage: 500}, 2, MaxPerPage, MaxPerPage},
		{"keeps valid values", PaginationParams{Page: 3, PerPage: 20}, 3, 20, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			p.Validate()
			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.perPage, p.PerPage)
			assert.Equal(t, tt.offset, p.Offset())
		})
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 25)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	last := NewPagination(3, 10, 25)
	assert.False(t, last.HasNext)
}

func TestSortParamsResolve(t *testing.T) {
	allowed := []string{"name", "created_at"}

	field, order := SortParams{Field: "NAME", Order: "DESC"}.Resolve(allowed, "created_at", SortAsc)
	assert.Equal(t, "name", field)
	assert.Equal(t, SortDesc, order)

	field, order = SortParams{Field: "password; drop table", Order: "sideways"}.Resolve(allowed, "created_at", SortAsc)
	assert.Equal(t, "created_at", field)
	assert.Equal(t, SortAsc, order)
}
