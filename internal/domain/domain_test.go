package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestParseBookRef(t *testing.T) {
	const uuid = "0b6cbb0a-7d5e-4c53-9d39-8cf4b1d0a0c1"

	ref, err := ParseBookRef("fantlab_work", uuid)
	require.NoError(t, err)
	assert.True(t, ref.IsInternal(), "a uuid selects the internal space whatever the type")
	assert.Equal(t, uuid, ref.InternalID())

	ref, err = ParseBookRef("fantlab_edition", "42")
	require.NoError(t, err)
	assert.False(t, ref.IsInternal())
	typ, ext := ref.External()
	assert.Equal(t, SourceFantlabEdition, typ)
	assert.Equal(t, "42", ext)
	assert.Equal(t, "fantlab_edition:42", ref.String())

	_, err = ParseBookRef("inner_db_work", "42")
	assert.Error(t, err)

	_, err = ParseBookRef("paper", "42")
	assert.Error(t, err)

	_, err = ParseBookRef("fantlab_work", "")
	assert.Error(t, err)
}

func TestBook_IdentityForms(t *testing.T) {
	work := &Book{ID: "b1", ExternalID: "10", Type: SourceFantlabWork}
	assert.Equal(t, []string{"b1", "10"}, work.IdentityForms())

	inner := &Book{ID: "b2", Type: SourceInnerWork}
	assert.Equal(t, []string{"b2"}, inner.IdentityForms())
}

func TestLibraryQuery_Sort(t *testing.T) {
	tests := []struct {
		by, order string
		wantBy    LibrarySort
		wantOrder SortOrder
	}{
		{"", "", SortByName, SortAsc},
		{"read_count", "desc", SortByReadCount, SortDesc},
		{"authors_info", "ASC", SortByAuthors, SortAsc},
		{"genres_info", "sideways", SortByGenres, SortAsc},
		{"created_at", "DESC", SortByName, SortAsc},
	}
	for _, tt := range tests {
		by, order := LibraryQuery{SortBy: tt.by, SortOrder: tt.order}.Sort()
		assert.Equal(t, tt.wantBy, by, "sortBy=%q", tt.by)
		assert.Equal(t, tt.wantOrder, order, "sortBy=%q sortOrder=%q", tt.by, tt.order)
	}
}

func TestLibraryQuery_PageAndLimit(t *testing.T) {
	q := LibraryQuery{}
	assert.False(t, q.Paginated())

	q = LibraryQuery{Limit: intPtr(1)}
	assert.True(t, q.Paginated())
	page, limit := q.PageAndLimit()
	assert.Equal(t, 1, page)
	assert.Equal(t, 1, limit)

	q = LibraryQuery{Page: intPtr(3), Limit: intPtr(0)}
	page, limit = q.PageAndLimit()
	assert.Equal(t, 3, page)
	assert.Equal(t, DefaultLimit, limit)
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 1, 3)
	assert.Equal(t, Pagination{
		CurrentPage:  2,
		TotalPages:   3,
		TotalItems:   3,
		ItemsPerPage: 1,
		HasPrevious:  true,
		HasNext:      true,
	}, p)

	empty := NewPagination(1, 10, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
	assert.False(t, empty.HasPrevious)
}

func TestLibraryResult_Payload(t *testing.T) {
	flat := &LibraryResult{}
	assert.Equal(t, []LibraryBook{}, flat.Payload())

	page := &LibraryResult{Page: &LibraryPage{}}
	assert.IsType(t, &LibraryPage{}, page.Payload())
}

func TestReadPercentage(t *testing.T) {
	assert.InDelta(t, 0.0, ReadPercentage(3, 0), 0.0001)
	assert.InDelta(t, 33.33, ReadPercentage(1, 3), 0.0001)
	assert.InDelta(t, 66.67, ReadPercentage(2, 3), 0.0001)
	assert.InDelta(t, 100.0, ReadPercentage(4, 4), 0.0001)
}
