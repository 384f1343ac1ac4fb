package domain

import (
	"strings"
	"time"
)

// ReaderInfo is one family member who read a library book.
type ReaderInfo struct {
	ReaderID   string    `json:"reader_id"`
	ReaderName string    `json:"reader_name"`
	ReadDate   time.Time `json:"read_date"`
}

// OwnerInfo is one family member who owns a library book.
type OwnerInfo struct {
	OwnerID   string    `json:"owner_id"`
	OwnerName string    `json:"owner_name"`
	OwnerDate time.Time `json:"owner_date"`
}

// AuthorInfo is the compact author entry of a library row.
type AuthorInfo struct {
	AuthorID   string `json:"author_id"`
	AuthorName string `json:"author_name"`
}

// GenreInfo is the compact genre entry of a library row.
type GenreInfo struct {
	GenreID   string `json:"genre_id"`
	GenreName string `json:"genre_name"`
}

// LibraryBook is one row of the family library.
type LibraryBook struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	ExternalID  string       `json:"fantlab_id,omitempty"`
	Type        SourceType   `json:"type"`
	ReadCount   int          `json:"read_count"`
	ReadersInfo []ReaderInfo `json:"readers_info"`
	OwnersInfo  []OwnerInfo  `json:"owners_info"`
	AuthorsInfo []AuthorInfo `json:"authors_info"`
	GenresInfo  []GenreInfo  `json:"genres_info"`
}

// LibrarySort is a sortable library column.
type LibrarySort string

const (
	SortByName      LibrarySort = "name"
	SortByAuthors   LibrarySort = "authors_info"
	SortByGenres    LibrarySort = "genres_info"
	SortByReadCount LibrarySort = "read_count"
)

// SortOrder is ASC or DESC.
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// Default page values applied when only one of page/limit is given.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// LibraryQuery selects, orders and optionally paginates the family library.
// Pagination applies only when Page or Limit is set.
type LibraryQuery struct {
	Page      *int
	Limit     *int
	SortBy    string
	SortOrder string
}

// Paginated reports whether the caller asked for a page.
func (q LibraryQuery) Paginated() bool {
	return q.Page != nil || q.Limit != nil
}

// PageAndLimit returns the effective page and limit, clamped to at least 1.
func (q LibraryQuery) PageAndLimit() (page, limit int) {
	page, limit = DefaultPage, DefaultLimit
	if q.Page != nil && *q.Page > 0 {
		page = *q.Page
	}
	if q.Limit != nil && *q.Limit > 0 {
		limit = *q.Limit
	}
	return page, limit
}

// Sort normalizes the requested ordering. Unsupported values fall back to name/ASC.
func (q LibraryQuery) Sort() (LibrarySort, SortOrder) {
	by := LibrarySort(q.SortBy)
	switch by {
	case SortByName, SortByAuthors, SortByGenres, SortByReadCount:
	default:
		return SortByName, SortAsc
	}
	switch order := SortOrder(strings.ToUpper(q.SortOrder)); order {
	case SortAsc, SortDesc:
		return by, order
	default:
		return by, SortAsc
	}
}

// Pagination describes the page returned in a LibraryPage.
type Pagination struct {
	CurrentPage  int  `json:"current_page"`
	TotalPages   int  `json:"total_pages"`
	TotalItems   int  `json:"total_items"`
	ItemsPerPage int  `json:"items_per_page"`
	HasPrevious  bool `json:"has_previous"`
	HasNext      bool `json:"has_next"`
}

// NewPagination computes page metadata from the total item count.
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{
		CurrentPage:  page,
		TotalPages:   pages,
		TotalItems:   total,
		ItemsPerPage: limit,
		HasPrevious:  page > 1,
		HasNext:      page < pages,
	}
}

// SortInfo echoes the effective ordering.
type SortInfo struct {
	By    LibrarySort `json:"by"`
	Order SortOrder   `json:"order"`
}

// LibraryPage is the enveloped library response used when paginating.
type LibraryPage struct {
	Data       []LibraryBook `json:"data"`
	Pagination Pagination    `json:"pagination"`
	Sort       SortInfo      `json:"sort"`
}

// LibraryResult carries either a page or the flat list, per LibraryQuery.Paginated.
type LibraryResult struct {
	Page  *LibraryPage
	Books []LibraryBook
}

// Payload returns the value to serialize: the envelope or the bare array.
func (r *LibraryResult) Payload() any {
	if r.Page != nil {
		return r.Page
	}
	if r.Books == nil {
		return []LibraryBook{}
	}
	return r.Books
}
