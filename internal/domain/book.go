// Package domain contains the core entities of the mailib family library:
// catalog books and their authors, genres and cycles, the tagged reference
// used to address a book, and the aggregated library views.
package domain

import "time"

// SourceType says where a book's metadata originates. External ids are
// only comparable within the same source type.
type SourceType string

const (
	SourceFantlabWork    SourceType = "fantlab_work"
	SourceFantlabEdition SourceType = "fantlab_edition"
	SourceInnerWork      SourceType = "inner_db_work"
)

// ParseSourceType validates a raw type segment.
func ParseSourceType(s string) (SourceType, bool) {
	switch t := SourceType(s); t {
	case SourceFantlabWork, SourceFantlabEdition, SourceInnerWork:
		return t, true
	default:
		return "", false
	}
}

// IsExternal reports whether books of this type are imported from Fantlab.
func (t SourceType) IsExternal() bool {
	return t == SourceFantlabWork || t == SourceFantlabEdition
}

// Book is a catalog book with its linked entities and the acting user's flags.
type Book struct {
	ID          string     `json:"id"`
	ExternalID  string     `json:"fantlab_id,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	ImageSmall  string     `json:"image_small,omitempty"`
	ImageBig    string     `json:"image_big,omitempty"`
	ISBNList    string     `json:"isbn_list,omitempty"`
	Type        SourceType `json:"type"`
	CreatedAt   time.Time  `json:"created_at"`

	Authors []Author `json:"authors"`
	Genres  []Genre  `json:"genres"`
	Cycles  []Cycle  `json:"cycles"`

	IsOwnByUser  bool `json:"is_own_by_user"`
	IsReadByUser bool `json:"is_read_by_user"`
}

// IdentityForms returns every id an ownership or read row may carry for
// this book. Locally created books are only addressable by internal id.
func (b *Book) IdentityForms() []string {
	if b.ExternalID == "" || !b.Type.IsExternal() {
		return []string{b.ID}
	}
	return []string{b.ID, b.ExternalID}
}

// ImportWarning records a sub-entity group that failed during a lazy import.
// The book itself was stored; the reconcile job retries the group later.
type ImportWarning struct {
	Kind    EntityKind `json:"kind"`
	Message string     `json:"message"`
}

// ResolveResult is the outcome of resolving a BookRef. Book is nil when the
// reference is unknown both locally and upstream.
type ResolveResult struct {
	Book           *Book           `json:"book"`
	Imported       bool            `json:"imported"`
	ImportWarnings []ImportWarning `json:"import_warnings,omitempty"`
}

// SearchResult groups the three search branches. Inner never repeats a
// book whose external id already appears in Books or Editions.
type SearchResult struct {
	Books    []Book `json:"books"`
	Editions []Book `json:"editions"`
	Inner    []Book `json:"inner"`
}

// EntityInput references an author, genre or cycle when creating a book by
// hand: either an existing internal id or a name to match or create.
type EntityInput struct {
	ID   string `json:"id,omitempty" validate:"omitempty,uuid" doc:"Internal id of an existing entity"`
	Name string `json:"name,omitempty" validate:"required_without=ID,max=500" doc:"Name to match or create"`
}

// CreateBookInput is a manually entered catalog book.
type CreateBookInput struct {
	Name        string        `json:"name" validate:"required,max=1000" doc:"Book title"`
	Description string        `json:"description,omitempty" validate:"max=20000"`
	Image       string        `json:"image,omitempty" validate:"omitempty,url" doc:"Cover image URL"`
	ISBN        string        `json:"isbn,omitempty" validate:"max=500"`
	Authors     []EntityInput `json:"authors" validate:"required,min=1,dive"`
	Genres      []EntityInput `json:"genres" validate:"required,min=1,dive"`
	Cycles      []EntityInput `json:"cycles,omitempty" validate:"dive"`
}
