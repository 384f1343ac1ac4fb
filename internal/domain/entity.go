package domain

// EntityKind names one of the sub-entity tables linked to books.
type EntityKind string

const (
	KindAuthor EntityKind = "author"
	KindGenre  EntityKind = "genre"
	KindCycle  EntityKind = "cycle"
)

// LocalExternalID marks an entity created locally with no upstream counterpart.
const LocalExternalID int64 = -1

// DefaultCycleType is used for cycles created by hand.
const DefaultCycleType = "цикл"

// Author is a catalog author.
type Author struct {
	ID         string `json:"id"`
	ExternalID int64  `json:"fantlab_id"`
	Name       string `json:"name"`
	Country    string `json:"country,omitempty"`
}

// Genre is a catalog genre.
type Genre struct {
	ID         string `json:"id"`
	ExternalID int64  `json:"fantlab_id"`
	Name       string `json:"name"`
}

// Cycle is a series or saga a book belongs to.
type Cycle struct {
	ID         string `json:"id"`
	ExternalID int64  `json:"fantlab_id"`
	Name       string `json:"name"`
	Type       string `json:"type,omitempty"`
}

// EntityCandidate is a normalized author, genre or cycle awaiting
// resolve-or-create. ExternalID zero means the source carried no id.
type EntityCandidate struct {
	ExternalID int64
	Name       string
	Extra      string // author country or cycle type
}

// EntityRecord is the stored row backing an author, genre or cycle.
type EntityRecord struct {
	Kind       EntityKind
	ID         string
	ExternalID int64
	Name       string
	Extra      string
}

// Author converts a record of kind author.
func (r *EntityRecord) Author() Author {
	return Author{ID: r.ID, ExternalID: r.ExternalID, Name: r.Name, Country: r.Extra}
}

// Genre converts a record of kind genre.
func (r *EntityRecord) Genre() Genre {
	return Genre{ID: r.ID, ExternalID: r.ExternalID, Name: r.Name}
}

// Cycle converts a record of kind cycle.
func (r *EntityRecord) Cycle() Cycle {
	return Cycle{ID: r.ID, ExternalID: r.ExternalID, Name: r.Name, Type: r.Extra}
}
