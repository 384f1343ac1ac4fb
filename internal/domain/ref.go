package domain

import (
	"fmt"

	"github.com/mailib/mailib-server/internal/id"
)

// BookRef addresses a book either by internal id or by (source type,
// external id). Construct it with InternalRef, ExternalRef or ParseBookRef.
type BookRef struct {
	internalID string
	sourceType SourceType
	externalID string
}

// InternalRef references a book by its internal uuid.
func InternalRef(internalID string) BookRef {
	return BookRef{internalID: internalID}
}

// ExternalRef references a book by its id in an external source.
func ExternalRef(t SourceType, externalID string) BookRef {
	return BookRef{sourceType: t, externalID: externalID}
}

// ParseBookRef builds a reference from the route pair (type, identifier).
// A valid uuid always selects the internal identity space regardless of type.
func ParseBookRef(rawType, identifier string) (BookRef, error) {
	if identifier == "" {
		return BookRef{}, fmt.Errorf("book identifier is required")
	}
	if id.IsInternal(identifier) {
		return InternalRef(identifier), nil
	}
	t, ok := ParseSourceType(rawType)
	if !ok {
		return BookRef{}, fmt.Errorf("unknown book type %q", rawType)
	}
	if !t.IsExternal() {
		return BookRef{}, fmt.Errorf("book of type %s must be addressed by internal id", t)
	}
	return ExternalRef(t, identifier), nil
}

// IsInternal reports whether the reference uses the internal identity space.
func (r BookRef) IsInternal() bool {
	return r.internalID != ""
}

// InternalID returns the internal id, or "" for external references.
func (r BookRef) InternalID() string {
	return r.internalID
}

// External returns the source type and external id of an external reference.
func (r BookRef) External() (SourceType, string) {
	return r.sourceType, r.externalID
}

func (r BookRef) String() string {
	if r.IsInternal() {
		return "internal:" + r.internalID
	}
	return string(r.sourceType) + ":" + r.externalID
}
