package fantlab

import (
	"errors"
	"fmt"
)

// Sentinel errors for Fantlab API operations.
var (
	// ErrNotFound means Fantlab answered 404 for the requested id.
	ErrNotFound = errors.New("fantlab: not found")
	// ErrUpstream covers transport failures, non-2xx answers and undecodable bodies.
	ErrUpstream = errors.New("fantlab: upstream unavailable")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op     string // "work", "edition", "searchWorks", "searchEditions"
	Target string // id or query
	Status int    // HTTP status when the server answered
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fantlab %s [%s]: status %d: %v", e.Op, e.Target, e.Status, e.Err)
	}
	return fmt.Sprintf("fantlab %s [%s]: %v", e.Op, e.Target, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(op, target string, status int, err error) error {
	return &Error{Op: op, Target: target, Status: status, Err: err}
}
