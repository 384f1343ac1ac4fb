// Package id generates identifiers for catalog entities and relation rows.
package id

import (
	"fmt"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Generate creates a prefixed unique ID using NanoID
// Format: prefix-nanoid (e.g., "own-V1StGXR8_Z5jdHi6B-myT")
//
// Used for join rows (book links, ownership and read records) where the id
// is never shown to clients and never parsed back.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// NewInternal returns a fresh internal catalog id (UUIDv4 string).
// Books, authors, genres and cycles are keyed by these ids, which is what
// lets the resolver tell an internal id from an external catalog id.
func NewInternal() string {
	return uuid.NewString()
}

// IsInternal reports whether s is shaped like an internal catalog id.
func IsInternal(s string) bool {
	return uuid.Validate(s) == nil
}
