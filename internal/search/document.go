package search

import "github.com/mailib/mailib-server/internal/domain"

// BookDocument is the indexed form of a catalog book.
// Only the name is analyzed; the rest is kept for filtering and display.
type BookDocument struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	ExternalID string `json:"external_id,omitempty"`
}

// ToMap converts the document to the field names used by the mapping.
func (d *BookDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":   d.ID,
		"name": d.Name,
		"type": d.Type,
	}
	if d.ExternalID != "" {
		m["external_id"] = d.ExternalID
	}
	return m
}

// BookToDocument converts a catalog book for indexing.
func BookToDocument(b *domain.Book) *BookDocument {
	return &BookDocument{
		ID:         b.ID,
		Name:       b.Name,
		Type:       string(b.Type),
		ExternalID: b.ExternalID,
	}
}
