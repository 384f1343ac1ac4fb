package normalize

import (
	"strings"

	"github.com/mailib/mailib-server/internal/domain"
	"github.com/mailib/mailib-server/internal/metadata/fantlab"
)

// genreGroupMarker identifies the "Жанры/поджанры" classificatory group.
const genreGroupMarker = "ЖАНР"

// FlattenGenres lifts one level of the genre tree: a childless node stays,
// a node with children is replaced by its children. Grandchildren stay
// nested on the lifted child.
func FlattenGenres(nodes []fantlab.GenreNode) []fantlab.GenreNode {
	var out []fantlab.GenreNode
	for _, n := range nodes {
		if len(n.Genre) == 0 {
			out = append(out, n)
			continue
		}
		out = append(out, n.Genre...)
	}
	return out
}

// WorkGenres picks the genre group of a work and maps its flattened nodes.
func WorkGenres(w *fantlab.Work) []domain.EntityCandidate {
	for _, group := range w.Classificatory.GenreGroup {
		if !strings.Contains(strings.ToUpper(group.Label), genreGroupMarker) {
			continue
		}
		flat := FlattenGenres(group.Genre)
		out := make([]domain.EntityCandidate, 0, len(flat))
		for _, g := range flat {
			out = append(out, domain.EntityCandidate{ExternalID: int64(g.GenreID), Name: g.Label})
		}
		return out
	}
	return nil
}
