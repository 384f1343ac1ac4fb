package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Hit is one matched book.
type Hit struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	ExternalID string  `json:"external_id,omitempty"`
	Score      float64 `json:"score"`
}

// SearchBooks matches q against book names, best match first.
// An empty query matches every book. A limit <= 0 returns every hit.
func (s *SearchIndex) SearchBooks(ctx context.Context, q string, limit int) ([]Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		count, err := s.index.DocCount()
		if err != nil {
			return nil, fmt.Errorf("count documents: %w", err)
		}
		limit = max(int(count), 1)
	}

	req := bleve.NewSearchRequestOptions(buildNameQuery(q), limit, 0, false)
	req.SortBy([]string{"-_score", "name"})
	req.Fields = []string{"name", "type", "external_id"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hit := Hit{ID: h.ID, Score: h.Score}
		if v, ok := h.Fields["name"].(string); ok {
			hit.Name = v
		}
		if v, ok := h.Fields["type"].(string); ok {
			hit.Type = v
		}
		if v, ok := h.Fields["external_id"].(string); ok {
			hit.ExternalID = v
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// buildNameQuery requires every analyzed term of q to appear in the name.
func buildNameQuery(q string) query.Query {
	q = strings.TrimSpace(q)
	if q == "" {
		return bleve.NewMatchAllQuery()
	}
	mq := bleve.NewMatchQuery(q)
	mq.SetField("name")
	mq.Analyzer = en.AnalyzerName
	mq.SetOperator(query.MatchQueryOperatorAnd)
	return mq
}
