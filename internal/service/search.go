package service

import (
	"context"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/mailib/mailib-server/internal/domain"
	"github.com/mailib/mailib-server/internal/errors"
	"github.com/mailib/mailib-server/internal/metadata/fantlab"
	"github.com/mailib/mailib-server/internal/normalize"
	"github.com/mailib/mailib-server/internal/store"
)

// bookWorkTypes are the Fantlab work types that count as books
// (novel, collection, story, anthology and the like).
var bookWorkTypes = map[int64]bool{1: true, 3: true, 8: true, 13: true, 17: true, 41: true, 42: true, 43: true}

// detailFetchLimit bounds concurrent detail fetches per search branch.
const detailFetchLimit = 8

// SearchService merges upstream work and edition search with the local index.
type SearchService struct {
	upstream Upstream
	index    BookIndex
	store    store.Store
	logger   *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(upstream Upstream, index BookIndex, store store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		upstream: upstream,
		index:    index,
		store:    store,
		logger:   logger,
	}
}

// Search runs the three branches concurrently. Any branch failing fails the
// whole search.
func (s *SearchService) Search(ctx context.Context, q string) (*domain.SearchResult, error) {
	var res domain.SearchResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		books, err := s.searchWorks(gctx, q)
		res.Books = books
		return err
	})
	g.Go(func() error {
		editions, err := s.searchEditions(gctx, q)
		res.Editions = editions
		return err
	})
	g.Go(func() error {
		inner, err := s.searchInner(gctx, q)
		res.Inner = inner
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("search failed", "query", q, "error", err)
		return nil, err
	}

	res.Inner = dropKnownExternal(res.Inner, res.Books, res.Editions)
	return &res, nil
}

func (s *SearchService) searchWorks(ctx context.Context, q string) ([]domain.Book, error) {
	hits, err := s.upstream.SearchWorks(ctx, q)
	if err != nil {
		return nil, errors.Upstream(err, "search works")
	}

	var kept []fantlab.WorkHit
	for _, h := range hits {
		if bookWorkTypes[int64(h.WorkTypeID)] {
			kept = append(kept, h)
		}
	}

	books := make([]domain.Book, len(kept))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailFetchLimit)
	for i := range kept {
		h := &kept[i]
		g.Go(func() error {
			details, err := s.upstream.FetchWork(gctx, h.WorkID.String())
			if err != nil {
				return errors.Upstream(err, "fetch work "+h.WorkID.String())
			}
			books[i] = workHitBook(h, details)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return books, nil
}

func workHitBook(h *fantlab.WorkHit, details *fantlab.Work) domain.Book {
	b := domain.Book{
		ExternalID: h.WorkID.String(),
		Name:       h.RusName,
		ImageBig:   details.Image,
		ImageSmall: details.ImagePreview,
		Type:       domain.SourceFantlabWork,
		Authors:    hitAuthors(normalize.HitAuthors(h)),
		Genres:     []domain.Genre{},
		Cycles:     []domain.Cycle{},
	}
	if b.Name == "" {
		b.Name = h.Name
	}
	if h.NameShowIm != "" {
		b.Genres = append(b.Genres, domain.Genre{Name: h.NameShowIm})
	}
	return b
}

func (s *SearchService) searchEditions(ctx context.Context, q string) ([]domain.Book, error) {
	hits, err := s.upstream.SearchEditions(ctx, q)
	if err != nil {
		return nil, errors.Upstream(err, "search editions")
	}

	books := make([]domain.Book, len(hits))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailFetchLimit)
	for i := range hits {
		h := &hits[i]
		g.Go(func() error {
			details, err := s.upstream.FetchEdition(gctx, h.EditionID.String())
			if err != nil {
				return errors.Upstream(err, "fetch edition "+h.EditionID.String())
			}
			// The edition endpoint swaps preview and full image relative to works.
			books[i] = domain.Book{
				ExternalID: h.EditionID.String(),
				Name:       normalize.CleanTitle(h.Name),
				ImageBig:   details.ImagePreview,
				ImageSmall: details.Image,
				Type:       domain.SourceFantlabEdition,
				Authors:    hitAuthors(normalize.ParseBracketAuthors(h.Autors)),
				Genres:     []domain.Genre{},
				Cycles:     []domain.Cycle{},
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return books, nil
}

// hitAuthors presents upstream authors that have no local row yet.
func hitAuthors(cands []domain.EntityCandidate) []domain.Author {
	out := make([]domain.Author, 0, len(cands))
	for _, c := range cands {
		out = append(out, domain.Author{
			ID:         strconv.FormatInt(c.ExternalID, 10),
			ExternalID: c.ExternalID,
			Name:       c.Name,
		})
	}
	return out
}

func (s *SearchService) searchInner(ctx context.Context, q string) ([]domain.Book, error) {
	hits, err := s.index.SearchBooks(ctx, q, 0)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "search index")
	}
	if len(hits) == 0 {
		return []domain.Book{}, nil
	}

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	rows, err := s.store.GetBooksByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Persistence(err, "load search hits")
	}
	authors, err := s.store.ListBooksEntities(ctx, domain.KindAuthor, ids)
	if err != nil {
		return nil, errors.Persistence(err, "load search hit authors")
	}

	books := make([]domain.Book, 0, len(rows))
	for _, b := range rows {
		b.Description = ""
		b.Authors = []domain.Author{}
		b.Genres = []domain.Genre{}
		b.Cycles = []domain.Cycle{}
		for i := range authors[b.ID] {
			b.Authors = append(b.Authors, authors[b.ID][i].Author())
		}
		books = append(books, *b)
	}
	return books, nil
}

// dropKnownExternal removes inner books whose external id is already
// listed by an upstream branch.
func dropKnownExternal(inner []domain.Book, upstream ...[]domain.Book) []domain.Book {
	seen := make(map[string]bool)
	for _, list := range upstream {
		for _, b := range list {
			seen[b.ExternalID] = true
		}
	}
	out := make([]domain.Book, 0, len(inner))
	for _, b := range inner {
		if b.ExternalID != "" && seen[b.ExternalID] {
			continue
		}
		out = append(out, b)
	}
	return out
}
