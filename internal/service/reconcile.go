package service

import (
	"context"
	"log/slog"

	"github.com/mailib/mailib-server/internal/domain"
	"github.com/mailib/mailib-server/internal/errors"
	"github.com/mailib/mailib-server/internal/metadata/fantlab"
	"github.com/mailib/mailib-server/internal/normalize"
	"github.com/mailib/mailib-server/internal/store"
)

// ReconcileReport summarizes one reconciliation pass.
type ReconcileReport struct {
	Scanned  int `json:"scanned" yaml:"scanned"`
	Repaired int `json:"repaired" yaml:"repaired"`
	Failed   int `json:"failed" yaml:"failed"`
}

// detailInvalidator is implemented by upstreams that cache details.
type detailInvalidator interface {
	InvalidateWork(ctx context.Context, id string) error
	InvalidateEdition(ctx context.Context, id string) error
}

// IndexRebuilder replaces the full-text index contents.
type IndexRebuilder interface {
	Rebuild(books []*domain.Book) error
}

// ReconcileService repairs imports that stored a book but lost its
// entities, and rebuilds the search index.
type ReconcileService struct {
	store    store.Store
	catalog  *CatalogService
	upstream Upstream
	index    IndexRebuilder
	logger   *slog.Logger
}

// NewReconcileService creates a new reconcile service.
func NewReconcileService(store store.Store, catalog *CatalogService, upstream Upstream, index IndexRebuilder, logger *slog.Logger) *ReconcileService {
	return &ReconcileService{
		store:    store,
		catalog:  catalog,
		upstream: upstream,
		index:    index,
		logger:   logger,
	}
}

// Run re-imports the entities of every external book without author links.
// Linking is idempotent, so groups that did succeed earlier are unaffected.
func (s *ReconcileService) Run(ctx context.Context) (*ReconcileReport, error) {
	books, err := s.store.ListUnlinkedExternalBooks(ctx, domain.KindAuthor)
	if err != nil {
		return nil, errors.Persistence(err, "list unlinked books")
	}

	report := &ReconcileReport{Scanned: len(books)}
	for _, b := range books {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := s.repair(ctx, b); err != nil {
			report.Failed++
			s.logger.Warn("reconcile failed", "book_id", b.ID, "type", b.Type, "external_id", b.ExternalID, "error", err)
			continue
		}
		report.Repaired++
	}

	s.logger.Info("reconcile finished",
		"scanned", report.Scanned,
		"repaired", report.Repaired,
		"failed", report.Failed,
	)
	return report, nil
}

func (s *ReconcileService) repair(ctx context.Context, b *domain.Book) error {
	s.invalidate(ctx, b)

	var cands normalize.Candidates
	switch b.Type {
	case domain.SourceFantlabWork:
		w, err := s.upstream.FetchWork(ctx, b.ExternalID)
		if err != nil {
			return upstreamErr(err, b)
		}
		cands = normalize.WorkCandidates(w)
	case domain.SourceFantlabEdition:
		e, err := s.upstream.FetchEdition(ctx, b.ExternalID)
		if err != nil {
			return upstreamErr(err, b)
		}
		cands = normalize.EditionCandidates(e)
	default:
		return nil
	}

	return errors.Join(
		s.catalog.ImportGroup(ctx, domain.KindAuthor, cands.Authors, b.ID),
		s.catalog.ImportGroup(ctx, domain.KindGenre, cands.Genres, b.ID),
		s.catalog.ImportGroup(ctx, domain.KindCycle, cands.Cycles, b.ID),
	)
}

// invalidate drops the cached details of b, which may be the partial
// payload that left the book unlinked.
func (s *ReconcileService) invalidate(ctx context.Context, b *domain.Book) {
	inv, ok := s.upstream.(detailInvalidator)
	if !ok {
		return
	}
	var err error
	switch b.Type {
	case domain.SourceFantlabWork:
		err = inv.InvalidateWork(ctx, b.ExternalID)
	case domain.SourceFantlabEdition:
		err = inv.InvalidateEdition(ctx, b.ExternalID)
	}
	if err != nil {
		s.logger.Warn("cache invalidation failed", "book_id", b.ID, "error", err)
	}
}

func upstreamErr(err error, b *domain.Book) error {
	if errors.Is(err, fantlab.ErrNotFound) {
		return errors.NotFoundf("%s %s no longer exists upstream", b.Type, b.ExternalID)
	}
	return errors.Upstream(err, "fetch "+string(b.Type))
}

// Reindex rebuilds the search index from every catalog book.
func (s *ReconcileService) Reindex(ctx context.Context) (int, error) {
	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return 0, errors.Persistence(err, "list books")
	}
	if err := s.index.Rebuild(books); err != nil {
		return 0, errors.Wrap(err, errors.CodeInternal, "rebuild search index")
	}
	return len(books), nil
}
