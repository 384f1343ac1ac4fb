package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mailib/mailib-server/internal/domain"
	"github.com/mailib/mailib-server/internal/errors"
	"github.com/mailib/mailib-server/internal/store"
)

// CatalogService finds or creates catalog entities and links them to books.
type CatalogService struct {
	store  store.Store
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(store store.Store, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		store:  store,
		logger: logger,
	}
}

// ResolveOrCreate returns the entity matching the candidate and links it to
// bookID. Matching tries the upstream id first, then a case-insensitive name
// prefix; a new entity is created only when both miss.
//
// Two imports racing on the same upstream id may both reach the insert; the
// loser sees ErrAlreadyExists and re-fetches the winner's row.
func (s *CatalogService) ResolveOrCreate(ctx context.Context, kind domain.EntityKind, c domain.EntityCandidate, bookID string) (*domain.EntityRecord, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" && c.ExternalID <= 0 {
		return nil, errors.Validationf("%s needs a name or an id", kind)
	}

	rec, err := s.find(ctx, kind, c)
	if err != nil {
		return nil, err
	}

	if rec == nil {
		rec = &domain.EntityRecord{Kind: kind, ExternalID: c.ExternalID, Name: c.Name, Extra: c.Extra}
		if kind == domain.KindCycle && rec.Extra == "" {
			rec.Extra = domain.DefaultCycleType
		}
		err = s.store.CreateEntity(ctx, rec)
		if store.IsAlreadyExists(err) && c.ExternalID > 0 {
			s.logger.Debug("entity created concurrently, re-fetching", "kind", kind, "external_id", c.ExternalID)
			rec, err = s.store.GetEntityByExternalID(ctx, kind, c.ExternalID)
		}
		if err != nil {
			return nil, errors.Persistence(err, fmt.Sprintf("save %s", kind))
		}
	}

	if bookID != "" {
		if _, err := s.store.LinkEntity(ctx, kind, bookID, rec.ID); err != nil {
			return nil, errors.Persistence(err, fmt.Sprintf("link %s", kind))
		}
	}
	return rec, nil
}

func (s *CatalogService) find(ctx context.Context, kind domain.EntityKind, c domain.EntityCandidate) (*domain.EntityRecord, error) {
	if c.ExternalID > 0 {
		rec, err := s.store.GetEntityByExternalID(ctx, kind, c.ExternalID)
		if err == nil {
			return rec, nil
		}
		if !store.IsNotFound(err) {
			return nil, errors.Persistence(err, fmt.Sprintf("find %s", kind))
		}
	}
	if c.Name == "" {
		return nil, nil
	}
	rec, err := s.store.FindEntityByNamePrefix(ctx, kind, c.Name)
	if store.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Persistence(err, fmt.Sprintf("find %s", kind))
	}
	return rec, nil
}

// LinkExisting links an entity addressed by internal id. Unknown ids are a
// validation error.
func (s *CatalogService) LinkExisting(ctx context.Context, kind domain.EntityKind, entityID, bookID string) (*domain.EntityRecord, error) {
	rec, err := s.store.GetEntity(ctx, kind, entityID)
	if store.IsNotFound(err) {
		return nil, errors.Validationf("unknown %s id %q", kind, entityID)
	}
	if err != nil {
		return nil, errors.Persistence(err, fmt.Sprintf("get %s", kind))
	}
	if _, err := s.store.LinkEntity(ctx, kind, bookID, rec.ID); err != nil {
		return nil, errors.Persistence(err, fmt.Sprintf("link %s", kind))
	}
	return rec, nil
}

// ImportGroup resolves every candidate of one kind for a book. A failing
// candidate does not stop the rest; all failures are returned joined.
func (s *CatalogService) ImportGroup(ctx context.Context, kind domain.EntityKind, candidates []domain.EntityCandidate, bookID string) error {
	var errs []error
	for _, c := range candidates {
		if _, err := s.ResolveOrCreate(ctx, kind, c, bookID); err != nil {
			errs = append(errs, fmt.Errorf("%s %q: %w", kind, c.Name, err))
		}
	}
	return errors.Join(errs...)
}

// InsertBook stores a freshly imported book. When another import stored the
// same (type, external id) first, the existing row is returned instead and
// created is false.
func (s *CatalogService) InsertBook(ctx context.Context, book *domain.Book) (stored *domain.Book, created bool, err error) {
	err = s.store.CreateBook(ctx, book)
	if err == nil {
		return book, true, nil
	}
	if store.IsAlreadyExists(err) && book.Type.IsExternal() {
		existing, getErr := s.store.GetBookByExternalID(ctx, book.Type, book.ExternalID)
		if getErr == nil {
			s.logger.Debug("book imported concurrently, using existing row",
				"type", book.Type, "external_id", book.ExternalID)
			return existing, false, nil
		}
		err = getErr
	}
	return nil, false, errors.Persistence(err, "save book")
}
