package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mailib/mailib-server/internal/domain"
	"github.com/mailib/mailib-server/internal/errors"
	"github.com/mailib/mailib-server/internal/id"
	"github.com/mailib/mailib-server/internal/metadata/fantlab"
	"github.com/mailib/mailib-server/internal/normalize"
	"github.com/mailib/mailib-server/internal/search"
	"github.com/mailib/mailib-server/internal/store"
	"github.com/mailib/mailib-server/internal/validation"
)

// BookIndex is the full-text index the services write to and query.
type BookIndex interface {
	IndexBook(b *domain.Book) error
	SearchBooks(ctx context.Context, q string, limit int) ([]search.Hit, error)
}

// BookService resolves book references, importing external books on first
// access, and records ownership and reads.
type BookService struct {
	store     store.Store
	catalog   *CatalogService
	upstream  Upstream
	index     BookIndex
	validator *validation.Validator
	logger    *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(store store.Store, catalog *CatalogService, upstream Upstream, index BookIndex, logger *slog.Logger) *BookService {
	return &BookService{
		store:     store,
		catalog:   catalog,
		upstream:  upstream,
		index:     index,
		validator: validation.New(),
		logger:    logger,
	}
}

// Resolve returns the book behind ref with its authors, genres, cycles and
// the acting user's flags. External books missing locally are imported.
// The result's Book is nil when the reference is unknown everywhere.
func (s *BookService) Resolve(ctx context.Context, ref domain.BookRef, actingUserID string) (*domain.ResolveResult, error) {
	res, err := s.locate(ctx, ref)
	if err != nil || res.Book == nil {
		return res, err
	}
	if err := s.hydrate(ctx, res.Book, actingUserID); err != nil {
		return nil, err
	}
	return res, nil
}

// locate finds or imports the bare book row.
func (s *BookService) locate(ctx context.Context, ref domain.BookRef) (*domain.ResolveResult, error) {
	if ref.IsInternal() {
		book, err := s.store.GetBook(ctx, ref.InternalID())
		if store.IsNotFound(err) {
			return &domain.ResolveResult{}, nil
		}
		if err != nil {
			return nil, errors.Persistence(err, "load book")
		}
		return &domain.ResolveResult{Book: book}, nil
	}

	t, extID := ref.External()
	book, err := s.store.GetBookByExternalID(ctx, t, extID)
	if err == nil {
		return &domain.ResolveResult{Book: book}, nil
	}
	if !store.IsNotFound(err) {
		return nil, errors.Persistence(err, "load book")
	}
	return s.importExternal(ctx, t, extID)
}

// importExternal fetches, normalizes and stores an external book. The book
// row is written before its entities so a partial import still leaves a
// resolvable book; failed entity groups become import warnings.
func (s *BookService) importExternal(ctx context.Context, t domain.SourceType, extID string) (*domain.ResolveResult, error) {
	var (
		book  domain.Book
		cands normalize.Candidates
	)
	switch t {
	case domain.SourceFantlabWork:
		w, err := s.upstream.FetchWork(ctx, extID)
		if err != nil {
			return upstreamMiss(err, t, extID)
		}
		book, cands = normalize.WorkBook(w), normalize.WorkCandidates(w)
	case domain.SourceFantlabEdition:
		e, err := s.upstream.FetchEdition(ctx, extID)
		if err != nil {
			return upstreamMiss(err, t, extID)
		}
		book, cands = normalize.EditionBook(e), normalize.EditionCandidates(e)
	default:
		return &domain.ResolveResult{}, nil
	}

	if book.ExternalID == "" || book.ExternalID == "0" {
		book.ExternalID = extID
	}
	book.ID = id.NewInternal()

	stored, created, err := s.catalog.InsertBook(ctx, &book)
	if err != nil {
		return nil, err
	}
	if !created {
		return &domain.ResolveResult{Book: stored}, nil
	}

	s.logger.Info("imported book", "id", stored.ID, "type", t, "external_id", stored.ExternalID)
	if err := s.index.IndexBook(stored); err != nil {
		s.logger.Warn("failed to index imported book", "id", stored.ID, "error", err)
	}

	return &domain.ResolveResult{
		Book:           stored,
		Imported:       true,
		ImportWarnings: s.importEntities(ctx, stored.ID, cands),
	}, nil
}

func upstreamMiss(err error, t domain.SourceType, extID string) (*domain.ResolveResult, error) {
	if errors.Is(err, fantlab.ErrNotFound) {
		return &domain.ResolveResult{}, nil
	}
	return nil, errors.Upstream(err, fmt.Sprintf("fetch %s %s", t, extID))
}

// importEntities imports each entity group independently.
func (s *BookService) importEntities(ctx context.Context, bookID string, cands normalize.Candidates) []domain.ImportWarning {
	groups := []struct {
		kind  domain.EntityKind
		items []domain.EntityCandidate
	}{
		{domain.KindAuthor, cands.Authors},
		{domain.KindGenre, cands.Genres},
		{domain.KindCycle, cands.Cycles},
	}

	var warnings []domain.ImportWarning
	for _, g := range groups {
		if err := s.catalog.ImportGroup(ctx, g.kind, g.items, bookID); err != nil {
			s.logger.Warn("entity import failed", "book_id", bookID, "kind", g.kind, "error", err)
			warnings = append(warnings, domain.ImportWarning{Kind: g.kind, Message: err.Error()})
		}
	}
	return warnings
}

// hydrate loads linked entities and, for a known user, the user's flags.
func (s *BookService) hydrate(ctx context.Context, book *domain.Book, userID string) error {
	book.Authors, book.Genres, book.Cycles = []domain.Author{}, []domain.Genre{}, []domain.Cycle{}

	authors, err := s.store.ListBookEntities(ctx, domain.KindAuthor, book.ID)
	if err != nil {
		return errors.Persistence(err, "load authors")
	}
	for i := range authors {
		book.Authors = append(book.Authors, authors[i].Author())
	}
	genres, err := s.store.ListBookEntities(ctx, domain.KindGenre, book.ID)
	if err != nil {
		return errors.Persistence(err, "load genres")
	}
	for i := range genres {
		book.Genres = append(book.Genres, genres[i].Genre())
	}
	cycles, err := s.store.ListBookEntities(ctx, domain.KindCycle, book.ID)
	if err != nil {
		return errors.Persistence(err, "load cycles")
	}
	for i := range cycles {
		book.Cycles = append(book.Cycles, cycles[i].Cycle())
	}

	if userID == "" {
		return nil
	}
	book.IsOwnByUser, book.IsReadByUser, err = s.store.UserFlags(ctx, book, userID)
	if err != nil {
		return errors.Persistence(err, "load user flags")
	}
	return nil
}

// requireBook resolves ref for a mutation; unknown books are NOT_FOUND.
func (s *BookService) requireBook(ctx context.Context, ref domain.BookRef) (*domain.Book, error) {
	res, err := s.locate(ctx, ref)
	if err != nil {
		return nil, err
	}
	if res.Book == nil {
		return nil, errors.NotFoundf("book %s not found", ref)
	}
	return res.Book, nil
}

// checkFamily rejects target users outside the acting user's family.
func (s *BookService) checkFamily(ctx context.Context, actingUserID string, userIDs ...[]string) error {
	members, err := s.store.FamilyMembers(ctx, actingUserID)
	if err != nil {
		return errors.Persistence(err, "load family")
	}
	inFamily := make(map[string]bool, len(members))
	for _, m := range members {
		inFamily[m.ID] = true
	}
	for _, ids := range userIDs {
		for _, uid := range ids {
			if !inFamily[uid] {
				return errors.Forbidden(fmt.Sprintf("user %s is not in your family", uid))
			}
		}
	}
	return nil
}

// AddToLibrary records ownership for ownerIDs and reads for readerIDs.
func (s *BookService) AddToLibrary(ctx context.Context, ref domain.BookRef, actingUserID string, ownerIDs, readerIDs []string) error {
	if len(ownerIDs) == 0 {
		return errors.Validation("owner_ids must not be empty")
	}
	if err := s.checkFamily(ctx, actingUserID, ownerIDs, readerIDs); err != nil {
		return err
	}
	book, err := s.requireBook(ctx, ref)
	if err != nil {
		return err
	}
	for _, uid := range ownerIDs {
		if _, err := s.store.AddOwner(ctx, book, uid); err != nil {
			return errors.Persistence(err, "add owner")
		}
	}
	return s.addReaders(ctx, book, readerIDs)
}

// MarkAsRead records reads for readerIDs.
func (s *BookService) MarkAsRead(ctx context.Context, ref domain.BookRef, actingUserID string, readerIDs []string) error {
	if len(readerIDs) == 0 {
		return errors.Validation("reader_ids must not be empty")
	}
	if err := s.checkFamily(ctx, actingUserID, readerIDs); err != nil {
		return err
	}
	book, err := s.requireBook(ctx, ref)
	if err != nil {
		return err
	}
	return s.addReaders(ctx, book, readerIDs)
}

func (s *BookService) addReaders(ctx context.Context, book *domain.Book, readerIDs []string) error {
	for _, uid := range readerIDs {
		if _, err := s.store.AddReader(ctx, book, uid); err != nil {
			return errors.Persistence(err, "add reader")
		}
	}
	return nil
}

// RemoveFromLibrary deletes owner and reader rows of ownerIDs under either
// identity form of the book.
func (s *BookService) RemoveFromLibrary(ctx context.Context, ref domain.BookRef, actingUserID string, ownerIDs []string) error {
	if len(ownerIDs) == 0 {
		return errors.Validation("owner_ids must not be empty")
	}
	if err := s.checkFamily(ctx, actingUserID, ownerIDs); err != nil {
		return err
	}
	book, err := s.requireBook(ctx, ref)
	if err != nil {
		return err
	}
	if _, err := s.store.RemoveReaders(ctx, book, ownerIDs); err != nil {
		return errors.Persistence(err, "remove readers")
	}
	if _, err := s.store.RemoveOwners(ctx, book, ownerIDs); err != nil {
		return errors.Persistence(err, "remove owners")
	}
	return nil
}

// RemoveMark deletes reader rows of readerIDs.
func (s *BookService) RemoveMark(ctx context.Context, ref domain.BookRef, actingUserID string, readerIDs []string) error {
	if len(readerIDs) == 0 {
		return errors.Validation("reader_ids must not be empty")
	}
	if err := s.checkFamily(ctx, actingUserID, readerIDs); err != nil {
		return err
	}
	book, err := s.requireBook(ctx, ref)
	if err != nil {
		return err
	}
	if _, err := s.store.RemoveReaders(ctx, book, readerIDs); err != nil {
		return errors.Persistence(err, "remove readers")
	}
	return nil
}

// CreateBook stores a manually entered book. Entity references by id must
// exist; references by name are matched or created like imported ones.
func (s *BookService) CreateBook(ctx context.Context, in domain.CreateBookInput, actingUserID string) (*domain.Book, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	groups := []struct {
		kind  domain.EntityKind
		items []domain.EntityInput
	}{
		{domain.KindAuthor, in.Authors},
		{domain.KindGenre, in.Genres},
		{domain.KindCycle, in.Cycles},
	}

	// Check id references up front so a bad id does not leave a half-built book.
	for _, g := range groups {
		for _, e := range g.items {
			if e.ID == "" {
				continue
			}
			if _, err := s.store.GetEntity(ctx, g.kind, e.ID); err != nil {
				if store.IsNotFound(err) {
					return nil, errors.Validationf("unknown %s id %q", g.kind, e.ID)
				}
				return nil, errors.Persistence(err, "load "+string(g.kind))
			}
		}
	}

	book := &domain.Book{
		ID:          id.NewInternal(),
		Name:        in.Name,
		Description: in.Description,
		ImageSmall:  in.Image,
		ImageBig:    in.Image,
		ISBNList:    in.ISBN,
		Type:        domain.SourceInnerWork,
	}
	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, errors.Persistence(err, "save book")
	}
	if err := s.index.IndexBook(book); err != nil {
		s.logger.Warn("failed to index created book", "id", book.ID, "error", err)
	}

	for _, g := range groups {
		for _, e := range g.items {
			var err error
			if e.ID != "" {
				_, err = s.catalog.LinkExisting(ctx, g.kind, e.ID, book.ID)
			} else if e.Name != "" {
				_, err = s.catalog.ResolveOrCreate(ctx, g.kind, domain.EntityCandidate{Name: e.Name}, book.ID)
			}
			if err != nil {
				return nil, err
			}
		}
	}

	s.logger.Info("created book", "id", book.ID, "name", book.Name)
	if err := s.hydrate(ctx, book, actingUserID); err != nil {
		return nil, err
	}
	return book, nil
}
