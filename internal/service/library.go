package service

import (
	"context"
	"log/slog"

	"github.com/mailib/mailib-server/internal/domain"
	"github.com/mailib/mailib-server/internal/errors"
	"github.com/mailib/mailib-server/internal/store"
)

// LibraryService aggregates the family library and answers who-lacks queries.
type LibraryService struct {
	store  store.Store
	books  *BookService
	logger *slog.Logger
}

// NewLibraryService creates a new library service.
func NewLibraryService(store store.Store, books *BookService, logger *slog.Logger) *LibraryService {
	return &LibraryService{
		store:  store,
		books:  books,
		logger: logger,
	}
}

// Library returns the family library of userID. With a page or limit in q
// the result is an envelope; otherwise it is the full flat list.
func (s *LibraryService) Library(ctx context.Context, userID string, q domain.LibraryQuery) (*domain.LibraryResult, error) {
	sortBy, order := q.Sort()

	if !q.Paginated() {
		books, err := s.store.FamilyLibrary(ctx, userID, sortBy, order, store.Unbounded())
		if err != nil {
			return nil, errors.Persistence(err, "load library")
		}
		return &domain.LibraryResult{Books: books}, nil
	}

	page, limit := q.PageAndLimit()
	total, err := s.store.CountFamilyLibrary(ctx, userID)
	if err != nil {
		return nil, errors.Persistence(err, "count library")
	}
	books, err := s.store.FamilyLibrary(ctx, userID, sortBy, order, store.PageOf(page, limit))
	if err != nil {
		return nil, errors.Persistence(err, "load library")
	}

	return &domain.LibraryResult{Page: &domain.LibraryPage{
		Data:       books,
		Pagination: domain.NewPagination(page, limit, total),
		Sort:       domain.SortInfo{By: sortBy, Order: order},
	}}, nil
}

// WhoLacks returns ids of family members who do not own the book, or with
// requireRead, have not read it.
func (s *LibraryService) WhoLacks(ctx context.Context, ref domain.BookRef, userID string, requireRead bool) ([]string, error) {
	book, err := s.books.requireBook(ctx, ref)
	if err != nil {
		return nil, err
	}
	ids, err := s.store.FamilyMembersLacking(ctx, userID, book, requireRead)
	if err != nil {
		return nil, errors.Persistence(err, "load family")
	}
	return ids, nil
}
