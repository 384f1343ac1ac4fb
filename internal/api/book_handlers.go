package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mailib/mailib-server/internal/api/dto"
	"github.com/mailib/mailib-server/internal/domain"
	domainerrors "github.com/mailib/mailib-server/internal/errors"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/books/search",
		Summary:     "Search books",
		Description: "Searches Fantlab works, Fantlab editions and the local catalog at once",
		Tags:        []string{"Books"},
		Security:    bearer,
	}, s.handleSearchBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/books/book/{type}/{id}",
		Summary:     "Resolve book",
		Description: "Returns the book with its authors, genres and cycles, importing it from Fantlab on first access. The body is null when the book is unknown.",
		Tags:        []string{"Books"},
		Security:    bearer,
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          "/books/book/create",
		Summary:       "Create book",
		Description:   "Stores a manually entered book in the local catalog",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusCreated,
		Security:      bearer,
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "addToLibrary",
		Method:      http.MethodPost,
		Path:        "/books/book/{type}/{id}/add",
		Summary:     "Add to library",
		Description: "Records the book as owned by owner_ids and read by reader_ids",
		Tags:        []string{"Library"},
		Security:    bearer,
	}, s.handleAddToLibrary)

	huma.Register(s.api, huma.Operation{
		OperationID: "markAsRead",
		Method:      http.MethodPost,
		Path:        "/books/book/{type}/{id}/markAsRead",
		Summary:     "Mark as read",
		Tags:        []string{"Library"},
		Security:    bearer,
	}, s.handleMarkAsRead)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeFromLibrary",
		Method:      http.MethodPost,
		Path:        "/books/book/{type}/{id}/remove",
		Summary:     "Remove from library",
		Description: "Deletes ownership and read rows of owner_ids",
		Tags:        []string{"Library"},
		Security:    bearer,
	}, s.handleRemoveFromLibrary)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeReadMark",
		Method:      http.MethodPost,
		Path:        "/books/book/{type}/{id}/removeMark",
		Summary:     "Remove read mark",
		Tags:        []string{"Library"},
		Security:    bearer,
	}, s.handleRemoveMark)

	huma.Register(s.api, huma.Operation{
		OperationID: "existInFamily",
		Method:      http.MethodGet,
		Path:        "/books/book/{type}/{id}/existInFamily",
		Summary:     "Family members without the book",
		Tags:        []string{"Library"},
		Security:    bearer,
	}, s.handleExistInFamily)

	huma.Register(s.api, huma.Operation{
		OperationID: "readedInFamily",
		Method:      http.MethodGet,
		Path:        "/books/book/{type}/{id}/readedInFamily",
		Summary:     "Family members who have not read the book",
		Tags:        []string{"Library"},
		Security:    bearer,
	}, s.handleReadedInFamily)
}

// === DTOs ===

// SearchBooksInput contains the search query.
type SearchBooksInput struct {
	Query string `query:"q" maxLength:"200" doc:"Search query; empty lists every local book"`
}

// SearchBooksOutput wraps the three search branches.
type SearchBooksOutput struct {
	Body *domain.SearchResult
}

// GetBookInput addresses the book to resolve.
type GetBookInput struct {
	dto.BookPath
}

// BookResponse is a resolved book plus any entity groups that failed to import.
type BookResponse struct {
	domain.Book
	ImportWarnings []domain.ImportWarning `json:"import_warnings,omitempty"`
}

// GetBookOutput carries the encoded book or the JSON literal null.
type GetBookOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// CreateBookInput is the manual book body.
type CreateBookInput struct {
	Body domain.CreateBookInput
}

// CreateBookOutput returns the stored book.
type CreateBookOutput struct {
	Body *domain.Book
}

// AddToLibraryInput names owners and optional readers.
type AddToLibraryInput struct {
	dto.BookPath
	Body struct {
		OwnerIDs  []string `json:"owner_ids" minItems:"1" maxItems:"100" doc:"Users who own the book"`
		ReaderIDs []string `json:"reader_ids,omitempty" maxItems:"100" doc:"Users who have read the book"`
	}
}

// ReadersInput names readers.
type ReadersInput struct {
	dto.BookPath
	Body struct {
		ReaderIDs []string `json:"reader_ids" minItems:"1" maxItems:"100" doc:"Target users"`
	}
}

// OwnersInput names owners.
type OwnersInput struct {
	dto.BookPath
	Body struct {
		OwnerIDs []string `json:"owner_ids" minItems:"1" maxItems:"100" doc:"Target users"`
	}
}

// UserIDsOutput is a list of user ids.
type UserIDsOutput struct {
	Body []string
}

// === Handlers ===

func (s *Server) handleSearchBooks(ctx context.Context, input *SearchBooksInput) (*SearchBooksOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.allowSearch(userID); err != nil {
		return nil, err
	}

	res, err := s.services.Search.Search(ctx, input.Query)
	if err != nil {
		return nil, err
	}
	return &SearchBooksOutput{Body: res}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*GetBookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	ref, err := bookRef(input.BookPath)
	if err != nil {
		return nil, err
	}

	res, err := s.services.Books.Resolve(ctx, ref, userID)
	if err != nil {
		return nil, err
	}

	out := &GetBookOutput{ContentType: "application/json", Body: []byte("null")}
	if res != nil && res.Book != nil {
		body, err := json.Marshal(BookResponse{Book: *res.Book, ImportWarnings: res.ImportWarnings})
		if err != nil {
			return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "encode book")
		}
		out.Body = body
	}
	return out, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*CreateBookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Books.CreateBook(ctx, input.Body, userID)
	if err != nil {
		return nil, err
	}
	return &CreateBookOutput{Body: book}, nil
}

func (s *Server) handleAddToLibrary(ctx context.Context, input *AddToLibraryInput) (*dto.MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	ref, err := bookRef(input.BookPath)
	if err != nil {
		return nil, err
	}

	if err := s.services.Books.AddToLibrary(ctx, ref, userID, input.Body.OwnerIDs, input.Body.ReaderIDs); err != nil {
		return nil, err
	}
	return ok("Book added to library"), nil
}

func (s *Server) handleMarkAsRead(ctx context.Context, input *ReadersInput) (*dto.MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	ref, err := bookRef(input.BookPath)
	if err != nil {
		return nil, err
	}

	if err := s.services.Books.MarkAsRead(ctx, ref, userID, input.Body.ReaderIDs); err != nil {
		return nil, err
	}
	return ok("Book marked as read"), nil
}

func (s *Server) handleRemoveFromLibrary(ctx context.Context, input *OwnersInput) (*dto.MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	ref, err := bookRef(input.BookPath)
	if err != nil {
		return nil, err
	}

	if err := s.services.Books.RemoveFromLibrary(ctx, ref, userID, input.Body.OwnerIDs); err != nil {
		return nil, err
	}
	return ok("Book removed from library"), nil
}

func (s *Server) handleRemoveMark(ctx context.Context, input *ReadersInput) (*dto.MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	ref, err := bookRef(input.BookPath)
	if err != nil {
		return nil, err
	}

	if err := s.services.Books.RemoveMark(ctx, ref, userID, input.Body.ReaderIDs); err != nil {
		return nil, err
	}
	return ok("Read mark removed"), nil
}

func (s *Server) handleExistInFamily(ctx context.Context, input *GetBookInput) (*UserIDsOutput, error) {
	return s.whoLacks(ctx, input.BookPath, false)
}

func (s *Server) handleReadedInFamily(ctx context.Context, input *GetBookInput) (*UserIDsOutput, error) {
	return s.whoLacks(ctx, input.BookPath, true)
}

func (s *Server) whoLacks(ctx context.Context, p dto.BookPath, requireRead bool) (*UserIDsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	ref, err := bookRef(p)
	if err != nil {
		return nil, err
	}

	ids, err := s.services.Library.WhoLacks(ctx, ref, userID, requireRead)
	if err != nil {
		return nil, err
	}
	return &UserIDsOutput{Body: ids}, nil
}
