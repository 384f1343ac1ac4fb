package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mailib/mailib-server/internal/domain"
	domainerrors "github.com/mailib/mailib-server/internal/errors"
)

func (s *Server) registerLibraryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getLibrary",
		Method:      http.MethodGet,
		Path:        "/books/library",
		Summary:     "Family library",
		Description: "Lists every book owned by a family member. Without page or limit the body is a bare array; otherwise it is a page envelope.",
		Tags:        []string{"Library"},
		Security:    bearer,
	}, s.handleGetLibrary)
}

// LibraryInput holds the optional page and sort parameters. Page and limit
// are strings so that absence stays distinguishable from zero.
type LibraryInput struct {
	Page      string `query:"page" doc:"Page number, 1-based"`
	Limit     string `query:"limit" doc:"Items per page"`
	SortBy    string `query:"sortBy" doc:"name, authors_info, genres_info or read_count"`
	SortOrder string `query:"sortOrder" doc:"ASC or DESC"`
}

// LibraryOutput is either []domain.LibraryBook or *domain.LibraryPage.
type LibraryOutput struct {
	Body any
}

func (s *Server) handleGetLibrary(ctx context.Context, input *LibraryInput) (*LibraryOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	q := domain.LibraryQuery{SortBy: input.SortBy, SortOrder: input.SortOrder}
	if q.Page, err = optionalPositive("page", input.Page); err != nil {
		return nil, err
	}
	if q.Limit, err = optionalPositive("limit", input.Limit); err != nil {
		return nil, err
	}

	res, err := s.services.Library.Library(ctx, userID, q)
	if err != nil {
		return nil, err
	}
	return &LibraryOutput{Body: res.Payload()}, nil
}

// optionalPositive parses an optional positive integer query value.
func optionalPositive(name, raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return nil, domainerrors.ValidationWithDetails("invalid query parameter",
			map[string]string{name: "must be a positive integer"})
	}
	return &v, nil
}
