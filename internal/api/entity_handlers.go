package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mailib/mailib-server/internal/api/dto"
	"github.com/mailib/mailib-server/internal/domain"
)

func (s *Server) registerEntityRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getAuthor",
		Method:      http.MethodGet,
		Path:        "/authors/{id}",
		Summary:     "Get author",
		Tags:        []string{"Catalog"},
		Security:    bearer,
	}, s.handleGetAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID: "getGenre",
		Method:      http.MethodGet,
		Path:        "/genres/{id}",
		Summary:     "Get genre",
		Tags:        []string{"Catalog"},
		Security:    bearer,
	}, s.handleGetGenre)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCycle",
		Method:      http.MethodGet,
		Path:        "/cycles/{id}",
		Summary:     "Get cycle",
		Tags:        []string{"Catalog"},
		Security:    bearer,
	}, s.handleGetCycle)
}

// AuthorOutput wraps an author.
type AuthorOutput struct {
	Body *domain.Author
}

// GenreOutput wraps a genre.
type GenreOutput struct {
	Body *domain.Genre
}

// CycleOutput wraps a cycle.
type CycleOutput struct {
	Body *domain.Cycle
}

func (s *Server) handleGetAuthor(ctx context.Context, input *dto.IDParam) (*AuthorOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}
	a, err := s.services.Entities.Author(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &AuthorOutput{Body: a}, nil
}

func (s *Server) handleGetGenre(ctx context.Context, input *dto.IDParam) (*GenreOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}
	g, err := s.services.Entities.Genre(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &GenreOutput{Body: g}, nil
}

func (s *Server) handleGetCycle(ctx context.Context, input *dto.IDParam) (*CycleOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}
	c, err := s.services.Entities.Cycle(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &CycleOutput{Body: c}, nil
}
