package service

import (
	"context"

	"github.com/mailib/mailib-server/internal/domain"
	"github.com/mailib/mailib-server/internal/errors"
	"github.com/mailib/mailib-server/internal/store"
)

// EntityService looks up authors, genres and cycles by internal id.
type EntityService struct {
	store store.Store
}

// NewEntityService creates a new entity service.
func NewEntityService(store store.Store) *EntityService {
	return &EntityService{store: store}
}

func (s *EntityService) get(ctx context.Context, kind domain.EntityKind, id string) (*domain.EntityRecord, error) {
	rec, err := s.store.GetEntity(ctx, kind, id)
	if store.IsNotFound(err) {
		return nil, errors.NotFoundf("%s %s not found", kind, id)
	}
	if err != nil {
		return nil, errors.Persistence(err, "load "+string(kind))
	}
	return rec, nil
}

// Author returns an author.
func (s *EntityService) Author(ctx context.Context, id string) (*domain.Author, error) {
	rec, err := s.get(ctx, domain.KindAuthor, id)
	if err != nil {
		return nil, err
	}
	a := rec.Author()
	return &a, nil
}

// Genre returns a genre.
func (s *EntityService) Genre(ctx context.Context, id string) (*domain.Genre, error) {
	rec, err := s.get(ctx, domain.KindGenre, id)
	if err != nil {
		return nil, err
	}
	g := rec.Genre()
	return &g, nil
}

// Cycle returns a cycle.
func (s *EntityService) Cycle(ctx context.Context, id string) (*domain.Cycle, error) {
	rec, err := s.get(ctx, domain.KindCycle, id)
	if err != nil {
		return nil, err
	}
	c := rec.Cycle()
	return &c, nil
}
