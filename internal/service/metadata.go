package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/mailib/mailib-server/internal/cache"
	"github.com/mailib/mailib-server/internal/metadata/fantlab"
)

// Upstream is the external catalog as the services see it.
// *fantlab.Client and *MetadataService both implement it.
type Upstream interface {
	FetchWork(ctx context.Context, id string) (*fantlab.Work, error)
	FetchEdition(ctx context.Context, id string) (*fantlab.Edition, error)
	SearchWorks(ctx context.Context, q string) ([]fantlab.WorkHit, error)
	SearchEditions(ctx context.Context, q string) ([]fantlab.EditionHit, error)
}

const cachePrefix = "fantlab:"

// MetadataService fronts the Fantlab client with a Badger cache for
// work and edition details. Search hits are not cached.
type MetadataService struct {
	client Upstream
	cache  *cache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

var _ Upstream = (*MetadataService)(nil)

// NewMetadataService creates a new metadata service. A nil cache disables caching.
func NewMetadataService(client Upstream, c *cache.Cache, ttl time.Duration, logger *slog.Logger) *MetadataService {
	return &MetadataService{
		client: client,
		cache:  c,
		ttl:    ttl,
		logger: logger,
	}
}

// FetchWork returns work details, using the cache if fresh.
func (s *MetadataService) FetchWork(ctx context.Context, id string) (*fantlab.Work, error) {
	return cached(ctx, s, cachePrefix+"work:"+id, func(ctx context.Context) (*fantlab.Work, error) {
		return s.client.FetchWork(ctx, id)
	})
}

// FetchEdition returns edition details, using the cache if fresh.
func (s *MetadataService) FetchEdition(ctx context.Context, id string) (*fantlab.Edition, error) {
	return cached(ctx, s, cachePrefix+"edition:"+id, func(ctx context.Context) (*fantlab.Edition, error) {
		return s.client.FetchEdition(ctx, id)
	})
}

// SearchWorks searches upstream works.
func (s *MetadataService) SearchWorks(ctx context.Context, q string) ([]fantlab.WorkHit, error) {
	s.logger.Debug("searching fantlab works", "query", q)
	return s.client.SearchWorks(ctx, q)
}

// SearchEditions searches upstream editions.
func (s *MetadataService) SearchEditions(ctx context.Context, q string) ([]fantlab.EditionHit, error) {
	s.logger.Debug("searching fantlab editions", "query", q)
	return s.client.SearchEditions(ctx, q)
}

// InvalidateWork drops a cached work so the next fetch goes upstream.
func (s *MetadataService) InvalidateWork(ctx context.Context, id string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, cachePrefix+"work:"+id)
}

// InvalidateEdition drops a cached edition.
func (s *MetadataService) InvalidateEdition(ctx context.Context, id string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, cachePrefix+"edition:"+id)
}

// PurgeCache drops every cached work and edition.
func (s *MetadataService) PurgeCache() error {
	if s.cache == nil {
		return nil
	}
	return s.cache.DropPrefix(cachePrefix)
}

func cached[T any](ctx context.Context, s *MetadataService, key string, fetch func(context.Context) (*T, error)) (*T, error) {
	if s.cache != nil {
		hit, err := cache.Get[T](ctx, s.cache, key, s.ttl)
		if err != nil {
			s.logger.Warn("cache lookup failed", "key", key, "error", err)
		}
		if hit != nil {
			s.logger.Debug("cache hit", "key", key)
			return hit, nil
		}
	}

	s.logger.Debug("fetching from fantlab", "key", key)
	v, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := cache.Set(ctx, s.cache, key, *v, s.ttl); err != nil {
			s.logger.Warn("failed to cache upstream payload", "key", key, "error", err)
		}
	}
	return v, nil
}
