package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailib/mailib-server/internal/cache"
	"github.com/mailib/mailib-server/internal/logger"
	"github.com/mailib/mailib-server/internal/metadata/fantlab"
)

func TestMetadataService_CachesDetails(t *testing.T) {
	c, err := cache.OpenInMemory(logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	up := newFakeUpstream()
	up.works["1"] = testWork(1, "Кэш")
	up.editions["2"] = testEdition(2, "Кэш")
	svc := NewMetadataService(up, c, time.Hour, logger.Discard())
	ctx := context.Background()

	for range 3 {
		w, err := svc.FetchWork(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, "Кэш", w.WorkName)
		assert.Equal(t, "Жанры/поджанры", w.Classificatory.GenreGroup[0].Label)

		_, err = svc.FetchEdition(ctx, "2")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, up.fetchCount("work:1"))
	assert.Equal(t, 1, up.fetchCount("edition:2"))

	require.NoError(t, svc.InvalidateWork(ctx, "1"))
	_, err = svc.FetchWork(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 2, up.fetchCount("work:1"))
}

func TestMetadataService_PurgeCache(t *testing.T) {
	c, err := cache.OpenInMemory(logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	up := newFakeUpstream()
	up.works["1"] = testWork(1, "Кэш")
	up.editions["2"] = testEdition(2, "Кэш")
	svc := NewMetadataService(up, c, time.Hour, logger.Discard())
	ctx := context.Background()

	_, err = svc.FetchWork(ctx, "1")
	require.NoError(t, err)
	_, err = svc.FetchEdition(ctx, "2")
	require.NoError(t, err)

	require.NoError(t, svc.PurgeCache())

	_, err = svc.FetchWork(ctx, "1")
	require.NoError(t, err)
	_, err = svc.FetchEdition(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, 2, up.fetchCount("work:1"))
	assert.Equal(t, 2, up.fetchCount("edition:2"))

	require.NoError(t, NewMetadataService(up, nil, time.Hour, logger.Discard()).PurgeCache())
}

func TestMetadataService_ErrorsAreNotCached(t *testing.T) {
	c, err := cache.OpenInMemory(logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	up := newFakeUpstream()
	svc := NewMetadataService(up, c, time.Hour, logger.Discard())
	ctx := context.Background()

	_, err = svc.FetchWork(ctx, "9")
	assert.ErrorIs(t, err, fantlab.ErrNotFound)

	up.works["9"] = testWork(9, "Появилась")
	w, err := svc.FetchWork(ctx, "9")
	require.NoError(t, err)
	assert.Equal(t, "Появилась", w.WorkName)
}

func TestMetadataService_WithoutCache(t *testing.T) {
	up := newFakeUpstream()
	up.works["1"] = testWork(1, "Без кэша")
	svc := NewMetadataService(up, nil, time.Hour, logger.Discard())

	for range 2 {
		_, err := svc.FetchWork(context.Background(), "1")
		require.NoError(t, err)
	}
	assert.Equal(t, 2, up.fetchCount("work:1"))
	require.NoError(t, svc.InvalidateEdition(context.Background(), "1"))
}
