package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailib/mailib-server/internal/domain"
	"github.com/mailib/mailib-server/internal/errors"
	"github.com/mailib/mailib-server/internal/metadata/fantlab"
)

func TestSearch_MergesAndDeduplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.upstream.works["4245"] = testWork(4245, "Пикник на обочине")
	env.upstream.works["9"] = testWork(9, "Пикник: сценарий")
	env.upstream.editions["777"] = testEdition(777, "Пикник на обочине")
	env.upstream.workHits = []fantlab.WorkHit{
		{WorkID: 4245, RusName: "Пикник на обочине", WorkTypeID: 1, NameShowIm: "Повесть", Autor1ID: 498, Autor1Name: "Стругацкие"},
		{WorkID: 9, RusName: "Пикник: сценарий", WorkTypeID: 30},
	}
	env.upstream.editionHits = []fantlab.EditionHit{
		{EditionID: 777, Name: "Пикник на обочине [сборник]", Autors: "[autor=498]Стругацкие[/autor]"},
	}

	// One imported book duplicates the work hit, one local book does not.
	_, err := env.books.Resolve(ctx, domain.ExternalRef(domain.SourceFantlabWork, "4245"), "")
	require.NoError(t, err)
	local, err := env.books.CreateBook(ctx, domain.CreateBookInput{
		Name:    "Пикник у бабушки",
		Authors: []domain.EntityInput{{Name: "Семья"}},
		Genres:  []domain.EntityInput{{Name: "Сказка"}},
	}, "")
	require.NoError(t, err)

	res, err := env.search.Search(ctx, "пикник")
	require.NoError(t, err)

	require.Len(t, res.Books, 1, "work types outside the allow-list are dropped")
	w := res.Books[0]
	assert.Equal(t, "4245", w.ExternalID)
	assert.Equal(t, "/big/4245", w.ImageBig)
	assert.Equal(t, "/small/4245", w.ImageSmall)
	require.Len(t, w.Authors, 1)
	assert.Equal(t, "498", w.Authors[0].ID)
	require.Len(t, w.Genres, 1)
	assert.Equal(t, "Повесть", w.Genres[0].Name)

	require.Len(t, res.Editions, 1)
	e := res.Editions[0]
	assert.Equal(t, "Пикник на обочине", e.Name)
	assert.Equal(t, "/ed/small/777", e.ImageBig)
	assert.Equal(t, "/ed/big/777", e.ImageSmall)
	require.Len(t, e.Authors, 1)
	assert.Equal(t, int64(498), e.Authors[0].ExternalID)

	require.Len(t, res.Inner, 1)
	assert.Equal(t, local.ID, res.Inner[0].ID)
	require.Len(t, res.Inner[0].Authors, 1)
	assert.Equal(t, "Семья", res.Inner[0].Authors[0].Name)
}

func TestSearch_InnerReturnsEveryMatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := range 60 {
		_, err := env.books.CreateBook(ctx, domain.CreateBookInput{
			Name:    fmt.Sprintf("Дракон %d", i),
			Authors: []domain.EntityInput{{Name: "Семья"}},
			Genres:  []domain.EntityInput{{Name: "Сказка"}},
		}, "")
		require.NoError(t, err)
	}

	res, err := env.search.Search(ctx, "дракон")
	require.NoError(t, err)
	assert.Len(t, res.Inner, 60)
}

func TestSearch_UpstreamFailureFailsWhole(t *testing.T) {
	env := newTestEnv(t)
	env.upstream.err = errUpstreamDown

	res, err := env.search.Search(context.Background(), "x")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, errors.CodeUpstreamUnavailable, errors.CodeOf(err))
}

func TestSearch_EmptyUpstream(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.search.Search(context.Background(), "ничего")
	require.NoError(t, err)
	assert.Empty(t, res.Books)
	assert.Empty(t, res.Editions)
	assert.NotNil(t, res.Inner)
	assert.Empty(t, res.Inner)
}

func TestDropKnownExternal(t *testing.T) {
	inner := []domain.Book{
		{ID: "a", ExternalID: "1"},
		{ID: "b", ExternalID: "2"},
		{ID: "c"},
	}
	works := []domain.Book{{ExternalID: "1"}}
	editions := []domain.Book{{ExternalID: "3"}, {}}

	got := dropKnownExternal(inner, works, editions)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}
