package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mailib/mailib-server/internal/domain"
	"github.com/mailib/mailib-server/internal/logger"
	"github.com/mailib/mailib-server/internal/metadata/fantlab"
	"github.com/mailib/mailib-server/internal/search"
	"github.com/mailib/mailib-server/internal/store/sqlite"
)

// fakeUpstream serves canned Fantlab payloads and counts detail fetches.
type fakeUpstream struct {
	mu          sync.Mutex
	works       map[string]*fantlab.Work
	editions    map[string]*fantlab.Edition
	workHits    []fantlab.WorkHit
	editionHits []fantlab.EditionHit
	err         error
	fetches     map[string]int
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		works:    make(map[string]*fantlab.Work),
		editions: make(map[string]*fantlab.Edition),
		fetches:  make(map[string]int),
	}
}

func (f *fakeUpstream) FetchWork(_ context.Context, id string) (*fantlab.Work, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches["work:"+id]++
	if f.err != nil {
		return nil, f.err
	}
	w, ok := f.works[id]
	if !ok {
		return nil, fantlab.ErrNotFound
	}
	return w, nil
}

func (f *fakeUpstream) FetchEdition(_ context.Context, id string) (*fantlab.Edition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches["edition:"+id]++
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.editions[id]
	if !ok {
		return nil, fantlab.ErrNotFound
	}
	return e, nil
}

func (f *fakeUpstream) SearchWorks(context.Context, string) ([]fantlab.WorkHit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.workHits, nil
}

func (f *fakeUpstream) SearchEditions(context.Context, string) ([]fantlab.EditionHit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.editionHits, nil
}

func (f *fakeUpstream) fetchCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches[key]
}

var errUpstreamDown = errors.New("connection refused")

type testEnv struct {
	store     *sqlite.Store
	index     *search.SearchIndex
	upstream  *fakeUpstream
	catalog   *CatalogService
	books     *BookService
	search    *SearchService
	library   *LibraryService
	analytics *AnalyticsService
	entities  *EntityService
	reconcile *ReconcileService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	log := logger.Discard()

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	idx, err := search.NewSearchIndex(search.Options{DataPath: filepath.Join(dir, "search"), Logger: log})
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	up := newFakeUpstream()
	catalog := NewCatalogService(st, log)
	books := NewBookService(st, catalog, up, idx, log)

	return &testEnv{
		store:     st,
		index:     idx,
		upstream:  up,
		catalog:   catalog,
		books:     books,
		search:    NewSearchService(up, idx, st, log),
		library:   NewLibraryService(st, books, log),
		analytics: NewAnalyticsService(st, log),
		entities:  NewEntityService(st),
		reconcile: NewReconcileService(st, catalog, up, idx, log),
	}
}

// seedFamily creates a three-member family plus an outsider.
func (e *testEnv) seedFamily(t *testing.T) {
	t.Helper()
	for _, u := range []domain.User{
		{ID: "u-anna", FirstName: "Anna", LastName: "Ivanova", FamilyID: "fam"},
		{ID: "u-boris", FirstName: "Boris", LastName: "Ivanov", FamilyID: "fam"},
		{ID: "u-vera", FirstName: "Vera", LastName: "Ivanova", FamilyID: "fam"},
		{ID: "u-out", FirstName: "Oleg", LastName: "Outsider", FamilyID: "other"},
	} {
		require.NoError(t, e.store.UpsertUser(context.Background(), &u))
	}
}

func testWork(id fantlab.ID, name string) *fantlab.Work {
	w := &fantlab.Work{
		WorkID:          id,
		WorkName:        name,
		WorkDescription: `<a href="/work1">` + name + `</a> [примечание]`,
		Image:           "/big/" + id.String(),
		ImagePreview:    "/small/" + id.String(),
		WorkTypeID:      1,
		Authors:         []fantlab.Creator{{Type: "autor", ID: 498, Name: "Аркадий и Борис Стругацкие"}},
		WorkRootSaga:    []fantlab.SagaEntry{{WorkID: 7100, WorkName: "Мир Полудня", WorkType: "цикл"}},
	}
	w.EditionsInfo.ISBNList = "978-5-17-000000-1"
	w.Classificatory.GenreGroup = []fantlab.GenreGroup{{
		Label: "Жанры/поджанры",
		Genre: []fantlab.GenreNode{{GenreID: 2, Label: "Философская проза"}},
	}}
	return w
}

func testEdition(id fantlab.ID, name string) *fantlab.Edition {
	e := &fantlab.Edition{
		EditionID:    id,
		EditionName:  name,
		Image:        "/ed/big/" + id.String(),
		ImagePreview: "/ed/small/" + id.String(),
		ISBNs:        []string{"5-00-000000-0"},
		Series:       []fantlab.SeriesEntry{{ID: 3301, Name: "Отцы-основатели", Type: "series"}},
	}
	e.Creators.Authors = []fantlab.Creator{{ID: 498, Name: "Аркадий и Борис Стругацкие"}}
	return e
}
