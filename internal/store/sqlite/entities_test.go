package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/mailib/mailib-server/internal/domain"
	"github.com/mailib/mailib-server/internal/store"
)

func TestCreateEntity_Defaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := &domain.EntityRecord{Kind: domain.KindCycle, Name: "Мир Полудня", Extra: domain.DefaultCycleType}
	if err := s.CreateEntity(ctx, rec); err != nil {
		t.Fatalf("CreateEntity: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("id not assigned")
	}
	if rec.ExternalID != domain.LocalExternalID {
		t.Errorf("external id = %d, want %d", rec.ExternalID, domain.LocalExternalID)
	}

	got, err := s.GetEntity(ctx, domain.KindCycle, rec.ID)
	if err != nil {
		t.Fatalf("GetEntity: %v", err)
	}
	if got.Name != rec.Name || got.Extra != domain.DefaultCycleType {
		t.Errorf("GetEntity = %+v", got)
	}
}

func TestCreateEntity_DuplicateExternalID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := &domain.EntityRecord{Kind: domain.KindAuthor, ExternalID: 498, Name: "Стругацкие", Extra: "Россия"}
	if err := s.CreateEntity(ctx, first); err != nil {
		t.Fatalf("CreateEntity: %v", err)
	}
	dup := &domain.EntityRecord{Kind: domain.KindAuthor, ExternalID: 498, Name: "Другое имя"}
	if err := s.CreateEntity(ctx, dup); !store.IsAlreadyExists(err) {
		t.Fatalf("expected already exists, got %v", err)
	}

	// Any number of local entities may share the -1 marker.
	for _, name := range []string{"Local A", "Local B"} {
		if err := s.CreateEntity(ctx, &domain.EntityRecord{Kind: domain.KindAuthor, Name: name}); err != nil {
			t.Fatalf("CreateEntity(%s): %v", name, err)
		}
	}

	got, err := s.GetEntityByExternalID(ctx, domain.KindAuthor, 498)
	if err != nil {
		t.Fatalf("GetEntityByExternalID: %v", err)
	}
	if got.ID != first.ID || got.Extra != "Россия" {
		t.Errorf("GetEntityByExternalID = %+v", got)
	}

	if _, err := s.GetEntityByExternalID(ctx, domain.KindAuthor, domain.LocalExternalID); !store.IsNotFound(err) {
		t.Errorf("local marker lookup: expected not found, got %v", err)
	}
}

func TestFindEntityByNamePrefix(t *testing.T) {
	s := newTestStore(t)
	tick(s, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	for _, name := range []string{"Фантастика научная", "Фантастика", "Фэнтези", "100%_genre"} {
		if err := s.CreateEntity(ctx, &domain.EntityRecord{Kind: domain.KindGenre, Name: name}); err != nil {
			t.Fatalf("CreateEntity(%s): %v", name, err)
		}
	}

	tests := []struct {
		query string
		want  string
	}{
		{"фантастика", "Фантастика"},
		{"ФАНТ", "Фантастика"},
		{"Фэн", "Фэнтези"},
		{"100%_", "100%_genre"},
	}
	for _, tt := range tests {
		got, err := s.FindEntityByNamePrefix(ctx, domain.KindGenre, tt.query)
		if err != nil {
			t.Fatalf("FindEntityByNamePrefix(%q): %v", tt.query, err)
		}
		if got.Name != tt.want {
			t.Errorf("FindEntityByNamePrefix(%q) = %q, want %q", tt.query, got.Name, tt.want)
		}
	}

	for _, q := range []string{"Детектив", "100_%", "   "} {
		if _, err := s.FindEntityByNamePrefix(ctx, domain.KindGenre, q); !store.IsNotFound(err) {
			t.Errorf("FindEntityByNamePrefix(%q): expected not found, got %v", q, err)
		}
	}
}

func TestLinkEntity_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	book := insertTestBook(t, s, "Book", domain.SourceFantlabWork, "1")
	a := &domain.EntityRecord{Kind: domain.KindAuthor, ExternalID: 1, Name: "A"}
	b := &domain.EntityRecord{Kind: domain.KindAuthor, ExternalID: 2, Name: "B"}
	for _, rec := range []*domain.EntityRecord{a, b} {
		if err := s.CreateEntity(ctx, rec); err != nil {
			t.Fatalf("CreateEntity: %v", err)
		}
	}

	created, err := s.LinkEntity(ctx, domain.KindAuthor, book.ID, b.ID)
	if err != nil || !created {
		t.Fatalf("first link: created=%v err=%v", created, err)
	}
	created, err = s.LinkEntity(ctx, domain.KindAuthor, book.ID, b.ID)
	if err != nil || created {
		t.Fatalf("second link: created=%v err=%v", created, err)
	}
	if _, err := s.LinkEntity(ctx, domain.KindAuthor, book.ID, a.ID); err != nil {
		t.Fatalf("link a: %v", err)
	}

	got, err := s.ListBookEntities(ctx, domain.KindAuthor, book.ID)
	if err != nil {
		t.Fatalf("ListBookEntities: %v", err)
	}
	if len(got) != 2 || got[0].ID != b.ID || got[1].ID != a.ID {
		t.Errorf("links in wrong order or duplicated: %+v", got)
	}
}

func TestListBooksEntities_Grouped(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b1 := insertTestBook(t, s, "One", domain.SourceInnerWork, "")
	b2 := insertTestBook(t, s, "Two", domain.SourceInnerWork, "")
	g := &domain.EntityRecord{Kind: domain.KindGenre, Name: "Проза"}
	if err := s.CreateEntity(ctx, g); err != nil {
		t.Fatalf("CreateEntity: %v", err)
	}
	for _, b := range []*domain.Book{b1, b2} {
		if _, err := s.LinkEntity(ctx, domain.KindGenre, b.ID, g.ID); err != nil {
			t.Fatalf("LinkEntity: %v", err)
		}
	}

	got, err := s.ListBooksEntities(ctx, domain.KindGenre, []string{b1.ID, b2.ID, "none"})
	if err != nil {
		t.Fatalf("ListBooksEntities: %v", err)
	}
	if len(got[b1.ID]) != 1 || len(got[b2.ID]) != 1 || len(got["none"]) != 0 {
		t.Errorf("grouping = %+v", got)
	}
}

func TestUnknownEntityKind(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetEntity(context.Background(), domain.EntityKind("publisher"), "x")
	if err == nil || store.IsNotFound(err) {
		t.Errorf("expected invalid input, got %v", err)
	}
}
