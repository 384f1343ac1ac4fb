package sqlite

import (
	"context"
	"testing"

	"github.com/mailib/mailib-server/internal/domain"
	"github.com/mailib/mailib-server/internal/id"
	"github.com/mailib/mailib-server/internal/store"
)

func TestCreateAndGetBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := &domain.Book{
		ID:          id.NewInternal(),
		ExternalID:  "4245",
		Name:        "Пикник на обочине",
		Description: "Зона",
		ImageSmall:  "small.jpg",
		ImageBig:    "big.jpg",
		ISBNList:    "978-5-17-000000-1",
		Type:        domain.SourceFantlabWork,
	}
	if err := s.CreateBook(ctx, b); err != nil {
		t.Fatalf("CreateBook: %v", err)
	}
	if b.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}

	got, err := s.GetBook(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Name != b.Name || got.ExternalID != "4245" || got.Type != domain.SourceFantlabWork || got.ISBNList != b.ISBNList {
		t.Errorf("GetBook = %+v", got)
	}

	byExt, err := s.GetBookByExternalID(ctx, domain.SourceFantlabWork, "4245")
	if err != nil {
		t.Fatalf("GetBookByExternalID: %v", err)
	}
	if byExt.ID != b.ID {
		t.Errorf("GetBookByExternalID id = %s, want %s", byExt.ID, b.ID)
	}

	// External ids are scoped by type.
	if _, err := s.GetBookByExternalID(ctx, domain.SourceFantlabEdition, "4245"); !store.IsNotFound(err) {
		t.Errorf("edition lookup: expected not found, got %v", err)
	}
}

func TestCreateBook_DuplicateExternalID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestBook(t, s, "First", domain.SourceFantlabEdition, "77")

	dup := &domain.Book{ID: id.NewInternal(), Name: "Second", Type: domain.SourceFantlabEdition, ExternalID: "77"}
	if err := s.CreateBook(ctx, dup); !store.IsAlreadyExists(err) {
		t.Fatalf("expected already exists, got %v", err)
	}

	// Same number under another type is a different book.
	insertTestBook(t, s, "Work", domain.SourceFantlabWork, "77")
}

func TestCreateBook_InnerBooksWithoutExternalID(t *testing.T) {
	s := newTestStore(t)

	a := insertTestBook(t, s, "Manual A", domain.SourceInnerWork, "")
	insertTestBook(t, s, "Manual B", domain.SourceInnerWork, "")

	got, err := s.GetBook(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.ExternalID != "" {
		t.Errorf("ExternalID = %q, want empty", got.ExternalID)
	}
}

func TestGetBook_NotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetBook(context.Background(), "missing"); !store.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestGetBooksByIDs_PreservesOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := insertTestBook(t, s, "A", domain.SourceInnerWork, "")
	b := insertTestBook(t, s, "B", domain.SourceInnerWork, "")
	c := insertTestBook(t, s, "C", domain.SourceInnerWork, "")

	got, err := s.GetBooksByIDs(ctx, []string{c.ID, "missing", a.ID, b.ID})
	if err != nil {
		t.Fatalf("GetBooksByIDs: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 books, got %d", len(got))
	}
	if got[0].ID != c.ID || got[1].ID != a.ID || got[2].ID != b.ID {
		t.Errorf("order = %s, %s, %s", got[0].Name, got[1].Name, got[2].Name)
	}
}

func TestListUnlinkedExternalBooks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	linked := insertTestBook(t, s, "Linked", domain.SourceFantlabWork, "1")
	unlinked := insertTestBook(t, s, "Unlinked", domain.SourceFantlabEdition, "2")
	insertTestBook(t, s, "Manual", domain.SourceInnerWork, "")

	author := &domain.EntityRecord{Kind: domain.KindAuthor, ExternalID: 10, Name: "Author"}
	if err := s.CreateEntity(ctx, author); err != nil {
		t.Fatalf("CreateEntity: %v", err)
	}
	if _, err := s.LinkEntity(ctx, domain.KindAuthor, linked.ID, author.ID); err != nil {
		t.Fatalf("LinkEntity: %v", err)
	}

	got, err := s.ListUnlinkedExternalBooks(ctx, domain.KindAuthor)
	if err != nil {
		t.Fatalf("ListUnlinkedExternalBooks: %v", err)
	}
	if len(got) != 1 || got[0].ID != unlinked.ID {
		t.Errorf("unlinked = %v", got)
	}

	all, err := s.ListBooks(ctx)
	if err != nil {
		t.Fatalf("ListBooks: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("ListBooks returned %d books, want 3", len(all))
	}
}
