package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mailib/mailib-server/internal/domain"
	"github.com/mailib/mailib-server/internal/normalize"
	"github.com/mailib/mailib-server/internal/store"
)

// bookColumns must match the scan order in scanBook.
const bookColumns = `id, external_id, name, description, image_small, image_big, isbn_list, type, created_at`

func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var (
		b          domain.Book
		externalID sql.NullString
		bookType   string
		createdAt  string
	)

	err := scanner.Scan(
		&b.ID,
		&externalID,
		&b.Name,
		&b.Description,
		&b.ImageSmall,
		&b.ImageBig,
		&b.ISBNList,
		&bookType,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	b.ExternalID = externalID.String
	b.Type = domain.SourceType(bookType)
	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &b, nil
}

// CreateBook inserts a catalog book. A second book with the same
// (type, external_id) fails with store.ErrAlreadyExists.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	if book.CreatedAt.IsZero() {
		book.CreatedAt = s.now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO books (id, external_id, name, name_fold, description, image_small, image_big, isbn_list, type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		book.ID,
		nullString(book.ExternalID),
		book.Name,
		normalize.FoldName(book.Name),
		book.Description,
		book.ImageSmall,
		book.ImageBig,
		book.ISBNList,
		string(book.Type),
		formatTime(book.CreatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage("book already exists").WithCause(err)
	}
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

// GetBook loads a book by internal id.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id)
	b, err := scanBook(row)
	if err != nil {
		return nil, notFound(err, "book")
	}
	return b, nil
}

// GetBookByExternalID loads a book by (type, external id).
func (s *Store) GetBookByExternalID(ctx context.Context, t domain.SourceType, externalID string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE type = ? AND external_id = ?`,
		string(t), externalID)
	b, err := scanBook(row)
	if err != nil {
		return nil, notFound(err, "book")
	}
	return b, nil
}

// GetBooksByIDs loads the books with the given internal ids, in input order.
// Unknown ids are skipped.
func (s *Store) GetBooksByIDs(ctx context.Context, ids []string) ([]*domain.Book, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	books, err := s.queryBooks(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id IN (`+placeholders(len(ids))+`)`,
		stringArgs(ids)...)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}
	ordered := make([]*domain.Book, 0, len(books))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			ordered = append(ordered, b)
		}
	}
	return ordered, nil
}

// ListBooks returns every catalog book ordered by creation.
func (s *Store) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	return s.queryBooks(ctx, `SELECT `+bookColumns+` FROM books ORDER BY created_at, id`)
}

// ListUnlinkedExternalBooks returns imported books with no link of the given kind.
func (s *Store) ListUnlinkedExternalBooks(ctx context.Context, kind domain.EntityKind) ([]*domain.Book, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	return s.queryBooks(ctx, `
		SELECT `+bookColumns+` FROM books b
		WHERE b.type IN ('fantlab_work', 'fantlab_edition')
		  AND NOT EXISTS (SELECT 1 FROM `+t.links+` l WHERE l.book_id = b.id)
		ORDER BY b.created_at, b.id`)
}

func (s *Store) queryBooks(ctx context.Context, query string, args ...any) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}
