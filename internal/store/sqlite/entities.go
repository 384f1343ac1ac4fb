package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/mailib/mailib-server/internal/domain"
	"github.com/mailib/mailib-server/internal/id"
	"github.com/mailib/mailib-server/internal/normalize"
	"github.com/mailib/mailib-server/internal/store"
)

// entityTable describes where one entity kind lives.
type entityTable struct {
	table   string // authors
	links   string // authors_books
	linkCol string // author_id
	extra   string // column backing EntityRecord.Extra, or "''"
}

var entityTables = map[domain.EntityKind]entityTable{
	domain.KindAuthor: {table: "authors", links: "authors_books", linkCol: "author_id", extra: "country"},
	domain.KindGenre:  {table: "genres", links: "genres_books", linkCol: "genre_id", extra: "''"},
	domain.KindCycle:  {table: "cycles", links: "cycles_books", linkCol: "cycle_id", extra: "type"},
}

func tableFor(kind domain.EntityKind) (entityTable, error) {
	t, ok := entityTables[kind]
	if !ok {
		return entityTable{}, store.ErrInvalidInput.WithMessage(fmt.Sprintf("unknown entity kind %q", kind))
	}
	return t, nil
}

func (t entityTable) columns(alias string) string {
	p := ""
	if alias != "" {
		p = alias + "."
	}
	extra := t.extra
	if extra != "''" {
		extra = p + extra
	}
	return fmt.Sprintf("%sid, %sexternal_id, %sname, %s", p, p, p, extra)
}

func scanEntity(kind domain.EntityKind, scanner interface{ Scan(dest ...any) error }) (*domain.EntityRecord, error) {
	rec := domain.EntityRecord{Kind: kind}
	if err := scanner.Scan(&rec.ID, &rec.ExternalID, &rec.Name, &rec.Extra); err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetEntity loads an author, genre or cycle by internal id.
func (s *Store) GetEntity(ctx context.Context, kind domain.EntityKind, entityID string) (*domain.EntityRecord, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+t.columns("")+` FROM `+t.table+` WHERE id = ?`, entityID)
	rec, err := scanEntity(kind, row)
	if err != nil {
		return nil, notFound(err, string(kind))
	}
	return rec, nil
}

// GetEntityByExternalID loads an entity by its upstream id. Local entities
// (external id <= 0) are never matched.
func (s *Store) GetEntityByExternalID(ctx context.Context, kind domain.EntityKind, externalID int64) (*domain.EntityRecord, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	if externalID <= 0 {
		return nil, store.ErrNotFound.WithMessage(string(kind) + " not found")
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+t.columns("")+` FROM `+t.table+` WHERE external_id = ?`, externalID)
	rec, err := scanEntity(kind, row)
	if err != nil {
		return nil, notFound(err, string(kind))
	}
	return rec, nil
}

// FindEntityByNamePrefix returns the entity whose folded name starts with
// the folded input, preferring the shortest (closest) name.
func (s *Store) FindEntityByNamePrefix(ctx context.Context, kind domain.EntityKind, name string) (*domain.EntityRecord, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	folded := normalize.FoldName(name)
	if folded == "" {
		return nil, store.ErrNotFound.WithMessage(string(kind) + " not found")
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+t.columns("")+` FROM `+t.table+`
		WHERE name_fold LIKE ? ESCAPE '\'
		ORDER BY length(name_fold), created_at, id
		LIMIT 1`,
		escapeLike(folded)+"%")
	rec, err := scanEntity(kind, row)
	if err != nil {
		return nil, notFound(err, string(kind))
	}
	return rec, nil
}

// CreateEntity inserts an entity, assigning an id when missing. A duplicate
// upstream id fails with store.ErrAlreadyExists.
func (s *Store) CreateEntity(ctx context.Context, rec *domain.EntityRecord) error {
	t, err := tableFor(rec.Kind)
	if err != nil {
		return err
	}
	if rec.ID == "" {
		rec.ID = id.NewInternal()
	}
	if rec.ExternalID <= 0 {
		rec.ExternalID = domain.LocalExternalID
	}

	cols := "id, external_id, name, name_fold, created_at"
	args := []any{rec.ID, rec.ExternalID, rec.Name, normalize.FoldName(rec.Name), formatTime(s.now())}
	if t.extra != "''" {
		cols += ", " + t.extra
		args = append(args, rec.Extra)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO `+t.table+` (`+cols+`) VALUES (`+placeholders(len(args))+`)`,
		args...)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage(string(rec.Kind) + " already exists").WithCause(err)
	}
	if err != nil {
		return fmt.Errorf("insert %s: %w", rec.Kind, err)
	}
	return nil
}

// LinkEntity links an entity to a book unless the pair is already linked.
// Returns true when a new link row was written.
func (s *Store) LinkEntity(ctx context.Context, kind domain.EntityKind, bookID, entityID string) (bool, error) {
	t, err := tableFor(kind)
	if err != nil {
		return false, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO `+t.links+` (id, book_id, `+t.linkCol+`, created_at)
		SELECT ?, ?, ?, ?
		WHERE NOT EXISTS (SELECT 1 FROM `+t.links+` WHERE book_id = ? AND `+t.linkCol+` = ?)
		ON CONFLICT (book_id, `+t.linkCol+`) DO NOTHING`,
		id.MustGenerate("lnk"), bookID, entityID, formatTime(s.now()),
		bookID, entityID)
	if err != nil {
		return false, fmt.Errorf("link %s: %w", kind, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("link %s: %w", kind, err)
	}
	return n > 0, nil
}

// ListBookEntities returns the entities linked to a book in link order.
func (s *Store) ListBookEntities(ctx context.Context, kind domain.EntityKind, bookID string) ([]domain.EntityRecord, error) {
	grouped, err := s.ListBooksEntities(ctx, kind, []string{bookID})
	if err != nil {
		return nil, err
	}
	return grouped[bookID], nil
}

// ListBooksEntities returns linked entities for many books, grouped by book id.
func (s *Store) ListBooksEntities(ctx context.Context, kind domain.EntityKind, bookIDs []string) (map[string][]domain.EntityRecord, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]domain.EntityRecord, len(bookIDs))
	if len(bookIDs) == 0 {
		return out, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT l.book_id, `+t.columns("e")+`
		FROM `+t.links+` l
		JOIN `+t.table+` e ON e.id = l.`+t.linkCol+`
		WHERE l.book_id IN (`+placeholders(len(bookIDs))+`)
		ORDER BY l.book_id, l.rowid`,
		stringArgs(bookIDs)...)
	if err != nil {
		return nil, fmt.Errorf("list %s links: %w", kind, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			bookID string
			rec    = domain.EntityRecord{Kind: kind}
		)
		if err := rows.Scan(&bookID, &rec.ID, &rec.ExternalID, &rec.Name, &rec.Extra); err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		out[bookID] = append(out[bookID], rec)
	}
	return out, rows.Err()
}

// escapeLike escapes LIKE wildcards with a backslash.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
