package sqlite

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mailib/mailib-server/internal/domain"
	"github.com/mailib/mailib-server/internal/store"
)

// familyBooks selects the distinct ids of books owned by anyone in the
// family, matched on either identity form. Requires familyCTE.
const familyBooks = `library AS (
	SELECT DISTINCT b.id
	FROM books b
	JOIN owners o ON o.book_id = b.id OR o.book_id = b.external_id
	JOIN family f ON f.id = o.user_id
)`

// sortKeys maps a library sort column to its SQL key over books b.
var sortKeys = map[domain.LibrarySort]string{
	domain.SortByName: `b.name_fold`,
	domain.SortByAuthors: `COALESCE((
		SELECT a.name_fold FROM authors_books ab JOIN authors a ON a.id = ab.author_id
		WHERE ab.book_id = b.id ORDER BY ab.rowid LIMIT 1), '')`,
	domain.SortByGenres: `COALESCE((
		SELECT g.name_fold FROM genres_books gb JOIN genres g ON g.id = gb.genre_id
		WHERE gb.book_id = b.id ORDER BY gb.rowid LIMIT 1), '')`,
	domain.SortByReadCount: `(
		SELECT COUNT(DISTINCT r.user_id) FROM readers r JOIN family f ON f.id = r.user_id
		WHERE r.book_id = b.id OR r.book_id = b.external_id)`,
}

// FamilyLibrary returns one page of the family library in the requested order.
func (s *Store) FamilyLibrary(ctx context.Context, userID string, sortBy domain.LibrarySort, order domain.SortOrder, page store.Page) ([]domain.LibraryBook, error) {
	key, ok := sortKeys[sortBy]
	if !ok {
		key = sortKeys[domain.SortByName]
	}
	dir := "ASC"
	if order == domain.SortDesc {
		dir = "DESC"
	}

	rows, err := s.db.QueryContext(ctx, `
		WITH `+familyCTE+`, `+familyBooks+`
		SELECT `+prefixed("b", bookColumns)+`
		FROM books b JOIN library l ON l.id = b.id
		ORDER BY `+key+` `+dir+`, b.name_fold, b.id
		LIMIT ? OFFSET ?`,
		userID, userID, page.SQLLimit(), page.Offset)
	if err != nil {
		return nil, fmt.Errorf("family library: %w", err)
	}
	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan library book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return s.hydrateLibrary(ctx, userID, books)
}

// CountFamilyLibrary returns the number of distinct books in the family library.
func (s *Store) CountFamilyLibrary(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		WITH `+familyCTE+`, `+familyBooks+`
		SELECT COUNT(*) FROM library`,
		userID, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count family library: %w", err)
	}
	return n, nil
}

// memberEvent is one owner or reader row joined to the family.
type memberEvent struct {
	bookID string
	user   domain.User
	at     time.Time
}

func (s *Store) hydrateLibrary(ctx context.Context, userID string, books []*domain.Book) ([]domain.LibraryBook, error) {
	out := make([]domain.LibraryBook, 0, len(books))
	if len(books) == 0 {
		return out, nil
	}

	// One stored book_id may stand for several catalog books: an
	// external id is shared by a work and an edition with the same number.
	byForm := make(map[string][]int)
	ids := make([]string, 0, len(books))
	for i, b := range books {
		ids = append(ids, b.ID)
		for _, form := range b.IdentityForms() {
			byForm[form] = append(byForm[form], i)
		}
	}
	forms := make([]string, 0, len(byForm))
	for form := range byForm {
		forms = append(forms, form)
	}

	readers, err := s.familyEvents(ctx, "readers", userID, forms)
	if err != nil {
		return nil, err
	}
	owners, err := s.familyEvents(ctx, "owners", userID, forms)
	if err != nil {
		return nil, err
	}
	authors, err := s.ListBooksEntities(ctx, domain.KindAuthor, ids)
	if err != nil {
		return nil, err
	}
	genres, err := s.ListBooksEntities(ctx, domain.KindGenre, ids)
	if err != nil {
		return nil, err
	}

	readersByBook := latestPerUser(readers, byForm, len(books))
	ownersByBook := latestPerUser(owners, byForm, len(books))

	for i, b := range books {
		row := domain.LibraryBook{
			ID:          b.ID,
			Name:        b.Name,
			ExternalID:  b.ExternalID,
			Type:        b.Type,
			ReadersInfo: []domain.ReaderInfo{},
			OwnersInfo:  []domain.OwnerInfo{},
			AuthorsInfo: []domain.AuthorInfo{},
			GenresInfo:  []domain.GenreInfo{},
		}
		for _, ev := range readersByBook[i] {
			row.ReadersInfo = append(row.ReadersInfo, domain.ReaderInfo{
				ReaderID:   ev.user.ID,
				ReaderName: ev.user.DisplayName(),
				ReadDate:   ev.at,
			})
		}
		row.ReadCount = len(row.ReadersInfo)
		for _, ev := range ownersByBook[i] {
			row.OwnersInfo = append(row.OwnersInfo, domain.OwnerInfo{
				OwnerID:   ev.user.ID,
				OwnerName: ev.user.DisplayName(),
				OwnerDate: ev.at,
			})
		}
		for _, a := range authors[b.ID] {
			row.AuthorsInfo = append(row.AuthorsInfo, domain.AuthorInfo{AuthorID: a.ID, AuthorName: a.Name})
		}
		for _, g := range genres[b.ID] {
			row.GenresInfo = append(row.GenresInfo, domain.GenreInfo{GenreID: g.ID, GenreName: g.Name})
		}
		out = append(out, row)
	}
	return out, nil
}

// familyEvents loads owner or reader rows of family members for the given book forms.
func (s *Store) familyEvents(ctx context.Context, table, userID string, forms []string) ([]memberEvent, error) {
	args := append([]any{userID, userID}, stringArgs(forms)...)
	rows, err := s.db.QueryContext(ctx, `
		WITH `+familyCTE+`
		SELECT x.book_id, f.id, f.first_name, f.last_name, x.created_at
		FROM `+table+` x JOIN family f ON f.id = x.user_id
		WHERE x.book_id IN (`+placeholders(len(forms))+`)`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", table, err)
	}
	defer rows.Close()

	var events []memberEvent
	for rows.Next() {
		var (
			ev        memberEvent
			createdAt string
		)
		if err := rows.Scan(&ev.bookID, &ev.user.ID, &ev.user.FirstName, &ev.user.LastName, &createdAt); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		if ev.at, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse %s created_at: %w", table, err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// latestPerUser groups events by book index, keeping one event per user
// (the most recent), ordered by date then user id.
func latestPerUser(events []memberEvent, byForm map[string][]int, n int) [][]memberEvent {
	latest := make([]map[string]memberEvent, n)
	for _, ev := range events {
		for _, i := range byForm[ev.bookID] {
			if latest[i] == nil {
				latest[i] = make(map[string]memberEvent)
			}
			if cur, ok := latest[i][ev.user.ID]; !ok || ev.at.After(cur.at) {
				latest[i][ev.user.ID] = ev
			}
		}
	}

	out := make([][]memberEvent, n)
	for i, m := range latest {
		for _, ev := range m {
			out[i] = append(out[i], ev)
		}
		sort.Slice(out[i], func(a, b int) bool {
			if !out[i][a].at.Equal(out[i][b].at) {
				return out[i][a].at.Before(out[i][b].at)
			}
			return out[i][a].user.ID < out[i][b].user.ID
		})
	}
	return out
}

// prefixed qualifies a comma-separated column list with a table alias.
func prefixed(alias, columns string) string {
	cols := strings.Split(columns, ",")
	for i, col := range cols {
		cols[i] = alias + "." + strings.TrimSpace(col)
	}
	return strings.Join(cols, ", ")
}
