package sqlite

import (
	"context"
	"fmt"

	"github.com/mailib/mailib-server/internal/domain"
	"github.com/mailib/mailib-server/internal/id"
)

// AddOwner records that userID owns the book. Returns false when any
// identity form of the book is already owned by the user.
func (s *Store) AddOwner(ctx context.Context, book *domain.Book, userID string) (bool, error) {
	forms := book.IdentityForms()
	args := []any{id.MustGenerate("own"), book.ID, userID, string(book.Type), formatTime(s.now()), userID}
	args = append(args, stringArgs(forms)...)

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO owners (id, book_id, user_id, type, created_at)
		SELECT ?, ?, ?, ?, ?
		WHERE NOT EXISTS (
			SELECT 1 FROM owners WHERE user_id = ? AND book_id IN (`+placeholders(len(forms))+`)
		)
		ON CONFLICT (book_id, user_id) DO NOTHING`,
		args...)
	if err != nil {
		return false, fmt.Errorf("add owner: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("add owner: %w", err)
	}
	return n > 0, nil
}

// AddReader records that userID has read the book. Returns false when the
// read is already recorded.
func (s *Store) AddReader(ctx context.Context, book *domain.Book, userID string) (bool, error) {
	forms := book.IdentityForms()
	args := []any{id.MustGenerate("read"), book.ID, userID, formatTime(s.now()), userID}
	args = append(args, stringArgs(forms)...)

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO readers (id, book_id, user_id, created_at)
		SELECT ?, ?, ?, ?
		WHERE NOT EXISTS (
			SELECT 1 FROM readers WHERE user_id = ? AND book_id IN (`+placeholders(len(forms))+`)
		)
		ON CONFLICT (book_id, user_id) DO NOTHING`,
		args...)
	if err != nil {
		return false, fmt.Errorf("add reader: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("add reader: %w", err)
	}
	return n > 0, nil
}

// RemoveOwners deletes owner rows of the given users for every identity form of the book.
func (s *Store) RemoveOwners(ctx context.Context, book *domain.Book, userIDs []string) (int64, error) {
	return s.removeRows(ctx, "owners", book, userIDs)
}

// RemoveReaders deletes reader rows of the given users for every identity form of the book.
func (s *Store) RemoveReaders(ctx context.Context, book *domain.Book, userIDs []string) (int64, error) {
	return s.removeRows(ctx, "readers", book, userIDs)
}

func (s *Store) removeRows(ctx context.Context, table string, book *domain.Book, userIDs []string) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	forms := book.IdentityForms()
	args := append(stringArgs(forms), stringArgs(userIDs)...)

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM `+table+`
		WHERE book_id IN (`+placeholders(len(forms))+`)
		  AND user_id IN (`+placeholders(len(userIDs))+`)`,
		args...)
	if err != nil {
		return 0, fmt.Errorf("remove %s: %w", table, err)
	}
	return res.RowsAffected()
}

// UserFlags reports whether the user owns and has read the book under any identity form.
func (s *Store) UserFlags(ctx context.Context, book *domain.Book, userID string) (owned, read bool, err error) {
	forms := book.IdentityForms()
	in := placeholders(len(forms))
	args := append([]any{userID}, stringArgs(forms)...)
	args = append(args, userID)
	args = append(args, stringArgs(forms)...)

	err = s.db.QueryRowContext(ctx, `
		SELECT
			EXISTS (SELECT 1 FROM owners WHERE user_id = ? AND book_id IN (`+in+`)),
			EXISTS (SELECT 1 FROM readers WHERE user_id = ? AND book_id IN (`+in+`))`,
		args...).Scan(&owned, &read)
	if err != nil {
		return false, false, fmt.Errorf("user flags: %w", err)
	}
	return owned, read, nil
}
