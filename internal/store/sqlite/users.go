package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mailib/mailib-server/internal/domain"
)

// familyCTE selects the acting user and everyone sharing their family_id.
// It takes the acting user id twice.
const familyCTE = `family AS (
	SELECT u.id, u.first_name, u.last_name
	FROM users u
	WHERE u.id = ?
	   OR (u.family_id IS NOT NULL AND u.family_id <> ''
	       AND u.family_id = (SELECT family_id FROM users WHERE id = ?))
)`

// GetUser loads a user row.
func (s *Store) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	var (
		u        domain.User
		familyID sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, family_id FROM users WHERE id = ?`, userID).
		Scan(&u.ID, &u.FirstName, &u.LastName, &familyID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	u.FamilyID = familyID.String
	return &u, nil
}

// UpsertUser inserts or updates a user row. Accounts are owned by the
// account service; this keeps the local copy in sync and seeds tests.
func (s *Store) UpsertUser(ctx context.Context, u *domain.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, first_name, last_name, family_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			family_id = excluded.family_id`,
		u.ID, u.FirstName, u.LastName, nullString(u.FamilyID))
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// FamilyMembers returns the user's family (including the user), ordered by name.
func (s *Store) FamilyMembers(ctx context.Context, userID string) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		WITH `+familyCTE+`
		SELECT f.id, f.first_name, f.last_name, COALESCE(u.family_id, '')
		FROM family f JOIN users u ON u.id = f.id
		ORDER BY f.first_name, f.last_name, f.id`,
		userID, userID)
	if err != nil {
		return nil, fmt.Errorf("family members: %w", err)
	}
	defer rows.Close()

	var members []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.FamilyID); err != nil {
			return nil, fmt.Errorf("scan family member: %w", err)
		}
		members = append(members, u)
	}
	return members, rows.Err()
}

// FamilyMembersLacking returns ids of family members with no owner row (or,
// with requireRead, no reader row) for any identity form of the book.
func (s *Store) FamilyMembersLacking(ctx context.Context, userID string, book *domain.Book, requireRead bool) ([]string, error) {
	table := "owners"
	if requireRead {
		table = "readers"
	}
	forms := book.IdentityForms()
	args := append([]any{userID, userID}, stringArgs(forms)...)

	rows, err := s.db.QueryContext(ctx, `
		WITH `+familyCTE+`
		SELECT f.id FROM family f
		WHERE NOT EXISTS (
			SELECT 1 FROM `+table+` x
			WHERE x.user_id = f.id AND x.book_id IN (`+placeholders(len(forms))+`)
		)
		ORDER BY f.first_name, f.last_name, f.id`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("family members lacking: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var memberID string
		if err := rows.Scan(&memberID); err != nil {
			return nil, fmt.Errorf("scan member id: %w", err)
		}
		ids = append(ids, memberID)
	}
	return ids, rows.Err()
}
