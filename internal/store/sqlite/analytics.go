package sqlite

import (
	"context"
	"fmt"

	"github.com/mailib/mailib-server/internal/domain"
)

// FamilyAnalytics returns owned/read counts for every family member,
// ordered by first and last name.
func (s *Store) FamilyAnalytics(ctx context.Context, userID string) ([]domain.MemberAnalytics, error) {
	rows, err := s.db.QueryContext(ctx, `
		WITH `+familyCTE+`
		SELECT f.id, f.first_name, f.last_name,
			(SELECT COUNT(DISTINCT o.book_id) FROM owners o WHERE o.user_id = f.id),
			(SELECT COUNT(DISTINCT r.book_id) FROM readers r WHERE r.user_id = f.id)
		FROM family f
		ORDER BY f.first_name, f.last_name, f.id`,
		userID, userID)
	if err != nil {
		return nil, fmt.Errorf("family analytics: %w", err)
	}
	defer rows.Close()

	stats := []domain.MemberAnalytics{}
	for rows.Next() {
		var m domain.MemberAnalytics
		if err := rows.Scan(&m.MemberID, &m.FirstName, &m.LastName, &m.BooksOwned, &m.BooksRead); err != nil {
			return nil, fmt.Errorf("scan analytics: %w", err)
		}
		m.ReadPercentage = domain.ReadPercentage(m.BooksRead, m.BooksOwned)
		stats = append(stats, m)
	}
	return stats, rows.Err()
}
