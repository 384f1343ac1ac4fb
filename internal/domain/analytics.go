package domain

import "math"

// MemberAnalytics summarizes one family member's shelf.
type MemberAnalytics struct {
	MemberID       string  `json:"member_id"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	BooksOwned     int     `json:"books_owned_count"`
	BooksRead      int     `json:"books_read_count"`
	ReadPercentage float64 `json:"read_percentage"`
}

// ReadPercentage is read/owned as a percentage rounded to two places,
// or 0 when nothing is owned.
func ReadPercentage(read, owned int) float64 {
	if owned == 0 {
		return 0
	}
	return math.Round(float64(read)*100/float64(owned)*100) / 100
}
