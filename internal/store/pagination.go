package store

// Page is an offset window over an ordered result.
type Page struct {
	Offset int
	Limit  int // 0 means unbounded
}

// PageOf converts a 1-based page number and size into an offset window.
func PageOf(page, limit int) Page {
	if page < 1 {
		page = 1
	}
	if limit < 0 {
		limit = 0
	}
	return Page{Offset: (page - 1) * limit, Limit: limit}
}

// Unbounded selects every row.
func Unbounded() Page { return Page{} }

// SQLLimit returns the LIMIT argument; SQLite treats -1 as no limit.
func (p Page) SQLLimit() int {
	if p.Limit <= 0 {
		return -1
	}
	return p.Limit
}
