package store

import "testing"

func TestPageOf(t *testing.T) {
	tests := []struct {
		page, limit int
		want        Page
		wantLimit   int
	}{
		{1, 10, Page{Offset: 0, Limit: 10}, 10},
		{2, 1, Page{Offset: 1, Limit: 1}, 1},
		{3, 25, Page{Offset: 50, Limit: 25}, 25},
		{0, 5, Page{Offset: 0, Limit: 5}, 5},
	}
	for _, tt := range tests {
		got := PageOf(tt.page, tt.limit)
		if got != tt.want {
			t.Errorf("PageOf(%d, %d) = %+v, want %+v", tt.page, tt.limit, got, tt.want)
		}
		if got.SQLLimit() != tt.wantLimit {
			t.Errorf("SQLLimit() = %d, want %d", got.SQLLimit(), tt.wantLimit)
		}
	}

	if Unbounded().SQLLimit() != -1 {
		t.Error("unbounded page should map to LIMIT -1")
	}
}
