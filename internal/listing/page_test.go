package listing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestParsePage(t *testing.T) {
	tests := []struct {
		name      string
		page      string
		limit     string
		max       int
		wantPage  int
		wantLimit int
		wantSkip  int
	}{
		{"defaults when absent", "", "", 100, 1, 10, 0},
		{"garbage falls back", "abc", "x1", 100, 1, 10, 0},
		{"non-positive falls back", "0", "-5", 100, 1, 10, 0},
		{"explicit values", "3", "20", 100, 3, 20, 40},
		{"limit clamped", "2", "5000", 100, 2, 100, 100},
		{"zero cap uses package max", "1", "500", 0, 1, MaxLimit, 0},
		{"whitespace tolerated", " 2 ", " 15 ", 100, 2, 15, 15},
		{"max int page capped", "9223372036854775807", "10", 100, math.MaxInt / 10, 10, (math.MaxInt/10 - 1) * 10},
		{"max int page with max limit", "9223372036854775807", "5000", 100, math.MaxInt / 100, 100, (math.MaxInt/100 - 1) * 100},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := ParsePage(tc.page, tc.limit, tc.max)
			assert.Equal(t, tc.wantPage, p.Page)
			assert.Equal(t, tc.wantLimit, p.Limit)
			assert.Equal(t, tc.wantSkip, p.Skip())
			assert.GreaterOrEqual(t, p.Skip(), 0)
		})
	}
}

func TestNewEnvelope(t *testing.T) {
	tests := []struct {
		name  string
		page  Page
		total int
		want  Envelope
	}{
		{
			name:  "first of three",
			page:  Page{Page: 1, Limit: 10},
			total: 25,
			want:  Envelope{Current: 1, Limit: 10, Items: 25, Pages: 3, Prev: nil, Next: intPtr(2)},
		},
		{
			name:  "last of three",
			page:  Page{Page: 3, Limit: 10},
			total: 25,
			want:  Envelope{Current: 3, Limit: 10, Items: 25, Pages: 3, Prev: intPtr(2), Next: nil},
		},
		{
			name:  "middle",
			page:  Page{Page: 2, Limit: 10},
			total: 25,
			want:  Envelope{Current: 2, Limit: 10, Items: 25, Pages: 3, Prev: intPtr(1), Next: intPtr(3)},
		},
		{
			name:  "empty result",
			page:  Page{Page: 1, Limit: 10},
			total: 0,
			want:  Envelope{Current: 1, Limit: 10, Items: 0, Pages: 0},
		},
		{
			name:  "page past the end",
			page:  Page{Page: 7, Limit: 10},
			total: 25,
			want:  Envelope{Current: 7, Limit: 10, Items: 25, Pages: 3, Prev: intPtr(6), Next: nil},
		},
		{
			name:  "exact multiple",
			page:  Page{Page: 2, Limit: 10},
			total: 20,
			want:  Envelope{Current: 2, Limit: 10, Items: 20, Pages: 2, Prev: intPtr(1), Next: nil},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NewEnvelope(tc.page, tc.total))
		})
	}
}

func TestNewResultNeverReturnsNilData(t *testing.T) {
	res := NewResult[string](nil, Page{Page: 1, Limit: 10}, 0)
	require.NotNil(t, res.Data)
	assert.Empty(t, res.Data)
	assert.Equal(t, 0, res.Pagination.Pages)
}
