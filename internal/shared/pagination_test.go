package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLimitPaginationParams(t *testing.T) {
	cases := []struct {
		name string
		in   PageParams
		want PageParams
	}{
		{"in range untouched", PageParams{Page: 2, Limit: 50}, PageParams{Page: 2, Limit: 50}},
		{"negative page and oversized limit", PageParams{Page: -5, Limit: 1000}, PageParams{Page: 1, Limit: 100}},
		{"zero limit floors to one", PageParams{Page: 3, Limit: 0}, PageParams{Page: 3, Limit: 1}},
		{"zero page floors to one", PageParams{Page: 0, Limit: 10}, PageParams{Page: 1, Limit: 10}},
		{"limit at cap", PageParams{Page: 1, Limit: MaxPerPage}, PageParams{Page: 1, Limit: MaxPerPage}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, LimitPaginationParams(tc.in))
		})
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 35)
	require.Equal(t, 2, p.Page)
	require.Equal(t, 4, p.TotalPages)

	p = NewPagination(0, 0, 5)
	require.Equal(t, 1, p.Page)
	require.Equal(t, DefaultPerPage, p.PerPage)
	require.Equal(t, 1, p.TotalPages)

	p = NewPagination(1, 10, 0)
	require.Equal(t, 0, p.TotalPages)
}
