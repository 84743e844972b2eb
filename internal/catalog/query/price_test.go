package query

import (
	"testing"
	"time"

	catalogerrors "github.com/abgdnv/observatory/internal/catalog/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestNewPriceFilter(t *testing.T) {
	testCases := []struct {
		name       string
		from, to   string
		wantFields []string
	}{
		{name: "no range"},
		{name: "range", from: "2024-01-01", to: "2024-01-31"},
		{name: "single day", from: "2024-01-01", to: "2024-01-01"},
		{name: "only from", from: "2024-01-01", wantFields: []string{"dateTo"}},
		{name: "only to", to: "2024-01-01", wantFields: []string{"dateFrom"}},
		{name: "bad date", from: "01/01/2024", to: "2024-01-02", wantFields: []string{"dateFrom"}},
		{name: "reversed", from: "2024-02-01", to: "2024-01-01", wantFields: []string{"dateFrom"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			filter, err := NewPriceFilter([]int64{1}, nil, tc.from, tc.to, nil)
			if len(tc.wantFields) > 0 {
				vErr, ok := catalogerrors.AsValidation(err)
				require.True(t, ok)
				for _, field := range tc.wantFields {
					assert.Contains(t, vErr.Fields, field)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []int64{1}, filter.Products)
			if tc.from == "" {
				assert.Nil(t, filter.DateFrom)
				assert.Nil(t, filter.DateTo)
				return
			}
			assert.Equal(t, day(tc.from), *filter.DateFrom)
			assert.Equal(t, day(tc.to), *filter.DateTo)
		})
	}
}

func TestPriceFilter_Matches(t *testing.T) {
	// given
	filter, err := NewPriceFilter([]int64{1, 2}, []int64{7}, "2024-01-01", "2024-01-31", []string{" organic ", "organic", ""})
	require.NoError(t, err)

	// then
	assert.Equal(t, []string{"organic"}, filter.Tags)

	assert.True(t, filter.MatchesIDs(1, 7))
	assert.False(t, filter.MatchesIDs(3, 7))
	assert.False(t, filter.MatchesIDs(1, 8))

	assert.True(t, filter.MatchesDate(day("2024-01-01")))
	assert.True(t, filter.MatchesDate(day("2024-01-31")))
	assert.False(t, filter.MatchesDate(day("2023-12-31")))
	assert.False(t, filter.MatchesDate(day("2024-02-01")))

	assert.True(t, filter.MatchesTags([]string{"organic"}, nil))
	assert.True(t, filter.MatchesTags(nil, []string{"organic"}))
	assert.False(t, filter.MatchesTags([]string{"bio"}, []string{"market"}))
	assert.True(t, PriceFilter{}.MatchesTags(nil, nil))
}
