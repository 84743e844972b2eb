package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQueryInt(t *testing.T) {
	testCases := []struct {
		name      string
		query     string
		validator ParamValidator
		want      int64
		wantErr   bool
	}{
		{name: "absent returns default", query: "", validator: Gte(0), want: 20},
		{name: "valid gte", query: "?count=0", validator: Gte(0), want: 0},
		{name: "valid gt", query: "?count=5", validator: Gt(0), want: 5},
		{name: "fails gt", query: "?count=0", validator: Gt(0), wantErr: true},
		{name: "not a number", query: "?count=ten", validator: Gt(0), wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			req := httptest.NewRequest(http.MethodGet, "/products"+tc.query, nil)
			// when
			got, err := ParseQueryInt(req, "count", 20, tc.validator)
			// then
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseQueryIDs(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/prices?products=1&products[]=2&shops=3", nil)

	products, err := ParseQueryIDs(req, "products")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, products)

	shops, err := ParseQueryIDs(req, "shops")
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, shops)

	none, err := ParseQueryIDs(req, "other")
	require.NoError(t, err)
	assert.Empty(t, none)

	bad := httptest.NewRequest(http.MethodGet, "/prices?products=x", nil)
	_, err = ParseQueryIDs(bad, "products")
	assert.Error(t, err)
}
