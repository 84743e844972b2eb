package mutation

import (
	"encoding/json"
	"testing"

	catalogerrors "github.com/abgdnv/observatory/internal/catalog/errors"
	"github.com/abgdnv/observatory/internal/catalog/store/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawBody(t *testing.T, body string) map[string]json.RawMessage {
	t.Helper()
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(body), &raw))
	return raw
}

func requireFields(t *testing.T, err error, want map[string]string) {
	t.Helper()
	vErr, ok := catalogerrors.AsValidation(err)
	require.True(t, ok, "expected ValidationError, got %v", err)
	assert.Equal(t, want, vErr.Fields)
}

var storedProduct = db.Product{
	ID:          1,
	Name:        "Milk",
	Description: "Fresh milk",
	Category:    "Dairy",
	Tags:        []string{"milk", "fresh"},
}

func TestProductReplace_Apply(t *testing.T) {
	testCases := []struct {
		name       string
		replace    ProductReplace
		want       db.ProductFields
		wantFields map[string]string
	}{
		{
			name:    "omitted fields reset to defaults",
			replace: ProductReplace{Name: "Butter"},
			want:    db.ProductFields{Name: "Butter", Tags: []string{}},
		},
		{
			name:    "full body with duplicate tags",
			replace: ProductReplace{Name: " Butter ", Description: "d", Category: "c", Tags: []string{"a", "a ", "b"}},
			want:    db.ProductFields{Name: "Butter", Description: "d", Category: "c", Tags: []string{"a", "b"}},
		},
		{
			name:       "missing name",
			replace:    ProductReplace{Description: "d"},
			wantFields: map[string]string{"name": "failed on rule: required"},
		},
		{
			name:       "blank tag",
			replace:    ProductReplace{Name: "Butter", Tags: []string{"ok", ""}},
			wantFields: map[string]string{"tags[1]": "failed on rule: required"},
		},
		{
			name:       "whitespace only tag",
			replace:    ProductReplace{Name: "Butter", Tags: []string{" ", "x"}},
			wantFields: map[string]string{"tags[0]": "failed on rule: required"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			got, err := tc.replace.Apply(storedProduct)

			// then
			if tc.wantFields != nil {
				requireFields(t, err, tc.wantFields)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestProductPatch_Apply(t *testing.T) {
	testCases := []struct {
		name       string
		body       string
		want       db.ProductFields
		wantKeys   []string
		wantFields map[string]string
	}{
		{
			name:     "only present keys change",
			body:     `{"description": "Skimmed"}`,
			want:     db.ProductFields{Name: "Milk", Description: "Skimmed", Category: "Dairy", Tags: []string{"milk", "fresh"}},
			wantKeys: []string{"description"},
		},
		{
			name:     "null resets a field",
			body:     `{"category": null, "tags": ["x"]}`,
			want:     db.ProductFields{Name: "Milk", Description: "Fresh milk", Tags: []string{"x"}},
			wantKeys: []string{"category", "tags"},
		},
		{
			name:       "merged entity is validated",
			body:       `{"name": ""}`,
			wantKeys:   []string{"name"},
			wantFields: map[string]string{"name": "failed on rule: required"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			patch, err := NewProductPatch(rawBody(t, tc.body))
			require.NoError(t, err)
			assert.Equal(t, tc.wantKeys, patch.Keys())

			// when
			got, err := patch.Apply(storedProduct)

			// then
			if tc.wantFields != nil {
				requireFields(t, err, tc.wantFields)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewProductPatch_Rejects(t *testing.T) {
	testCases := []struct {
		name       string
		body       string
		wantFields map[string]string
	}{
		{name: "empty body", body: `{}`, wantFields: map[string]string{"body": "at least one field is required"}},
		{name: "unknown key", body: `{"colour": "red"}`, wantFields: map[string]string{"colour": "unknown field"}},
		{name: "read-only key", body: `{"withdrawn": true}`, wantFields: map[string]string{"withdrawn": "read-only field"}},
		{name: "wrong type", body: `{"name": 5, "tags": "a"}`, wantFields: map[string]string{"name": "invalid value type", "tags": "invalid value type"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewProductPatch(rawBody(t, tc.body))
			requireFields(t, err, tc.wantFields)
		})
	}
}

func TestProductPatch_DoesNotAlias(t *testing.T) {
	// given
	current := storedProduct
	current.Tags = []string{"milk"}
	patch, err := NewProductPatch(rawBody(t, `{"name": "Cream"}`))
	require.NoError(t, err)

	// when
	got, err := patch.Apply(current)
	require.NoError(t, err)
	got.Tags[0] = "changed"

	// then
	assert.Equal(t, []string{"milk"}, current.Tags)
}
