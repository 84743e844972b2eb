package mutation

import (
	"encoding/json"
	"strings"

	"github.com/abgdnv/observatory/internal/catalog/store/db"
)

// ProductMutation computes the fields to store for a product from its current state.
type ProductMutation interface {
	Apply(current db.Product) (db.ProductFields, error)
}

// ProductReplace is a full product body. Omitted fields keep their zero value.
type ProductReplace struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Description string   `json:"description" validate:"max=4096"`
	Category    string   `json:"category" validate:"max=255"`
	Tags        []string `json:"tags" validate:"max=32,dive,required,max=64"`
}

// Fields validates r and converts it to the stored columns.
func (r ProductReplace) Fields() (db.ProductFields, error) {
	r.Name = strings.TrimSpace(r.Name)
	r.Tags = normalizeTags(r.Tags)
	if err := Struct(r); err != nil {
		return db.ProductFields{}, err
	}
	return db.ProductFields{
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		Tags:        r.Tags,
	}, nil
}

// Apply ignores the current product.
func (r ProductReplace) Apply(_ db.Product) (db.ProductFields, error) {
	return r.Fields()
}

var productSetters = map[string]setter[ProductReplace]{
	"name":        field(func(r *ProductReplace) *string { return &r.Name }),
	"description": field(func(r *ProductReplace) *string { return &r.Description }),
	"category":    field(func(r *ProductReplace) *string { return &r.Category }),
	"tags":        field(func(r *ProductReplace) *[]string { return &r.Tags }),
}

// ProductPatch holds the keys present in a PATCH body.
type ProductPatch struct {
	keys        []string
	assignments []func(*ProductReplace)
}

// NewProductPatch decodes a PATCH body. It fails on an empty body, unknown keys and
// values of the wrong type.
func NewProductPatch(raw map[string]json.RawMessage) (ProductPatch, error) {
	keys, assignments, err := presence(raw, productSetters)
	if err != nil {
		return ProductPatch{}, err
	}
	return ProductPatch{keys: keys, assignments: assignments}, nil
}

// Keys lists the fields the patch touches, sorted.
func (p ProductPatch) Keys() []string {
	return p.keys
}

// Apply overlays the present keys on current and validates the merged product.
func (p ProductPatch) Apply(current db.Product) (db.ProductFields, error) {
	merged := ProductReplace{
		Name:        current.Name,
		Description: current.Description,
		Category:    current.Category,
		Tags:        current.Tags,
	}
	for _, assign := range p.assignments {
		assign(&merged)
	}
	return merged.Fields()
}
