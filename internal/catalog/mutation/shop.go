package mutation

import (
	"encoding/json"
	"strings"

	"github.com/abgdnv/observatory/internal/catalog/store/db"
)

// ShopMutation computes the fields to store for a shop from its current state.
type ShopMutation interface {
	Apply(current db.Shop) (db.ShopFields, error)
}

// ShopReplace is a full shop body. Coordinates are required, the other fields are optional.
type ShopReplace struct {
	Name    string   `json:"name" validate:"required,max=255"`
	Address string   `json:"address" validate:"max=1024"`
	Lat     *float64 `json:"lat" validate:"required,latitude"`
	Lng     *float64 `json:"lng" validate:"required,longitude"`
	Tags    []string `json:"tags" validate:"max=32,dive,required,max=64"`
}

// Fields validates r and converts it to the stored columns.
func (r ShopReplace) Fields() (db.ShopFields, error) {
	r.Name = strings.TrimSpace(r.Name)
	r.Tags = normalizeTags(r.Tags)
	if err := Struct(r); err != nil {
		return db.ShopFields{}, err
	}
	return db.ShopFields{
		Name:    r.Name,
		Address: r.Address,
		Lat:     *r.Lat,
		Lng:     *r.Lng,
		Tags:    r.Tags,
	}, nil
}

// Apply ignores the current shop.
func (r ShopReplace) Apply(_ db.Shop) (db.ShopFields, error) {
	return r.Fields()
}

var shopSetters = map[string]setter[ShopReplace]{
	"name":    field(func(r *ShopReplace) *string { return &r.Name }),
	"address": field(func(r *ShopReplace) *string { return &r.Address }),
	"lat":     field(func(r *ShopReplace) **float64 { return &r.Lat }),
	"lng":     field(func(r *ShopReplace) **float64 { return &r.Lng }),
	"tags":    field(func(r *ShopReplace) *[]string { return &r.Tags }),
}

// ShopPatch holds the keys present in a PATCH body.
type ShopPatch struct {
	keys        []string
	assignments []func(*ShopReplace)
}

// NewShopPatch decodes a PATCH body. It fails on an empty body, unknown keys and
// values of the wrong type.
func NewShopPatch(raw map[string]json.RawMessage) (ShopPatch, error) {
	keys, assignments, err := presence(raw, shopSetters)
	if err != nil {
		return ShopPatch{}, err
	}
	return ShopPatch{keys: keys, assignments: assignments}, nil
}

// Keys lists the fields the patch touches, sorted.
func (p ShopPatch) Keys() []string {
	return p.keys
}

// Apply overlays the present keys on current and validates the merged shop.
func (p ShopPatch) Apply(current db.Shop) (db.ShopFields, error) {
	lat, lng := current.Lat, current.Lng
	merged := ShopReplace{
		Name:    current.Name,
		Address: current.Address,
		Lat:     &lat,
		Lng:     &lng,
		Tags:    current.Tags,
	}
	for _, assign := range p.assignments {
		assign(&merged)
	}
	return merged.Fields()
}
