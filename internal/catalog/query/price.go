package query

import (
	"slices"
	"strings"
	"time"

	catalogerrors "github.com/abgdnv/observatory/internal/catalog/errors"
)

var (
	EntitySortFields = []string{"id", "name"}
	PriceSortFields  = []string{"id", "price", "date"}

	DefaultEntitySort = Sort{Field: "id", Direction: Desc}
	DefaultPriceSort  = Sort{Field: "price", Direction: Asc}
)

// PriceFilter restricts a price listing. Empty sets and nil dates do not restrict.
type PriceFilter struct {
	Products []int64
	Shops    []int64
	DateFrom *time.Time
	DateTo   *time.Time
	Tags     []string
}

// PriceParams is a validated price listing request.
type PriceParams struct {
	Params
	Filter PriceFilter
}

// ParseDate parses a YYYY-MM-DD calendar date into UTC midnight.
func ParseDate(raw string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(raw), time.UTC)
}

// NewPriceFilter validates the date range: both bounds or none, dateFrom not after dateTo.
func NewPriceFilter(products, shops []int64, dateFrom, dateTo string, tags []string) (PriceFilter, error) {
	filter := PriceFilter{Products: products, Shops: shops}
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" && !slices.Contains(filter.Tags, tag) {
			filter.Tags = append(filter.Tags, tag)
		}
	}

	if dateFrom == "" && dateTo == "" {
		return filter, nil
	}
	vErr := &catalogerrors.ValidationError{}
	if dateFrom == "" {
		vErr.Add("dateFrom", "required when dateTo is set")
	}
	if dateTo == "" {
		vErr.Add("dateTo", "required when dateFrom is set")
	}
	if err := vErr.OrNil(); err != nil {
		return PriceFilter{}, err
	}

	from, err := ParseDate(dateFrom)
	if err != nil {
		vErr.Add("dateFrom", "expected YYYY-MM-DD: "+dateFrom)
	}
	to, err := ParseDate(dateTo)
	if err != nil {
		vErr.Add("dateTo", "expected YYYY-MM-DD: "+dateTo)
	}
	if err := vErr.OrNil(); err != nil {
		return PriceFilter{}, err
	}
	if from.After(to) {
		return PriceFilter{}, catalogerrors.NewValidationError("dateFrom", "must not be after dateTo")
	}
	filter.DateFrom, filter.DateTo = &from, &to
	return filter, nil
}

// MatchesDate reports whether date lies in the inclusive range of the filter.
func (f PriceFilter) MatchesDate(date time.Time) bool {
	if f.DateFrom != nil && date.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && date.After(*f.DateTo) {
		return false
	}
	return true
}

// MatchesIDs reports whether the product and shop ids pass the id sets.
func (f PriceFilter) MatchesIDs(productID, shopID int64) bool {
	if len(f.Products) > 0 && !slices.Contains(f.Products, productID) {
		return false
	}
	if len(f.Shops) > 0 && !slices.Contains(f.Shops, shopID) {
		return false
	}
	return true
}

// MatchesTags reports whether any filter tag is carried by the product or the shop.
func (f PriceFilter) MatchesTags(productTags, shopTags []string) bool {
	if len(f.Tags) == 0 {
		return true
	}
	for _, tag := range f.Tags {
		if slices.Contains(productTags, tag) || slices.Contains(shopTags, tag) {
			return true
		}
	}
	return false
}
