// Package query implements listing rules shared by products, shops and prices:
// pagination, the status filter, sort specifications and the price filters.
package query

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	catalogerrors "github.com/abgdnv/observatory/internal/catalog/errors"
)

const (
	DefaultStart    int64 = 0
	DefaultCount    int64 = 20
	DefaultMaxCount int64 = 1000
)

// DateLayout is the wire format of calendar dates.
const DateLayout = time.DateOnly

// Status selects rows by their soft-delete flag.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusWithdrawn Status = "WITHDRAWN"
	StatusAll       Status = "ALL"
)

// ParseStatus parses a status filter. An empty value means ACTIVE.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToUpper(strings.TrimSpace(raw))); s {
	case "":
		return StatusActive, nil
	case StatusActive, StatusWithdrawn, StatusAll:
		return s, nil
	default:
		return "", catalogerrors.NewValidationError("status", fmt.Sprintf("must be one of ACTIVE, WITHDRAWN, ALL: %s", raw))
	}
}

// Matches reports whether a row with the given withdrawn flag passes the filter.
func (s Status) Matches(withdrawn bool) bool {
	switch s {
	case StatusWithdrawn:
		return withdrawn
	case StatusAll:
		return true
	default:
		return !withdrawn
	}
}

// Withdrawn is the value the withdrawn flag must have, nil when any value passes.
func (s Status) Withdrawn() *bool {
	var withdrawn bool
	switch s {
	case StatusAll:
		return nil
	case StatusWithdrawn:
		withdrawn = true
	}
	return &withdrawn
}

type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// Sort orders a listing by one field. Rows with equal values keep id ascending order.
type Sort struct {
	Field     string
	Direction Direction
}

func (s Sort) Desc() bool {
	return s.Direction == Desc
}

func (s Sort) String() string {
	return s.Field + "|" + string(s.Direction)
}

// ParseSort parses a "field|ASC" or "field|DESC" specification. An empty value yields def.
func ParseSort(raw string, allowed []string, def Sort) (Sort, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	field, dir, found := strings.Cut(raw, "|")
	if !found {
		return Sort{}, catalogerrors.NewValidationError("sort", fmt.Sprintf("expected field|ASC or field|DESC: %s", raw))
	}
	if !slices.Contains(allowed, field) {
		return Sort{}, catalogerrors.NewValidationError("sort",
			fmt.Sprintf("unknown sort field %s, expected one of %s", field, strings.Join(allowed, ", ")))
	}
	direction := Direction(strings.ToUpper(dir))
	if direction != Asc && direction != Desc {
		return Sort{}, catalogerrors.NewValidationError("sort", fmt.Sprintf("unknown sort direction: %s", dir))
	}
	return Sort{Field: field, Direction: direction}, nil
}

// Pagination is the requested window of a listing.
type Pagination struct {
	Start int64
	Count int64
}

// NewPagination checks start >= 0 and 0 < count <= maxCount.
func NewPagination(start, count, maxCount int64) (Pagination, error) {
	vErr := &catalogerrors.ValidationError{}
	if start < 0 {
		vErr.Add("start", "must be greater than or equal to 0")
	}
	if count <= 0 {
		vErr.Add("count", "must be greater than 0")
	} else if maxCount > 0 && count > maxCount {
		vErr.Add("count", fmt.Sprintf("must not exceed %d", maxCount))
	}
	if err := vErr.OrNil(); err != nil {
		return Pagination{}, err
	}
	return Pagination{Start: start, Count: count}, nil
}

// Params is a validated product or shop listing request.
type Params struct {
	Pagination
	Status Status
	Sort   Sort
}

// Page is one slice of a listing. Count echoes the requested size, Total counts every
// row that passed the filters.
type Page[T any] struct {
	Start int64
	Count int64
	Total int64
	Items []T
}

// Pipeline evaluates a listing in memory in the order status, filters, total, sort, slice.
type Pipeline[T any] struct {
	Status  func(T) bool
	Filters []func(T) bool
	Compare func(a, b T) int
}

func (p Pipeline[T]) Run(items []T, page Pagination) Page[T] {
	matched := make([]T, 0, len(items))
	for _, item := range items {
		if p.keep(item) {
			matched = append(matched, item)
		}
	}
	total := int64(len(matched))
	if p.Compare != nil {
		slices.SortStableFunc(matched, p.Compare)
	}

	result := Page[T]{Start: page.Start, Count: page.Count, Total: total, Items: []T{}}
	if page.Start >= total {
		return result
	}
	end := min(page.Start+page.Count, total)
	result.Items = matched[page.Start:end]
	return result
}

func (p Pipeline[T]) keep(item T) bool {
	if p.Status != nil && !p.Status(item) {
		return false
	}
	for _, filter := range p.Filters {
		if !filter(item) {
			return false
		}
	}
	return true
}

// Comparator builds the ordering for s from per-field comparisons. Ties fall back to id ascending.
func Comparator[T any](s Sort, fields map[string]func(a, b T) int, id func(T) int64) func(a, b T) int {
	byField := fields[s.Field]
	return func(a, b T) int {
		if byField != nil {
			c := byField(a, b)
			if s.Desc() {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		if s.Field == "id" && s.Desc() {
			return cmp.Compare(id(b), id(a))
		}
		return cmp.Compare(id(a), id(b))
	}
}
