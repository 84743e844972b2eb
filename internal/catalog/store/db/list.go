package db

import (
	"fmt"
	"strings"
)

var productSortColumns = map[string]string{"id": "id", "name": "name"}
var shopSortColumns = map[string]string{"id": "id", "name": "name"}
var priceSortColumns = map[string]string{"id": "pr.id", "price": "pr.price", "date": "pr.date"}

// where accumulates AND-ed conditions. Each clause formats its own placeholder index.
type where struct {
	clauses []string
	args    []any
}

func (w *where) add(clause string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, fmt.Sprintf(clause, len(w.args)))
}

func (w *where) sql() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// page appends ORDER BY, LIMIT and OFFSET. Ties are broken by idColumn ascending.
func (w *where) page(columns map[string]string, field string, desc bool, idColumn string, offset, limit int64) (string, error) {
	column, ok := columns[field]
	if !ok {
		return "", fmt.Errorf("unsupported sort field %q", field)
	}
	direction := "ASC"
	if desc {
		direction = "DESC"
	}
	order := fmt.Sprintf(" ORDER BY %s %s", column, direction)
	if column != idColumn {
		order += ", " + idColumn + " ASC"
	}
	w.args = append(w.args, limit, offset)
	return order + fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(w.args)-1, len(w.args)), nil
}

func entityWhere(withdrawn *bool) *where {
	w := &where{}
	if withdrawn != nil {
		w.add("withdrawn = $%d", *withdrawn)
	}
	return w
}

func priceWhere(arg ListPricesParams) *where {
	w := &where{}
	if arg.Withdrawn != nil {
		w.add("(p.withdrawn OR s.withdrawn) = $%d", *arg.Withdrawn)
	}
	if len(arg.ProductIDs) > 0 {
		w.add("pr.product_id = ANY($%d)", arg.ProductIDs)
	}
	if len(arg.ShopIDs) > 0 {
		w.add("pr.shop_id = ANY($%d)", arg.ShopIDs)
	}
	if arg.DateFrom != nil {
		w.add("pr.date >= $%d", *arg.DateFrom)
	}
	if arg.DateTo != nil {
		w.add("pr.date <= $%d", *arg.DateTo)
	}
	if len(arg.Tags) > 0 {
		w.add("(p.tags && $%[1]d OR s.tags && $%[1]d)", arg.Tags)
	}
	return w
}
