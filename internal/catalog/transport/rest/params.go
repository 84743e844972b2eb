package rest

import (
	"net/http"
	"slices"

	catalogerrors "github.com/abgdnv/observatory/internal/catalog/errors"
	"github.com/abgdnv/observatory/internal/catalog/query"
	"github.com/abgdnv/observatory/pkg/web"
)

// listParams reads start, count, status and sort. All failures are reported together.
func (h *Handler) listParams(r *http.Request, sortFields []string, defaultSort query.Sort) (query.Params, error) {
	vErr := &catalogerrors.ValidationError{}
	q := r.URL.Query()

	start, err := web.ParseQueryInt(r, "start", query.DefaultStart, web.Gte(0))
	if err != nil {
		vErr.Add("start", err.Error())
	}
	count, err := web.ParseQueryInt(r, "count", query.DefaultCount, web.Gt(0))
	if err != nil {
		vErr.Add("count", err.Error())
	}
	var page query.Pagination
	if len(vErr.Fields) == 0 {
		if page, err = query.NewPagination(start, count, h.maxCount); err != nil {
			collect(vErr, err)
		}
	}

	status, err := query.ParseStatus(q.Get("status"))
	if err != nil {
		collect(vErr, err)
	}
	sort, err := query.ParseSort(q.Get("sort"), sortFields, defaultSort)
	if err != nil {
		collect(vErr, err)
	}

	if err := vErr.OrNil(); err != nil {
		return query.Params{}, err
	}
	return query.Params{Pagination: page, Status: status, Sort: sort}, nil
}

// priceParams reads the listing parameters and the filters of GET /prices.
func (h *Handler) priceParams(r *http.Request) (query.PriceParams, error) {
	vErr := &catalogerrors.ValidationError{}
	q := r.URL.Query()

	params, err := h.listParams(r, query.PriceSortFields, query.DefaultPriceSort)
	if err != nil {
		collect(vErr, err)
	}
	products, err := web.ParseQueryIDs(r, "products")
	if err != nil {
		vErr.Add("products", err.Error())
	}
	shops, err := web.ParseQueryIDs(r, "shops")
	if err != nil {
		vErr.Add("shops", err.Error())
	}
	tags := slices.Concat(q["tags"], q["tags[]"])
	filter, err := query.NewPriceFilter(products, shops, q.Get("dateFrom"), q.Get("dateTo"), tags)
	if err != nil {
		collect(vErr, err)
	}

	if err := vErr.OrNil(); err != nil {
		return query.PriceParams{}, err
	}
	return query.PriceParams{Params: params, Filter: filter}, nil
}

// collect merges the fields of a ValidationError into vErr.
func collect(vErr *catalogerrors.ValidationError, err error) {
	fields, ok := catalogerrors.AsValidation(err)
	if !ok {
		vErr.Add("query", err.Error())
		return
	}
	for field, message := range fields.Fields {
		vErr.Add(field, message)
	}
}
