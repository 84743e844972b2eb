package rest

import (
	"net/http"

	"github.com/abgdnv/observatory/internal/catalog/mutation"
	"github.com/abgdnv/observatory/pkg/web"
)

// ListPrices answers one page of prices, filtered by products, shops, dates and tags.
func (h *Handler) ListPrices(w http.ResponseWriter, r *http.Request) {
	mLogger := h.requestLogger(r)
	params, err := h.priceParams(r)
	if err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to list prices",
		"start", params.Start, "count", params.Count, "status", params.Status, "sort", params.Sort.String(),
		"products", params.Filter.Products, "shops", params.Filter.Shops)

	page, err := h.prices.List(r.Context(), params)
	if err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, page)
}

// SubmitPrices upserts the price of a product in a shop for a date or a range of dates.
func (h *Handler) SubmitPrices(w http.ResponseWriter, r *http.Request) {
	mLogger := h.requestLogger(r)
	var submission mutation.PriceSubmission
	if err := decodeBody(r, &submission); err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}

	submitted, err := h.prices.Submit(r.Context(), identity(r), submission)
	if err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Prices submitted successfully",
		"product_id", submission.ProductID, "shop_id", submission.ShopID, "count", len(submitted.Prices))
	web.RespondJSON(w, mLogger, http.StatusOK, submitted)
}
