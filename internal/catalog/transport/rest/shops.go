package rest

import (
	"net/http"

	"github.com/abgdnv/observatory/internal/catalog/mutation"
	"github.com/abgdnv/observatory/internal/catalog/query"
	"github.com/abgdnv/observatory/pkg/web"
)

func (h *Handler) ListShops(w http.ResponseWriter, r *http.Request) {
	mLogger := h.requestLogger(r)
	params, err := h.listParams(r, query.EntitySortFields, query.DefaultEntitySort)
	if err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to list shops",
		"start", params.Start, "count", params.Count, "status", params.Status, "sort", params.Sort.String())

	page, err := h.shops.List(r.Context(), params)
	if err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved shop list", "total", page.Total, "count", len(page.Shops))
	web.RespondJSON(w, mLogger, http.StatusOK, page)
}

func (h *Handler) CreateShop(w http.ResponseWriter, r *http.Request) {
	mLogger := h.requestLogger(r)
	var replace mutation.ShopReplace
	if err := decodeBody(r, &replace); err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}

	created, err := h.shops.Create(r.Context(), replace)
	if err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Shop created successfully", "ID", created.ID, "Name", created.Name)
	web.RespondJSON(w, mLogger, http.StatusOK, created)
}

func (h *Handler) FindShop(w http.ResponseWriter, r *http.Request) {
	mLogger := h.requestLogger(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	found, err := h.shops.FindByID(r.Context(), id)
	if err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// ReplaceShop requires both coordinates; address and tags are reset when omitted.
func (h *Handler) ReplaceShop(w http.ResponseWriter, r *http.Request) {
	mLogger := h.requestLogger(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var replace mutation.ShopReplace
	if err := decodeBody(r, &replace); err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}

	updated, err := h.shops.Replace(r.Context(), id, replace)
	if err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Shop replaced successfully", "ID", updated.ID)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

func (h *Handler) MergeShop(w http.ResponseWriter, r *http.Request) {
	mLogger := h.requestLogger(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	raw, err := readBody(r)
	if err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}
	patch, err := mutation.NewShopPatch(raw)
	if err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}

	updated, err := h.shops.Merge(r.Context(), id, patch)
	if err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Shop patched successfully", "ID", updated.ID, "fields", patch.Keys())
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

func (h *Handler) WithdrawShop(w http.ResponseWriter, r *http.Request) {
	mLogger := h.requestLogger(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	if err := h.shops.Withdraw(r.Context(), identity(r), id); err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Shop withdrawn successfully", "ID", id)
	web.RespondOK(w, mLogger)
}
