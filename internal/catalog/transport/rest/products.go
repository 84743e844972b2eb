package rest

import (
	"net/http"

	"github.com/abgdnv/observatory/internal/catalog/mutation"
	"github.com/abgdnv/observatory/internal/catalog/query"
	"github.com/abgdnv/observatory/pkg/web"
)

// ListProducts answers one page of products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	mLogger := h.requestLogger(r)
	params, err := h.listParams(r, query.EntitySortFields, query.DefaultEntitySort)
	if err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to list products",
		"start", params.Start, "count", params.Count, "status", params.Status, "sort", params.Sort.String())

	page, err := h.products.List(r.Context(), params)
	if err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product list", "total", page.Total, "count", len(page.Products))
	web.RespondJSON(w, mLogger, http.StatusOK, page)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.requestLogger(r)
	var replace mutation.ProductReplace
	if err := decodeBody(r, &replace); err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}

	created, err := h.products.Create(r.Context(), replace)
	if err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "Name", created.Name)
	web.RespondJSON(w, mLogger, http.StatusOK, created)
}

func (h *Handler) FindProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.requestLogger(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	found, err := h.products.FindByID(r.Context(), id)
	if err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// ReplaceProduct overwrites every field. Omitted fields are reset.
func (h *Handler) ReplaceProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.requestLogger(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var replace mutation.ProductReplace
	if err := decodeBody(r, &replace); err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}

	updated, err := h.products.Replace(r.Context(), id, replace)
	if err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Product replaced successfully", "ID", updated.ID)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// MergeProduct changes only the fields present in the body.
func (h *Handler) MergeProduct(w http.ResponseWriter, r *http.Request) {
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
	patch, err := mutation.NewProductPatch(raw)
	if err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}

	updated, err := h.products.Merge(r.Context(), id, patch)
	if err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Product patched successfully", "ID", updated.ID, "fields", patch.Keys())
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

func (h *Handler) WithdrawProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.requestLogger(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	if err := h.products.Withdraw(r.Context(), identity(r), id); err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Product withdrawn successfully", "ID", id)
	web.RespondOK(w, mLogger)
}
