package rest

import (
	"net/http"

	"github.com/abgdnv/observatory/internal/catalog/service"
	"github.com/abgdnv/observatory/pkg/web"
)

// Register creates a user. The new user has no session until it logs in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	mLogger := h.requestLogger(r)
	var registerDto service.RegisterDto
	if err := decodeBody(r, &registerDto); err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to register user", "username", registerDto.Username)

	user, err := h.auth.Register(r.Context(), registerDto)
	if err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, user)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	mLogger := h.requestLogger(r)
	var loginDto service.LoginDto
	if err := decodeBody(r, &loginDto); err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}

	token, err := h.auth.Login(r.Context(), loginDto)
	if err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "User logged in", "username", loginDto.Username)
	web.RespondJSON(w, mLogger, http.StatusOK, token)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	mLogger := h.requestLogger(r)
	if err := h.auth.Logout(r.Context(), identity(r)); err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "User logged out")
	web.RespondOK(w, mLogger)
}

// FindUser returns the profile of a user. Admin only.
func (h *Handler) FindUser(w http.ResponseWriter, r *http.Request) {
	mLogger := h.requestLogger(r)
	user, err := h.auth.FindUser(r.Context(), r.PathValue("username"))
	if err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, user)
}
