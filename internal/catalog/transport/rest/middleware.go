package rest

import (
	"log/slog"
	"net/http"

	catalogerrors "github.com/abgdnv/observatory/internal/catalog/errors"
	"github.com/abgdnv/observatory/internal/catalog/service"
	"github.com/abgdnv/observatory/pkg/logger"
	"github.com/abgdnv/observatory/pkg/web"
)

// Authenticate resolves the session token of the request and stores the caller in the context.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := h.auth.Authenticate(r.Context(), web.Token(r))
		if err != nil {
			h.respondError(w, r, h.requestLogger(r), err)
			return
		}
		ctx := service.WithIdentity(r.Context(), *identity)
		ctx = logger.AppendAttrs(ctx, slog.String("username", identity.Username))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects callers without admin privileges. It must run after Authenticate.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := service.IdentityFrom(r.Context())
		if !ok {
			h.respondError(w, r, h.requestLogger(r), catalogerrors.ErrUnauthorized)
			return
		}
		if err := h.auth.AuthorizeAdmin(identity); err != nil {
			h.respondError(w, r, h.requestLogger(r), err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// identity returns the caller stored by Authenticate.
func identity(r *http.Request) service.Identity {
	id, _ := service.IdentityFrom(r.Context())
	return id
}
