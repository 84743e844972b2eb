// Package rest provides the HTTP handlers of the Observatory API.
package rest

import (
	"errors"
	"log/slog"
	"net/http"

	catalogerrors "github.com/abgdnv/observatory/internal/catalog/errors"
	"github.com/abgdnv/observatory/internal/catalog/query"
	"github.com/abgdnv/observatory/internal/catalog/service"
	"github.com/abgdnv/observatory/pkg/web"
	"github.com/go-chi/chi/v5"
)

// BasePath prefixes every API route.
const BasePath = "/observatory/api"

type Handler struct {
	auth     service.AuthService
	products service.ProductService
	shops    service.ShopService
	prices   service.PriceService
	maxCount int64
	logger   *slog.Logger
}

// NewHandler creates a new instance of Handler with the provided services.
// maxCount bounds the count parameter of listings; zero selects query.DefaultMaxCount.
func NewHandler(
	auth service.AuthService,
	products service.ProductService,
	shops service.ShopService,
	prices service.PriceService,
	maxCount int64,
	logger *slog.Logger,
) *Handler {
	if maxCount <= 0 {
		maxCount = query.DefaultMaxCount
	}
	return &Handler{
		auth:     auth,
		products: products,
		shops:    shops,
		prices:   prices,
		maxCount: maxCount,
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes of the API under BasePath.
// Everything except register and login requires a session token.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route(BasePath, func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate)

			r.Post("/logout", h.Logout)
			r.With(h.RequireAdmin).Get("/users/{username}", h.FindUser)

			r.Route("/products", func(r chi.Router) {
				r.Get("/", h.ListProducts)
				r.Post("/", h.CreateProduct)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.FindProduct)
					r.Put("/", h.ReplaceProduct)
					r.Patch("/", h.MergeProduct)
					r.Delete("/", h.WithdrawProduct)
				})
			})

			r.Route("/shops", func(r chi.Router) {
				r.Get("/", h.ListShops)
				r.Post("/", h.CreateShop)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.FindShop)
					r.Put("/", h.ReplaceShop)
					r.Patch("/", h.MergeShop)
					r.Delete("/", h.WithdrawShop)
				})
			})

			r.Route("/prices", func(r chi.Router) {
				r.Get("/", h.ListPrices)
				r.Post("/", h.SubmitPrices)
			})
		})
	})
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// respondError translates err to its fixed status code. Errors outside the
// catalog taxonomy are logged and answered with a generic 500.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	ctx := r.Context()
	if vErr, ok := catalogerrors.AsValidation(err); ok {
		logger.WarnContext(ctx, "Validation errors occurred", "errors", vErr.Fields)
		web.RespondValidation(w, logger, vErr.Fields)
		return
	}

	var (
		status int
		kind   web.ErrorKind
	)
	switch {
	case errors.Is(err, catalogerrors.ErrInvalidCredentials):
		status, kind = http.StatusUnauthorized, web.KindInvalidCredentials
	case errors.Is(err, catalogerrors.ErrUnauthorized):
		status, kind = http.StatusForbidden, web.KindUnauthorized
	case errors.Is(err, catalogerrors.ErrForbidden):
		status, kind = http.StatusForbidden, web.KindForbidden
	case errors.Is(err, catalogerrors.ErrProductNotFound),
		errors.Is(err, catalogerrors.ErrShopNotFound),
		errors.Is(err, catalogerrors.ErrUserNotFound):
		status, kind = http.StatusNotFound, web.KindNotFound
	case errors.Is(err, catalogerrors.ErrConflict):
		status, kind = http.StatusConflict, web.KindConflict
	default:
		logger.ErrorContext(ctx, "Request failed", "error", err)
		web.RespondError(w, logger, http.StatusInternalServerError, web.KindInternal, "Internal server error")
		return
	}
	logger.WarnContext(ctx, "Request rejected", "kind", kind, "error", err)
	web.RespondError(w, logger, status, kind, sentinelMessage(err))
}

// sentinelMessage strips wrapped causes so that verification details never reach the client.
func sentinelMessage(err error) string {
	for _, sentinel := range []error{
		catalogerrors.ErrInvalidCredentials,
		catalogerrors.ErrUnauthorized,
		catalogerrors.ErrForbidden,
		catalogerrors.ErrProductNotFound,
		catalogerrors.ErrShopNotFound,
		catalogerrors.ErrUserNotFound,
		catalogerrors.ErrConflict,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

// requestLogger creates a logger carrying the method and path of r.
// The request id and the caller are added by the context handler of the logger.
func (h *Handler) requestLogger(r *http.Request) *slog.Logger {
	return h.logger.With("method", r.Method, "path", r.URL.Path)
}
