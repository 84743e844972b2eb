// Package app wires the observatory API: stores, publisher, services and HTTP routes.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/observatory/internal/catalog/config"
	"github.com/abgdnv/observatory/internal/catalog/service"
	"github.com/abgdnv/observatory/internal/catalog/store"
	"github.com/abgdnv/observatory/internal/catalog/transport/rest"
	"github.com/abgdnv/observatory/pkg/auth"
	"github.com/abgdnv/observatory/pkg/messaging"
	"github.com/abgdnv/observatory/pkg/nats"
	"github.com/abgdnv/observatory/pkg/server"
	"github.com/jackc/pgx/v5/pgxpool"
)

const serviceName = "observatory"

type Dependencies struct {
	Auth           service.AuthService
	Products       service.ProductService
	Shops          service.ShopService
	Prices         service.PriceService
	MaxCount       int64
	MetricsPath    string
	MetricsHandler http.Handler
	Logger         *slog.Logger
}

// NewStore returns the entity store selected by the storage driver.
// dbPool is only used by the postgres driver.
func NewStore(dbPool *pgxpool.Pool, cfg *config.Config) store.Store {
	if cfg.Storage.Driver == config.DriverMemory {
		return store.NewMemoryStore()
	}
	return store.NewPgStore(dbPool, cfg.Storage.LockTimeout)
}

// NewPublisher connects to JetStream when NATS is enabled and guards the publisher with a circuit breaker.
// Otherwise events are only logged. The returned function releases the connection.
func NewPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (messaging.Publisher, func(), error) {
	if !cfg.Nats.Enabled {
		logger.Info("NATS is disabled, events are logged only")
		return messaging.NewLogPublisher(logger), func() {}, nil
	}
	nc, err := nats.NewClient(cfg.Nats.Url, cfg.Nats.Timeout)
	if err != nil {
		return nil, nil, err
	}
	js, err := nats.NewJetStreamContext(nc)
	if err != nil {
		return nil, nil, err
	}
	streamCtx, cancel := context.WithTimeout(ctx, cfg.Nats.Timeout)
	defer cancel()
	if _, err := nats.EnsureStream(streamCtx, js, cfg.Nats.Stream, cfg.Nats.Subjects); err != nil {
		nc.Close()
		return nil, nil, err
	}
	logger.Info("Connected to NATS", "url", nc.ConnectedUrlRedacted(), "stream", cfg.Nats.Stream)

	publisher := messaging.NewBreakerPublisher(nats.NewNatsPublisher(js), cfg.Resilience, logger)
	closeFn := func() {
		if err := nc.Drain(); err != nil {
			logger.Warn("Failed to drain NATS connection", "error", err)
		}
	}
	return publisher, closeFn, nil
}

func SetupDependencies(st store.Store, publisher messaging.Publisher, cfg *config.Config, logger *slog.Logger) *Dependencies {
	return &Dependencies{
		Auth:        service.NewAuthService(st, auth.NewHMACTokens(cfg.Token), logger),
		Products:    service.NewProductService(st, publisher, logger),
		Shops:       service.NewShopService(st, publisher, logger),
		Prices:      service.NewPriceService(st, publisher, logger),
		MaxCount:    cfg.Query.MaxCount,
		MetricsPath: cfg.Telemetry.Metrics.Path,
		Logger:      logger,
	}
}

// EnsureAdmin creates the configured superuser unless it exists.
func EnsureAdmin(ctx context.Context, deps *Dependencies, cfg *config.Config) error {
	if cfg.Admin.Username == "" {
		return nil
	}
	created, err := deps.Auth.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password)
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	if !created {
		deps.Logger.Info("Admin user already exists", "username", cfg.Admin.Username)
	}
	return nil
}

// SetupHttpHandler initializes the router with the API, health and metrics routes.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	handler := rest.NewHandler(deps.Auth, deps.Products, deps.Shops, deps.Prices, deps.MaxCount, deps.Logger)
	handler.RegisterRoutes(mux)
	mux.Get("/healthz", handler.HealthCheck)
	if deps.MetricsHandler != nil && deps.MetricsPath != "" {
		mux.Method(http.MethodGet, deps.MetricsPath, deps.MetricsHandler)
	}
	return mux
}

// SetupHttpServer creates and configures an HTTP server for the observatory API.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, serviceName, mux)
}
