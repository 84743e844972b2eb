// Package service provides the catalog business logic: the auth gate and the
// product, shop and price resources built on the store, query and mutation packages.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abgdnv/observatory/pkg/messaging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
)

const meterName = "observatory"

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID   int64
	Username string
	IsAdmin  bool
	Token    string
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFrom returns the identity stored by WithIdentity.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok
}

func newCounter(name, description string) metric.Int64Counter {
	counter, err := otel.Meter(meterName).Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		panic(fmt.Sprintf("failed to create %s counter: %v", name, err))
	}
	return counter
}

// eventSink publishes after a successful commit. A failed publish is logged, never returned.
type eventSink struct {
	publisher messaging.Publisher
	logger    *slog.Logger
}

func (e eventSink) publish(ctx context.Context, event messaging.Event) {
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.logger.ErrorContext(ctx, "Failed to publish event", "subject", event.Subject(), "error", err)
	}
}

func carrier(ctx context.Context) map[string]string {
	c := make(propagation.MapCarrier)
	otel.GetTextMapPropagator().Inject(ctx, c)
	return c
}
