// Package messaging defines the event publishing contract used by services.
package messaging

import (
	"context"
	"log/slog"
)

// Catalog event subjects.
const (
	PricesSubmittedSubject   = "catalog.prices.submitted"
	ProductsWithdrawnSubject = "catalog.products.withdrawn"
	ShopsWithdrawnSubject    = "catalog.shops.withdrawn"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// LogPublisher writes events to the log instead of a broker. Used when messaging is disabled.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With("component", "log-publisher")}
}

func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := event.Payload()
	if err != nil {
		return err
	}
	p.logger.DebugContext(ctx, "event published", "subject", event.Subject(), "payload", string(payload))
	return nil
}
