// Package subscriber consumes catalog events from JetStream and writes them to the audit log.
package subscriber

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/abgdnv/observatory/pkg/config"
	"github.com/abgdnv/observatory/pkg/messaging"
	"github.com/abgdnv/observatory/pkg/messaging/events"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/sync/errgroup"
)

// message is the part of jetstream.Msg the handler needs.
type message interface {
	Data() []byte
	Subject() string
	Ack() error
	Nak() error
}

// Start creates the durable consumer and runs the configured number of workers until ctx is done.
// ready is called once the consumer exists.
func Start(ctx context.Context, js jetstream.JetStream, subscriberCfg config.SubscriberConfig, ready func(), logger *slog.Logger) error {
	cfg := jetstream.ConsumerConfig{
		FilterSubject: subscriberCfg.Subject,
		Durable:       subscriberCfg.Consumer,
		AckPolicy:     jetstream.AckExplicitPolicy,
		MaxDeliver:    subscriberCfg.MaxDeliver,
	}
	consumer, err := js.CreateOrUpdateConsumer(ctx, subscriberCfg.Stream, cfg)
	if err != nil {
		return fmt.Errorf("failed to create consumer %s: %w", subscriberCfg.Consumer, err)
	}
	if ready != nil {
		ready()
	}
	g, gCtx := errgroup.WithContext(ctx)
	for i := 0; i < subscriberCfg.Workers; i++ {
		g.Go(func() error {
			return runWorker(gCtx, consumer, subscriberCfg, logger.With("worker", i))
		})
	}
	return g.Wait()
}

// runWorker fetches batches from the consumer and handles them one message at a time.
func runWorker(ctx context.Context, consumer jetstream.Consumer, cfg config.SubscriberConfig, logger *slog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			batch, err := consumer.Fetch(cfg.Batch, jetstream.FetchMaxWait(cfg.Timeout))
			if err != nil {
				if errors.Is(err, nats.ErrTimeout) {
					continue
				}
				logger.Error("failed to fetch messages", "error", err)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(cfg.Interval):
				}
				continue
			}
			for msg := range batch.Messages() {
				handleMessage(ctx, msg, logger)
			}
			if err := batch.Error(); err != nil && !errors.Is(err, nats.ErrTimeout) {
				logger.Warn("batch finished with error", "error", err)
			}
		}
	}
}

// handleMessage writes one audit record. Payloads that do not decode are redelivered.
func handleMessage(ctx context.Context, msg message, logger *slog.Logger) {
	if msg == nil {
		logger.Error("received nil message")
		return
	}
	if err := audit(ctx, msg.Subject(), msg.Data(), logger); err != nil {
		logger.Error("failed to audit message", "error", err, "subject", msg.Subject())
		if err := msg.Nak(); err != nil {
			logger.Error("failed to nack message", "error", err)
		}
		return
	}
	if err := msg.Ack(); err != nil {
		logger.Error("failed to ack message", "error", err)
	}
}

func audit(ctx context.Context, subject string, data []byte, logger *slog.Logger) error {
	switch subject {
	case messaging.PricesSubmittedSubject:
		var event events.PriceSubmittedEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return err
		}
		ctx = remoteContext(ctx, event.Carrier)
		for _, price := range event.Prices {
			logger.InfoContext(ctx, "price submitted",
				slog.String("event_id", event.EventID.String()),
				slog.String("username", event.Username),
				slog.Int64("product_id", price.ProductID),
				slog.Int64("shop_id", price.ShopID),
				slog.String("date", price.Date),
				slog.Float64("price", price.Price),
				slog.String("submitted_at", event.SubmittedAt.Format(time.RFC3339)))
		}
	case messaging.ProductsWithdrawnSubject, messaging.ShopsWithdrawnSubject:
		var event events.EntityWithdrawnEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return err
		}
		ctx = remoteContext(ctx, event.Carrier)
		logger.InfoContext(ctx, "entity withdrawn",
			slog.String("event_id", event.EventID.String()),
			slog.String("kind", string(event.Kind)),
			slog.Int64("id", event.ID),
			slog.String("username", event.Username),
			slog.String("withdrawn_at", event.WithdrawnAt.Format(time.RFC3339)))
	default:
		logger.WarnContext(ctx, "ignoring message with unknown subject", "subject", subject)
	}
	return nil
}

// remoteContext restores the trace context the publisher stored in the event.
func remoteContext(ctx context.Context, carrier map[string]string) context.Context {
	if len(carrier) == 0 {
		return ctx
	}
	return otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(carrier))
}
