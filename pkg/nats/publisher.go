package nats

import (
	"context"
	"fmt"

	"github.com/abgdnv/observatory/pkg/messaging"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
)

type NatsPublisher struct {
	js jetstream.JetStream
}

func NewNatsPublisher(js jetstream.JetStream) *NatsPublisher {
	return &NatsPublisher{js: js}
}

// Publish sends the event payload to JetStream. Each call carries a unique
// message id so the server deduplicates retried publishes of the same call.
func (p *NatsPublisher) Publish(ctx context.Context, event messaging.Event) error {
	data, err := event.Payload()
	if err != nil {
		return fmt.Errorf("failed to get event payload: %w", err)
	}
	if _, err = p.js.Publish(ctx, event.Subject(), data, jetstream.WithMsgID(msgID(event))); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Subject(), err)
	}
	return nil
}

// identified is implemented by events that carry their own id.
type identified interface {
	MessageID() uuid.UUID
}

func msgID(event messaging.Event) string {
	if e, ok := event.(identified); ok {
		return e.MessageID().String()
	}
	return uuid.NewString()
}
