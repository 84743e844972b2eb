// Package events contains the catalog events exchanged over the message broker.
package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/observatory/pkg/messaging"
	"github.com/google/uuid"
)

// PriceSubmittedEvent is emitted once per POST /prices, listing every affected record.
type PriceSubmittedEvent struct {
	EventID     uuid.UUID         `json:"event_id"`
	Carrier     map[string]string `json:"carrier,omitempty"`
	Username    string            `json:"username"`
	Prices      []SubmittedPrice  `json:"prices"`
	SubmittedAt time.Time         `json:"submitted_at"`
}

type SubmittedPrice struct {
	ProductID int64   `json:"product_id"`
	ShopID    int64   `json:"shop_id"`
	Date      string  `json:"date"`
	Price     float64 `json:"price"`
}

func (e PriceSubmittedEvent) Subject() string {
	return messaging.PricesSubmittedSubject
}

func (e PriceSubmittedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

// EntityKind names the withdrawn resource.
type EntityKind string

const (
	KindProduct EntityKind = "product"
	KindShop    EntityKind = "shop"
)

// EntityWithdrawnEvent is emitted when a product or shop is soft deleted.
type EntityWithdrawnEvent struct {
	EventID     uuid.UUID         `json:"event_id"`
	Carrier     map[string]string `json:"carrier,omitempty"`
	Kind        EntityKind        `json:"kind"`
	ID          int64             `json:"id"`
	Username    string            `json:"username"`
	WithdrawnAt time.Time         `json:"withdrawn_at"`
}

func (e EntityWithdrawnEvent) Subject() string {
	if e.Kind == KindShop {
		return messaging.ShopsWithdrawnSubject
	}
	return messaging.ProductsWithdrawnSubject
}

func (e EntityWithdrawnEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

// MessageID is the broker deduplication id of the event.
func (e PriceSubmittedEvent) MessageID() uuid.UUID {
	return e.EventID
}

// MessageID is the broker deduplication id of the event.
func (e EntityWithdrawnEvent) MessageID() uuid.UUID {
	return e.EventID
}
