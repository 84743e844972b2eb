package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/abgdnv/observatory/internal/catalog/mutation"
	"github.com/abgdnv/observatory/internal/catalog/query"
	"github.com/abgdnv/observatory/internal/catalog/store"
	"github.com/abgdnv/observatory/pkg/messaging"
	"github.com/abgdnv/observatory/pkg/messaging/events"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ShopService defines the methods for managing shops. It follows ProductService.
type ShopService interface {
	List(ctx context.Context, params query.Params) (*ShopPage, error)
	Create(ctx context.Context, replace mutation.ShopReplace) (*ShopDto, error)
	FindByID(ctx context.Context, id int64) (*ShopDto, error)
	Replace(ctx context.Context, id int64, replace mutation.ShopReplace) (*ShopDto, error)
	Merge(ctx context.Context, id int64, patch mutation.ShopPatch) (*ShopDto, error)
	Withdraw(ctx context.Context, identity Identity, id int64) error
}

// Shops implements ShopService.
type Shops struct {
	store              store.ShopStore
	events             eventSink
	now                func() time.Time
	withdrawalsCounter metric.Int64Counter
}

func NewShopService(shopStore store.ShopStore, publisher messaging.Publisher, logger *slog.Logger) *Shops {
	return &Shops{
		store:              shopStore,
		events:             eventSink{publisher: publisher, logger: logger.With("component", "shops")},
		now:                time.Now,
		withdrawalsCounter: newCounter("entities_withdrawn", "Total number of withdrawn products and shops"),
	}
}

func (s *Shops) List(ctx context.Context, params query.Params) (*ShopPage, error) {
	page, err := s.store.ListShops(ctx, params)
	if err != nil {
		return nil, err
	}
	shops := make([]ShopDto, 0, len(page.Items))
	for i := range page.Items {
		shops = append(shops, *toShopDto(&page.Items[i]))
	}
	return &ShopPage{Start: page.Start, Count: page.Count, Total: page.Total, Shops: shops}, nil
}

func (s *Shops) Create(ctx context.Context, replace mutation.ShopReplace) (*ShopDto, error) {
	fields, err := replace.Fields()
	if err != nil {
		return nil, err
	}
	shop, err := s.store.CreateShop(ctx, fields)
	if err != nil {
		return nil, err
	}
	return toShopDto(shop), nil
}

func (s *Shops) FindByID(ctx context.Context, id int64) (*ShopDto, error) {
	shop, err := s.store.FindShop(ctx, id)
	if err != nil {
		return nil, err
	}
	return toShopDto(shop), nil
}

func (s *Shops) Replace(ctx context.Context, id int64, replace mutation.ShopReplace) (*ShopDto, error) {
	shop, err := s.store.UpdateShop(ctx, id, replace)
	if err != nil {
		return nil, err
	}
	return toShopDto(shop), nil
}

func (s *Shops) Merge(ctx context.Context, id int64, patch mutation.ShopPatch) (*ShopDto, error) {
	shop, err := s.store.UpdateShop(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return toShopDto(shop), nil
}

func (s *Shops) Withdraw(ctx context.Context, identity Identity, id int64) error {
	if err := s.store.WithdrawShop(ctx, id); err != nil {
		return err
	}
	s.withdrawalsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(events.KindShop))))
	s.events.publish(ctx, events.EntityWithdrawnEvent{
		EventID:     uuid.New(),
		Carrier:     carrier(ctx),
		Kind:        events.KindShop,
		ID:          id,
		Username:    identity.Username,
		WithdrawnAt: s.now().UTC(),
	})
	return nil
}
