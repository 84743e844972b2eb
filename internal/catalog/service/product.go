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

// ProductService defines the methods for managing products.
type ProductService interface {
	// List returns one page of products.
	List(ctx context.Context, params query.Params) (*ProductPage, error)

	// Create adds an active product.
	Create(ctx context.Context, replace mutation.ProductReplace) (*ProductDto, error)

	// FindByID returns ErrProductNotFound if the product is unknown or withdrawn.
	FindByID(ctx context.Context, id int64) (*ProductDto, error)

	// Replace overwrites every mutable field. Omitted fields take their default.
	Replace(ctx context.Context, id int64, replace mutation.ProductReplace) (*ProductDto, error)

	// Merge changes only the fields present in patch.
	Merge(ctx context.Context, id int64, patch mutation.ProductPatch) (*ProductDto, error)

	// Withdraw soft deletes the product. Returns ErrProductNotFound if it is unknown or already withdrawn.
	Withdraw(ctx context.Context, identity Identity, id int64) error
}

// Products implements ProductService.
type Products struct {
	store              store.ProductStore
	events             eventSink
	now                func() time.Time
	withdrawalsCounter metric.Int64Counter
}

// NewProductService creates a new instance of ProductService.
func NewProductService(productStore store.ProductStore, publisher messaging.Publisher, logger *slog.Logger) *Products {
	return &Products{
		store:              productStore,
		events:             eventSink{publisher: publisher, logger: logger.With("component", "products")},
		now:                time.Now,
		withdrawalsCounter: newCounter("entities_withdrawn", "Total number of withdrawn products and shops"),
	}
}

func (s *Products) List(ctx context.Context, params query.Params) (*ProductPage, error) {
	page, err := s.store.ListProducts(ctx, params)
	if err != nil {
		return nil, err
	}
	products := make([]ProductDto, 0, len(page.Items))
	for i := range page.Items {
		products = append(products, *toProductDto(&page.Items[i]))
	}
	return &ProductPage{Start: page.Start, Count: page.Count, Total: page.Total, Products: products}, nil
}

func (s *Products) Create(ctx context.Context, replace mutation.ProductReplace) (*ProductDto, error) {
	fields, err := replace.Fields()
	if err != nil {
		return nil, err
	}
	product, err := s.store.CreateProduct(ctx, fields)
	if err != nil {
		return nil, err
	}
	return toProductDto(product), nil
}

func (s *Products) FindByID(ctx context.Context, id int64) (*ProductDto, error) {
	product, err := s.store.FindProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProductDto(product), nil
}

func (s *Products) Replace(ctx context.Context, id int64, replace mutation.ProductReplace) (*ProductDto, error) {
	return s.update(ctx, id, replace)
}

func (s *Products) Merge(ctx context.Context, id int64, patch mutation.ProductPatch) (*ProductDto, error) {
	return s.update(ctx, id, patch)
}

func (s *Products) update(ctx context.Context, id int64, m mutation.ProductMutation) (*ProductDto, error) {
	product, err := s.store.UpdateProduct(ctx, id, m)
	if err != nil {
		return nil, err
	}
	return toProductDto(product), nil
}

func (s *Products) Withdraw(ctx context.Context, identity Identity, id int64) error {
	if err := s.store.WithdrawProduct(ctx, id); err != nil {
		return err
	}
	s.withdrawalsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(events.KindProduct))))
	s.events.publish(ctx, events.EntityWithdrawnEvent{
		EventID:     uuid.New(),
		Carrier:     carrier(ctx),
		Kind:        events.KindProduct,
		ID:          id,
		Username:    identity.Username,
		WithdrawnAt: s.now().UTC(),
	})
	return nil
}
