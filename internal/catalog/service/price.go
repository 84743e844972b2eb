package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	catalogerrors "github.com/abgdnv/observatory/internal/catalog/errors"
	"github.com/abgdnv/observatory/internal/catalog/mutation"
	"github.com/abgdnv/observatory/internal/catalog/query"
	"github.com/abgdnv/observatory/internal/catalog/store"
	"github.com/abgdnv/observatory/pkg/messaging"
	"github.com/abgdnv/observatory/pkg/messaging/events"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
)

// PriceService defines the methods for submitting and listing prices.
type PriceService interface {
	// Submit upserts one price per day of the submission.
	// Returns a ValidationError if the product or shop is unknown or withdrawn.
	Submit(ctx context.Context, identity Identity, submission mutation.PriceSubmission) (*SubmittedPrices, error)

	// List returns one page of prices with their product and shop.
	List(ctx context.Context, params query.PriceParams) (*PricePage, error)
}

// Prices implements PriceService.
type Prices struct {
	store         store.PriceStore
	events        eventSink
	logger        *slog.Logger
	now           func() time.Time
	pricesCounter metric.Int64Counter
}

func NewPriceService(priceStore store.PriceStore, publisher messaging.Publisher, logger *slog.Logger) *Prices {
	logger = logger.With("component", "prices")
	return &Prices{
		store:         priceStore,
		events:        eventSink{publisher: publisher, logger: logger},
		logger:        logger,
		now:           time.Now,
		pricesCounter: newCounter("prices_submitted", "Total number of stored price observations"),
	}
}

func (s *Prices) Submit(ctx context.Context, identity Identity, submission mutation.PriceSubmission) (*SubmittedPrices, error) {
	entries, err := submission.Entries()
	if err != nil {
		return nil, err
	}

	stored, err := s.store.UpsertPrices(ctx, entries)
	switch {
	case errors.Is(err, catalogerrors.ErrProductNotFound):
		return nil, catalogerrors.NewValidationError("productId", "unknown or withdrawn product")
	case errors.Is(err, catalogerrors.ErrShopNotFound):
		return nil, catalogerrors.NewValidationError("shopId", "unknown or withdrawn shop")
	case err != nil:
		return nil, err
	}

	prices := make([]PriceDto, 0, len(stored))
	submitted := make([]events.SubmittedPrice, 0, len(stored))
	for _, p := range stored {
		dto := toPriceDto(p)
		prices = append(prices, dto)
		submitted = append(submitted, events.SubmittedPrice{
			ProductID: dto.ProductID,
			ShopID:    dto.ShopID,
			Date:      dto.Date,
			Price:     dto.Price,
		})
	}
	s.logger.DebugContext(ctx, "Prices stored", "count", len(prices), "product_id", submission.ProductID, "shop_id", submission.ShopID)
	s.pricesCounter.Add(ctx, int64(len(prices)))
	s.events.publish(ctx, events.PriceSubmittedEvent{
		EventID:     uuid.New(),
		Carrier:     carrier(ctx),
		Username:    identity.Username,
		Prices:      submitted,
		SubmittedAt: s.now().UTC(),
	})
	return &SubmittedPrices{Prices: prices}, nil
}

func (s *Prices) List(ctx context.Context, params query.PriceParams) (*PricePage, error) {
	page, err := s.store.ListPrices(ctx, params)
	if err != nil {
		return nil, err
	}
	rows := make([]PriceRowDto, 0, len(page.Items))
	for _, row := range page.Items {
		rows = append(rows, toPriceRowDto(row))
	}
	return &PricePage{Start: page.Start, Count: page.Count, Total: page.Total, Prices: rows}, nil
}
