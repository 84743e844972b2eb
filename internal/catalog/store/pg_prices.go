package store

import (
	"context"
	"errors"

	catalogerrors "github.com/abgdnv/observatory/internal/catalog/errors"
	"github.com/abgdnv/observatory/internal/catalog/query"
	"github.com/abgdnv/observatory/internal/catalog/store/db"
	"github.com/jackc/pgx/v5"
)

// UpsertPrices holds shared locks on the referenced product and shop rows while it
// writes, so a concurrent withdraw waits for the submission or the submission fails.
func (p *PgStore) UpsertPrices(ctx context.Context, entries []db.UpsertPriceParams) ([]db.Price, error) {
	prices := make([]db.Price, 0, len(entries))

	txErr := p.withTransaction(ctx, readWrite, func(qtx *db.Queries) error {
		products := make(map[int64]struct{})
		shops := make(map[int64]struct{})
		for _, entry := range entries {
			if _, locked := products[entry.ProductID]; !locked {
				if err := qtx.ShareActiveProduct(ctx, entry.ProductID); err != nil {
					if errors.Is(err, pgx.ErrNoRows) {
						return catalogerrors.ErrProductNotFound
					}
					return storageError(catalogerrors.ErrUpsertPrice, err)
				}
				products[entry.ProductID] = struct{}{}
			}
			if _, locked := shops[entry.ShopID]; !locked {
				if err := qtx.ShareActiveShop(ctx, entry.ShopID); err != nil {
					if errors.Is(err, pgx.ErrNoRows) {
						return catalogerrors.ErrShopNotFound
					}
					return storageError(catalogerrors.ErrUpsertPrice, err)
				}
				shops[entry.ShopID] = struct{}{}
			}

			price, err := qtx.UpsertPrice(ctx, entry)
			if err != nil {
				return storageError(catalogerrors.ErrUpsertPrice, err)
			}
			prices = append(prices, price)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return prices, nil
}

func (p *PgStore) ListPrices(ctx context.Context, params query.PriceParams) (*query.Page[db.PriceRow], error) {
	arg := db.ListPricesParams{
		Withdrawn:  params.Status.Withdrawn(),
		ProductIDs: params.Filter.Products,
		ShopIDs:    params.Filter.Shops,
		DateFrom:   params.Filter.DateFrom,
		DateTo:     params.Filter.DateTo,
		Tags:       params.Filter.Tags,
		SortField:  params.Sort.Field,
		Desc:       params.Sort.Desc(),
		Offset:     params.Start,
		Limit:      params.Count,
	}
	page := &query.Page[db.PriceRow]{Start: params.Start, Count: params.Count}

	txErr := p.withTransaction(ctx, readOnly, func(qtx *db.Queries) error {
		total, err := qtx.CountPrices(ctx, arg)
		if err != nil {
			return storageError(catalogerrors.ErrFindPrices, err)
		}
		page.Total = total
		if params.Start >= total {
			page.Items = []db.PriceRow{}
			return nil
		}
		page.Items, err = qtx.ListPrices(ctx, arg)
		if err != nil {
			return storageError(catalogerrors.ErrFindPrices, err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return page, nil
}
