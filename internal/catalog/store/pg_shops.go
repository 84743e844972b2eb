package store

import (
	"context"
	"errors"

	catalogerrors "github.com/abgdnv/observatory/internal/catalog/errors"
	"github.com/abgdnv/observatory/internal/catalog/mutation"
	"github.com/abgdnv/observatory/internal/catalog/query"
	"github.com/abgdnv/observatory/internal/catalog/store/db"
	"github.com/jackc/pgx/v5"
)

func (p *PgStore) CreateShop(ctx context.Context, fields db.ShopFields) (*db.Shop, error) {
	shop, err := p.q.CreateShop(ctx, fields)
	if err != nil {
		return nil, storageError(catalogerrors.ErrCreateShop, err)
	}
	return &shop, nil
}

// FindShop returns ErrShopNotFound if the shop is unknown or withdrawn.
func (p *PgStore) FindShop(ctx context.Context, id int64) (*db.Shop, error) {
	shop, err := p.q.FindActiveShop(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalogerrors.ErrShopNotFound
		}
		return nil, storageError(catalogerrors.ErrFindShop, err)
	}
	return &shop, nil
}

// ListShops reads the total and the page in one snapshot.
func (p *PgStore) ListShops(ctx context.Context, params query.Params) (*query.Page[db.Shop], error) {
	arg := db.ListParams{
		Withdrawn: params.Status.Withdrawn(),
		SortField: params.Sort.Field,
		Desc:      params.Sort.Desc(),
		Offset:    params.Start,
		Limit:     params.Count,
	}
	page := &query.Page[db.Shop]{Start: params.Start, Count: params.Count}

	txErr := p.withTransaction(ctx, readOnly, func(qtx *db.Queries) error {
		total, err := qtx.CountShops(ctx, arg)
		if err != nil {
			return storageError(catalogerrors.ErrFindShop, err)
		}
		page.Total = total
		if params.Start >= total {
			page.Items = []db.Shop{}
			return nil
		}
		page.Items, err = qtx.ListShops(ctx, arg)
		if err != nil {
			return storageError(catalogerrors.ErrFindShop, err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return page, nil
}

// UpdateShop locks the shop row, applies m and writes the result in one transaction.
func (p *PgStore) UpdateShop(ctx context.Context, id int64, m mutation.ShopMutation) (*db.Shop, error) {
	var updated db.Shop

	txErr := p.withTransaction(ctx, readWrite, func(qtx *db.Queries) error {
		current, err := qtx.LockActiveShop(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return catalogerrors.ErrShopNotFound
			}
			return storageError(catalogerrors.ErrUpdateShop, err)
		}
		fields, err := m.Apply(current)
		if err != nil {
			return err
		}
		updated, err = qtx.UpdateShop(ctx, id, fields)
		if err != nil {
			return storageError(catalogerrors.ErrUpdateShop, err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &updated, nil
}

func (p *PgStore) WithdrawShop(ctx context.Context, id int64) error {
	return p.withTransaction(ctx, readWrite, func(qtx *db.Queries) error {
		count, err := qtx.WithdrawShop(ctx, id)
		if err != nil {
			return storageError(catalogerrors.ErrUpdateShop, err)
		}
		if count == 0 {
			return catalogerrors.ErrShopNotFound
		}
		return nil
	})
}
