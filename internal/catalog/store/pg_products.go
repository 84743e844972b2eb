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

func (p *PgStore) CreateProduct(ctx context.Context, fields db.ProductFields) (*db.Product, error) {
	product, err := p.q.CreateProduct(ctx, fields)
	if err != nil {
		return nil, storageError(catalogerrors.ErrCreateProduct, err)
	}
	return &product, nil
}

// FindProduct returns ErrProductNotFound if the product is unknown or withdrawn.
func (p *PgStore) FindProduct(ctx context.Context, id int64) (*db.Product, error) {
	product, err := p.q.FindActiveProduct(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalogerrors.ErrProductNotFound
		}
		return nil, storageError(catalogerrors.ErrFindProduct, err)
	}
	return &product, nil
}

// ListProducts reads the total and the page in one snapshot.
func (p *PgStore) ListProducts(ctx context.Context, params query.Params) (*query.Page[db.Product], error) {
	arg := db.ListParams{
		Withdrawn: params.Status.Withdrawn(),
		SortField: params.Sort.Field,
		Desc:      params.Sort.Desc(),
		Offset:    params.Start,
		Limit:     params.Count,
	}
	page := &query.Page[db.Product]{Start: params.Start, Count: params.Count}

	txErr := p.withTransaction(ctx, readOnly, func(qtx *db.Queries) error {
		total, err := qtx.CountProducts(ctx, arg)
		if err != nil {
			return storageError(catalogerrors.ErrFindProduct, err)
		}
		page.Total = total
		if params.Start >= total {
			page.Items = []db.Product{}
			return nil
		}
		page.Items, err = qtx.ListProducts(ctx, arg)
		if err != nil {
			return storageError(catalogerrors.ErrFindProduct, err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return page, nil
}

// UpdateProduct locks the product row, applies m and writes the result in one transaction.
func (p *PgStore) UpdateProduct(ctx context.Context, id int64, m mutation.ProductMutation) (*db.Product, error) {
	var updated db.Product

	txErr := p.withTransaction(ctx, readWrite, func(qtx *db.Queries) error {
		current, err := qtx.LockActiveProduct(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return catalogerrors.ErrProductNotFound
			}
			return storageError(catalogerrors.ErrUpdateProduct, err)
		}
		fields, err := m.Apply(current)
		if err != nil {
			return err
		}
		updated, err = qtx.UpdateProduct(ctx, id, fields)
		if err != nil {
			return storageError(catalogerrors.ErrUpdateProduct, err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &updated, nil
}

func (p *PgStore) WithdrawProduct(ctx context.Context, id int64) error {
	return p.withTransaction(ctx, readWrite, func(qtx *db.Queries) error {
		count, err := qtx.WithdrawProduct(ctx, id)
		if err != nil {
			return storageError(catalogerrors.ErrUpdateProduct, err)
		}
		if count == 0 {
			return catalogerrors.ErrProductNotFound
		}
		return nil
	})
}
