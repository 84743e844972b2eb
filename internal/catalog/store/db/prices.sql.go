package db

import (
	"context"

	"github.com/jackc/pgx/v5"
)

const priceColumns = `id, product_id, shop_id, date, price, created_at, updated_at`

func scanPrice(row scanner) (Price, error) {
	var i Price
	err := row.Scan(
		&i.ID,
		&i.ProductID,
		&i.ShopID,
		&i.Date,
		&i.Price,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertPrice = `INSERT INTO prices (product_id, shop_id, date, price)
VALUES ($1, $2, $3, $4)
ON CONFLICT ON CONSTRAINT prices_product_shop_date_key
DO UPDATE SET price = EXCLUDED.price, updated_at = now()
RETURNING ` + priceColumns

// UpsertPrice inserts the observation or overwrites the price stored under the same
// product, shop and date.
func (q *Queries) UpsertPrice(ctx context.Context, arg UpsertPriceParams) (Price, error) {
	row := q.db.QueryRow(ctx, upsertPrice,
		arg.ProductID,
		arg.ShopID,
		arg.Date,
		arg.Price,
	)
	return scanPrice(row)
}

const priceRowsFrom = ` FROM prices pr
JOIN products p ON p.id = pr.product_id
JOIN shops s ON s.id = pr.shop_id`

const priceRowColumns = `pr.id, pr.product_id, pr.shop_id, pr.date, pr.price, pr.created_at, pr.updated_at,
p.name, p.tags, p.withdrawn, s.name, s.address, s.tags, s.withdrawn`

func (q *Queries) CountPrices(ctx context.Context, arg ListPricesParams) (int64, error) {
	w := priceWhere(arg)
	var total int64
	err := q.db.QueryRow(ctx, `SELECT count(*)`+priceRowsFrom+w.sql(), w.args...).Scan(&total)
	return total, err
}

func (q *Queries) ListPrices(ctx context.Context, arg ListPricesParams) ([]PriceRow, error) {
	w := priceWhere(arg)
	filter := w.sql()
	page, err := w.page(priceSortColumns, arg.SortField, arg.Desc, "pr.id", arg.Offset, arg.Limit)
	if err != nil {
		return nil, err
	}
	rows, err := q.db.Query(ctx, `SELECT `+priceRowColumns+priceRowsFrom+filter+page, w.args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (PriceRow, error) {
		var i PriceRow
		err := row.Scan(
			&i.ID,
			&i.ProductID,
			&i.ShopID,
			&i.Date,
			&i.Price.Price,
			&i.CreatedAt,
			&i.UpdatedAt,
			&i.ProductName,
			&i.ProductTags,
			&i.ProductWithdrawn,
			&i.ShopName,
			&i.ShopAddress,
			&i.ShopTags,
			&i.ShopWithdrawn,
		)
		return i, err
	})
}
