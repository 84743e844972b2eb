package db

import (
	"context"

	"github.com/jackc/pgx/v5"
)

const shopColumns = `id, name, address, lat, lng, tags, withdrawn, created_at, updated_at`

func scanShop(row scanner) (Shop, error) {
	var i Shop
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Address,
		&i.Lat,
		&i.Lng,
		&i.Tags,
		&i.Withdrawn,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createShop = `INSERT INTO shops (name, address, lat, lng, tags)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + shopColumns

func (q *Queries) CreateShop(ctx context.Context, arg ShopFields) (Shop, error) {
	row := q.db.QueryRow(ctx, createShop,
		arg.Name,
		arg.Address,
		arg.Lat,
		arg.Lng,
		nonNilTags(arg.Tags),
	)
	return scanShop(row)
}

const findActiveShop = `SELECT ` + shopColumns + ` FROM shops WHERE id = $1 AND NOT withdrawn`

func (q *Queries) FindActiveShop(ctx context.Context, id int64) (Shop, error) {
	row := q.db.QueryRow(ctx, findActiveShop, id)
	return scanShop(row)
}

func (q *Queries) LockActiveShop(ctx context.Context, id int64) (Shop, error) {
	row := q.db.QueryRow(ctx, findActiveShop+` FOR UPDATE`, id)
	return scanShop(row)
}

const shareActiveShop = `SELECT id FROM shops WHERE id = $1 AND NOT withdrawn FOR SHARE`

// ShareActiveShop holds a shared lock on an active shop until the transaction ends.
func (q *Queries) ShareActiveShop(ctx context.Context, id int64) error {
	var found int64
	return q.db.QueryRow(ctx, shareActiveShop, id).Scan(&found)
}

const updateShop = `UPDATE shops
SET name = $2, address = $3, lat = $4, lng = $5, tags = $6, updated_at = now()
WHERE id = $1
RETURNING ` + shopColumns

func (q *Queries) UpdateShop(ctx context.Context, id int64, arg ShopFields) (Shop, error) {
	row := q.db.QueryRow(ctx, updateShop,
		id,
		arg.Name,
		arg.Address,
		arg.Lat,
		arg.Lng,
		nonNilTags(arg.Tags),
	)
	return scanShop(row)
}

const withdrawShop = `UPDATE shops SET withdrawn = TRUE, updated_at = now() WHERE id = $1 AND NOT withdrawn`

func (q *Queries) WithdrawShop(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.Exec(ctx, withdrawShop, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

func (q *Queries) CountShops(ctx context.Context, arg ListParams) (int64, error) {
	w := entityWhere(arg.Withdrawn)
	var total int64
	err := q.db.QueryRow(ctx, `SELECT count(*) FROM shops`+w.sql(), w.args...).Scan(&total)
	return total, err
}

func (q *Queries) ListShops(ctx context.Context, arg ListParams) ([]Shop, error) {
	w := entityWhere(arg.Withdrawn)
	filter := w.sql()
	page, err := w.page(shopSortColumns, arg.SortField, arg.Desc, "id", arg.Offset, arg.Limit)
	if err != nil {
		return nil, err
	}
	rows, err := q.db.Query(ctx, `SELECT `+shopColumns+` FROM shops`+filter+page, w.args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Shop, error) {
		return scanShop(row)
	})
}
