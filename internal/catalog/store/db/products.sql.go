package db

import (
	"context"

	"github.com/jackc/pgx/v5"
)

const productColumns = `id, name, description, category, tags, withdrawn, created_at, updated_at`

func scanProduct(row scanner) (Product, error) {
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Category,
		&i.Tags,
		&i.Withdrawn,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createProduct = `INSERT INTO products (name, description, category, tags)
VALUES ($1, $2, $3, $4)
RETURNING ` + productColumns

func (q *Queries) CreateProduct(ctx context.Context, arg ProductFields) (Product, error) {
	row := q.db.QueryRow(ctx, createProduct,
		arg.Name,
		arg.Description,
		arg.Category,
		nonNilTags(arg.Tags),
	)
	return scanProduct(row)
}

const findActiveProduct = `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND NOT withdrawn`

func (q *Queries) FindActiveProduct(ctx context.Context, id int64) (Product, error) {
	row := q.db.QueryRow(ctx, findActiveProduct, id)
	return scanProduct(row)
}

func (q *Queries) LockActiveProduct(ctx context.Context, id int64) (Product, error) {
	row := q.db.QueryRow(ctx, findActiveProduct+` FOR UPDATE`, id)
	return scanProduct(row)
}

const shareActiveProduct = `SELECT id FROM products WHERE id = $1 AND NOT withdrawn FOR SHARE`

// ShareActiveProduct holds a shared lock on an active product until the transaction ends.
func (q *Queries) ShareActiveProduct(ctx context.Context, id int64) error {
	var found int64
	return q.db.QueryRow(ctx, shareActiveProduct, id).Scan(&found)
}

const updateProduct = `UPDATE products
SET name = $2, description = $3, category = $4, tags = $5, updated_at = now()
WHERE id = $1
RETURNING ` + productColumns

func (q *Queries) UpdateProduct(ctx context.Context, id int64, arg ProductFields) (Product, error) {
	row := q.db.QueryRow(ctx, updateProduct,
		id,
		arg.Name,
		arg.Description,
		arg.Category,
		nonNilTags(arg.Tags),
	)
	return scanProduct(row)
}

const withdrawProduct = `UPDATE products SET withdrawn = TRUE, updated_at = now() WHERE id = $1 AND NOT withdrawn`

func (q *Queries) WithdrawProduct(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.Exec(ctx, withdrawProduct, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

func (q *Queries) CountProducts(ctx context.Context, arg ListParams) (int64, error) {
	w := entityWhere(arg.Withdrawn)
	var total int64
	err := q.db.QueryRow(ctx, `SELECT count(*) FROM products`+w.sql(), w.args...).Scan(&total)
	return total, err
}

func (q *Queries) ListProducts(ctx context.Context, arg ListParams) ([]Product, error) {
	w := entityWhere(arg.Withdrawn)
	filter := w.sql()
	page, err := w.page(productSortColumns, arg.SortField, arg.Desc, "id", arg.Offset, arg.Limit)
	if err != nil {
		return nil, err
	}
	rows, err := q.db.Query(ctx, `SELECT `+productColumns+` FROM products`+filter+page, w.args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Product, error) {
		return scanProduct(row)
	})
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
