// Package store provides the persistence of users, products, shops and prices.
package store

import (
	"context"

	"github.com/abgdnv/observatory/internal/catalog/mutation"
	"github.com/abgdnv/observatory/internal/catalog/query"
	"github.com/abgdnv/observatory/internal/catalog/store/db"
)

// UserStore is an interface for user and session storage operations.
type UserStore interface {
	// CreateUser adds a user. Returns ErrUsernameTaken if the username exists.
	CreateUser(ctx context.Context, params db.CreateUserParams) (*db.User, error)

	// FindUserByUsername returns ErrUserNotFound if no user has the given username.
	FindUserByUsername(ctx context.Context, username string) (*db.User, error)

	// FindUserByToken returns ErrUserNotFound unless token is the current token of a user.
	FindUserByToken(ctx context.Context, token string) (*db.User, error)

	// SetToken replaces the token of the user, invalidating any previous one.
	SetToken(ctx context.Context, id int64, token string) error

	// ClearToken removes the token of the user only if it still equals token.
	// Reports whether a token was cleared.
	ClearToken(ctx context.Context, id int64, token string) (bool, error)
}

// ProductStore is an interface for product storage operations.
// Withdrawn products are invisible to FindProduct, UpdateProduct and WithdrawProduct.
type ProductStore interface {
	// CreateProduct adds an active product with a new id.
	CreateProduct(ctx context.Context, fields db.ProductFields) (*db.Product, error)

	// FindProduct returns ErrProductNotFound if the product is unknown or withdrawn.
	FindProduct(ctx context.Context, id int64) (*db.Product, error)

	// ListProducts returns one page of products.
	ListProducts(ctx context.Context, params query.Params) (*query.Page[db.Product], error)

	// UpdateProduct applies m to the locked product and stores the result.
	// Nothing is written when m fails.
	UpdateProduct(ctx context.Context, id int64, m mutation.ProductMutation) (*db.Product, error)

	// WithdrawProduct marks the product withdrawn. Returns ErrProductNotFound if it is unknown or already withdrawn.
	WithdrawProduct(ctx context.Context, id int64) error
}

// ShopStore is an interface for shop storage operations.
// Withdrawn shops are invisible to FindShop, UpdateShop and WithdrawShop.
type ShopStore interface {
	CreateShop(ctx context.Context, fields db.ShopFields) (*db.Shop, error)
	FindShop(ctx context.Context, id int64) (*db.Shop, error)
	ListShops(ctx context.Context, params query.Params) (*query.Page[db.Shop], error)
	UpdateShop(ctx context.Context, id int64, m mutation.ShopMutation) (*db.Shop, error)
	WithdrawShop(ctx context.Context, id int64) error
}

// PriceStore is an interface for price storage operations.
type PriceStore interface {
	// UpsertPrices stores every entry by its product, shop and date, overwriting the price
	// of an existing observation. All entries are written or none.
	// Returns ErrProductNotFound or ErrShopNotFound if a reference is unknown or withdrawn.
	UpsertPrices(ctx context.Context, entries []db.UpsertPriceParams) ([]db.Price, error)

	// ListPrices returns one page of prices joined with their product and shop.
	ListPrices(ctx context.Context, params query.PriceParams) (*query.Page[db.PriceRow], error)
}

// Store combines all catalog storage operations.
type Store interface {
	UserStore
	ProductStore
	ShopStore
	PriceStore
}

var (
	_ Store = (*PgStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
