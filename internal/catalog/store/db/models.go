package db

import (
	"time"
)

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Email        string
	IsAdmin      bool
	Token        *string
	CreatedAt    time.Time
}

type Product struct {
	ID          int64
	Name        string
	Description string
	Category    string
	Tags        []string
	Withdrawn   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Shop struct {
	ID        int64
	Name      string
	Address   string
	Lat       float64
	Lng       float64
	Tags      []string
	Withdrawn bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PriceKey is the identity of a price observation. Date is a calendar day at UTC midnight.
type PriceKey struct {
	ProductID int64
	ShopID    int64
	Date      time.Time
}

type Price struct {
	ID        int64
	ProductID int64
	ShopID    int64
	Date      time.Time
	Price     float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p Price) Key() PriceKey {
	return PriceKey{ProductID: p.ProductID, ShopID: p.ShopID, Date: p.Date}
}

// PriceRow is a price joined with the product and shop it refers to.
type PriceRow struct {
	Price
	ProductName      string
	ProductTags      []string
	ProductWithdrawn bool
	ShopName         string
	ShopAddress      string
	ShopTags         []string
	ShopWithdrawn    bool
}

type CreateUserParams struct {
	Username     string
	PasswordHash string
	Email        string
	IsAdmin      bool
}

// ProductFields are the mutable columns of a product.
type ProductFields struct {
	Name        string
	Description string
	Category    string
	Tags        []string
}

// ShopFields are the mutable columns of a shop.
type ShopFields struct {
	Name    string
	Address string
	Lat     float64
	Lng     float64
	Tags    []string
}

type UpsertPriceParams struct {
	ProductID int64
	ShopID    int64
	Date      time.Time
	Price     float64
}

// ListParams selects one page of products or shops.
// A nil Withdrawn applies no status restriction.
type ListParams struct {
	Withdrawn *bool
	SortField string
	Desc      bool
	Offset    int64
	Limit     int64
}

// ListPricesParams selects one page of prices. Withdrawn matches a row when
// its product or its shop is withdrawn. Empty id sets and nil dates are not applied.
type ListPricesParams struct {
	Withdrawn  *bool
	ProductIDs []int64
	ShopIDs    []int64
	DateFrom   *time.Time
	DateTo     *time.Time
	Tags       []string
	SortField  string
	Desc       bool
	Offset     int64
	Limit      int64
}
