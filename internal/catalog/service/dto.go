package service

import (
	"github.com/abgdnv/observatory/internal/catalog/query"
	"github.com/abgdnv/observatory/internal/catalog/store/db"
)

// RegisterDto is the body of POST /register.
type RegisterDto struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
	Email    string `json:"email" validate:"omitempty,email,max=255"`
}

// LoginDto is the body of POST /login.
type LoginDto struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokenDto struct {
	Token string `json:"token"`
}

// UserDto never exposes a session token. Token is null unless a session is returned on purpose.
type UserDto struct {
	ID            int64   `json:"id"`
	Username      string  `json:"username"`
	Email         string  `json:"email"`
	IsAdmin       bool    `json:"isAdmin"`
	Token         *string `json:"token"`
	SessionActive bool    `json:"sessionActive"`
}

type ProductDto struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Withdrawn   bool     `json:"withdrawn"`
}

type ProductPage struct {
	Start    int64        `json:"start"`
	Count    int64        `json:"count"`
	Total    int64        `json:"total"`
	Products []ProductDto `json:"products"`
}

type ShopDto struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	Lat       float64  `json:"lat"`
	Lng       float64  `json:"lng"`
	Tags      []string `json:"tags"`
	Withdrawn bool     `json:"withdrawn"`
}

type ShopPage struct {
	Start int64     `json:"start"`
	Count int64     `json:"count"`
	Total int64     `json:"total"`
	Shops []ShopDto `json:"shops"`
}

// PriceDto is one stored observation, identified by productId, shopId and date.
type PriceDto struct {
	ProductID int64   `json:"productId"`
	ShopID    int64   `json:"shopId"`
	Date      string  `json:"date"`
	Price     float64 `json:"price"`
}

type SubmittedPrices struct {
	Prices []PriceDto `json:"prices"`
}

// PriceRowDto is a listed price annotated with its product and shop.
type PriceRowDto struct {
	PriceDto
	ProductName string   `json:"productName"`
	ProductTags []string `json:"productTags"`
	ShopName    string   `json:"shopName"`
	ShopAddress string   `json:"shopAddress"`
	ShopTags    []string `json:"shopTags"`
}

type PricePage struct {
	Start  int64         `json:"start"`
	Count  int64         `json:"count"`
	Total  int64         `json:"total"`
	Prices []PriceRowDto `json:"prices"`
}

func toUserDto(user *db.User) *UserDto {
	return &UserDto{
		ID:            user.ID,
		Username:      user.Username,
		Email:         user.Email,
		IsAdmin:       user.IsAdmin,
		SessionActive: user.Token != nil,
	}
}

func toProductDto(p *db.Product) *ProductDto {
	return &ProductDto{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Tags:        tags(p.Tags),
		Withdrawn:   p.Withdrawn,
	}
}

func toShopDto(s *db.Shop) *ShopDto {
	return &ShopDto{
		ID:        s.ID,
		Name:      s.Name,
		Address:   s.Address,
		Lat:       s.Lat,
		Lng:       s.Lng,
		Tags:      tags(s.Tags),
		Withdrawn: s.Withdrawn,
	}
}

func toPriceDto(p db.Price) PriceDto {
	return PriceDto{
		ProductID: p.ProductID,
		ShopID:    p.ShopID,
		Date:      p.Date.Format(query.DateLayout),
		Price:     p.Price,
	}
}

func toPriceRowDto(r db.PriceRow) PriceRowDto {
	return PriceRowDto{
		PriceDto:    toPriceDto(r.Price),
		ProductName: r.ProductName,
		ProductTags: tags(r.ProductTags),
		ShopName:    r.ShopName,
		ShopAddress: r.ShopAddress,
		ShopTags:    tags(r.ShopTags),
	}
}

// tags keeps empty tag sets encoded as [] rather than null.
func tags(t []string) []string {
	if t == nil {
		return []string{}
	}
	return t
}
