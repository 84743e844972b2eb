package service

import (
	"context"
	"sync"

	catalogerrors "github.com/abgdnv/observatory/internal/catalog/errors"
	"github.com/abgdnv/observatory/internal/catalog/mutation"
	"github.com/abgdnv/observatory/internal/catalog/query"
	"github.com/abgdnv/observatory/internal/catalog/store/db"
	"github.com/abgdnv/observatory/pkg/messaging"
)

// mockUserStore is a map backed implementation of the UserStore interface
type mockUserStore struct {
	users map[string]*db.User
	error error
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[string]*db.User)}
}

func (m *mockUserStore) CreateUser(_ context.Context, params db.CreateUserParams) (*db.User, error) {
	if m.error != nil {
		return nil, m.error
	}
	if _, exists := m.users[params.Username]; exists {
		return nil, catalogerrors.ErrUsernameTaken
	}
	user := &db.User{
		ID:           int64(len(m.users) + 1),
		Username:     params.Username,
		PasswordHash: params.PasswordHash,
		Email:        params.Email,
		IsAdmin:      params.IsAdmin,
	}
	m.users[user.Username] = user
	return user, nil
}

func (m *mockUserStore) FindUserByUsername(_ context.Context, username string) (*db.User, error) {
	if m.error != nil {
		return nil, m.error
	}
	user, ok := m.users[username]
	if !ok {
		return nil, catalogerrors.ErrUserNotFound
	}
	c := *user
	return &c, nil
}

func (m *mockUserStore) FindUserByToken(_ context.Context, token string) (*db.User, error) {
	if m.error != nil {
		return nil, m.error
	}
	for _, user := range m.users {
		if user.Token != nil && *user.Token == token {
			c := *user
			return &c, nil
		}
	}
	return nil, catalogerrors.ErrUserNotFound
}

func (m *mockUserStore) byID(id int64) *db.User {
	for _, user := range m.users {
		if user.ID == id {
			return user
		}
	}
	return nil
}

func (m *mockUserStore) SetToken(_ context.Context, id int64, token string) error {
	if m.error != nil {
		return m.error
	}
	user := m.byID(id)
	if user == nil {
		return catalogerrors.ErrUserNotFound
	}
	user.Token = &token
	return nil
}

func (m *mockUserStore) ClearToken(_ context.Context, id int64, token string) (bool, error) {
	if m.error != nil {
		return false, m.error
	}
	user := m.byID(id)
	if user == nil || user.Token == nil || *user.Token != token {
		return false, nil
	}
	user.Token = nil
	return true, nil
}

// mockProductStore is a mock implementation of the ProductStore interface
type mockProductStore struct {
	product     *db.Product
	page        *query.Page[db.Product]
	error       error
	updateError error
	applied     db.ProductFields
	created     db.ProductFields
	withdrawn   []int64
}

func (m *mockProductStore) CreateProduct(_ context.Context, fields db.ProductFields) (*db.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	m.created = fields
	return &db.Product{ID: 1, Name: fields.Name, Description: fields.Description, Category: fields.Category, Tags: fields.Tags}, nil
}

func (m *mockProductStore) FindProduct(_ context.Context, _ int64) (*db.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockProductStore) ListProducts(_ context.Context, _ query.Params) (*query.Page[db.Product], error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.page, nil
}

func (m *mockProductStore) UpdateProduct(_ context.Context, id int64, mut mutation.ProductMutation) (*db.Product, error) {
	if m.updateError != nil {
		return nil, m.updateError
	}
	fields, err := mut.Apply(*m.product)
	if err != nil {
		return nil, err
	}
	m.applied = fields
	return &db.Product{ID: id, Name: fields.Name, Description: fields.Description, Category: fields.Category, Tags: fields.Tags}, nil
}

func (m *mockProductStore) WithdrawProduct(_ context.Context, id int64) error {
	if m.error != nil {
		return m.error
	}
	m.withdrawn = append(m.withdrawn, id)
	return nil
}

// mockShopStore is a mock implementation of the ShopStore interface
type mockShopStore struct {
	shop  *db.Shop
	page  *query.Page[db.Shop]
	error error
}

func (m *mockShopStore) CreateShop(_ context.Context, fields db.ShopFields) (*db.Shop, error) {
	if m.error != nil {
		return nil, m.error
	}
	return &db.Shop{ID: 1, Name: fields.Name, Address: fields.Address, Lat: fields.Lat, Lng: fields.Lng, Tags: fields.Tags}, nil
}

func (m *mockShopStore) FindShop(_ context.Context, _ int64) (*db.Shop, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.shop, nil
}

func (m *mockShopStore) ListShops(_ context.Context, _ query.Params) (*query.Page[db.Shop], error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.page, nil
}

func (m *mockShopStore) UpdateShop(_ context.Context, id int64, mut mutation.ShopMutation) (*db.Shop, error) {
	if m.error != nil {
		return nil, m.error
	}
	fields, err := mut.Apply(*m.shop)
	if err != nil {
		return nil, err
	}
	return &db.Shop{ID: id, Name: fields.Name, Address: fields.Address, Lat: fields.Lat, Lng: fields.Lng, Tags: fields.Tags}, nil
}

func (m *mockShopStore) WithdrawShop(_ context.Context, _ int64) error {
	return m.error
}

// mockPriceStore is a mock implementation of the PriceStore interface
type mockPriceStore struct {
	page    *query.Page[db.PriceRow]
	error   error
	entries []db.UpsertPriceParams
}

func (m *mockPriceStore) UpsertPrices(_ context.Context, entries []db.UpsertPriceParams) ([]db.Price, error) {
	if m.error != nil {
		return nil, m.error
	}
	m.entries = entries
	prices := make([]db.Price, 0, len(entries))
	for i, e := range entries {
		prices = append(prices, db.Price{ID: int64(i + 1), ProductID: e.ProductID, ShopID: e.ShopID, Date: e.Date, Price: e.Price})
	}
	return prices, nil
}

func (m *mockPriceStore) ListPrices(_ context.Context, _ query.PriceParams) (*query.Page[db.PriceRow], error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.page, nil
}

// mockPublisher records published events
type mockPublisher struct {
	mu     sync.Mutex
	events []messaging.Event
	error  error
}

func (m *mockPublisher) Publish(_ context.Context, event messaging.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.error != nil {
		return m.error
	}
	m.events = append(m.events, event)
	return nil
}
