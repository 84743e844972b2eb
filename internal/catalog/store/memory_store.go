package store

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	catalogerrors "github.com/abgdnv/observatory/internal/catalog/errors"
	"github.com/abgdnv/observatory/internal/catalog/mutation"
	"github.com/abgdnv/observatory/internal/catalog/query"
	"github.com/abgdnv/observatory/internal/catalog/store/db"
)

// MemoryStore implements Store with mutex guarded maps. One lock serializes every write.
type MemoryStore struct {
	mu sync.RWMutex

	users    map[int64]*db.User
	products map[int64]*db.Product
	shops    map[int64]*db.Shop
	prices   map[db.PriceKey]*db.Price

	nextUserID    int64
	nextProductID int64
	nextShopID    int64
	nextPriceID   int64

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[int64]*db.User),
		products: make(map[int64]*db.Product),
		shops:    make(map[int64]*db.Shop),
		prices:   make(map[db.PriceKey]*db.Price),
		now:      time.Now,
	}
}

func (m *MemoryStore) CreateUser(_ context.Context, params db.CreateUserParams) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == params.Username {
			return nil, catalogerrors.ErrUsernameTaken
		}
	}
	m.nextUserID++
	user := &db.User{
		ID:           m.nextUserID,
		Username:     params.Username,
		PasswordHash: params.PasswordHash,
		Email:        params.Email,
		IsAdmin:      params.IsAdmin,
		CreatedAt:    m.now(),
	}
	m.users[user.ID] = user
	return copyUser(user), nil
}

func (m *MemoryStore) FindUserByUsername(_ context.Context, username string) (*db.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, catalogerrors.ErrUserNotFound
}

func (m *MemoryStore) FindUserByToken(_ context.Context, token string) (*db.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Token != nil && *u.Token == token {
			return copyUser(u), nil
		}
	}
	return nil, catalogerrors.ErrUserNotFound
}

func (m *MemoryStore) SetToken(_ context.Context, id int64, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return catalogerrors.ErrUserNotFound
	}
	u.Token = &token
	return nil
}

func (m *MemoryStore) ClearToken(_ context.Context, id int64, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.Token == nil || *u.Token != token {
		return false, nil
	}
	u.Token = nil
	return true, nil
}

func (m *MemoryStore) CreateProduct(_ context.Context, fields db.ProductFields) (*db.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextProductID++
	now := m.now()
	product := &db.Product{ID: m.nextProductID, CreatedAt: now}
	setProductFields(product, fields, now)
	m.products[product.ID] = product
	return copyProduct(product), nil
}

func (m *MemoryStore) FindProduct(_ context.Context, id int64) (*db.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	product, ok := m.products[id]
	if !ok || product.Withdrawn {
		return nil, catalogerrors.ErrProductNotFound
	}
	return copyProduct(product), nil
}

var productOrder = map[string]func(a, b db.Product) int{
	"id":   func(a, b db.Product) int { return cmp.Compare(a.ID, b.ID) },
	"name": func(a, b db.Product) int { return strings.Compare(a.Name, b.Name) },
}

func (m *MemoryStore) ListProducts(_ context.Context, params query.Params) (*query.Page[db.Product], error) {
	m.mu.RLock()
	items := make([]db.Product, 0, len(m.products))
	for _, product := range m.products {
		items = append(items, *copyProduct(product))
	}
	m.mu.RUnlock()

	pipeline := query.Pipeline[db.Product]{
		Status:  func(p db.Product) bool { return params.Status.Matches(p.Withdrawn) },
		Compare: query.Comparator(params.Sort, productOrder, func(p db.Product) int64 { return p.ID }),
	}
	page := pipeline.Run(items, params.Pagination)
	return &page, nil
}

func (m *MemoryStore) UpdateProduct(_ context.Context, id int64, mut mutation.ProductMutation) (*db.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.products[id]
	if !ok || product.Withdrawn {
		return nil, catalogerrors.ErrProductNotFound
	}
	fields, err := mut.Apply(*copyProduct(product))
	if err != nil {
		return nil, err
	}
	setProductFields(product, fields, m.now())
	return copyProduct(product), nil
}

func (m *MemoryStore) WithdrawProduct(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.products[id]
	if !ok || product.Withdrawn {
		return catalogerrors.ErrProductNotFound
	}
	product.Withdrawn = true
	product.UpdatedAt = m.now()
	return nil
}

func (m *MemoryStore) CreateShop(_ context.Context, fields db.ShopFields) (*db.Shop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextShopID++
	now := m.now()
	shop := &db.Shop{ID: m.nextShopID, CreatedAt: now}
	setShopFields(shop, fields, now)
	m.shops[shop.ID] = shop
	return copyShop(shop), nil
}

func (m *MemoryStore) FindShop(_ context.Context, id int64) (*db.Shop, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	shop, ok := m.shops[id]
	if !ok || shop.Withdrawn {
		return nil, catalogerrors.ErrShopNotFound
	}
	return copyShop(shop), nil
}

var shopOrder = map[string]func(a, b db.Shop) int{
	"id":   func(a, b db.Shop) int { return cmp.Compare(a.ID, b.ID) },
	"name": func(a, b db.Shop) int { return strings.Compare(a.Name, b.Name) },
}

func (m *MemoryStore) ListShops(_ context.Context, params query.Params) (*query.Page[db.Shop], error) {
	m.mu.RLock()
	items := make([]db.Shop, 0, len(m.shops))
	for _, shop := range m.shops {
		items = append(items, *copyShop(shop))
	}
	m.mu.RUnlock()

	pipeline := query.Pipeline[db.Shop]{
		Status:  func(s db.Shop) bool { return params.Status.Matches(s.Withdrawn) },
		Compare: query.Comparator(params.Sort, shopOrder, func(s db.Shop) int64 { return s.ID }),
	}
	page := pipeline.Run(items, params.Pagination)
	return &page, nil
}

func (m *MemoryStore) UpdateShop(_ context.Context, id int64, mut mutation.ShopMutation) (*db.Shop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	shop, ok := m.shops[id]
	if !ok || shop.Withdrawn {
		return nil, catalogerrors.ErrShopNotFound
	}
	fields, err := mut.Apply(*copyShop(shop))
	if err != nil {
		return nil, err
	}
	setShopFields(shop, fields, m.now())
	return copyShop(shop), nil
}

func (m *MemoryStore) WithdrawShop(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	shop, ok := m.shops[id]
	if !ok || shop.Withdrawn {
		return catalogerrors.ErrShopNotFound
	}
	shop.Withdrawn = true
	shop.UpdatedAt = m.now()
	return nil
}

// UpsertPrices checks every reference before the first write, so a failure leaves no trace.
func (m *MemoryStore) UpsertPrices(_ context.Context, entries []db.UpsertPriceParams) ([]db.Price, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, entry := range entries {
		if p, ok := m.products[entry.ProductID]; !ok || p.Withdrawn {
			return nil, catalogerrors.ErrProductNotFound
		}
		if s, ok := m.shops[entry.ShopID]; !ok || s.Withdrawn {
			return nil, catalogerrors.ErrShopNotFound
		}
	}

	now := m.now()
	prices := make([]db.Price, 0, len(entries))
	for _, entry := range entries {
		key := db.PriceKey{ProductID: entry.ProductID, ShopID: entry.ShopID, Date: entry.Date}
		price, exists := m.prices[key]
		if !exists {
			m.nextPriceID++
			price = &db.Price{
				ID:        m.nextPriceID,
				ProductID: entry.ProductID,
				ShopID:    entry.ShopID,
				Date:      entry.Date,
				CreatedAt: now,
			}
			m.prices[key] = price
		}
		price.Price = entry.Price
		price.UpdatedAt = now
		prices = append(prices, *price)
	}
	return prices, nil
}

var priceOrder = map[string]func(a, b db.PriceRow) int{
	"id":    func(a, b db.PriceRow) int { return cmp.Compare(a.ID, b.ID) },
	"price": func(a, b db.PriceRow) int { return cmp.Compare(a.Price.Price, b.Price.Price) },
	"date":  func(a, b db.PriceRow) int { return a.Date.Compare(b.Date) },
}

func (m *MemoryStore) ListPrices(_ context.Context, params query.PriceParams) (*query.Page[db.PriceRow], error) {
	m.mu.RLock()
	rows := make([]db.PriceRow, 0, len(m.prices))
	for _, price := range m.prices {
		product, shop := m.products[price.ProductID], m.shops[price.ShopID]
		rows = append(rows, db.PriceRow{
			Price:            *price,
			ProductName:      product.Name,
			ProductTags:      slices.Clone(product.Tags),
			ProductWithdrawn: product.Withdrawn,
			ShopName:         shop.Name,
			ShopAddress:      shop.Address,
			ShopTags:         slices.Clone(shop.Tags),
			ShopWithdrawn:    shop.Withdrawn,
		})
	}
	m.mu.RUnlock()

	filter := params.Filter
	pipeline := query.Pipeline[db.PriceRow]{
		Status: func(r db.PriceRow) bool { return params.Status.Matches(r.ProductWithdrawn || r.ShopWithdrawn) },
		Filters: []func(db.PriceRow) bool{
			func(r db.PriceRow) bool { return filter.MatchesIDs(r.ProductID, r.ShopID) },
			func(r db.PriceRow) bool { return filter.MatchesDate(r.Date) },
			func(r db.PriceRow) bool { return filter.MatchesTags(r.ProductTags, r.ShopTags) },
		},
		Compare: query.Comparator(params.Sort, priceOrder, func(r db.PriceRow) int64 { return r.ID }),
	}
	page := pipeline.Run(rows, params.Pagination)
	return &page, nil
}

func setProductFields(p *db.Product, fields db.ProductFields, now time.Time) {
	p.Name = fields.Name
	p.Description = fields.Description
	p.Category = fields.Category
	p.Tags = nonNil(slices.Clone(fields.Tags))
	p.UpdatedAt = now
}

func setShopFields(s *db.Shop, fields db.ShopFields, now time.Time) {
	s.Name = fields.Name
	s.Address = fields.Address
	s.Lat = fields.Lat
	s.Lng = fields.Lng
	s.Tags = nonNil(slices.Clone(fields.Tags))
	s.UpdatedAt = now
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func copyUser(u *db.User) *db.User {
	c := *u
	if u.Token != nil {
		token := *u.Token
		c.Token = &token
	}
	return &c
}

func copyProduct(p *db.Product) *db.Product {
	c := *p
	c.Tags = slices.Clone(p.Tags)
	return &c
}

func copyShop(s *db.Shop) *db.Shop {
	c := *s
	c.Tags = slices.Clone(s.Tags)
	return &c
}
