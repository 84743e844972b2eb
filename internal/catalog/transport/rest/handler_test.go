package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	catalogerrors "github.com/abgdnv/observatory/internal/catalog/errors"
	"github.com/abgdnv/observatory/internal/catalog/mutation"
	"github.com/abgdnv/observatory/internal/catalog/query"
	"github.com/abgdnv/observatory/internal/catalog/service"
	"github.com/abgdnv/observatory/internal/catalog/store"
	"github.com/abgdnv/observatory/pkg/auth"
	"github.com/abgdnv/observatory/pkg/config"
	"github.com/abgdnv/observatory/pkg/messaging"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

const formType = "application/x-www-form-urlencoded"

// testAPI is the full router backed by a MemoryStore.
type testAPI struct {
	t      *testing.T
	router http.Handler
	auth   *service.Auth
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	memory := store.NewMemoryStore()
	publisher := messaging.NewLogPublisher(discardLogger)
	tokens := auth.NewHMACTokens(config.TokenConfig{Secret: strings.Repeat("s", 32), Issuer: "observatory-test"})
	authService := service.NewAuthService(memory, tokens, discardLogger)
	h := NewHandler(
		authService,
		service.NewProductService(memory, publisher, discardLogger),
		service.NewShopService(memory, publisher, discardLogger),
		service.NewPriceService(memory, publisher, discardLogger),
		100,
		discardLogger,
	)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return &testAPI{t: t, router: r, auth: authService}
}

func (a *testAPI) do(method, path, token, contentType, body string) *httptest.ResponseRecorder {
	a.t.Helper()
	req := httptest.NewRequest(method, BasePath+path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("X-OBSERVATORY-AUTH", token)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func (a *testAPI) json(method, path, token, body string) *httptest.ResponseRecorder {
	return a.do(method, path, token, "application/json", body)
}

func (a *testAPI) form(method, path, token string, values url.Values) *httptest.ResponseRecorder {
	return a.do(method, path, token, formType, values.Encode())
}

// session registers username and returns a fresh token.
func (a *testAPI) session(username string) string {
	a.t.Helper()
	rr := a.form(http.MethodPost, "/register", "", url.Values{"username": {username}, "password": {"secret"}})
	require.Equal(a.t, http.StatusOK, rr.Code, rr.Body.String())
	return a.login(username, "secret")
}

func (a *testAPI) login(username, password string) string {
	a.t.Helper()
	rr := a.form(http.MethodPost, "/login", "", url.Values{"username": {username}, "password": {password}})
	require.Equal(a.t, http.StatusOK, rr.Code, rr.Body.String())
	var token service.TokenDto
	require.NoError(a.t, json.Unmarshal(rr.Body.Bytes(), &token))
	require.NotEmpty(a.t, token.Token)
	return token.Token
}

func Test_Handler_RegisterLoginLogout(t *testing.T) {
	api := newTestAPI(t)

	// register
	rr := api.form(http.MethodPost, "/register", "", url.Values{"username": {"robot"}, "password": {"secret"}, "email": {"robot@example.com"}})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id":1,"username":"robot","email":"robot@example.com","isAdmin":false,"token":null,"sessionActive":false}`, rr.Body.String())

	rr = api.json(http.MethodPost, "/register", "", `{"username":"robot","password":"other"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"kind":"ValidationError","error":"validation failed","validation_errors":{"username":"already taken"}}`, rr.Body.String())

	rr = api.json(http.MethodPost, "/register", "", `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"kind":"ValidationError","error":"validation failed","validation_errors":{"username":"failed on rule: required","password":"failed on rule: required"}}`, rr.Body.String())

	// login
	rr = api.form(http.MethodPost, "/login", "", url.Values{"username": {"robot"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"kind":"InvalidCredentials","error":"invalid username or password"}`, rr.Body.String())

	token := api.login("robot", "secret")

	// logout
	rr = api.do(http.MethodPost, "/logout", "", "", "")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.JSONEq(t, `{"kind":"Unauthorized","error":"missing or invalid token"}`, rr.Body.String())

	rr = api.do(http.MethodPost, "/logout", token, "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"OK"}`, rr.Body.String())

	rr = api.do(http.MethodGet, "/products", token, "", "")
	assert.Equal(t, http.StatusForbidden, rr.Code, "a logged out token must be rejected")
}

func Test_Handler_BearerToken(t *testing.T) {
	api := newTestAPI(t)
	token := api.session("robot")

	req := httptest.NewRequest(http.MethodGet, BasePath+"/products", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	api.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"start":0,"count":20,"total":0,"products":[]}`, rr.Body.String())
}

func Test_Handler_SecondLoginInvalidatesFirst(t *testing.T) {
	api := newTestAPI(t)
	first := api.session("robot")
	second := api.login("robot", "secret")

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, "/shops", first, "", "").Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/shops", second, "", "").Code)
}

func Test_Handler_Products(t *testing.T) {
	api := newTestAPI(t)
	token := api.session("robot")

	// create
	rr := api.form(http.MethodPost, "/products", token, url.Values{
		"name": {"Milk"}, "description": {"Fresh"}, "category": {"Dairy"}, "tags": {"milk", "fresh"},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"id":1,"name":"Milk","description":"Fresh","category":"Dairy","tags":["milk","fresh"],"withdrawn":false}`, rr.Body.String())

	rr = api.json(http.MethodPost, "/products", token, `{"name":"Bread","category":"Bakery"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// list
	rr = api.do(http.MethodGet, "/products?status=ACTIVE&sort=id|ASC&start=0&count=10", token, "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"start":0,"count":10,"total":2,"products":[
		{"id":1,"name":"Milk","description":"Fresh","category":"Dairy","tags":["milk","fresh"],"withdrawn":false},
		{"id":2,"name":"Bread","description":"","category":"Bakery","tags":[],"withdrawn":false}]}`, rr.Body.String())

	rr = api.do(http.MethodGet, "/products?start=5&count=10", token, "", "")
	assert.JSONEq(t, `{"start":5,"count":10,"total":2,"products":[]}`, rr.Body.String())

	// put resets omitted fields
	rr = api.json(http.MethodPut, "/products/1", token, `{"name":"Cream"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id":1,"name":"Cream","description":"","category":"","tags":[],"withdrawn":false}`, rr.Body.String())

	// patch keeps them
	rr = api.form(http.MethodPatch, "/products/2", token, url.Values{"description": {"Rye"}})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id":2,"name":"Bread","description":"Rye","category":"Bakery","tags":[],"withdrawn":false}`, rr.Body.String())

	rr = api.json(http.MethodPatch, "/products/2", token, `{"colour":"red","withdrawn":true}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"kind":"ValidationError","error":"validation failed","validation_errors":{"colour":"unknown field","withdrawn":"read-only field"}}`, rr.Body.String())

	rr = api.json(http.MethodPatch, "/products/2", token, `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"kind":"ValidationError","error":"validation failed","validation_errors":{"body":"at least one field is required"}}`, rr.Body.String())

	rr = api.json(http.MethodPatch, "/products/2", token, `{"name":null}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "a merged product without a name is invalid")

	// withdraw
	rr = api.do(http.MethodDelete, "/products/1", token, "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"OK"}`, rr.Body.String())

	rr = api.do(http.MethodGet, "/products/1", token, "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"kind":"NotFound","error":"product not found"}`, rr.Body.String())

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, "/products/1", token, "", "").Code)
	assert.Equal(t, http.StatusNotFound, api.json(http.MethodPut, "/products/1", token, `{"name":"X"}`).Code)

	rr = api.do(http.MethodGet, "/products", token, "", "")
	assert.JSONEq(t, `{"start":0,"count":20,"total":1,"products":[
		{"id":2,"name":"Bread","description":"Rye","category":"Bakery","tags":[],"withdrawn":false}]}`, rr.Body.String())

	rr = api.do(http.MethodGet, "/products?status=WITHDRAWN", token, "", "")
	assert.JSONEq(t, `{"start":0,"count":20,"total":1,"products":[
		{"id":1,"name":"Cream","description":"","category":"","tags":[],"withdrawn":true}]}`, rr.Body.String())

	rr = api.do(http.MethodGet, "/products?status=ALL&sort=name|ASC", token, "", "")
	var page service.ProductPage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	require.Len(t, page.Products, 2)
	assert.Equal(t, "Bread", page.Products[0].Name)
	assert.Equal(t, "Cream", page.Products[1].Name)
}

func Test_Handler_ListValidation(t *testing.T) {
	api := newTestAPI(t)
	token := api.session("robot")

	testCases := []struct {
		name       string
		query      string
		wantFields []string
	}{
		{name: "negative start", query: "start=-1", wantFields: []string{"start"}},
		{name: "zero count", query: "count=0", wantFields: []string{"count"}},
		{name: "count above limit", query: "count=101", wantFields: []string{"count"}},
		{name: "not a number", query: "count=ten", wantFields: []string{"count"}},
		{name: "unknown status", query: "status=GONE", wantFields: []string{"status"}},
		{name: "unknown sort field", query: "sort=price|ASC", wantFields: []string{"sort"}},
		{name: "unknown direction", query: "sort=id|UP", wantFields: []string{"sort"}},
		{name: "everything at once", query: "start=-1&status=GONE&sort=x", wantFields: []string{"sort", "start", "status"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			rr := api.do(http.MethodGet, "/shops?"+tc.query, token, "", "")

			// then
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			var body struct {
				Kind             string            `json:"kind"`
				ValidationErrors map[string]string `json:"validation_errors"`
			}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, "ValidationError", body.Kind)
			fields := make([]string, 0, len(body.ValidationErrors))
			for field := range body.ValidationErrors {
				fields = append(fields, field)
			}
			assert.ElementsMatch(t, tc.wantFields, fields)
		})
	}
}

func Test_Handler_BodyValidation(t *testing.T) {
	api := newTestAPI(t)
	token := api.session("robot")
	require.Equal(t, http.StatusOK, api.json(http.MethodPost, "/products", token, `{"name":"Milk"}`).Code)
	require.Equal(t, http.StatusOK, api.json(http.MethodPost, "/shops", token, `{"name":"Corner","lat":1,"lng":2}`).Code)

	testCases := []struct {
		name     string
		method   string
		path     string
		body     string
		wantBody string
	}{
		{
			name:     "whitespace only product tag",
			method:   http.MethodPost,
			path:     "/products",
			body:     `{"name":"A","tags":[" ","x"]}`,
			wantBody: `{"kind":"ValidationError","error":"validation failed","validation_errors":{"tags[0]":"failed on rule: required"}}`,
		},
		{
			name:     "whitespace only shop tag on patch",
			method:   http.MethodPatch,
			path:     "/shops/1",
			body:     `{"tags":["open","  "]}`,
			wantBody: `{"kind":"ValidationError","error":"validation failed","validation_errors":{"tags[1]":"failed on rule: required"}}`,
		},
		{
			name:     "price above the stored precision",
			method:   http.MethodPost,
			path:     "/prices",
			body:     `{"productId":1,"shopId":1,"date":"2024-01-01","price":123456789012.5}`,
			wantBody: `{"kind":"ValidationError","error":"validation failed","validation_errors":{"price":"failed on rule: lte"}}`,
		},
		{
			name:     "trailing garbage after the object",
			method:   http.MethodPost,
			path:     "/products",
			body:     `{"name":"B"} trailing-garbage`,
			wantBody: `{"kind":"ValidationError","error":"validation failed","validation_errors":{"body":"malformed request body"}}`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			rr := api.json(tc.method, tc.path, token, tc.body)

			// then
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.JSONEq(t, tc.wantBody, rr.Body.String())
		})
	}

	rr := api.do(http.MethodGet, "/products", token, "", "")
	assert.JSONEq(t, `{"start":0,"count":20,"total":1,"products":[
		{"id":1,"name":"Milk","description":"","category":"","tags":[],"withdrawn":false}]}`, rr.Body.String())
}

func Test_Handler_Shops(t *testing.T) {
	api := newTestAPI(t)
	token := api.session("robot")

	rr := api.form(http.MethodPost, "/shops", token, url.Values{
		"name": {"Corner"}, "address": {"Main 1"}, "lat": {"37.97"}, "lng": {"23.72"}, "tags": {"open"},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"id":1,"name":"Corner","address":"Main 1","lat":37.97,"lng":23.72,"tags":["open"],"withdrawn":false}`, rr.Body.String())

	testCases := []struct {
		name     string
		method   string
		body     string
		wantCode int
		wantBody string
	}{
		{
			name:     "put without coordinates",
			method:   http.MethodPut,
			body:     `{"name":"Corner"}`,
			wantCode: http.StatusBadRequest,
			wantBody: `{"kind":"ValidationError","error":"validation failed","validation_errors":{"lat":"failed on rule: required","lng":"failed on rule: required"}}`,
		},
		{
			name:     "put with longitude out of range",
			method:   http.MethodPut,
			body:     `{"name":"Corner","lat":10,"lng":420}`,
			wantCode: http.StatusBadRequest,
			wantBody: `{"kind":"ValidationError","error":"validation failed","validation_errors":{"lng":"failed on rule: longitude"}}`,
		},
		{
			name:     "patch with latitude out of range",
			method:   http.MethodPatch,
			body:     `{"lat":99}`,
			wantCode: http.StatusBadRequest,
			wantBody: `{"kind":"ValidationError","error":"validation failed","validation_errors":{"lat":"failed on rule: latitude"}}`,
		},
		{
			name:     "patch with a string latitude",
			method:   http.MethodPatch,
			body:     `{"lat":"north"}`,
			wantCode: http.StatusBadRequest,
			wantBody: `{"kind":"ValidationError","error":"validation failed","validation_errors":{"lat":"invalid value type"}}`,
		},
		{
			name:     "patch keeps the other fields",
			method:   http.MethodPatch,
			body:     `{"lat":45.5}`,
			wantCode: http.StatusOK,
			wantBody: `{"id":1,"name":"Corner","address":"Main 1","lat":45.5,"lng":23.72,"tags":["open"],"withdrawn":false}`,
		},
		{
			name:     "put resets address and tags",
			method:   http.MethodPut,
			body:     `{"name":"Corner","lat":1,"lng":2}`,
			wantCode: http.StatusOK,
			wantBody: `{"id":1,"name":"Corner","address":"","lat":1,"lng":2,"tags":[],"withdrawn":false}`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			rr := api.json(tc.method, "/shops/1", token, tc.body)

			// then
			assert.Equal(t, tc.wantCode, rr.Code)
			assert.JSONEq(t, tc.wantBody, rr.Body.String())
		})
	}

	rr = api.do(http.MethodGet, "/shops/abc", token, "", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"kind":"ValidationError","error":"Invalid ID: abc","validation_errors":{"id":"must be a positive integer"}}`, rr.Body.String())
}

func Test_Handler_Prices(t *testing.T) {
	api := newTestAPI(t)
	token := api.session("robot")
	require.Equal(t, http.StatusOK, api.json(http.MethodPost, "/products", token, `{"name":"Milk","tags":["dairy"]}`).Code)
	require.Equal(t, http.StatusOK, api.json(http.MethodPost, "/products", token, `{"name":"Bread"}`).Code)
	require.Equal(t, http.StatusOK, api.json(http.MethodPost, "/shops", token, `{"name":"Corner","address":"Main 1","lat":1,"lng":2}`).Code)

	// same compound key twice keeps one record
	rr := api.form(http.MethodPost, "/prices", token, url.Values{
		"productId": {"1"}, "shopId": {"1"}, "date": {"2024-01-01"}, "price": {"5"},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"prices":[{"productId":1,"shopId":1,"date":"2024-01-01","price":5}]}`, rr.Body.String())

	rr = api.json(http.MethodPost, "/prices", token, `{"productId":1,"shopId":1,"date":"2024-01-01","price":7}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = api.do(http.MethodGet, "/prices?products=1", token, "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"start":0,"count":20,"total":1,"prices":[{"productId":1,"shopId":1,"date":"2024-01-01","price":7,
		"productName":"Milk","productTags":["dairy"],"shopName":"Corner","shopAddress":"Main 1","shopTags":[]}]}`, rr.Body.String())

	// a range stores one record per day
	rr = api.json(http.MethodPost, "/prices", token, `{"productId":2,"shopId":1,"dateFrom":"2024-02-01","dateTo":"2024-02-03","price":1.239}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"prices":[
		{"productId":2,"shopId":1,"date":"2024-02-01","price":1.24},
		{"productId":2,"shopId":1,"date":"2024-02-02","price":1.24},
		{"productId":2,"shopId":1,"date":"2024-02-03","price":1.24}]}`, rr.Body.String())

	rr = api.do(http.MethodGet, "/prices?shops[]=1&dateFrom=2024-02-02&dateTo=2024-02-10&sort=date|DESC", token, "", "")
	var page service.PricePage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Prices, 2)
	assert.Equal(t, "2024-02-03", page.Prices[0].Date)
	assert.Equal(t, "2024-02-02", page.Prices[1].Date)

	rr = api.do(http.MethodGet, "/prices?tags=dairy", token, "", "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.Total)

	// rejected submissions
	testCases := []struct {
		name     string
		body     string
		wantBody string
	}{
		{
			name:     "unknown product",
			body:     `{"productId":9,"shopId":1,"date":"2024-01-01","price":5}`,
			wantBody: `{"kind":"ValidationError","error":"validation failed","validation_errors":{"productId":"unknown or withdrawn product"}}`,
		},
		{
			name:     "non positive price",
			body:     `{"productId":1,"shopId":1,"date":"2024-01-01","price":0}`,
			wantBody: `{"kind":"ValidationError","error":"validation failed","validation_errors":{"price":"failed on rule: required"}}`,
		},
		{
			name:     "date and range",
			body:     `{"productId":1,"shopId":1,"date":"2024-01-01","dateFrom":"2024-01-01","dateTo":"2024-01-02","price":5}`,
			wantBody: `{"kind":"ValidationError","error":"validation failed","validation_errors":{"date":"use either date or dateFrom and dateTo"}}`,
		},
		{
			name:     "malformed json",
			body:     `{"productId":`,
			wantBody: `{"kind":"ValidationError","error":"validation failed","validation_errors":{"body":"malformed request body"}}`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := api.json(http.MethodPost, "/prices", token, tc.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.JSONEq(t, tc.wantBody, rr.Body.String())
		})
	}

	// withdrawn products hide their prices
	require.Equal(t, http.StatusOK, api.do(http.MethodDelete, "/products/1", token, "", "").Code)
	rr = api.do(http.MethodGet, "/prices?products=1", token, "", "")
	assert.JSONEq(t, `{"start":0,"count":20,"total":0,"prices":[]}`, rr.Body.String())
	rr = api.do(http.MethodGet, "/prices?products=1&status=WITHDRAWN", token, "", "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.Total)
}

func Test_Handler_FindUserRequiresAdmin(t *testing.T) {
	api := newTestAPI(t)
	token := api.session("robot")
	created, err := api.auth.EnsureAdmin(context.Background(), "admin", "admin-secret")
	require.NoError(t, err)
	require.True(t, created)
	adminToken := api.login("admin", "admin-secret")

	rr := api.do(http.MethodGet, "/users/robot", token, "", "")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.JSONEq(t, `{"kind":"Forbidden","error":"admin privileges required"}`, rr.Body.String())

	rr = api.do(http.MethodGet, "/users/robot", adminToken, "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id":1,"username":"robot","email":"","isAdmin":false,"token":null,"sessionActive":true}`, rr.Body.String())

	rr = api.do(http.MethodGet, "/users/nobody", adminToken, "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// mockAuthService accepts every token as the identity it holds.
type mockAuthService struct {
	service.AuthService
	identity service.Identity
}

func (m *mockAuthService) Authenticate(_ context.Context, _ string) (*service.Identity, error) {
	return &m.identity, nil
}

// mockProductService fails every call with error.
type mockProductService struct {
	error error
}

func (m *mockProductService) List(_ context.Context, _ query.Params) (*service.ProductPage, error) {
	return nil, m.error
}

func (m *mockProductService) Create(_ context.Context, _ mutation.ProductReplace) (*service.ProductDto, error) {
	return nil, m.error
}

func (m *mockProductService) FindByID(_ context.Context, _ int64) (*service.ProductDto, error) {
	return nil, m.error
}

func (m *mockProductService) Replace(_ context.Context, _ int64, _ mutation.ProductReplace) (*service.ProductDto, error) {
	return nil, m.error
}

func (m *mockProductService) Merge(_ context.Context, _ int64, _ mutation.ProductPatch) (*service.ProductDto, error) {
	return nil, m.error
}

func (m *mockProductService) Withdraw(_ context.Context, _ service.Identity, _ int64) error {
	return m.error
}

func Test_Handler_ErrorMapping(t *testing.T) {
	testCases := []struct {
		name         string
		error        error
		expectedCode int
		expectedBody string
	}{
		{
			name:         "conflict",
			error:        catalogerrors.ErrConflict,
			expectedCode: http.StatusConflict,
			expectedBody: `{"kind":"Conflict","error":"concurrent modification, retry the request"}`,
		},
		{
			name:         "wrapped not found",
			error:        errors.Join(errors.New("lookup"), catalogerrors.ErrProductNotFound),
			expectedCode: http.StatusNotFound,
			expectedBody: `{"kind":"NotFound","error":"product not found"}`,
		},
		{
			name:         "storage failure is not leaked",
			error:        errors.Join(catalogerrors.ErrFindProduct, errors.New("connection refused")),
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"kind":"InternalError","error":"Internal server error"}`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			h := NewHandler(&mockAuthService{}, &mockProductService{error: tc.error}, nil, nil, 0, discardLogger)
			r := chi.NewRouter()
			h.RegisterRoutes(r)
			req := httptest.NewRequest(http.MethodGet, BasePath+"/products/1", nil)
			rr := httptest.NewRecorder()

			// when
			r.ServeHTTP(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
		})
	}
}
