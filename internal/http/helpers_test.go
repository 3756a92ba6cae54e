package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fjod/go_cart/merchant-api/internal/catalog"
	"github.com/fjod/go_cart/merchant-api/internal/domain"
	"github.com/fjod/go_cart/merchant-api/internal/events"
	"github.com/fjod/go_cart/merchant-api/internal/pricing"
	"github.com/fjod/go_cart/merchant-api/internal/repository"
	"github.com/fjod/go_cart/merchant-api/internal/service"
	"github.com/fjod/go_cart/merchant-api/internal/shipping"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Error   *ErrorDetail    `json:"error"`
}

type testServer struct {
	handler http.Handler
	outbox  *events.Outbox
	orders  *service.OrderService
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupCatalog(t *testing.T) *catalog.Store {
	t.Helper()
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	products := []domain.Product{
		{ID: "prod_001", SKU: "W-001", Name: "Omega Seamaster", Slug: "omega-seamaster", Brand: "Omega", Price: decimal.NewFromInt(100), Stock: 5, Rating: 4.8, Categories: []string{"Dive"}, Tags: []string{"bestseller"}, CreatedAt: created},
		{ID: "prod_002", SKU: "W-002", Name: "Seiko Presage", Slug: "seiko-presage", Brand: "Seiko", Price: decimal.NewFromInt(50), Stock: 0, Rating: 4.5, Categories: []string{"Dress"}, CreatedAt: created.Add(time.Hour)},
		{ID: "prod_003", SKU: "W-003", Name: "Tissot PRX", Slug: "tissot-prx", Brand: "Tissot", Price: decimal.RequireFromString("25.50"), Stock: 3, Rating: 4.2, Categories: []string{"Dress"}, CreatedAt: created.Add(2 * time.Hour)},
	}
	brands := []domain.Brand{{ID: "brand_001", Name: "Omega", Slug: "omega"}}
	coupons := []domain.Coupon{
		{Code: "WELCOME10", Type: domain.CouponPercentage, Value: decimal.NewFromInt(10)},
		{Code: "OMEGA15", Type: domain.CouponPercentage, Value: decimal.NewFromInt(15), ApplicableBrands: []string{"Omega"}},
	}
	rates := map[string][]domain.RateTier{
		"US": {
			{Carrier: "USPS", Service: "Standard", Base: decimal.NewFromInt(10), PerKg: decimal.Zero, Days: "5-7 business days"},
			{Carrier: "UPS", Service: "Express", Base: decimal.NewFromInt(20), PerKg: decimal.NewFromInt(5), Days: "2-3 business days"},
		},
	}
	store, err := catalog.New(products, brands, coupons, rates)
	require.NoError(t, err)
	return store
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	cat := setupCatalog(t)
	cartStore := repository.NewMemoryCartStore(repository.WithCleanupInterval(0))
	t.Cleanup(func() { cartStore.Close() })
	orderStore := repository.NewMemoryOrderStore()
	outbox := events.NewOutbox(0)
	calc := shipping.NewCalculator(cat)
	engine := pricing.NewEngine(cat, calc, decimal.NewFromInt(8))

	carts := service.NewCartService(cartStore, cat, time.Hour, discardLogger())
	orders := service.NewOrderService(service.OrderServiceConfig{
		Carts:    carts,
		Pricing:  engine,
		Shipping: calc,
		Orders:   orderStore,
		Returns:  orderStore,
		Events:   outbox,
		Logger:   discardLogger(),
	})

	handler, err := NewRouter(Services{
		Catalog:   cat,
		Carts:     carts,
		Mandates:  service.NewMandateService(carts, service.AcceptAllVerifier{}, "", outbox, discardLogger()),
		Pricing:   engine,
		Shipping:  calc,
		Inventory: service.NewInventoryService(cat),
		Orders:    orders,
	}, RouterConfig{
		BaseURL:            "http://merchant.test",
		CORSOrigins:        []string{"*"},
		RequestTimeout:     5 * time.Second,
		MaxRequestBodySize: 4096,
		Logger:             discardLogger(),
	})
	require.NoError(t, err)
	return &testServer{handler: handler, outbox: outbox, orders: orders}
}

func (s *testServer) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	s.handler.ServeHTTP(recorder, req)

	var env testEnvelope
	if recorder.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &env), recorder.Body.String())
	}
	return recorder, env
}

func decodeData(t *testing.T, env testEnvelope, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

// createCart posts items and returns the new cart id.
func (s *testServer) createCart(t *testing.T, items ...map[string]any) string {
	t.Helper()
	rec, env := s.do(t, http.MethodPost, "/api/v1/cart", map[string]any{"items": items})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var cart struct {
		CartID string `json:"cartId"`
	}
	decodeData(t, env, &cart)
	return cart.CartID
}

func item(sku string, qty int) map[string]any {
	return map[string]any{"sku": sku, "quantity": qty}
}

func orderBody(cartID, method string) map[string]any {
	return map[string]any{
		"cartId": cartID,
		"customer": map[string]any{
			"email": "ada@example.com", "firstName": "Ada", "lastName": "Lovelace",
		},
		"shipping": map[string]any{
			"address": map[string]any{
				"line1": "1 Main St", "city": "Springfield", "state": "IL", "postalCode": "62701", "country": "US",
			},
			"method": method,
		},
		"payment": map[string]any{"method": "card"},
	}
}
