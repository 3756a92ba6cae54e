package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_cart/merchant-api/internal/catalog"
	"github.com/fjod/go_cart/merchant-api/internal/domain"
	"github.com/fjod/go_cart/merchant-api/internal/events"
	"github.com/fjod/go_cart/merchant-api/internal/pricing"
	"github.com/fjod/go_cart/merchant-api/internal/repository"
	"github.com/fjod/go_cart/merchant-api/internal/shipping"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const testTTL = 2 * time.Hour

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupCatalog(t *testing.T) *catalog.Store {
	t.Helper()
	products := []domain.Product{
		{ID: "prod_001", SKU: "W-001", Name: "Omega Seamaster", Brand: "Omega", Price: decimal.NewFromInt(100), Stock: 5, Images: []string{"/img/w1.jpg"}},
		{ID: "prod_002", SKU: "W-002", Name: "Seiko Presage", Brand: "Seiko", Price: decimal.NewFromInt(50), Stock: 0},
		{ID: "prod_003", SKU: "W-003", Name: "Tissot PRX", Brand: "Tissot", Price: decimal.RequireFromString("25.50"), Stock: 3},
		{ID: "prod_004", SKU: "W-004", Name: "Hamilton Khaki", Brand: "Hamilton", Price: decimal.NewFromInt(495), Stock: 12},
	}
	coupons := []domain.Coupon{
		{Code: "WELCOME10", Type: domain.CouponPercentage, Value: decimal.NewFromInt(10)},
	}
	rates := map[string][]domain.RateTier{
		"US": {
			{Carrier: "USPS", Service: "Standard", Base: decimal.NewFromInt(10), PerKg: decimal.Zero, Days: "5-7 business days"},
			{Carrier: "UPS", Service: "Express", Base: decimal.NewFromInt(20), PerKg: decimal.NewFromInt(5), Days: "2-3 business days"},
		},
	}
	store, err := catalog.New(products, nil, coupons, rates)
	require.NoError(t, err)
	return store
}

type cartFixture struct {
	clock   *fakeClock
	catalog *catalog.Store
	store   *repository.MemoryCartStore
	carts   *CartService
}

func setupCarts(t *testing.T) *cartFixture {
	t.Helper()
	clock := newFakeClock()
	store := repository.NewMemoryCartStore(repository.WithClock(clock.Now), repository.WithCleanupInterval(0))
	t.Cleanup(func() { store.Close() })

	cat := setupCatalog(t)
	return &cartFixture{
		clock:   clock,
		catalog: cat,
		store:   store,
		carts:   NewCartService(store, cat, testTTL, discardLogger(), WithCartClock(clock.Now)),
	}
}

type orderFixture struct {
	*cartFixture
	outbox *events.Outbox
	orders *OrderService
}

func setupOrders(t *testing.T, strict bool) *orderFixture {
	t.Helper()
	f := setupCarts(t)
	calc := shipping.NewCalculator(f.catalog)
	outbox := events.NewOutbox(0)
	orderStore := repository.NewMemoryOrderStore()

	return &orderFixture{
		cartFixture: f,
		outbox:      outbox,
		orders: NewOrderService(OrderServiceConfig{
			Carts:             f.carts,
			Pricing:           pricing.NewEngine(f.catalog, calc, decimal.NewFromInt(8)),
			Shipping:          calc,
			Orders:            orderStore,
			Returns:           orderStore,
			Events:            outbox,
			Logger:            discardLogger(),
			StrictTransitions: strict,
			Now:               f.clock.Now,
		}),
	}
}

// failingCartRepo fails every call with err.
type failingCartRepo struct {
	err error
}

func (r failingCartRepo) Get(context.Context, string) (*domain.Cart, error) { return nil, r.err }
func (r failingCartRepo) Save(context.Context, *domain.Cart) error          { return r.err }
func (r failingCartRepo) Delete(context.Context, string) (bool, error)      { return false, r.err }

var errStoreDown = errors.New("store down")

func money(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// setupCatalogWithBulkStock has ten products B-00..B-09 with plenty of stock.
func setupCatalogWithBulkStock(t *testing.T) *cartFixture {
	t.Helper()
	products := make([]domain.Product, 10)
	for i := range products {
		products[i] = domain.Product{
			ID:    fmt.Sprintf("bulk_%02d", i),
			SKU:   fmt.Sprintf("B-%02d", i),
			Price: decimal.NewFromInt(10),
			Stock: 100,
		}
	}
	cat, err := catalog.New(products, nil, nil, nil)
	require.NoError(t, err)

	f := setupCarts(t)
	f.catalog = cat
	f.carts = NewCartService(f.store, cat, testTTL, discardLogger(), WithCartClock(f.clock.Now))
	return f
}
