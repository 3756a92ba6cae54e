package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/fjod/go_cart/merchant-api/internal/domain"
	"github.com/fjod/go_cart/merchant-api/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// ProductLookup resolves catalog products by SKU.
type ProductLookup interface {
	ProductBySKU(sku string) (domain.Product, bool)
}

type CartService struct {
	repo     repository.CartRepository
	products ProductLookup
	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger
	locks    keyLock
	sfg      singleflight.Group // collapses concurrent loads of one cart
}

type CartOption func(*CartService)

// WithCartClock replaces time.Now for timestamps and expiry.
func WithCartClock(now func() time.Time) CartOption {
	return func(s *CartService) { s.now = now }
}

func NewCartService(repo repository.CartRepository, products ProductLookup, ttl time.Duration, logger *slog.Logger, opts ...CartOption) *CartService {
	s := &CartService{
		repo:     repo,
		products: products,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrUpdate replaces the lines of the live cart existingID, or creates a
// new cart when existingID is empty, unknown or expired. created reports
// which one happened. Every line is validated before anything is written.
func (s *CartService) CreateOrUpdate(ctx context.Context, items []domain.LineItem, existingID string) (*domain.Cart, bool, error) {
	lines, err := s.buildLines(items)
	if err != nil {
		return nil, false, err
	}

	now := s.now()
	cart := &domain.Cart{
		ID:        uuid.NewString(),
		CreatedAt: now,
	}
	created := true

	if existingID != "" {
		unlock := s.locks.lock(existingID)
		defer unlock()

		existing, err := s.repo.Get(ctx, existingID)
		switch {
		case err == nil:
			cart.ID = existing.ID
			cart.CreatedAt = existing.CreatedAt
			created = false
		case errors.Is(err, repository.ErrCartNotFound):
			// unknown or expired, a new cart is created
		default:
			s.logger.ErrorContext(ctx, "cart load failed", "cart_id", existingID, "error", err)
			return nil, false, fmt.Errorf("load cart %s: %w", existingID, err)
		}
	}

	cart.Items = lines
	s.touch(cart, now)
	if err := s.save(ctx, cart); err != nil {
		return nil, false, err
	}
	return cart, created, nil
}

// buildLines merges duplicate SKUs and snapshots each product.
func (s *CartService) buildLines(items []domain.LineItem) ([]domain.CartItem, error) {
	order := make([]string, 0, len(items))
	quantities := make(map[string]int, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, domain.Errorf(domain.ErrInvalidQuantity, "Quantity for %s must be at least 1", item.SKU)
		}
		if _, seen := quantities[item.SKU]; !seen {
			order = append(order, item.SKU)
		}
		if quantities[item.SKU] > math.MaxInt-item.Quantity {
			// the sum is above any stock level; keep it from wrapping
			quantities[item.SKU] = math.MaxInt
			continue
		}
		quantities[item.SKU] += item.Quantity
	}

	lines := make([]domain.CartItem, 0, len(order))
	for _, sku := range order {
		product, err := s.productFor(sku, quantities[sku])
		if err != nil {
			return nil, err
		}
		lines = append(lines, snapshot(product, quantities[sku]))
	}
	return lines, nil
}

// productFor resolves sku and checks that quantity units are in stock.
func (s *CartService) productFor(sku string, quantity int) (domain.Product, error) {
	product, ok := s.products.ProductBySKU(sku)
	if !ok {
		return domain.Product{}, domain.Errorf(domain.ErrProductNotFound, "Product with SKU %s not found", sku)
	}
	if product.Stock < quantity {
		return domain.Product{}, domain.Errorf(domain.ErrInsufficientStock,
			"Insufficient stock for %s. Available: %d", product.Name, product.Stock).
			WithDetails(map[string]any{"sku": sku, "requested": quantity, "available": product.Stock})
	}
	return product, nil
}

func snapshot(p domain.Product, quantity int) domain.CartItem {
	return domain.CartItem{
		SKU:       p.SKU,
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  quantity,
		Image:     p.PrimaryImage(),
	}
}

// Get returns a live cart. Reads never extend the expiry.
func (s *CartService) Get(ctx context.Context, cartID string) (*domain.Cart, error) {
	// waiters share this load, so it outlives the first caller's cancellation
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := s.sfg.Do(cartID, func() (interface{}, error) {
		return s.repo.Get(loadCtx, cartID)
	})
	if errors.Is(err, repository.ErrCartNotFound) {
		return nil, domain.ErrCartNotFound
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "cart get failed", "cart_id", cartID, "error", err)
		return nil, fmt.Errorf("get cart %s: %w", cartID, err)
	}
	// the loaded value may be shared with other callers
	return v.(*domain.Cart).Clone(), nil
}

// UpdateItem sets the quantity of one line; zero removes it.
func (s *CartService) UpdateItem(ctx context.Context, cartID, sku string, quantity int) (*domain.Cart, error) {
	if quantity < 0 {
		return nil, domain.Errorf(domain.ErrInvalidQuantity, "Quantity for %s must not be negative", sku)
	}

	unlock := s.locks.lock(cartID)
	defer unlock()

	cart, err := s.repo.Get(ctx, cartID)
	if errors.Is(err, repository.ErrCartNotFound) {
		return nil, domain.ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cart %s: %w", cartID, err)
	}

	if quantity == 0 {
		kept := cart.Items[:0]
		for _, item := range cart.Items {
			if item.SKU != sku {
				kept = append(kept, item)
			}
		}
		cart.Items = kept
	} else {
		product, err := s.productFor(sku, quantity)
		if err != nil {
			return nil, err
		}
		updated := false
		for i := range cart.Items {
			if cart.Items[i].SKU == sku {
				cart.Items[i].Quantity = quantity
				updated = true
				break
			}
		}
		if !updated {
			cart.Items = append(cart.Items, snapshot(product, quantity))
		}
	}

	s.touch(cart, s.now())
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Delete reports whether a live cart was removed.
func (s *CartService) Delete(ctx context.Context, cartID string) (bool, error) {
	unlock := s.locks.lock(cartID)
	defer unlock()

	deleted, err := s.repo.Delete(ctx, cartID)
	if err != nil {
		s.logger.ErrorContext(ctx, "cart delete failed", "cart_id", cartID, "error", err)
		return false, fmt.Errorf("delete cart %s: %w", cartID, err)
	}
	s.sfg.Forget(cartID)
	return deleted, nil
}

// Total is the sum of price x quantity over the cart lines.
func (s *CartService) Total(cart *domain.Cart) decimal.Decimal {
	return cart.Subtotal()
}

func (s *CartService) ItemCount(cart *domain.Cart) int {
	return cart.ItemCount()
}

func (s *CartService) touch(cart *domain.Cart, now time.Time) {
	cart.UpdatedAt = now
	cart.ExpiresAt = now.Add(s.ttl)
}

func (s *CartService) save(ctx context.Context, cart *domain.Cart) error {
	if err := s.repo.Save(ctx, cart); err != nil {
		s.logger.ErrorContext(ctx, "cart save failed", "cart_id", cart.ID, "error", err)
		return fmt.Errorf("save cart %s: %w", cart.ID, err)
	}
	s.sfg.Forget(cart.ID)
	return nil
}
