package repository

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/merchant-api/internal/domain"
)

var (
	ErrCartNotFound   = errors.New("cart not found")
	ErrOrderNotFound  = errors.New("order not found")
	ErrReturnNotFound = errors.New("return not found")
	ErrDuplicateID    = errors.New("record with this id already exists")
)

// CartRepository stores carts until they expire.
// Consumers define this interface, not the storage implementation
type CartRepository interface {
	// Get returns ErrCartNotFound for missing and expired carts
	Get(ctx context.Context, cartID string) (*domain.Cart, error)
	// Save inserts or replaces the cart, keeping it until cart.ExpiresAt
	Save(ctx context.Context, cart *domain.Cart) error
	// Delete reports whether a live cart was removed
	Delete(ctx context.Context, cartID string) (bool, error)
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	// UpdateOrder applies fn to the stored order atomically; an error from fn
	// leaves the order untouched
	UpdateOrder(ctx context.Context, orderID string, fn func(*domain.Order) error) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	ListOrdersByEmail(ctx context.Context, email string) ([]*domain.Order, error)
}

type ReturnRepository interface {
	CreateReturn(ctx context.Context, ret *domain.ReturnRequest) error
	GetReturn(ctx context.Context, returnID string) (*domain.ReturnRequest, error)
	ListReturnsByOrder(ctx context.Context, orderID string) ([]*domain.ReturnRequest, error)
}
