package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is the SKU/quantity pair clients send for carts and quotes.
type LineItem struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// CartItem is a product snapshot taken when the line was added.
type CartItem struct {
	SKU       string          `json:"sku"`
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image"`
}

type Cart struct {
	ID        string     `json:"cartId"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

// IsExpired checks the cart against now.
func (c *Cart) IsExpired(now time.Time) bool {
	return c.ExpiresAt.Before(now)
}

// Subtotal is the sum of price x quantity over all lines, without tax or shipping.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// LineItems projects the cart onto SKU/quantity pairs.
func (c *Cart) LineItems() []LineItem {
	items := make([]LineItem, len(c.Items))
	for i, item := range c.Items {
		items[i] = LineItem{SKU: item.SKU, Quantity: item.Quantity}
	}
	return items
}

// Clone returns a deep copy so stores never hand out shared slices.
func (c *Cart) Clone() *Cart {
	cp := *c
	cp.Items = make([]CartItem, len(c.Items))
	copy(cp.Items, c.Items)
	return &cp
}
