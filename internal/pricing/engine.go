// Package pricing quotes carts: subtotal, coupon discount, flat rate tax and
// shipping.
package pricing

import (
	"fmt"

	"github.com/fjod/go_cart/merchant-api/internal/domain"
	"github.com/fjod/go_cart/merchant-api/internal/shipping"
	"github.com/shopspring/decimal"
)

// DefaultItemWeight is used for products without a catalog weight.
const DefaultItemWeight = 150 // grams

var hundred = decimal.NewFromInt(100)

// Catalog is the read side the engine needs.
type Catalog interface {
	ProductBySKU(sku string) (domain.Product, bool)
	Coupon(code string) (domain.Coupon, bool)
	Coupons() []domain.Coupon
}

type Engine struct {
	catalog  Catalog
	shipping *shipping.Calculator
	taxRate  decimal.Decimal
}

// NewEngine takes the tax rate in percent, e.g. 8 for 8%.
func NewEngine(catalog Catalog, calc *shipping.Calculator, taxPercent decimal.Decimal) *Engine {
	return &Engine{
		catalog:  catalog,
		shipping: calc,
		taxRate:  taxPercent.Div(hundred),
	}
}

type pricedLine struct {
	product  domain.Product
	quantity int
	amount   decimal.Decimal
}

func (e *Engine) priceLines(items []domain.LineItem) ([]pricedLine, decimal.Decimal, error) {
	lines := make([]pricedLine, 0, len(items))
	subtotal := decimal.Zero
	for _, item := range items {
		product, ok := e.catalog.ProductBySKU(item.SKU)
		if !ok {
			return nil, decimal.Zero, domain.Errorf(domain.ErrProductNotFound, "Product %s not found", item.SKU)
		}
		amount := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(amount)
		lines = append(lines, pricedLine{product: product, quantity: item.Quantity, amount: amount})
	}
	return lines, subtotal, nil
}

// Quote prices items with the given shipping cost and optional coupon.
// Unknown coupon codes are ignored.
func (e *Engine) Quote(items []domain.LineItem, shippingCost decimal.Decimal, couponCode string) (domain.PricingBreakdown, error) {
	lines, subtotal, err := e.priceLines(items)
	if err != nil {
		return domain.PricingBreakdown{}, err
	}

	discount := decimal.Zero
	if couponCode != "" {
		if coupon, ok := e.catalog.Coupon(couponCode); ok {
			var freeShipping bool
			discount, freeShipping, err = applyCoupon(coupon, lines, subtotal)
			if err != nil {
				return domain.PricingBreakdown{}, err
			}
			if freeShipping {
				shippingCost = decimal.Zero
			}
		}
	}

	discount = domain.Round2(discount)
	shippingCost = domain.Round2(shippingCost)
	tax := domain.Round2(subtotal.Sub(discount).Mul(e.taxRate))
	subtotal = domain.Round2(subtotal)

	return domain.PricingBreakdown{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shippingCost,
		Discount: discount,
		Total:    subtotal.Sub(discount).Add(tax).Add(shippingCost),
	}, nil
}

func applyCoupon(coupon domain.Coupon, lines []pricedLine, subtotal decimal.Decimal) (decimal.Decimal, bool, error) {
	if coupon.MinOrderAmount != nil && subtotal.LessThan(*coupon.MinOrderAmount) {
		return decimal.Zero, false, domain.Errorf(domain.ErrCouponMinNotMet,
			"Coupon requires minimum order of $%s", coupon.MinOrderAmount)
	}

	base := subtotal
	if coupon.BrandRestricted() {
		base = decimal.Zero
		for _, line := range lines {
			if coupon.AppliesTo(line.product.Brand) {
				base = base.Add(line.amount)
			}
		}
		if base.IsZero() {
			return decimal.Zero, false, domain.ErrCouponNotApplicable
		}
	}

	switch coupon.Type {
	case domain.CouponPercentage:
		return base.Mul(coupon.Value).Div(hundred), false, nil
	case domain.CouponFixed:
		return decimal.Min(coupon.Value, base), false, nil
	case domain.CouponFreeShipping:
		return decimal.Zero, true, nil
	default:
		return decimal.Zero, false, fmt.Errorf("coupon %s: unknown type %q", coupon.Code, coupon.Type)
	}
}

// ValidateCoupon answers whether code could be applied to an order of subtotal.
func (e *Engine) ValidateCoupon(code string, subtotal decimal.Decimal) domain.CouponValidation {
	coupon, ok := e.catalog.Coupon(code)
	if !ok {
		return domain.CouponValidation{Valid: false, Message: "Invalid coupon code"}
	}
	if coupon.MinOrderAmount != nil && subtotal.LessThan(*coupon.MinOrderAmount) {
		return domain.CouponValidation{
			Valid:   false,
			Message: fmt.Sprintf("Requires minimum order of $%s", coupon.MinOrderAmount),
		}
	}
	return domain.CouponValidation{Valid: true}
}

func (e *Engine) Coupons() []domain.Coupon {
	return e.catalog.Coupons()
}

// DestinationQuote is a breakdown together with every shipping option for
// the destination it was priced against.
type DestinationQuote struct {
	Pricing         domain.PricingBreakdown `json:"pricing"`
	ShippingOptions []domain.ShippingRate   `json:"shippingOptions,omitempty"`
}

// QuoteWithDestination prices items, quoting shipping at the destination's
// default tier. Without a destination shipping is zero.
func (e *Engine) QuoteWithDestination(items []domain.LineItem, couponCode string, dest *domain.Destination) (DestinationQuote, error) {
	lines, subtotal, err := e.priceLines(items)
	if err != nil {
		return DestinationQuote{}, err
	}

	shippingCost := decimal.Zero
	var options []domain.ShippingRate
	if dest != nil && dest.Country != "" {
		options = e.shipping.Rates(dest.Country, parcelWeight(lines), subtotal)
		shippingCost = shipping.DefaultCost(options)
	}

	breakdown, err := e.Quote(items, shippingCost, couponCode)
	if err != nil {
		return DestinationQuote{}, err
	}
	return DestinationQuote{Pricing: breakdown, ShippingOptions: options}, nil
}

func parcelWeight(lines []pricedLine) int {
	grams := 0
	for _, line := range lines {
		w := line.product.Weight
		if w <= 0 {
			w = DefaultItemWeight
		}
		grams += w * line.quantity
	}
	return grams
}
