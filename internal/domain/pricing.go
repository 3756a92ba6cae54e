package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

type PricingBreakdown struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

type CouponType string

const (
	CouponPercentage   CouponType = "percentage"
	CouponFixed        CouponType = "fixed"
	CouponFreeShipping CouponType = "free_shipping"
)

type Coupon struct {
	Code             string           `json:"code"`
	Type             CouponType       `json:"type"`
	Value            decimal.Decimal  `json:"value"`
	MinOrderAmount   *decimal.Decimal `json:"minOrderAmount,omitempty"`
	ApplicableBrands []string         `json:"applicableBrands,omitempty"`
	Description      string           `json:"description"`
}

// AppliesTo reports whether the coupon's brand allow-list admits brand.
// Coupons without a list admit every brand.
func (c Coupon) AppliesTo(brand string) bool {
	if len(c.ApplicableBrands) == 0 {
		return true
	}
	for _, b := range c.ApplicableBrands {
		if b == brand {
			return true
		}
	}
	return false
}

func (c Coupon) BrandRestricted() bool {
	return len(c.ApplicableBrands) > 0
}

func (c Coupon) Matches(code string) bool {
	return strings.EqualFold(c.Code, code)
}

// CouponValidation is the non failing answer of a coupon check.
type CouponValidation struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}
