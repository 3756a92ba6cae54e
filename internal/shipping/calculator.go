// Package shipping turns a destination, parcel weight and declared value into
// carrier rate options.
package shipping

import (
	"strings"

	"github.com/fjod/go_cart/merchant-api/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	// InsuranceThreshold is the declared value above which every tier is surcharged.
	InsuranceThreshold = decimal.NewFromInt(5000)
	// InsuranceRate applies to the part of the declared value above the threshold.
	InsuranceRate = decimal.RequireFromString("0.01")

	gramsPerKg = decimal.NewFromInt(1000)
)

// RateSource resolves the ordered rate tiers of a country, already applying
// any fallback table.
type RateSource interface {
	RateTiers(country string) ([]domain.RateTier, bool)
}

type Calculator struct {
	rates RateSource
}

func NewCalculator(rates RateSource) *Calculator {
	return &Calculator{rates: rates}
}

// Rates prices every tier of the destination's table in table order.
func (c *Calculator) Rates(country string, weightGrams int, declaredValue decimal.Decimal) []domain.ShippingRate {
	tiers, ok := c.rates.RateTiers(country)
	if !ok {
		return []domain.ShippingRate{}
	}

	weightKg := decimal.NewFromInt(int64(weightGrams)).Div(gramsPerKg)
	var insurance decimal.Decimal
	if declaredValue.GreaterThan(InsuranceThreshold) {
		insurance = declaredValue.Sub(InsuranceThreshold).Mul(InsuranceRate)
	}

	rates := make([]domain.ShippingRate, len(tiers))
	for i, tier := range tiers {
		cost := domain.Round2(tier.Base.Add(tier.PerKg.Mul(weightKg)))
		if !insurance.IsZero() {
			cost = domain.Round2(cost.Add(insurance))
		}
		rates[i] = domain.ShippingRate{
			Carrier:       tier.Carrier,
			Service:       tier.Service,
			Cost:          cost,
			EstimatedDays: tier.Days,
		}
	}
	return rates
}

// CostFor picks the first tier whose service name contains method, ignoring case.
func (c *Calculator) CostFor(country string, weightGrams int, declaredValue decimal.Decimal, method string) (decimal.Decimal, error) {
	for _, rate := range c.Rates(country, weightGrams, declaredValue) {
		if serviceMatches(rate.Service, method) {
			return rate.Cost, nil
		}
	}
	return decimal.Zero, domain.Errorf(domain.ErrShippingMethodUnavailable,
		"Shipping method '%s' not available for %s", method, country)
}

// ValidateMethod reports whether method names a tier of the destination's table.
func (c *Calculator) ValidateMethod(country, method string) bool {
	tiers, _ := c.rates.RateTiers(country)
	for _, tier := range tiers {
		if serviceMatches(tier.Service, method) {
			return true
		}
	}
	return false
}

// DefaultCost is the cost quoted when the customer has not picked a method yet:
// the standard tier, else the first one, else zero.
func DefaultCost(rates []domain.ShippingRate) decimal.Decimal {
	for _, rate := range rates {
		if serviceMatches(rate.Service, "standard") {
			return rate.Cost
		}
	}
	if len(rates) > 0 {
		return rates[0].Cost
	}
	return decimal.Zero
}

func serviceMatches(service, method string) bool {
	return strings.Contains(strings.ToLower(service), strings.ToLower(method))
}
