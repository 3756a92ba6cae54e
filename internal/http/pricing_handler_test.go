package http

import (
	"net/http"
	"testing"

	"github.com/fjod/go_cart/merchant-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type quoteBody struct {
	Subtotal        decimal.Decimal       `json:"subtotal"`
	Tax             decimal.Decimal       `json:"tax"`
	Shipping        decimal.Decimal       `json:"shipping"`
	Discount        decimal.Decimal       `json:"discount"`
	Total           decimal.Decimal       `json:"total"`
	ShippingOptions []domain.ShippingRate `json:"shippingOptions"`
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestQuote_WithDestination(t *testing.T) {
	srv := setupServer(t)

	rec, env := srv.do(t, http.MethodPost, "/api/v1/pricing/quote", map[string]any{
		"items":               []map[string]any{item("W-001", 2)},
		"shippingDestination": map[string]any{"country": "US"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var quote quoteBody
	decodeData(t, env, &quote)
	assertMoney(t, "200", quote.Subtotal)
	assertMoney(t, "0", quote.Discount)
	assertMoney(t, "16", quote.Tax)
	assertMoney(t, "10", quote.Shipping)
	assertMoney(t, "226", quote.Total)
	require.Len(t, quote.ShippingOptions, 2)
	assertMoney(t, "21.5", quote.ShippingOptions[1].Cost)
}

func TestQuote_Coupons(t *testing.T) {
	srv := setupServer(t)

	_, env := srv.do(t, http.MethodPost, "/api/v1/pricing/quote", map[string]any{
		"items":      []map[string]any{item("W-001", 2)},
		"couponCode": "welcome10",
	})
	var quote quoteBody
	decodeData(t, env, &quote)
	assertMoney(t, "20", quote.Discount)
	assertMoney(t, "14.4", quote.Tax)
	assertMoney(t, "0", quote.Shipping)
	assertMoney(t, "194.4", quote.Total)
	assert.Empty(t, quote.ShippingOptions)

	rec, env := srv.do(t, http.MethodPost, "/api/v1/pricing/quote", map[string]any{
		"items":      []map[string]any{item("W-003", 1)},
		"couponCode": "OMEGA15",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "COUPON_NOT_APPLICABLE", env.Error.Code)
}

func TestQuote_Validation(t *testing.T) {
	srv := setupServer(t)

	rec, env := srv.do(t, http.MethodPost, "/api/v1/pricing/quote", map[string]any{
		"items":               []map[string]any{item("W-001", 1)},
		"shippingDestination": map[string]any{"country": "USA"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, codeValidation, env.Error.Code)

	rec, env = srv.do(t, http.MethodPost, "/api/v1/pricing/quote", map[string]any{
		"items": []map[string]any{item("W-404", 1)},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "PRODUCT_NOT_FOUND", env.Error.Code)
}

func TestCoupons(t *testing.T) {
	srv := setupServer(t)

	_, env := srv.do(t, http.MethodGet, "/api/v1/pricing/coupons", nil)
	var coupons []domain.Coupon
	decodeData(t, env, &coupons)
	assert.Len(t, coupons, 2)

	_, env = srv.do(t, http.MethodPost, "/api/v1/pricing/coupons/validate", map[string]any{"code": "NOPE", "subtotal": 100})
	var validation domain.CouponValidation
	decodeData(t, env, &validation)
	assert.Equal(t, domain.CouponValidation{Valid: false, Message: "Invalid coupon code"}, validation)

	_, env = srv.do(t, http.MethodPost, "/api/v1/pricing/coupons/validate", map[string]any{"code": "WELCOME10", "subtotal": 100})
	decodeData(t, env, &validation)
	assert.True(t, validation.Valid)

	rec, _ := srv.do(t, http.MethodPost, "/api/v1/pricing/coupons/validate", map[string]any{"subtotal": 100})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShippingRates(t *testing.T) {
	srv := setupServer(t)

	rec, env := srv.do(t, http.MethodPost, "/api/v1/shipping/rates", map[string]any{
		"destination": map[string]any{"country": "us"},
		"weight":      1000,
		"value":       100,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var rates []domain.ShippingRate
	decodeData(t, env, &rates)
	require.Len(t, rates, 2)
	assert.Equal(t, "USPS", rates[0].Carrier)
	assertMoney(t, "10", rates[0].Cost)
	assertMoney(t, "25", rates[1].Cost)

	for _, body := range []map[string]any{
		{"destination": map[string]any{"country": "US"}, "weight": 0, "value": 100},
		{"destination": map[string]any{"country": "US"}, "weight": 100, "value": -5},
		{"destination": map[string]any{}, "weight": 100, "value": 5},
		{"destination": map[string]any{"country": "US"}, "weight": 1e19, "value": 5},
	} {
		rec, env := srv.do(t, http.MethodPost, "/api/v1/shipping/rates", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, codeValidation, env.Error.Code)
	}
}

func TestShippingRates_WeightUpperBound(t *testing.T) {
	srv := setupServer(t)

	rec, _ := srv.do(t, http.MethodPost, "/api/v1/shipping/rates", map[string]any{
		"destination": map[string]any{"country": "US"},
		"weight":      1000000,
		"value":       100,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env := srv.do(t, http.MethodPost, "/api/v1/shipping/rates", map[string]any{
		"destination": map[string]any{"country": "US"},
		"weight":      1000001,
		"value":       100,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, []any{map[string]any{"field": "weight", "message": "must be at most 1000000"}}, env.Error.Details)
}
