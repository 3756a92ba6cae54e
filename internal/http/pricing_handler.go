package http

import (
	"net/http"

	"github.com/fjod/go_cart/merchant-api/internal/domain"
	"github.com/fjod/go_cart/merchant-api/internal/pricing"
	"github.com/shopspring/decimal"
)

type PriceQuoter interface {
	QuoteWithDestination(items []domain.LineItem, couponCode string, dest *domain.Destination) (pricing.DestinationQuote, error)
	ValidateCoupon(code string, subtotal decimal.Decimal) domain.CouponValidation
	Coupons() []domain.Coupon
}

type RateCalculator interface {
	Rates(country string, weightGrams int, declaredValue decimal.Decimal) []domain.ShippingRate
}

type PricingHandler struct {
	pricing  PriceQuoter
	shipping RateCalculator
}

func NewPricingHandler(pricing PriceQuoter, shipping RateCalculator) *PricingHandler {
	return &PricingHandler{pricing: pricing, shipping: shipping}
}

type QuoteRequestDTO struct {
	Items               []LineItemDTO       `json:"items" validate:"required,dive"`
	CouponCode          string              `json:"couponCode"`
	ShippingDestination *domain.Destination `json:"shippingDestination"`
}

type QuoteResponse struct {
	domain.PricingBreakdown
	ShippingOptions []domain.ShippingRate `json:"shippingOptions,omitempty"`
}

type ValidateCouponRequestDTO struct {
	Code     string          `json:"code" validate:"required"`
	Subtotal decimal.Decimal `json:"subtotal" validate:"gte=0"`
}

type ShippingRatesRequestDTO struct {
	Destination domain.Destination `json:"destination"`
	Weight      decimal.Decimal    `json:"weight" validate:"gt=0,lte=1000000"` // grams, 1000 kg at most
	Value       decimal.Decimal    `json:"value" validate:"gt=0"`
}

func (h *PricingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	quote, err := h.pricing.QuoteWithDestination(toLineItems(req.Items), req.CouponCode, req.ShippingDestination)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, QuoteResponse{PricingBreakdown: quote.Pricing, ShippingOptions: quote.ShippingOptions})
}

func (h *PricingHandler) Coupons(w http.ResponseWriter, _ *http.Request) {
	respondOK(w, http.StatusOK, h.pricing.Coupons())
}

func (h *PricingHandler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	var req ValidateCouponRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	respondOK(w, http.StatusOK, h.pricing.ValidateCoupon(req.Code, req.Subtotal))
}

func (h *PricingHandler) ShippingRates(w http.ResponseWriter, r *http.Request) {
	var req ShippingRatesRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	grams := int(req.Weight.Round(0).IntPart())
	respondOK(w, http.StatusOK, h.shipping.Rates(req.Destination.Country, grams, req.Value))
}
