package http

import (
	"context"
	"net/http"

	"github.com/fjod/go_cart/merchant-api/internal/domain"
	"github.com/fjod/go_cart/merchant-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type CartManager interface {
	CreateOrUpdate(ctx context.Context, items []domain.LineItem, existingID string) (*domain.Cart, bool, error)
	Get(ctx context.Context, cartID string) (*domain.Cart, error)
	UpdateItem(ctx context.Context, cartID, sku string, quantity int) (*domain.Cart, error)
	Delete(ctx context.Context, cartID string) (bool, error)
	Total(cart *domain.Cart) decimal.Decimal
	ItemCount(cart *domain.Cart) int
}

type MandateIssuer interface {
	CreateMandate(ctx context.Context, cartID, walletAddress, network string) (*service.Mandate, error)
	VerifyPayment(ctx context.Context, cartID, signature, mandateHash string) (*service.PaymentResult, error)
}

type CartHandler struct {
	carts    CartManager
	mandates MandateIssuer
}

func NewCartHandler(carts CartManager, mandates MandateIssuer) *CartHandler {
	return &CartHandler{carts: carts, mandates: mandates}
}

type LineItemDTO struct {
	SKU      string `json:"sku" validate:"required"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}

type CreateCartRequestDTO struct {
	CartID string        `json:"cartId"`
	Items  []LineItemDTO `json:"items" validate:"required,dive"`
}

type UpdateItemRequestDTO struct {
	Quantity *int `json:"quantity" validate:"required,gte=0"`
}

type CreateMandateRequestDTO struct {
	WalletAddress string `json:"walletAddress"`
	Network       string `json:"network"`
}

type VerifyPaymentRequestDTO struct {
	Signature   string `json:"signature"`
	MandateHash string `json:"mandateHash"`
}

type CartTotals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	ItemCount int             `json:"itemCount"`
}

type CartResponse struct {
	*domain.Cart
	Totals CartTotals `json:"totals"`
}

func toLineItems(dtos []LineItemDTO) []domain.LineItem {
	items := make([]domain.LineItem, len(dtos))
	for i, dto := range dtos {
		items[i] = domain.LineItem{SKU: dto.SKU, Quantity: dto.Quantity}
	}
	return items
}

func (h *CartHandler) cartResponse(cart *domain.Cart) CartResponse {
	return CartResponse{
		Cart:   cart,
		Totals: CartTotals{Subtotal: h.carts.Total(cart), ItemCount: h.carts.ItemCount(cart)},
	}
}

// CreateOrUpdate answers 201 when a new cart was created and 200 when an
// existing one was replaced.
func (h *CartHandler) CreateOrUpdate(w http.ResponseWriter, r *http.Request) {
	var req CreateCartRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	cart, created, err := h.carts.CreateOrUpdate(r.Context(), toLineItems(req.Items), req.CartID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondOK(w, status, h.cartResponse(cart))
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.Get(r.Context(), chi.URLParam(r, "cartId"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, h.cartResponse(cart))
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	cart, err := h.carts.UpdateItem(r.Context(), chi.URLParam(r, "cartId"), chi.URLParam(r, "sku"), *req.Quantity)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, h.cartResponse(cart))
}

func (h *CartHandler) Delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.carts.Delete(r.Context(), chi.URLParam(r, "cartId"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if !deleted {
		respondError(w, http.StatusNotFound, domain.ErrCartNotFound.Code, "Cart not found", nil)
		return
	}
	respondOK(w, http.StatusOK, map[string]string{"message": "Cart deleted successfully"})
}

func (h *CartHandler) CreateMandate(w http.ResponseWriter, r *http.Request) {
	var req CreateMandateRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	mandate, err := h.mandates.CreateMandate(r.Context(), chi.URLParam(r, "cartId"), req.WalletAddress, req.Network)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, mandate)
}

func (h *CartHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req VerifyPaymentRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.mandates.VerifyPayment(r.Context(), chi.URLParam(r, "cartId"), req.Signature, req.MandateHash)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, result)
}
