package http

import (
	"context"
	"net/http"

	"github.com/fjod/go_cart/merchant-api/internal/domain"
	"github.com/fjod/go_cart/merchant-api/internal/service"
	"github.com/go-chi/chi/v5"
)

type OrderManager interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*domain.Order, error)
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	OrdersByEmail(ctx context.Context, email string) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error)
	CreateReturn(ctx context.Context, orderID string, items []domain.ReturnItem, notes string) (*domain.ReturnRequest, error)
	GetReturn(ctx context.Context, returnID string) (*domain.ReturnRequest, error)
}

type OrdersHandler struct {
	orders OrderManager
}

func NewOrdersHandler(orders OrderManager) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

type PaymentDTO struct {
	Method string `json:"method" validate:"required"`
	Token  string `json:"token,omitempty"`
}

type CreateOrderRequestDTO struct {
	CartID     string              `json:"cartId" validate:"required"`
	Customer   domain.CustomerInfo `json:"customer"`
	Shipping   domain.ShippingInfo `json:"shipping"`
	Payment    PaymentDTO          `json:"payment"`
	CouponCode string              `json:"couponCode"`
}

type UpdateStatusRequestDTO struct {
	Status string `json:"status"`
}

type CreateReturnRequestDTO struct {
	OrderID       string              `json:"orderId"`
	Items         []domain.ReturnItem `json:"items" validate:"required,dive"`
	CustomerNotes string              `json:"customerNotes"`
}

func (h *OrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := h.orders.CreateOrder(r.Context(), service.CreateOrderRequest{
		CartID:        req.CartID,
		Customer:      req.Customer,
		Shipping:      req.Shipping,
		PaymentMethod: req.Payment.Method,
		CouponCode:    req.CouponCode,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusCreated, order)
}

// List returns every order, or only those placed by ?email= when given.
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		orders []*domain.Order
		err    error
	)
	if email := r.URL.Query().Get("email"); email != "" {
		orders, err = h.orders.OrdersByEmail(r.Context(), email)
	} else {
		orders, err = h.orders.ListOrders(r.Context())
	}
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, orders)
}

func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrder(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, order)
}

func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Status == "" {
		respondError(w, http.StatusBadRequest, domain.ErrInvalidStatus.Code, "Status is required", nil)
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "orderId"), domain.OrderStatus(req.Status))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, order)
}

// CreateReturn takes the order from the path; an orderId in the body must match it.
func (h *OrdersHandler) CreateReturn(w http.ResponseWriter, r *http.Request) {
	var req CreateReturnRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	orderID := chi.URLParam(r, "orderId")
	if req.OrderID != "" && req.OrderID != orderID {
		respondError(w, http.StatusBadRequest, codeValidation, "Invalid request data",
			[]FieldError{{Field: "orderId", Message: "must match the order in the path"}})
		return
	}

	ret, err := h.orders.CreateReturn(r.Context(), orderID, req.Items, req.CustomerNotes)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusCreated, ret)
}

func (h *OrdersHandler) GetReturn(w http.ResponseWriter, r *http.Request) {
	ret, err := h.orders.GetReturn(r.Context(), chi.URLParam(r, "returnId"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, ret)
}
