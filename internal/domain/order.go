package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	OrderStatusProcessing     OrderStatus = "processing"
	OrderStatusShipped        OrderStatus = "shipped"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// OrderStatuses lists every valid status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPendingPayment,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

func (s OrderStatus) String() string {
	return string(s)
}

// orderTransitions is the lifecycle enforced in strict mode.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPendingPayment: {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing:     {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:        {OrderStatusDelivered, OrderStatusCancelled},
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
)

type CustomerInfo struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Phone     string `json:"phone,omitempty"`
}

type Address struct {
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required,len=2"`
}

type ShippingInfo struct {
	Address Address `json:"address" validate:"required"`
	Method  string  `json:"method" validate:"required"`
}

type OrderItem struct {
	SKU       string          `json:"sku"`
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image"`
}

type Payment struct {
	Method string `json:"method"`
	Status string `json:"status"`
}

type Order struct {
	ID        string           `json:"orderId"`
	CartID    string           `json:"cartId"`
	Status    OrderStatus      `json:"status"`
	Items     []OrderItem      `json:"items"`
	Customer  CustomerInfo     `json:"customer"`
	Shipping  ShippingInfo     `json:"shipping"`
	Pricing   PricingBreakdown `json:"pricing"`
	Payment   Payment          `json:"payment"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// Item returns the order line for sku.
func (o *Order) Item(sku string) (OrderItem, bool) {
	for _, item := range o.Items {
		if item.SKU == sku {
			return item, true
		}
	}
	return OrderItem{}, false
}

func (o *Order) PlacedBy(email string) bool {
	return strings.EqualFold(o.Customer.Email, email)
}

func (o *Order) Clone() *Order {
	cp := *o
	cp.Items = make([]OrderItem, len(o.Items))
	copy(cp.Items, o.Items)
	return &cp
}

type ReturnStatus string

const (
	ReturnStatusPendingReview ReturnStatus = "pending_review"
	ReturnStatusApproved      ReturnStatus = "approved"
	ReturnStatusRejected      ReturnStatus = "rejected"
	ReturnStatusCompleted     ReturnStatus = "completed"
)

type ReturnItem struct {
	SKU      string `json:"sku" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
	Reason   string `json:"reason" validate:"required"`
}

type ReturnRequest struct {
	ID            string       `json:"returnId"`
	OrderID       string       `json:"orderId"`
	Items         []ReturnItem `json:"items"`
	CustomerNotes string       `json:"customerNotes,omitempty"`
	Status        ReturnStatus `json:"status"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}
