package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fjod/go_cart/merchant-api/internal/domain"
	"github.com/fjod/go_cart/merchant-api/internal/events"
	"github.com/fjod/go_cart/merchant-api/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OrderItemWeight is the parcel weight assumed per ordered unit.
const OrderItemWeight = 150 // grams

type CartReader interface {
	Get(ctx context.Context, cartID string) (*domain.Cart, error)
}

type Quoter interface {
	Quote(items []domain.LineItem, shippingCost decimal.Decimal, couponCode string) (domain.PricingBreakdown, error)
}

type ShippingCoster interface {
	CostFor(country string, weightGrams int, declaredValue decimal.Decimal, method string) (decimal.Decimal, error)
}

// EventSink accepts domain events for asynchronous publishing.
type EventSink interface {
	Enqueue(e events.Event) error
}

type OrderService struct {
	carts    CartReader
	pricing  Quoter
	shipping ShippingCoster
	orders   repository.OrderRepository
	returns  repository.ReturnRepository
	events   EventSink
	logger   *slog.Logger
	tracer   trace.Tracer
	strict   bool
	now      func() time.Time
}

type OrderServiceConfig struct {
	Carts    CartReader
	Pricing  Quoter
	Shipping ShippingCoster
	Orders   repository.OrderRepository
	Returns  repository.ReturnRepository
	Events   EventSink
	Logger   *slog.Logger
	// StrictTransitions enforces the order lifecycle on status updates
	StrictTransitions bool
	Now               func() time.Time
}

func NewOrderService(cfg OrderServiceConfig) *OrderService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &OrderService{
		carts:    cfg.Carts,
		pricing:  cfg.Pricing,
		shipping: cfg.Shipping,
		orders:   cfg.Orders,
		returns:  cfg.Returns,
		events:   cfg.Events,
		logger:   cfg.Logger,
		tracer:   otel.Tracer("merchant-api/orders"),
		strict:   cfg.StrictTransitions,
		now:      now,
	}
}

type CreateOrderRequest struct {
	CartID        string
	Customer      domain.CustomerInfo
	Shipping      domain.ShippingInfo
	PaymentMethod string
	CouponCode    string
}

// CreateOrder prices the cart and stores a pending_payment order. The cart
// itself is left untouched.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (order *domain.Order, err error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CreateOrder",
		trace.WithAttributes(attribute.String("cart.id", req.CartID)))
	defer func() { endSpan(span, err) }()

	cart, err := s.carts.Get(ctx, req.CartID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	weight := OrderItemWeight * cart.ItemCount()
	shippingCost, err := s.shipping.CostFor(req.Shipping.Address.Country, weight, cart.Subtotal(), req.Shipping.Method)
	if err != nil {
		return nil, err
	}

	pricing, err := s.pricing.Quote(cart.LineItems(), shippingCost, req.CouponCode)
	if err != nil {
		return nil, err
	}

	items := make([]domain.OrderItem, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = domain.OrderItem{
			SKU:       item.SKU,
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Image:     item.Image,
		}
	}

	now := s.now()
	order = &domain.Order{
		ID:        uuid.NewString(),
		CartID:    cart.ID,
		Status:    domain.OrderStatusPendingPayment,
		Items:     items,
		Customer:  req.Customer,
		Shipping:  req.Shipping,
		Pricing:   pricing,
		Payment:   domain.Payment{Method: req.PaymentMethod, Status: domain.PaymentStatusPending},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("store order: %w", err)
	}
	span.SetAttributes(attribute.String("order.id", order.ID))

	s.emit(ctx, events.OrderCreated, order.ID, map[string]any{
		"orderId": order.ID,
		"cartId":  order.CartID,
		"email":   order.Customer.Email,
		"total":   order.Pricing.Total,
		"items":   len(order.Items),
	})
	s.logger.InfoContext(ctx, "order created", "order_id", order.ID, "cart_id", order.CartID, "total", order.Pricing.Total.String())
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", orderID, err)
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.orders.ListOrders(ctx)
}

// OrdersByEmail matches the customer email ignoring case.
func (s *OrderService) OrdersByEmail(ctx context.Context, email string) ([]*domain.Order, error) {
	return s.orders.ListOrdersByEmail(ctx, email)
}

// UpdateStatus moves an order to status. Entering processing completes the
// payment.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (order *domain.Order, err error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateStatus",
		trace.WithAttributes(attribute.String("order.id", orderID), attribute.String("order.status", string(status))))
	defer func() { endSpan(span, err) }()

	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	var previous domain.OrderStatus
	order, err = s.orders.UpdateOrder(ctx, orderID, func(o *domain.Order) error {
		if s.strict && !o.Status.CanTransitionTo(status) {
			return domain.Errorf(domain.ErrIllegalTransition, "Cannot change order status from %s to %s", o.Status, status)
		}
		previous = o.Status
		o.Status = status
		o.UpdatedAt = s.now()
		if status == domain.OrderStatusProcessing {
			o.Payment.Status = domain.PaymentStatusCompleted
		}
		return nil
	})
	if errors.Is(err, repository.ErrOrderNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	s.emit(ctx, events.OrderStatusChanged, order.ID, map[string]any{
		"orderId": order.ID,
		"from":    previous,
		"to":      order.Status,
	})
	return order, nil
}

// CreateReturn opens a return for a delivered order. Each line is checked
// against the ordered quantity on its own.
func (s *OrderService) CreateReturn(ctx context.Context, orderID string, items []domain.ReturnItem, notes string) (ret *domain.ReturnRequest, err error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CreateReturn",
		trace.WithAttributes(attribute.String("order.id", orderID)))
	defer func() { endSpan(span, err) }()

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.OrderStatusDelivered {
		return nil, domain.ErrReturnNotAllowed
	}

	for _, item := range items {
		if item.Quantity < 1 {
			return nil, domain.Errorf(domain.ErrInvalidQuantity, "Quantity for %s must be at least 1", item.SKU)
		}
		ordered, ok := order.Item(item.SKU)
		if !ok {
			return nil, domain.Errorf(domain.ErrSKUNotInOrder, "SKU %s not found in order", item.SKU)
		}
		if item.Quantity > ordered.Quantity {
			return nil, domain.Errorf(domain.ErrQuantityExceedsOrdered, "Cannot return more than ordered quantity for %s", item.SKU)
		}
	}

	now := s.now()
	ret = &domain.ReturnRequest{
		ID:            uuid.NewString(),
		OrderID:       order.ID,
		Items:         append([]domain.ReturnItem(nil), items...),
		CustomerNotes: notes,
		Status:        domain.ReturnStatusPendingReview,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.returns.CreateReturn(ctx, ret); err != nil {
		return nil, fmt.Errorf("store return: %w", err)
	}

	s.emit(ctx, events.ReturnRequested, order.ID, map[string]any{
		"returnId": ret.ID,
		"orderId":  order.ID,
		"items":    ret.Items,
	})
	return ret, nil
}

func (s *OrderService) GetReturn(ctx context.Context, returnID string) (*domain.ReturnRequest, error) {
	ret, err := s.returns.GetReturn(ctx, returnID)
	if errors.Is(err, repository.ErrReturnNotFound) {
		return nil, domain.ErrReturnNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get return %s: %w", returnID, err)
	}
	return ret, nil
}

// emit never fails the operation; a lost event is logged.
func (s *OrderService) emit(ctx context.Context, eventType, aggregateID string, payload any) {
	if s.events == nil {
		return
	}
	e, err := events.New(eventType, aggregateID, payload, s.now())
	if err == nil {
		err = s.events.Enqueue(e)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "event dropped", "event_type", eventType, "aggregate_id", aggregateID, "error", err)
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var de *domain.Error
		if errors.As(err, &de) {
			span.SetAttributes(attribute.String("error.code", de.Code))
		}
	}
	span.End()
}
