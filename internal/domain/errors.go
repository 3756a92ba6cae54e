package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure so transports can pick a status code.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindValidation
	KindBusinessRule
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindBusinessRule:
		return "business_rule"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a business outcome with a machine readable code.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Details any
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches on Code, so a copy with a more specific message still
// satisfies errors.Is against its sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithDetails returns a copy of e carrying structured details.
func (e *Error) WithDetails(details any) *Error {
	c := *e
	c.Details = details
	return &c
}

// Errorf returns a copy of base with a formatted message.
func Errorf(base *Error, format string, args ...any) *Error {
	return &Error{
		Kind:    base.Kind,
		Code:    base.Code,
		Message: fmt.Sprintf(format, args...),
	}
}

// KindOf reports the kind of err, KindInternal for non domain errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

var (
	ErrProductNotFound = &Error{Kind: KindNotFound, Code: "PRODUCT_NOT_FOUND", Message: "Product not found"}
	ErrCartNotFound    = &Error{Kind: KindNotFound, Code: "CART_NOT_FOUND", Message: "Cart not found or expired"}
	ErrOrderNotFound   = &Error{Kind: KindNotFound, Code: "ORDER_NOT_FOUND", Message: "Order not found"}
	ErrReturnNotFound  = &Error{Kind: KindNotFound, Code: "RETURN_NOT_FOUND", Message: "Return not found"}

	ErrInvalidQuantity = &Error{Kind: KindValidation, Code: "INVALID_QUANTITY", Message: "quantity must be at least 1"}
	ErrInvalidStatus   = &Error{Kind: KindValidation, Code: "INVALID_STATUS", Message: "Status must be one of: pending_payment, processing, shipped, delivered, cancelled"}
	ErrMissingWallet   = &Error{Kind: KindValidation, Code: "MISSING_WALLET", Message: "Wallet address is required"}
	ErrMissingParams   = &Error{Kind: KindValidation, Code: "MISSING_PARAMS", Message: "Signature and mandateHash are required"}

	ErrInsufficientStock         = &Error{Kind: KindBusinessRule, Code: "INSUFFICIENT_STOCK", Message: "Insufficient stock"}
	ErrEmptyCart                 = &Error{Kind: KindBusinessRule, Code: "EMPTY_CART", Message: "Cannot create order from empty cart"}
	ErrCouponMinNotMet           = &Error{Kind: KindBusinessRule, Code: "COUPON_MIN_NOT_MET", Message: "Coupon minimum order amount not met"}
	ErrCouponNotApplicable       = &Error{Kind: KindBusinessRule, Code: "COUPON_NOT_APPLICABLE", Message: "Coupon not applicable to any items in cart"}
	ErrShippingMethodUnavailable = &Error{Kind: KindBusinessRule, Code: "SHIPPING_METHOD_UNAVAILABLE", Message: "Shipping method not available"}
	ErrReturnNotAllowed          = &Error{Kind: KindBusinessRule, Code: "RETURN_NOT_ALLOWED", Message: "Can only return delivered orders"}
	ErrSKUNotInOrder             = &Error{Kind: KindBusinessRule, Code: "SKU_NOT_IN_ORDER", Message: "SKU not found in order"}
	ErrQuantityExceedsOrdered    = &Error{Kind: KindBusinessRule, Code: "QUANTITY_EXCEEDS_ORDERED", Message: "Cannot return more than ordered quantity"}
	ErrIllegalTransition         = &Error{Kind: KindBusinessRule, Code: "ILLEGAL_TRANSITION", Message: "illegal transition of order status"}
	ErrPaymentRejected           = &Error{Kind: KindBusinessRule, Code: "PAYMENT_REJECTED", Message: "Payment signature rejected"}
)
