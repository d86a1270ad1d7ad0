package order

import (
	"errors"
	"fmt"
)

var (
	// -- Validation --
	ErrIncompleteShipping = errors.New("incomplete shipping information")
	ErrCartEmpty          = errors.New("cart is empty")
	ErrInvalidStatus      = errors.New("invalid order status")

	// -- Resource state --
	ErrOrderNotFound  = errors.New("order not found")
	ErrRefundNotFound = errors.New("refund request not found")

	// -- Conflicts --
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrInvalidQuantity        = errors.New("quantity must be greater than zero")
	ErrNotCancellable         = errors.New("order is not cancellable")
	ErrNotDelivered           = errors.New("refunds can only be requested for delivered orders")
	ErrReturnWindowClosed     = errors.New("refund request exceeds the return window")
	ErrRefundPendingExists    = errors.New("refund already requested for this product")
	ErrRefundAlreadyProcessed = errors.New("refund is already processed")
	ErrProductNotInOrder      = errors.New("product not found in order")

	// -- Authorization --
	ErrNotOwner = errors.New("order does not belong to the requesting user")
)

// InvalidItemError names the offending cart line when checkout validation
// fails. It unwraps to the underlying conflict so callers can still match
// with errors.Is.
type InvalidItemError struct {
	ProductName string
	Reason      error
}

func (e *InvalidItemError) Error() string {
	name := e.ProductName
	if name == "" {
		name = "Unknown product"
	}
	return fmt.Sprintf("invalid item: %s", name)
}

func (e *InvalidItemError) Unwrap() error {
	return e.Reason
}
