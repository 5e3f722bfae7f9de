package checkout

import (
	"errors"
	"fmt"
)

// ErrEmptyCart rejects checkouts with nothing to order. It is also the
// practical idempotency guard: a successful checkout clears the cart, so an
// immediate retry fails here instead of producing a second order.
var ErrEmptyCart = errors.New("your cart is empty")

// ProductNotFoundError marks a cart line whose product vanished between
// add-to-cart and checkout.
type ProductNotFoundError struct {
	ProductID int
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found: %d", e.ProductID)
}

// InsufficientStockError carries the shortfall detail so the caller can retry
// with a reduced quantity.
type InsufficientStockError struct {
	ProductID int
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q: requested %d, available %d",
		e.Name, e.Requested, e.Available)
}

// PersistenceError wraps transaction-manager and store failures. By the time
// it is returned the whole atomic scope has already been rolled back.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
