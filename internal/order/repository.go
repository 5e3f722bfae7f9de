package order

import (
	"errors"
	"sync"
)

var ErrNotFound = errors.New("order not found")

// Repository reads committed orders. Order creation happens exclusively
// through the checkout transaction's order store.
type Repository interface {
	ListByBuyer(buyerID int) ([]Order, error)
}

type InMemoryRepository struct {
	mu     sync.RWMutex
	orders []Order
}

func NewInMemoryRepository(seed []Order) *InMemoryRepository {
	r := &InMemoryRepository{orders: make([]Order, 0, len(seed))}
	r.orders = append(r.orders, seed...)
	return r
}

func (r *InMemoryRepository) ListByBuyer(buyerID int) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Order, 0)
	for _, o := range r.orders {
		if o.BuyerID == buyerID {
			out = append(out, o)
		}
	}
	return out, nil
}
