package cart

import (
	"errors"
	"sync"
)

var (
	ErrNotFound        = errors.New("cart not found")
	ErrItemNotFound    = errors.New("item not found in cart")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// Repository persists carts outside the checkout transaction. The checkout
// package has its own transaction-scoped cart store.
type Repository interface {
	Find(userID int) (Cart, error)
	Save(c Cart) error
}

type InMemoryRepository struct {
	mu    sync.RWMutex
	carts map[int]Cart
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{carts: make(map[int]Cart)}
}

func (r *InMemoryRepository) Find(userID int) (Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.carts[userID]
	if !ok {
		return Cart{}, ErrNotFound
	}
	items := make([]Item, len(c.Items))
	copy(items, c.Items)
	c.Items = items
	return c, nil
}

func (r *InMemoryRepository) Save(c Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]Item, len(c.Items))
	copy(items, c.Items)
	c.Items = items
	r.carts[c.UserID] = c
	return nil
}
