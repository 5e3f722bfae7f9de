package checkout

import (
	"context"
	"sync"

	"github.com/campuskart/campuskart-backend/internal/cart"
	"github.com/campuskart/campuskart-backend/internal/order"
	"github.com/campuskart/campuskart-backend/internal/product"
)

// MemoryStore is the in-memory transaction manager used in tests and local
// scenarios. A single mutex is held from Begin until Commit or Rollback and
// writes are staged until commit, which makes every transaction serializable
// by construction: a concurrent checkout blocks at Begin and then observes
// the committed stock.
type MemoryStore struct {
	mu          sync.Mutex
	products    map[int]product.Product
	carts       map[int]cart.Cart
	orders      []order.Order
	nextOrderID int

	// CommitErr, when set, makes every commit fail after discarding the
	// staged writes. Used to exercise persistence-failure paths.
	CommitErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products:    make(map[int]product.Product),
		carts:       make(map[int]cart.Cart),
		nextOrderID: 1,
	}
}

func (m *MemoryStore) Carts() CartStore       { return memCartStore{} }
func (m *MemoryStore) Products() ProductStore { return memProductStore{} }
func (m *MemoryStore) Orders() OrderStore     { return memOrderStore{} }

// SeedProduct installs committed product state. Not safe to call while a
// transaction is open.
func (m *MemoryStore) SeedProduct(p product.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
}

func (m *MemoryStore) SeedCart(c cart.Cart) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[c.UserID] = cloneCart(c)
}

// Product returns the committed product state for assertions.
func (m *MemoryStore) Product(id int) (product.Product, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	return p, ok
}

func (m *MemoryStore) Cart(userID int) (cart.Cart, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		return cart.Cart{}, false
	}
	return cloneCart(c), true
}

func (m *MemoryStore) OrderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

func (m *MemoryStore) AllOrders() []order.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]order.Order, len(m.orders))
	copy(out, m.orders)
	return out
}

func (m *MemoryStore) Begin(ctx context.Context) (TxScope, error) {
	m.mu.Lock()
	return &memoryTx{
		store:    m,
		products: make(map[int]product.Product),
		carts:    make(map[int]cart.Cart),
	}, nil
}

type memoryTx struct {
	store    *MemoryStore
	products map[int]product.Product
	carts    map[int]cart.Cart
	orders   []order.Order
	done     bool
}

func (t *memoryTx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	defer t.store.mu.Unlock()

	if err := t.store.CommitErr; err != nil {
		return err
	}
	for id, p := range t.products {
		t.store.products[id] = p
	}
	for id, c := range t.carts {
		t.store.carts[id] = c
	}
	t.store.orders = append(t.store.orders, t.orders...)
	return nil
}

func (t *memoryTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.mu.Unlock()
	return nil
}

func memTxOf(scope TxScope) (*memoryTx, error) {
	t, ok := scope.(*memoryTx)
	if !ok {
		return nil, errForeignTxScope
	}
	return t, nil
}

type memCartStore struct{}

func (memCartStore) Find(ctx context.Context, scope TxScope, buyerID int) (cart.Cart, error) {
	t, err := memTxOf(scope)
	if err != nil {
		return cart.Cart{}, err
	}
	if c, ok := t.carts[buyerID]; ok {
		return cloneCart(c), nil
	}
	c, ok := t.store.carts[buyerID]
	if !ok {
		return cart.Cart{}, cart.ErrNotFound
	}
	return cloneCart(c), nil
}

func (memCartStore) Save(ctx context.Context, scope TxScope, c cart.Cart) error {
	t, err := memTxOf(scope)
	if err != nil {
		return err
	}
	t.carts[c.UserID] = cloneCart(c)
	return nil
}

type memProductStore struct{}

func (memProductStore) FindByID(ctx context.Context, scope TxScope, id int) (product.Product, error) {
	t, err := memTxOf(scope)
	if err != nil {
		return product.Product{}, err
	}
	if p, ok := t.products[id]; ok {
		return p, nil
	}
	p, ok := t.store.products[id]
	if !ok {
		return product.Product{}, product.ErrNotFound
	}
	return p, nil
}

func (memProductStore) Save(ctx context.Context, scope TxScope, p product.Product) error {
	t, err := memTxOf(scope)
	if err != nil {
		return err
	}
	t.products[p.ID] = p
	return nil
}

type memOrderStore struct{}

func (memOrderStore) Save(ctx context.Context, scope TxScope, o order.Order) (order.Order, error) {
	t, err := memTxOf(scope)
	if err != nil {
		return order.Order{}, err
	}
	o.ID = t.store.nextOrderID
	t.store.nextOrderID++
	t.orders = append(t.orders, o)
	return o, nil
}

func cloneCart(c cart.Cart) cart.Cart {
	items := make([]cart.Item, len(c.Items))
	copy(items, c.Items)
	c.Items = items
	return c
}
