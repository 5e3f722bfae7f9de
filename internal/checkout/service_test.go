package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/campuskart/campuskart-backend/internal/cart"
	"github.com/campuskart/campuskart-backend/internal/order"
	"github.com/campuskart/campuskart-backend/internal/product"
	"github.com/campuskart/campuskart-backend/internal/user"
)

type stubDirectory struct {
	users map[int]user.User
	err   error
}

func (d stubDirectory) GetByID(id int) (user.User, error) {
	if d.err != nil {
		return user.User{}, d.err
	}
	u, ok := d.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

type captureNotifier struct {
	ch chan order.Order
}

func newCaptureNotifier() *captureNotifier {
	return &captureNotifier{ch: make(chan order.Order, 4)}
}

func (n *captureNotifier) NotifyOrderPlaced(ctx context.Context, buyer user.User, ord order.Order) {
	n.ch <- ord
}

func (n *captureNotifier) wait(t *testing.T) order.Order {
	t.Helper()
	select {
	case ord := <-n.ch:
		return ord
	case <-time.After(2 * time.Second):
		t.Fatal("no confirmation dispatched")
		return order.Order{}
	}
}

func newCheckoutService(store *MemoryStore, dir UserDirectory, notifier Notifier) *Service {
	return NewService(store, store.Carts(), store.Products(), store.Orders(), dir, notifier)
}

func testAddress() order.ShippingAddress {
	return order.ShippingAddress{Street: "1 Dorm Rd", City: "Springfield", State: "IL", ZipCode: "62701"}
}

func TestPlaceOrder_Success(t *testing.T) {
	store := NewMemoryStore()
	store.SeedProduct(product.Product{ID: 1, Name: "Used Calculus Textbook", Price: 10, StockQuantity: 5})
	store.SeedCart(cart.Cart{UserID: 42, Items: []cart.Item{{ProductID: 1, Quantity: 2}}})

	dir := stubDirectory{users: map[int]user.User{42: {ID: 42, Name: "Ann", Email: "ann@campus.edu"}}}
	notifier := newCaptureNotifier()
	svc := newCheckoutService(store, dir, notifier)

	ord, err := svc.PlaceOrder(context.Background(), 42, testAddress())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ord.TotalAmount != 20 {
		t.Errorf("expected total 20, got %v", ord.TotalAmount)
	}
	if ord.Status != order.StatusPending {
		t.Errorf("expected status %q, got %q", order.StatusPending, ord.Status)
	}
	if ord.Reference == "" {
		t.Error("expected a non-empty order reference")
	}
	if len(ord.Items) != 1 || ord.Items[0].PriceAtPurchase != 10 || ord.Items[0].Quantity != 2 {
		t.Errorf("unexpected order items: %+v", ord.Items)
	}

	if p, _ := store.Product(1); p.StockQuantity != 3 {
		t.Errorf("expected stock 3 after checkout, got %d", p.StockQuantity)
	}
	if c, ok := store.Cart(42); !ok || len(c.Items) != 0 {
		t.Errorf("expected emptied cart, got %+v", c.Items)
	}
	if store.OrderCount() != 1 {
		t.Errorf("expected exactly one order, got %d", store.OrderCount())
	}

	got := notifier.wait(t)
	if got.Reference != ord.Reference {
		t.Errorf("confirmation carries reference %q, want %q", got.Reference, ord.Reference)
	}
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	store := NewMemoryStore()
	store.SeedProduct(product.Product{ID: 7, Name: "Mini Fridge", Price: 80, StockQuantity: 1})
	store.SeedCart(cart.Cart{UserID: 5, Items: []cart.Item{{ProductID: 7, Quantity: 3}}})

	svc := newCheckoutService(store, stubDirectory{}, nil)

	_, err := svc.PlaceOrder(context.Background(), 5, testAddress())
	var ise *InsufficientStockError
	if !errors.As(err, &ise) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if ise.ProductID != 7 || ise.Requested != 3 || ise.Available != 1 {
		t.Errorf("unexpected shortfall detail: %+v", ise)
	}

	if p, _ := store.Product(7); p.StockQuantity != 1 {
		t.Errorf("stock must be untouched, got %d", p.StockQuantity)
	}
	if c, _ := store.Cart(5); len(c.Items) != 1 {
		t.Errorf("cart must be untouched, got %+v", c.Items)
	}
	if store.OrderCount() != 0 {
		t.Errorf("no order may exist, got %d", store.OrderCount())
	}
}

func TestPlaceOrder_RollsBackEarlierDecrements(t *testing.T) {
	store := NewMemoryStore()
	store.SeedProduct(product.Product{ID: 1, Name: "Desk Lamp", Price: 15, StockQuantity: 4})
	// product 2 is never seeded; it disappeared after being added to the cart
	store.SeedCart(cart.Cart{UserID: 9, Items: []cart.Item{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 1},
	}})

	svc := newCheckoutService(store, stubDirectory{}, nil)

	_, err := svc.PlaceOrder(context.Background(), 9, testAddress())
	var pnf *ProductNotFoundError
	if !errors.As(err, &pnf) {
		t.Fatalf("expected ProductNotFoundError, got %v", err)
	}
	if pnf.ProductID != 2 {
		t.Errorf("expected product 2 reported, got %d", pnf.ProductID)
	}

	// the decrement applied to product 1 before the failure must not survive
	if p, _ := store.Product(1); p.StockQuantity != 4 {
		t.Errorf("expected stock 4 after rollback, got %d", p.StockQuantity)
	}
	if store.OrderCount() != 0 {
		t.Errorf("no order may exist, got %d", store.OrderCount())
	}
}

func TestPlaceOrder_ConcurrentBuyersSingleUnit(t *testing.T) {
	store := NewMemoryStore()
	store.SeedProduct(product.Product{ID: 3, Name: "Concert Ticket", Price: 50, StockQuantity: 1})
	store.SeedCart(cart.Cart{UserID: 1, Items: []cart.Item{{ProductID: 3, Quantity: 1}}})
	store.SeedCart(cart.Cart{UserID: 2, Items: []cart.Item{{ProductID: 3, Quantity: 1}}})

	svc := newCheckoutService(store, stubDirectory{}, nil)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for _, buyerID := range []int{1, 2} {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_, err := svc.PlaceOrder(context.Background(), id, testAddress())
			results <- err
		}(buyerID)
	}
	wg.Wait()
	close(results)

	var succeeded, outOfStock int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		default:
			var ise *InsufficientStockError
			if !errors.As(err, &ise) {
				t.Fatalf("loser must see InsufficientStockError, got %v", err)
			}
			outOfStock++
		}
	}

	if succeeded != 1 || outOfStock != 1 {
		t.Fatalf("expected exactly one winner and one shortfall, got %d/%d", succeeded, outOfStock)
	}
	if p, _ := store.Product(3); p.StockQuantity != 0 {
		t.Errorf("expected final stock 0, got %d", p.StockQuantity)
	}
	if store.OrderCount() != 1 {
		t.Errorf("expected exactly one order, got %d", store.OrderCount())
	}
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	store := NewMemoryStore()
	store.SeedCart(cart.Cart{UserID: 8, Items: []cart.Item{}})
	svc := newCheckoutService(store, stubDirectory{}, nil)

	if _, err := svc.PlaceOrder(context.Background(), 8, testAddress()); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}

	// a buyer with no cart row at all gets the same answer
	if _, err := svc.PlaceOrder(context.Background(), 999, testAddress()); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart for missing cart, got %v", err)
	}
}

func TestPlaceOrder_RetryAfterSuccessFails(t *testing.T) {
	store := NewMemoryStore()
	store.SeedProduct(product.Product{ID: 1, Name: "Bike Lock", Price: 12, StockQuantity: 10})
	store.SeedCart(cart.Cart{UserID: 4, Items: []cart.Item{{ProductID: 1, Quantity: 1}}})

	dir := stubDirectory{users: map[int]user.User{4: {ID: 4}}}
	svc := newCheckoutService(store, dir, nil)

	if _, err := svc.PlaceOrder(context.Background(), 4, testAddress()); err != nil {
		t.Fatalf("first checkout failed: %v", err)
	}

	// cart was cleared by the first checkout, so the retry has nothing to buy
	if _, err := svc.PlaceOrder(context.Background(), 4, testAddress()); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart on retry, got %v", err)
	}
	if store.OrderCount() != 1 {
		t.Errorf("retry must not create a second order, got %d", store.OrderCount())
	}
}

func TestPlaceOrder_CommitFailure(t *testing.T) {
	store := NewMemoryStore()
	store.SeedProduct(product.Product{ID: 1, Name: "Kettle", Price: 25, StockQuantity: 2})
	store.SeedCart(cart.Cart{UserID: 6, Items: []cart.Item{{ProductID: 1, Quantity: 1}}})
	store.CommitErr = errors.New("connection reset")

	svc := newCheckoutService(store, stubDirectory{}, nil)

	_, err := svc.PlaceOrder(context.Background(), 6, testAddress())
	var pe *PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if pe.Op != "commit" {
		t.Errorf("expected failure at commit, got %q", pe.Op)
	}

	if p, _ := store.Product(1); p.StockQuantity != 2 {
		t.Errorf("staged decrement must be discarded, got stock %d", p.StockQuantity)
	}
	if c, _ := store.Cart(6); len(c.Items) != 1 {
		t.Errorf("cart must survive a failed commit, got %+v", c.Items)
	}
	if store.OrderCount() != 0 {
		t.Errorf("no order may exist after failed commit, got %d", store.OrderCount())
	}
}

func TestPlaceOrder_InvalidAddress(t *testing.T) {
	store := NewMemoryStore()
	svc := newCheckoutService(store, stubDirectory{}, nil)

	addr := testAddress()
	addr.ZipCode = ""
	if _, err := svc.PlaceOrder(context.Background(), 1, addr); !errors.Is(err, order.ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
}

func TestPlaceOrder_PriceCapturedFromLiveProduct(t *testing.T) {
	store := NewMemoryStore()
	store.SeedProduct(product.Product{ID: 1, Name: "Headphones", Price: 30, StockQuantity: 5})
	store.SeedCart(cart.Cart{UserID: 3, Items: []cart.Item{{ProductID: 1, Quantity: 1}}})

	// seller raises the price after the item was carted
	store.SeedProduct(product.Product{ID: 1, Name: "Headphones", Price: 45, StockQuantity: 5})

	svc := newCheckoutService(store, stubDirectory{}, nil)
	ord, err := svc.PlaceOrder(context.Background(), 3, testAddress())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ord.Items[0].PriceAtPurchase != 45 || ord.TotalAmount != 45 {
		t.Errorf("expected the live price 45 captured, got line %v total %v",
			ord.Items[0].PriceAtPurchase, ord.TotalAmount)
	}
}

func TestPlaceOrder_BuyerLookupFailureDoesNotAffectOrder(t *testing.T) {
	store := NewMemoryStore()
	store.SeedProduct(product.Product{ID: 1, Name: "Poster", Price: 5, StockQuantity: 3})
	store.SeedCart(cart.Cart{UserID: 11, Items: []cart.Item{{ProductID: 1, Quantity: 1}}})

	notifier := newCaptureNotifier()
	svc := newCheckoutService(store, stubDirectory{err: errors.New("directory down")}, notifier)

	ord, err := svc.PlaceOrder(context.Background(), 11, testAddress())
	if err != nil {
		t.Fatalf("checkout must succeed regardless of notification: %v", err)
	}
	if ord.TotalAmount != 5 {
		t.Errorf("expected total 5, got %v", ord.TotalAmount)
	}

	select {
	case <-notifier.ch:
		t.Error("no confirmation should be dispatched when the buyer lookup fails")
	case <-time.After(100 * time.Millisecond):
	}
}
