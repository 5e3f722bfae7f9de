package cart

import (
	"errors"
	"testing"

	"github.com/campuskart/campuskart-backend/internal/product"
)

type stubProducts struct {
	known map[int]product.Product
}

func (s stubProducts) GetByID(id int) (product.Product, error) {
	p, ok := s.known[id]
	if !ok {
		return product.Product{}, product.ErrNotFound
	}
	return p, nil
}

func (s stubProducts) ListByIDs(ids []int) ([]product.Product, error) {
	out := make([]product.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.known[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func newTestService() (*Service, *InMemoryRepository) {
	repo := NewInMemoryRepository()
	products := stubProducts{known: map[int]product.Product{
		1: {ID: 1, Name: "Lamp", Price: 15, StockQuantity: 3},
		2: {ID: 2, Name: "Rug", Price: 40, StockQuantity: 1},
	}}
	return NewService(repo, products), repo
}

func TestServiceGet_EmptyWhenNoCart(t *testing.T) {
	svc, _ := newTestService()

	c, err := svc.Get(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.UserID != 10 || len(c.Items) != 0 {
		t.Errorf("expected empty cart for user 10, got %+v", c)
	}
}

func TestServiceAdd(t *testing.T) {
	svc, _ := newTestService()

	c, err := svc.Add(10, 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Items) != 1 || c.Items[0].Quantity != 2 {
		t.Fatalf("expected one line with qty 2, got %+v", c.Items)
	}

	// adding the same product increments the existing line
	c, err = svc.Add(10, 1, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Items) != 1 || c.Items[0].Quantity != 3 {
		t.Errorf("expected qty 3 on one line, got %+v", c.Items)
	}

	// the cart is allowed to hold more than current stock; checkout decides
	c, err = svc.Add(10, 2, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Items) != 2 {
		t.Errorf("expected two lines, got %+v", c.Items)
	}

	if _, err := svc.Add(10, 404, 1); !errors.Is(err, product.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown product, got %v", err)
	}
}

func TestServiceUpdateQuantity(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.Add(10, 1, 2); err != nil {
		t.Fatal(err)
	}

	c, err := svc.UpdateQuantity(10, 1, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Items[0].Quantity != 5 {
		t.Errorf("expected qty 5, got %d", c.Items[0].Quantity)
	}

	// quantities below one are rejected at the service, not just the handler;
	// a zeroed line would break the at-least-one invariant
	for _, qty := range []int{0, -1} {
		if _, err := svc.UpdateQuantity(10, 1, qty); !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("expected ErrInvalidQuantity for qty %d, got %v", qty, err)
		}
	}
	c, err = svc.Get(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Items) != 1 || c.Items[0].Quantity != 5 {
		t.Errorf("line must be untouched after rejected update, got %+v", c.Items)
	}

	if _, err := svc.UpdateQuantity(10, 2, 1); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
	if _, err := svc.UpdateQuantity(77, 1, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing cart, got %v", err)
	}
}

func TestServiceRemove(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.Add(10, 1, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Add(10, 2, 1); err != nil {
		t.Fatal(err)
	}

	c, err := svc.Remove(10, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Items) != 1 || c.Items[0].ProductID != 2 {
		t.Errorf("expected only product 2 left, got %+v", c.Items)
	}

	// removing an absent product is a no-op
	c, err = svc.Remove(10, 404)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Items) != 1 {
		t.Errorf("expected cart unchanged, got %+v", c.Items)
	}
}
