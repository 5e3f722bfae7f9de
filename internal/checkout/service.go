package checkout

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/campuskart/campuskart-backend/internal/cart"
	"github.com/campuskart/campuskart-backend/internal/order"
	"github.com/campuskart/campuskart-backend/internal/product"
	"github.com/google/uuid"
)

// Service is the order transaction coordinator: it converts one buyer's
// current cart into exactly one order, decrementing stock per line item, with
// all-or-nothing semantics across the whole operation.
type Service struct {
	txm      TxManager
	carts    CartStore
	products ProductStore
	orders   OrderStore
	users    UserDirectory
	notifier Notifier
}

func NewService(txm TxManager, carts CartStore, products ProductStore, orders OrderStore, users UserDirectory, notifier Notifier) *Service {
	return &Service{
		txm:      txm,
		carts:    carts,
		products: products,
		orders:   orders,
		users:    users,
		notifier: notifier,
	}
}

// PlaceOrder runs the checkout transaction. On any failure the whole scope is
// rolled back before the error is returned, leaving stock, cart and orders
// exactly as they were. On success the order is persisted with status
// Pending, every referenced product's stock is reduced, and the cart is
// emptied; a confirmation is then dispatched outside the transaction.
func (s *Service) PlaceOrder(ctx context.Context, buyerID int, addr order.ShippingAddress) (order.Order, error) {
	if err := addr.Validate(); err != nil {
		return order.Order{}, err
	}

	tx, err := s.txm.Begin(ctx)
	if err != nil {
		return order.Order{}, &PersistenceError{Op: "begin", Err: err}
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	crt, err := s.carts.Find(ctx, tx, buyerID)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			return order.Order{}, ErrEmptyCart
		}
		return order.Order{}, &PersistenceError{Op: "load cart", Err: err}
	}
	if len(crt.Items) == 0 {
		return order.Order{}, ErrEmptyCart
	}

	var total float64
	lines := make([]order.Line, 0, len(crt.Items))
	for _, item := range crt.Items {
		// re-read current stock and price inside the scope; cart data may
		// be stale by now
		p, err := s.products.FindByID(ctx, tx, item.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				return order.Order{}, &ProductNotFoundError{ProductID: item.ProductID}
			}
			return order.Order{}, &PersistenceError{Op: "load product", Err: err}
		}
		if p.StockQuantity < item.Quantity {
			return order.Order{}, &InsufficientStockError{
				ProductID: p.ID,
				Name:      p.Name,
				Requested: item.Quantity,
				Available: p.StockQuantity,
			}
		}

		p.StockQuantity -= item.Quantity
		if err := s.products.Save(ctx, tx, p); err != nil {
			return order.Order{}, &PersistenceError{Op: "update stock", Err: err}
		}

		total += p.Price * float64(item.Quantity)
		lines = append(lines, order.Line{
			ProductID:       p.ID,
			Quantity:        item.Quantity,
			PriceAtPurchase: p.Price,
		})
	}

	now := time.Now().UTC().Format(time.RFC3339)
	created, err := s.orders.Save(ctx, tx, order.Order{
		Reference:       uuid.NewString(),
		BuyerID:         buyerID,
		Items:           lines,
		TotalAmount:     total,
		ShippingAddress: addr,
		Status:          order.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return order.Order{}, &PersistenceError{Op: "create order", Err: err}
	}

	crt.Items = []cart.Item{}
	crt.UpdatedAt = now
	if err := s.carts.Save(ctx, tx, crt); err != nil {
		return order.Order{}, &PersistenceError{Op: "clear cart", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return order.Order{}, &PersistenceError{Op: "commit", Err: err}
	}
	committed = true

	s.dispatchConfirmation(created)
	return created, nil
}

// dispatchConfirmation runs after the commit result is known and never blocks
// the caller. Lookup or delivery failures are logged and swallowed.
func (s *Service) dispatchConfirmation(ord order.Order) {
	if s.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		buyer, err := s.users.GetByID(ord.BuyerID)
		if err != nil {
			log.Printf("order %s: could not load buyer %d for confirmation: %v", ord.Reference, ord.BuyerID, err)
			return
		}
		s.notifier.NotifyOrderPlaced(ctx, buyer, ord)
	}()
}
