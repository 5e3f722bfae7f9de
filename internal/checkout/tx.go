package checkout

import (
	"context"

	"github.com/campuskart/campuskart-backend/internal/cart"
	"github.com/campuskart/campuskart-backend/internal/order"
	"github.com/campuskart/campuskart-backend/internal/product"
	"github.com/campuskart/campuskart-backend/internal/user"
)

// TxScope is one atomic unit of work. Every store call made with the same
// scope commits or rolls back together; no partial state is ever visible to
// other scopes.
type TxScope interface {
	Commit() error
	Rollback() error
}

type TxManager interface {
	Begin(ctx context.Context) (TxScope, error)
}

// CartStore reads and writes the buyer's cart inside the transaction scope.
type CartStore interface {
	Find(ctx context.Context, tx TxScope, buyerID int) (cart.Cart, error)
	Save(ctx context.Context, tx TxScope, c cart.Cart) error
}

// ProductStore must return current stock, not a cached value: FindByID is a
// locking read, so overlapping checkouts of the same product serialize and
// the later one observes the decremented stock.
type ProductStore interface {
	FindByID(ctx context.Context, tx TxScope, id int) (product.Product, error)
	Save(ctx context.Context, tx TxScope, p product.Product) error
}

// OrderStore persists the order and assigns its identity.
type OrderStore interface {
	Save(ctx context.Context, tx TxScope, o order.Order) (order.Order, error)
}

// UserDirectory resolves the buyer for the post-commit confirmation.
type UserDirectory interface {
	GetByID(id int) (user.User, error)
}

// Notifier delivers the order confirmation. It runs after commit,
// fire-and-forget: its failure never affects the committed order.
type Notifier interface {
	NotifyOrderPlaced(ctx context.Context, buyer user.User, ord order.Order)
}
