package checkout

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/campuskart/campuskart-backend/internal/cart"
	"github.com/campuskart/campuskart-backend/internal/order"
	"github.com/campuskart/campuskart-backend/internal/product"
)

// PostgresStore implements the coordinator's transaction manager and stores
// on one *sql.DB. Isolation comes from row locks: the cart row and every
// product row touched are read FOR UPDATE, so two checkouts contending for
// the same product serialize and the loser sees the decremented stock.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Begin(ctx context.Context) (TxScope, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlTxScope{tx: tx}, nil
}

func (s *PostgresStore) Carts() CartStore       { return pgCartStore{} }
func (s *PostgresStore) Products() ProductStore { return pgProductStore{} }
func (s *PostgresStore) Orders() OrderStore     { return pgOrderStore{} }

type sqlTxScope struct {
	tx *sql.Tx
}

func (s *sqlTxScope) Commit() error   { return s.tx.Commit() }
func (s *sqlTxScope) Rollback() error { return s.tx.Rollback() }

var errForeignTxScope = errors.New("tx scope does not belong to this store")

func sqlTxOf(scope TxScope) (*sql.Tx, error) {
	s, ok := scope.(*sqlTxScope)
	if !ok {
		return nil, errForeignTxScope
	}
	return s.tx, nil
}

type pgCartStore struct{}

func (pgCartStore) Find(ctx context.Context, scope TxScope, buyerID int) (cart.Cart, error) {
	tx, err := sqlTxOf(scope)
	if err != nil {
		return cart.Cart{}, err
	}

	// lock the cart row so the same cart cannot be checked out twice
	// concurrently
	var raw []byte
	err = tx.QueryRowContext(ctx, `SELECT items FROM carts WHERE user_id = $1 FOR UPDATE`, buyerID).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return cart.Cart{}, cart.ErrNotFound
		}
		return cart.Cart{}, err
	}

	c := cart.Cart{UserID: buyerID, Items: []cart.Item{}}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &c.Items); err != nil {
			return cart.Cart{}, err
		}
	}
	return c, nil
}

func (pgCartStore) Save(ctx context.Context, scope TxScope, c cart.Cart) error {
	tx, err := sqlTxOf(scope)
	if err != nil {
		return err
	}

	items := c.Items
	if items == nil {
		items = []cart.Item{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `UPDATE carts SET items = $2, updated_at = $3 WHERE user_id = $1`,
		c.UserID, raw, c.UpdatedAt)
	return err
}

type pgProductStore struct{}

func (pgProductStore) FindByID(ctx context.Context, scope TxScope, id int) (product.Product, error) {
	tx, err := sqlTxOf(scope)
	if err != nil {
		return product.Product{}, err
	}

	var p product.Product
	err = tx.QueryRowContext(ctx, `
		SELECT product_id, name, price, stock_quantity
		FROM products
		WHERE product_id = $1
		FOR UPDATE`, id).Scan(&p.ID, &p.Name, &p.Price, &p.StockQuantity)
	if err != nil {
		if err == sql.ErrNoRows {
			return product.Product{}, product.ErrNotFound
		}
		return product.Product{}, err
	}
	return p, nil
}

// Save persists the stock decrement; stock is the only product field the
// coordinator mutates.
func (pgProductStore) Save(ctx context.Context, scope TxScope, p product.Product) error {
	tx, err := sqlTxOf(scope)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `UPDATE products SET stock_quantity = $2 WHERE product_id = $1`,
		p.ID, p.StockQuantity)
	return err
}

type pgOrderStore struct{}

func (pgOrderStore) Save(ctx context.Context, scope TxScope, o order.Order) (order.Order, error) {
	tx, err := sqlTxOf(scope)
	if err != nil {
		return order.Order{}, err
	}

	items, err := json.Marshal(o.Items)
	if err != nil {
		return order.Order{}, err
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (order_ref, buyer_id, items, total_amount, street, city, state, zip_code, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING order_id`,
		o.Reference, o.BuyerID, items, o.TotalAmount,
		o.ShippingAddress.Street, o.ShippingAddress.City, o.ShippingAddress.State, o.ShippingAddress.ZipCode,
		o.Status, o.CreatedAt, o.UpdatedAt).Scan(&o.ID)
	if err != nil {
		return order.Order{}, err
	}
	return o, nil
}
