package order

import (
	"database/sql"
	"encoding/json"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const listByBuyerQuery = `
	SELECT order_id, order_ref, buyer_id, items, total_amount, street, city, state, zip_code, status, created_at, updated_at
	FROM orders
	WHERE buyer_id = $1
	ORDER BY created_at DESC
`

func (r *PostgresRepository) ListByBuyer(buyerID int) ([]Order, error) {
	rows, err := r.db.Query(listByBuyerQuery, buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Order, 0)
	for rows.Next() {
		var (
			o         Order
			items     []byte
			createdAt sql.NullString
			updatedAt sql.NullString
		)
		if err := rows.Scan(&o.ID, &o.Reference, &o.BuyerID, &items, &o.TotalAmount,
			&o.ShippingAddress.Street, &o.ShippingAddress.City, &o.ShippingAddress.State, &o.ShippingAddress.ZipCode,
			&o.Status, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, err
		}
		if createdAt.Valid {
			o.CreatedAt = createdAt.String
		}
		if updatedAt.Valid {
			o.UpdatedAt = updatedAt.String
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
