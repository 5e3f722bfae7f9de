package analytics

import "database/sql"

type Repository interface {
	Dashboard() (Dashboard, error)
}

type PostgresRepository struct {
	db *sql.DB
}

const (
	totalRevenueQuery = `SELECT COALESCE(SUM(total_amount), 0) FROM orders`

	// unrolls each order's items jsonb array and ranks products by summed
	// quantity
	topProductsQuery = `
		SELECT p.product_id, p.name, p.category, p.price, s.total_sold
		FROM (
			SELECT (item->>'productId')::int AS product_id,
			       SUM((item->>'quantity')::int) AS total_sold
			FROM orders, jsonb_array_elements(items) AS item
			GROUP BY 1
			ORDER BY total_sold DESC
			LIMIT 5
		) s
		JOIN products p ON p.product_id = s.product_id
		ORDER BY s.total_sold DESC
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Dashboard() (Dashboard, error) {
	var d Dashboard

	if err := r.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&d.TotalUsers); err != nil {
		return Dashboard{}, err
	}
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&d.TotalOrders); err != nil {
		return Dashboard{}, err
	}
	if err := r.db.QueryRow(totalRevenueQuery).Scan(&d.TotalRevenue); err != nil {
		return Dashboard{}, err
	}

	rows, err := r.db.Query(topProductsQuery)
	if err != nil {
		return Dashboard{}, err
	}
	defer rows.Close()

	d.TopSellingProducts = make([]TopProduct, 0, 5)
	for rows.Next() {
		var tp TopProduct
		if err := rows.Scan(&tp.ProductID, &tp.Name, &tp.Category, &tp.Price, &tp.TotalSold); err != nil {
			return Dashboard{}, err
		}
		d.TopSellingProducts = append(d.TopSellingProducts, tp)
	}
	return d, rows.Err()
}
