package cart

import (
	"database/sql"
	"encoding/json"
)

// PostgresRepository stores each cart as one row with an ordered jsonb array
// of items, so line order survives round trips.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Find(userID int) (Cart, error) {
	var (
		raw       []byte
		createdAt sql.NullString
		updatedAt sql.NullString
	)
	err := r.db.QueryRow(`SELECT items, created_at, updated_at FROM carts WHERE user_id = $1`, userID).
		Scan(&raw, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return Cart{}, ErrNotFound
		}
		return Cart{}, err
	}

	c := Cart{UserID: userID, Items: []Item{}}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &c.Items); err != nil {
			return Cart{}, err
		}
	}
	if createdAt.Valid {
		c.CreatedAt = createdAt.String
	}
	if updatedAt.Valid {
		c.UpdatedAt = updatedAt.String
	}
	return c, nil
}

func (r *PostgresRepository) Save(c Cart) error {
	items := c.Items
	if items == nil {
		items = []Item{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`
		INSERT INTO carts (user_id, items, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET items = $2, updated_at = $4`,
		c.UserID, raw, c.CreatedAt, c.UpdatedAt)
	return err
}
