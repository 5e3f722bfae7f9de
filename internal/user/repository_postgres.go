package user

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

const (
	getUserByIDQuery = `
		SELECT user_id, name, email, password, role, created_at, updated_at
		FROM users
		WHERE user_id = $1
	`
	getUserByEmailQuery = `
		SELECT user_id, name, email, password, role, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	insertUserQuery = `
		INSERT INTO users (name, email, password, role, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING user_id
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(id int) (User, error) {
	return scanUser(r.db.QueryRow(getUserByIDQuery, id))
}

func (r *PostgresRepository) GetByEmail(email string) (User, error) {
	return scanUser(r.db.QueryRow(getUserByEmailQuery, email))
}

func (r *PostgresRepository) Create(u User) (User, error) {
	var id int
	err := r.db.QueryRow(insertUserQuery, u.Name, u.Email, u.Password, u.Role, u.CreatedAt, u.UpdatedAt).Scan(&id)
	if err != nil {
		return User{}, err
	}
	u.ID = id
	return u, nil
}

// FindByRole returns any one user holding the given role. Used by the
// startup admin seeding to detect whether an Admin already exists.
func (r *PostgresRepository) FindByRole(role string) (User, error) {
	row := r.db.QueryRow(`
		SELECT user_id, name, email, password, role, created_at, updated_at
		FROM users
		WHERE role = $1
		LIMIT 1`, role)
	return scanUser(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(scanner rowScanner) (User, error) {
	var u User
	var createdAt, updatedAt sql.NullString
	if err := scanner.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	if createdAt.Valid {
		u.CreatedAt = createdAt.String
	}
	if updatedAt.Valid {
		u.UpdatedAt = updatedAt.String
	}
	return u, nil
}
