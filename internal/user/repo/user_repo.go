package repo

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"taskboard-backend/internal/storage"
	"taskboard-backend/internal/user/entity"
)

// UserRepo provides data access for the users table using sqlx.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// EnsureTable creates the users table if not exists (idempotent).
func (r *UserRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS users (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure users table: %w", storage.Classify(err))
	}
	return nil
}

// Create inserts a new user row and fills in the generated id and timestamp.
// A duplicate email surfaces as storage.ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	const q = `INSERT INTO users (name, email, password_hash)
	           VALUES ($1, $2, $3)
	           RETURNING id, created_at`
	err := r.db.QueryRowxContext(ctx, q, u.Name, u.Email, u.PasswordHash).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", storage.Classify(err))
	}
	return nil
}

// GetByEmail returns the user with the given normalized email, or
// storage.ErrNotFound.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	const q = `SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1`
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, email); err != nil {
		return nil, fmt.Errorf("get user by email: %w", storage.Classify(err))
	}
	return &u, nil
}
