package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lagat24/greentrace/models"
)

// UserStore is the persistence layer for user rows. Uniqueness of name and
// email is enforced by the table constraints, not by this code; concurrent
// signups for the same email produce exactly one success and one
// DuplicateFieldError.
type UserStore struct {
	db *sqlx.DB
}

// NewUserStore creates a user store on the shared connection pool.
func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a new user and re-fetches the row to obtain the generated
// id. The two statements are independent (no transaction); the unique
// constraint on email is the actual correctness guarantee.
func (s *UserStore) Create(ctx context.Context, name, email, passwordHash string) (models.User, error) {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, created_at) VALUES (?, ?, ?, ?)",
		name, email, passwordHash, time.Now())
	if err != nil {
		return models.User{}, classifyErr(err)
	}

	user, err := s.ByEmail(ctx, email)
	if err != nil {
		return models.User{}, fmt.Errorf("fetching created user: %w", err)
	}
	return user, nil
}

// ByEmail fetches a user by email. Returns ErrNotFound if absent.
func (s *UserStore) ByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user,
		"SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?", email)
	if err == sql.ErrNoRows {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, classifyErr(err)
	}
	return user, nil
}

// ByID fetches a user by id. Returns ErrNotFound if absent.
func (s *UserStore) ByID(ctx context.Context, id int) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user,
		"SELECT id, name, email, password_hash, created_at FROM users WHERE id = ?", id)
	if err == sql.ErrNoRows {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, classifyErr(err)
	}
	return user, nil
}
