// Package postgres provides PostgreSQL implementation of the identity repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/bissquit/statuspage/internal/domain"
	"github.com/bissquit/statuspage/internal/identity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements identity.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateUser inserts a new user.
func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (email, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, user.Email, user.PasswordHash, user.Role).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getUser(ctx, "id", id)
}

// GetUserByEmail retrieves a user by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getUser(ctx, "email", email)
}

func (r *Repository) getUser(ctx context.Context, column, value string) (*domain.User, error) {
	query := `SELECT id, email, password_hash, role, created_at FROM users WHERE ` + column + ` = $1`

	var (
		user domain.User
		role string
	)
	err := r.db.QueryRow(ctx, query, value).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&role,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by %s: %w", column, err)
	}

	user.Role, err = domain.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", user.ID, err)
	}
	return &user, nil
}
