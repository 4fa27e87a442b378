// Package identity authenticates users and issues session tokens.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bissquit/statuspage/internal/domain"
	"github.com/bissquit/statuspage/internal/pkg/ctxlog"
	"golang.org/x/crypto/bcrypt"
)

// Session is a signed access token and its expiry.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Authenticator issues and verifies session tokens.
type Authenticator interface {
	GenerateToken(ctx context.Context, user *domain.User) (*Session, error)
	ValidateToken(ctx context.Context, token string) (*domain.Identity, error)
}

// Service implements identity business logic.
type Service struct {
	repo     Repository
	auth     Authenticator
	hashCost int
}

// NewService creates a new identity service.
func NewService(repo Repository, auth Authenticator) *Service {
	return &Service{
		repo:     repo,
		auth:     auth,
		hashCost: bcrypt.DefaultCost,
	}
}

// LoginInput holds login credentials.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and issues a session.
func (s *Service) Login(ctx context.Context, input LoginInput) (*domain.User, *Session, error) {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			logins.WithLabelValues(loginFailure).Inc()
			return nil, nil, ErrInvalidCredentials
		}
		logins.WithLabelValues(loginError).Inc()
		return nil, nil, domain.StorageFailure("get user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		logins.WithLabelValues(loginFailure).Inc()
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.auth.GenerateToken(ctx, user)
	if err != nil {
		logins.WithLabelValues(loginError).Inc()
		return nil, nil, fmt.Errorf("generate token: %w", err)
	}

	logins.WithLabelValues(loginSuccess).Inc()
	ctxlog.FromContext(ctx).Info("user logged in", "user_id", user.ID, "role", user.Role)

	return user, session, nil
}

// ValidateToken verifies a session token and returns the caller identity.
func (s *Service) ValidateToken(ctx context.Context, token string) (*domain.Identity, error) {
	identity, err := s.auth.ValidateToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return identity, nil
}

// GetUserByID retrieves a user by ID.
func (s *Service) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, domain.StorageFailure("get user", err)
	}
	return user, nil
}

// EnsureAdmin creates an admin account with the given credentials unless a
// user with that email already exists. Existing accounts are left untouched.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)

	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err == nil {
		if existing.Role != domain.RoleAdmin {
			ctxlog.FromContext(ctx).Warn("bootstrap admin email belongs to a non-admin user", "user_id", existing.ID)
		}
		return nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return domain.StorageFailure("get user", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return domain.StorageFailure("create admin", err)
	}

	ctxlog.FromContext(ctx).Info("admin user created", "user_id", user.ID, "email", user.Email)
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
