package identity

import "github.com/bissquit/statuspage/internal/domain"

// Identity errors.
var (
	ErrUserNotFound       = domain.NewError(domain.ErrNotFound, "user not found")
	ErrInvalidCredentials = domain.NewError(domain.ErrUnauthorized, "invalid email or password")
	ErrInvalidToken       = domain.NewError(domain.ErrUnauthorized, "invalid or expired token")
)
