package domain

import (
	"strings"
	"time"
)

// Role is the capability level of an authenticated user.
type Role string

// Roles.
const (
	RoleViewer Role = "VIEWER"
	RoleAdmin  Role = "ADMIN"
)

// ParseRole validates a role read from storage or a token.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(s)); r {
	case RoleViewer, RoleAdmin:
		return r, nil
	}
	return "", ErrInvalidRole
}

// HasPermission reports whether the role grants the required capability.
func (r Role) HasPermission(required Role) bool {
	switch required {
	case RoleViewer:
		return r == RoleViewer || r == RoleAdmin
	case RoleAdmin:
		return r == RoleAdmin
	}
	return false
}

// User is an account able to sign in.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the verified caller of a request.
type Identity struct {
	UserID string
	Email  string
	Role   Role
}

// Authorize admits the caller if it is present and holds the required role.
func Authorize(caller *Identity, required Role) error {
	if caller == nil || !caller.Role.HasPermission(required) {
		return ErrUnauthorized
	}
	return nil
}
