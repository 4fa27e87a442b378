// Package jwt implements session tokens as HS256-signed JWTs.
package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bissquit/statuspage/internal/domain"
	"github.com/bissquit/statuspage/internal/identity"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer is the iss claim of every token.
const Issuer = "statuspage"

// Config contains JWT configuration.
type Config struct {
	SecretKey           string
	AccessTokenDuration time.Duration
}

// Claims are the custom claims carried by an access token.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator issues and validates access tokens.
type Authenticator struct {
	secret   []byte
	duration time.Duration
	now      func() time.Time
}

// NewAuthenticator creates a new JWT authenticator.
func NewAuthenticator(cfg Config) *Authenticator {
	return &Authenticator{
		secret:   []byte(cfg.SecretKey),
		duration: cfg.AccessTokenDuration,
		now:      time.Now,
	}
}

// GenerateToken signs an access token for user.
func (a *Authenticator) GenerateToken(_ context.Context, user *domain.User) (*identity.Session, error) {
	now := a.now()
	expiresAt := now.Add(a.duration)

	claims := Claims{
		Email: user.Email,
		Role:  string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &identity.Session{Token: token, ExpiresAt: expiresAt}, nil
}

// ValidateToken parses and verifies an access token. The role claim is
// validated here so the rest of the system only sees known roles.
func (a *Authenticator) ValidateToken(_ context.Context, tokenString string) (*domain.Identity, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(*jwt.Token) (interface{}, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return nil, fmt.Errorf("token role: %w", err)
	}

	return &domain.Identity{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   role,
	}, nil
}
