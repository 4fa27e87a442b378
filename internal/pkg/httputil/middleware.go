package httputil

import (
	"context"
	"net/http"
	"strings"

	"github.com/bissquit/statuspage/internal/domain"
	"github.com/bissquit/statuspage/internal/pkg/ctxlog"
	"golang.org/x/time/rate"
)

// AccessTokenCookie is the cookie holding the session token.
const AccessTokenCookie = "access_token"

// CORSMiddleware creates CORS middleware that handles preflight requests
// and adds appropriate CORS headers to responses.
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	originsSet := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originsSet[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if origin != "" && (originsSet[origin] || originsSet["*"]) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.Header().Set("Access-Control-Max-Age", "86400")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type identityKey struct{}

// TokenValidator turns a session token into a verified identity.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*domain.Identity, error)
}

// Authenticate resolves the caller identity from the Authorization header or the
// session cookie. Requests without a valid token continue anonymously; the
// decision to reject them belongs to RequireRole.
func Authenticate(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := validator.ValidateToken(r.Context(), token)
			if err != nil {
				ctxlog.FromContext(r.Context()).Debug("ignoring invalid session token", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithIdentity(r.Context(), identity)
			ctx = ctxlog.With(ctx, "user_id", identity.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects callers the authorization gate does not admit.
// Both missing and insufficient identities get 401.
func RequireRole(required domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := domain.Authorize(GetIdentity(r.Context()), required); err != nil {
				Unauthorized(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit rejects requests above the limiter's rate with 429.
func RateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				CategorizedError(w, http.StatusTooManyRequests, CategoryRateLimited, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithIdentity stores the caller identity in the context.
func WithIdentity(ctx context.Context, identity *domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// GetIdentity returns the caller identity, or nil for anonymous requests.
func GetIdentity(ctx context.Context) *domain.Identity {
	if identity, ok := ctx.Value(identityKey{}).(*domain.Identity); ok {
		return identity
	}
	return nil
}

func tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}
