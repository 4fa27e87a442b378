package identity

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/bissquit/statuspage/internal/domain"
	"github.com/bissquit/statuspage/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// CookieSettings contains settings for the session cookie.
type CookieSettings struct {
	Secure bool
	Domain string
}

// Handler handles HTTP requests for the identity module.
type Handler struct {
	service        *Service
	validator      *validator.Validate
	cookieSettings CookieSettings
}

// NewHandler creates a new identity handler.
func NewHandler(service *Service, cookieSettings CookieSettings) *Handler {
	return &Handler{
		service:        service,
		validator:      httputil.NewValidator(),
		cookieSettings: cookieSettings,
	}
}

// RegisterRoutes registers login and logout. Login is wrapped by the given
// middlewares, typically a rate limiter.
func (h *Handler) RegisterRoutes(r chi.Router, loginMiddlewares ...func(http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.With(loginMiddlewares...).Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})
}

// RegisterProtectedRoutes registers routes that require an identity.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/me", h.Me)
}

// LoginRequest represents login request body.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents login response.
type LoginResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

// MeResponse describes the current caller.
type MeResponse struct {
	UserID  string      `json:"user_id"`
	Email   string      `json:"email"`
	Role    domain.Role `json:"role"`
	IsAdmin bool        `json:"is_admin"`
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	user, session, err := h.service.Login(r.Context(), LoginInput(req))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, httputil.ErrorMapping{
			Error:    ErrInvalidCredentials,
			Status:   http.StatusUnauthorized,
			Category: httputil.CategoryAuthorization,
		})
		return
	}

	h.setSessionCookie(w, session)

	httputil.Success(w, http.StatusOK, LoginResponse{
		User:        user,
		AccessToken: session.Token,
		ExpiresAt:   session.ExpiresAt,
	})
}

// Logout handles POST /auth/logout. Tokens are stateless, so logging out only
// clears the cookie.
func (h *Handler) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     httputil.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		Domain:   h.cookieSettings.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSettings.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	identity := httputil.GetIdentity(r.Context())
	if identity == nil {
		httputil.Unauthorized(w)
		return
	}

	user, err := h.service.GetUserByID(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			httputil.Unauthorized(w)
			return
		}
		httputil.HandleError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusOK, MeResponse{
		UserID:  user.ID,
		Email:   user.Email,
		Role:    user.Role,
		IsAdmin: user.Role == domain.RoleAdmin,
	})
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, session *Session) {
	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}

	http.SetCookie(w, &http.Cookie{
		Name:     httputil.AccessTokenCookie,
		Value:    session.Token,
		Path:     "/",
		Domain:   h.cookieSettings.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookieSettings.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
