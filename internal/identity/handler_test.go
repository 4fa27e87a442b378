package identity

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bissquit/statuspage/internal/domain"
	"github.com/bissquit/statuspage/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, repo *mockRepository) http.Handler {
	t.Helper()
	svc := newTestService(repo, &mockAuthenticator{})
	h := NewHandler(svc, CookieSettings{Secure: true})

	r := chi.NewRouter()
	r.Use(httputil.Authenticate(svc))
	h.RegisterRoutes(r)
	h.RegisterProtectedRoutes(r)
	return r
}

func TestHandler_Login(t *testing.T) {
	repo := newMockRepository()
	user := addUser(t, repo, "admin@example.com", "s3cret-pass", domain.RoleAdmin)
	router := newTestRouter(t, repo)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"admin@example.com","password":"s3cret-pass"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password_hash")

	var body struct {
		Data LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "token-for-"+user.ID, body.Data.AccessToken)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, httputil.AccessTokenCookie, cookies[0].Name)
	assert.Equal(t, body.Data.AccessToken, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
}

func TestHandler_Login_Failures(t *testing.T) {
	repo := newMockRepository()
	addUser(t, repo, "admin@example.com", "s3cret-pass", domain.RoleAdmin)
	router := newTestRouter(t, repo)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"invalid json", `{`, http.StatusBadRequest},
		{"invalid email", `{"email":"admin","password":"x"}`, http.StatusBadRequest},
		{"wrong password", `{"email":"admin@example.com","password":"nope"}`, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Empty(t, rec.Result().Cookies())
		})
	}
}

func TestHandler_Logout(t *testing.T) {
	router := newTestRouter(t, newMockRepository())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, httputil.AccessTokenCookie, cookies[0].Name)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestHandler_Me(t *testing.T) {
	repo := newMockRepository()
	repo.users["admin@example.com"] = &domain.User{ID: "test-user-id", Email: "admin@example.com", Role: domain.RoleAdmin}
	router := newTestRouter(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer valid")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"data":{"user_id":"test-user-id","email":"admin@example.com","role":"ADMIN","is_admin":true}}`,
		rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
