package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bissquit/statuspage/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// mockRepository implements Repository for testing.
type mockRepository struct {
	users          map[string]*domain.User
	createUserErr  error
	getUserByEmail func(email string) (*domain.User, error)
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *mockRepository) CreateUser(_ context.Context, user *domain.User) error {
	if m.createUserErr != nil {
		return m.createUserErr
	}
	user.ID = "test-user-id"
	user.CreatedAt = time.Now()
	m.users[user.Email] = user
	return nil
}

func (m *mockRepository) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *mockRepository) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	if m.getUserByEmail != nil {
		return m.getUserByEmail(email)
	}
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

// mockAuthenticator implements Authenticator for testing.
type mockAuthenticator struct {
	generateErr error
}

func (m *mockAuthenticator) GenerateToken(_ context.Context, user *domain.User) (*Session, error) {
	if m.generateErr != nil {
		return nil, m.generateErr
	}
	return &Session{Token: "token-for-" + user.ID, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (m *mockAuthenticator) ValidateToken(_ context.Context, token string) (*domain.Identity, error) {
	if token != "valid" {
		return nil, errors.New("signature is invalid")
	}
	return &domain.Identity{UserID: "test-user-id", Role: domain.RoleAdmin}, nil
}

func newTestService(repo *mockRepository, auth *mockAuthenticator) *Service {
	svc := NewService(repo, auth)
	svc.hashCost = bcrypt.MinCost
	return svc
}

func addUser(t *testing.T, repo *mockRepository, email, password string, role domain.Role) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &domain.User{ID: "user-" + email, Email: email, PasswordHash: string(hash), Role: role}
	repo.users[email] = user
	return user
}

func TestLogin_Success(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	user := addUser(t, repo, "admin@example.com", "s3cret-pass", domain.RoleAdmin)
	service := newTestService(repo, &mockAuthenticator{})

	// Act
	got, session, err := service.Login(context.Background(), LoginInput{
		Email:    "  Admin@Example.com ",
		Password: "s3cret-pass",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "token-for-"+user.ID, session.Token)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	repo := newMockRepository()
	addUser(t, repo, "admin@example.com", "s3cret-pass", domain.RoleAdmin)
	service := newTestService(repo, &mockAuthenticator{})

	tests := []struct {
		name  string
		input LoginInput
	}{
		{"wrong password", LoginInput{Email: "admin@example.com", Password: "guess"}},
		{"unknown email", LoginInput{Email: "nobody@example.com", Password: "s3cret-pass"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, session, err := service.Login(context.Background(), tt.input)

			assert.Nil(t, user)
			assert.Nil(t, session)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}

func TestLogin_RepositoryFailure(t *testing.T) {
	repo := newMockRepository()
	repo.getUserByEmail = func(string) (*domain.User, error) {
		return nil, errors.New("connection refused")
	}
	service := newTestService(repo, &mockAuthenticator{})

	_, _, err := service.Login(context.Background(), LoginInput{Email: "a@example.com", Password: "x"})

	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateToken(t *testing.T) {
	service := newTestService(newMockRepository(), &mockAuthenticator{})

	identity, err := service.ValidateToken(context.Background(), "valid")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, identity.Role)

	_, err = service.ValidateToken(context.Background(), "forged")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestEnsureAdmin_CreatesMissingAdmin(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	service := newTestService(repo, &mockAuthenticator{})

	// Act
	err := service.EnsureAdmin(context.Background(), "Admin@Example.com", "bootstrap-pass")

	// Assert
	require.NoError(t, err)
	user, ok := repo.users["admin@example.com"]
	require.True(t, ok)
	assert.Equal(t, domain.RoleAdmin, user.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("bootstrap-pass")))

	_, _, err = service.Login(context.Background(), LoginInput{Email: "admin@example.com", Password: "bootstrap-pass"})
	assert.NoError(t, err)
}

func TestEnsureAdmin_KeepsExistingUser(t *testing.T) {
	repo := newMockRepository()
	existing := addUser(t, repo, "admin@example.com", "original", domain.RoleAdmin)
	service := newTestService(repo, &mockAuthenticator{})

	require.NoError(t, service.EnsureAdmin(context.Background(), "admin@example.com", "changed"))

	assert.Same(t, existing, repo.users["admin@example.com"])
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(existing.PasswordHash), []byte("original")))
}

func TestEnsureAdmin_CreateFails(t *testing.T) {
	repo := newMockRepository()
	repo.createUserErr = errors.New("unique violation")
	service := newTestService(repo, &mockAuthenticator{})

	err := service.EnsureAdmin(context.Background(), "admin@example.com", "pass")

	assert.ErrorIs(t, err, domain.ErrStorage)
}
