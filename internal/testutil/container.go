package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/bissquit/statuspage/internal/pkg/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresContainer wraps a postgres testcontainer.
type PostgresContainer struct {
	*tcpostgres.PostgresContainer
	ConnectionString string
}

// NewPostgresContainer starts PostgreSQL and applies the repository migrations.
func NewPostgresContainer(ctx context.Context) (*PostgresContainer, error) {
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("statuspage"),
		tcpostgres.WithUsername("statuspage"),
		tcpostgres.WithPassword("statuspage"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, fmt.Errorf("get connection string: %w", err)
	}

	if err := postgres.Migrate(connStr, MigrationsDir()); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &PostgresContainer{
		PostgresContainer: container,
		ConnectionString:  connStr,
	}, nil
}

// Pool opens a small connection pool to the container.
func (c *PostgresContainer) Pool(ctx context.Context) (*pgxpool.Pool, error) {
	return postgres.Connect(ctx, postgres.Config{
		URL:             c.ConnectionString,
		MaxOpenConns:    10,
		MaxIdleConns:    1,
		ConnMaxLifetime: 5 * time.Minute,
		ConnectAttempts: 3,
	})
}

// Truncate removes all services, incidents and users.
func Truncate(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, `TRUNCATE incidents, services, users`)
	return err
}

// RepoRoot returns the repository root directory.
func RepoRoot() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..")
}

// MigrationsDir returns the absolute path of the migrations directory.
func MigrationsDir() string {
	return filepath.Join(RepoRoot(), "migrations")
}

// OpenAPISpecPath returns the absolute path of the OpenAPI document.
func OpenAPISpecPath() string {
	return filepath.Join(RepoRoot(), "api", "openapi", "openapi.yaml")
}
