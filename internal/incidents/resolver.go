package incidents

import (
	"context"
	"time"

	"github.com/bissquit/statuspage/internal/domain"
	"github.com/jackc/pgx/v5"
)

// ServiceReader resolves a service for read-only queries.
type ServiceReader interface {
	GetService(ctx context.Context, id string) (*domain.ServiceView, error)
}

// CatalogServiceUpdater locks and updates services within a transaction.
type CatalogServiceUpdater interface {
	GetServiceForUpdateTx(ctx context.Context, tx pgx.Tx, id string) (*domain.Service, error)
	UpdateServiceStatusTx(ctx context.Context, tx pgx.Tx, id string, status domain.Status, changedAt time.Time) error
}

// CatalogService is the part of the catalog module incidents depend on.
type CatalogService interface {
	ServiceReader
	CatalogServiceUpdater
}
