package catalog

import (
	"context"
	"time"

	"github.com/bissquit/statuspage/internal/domain"
	"github.com/jackc/pgx/v5"
)

// Repository defines the interface for service storage.
type Repository interface {
	CreateService(ctx context.Context, service *domain.Service) error
	GetServiceView(ctx context.Context, id string) (*domain.ServiceView, error)
	ListServiceViews(ctx context.Context) ([]domain.ServiceView, error)

	// Transaction methods
	GetServiceForUpdateTx(ctx context.Context, tx pgx.Tx, id string) (*domain.Service, error)
	UpdateServiceStatusTx(ctx context.Context, tx pgx.Tx, id string, status domain.Status, changedAt time.Time) error
}
