package incidents

import (
	"context"

	"github.com/bissquit/statuspage/internal/domain"
	"github.com/jackc/pgx/v5"
)

// Repository defines the interface for incident storage.
type Repository interface {
	ListIncidentViews(ctx context.Context) ([]domain.IncidentView, error)
	ListServiceIncidents(ctx context.Context, serviceID string) ([]domain.Incident, error)

	// Transaction support
	BeginTx(ctx context.Context) (pgx.Tx, error)
	CreateIncidentTx(ctx context.Context, tx pgx.Tx, incident *domain.Incident) error
}
