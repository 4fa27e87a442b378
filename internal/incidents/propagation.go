package incidents

import (
	"context"
	"fmt"
	"time"

	"github.com/bissquit/statuspage/internal/domain"
	"github.com/jackc/pgx/v5"
)

// StatusUpdater writes a service status within a transaction.
type StatusUpdater interface {
	UpdateServiceStatusTx(ctx context.Context, tx pgx.Tx, id string, status domain.Status, changedAt time.Time) error
}

// StatusPropagator keeps a service's stored status equal to the status of its
// newest incident.
type StatusPropagator struct {
	updater StatusUpdater
}

// NewStatusPropagator creates a propagator writing through updater.
func NewStatusPropagator(updater StatusUpdater) *StatusPropagator {
	return &StatusPropagator{updater: updater}
}

// Propagate copies the incident status onto its service inside tx. The
// incident must already be inserted in tx so that both writes commit or
// roll back together.
func (p *StatusPropagator) Propagate(ctx context.Context, tx pgx.Tx, incident *domain.Incident) error {
	if err := p.updater.UpdateServiceStatusTx(ctx, tx, incident.ServiceID, incident.Status, incident.CreatedAt); err != nil {
		propagationFailures.Inc()
		return fmt.Errorf("%w: %w", ErrStatusPropagation, err)
	}
	return nil
}
