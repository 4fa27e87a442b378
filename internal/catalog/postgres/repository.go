// Package postgres provides PostgreSQL implementation of the catalog repository.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bissquit/statuspage/internal/catalog"
	"github.com/bissquit/statuspage/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements the catalog.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// serviceViewQuery selects services joined with their newest incident, if any.
// Ties on created_at are broken by id so the choice is stable.
const serviceViewQuery = `
	SELECT s.id, s.name, s.description, s.status, s.created_at, s.updated_at,
	       i.id, i.title, i.description, i.status, i.created_at
	FROM services s
	LEFT JOIN LATERAL (
		SELECT id, title, description, status, created_at
		FROM incidents
		WHERE service_id = s.id
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	) i ON true
`

// CreateService inserts a new service.
func (r *Repository) CreateService(ctx context.Context, service *domain.Service) error {
	query := `
		INSERT INTO services (name, description, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		service.Name,
		service.Description,
		service.Status,
	).Scan(&service.ID, &service.CreatedAt, &service.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}
	return nil
}

// GetServiceView retrieves a service and its latest incident by ID.
func (r *Repository) GetServiceView(ctx context.Context, id string) (*domain.ServiceView, error) {
	view, err := scanServiceView(r.db.QueryRow(ctx, serviceViewQuery+" WHERE s.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrServiceNotFound
		}
		return nil, fmt.Errorf("get service: %w", err)
	}
	return view, nil
}

// ListServiceViews retrieves all services ordered by name.
func (r *Repository) ListServiceViews(ctx context.Context) ([]domain.ServiceView, error) {
	rows, err := r.db.Query(ctx, serviceViewQuery+" ORDER BY s.name, s.id")
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	views := make([]domain.ServiceView, 0)
	for rows.Next() {
		view, err := scanServiceView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		views = append(views, *view)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services: %w", err)
	}

	return views, nil
}

// GetServiceForUpdateTx retrieves a service and locks its row until tx ends.
func (r *Repository) GetServiceForUpdateTx(ctx context.Context, tx pgx.Tx, id string) (*domain.Service, error) {
	query := `
		SELECT id, name, description, status, created_at, updated_at
		FROM services
		WHERE id = $1
		FOR UPDATE
	`
	var service domain.Service
	err := tx.QueryRow(ctx, query, id).Scan(
		&service.ID,
		&service.Name,
		&service.Description,
		&service.Status,
		&service.CreatedAt,
		&service.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrServiceNotFound
		}
		return nil, fmt.Errorf("lock service: %w", err)
	}
	return &service, nil
}

// UpdateServiceStatusTx updates the stored status of a service within a transaction.
func (r *Repository) UpdateServiceStatusTx(ctx context.Context, tx pgx.Tx, id string, status domain.Status, changedAt time.Time) error {
	query := `UPDATE services SET status = $2, updated_at = $3 WHERE id = $1`
	result, err := tx.Exec(ctx, query, id, status, changedAt)
	if err != nil {
		return fmt.Errorf("update service status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return catalog.ErrServiceNotFound
	}
	return nil
}

func scanServiceView(row pgx.Row) (*domain.ServiceView, error) {
	var (
		service             domain.Service
		incidentID          *string
		incidentTitle       *string
		incidentDescription *string
		incidentStatus      *string
		incidentCreatedAt   *time.Time
	)

	err := row.Scan(
		&service.ID,
		&service.Name,
		&service.Description,
		&service.Status,
		&service.CreatedAt,
		&service.UpdatedAt,
		&incidentID,
		&incidentTitle,
		&incidentDescription,
		&incidentStatus,
		&incidentCreatedAt,
	)
	if err != nil {
		return nil, err
	}

	var latest *domain.Incident
	if incidentID != nil {
		latest = &domain.Incident{
			ID:          *incidentID,
			Title:       *incidentTitle,
			Description: *incidentDescription,
			Status:      domain.Status(*incidentStatus),
			ServiceID:   service.ID,
			CreatedAt:   *incidentCreatedAt,
		}
	}

	view := domain.NewServiceView(service, latest)
	return &view, nil
}
