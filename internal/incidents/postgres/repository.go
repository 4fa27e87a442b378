// Package postgres provides PostgreSQL implementation of the incidents repository.
package postgres

import (
	"context"
	"fmt"

	"github.com/bissquit/statuspage/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements incidents.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// BeginTx starts a new transaction.
func (r *Repository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.db.Begin(ctx)
}

// CreateIncidentTx inserts an incident within a transaction. The database
// assigns id and created_at.
func (r *Repository) CreateIncidentTx(ctx context.Context, tx pgx.Tx, incident *domain.Incident) error {
	query := `
		INSERT INTO incidents (title, description, status, service_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := tx.QueryRow(ctx, query,
		incident.Title,
		incident.Description,
		incident.Status,
		incident.ServiceID,
	).Scan(&incident.ID, &incident.CreatedAt)

	if err != nil {
		return fmt.Errorf("create incident: %w", err)
	}
	return nil
}

// ListIncidentViews retrieves all incidents with their services, newest first.
func (r *Repository) ListIncidentViews(ctx context.Context) ([]domain.IncidentView, error) {
	query := `
		SELECT i.id, i.title, i.description, i.status, i.service_id, i.created_at,
		       s.id, s.name, s.description, s.status, s.created_at, s.updated_at
		FROM incidents i
		JOIN services s ON s.id = i.service_id
		ORDER BY i.created_at DESC, i.id DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	views := make([]domain.IncidentView, 0)
	for rows.Next() {
		var (
			incident domain.Incident
			service  domain.Service
		)
		err := rows.Scan(
			&incident.ID,
			&incident.Title,
			&incident.Description,
			&incident.Status,
			&incident.ServiceID,
			&incident.CreatedAt,
			&service.ID,
			&service.Name,
			&service.Description,
			&service.Status,
			&service.CreatedAt,
			&service.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		views = append(views, domain.NewIncidentView(incident, service))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incidents: %w", err)
	}

	return views, nil
}

// ListServiceIncidents retrieves the incidents of one service, newest first.
func (r *Repository) ListServiceIncidents(ctx context.Context, serviceID string) ([]domain.Incident, error) {
	query := `
		SELECT id, title, description, status, service_id, created_at
		FROM incidents
		WHERE service_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, serviceID)
	if err != nil {
		return nil, fmt.Errorf("list service incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]domain.Incident, 0)
	for rows.Next() {
		var incident domain.Incident
		err := rows.Scan(
			&incident.ID,
			&incident.Title,
			&incident.Description,
			&incident.Status,
			&incident.ServiceID,
			&incident.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		incidents = append(incidents, incident)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate service incidents: %w", err)
	}

	return incidents, nil
}
