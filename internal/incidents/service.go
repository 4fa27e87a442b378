// Package incidents records incidents and keeps service status consistent with them.
package incidents

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/bissquit/statuspage/internal/domain"
	"github.com/bissquit/statuspage/internal/pkg/ctxlog"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const maxTitleLength = 255

// Service implements incident business logic.
type Service struct {
	repo       Repository
	catalog    CatalogService
	propagator *StatusPropagator
}

// NewService creates a new incidents service.
func NewService(repo Repository, catalog CatalogService) *Service {
	return &Service{
		repo:       repo,
		catalog:    catalog,
		propagator: NewStatusPropagator(catalog),
	}
}

// CreateIncidentInput holds the caller-supplied fields of a new incident.
type CreateIncidentInput struct {
	Title       string
	Description string
	Status      string
	ServiceID   string
}

// CreateIncident records an incident and sets its service's status to the
// incident status. Both writes happen in one transaction: the service row is
// locked first, so concurrent incidents on one service commit in created_at
// order and the newest incident always determines the service status.
func (s *Service) CreateIncident(ctx context.Context, caller *domain.Identity, input CreateIncidentInput) (*domain.IncidentView, error) {
	if err := domain.Authorize(caller, domain.RoleAdmin); err != nil {
		return nil, err
	}

	incident, err := newIncident(input)
	if err != nil {
		return nil, err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, domain.StorageFailure("begin transaction", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			ctxlog.FromContext(ctx).Error("failed to rollback transaction", "error", err)
		}
	}()

	service, err := s.catalog.GetServiceForUpdateTx(ctx, tx, incident.ServiceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}

	if err := s.repo.CreateIncidentTx(ctx, tx, incident); err != nil {
		return nil, domain.StorageFailure("create incident", err)
	}

	if err := s.propagator.Propagate(ctx, tx, incident); err != nil {
		ctxlog.FromContext(ctx).Error("status propagation failed, rolling back incident",
			"service_id", incident.ServiceID,
			"status", incident.Status,
			"error", err,
		)
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.StorageFailure("commit", err)
	}

	incidentsCreated.WithLabelValues(string(incident.Status)).Inc()
	ctxlog.FromContext(ctx).Info("incident created",
		"incident_id", incident.ID,
		"service_id", incident.ServiceID,
		"status", incident.Status,
		"previous_status", service.Status,
		"user_id", caller.UserID,
	)

	service.Status = incident.Status
	service.UpdatedAt = incident.CreatedAt
	view := domain.NewIncidentView(*incident, *service)
	return &view, nil
}

func newIncident(input CreateIncidentInput) (*domain.Incident, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return nil, ErrTitleTooLong
	}

	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}

	status, err := domain.ParseStatus(input.Status)
	if err != nil {
		return nil, err
	}

	serviceID, err := uuid.Parse(strings.TrimSpace(input.ServiceID))
	if err != nil {
		return nil, ErrServiceNotFound
	}

	return &domain.Incident{
		Title:       title,
		Description: description,
		Status:      status,
		ServiceID:   serviceID.String(),
	}, nil
}

// ListIncidents returns every incident with its service, newest first.
func (s *Service) ListIncidents(ctx context.Context) ([]domain.IncidentView, error) {
	views, err := s.repo.ListIncidentViews(ctx)
	if err != nil {
		return nil, domain.StorageFailure("list incidents", err)
	}
	return views, nil
}

// ListServiceIncidents returns the incidents of one service, newest first.
func (s *Service) ListServiceIncidents(ctx context.Context, serviceID string) ([]domain.Incident, error) {
	if _, err := s.catalog.GetService(ctx, serviceID); err != nil {
		return nil, err
	}

	incidents, err := s.repo.ListServiceIncidents(ctx, serviceID)
	if err != nil {
		return nil, domain.StorageFailure("list service incidents", err)
	}
	return incidents, nil
}
