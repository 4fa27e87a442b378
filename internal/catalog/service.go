package catalog

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bissquit/statuspage/internal/domain"
	"github.com/bissquit/statuspage/internal/pkg/ctxlog"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const maxNameLength = 255

// Service implements catalog business logic.
type Service struct {
	repo Repository
}

// NewService creates a new catalog service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateServiceInput holds the caller-supplied fields of a new service.
type CreateServiceInput struct {
	Name        string
	Description *string
	Status      string
}

// CreateService registers a new monitored service. Only admins may call it.
func (s *Service) CreateService(ctx context.Context, caller *domain.Identity, input CreateServiceInput) (*domain.ServiceView, error) {
	if err := domain.Authorize(caller, domain.RoleAdmin); err != nil {
		return nil, err
	}

	service, err := newService(input)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateService(ctx, service); err != nil {
		return nil, domain.StorageFailure("create service", err)
	}

	servicesCreated.WithLabelValues(string(service.Status)).Inc()
	ctxlog.FromContext(ctx).Info("service created",
		"service_id", service.ID,
		"status", service.Status,
		"user_id", caller.UserID,
	)

	view := domain.NewServiceView(*service, nil)
	return &view, nil
}

func newService(input CreateServiceInput) (*domain.Service, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, ErrNameTooLong
	}

	status, err := domain.ParseStatus(input.Status)
	if err != nil {
		return nil, err
	}

	var description *string
	if input.Description != nil {
		if d := strings.TrimSpace(*input.Description); d != "" {
			description = &d
		}
	}

	return &domain.Service{
		Name:        name,
		Description: description,
		Status:      status,
	}, nil
}

// ListServices returns every service with its latest incident.
func (s *Service) ListServices(ctx context.Context) ([]domain.ServiceView, error) {
	views, err := s.repo.ListServiceViews(ctx)
	if err != nil {
		return nil, domain.StorageFailure("list services", err)
	}
	return views, nil
}

// GetService returns one service with its latest incident.
func (s *Service) GetService(ctx context.Context, id string) (*domain.ServiceView, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrServiceNotFound
	}

	view, err := s.repo.GetServiceView(ctx, id)
	if err != nil {
		return nil, domain.StorageFailure("get service", err)
	}
	return view, nil
}

// GetServiceForUpdateTx locks the service row for the rest of tx.
func (s *Service) GetServiceForUpdateTx(ctx context.Context, tx pgx.Tx, id string) (*domain.Service, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrServiceNotFound
	}

	service, err := s.repo.GetServiceForUpdateTx(ctx, tx, id)
	if err != nil {
		return nil, domain.StorageFailure("lock service", err)
	}
	return service, nil
}

// UpdateServiceStatusTx sets the stored status of a service within tx.
func (s *Service) UpdateServiceStatusTx(ctx context.Context, tx pgx.Tx, id string, status domain.Status, changedAt time.Time) error {
	if !status.IsValid() {
		return domain.ErrInvalidStatus
	}
	if err := s.repo.UpdateServiceStatusTx(ctx, tx, id, status, changedAt); err != nil {
		return domain.StorageFailure("update service status", err)
	}
	return nil
}
