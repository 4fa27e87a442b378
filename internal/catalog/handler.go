// Package catalog provides HTTP handlers and business logic for monitored services.
package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/bissquit/statuspage/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Handler handles HTTP requests for the catalog module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new catalog handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: httputil.NewValidator(),
	}
}

// RegisterPublicRoutes registers read-only routes.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/services", h.ListServices)
	r.Get("/services/{id}", h.GetService)
}

// RegisterAdminRoutes registers routes that require the admin role.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/services", h.CreateService)
}

// CreateServiceRequest represents the request body for creating a service.
type CreateServiceRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Status      string  `json:"status" validate:"required,status"`
}

// CreateService handles POST /services request.
func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req CreateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	service, err := h.service.CreateService(r.Context(), httputil.GetIdentity(r.Context()), CreateServiceInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		httputil.HandleError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusCreated, service)
}

// ListServices handles GET /services request.
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.service.ListServices(r.Context())
	if err != nil {
		httputil.HandleError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusOK, services)
}

// GetService handles GET /services/{id} request.
func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	service, err := h.service.GetService(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusOK, service)
}
