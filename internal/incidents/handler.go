package incidents

import (
	"encoding/json"
	"net/http"

	"github.com/bissquit/statuspage/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Handler handles HTTP requests for incidents.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new incidents handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: httputil.NewValidator(),
	}
}

// RegisterPublicRoutes registers read-only routes.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/incidents", h.ListIncidents)
	r.Get("/services/{id}/incidents", h.ListServiceIncidents)
}

// RegisterAdminRoutes registers routes that require the admin role.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/incidents", h.CreateIncident)
}

// CreateIncidentRequest represents the request body for creating an incident.
type CreateIncidentRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"required,max=10000"`
	Status      string `json:"status" validate:"required,status"`
	ServiceID   string `json:"service_id" validate:"required"`
}

// CreateIncident handles POST /incidents request.
func (h *Handler) CreateIncident(w http.ResponseWriter, r *http.Request) {
	var req CreateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	incident, err := h.service.CreateIncident(r.Context(), httputil.GetIdentity(r.Context()), CreateIncidentInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		ServiceID:   req.ServiceID,
	})
	if err != nil {
		httputil.HandleError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusCreated, incident)
}

// ListIncidents handles GET /incidents request.
func (h *Handler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	incidents, err := h.service.ListIncidents(r.Context())
	if err != nil {
		httputil.HandleError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusOK, incidents)
}

// ListServiceIncidents handles GET /services/{id}/incidents request.
func (h *Handler) ListServiceIncidents(w http.ResponseWriter, r *http.Request) {
	incidents, err := h.service.ListServiceIncidents(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusOK, incidents)
}
