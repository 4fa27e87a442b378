package httputil

import (
	"context"
	"errors"
	"net/http"

	"github.com/bissquit/statuspage/internal/domain"
	"github.com/bissquit/statuspage/internal/pkg/ctxlog"
)

// Error categories reported to clients.
const (
	CategoryAuthorization = "authorization_failure"
	CategoryValidation    = "validation_failure"
	CategoryNotFound      = "not_found"
	CategoryStorage       = "storage_failure"
	CategoryConsistency   = "consistency_failure"
	CategoryRateLimited   = "rate_limited"
	CategoryInternal      = "internal_error"
)

// ErrorMapping defines how a domain error maps to an HTTP response.
type ErrorMapping struct {
	Error    error
	Status   int
	Category string
	Message  string // if empty, uses the domain.Error message
}

// A consistency failure wraps its cause, so it is matched before the cause's own category.
var categoryMappings = []ErrorMapping{
	{Error: domain.ErrUnauthorized, Status: http.StatusUnauthorized, Category: CategoryAuthorization, Message: "unauthorized"},
	{Error: domain.ErrConsistency, Status: http.StatusInternalServerError, Category: CategoryConsistency, Message: "incident status propagation failed"},
	{Error: domain.ErrValidation, Status: http.StatusBadRequest, Category: CategoryValidation},
	{Error: domain.ErrNotFound, Status: http.StatusNotFound, Category: CategoryNotFound},
	{Error: domain.ErrStorage, Status: http.StatusInternalServerError, Category: CategoryStorage, Message: "internal error"},
}

// HandleError maps an error to an HTTP response. Handler-specific mappings are
// checked first, then the domain categories. Server-side failures are logged and
// answered with a generic message.
func HandleError(ctx context.Context, w http.ResponseWriter, err error, mappings ...ErrorMapping) {
	for _, m := range append(mappings, categoryMappings...) {
		if !errors.Is(err, m.Error) {
			continue
		}
		if m.Status >= http.StatusInternalServerError {
			ctxlog.FromContext(ctx).Error("request failed", "category", m.Category, "error", err)
		}
		msg := m.Message
		if msg == "" {
			msg = publicMessage(err)
		}
		CategorizedError(w, m.Status, m.Category, msg)
		return
	}
	ctxlog.FromContext(ctx).Error("internal error", "error", err)
	CategorizedError(w, http.StatusInternalServerError, CategoryInternal, "internal error")
}

func publicMessage(err error) string {
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "request failed"
}
