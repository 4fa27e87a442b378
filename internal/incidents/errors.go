package incidents

import "github.com/bissquit/statuspage/internal/domain"

// Incident errors.
var (
	ErrServiceNotFound     = domain.NewError(domain.ErrValidation, "referenced service not found")
	ErrTitleRequired       = domain.NewError(domain.ErrValidation, "title is required")
	ErrDescriptionRequired = domain.NewError(domain.ErrValidation, "description is required")
	ErrTitleTooLong        = domain.NewError(domain.ErrValidation, "title must be at most 255 characters")

	// ErrStatusPropagation means the incident could not be mirrored onto its
	// service; the incident was not persisted either.
	ErrStatusPropagation = domain.NewError(domain.ErrConsistency, "incident status propagation failed")
)
