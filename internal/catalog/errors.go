package catalog

import "github.com/bissquit/statuspage/internal/domain"

// Catalog errors.
var (
	ErrServiceNotFound = domain.NewError(domain.ErrNotFound, "service not found")
	ErrNameRequired    = domain.NewError(domain.ErrValidation, "name is required")
	ErrNameTooLong     = domain.NewError(domain.ErrValidation, "name must be at most 255 characters")
)
