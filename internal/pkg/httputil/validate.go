package httputil

import (
	"reflect"
	"strings"

	"github.com/bissquit/statuspage/internal/domain"
	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator that reports JSON field names and knows the
// "status" tag for domain.Status values.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("status", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseStatus(fl.Field().String())
		return err == nil
	})

	return v
}
