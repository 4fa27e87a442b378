// Package httputil provides HTTP response helpers and middleware shared by the API handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// JSON writes a raw JSON response without envelope.
// Use Success for {"data": ...} wrapped responses.
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// Text writes a plain text response.
func Text(w http.ResponseWriter, statusCode int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)
	if _, err := w.Write([]byte(text)); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// Success writes a JSON response with {"data": ...} envelope.
func Success(w http.ResponseWriter, status int, data interface{}) {
	JSON(w, status, map[string]interface{}{"data": data})
}

// CategorizedError writes {"error": {"message": ..., "category": ...}}.
func CategorizedError(w http.ResponseWriter, status int, category, message string) {
	JSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"message":  message,
			"category": category,
		},
	})
}

// Unauthorized writes the authorization failure response.
func Unauthorized(w http.ResponseWriter) {
	CategorizedError(w, http.StatusUnauthorized, CategoryAuthorization, "unauthorized")
}

// BadRequest writes a validation failure with a plain message.
func BadRequest(w http.ResponseWriter, message string) {
	CategorizedError(w, http.StatusBadRequest, CategoryValidation, message)
}

// ValidationError writes a validation error response.
// If err is validator.ValidationErrors, returns structured field details.
// Otherwise, returns err.Error() as details string.
func ValidationError(w http.ResponseWriter, err error) {
	var details interface{}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fieldErrors := make([]map[string]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			fieldErrors = append(fieldErrors, map[string]string{
				"field":   e.Field(),
				"message": e.Tag(),
			})
		}
		details = fieldErrors
	} else {
		details = err.Error()
	}

	JSON(w, http.StatusBadRequest, map[string]interface{}{
		"error": map[string]interface{}{
			"message":  "validation error",
			"category": CategoryValidation,
			"details":  details,
		},
	})
}
