package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bissquit/statuspage/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errorBody struct {
	Error struct {
		Message  string `json:"message"`
		Category string `json:"category"`
	} `json:"error"`
}

func TestHandleError_Categories(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantStatus   int
		wantCategory string
		wantMessage  string
	}{
		{
			name:         "authorization",
			err:          domain.ErrUnauthorized,
			wantStatus:   http.StatusUnauthorized,
			wantCategory: CategoryAuthorization,
			wantMessage:  "unauthorized",
		},
		{
			name:         "validation keeps its message",
			err:          fmt.Errorf("create: %w", domain.NewError(domain.ErrValidation, "name is required")),
			wantStatus:   http.StatusBadRequest,
			wantCategory: CategoryValidation,
			wantMessage:  "name is required",
		},
		{
			name:         "not found",
			err:          domain.NewError(domain.ErrNotFound, "service not found"),
			wantStatus:   http.StatusNotFound,
			wantCategory: CategoryNotFound,
			wantMessage:  "service not found",
		},
		{
			name:         "consistency hides cause",
			err:          fmt.Errorf("%w: %w", domain.NewError(domain.ErrConsistency, "status propagation failed"), errors.New("deadlock detected")),
			wantStatus:   http.StatusInternalServerError,
			wantCategory: CategoryConsistency,
			wantMessage:  "incident status propagation failed",
		},
		{
			name:         "storage hides cause",
			err:          domain.StorageFailure("list services", errors.New("dial tcp 10.0.0.1:5432: connection refused")),
			wantStatus:   http.StatusInternalServerError,
			wantCategory: CategoryStorage,
			wantMessage:  "internal error",
		},
		{
			name:         "unknown",
			err:          errors.New("boom"),
			wantStatus:   http.StatusInternalServerError,
			wantCategory: CategoryInternal,
			wantMessage:  "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(context.Background(), rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body errorBody
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantCategory, body.Error.Category)
			assert.Equal(t, tt.wantMessage, body.Error.Message)
		})
	}
}

func TestHandleError_CustomMappingWins(t *testing.T) {
	errConflict := domain.NewError(domain.ErrValidation, "already exists")

	rec := httptest.NewRecorder()
	HandleError(context.Background(), rec, errConflict, ErrorMapping{
		Error:    errConflict,
		Status:   http.StatusConflict,
		Category: CategoryValidation,
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestNewValidator_StatusTag(t *testing.T) {
	type request struct {
		Status string `json:"status" validate:"required,status"`
	}
	v := NewValidator()

	assert.NoError(t, v.Struct(request{Status: "outage"}))

	err := v.Struct(request{Status: "on_fire"})
	require.Error(t, err)

	rec := httptest.NewRecorder()
	ValidationError(rec, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"status"`)
}
