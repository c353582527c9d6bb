package api

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/receipt-api/internal/api/shared"
	"github.com/phrazzld/receipt-api/internal/domain"
	"github.com/phrazzld/receipt-api/internal/media"
	"github.com/phrazzld/receipt-api/internal/platform/logger"
	"github.com/phrazzld/receipt-api/internal/service"
	"github.com/phrazzld/receipt-api/internal/service/auth"
	"github.com/phrazzld/receipt-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"nil error", nil, http.StatusInternalServerError},
		{"validation error", domain.NewValidationError("total", "must be positive", nil), http.StatusBadRequest},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"unsupported upload", fmt.Errorf("%w: .svg", media.ErrUnsupportedType), http.StatusBadRequest},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"revoked token", auth.ErrRevokedToken, http.StatusUnauthorized},
		{"bad credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"not owned", service.ErrNotOwned, http.StatusForbidden},
		{"business missing", service.ErrBusinessNotFound, http.StatusNotFound},
		{
			"wrapped service error",
			service.NewServiceError("document", "GetReceipt", service.ErrReceiptNotFound),
			http.StatusNotFound,
		},
		{"store not found", fmt.Errorf("%w: invoice", store.ErrNotFound), http.StatusNotFound},
		{"email taken", store.ErrEmailExists, http.StatusConflict},
		{"number conflict", service.ErrNumberConflict, http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectedStatus, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil", nil, "An unexpected error occurred"},
		{"validation error uses its safe message", domain.NewValidationError("due_date", "is before issue_date", nil),
			"due_date is before issue_date"},
		{"credentials", service.ErrInvalidCredentials, "Incorrect email or password"},
		{"email taken", store.ErrEmailExists, "Email already registered"},
		{"business missing", service.ErrBusinessNotFound, "Business profile not found. Please create one first."},
		{"not owned", service.ErrNotOwned, "Not authorized to modify this challenge"},
		{"refresh token", auth.ErrExpiredRefreshToken, "Invalid refresh token"},
		{"internal detail hidden", errors.New(`pq: relation "receipts" does not exist`), "An unexpected error occurred"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, GetSafeErrorMessage(tc.err))
		})
	}
}

func TestHandleAPIError(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	req := httptest.NewRequest(http.MethodGet, "/api/receipts/", nil)
	req = req.WithContext(shared.WithTraceID(logger.WithLogger(req.Context(), log), "trace-123"))

	t.Run("fallback replaces generic 500 message", func(t *testing.T) {
		buf.Reset()
		rec := httptest.NewRecorder()
		HandleAPIError(rec, req, errors.New("dial tcp 10.0.0.5:5432: password=hunter2"), "Failed to list receipts")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Failed to list receipts","trace_id":"trace-123"}`, rec.Body.String())
		assert.Contains(t, buf.String(), "level=ERROR")
		assert.NotContains(t, buf.String(), "hunter2")
	})

	t.Run("fallback ignored for client errors", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HandleAPIError(rec, req, service.ErrReceiptNotFound, "Failed to load receipt")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), `"error":"Receipt not found"`)
	})

	t.Run("unauthorized logged at warn", func(t *testing.T) {
		buf.Reset()
		rec := httptest.NewRecorder()
		HandleAPIError(rec, req, auth.ErrInvalidToken, "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, buf.String(), "level=WARN")
	})
}

func TestSanitizeValidationError(t *testing.T) {
	err := shared.Validate.Struct(&ChallengeRequest{ChallengerName: "Rui", ChallengerEmail: "rui", Reason: "x"})
	require.Error(t, err)
	assert.Equal(t, "Invalid challenger_email: invalid email format", SanitizeValidationError(err))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("other")))
}
