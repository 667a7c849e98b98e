package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"staffleave/internal/domain/apperr"
	"staffleave/internal/requestctx"
)

func TestFromErrorMapsTaxonomy(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unauthenticated", apperr.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
		{"forbidden", fmt.Errorf("decide: %w", apperr.ErrForbidden), http.StatusForbidden, "forbidden"},
		{"not found", apperr.ErrNotFound, http.StatusNotFound, "not_found"},
		{"invalid state", apperr.ErrInvalidState, http.StatusConflict, "invalid_state"},
		{"invalid credential", apperr.ErrInvalidCredential, http.StatusBadRequest, "invalid_credential"},
		{"configuration", &apperr.ConfigurationError{Key: "leave.days", Detail: "missing"}, http.StatusInternalServerError, "configuration_error"},
		{"unavailable", apperr.ErrUnavailable, http.StatusServiceUnavailable, "unavailable"},
		{"unknown", errors.New("pq: relation missing"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req = req.WithContext(requestctx.WithRequestID(req.Context(), "req-1"))
			rec := httptest.NewRecorder()

			FromError(rec, req, tt.err)

			require.Equal(t, tt.status, rec.Code)
			var env Envelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			require.False(t, env.Success)
			require.Equal(t, tt.code, env.Error.Code)
			require.Equal(t, "req-1", env.RequestID)
			require.NotContains(t, env.Error.Message, "pq:")
		})
	}
}

func TestFromErrorValidationUsesFirstReason(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	rec := httptest.NewRecorder()

	FromError(rec, req, &apperr.ValidationError{Errors: []apperr.FieldError{
		{Field: "newPassword", Reason: "too short"},
		{Field: "other", Reason: "bad"},
	}})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var env struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Details struct {
				Fields []fieldIssue `json:"fields"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, "validation_error", env.Error.Code)
	require.Equal(t, "too short", env.Error.Message)
	require.Len(t, env.Error.Details.Fields, 2)
}
