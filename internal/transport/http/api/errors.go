package api

import (
	"errors"
	"log/slog"
	"net/http"

	"staffleave/internal/domain/apperr"
	"staffleave/internal/requestctx"
)

type fieldIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// FromError writes the envelope for a domain error. Only the taxonomy in
// apperr reaches the caller; anything else becomes a generic 500.
func FromError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := requestctx.GetRequestID(r.Context())

	var verr *apperr.ValidationError
	var cerr *apperr.ConfigurationError
	switch {
	case errors.As(err, &verr):
		issues := make([]fieldIssue, 0, len(verr.Errors))
		for _, fe := range verr.Errors {
			issues = append(issues, fieldIssue{Field: fe.Field, Reason: fe.Reason})
		}
		FailWithDetails(w, http.StatusBadRequest, "validation_error", verr.Reason(), map[string]any{"fields": issues}, requestID)
	case errors.As(err, &cerr):
		slog.ErrorContext(r.Context(), "configuration error",
			"severity", "CRITICAL",
			"key", cerr.Key,
			"detail", cerr.Detail,
			"path", r.URL.Path,
			"requestId", requestID,
		)
		Fail(w, http.StatusInternalServerError, "configuration_error", "service is misconfigured", requestID)
	case errors.Is(err, apperr.ErrUnauthenticated):
		Fail(w, http.StatusUnauthorized, "unauthenticated", "authentication required", requestID)
	case errors.Is(err, apperr.ErrForbidden):
		Fail(w, http.StatusForbidden, "forbidden", "not allowed", requestID)
	case errors.Is(err, apperr.ErrNotFound):
		Fail(w, http.StatusNotFound, "not_found", "not found", requestID)
	case errors.Is(err, apperr.ErrInvalidState):
		Fail(w, http.StatusConflict, "invalid_state", "submission is no longer pending", requestID)
	case errors.Is(err, apperr.ErrInvalidCredential):
		Fail(w, http.StatusBadRequest, "invalid_credential", "credential is incorrect", requestID)
	case errors.Is(err, apperr.ErrValidation):
		Fail(w, http.StatusBadRequest, "validation_error", "payload validation failed", requestID)
	case errors.Is(err, apperr.ErrUnavailable):
		slog.WarnContext(r.Context(), "dependency unavailable", "err", err, "path", r.URL.Path, "requestId", requestID)
		Fail(w, http.StatusServiceUnavailable, "unavailable", "service temporarily unavailable", requestID)
	default:
		slog.ErrorContext(r.Context(), "request failed", "err", err, "path", r.URL.Path, "requestId", requestID)
		Fail(w, http.StatusInternalServerError, "internal", "internal error", requestID)
	}
}
