package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"staffleave/internal/domain/apperr"
	"staffleave/internal/domain/validation"
)

var payloads = validation.New()

// DecodeJSON reads one JSON object into dst and runs the struct tags on it.
// Decode failures are reported as validation errors so they map to 400.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperr.Validation("", fmt.Sprintf("payload exceeds %d bytes", maxErr.Limit))
		case errors.Is(err, io.EOF):
			return apperr.Validation("", "payload is required")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
			return apperr.Validation(field, "unknown field "+field)
		}
		return apperr.Validation("", "invalid request payload")
	}
	return Validate(dst)
}

func Validate(payload any) error {
	return validation.Struct(payloads, payload)
}
