package identity

import (
	"fmt"

	"staffleave/internal/domain/apperr"
)

var (
	ErrMFARequired = fmt.Errorf("mfa code required: %w", apperr.ErrUnauthenticated)
	errBadLogin    = fmt.Errorf("invalid email or password: %w", apperr.ErrUnauthenticated)
	errBadMFACode  = fmt.Errorf("invalid mfa code: %w", apperr.ErrUnauthenticated)
)
