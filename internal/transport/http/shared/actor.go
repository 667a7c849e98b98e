package shared

import (
	"context"

	"staffleave/internal/domain/auth"
)

// Authenticator resolves the calling actor from the request context.
type Authenticator interface {
	RequireAuthenticated(ctx context.Context) (auth.Actor, error)
}
