package identity

import (
	"context"

	"staffleave/internal/domain/auth"
)

type StoreAPI interface {
	GetActor(ctx context.Context, userID string) (auth.Actor, error)
	FindByEmail(ctx context.Context, email string) (auth.Actor, Credential, error)
	GetCredential(ctx context.Context, userID string) (Credential, error)
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
	UpdateMFASecret(ctx context.Context, userID string, secretEnc []byte) error
	SetMFAEnabled(ctx context.Context, userID string, enabled bool) error
	CreateUser(ctx context.Context, c auth.UserCandidate, passwordHash string) (auth.Actor, error)
}

var _ StoreAPI = (*Store)(nil)
