package identity

import (
	"time"

	"staffleave/internal/domain/auth"
)

// Credential is the secret half of a user record. It never leaves this package
// in a response.
type Credential struct {
	UserID       string
	PasswordHash string
	MFAEnabled   bool
	MFASecretEnc []byte
}

type LoginResult struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      auth.Actor `json:"user"`
}

type MFASetup struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauthUrl"`
}
