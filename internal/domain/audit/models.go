package audit

import (
	"encoding/json"
	"time"

	"staffleave/internal/domain/auth"
)

type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

const (
	ActionSubmit           = "SUBMIT"
	ActionApprove          = "APPROVE"
	ActionReject           = "REJECT"
	ActionLogin            = "LOGIN"
	ActionLoginFailed      = "LOGIN_FAILED"
	ActionCredentialChange = "CREDENTIAL_CHANGE"
	ActionCredentialFailed = "CREDENTIAL_CHANGE_FAILED"
	ActionMFASetup         = "MFA_SETUP"
	ActionMFAEnable        = "MFA_ENABLE"
	ActionUserCreate       = "USER_CREATE"
)

const (
	EntityLeaveSubmission = "leave_submission"
	EntityUser            = "user"
)

const (
	SystemActorID   = "system"
	SystemActorName = "System"
)

// Entry is one immutable row of the audit trail.
type Entry struct {
	ID         string          `json:"id"`
	Action     string          `json:"action"`
	EntityID   string          `json:"entityId"`
	EntityType string          `json:"entityType"`
	ActorID    string          `json:"actorId"`
	ActorName  string          `json:"actorName"`
	ActorRole  string          `json:"actorRole"`
	IPAddress  string          `json:"ipAddress"`
	UserAgent  string          `json:"userAgent"`
	Details    json.RawMessage `json:"details"`
	Severity   Severity        `json:"severity"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Params is what callers hand to Record. A nil Actor is recorded as the system.
type Params struct {
	Action     string
	EntityType string
	EntityID   string
	Actor      *auth.Actor
	Details    map[string]any
	Severity   Severity
}

type Filter struct {
	Action     string
	EntityType string
	EntityID   string
	ActorID    string
}
