package leave

import (
	"time"

	"staffleave/internal/domain/auth"
)

type SubmissionType string

const (
	TypeAnnualLeave SubmissionType = "ANNUAL_LEAVE"
	TypeMedicalCert SubmissionType = "MEDICAL_CERT"
)

func (t SubmissionType) Valid() bool {
	return t == TypeAnnualLeave || t == TypeMedicalCert
}

// ReviewableTypes are the submission types an approver sees in the queue.
var ReviewableTypes = []SubmissionType{TypeAnnualLeave, TypeMedicalCert}

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

type Outcome string

const (
	OutcomeApprove Outcome = "APPROVE"
	OutcomeReject  Outcome = "REJECT"
)

// Submission is append-only; only the decision fields change, once.
type Submission struct {
	ID           string         `json:"id"`
	UserID       string         `json:"userId"`
	Type         SubmissionType `json:"type"`
	Status       Status         `json:"status"`
	StartDate    time.Time      `json:"startDate"`
	EndDate      time.Time      `json:"endDate"`
	Days         int            `json:"days"`
	Reason       string         `json:"reason"`
	CreatedAt    time.Time      `json:"createdAt"`
	DecidedBy    *string        `json:"decidedBy,omitempty"`
	DecidedAt    *time.Time     `json:"decidedAt,omitempty"`
	DecisionNote *string        `json:"decisionNote,omitempty"`
}

type Submitter struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Email          string              `json:"email"`
	EmploymentType auth.EmploymentType `json:"employmentType,omitempty"`
}

// PendingItem is a queue row: the submission plus who filed it.
type PendingItem struct {
	Submission
	Submitter Submitter `json:"submitter"`
}

type SubmitInput struct {
	UserID    string
	Type      SubmissionType
	StartDate time.Time
	EndDate   time.Time
	Reason    string
}

type Decision struct {
	Status    Status
	DecidedBy string
	DecidedAt time.Time
	Note      *string
}

type Balance struct {
	UserID          string              `json:"userId"`
	EmploymentType  auth.EmploymentType `json:"employmentType"`
	Year            int                 `json:"year"`
	AccruedDays     int                 `json:"accruedDays"`
	ConsumedDays    int                 `json:"consumedDays"`
	RemainingDays   int                 `json:"remainingDays"`
	Overdrawn       bool                `json:"overdrawn"`
	MedicalCertDays int                 `json:"medicalCertDays"`
}
