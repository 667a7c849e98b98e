package leave

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"staffleave/internal/domain/apperr"
	"staffleave/internal/domain/audit"
	"staffleave/internal/domain/auth"
)

type Auditor interface {
	Record(ctx context.Context, p audit.Params) error
}

// Service is the leave workflow: submission, the approval queue and decisions.
type Service struct {
	Store      StoreAPI
	Calculator *Calculator
	Audit      Auditor
	Logger     *slog.Logger
	Now        func() time.Time
}

// plainText strips all markup from free text fields.
var plainText = bluemonday.StrictPolicy()

func NewService(store StoreAPI, calc *Calculator, auditor Auditor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		Store:      store,
		Calculator: calc,
		Audit:      auditor,
		Logger:     logger.With("component", "leave"),
		Now:        time.Now,
	}
}

// Submit files a new PENDING submission. Staff may only file for themselves.
func (s *Service) Submit(ctx context.Context, actor auth.Actor, in SubmitInput) (Submission, error) {
	if actor.ID == "" || actor.ID != in.UserID {
		return Submission{}, apperr.ErrForbidden
	}
	if actor.Role == auth.RoleStudent {
		return Submission{}, apperr.ErrForbidden
	}
	if !in.Type.Valid() {
		return Submission{}, apperr.Validation("type", "type must be ANNUAL_LEAVE or MEDICAL_CERT")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return Submission{}, apperr.Validation("startDate", "start and end dates are required")
	}
	days, err := CalculateDays(in.StartDate, in.EndDate)
	if err != nil {
		return Submission{}, apperr.Validation("endDate", "end date must be on or after start date")
	}
	reason, err := s.cleanText("reason", in.Reason)
	if err != nil {
		return Submission{}, err
	}

	created, err := s.Store.Create(ctx, Submission{
		UserID:    in.UserID,
		Type:      in.Type,
		StartDate: dateOnly(in.StartDate),
		EndDate:   dateOnly(in.EndDate),
		Days:      days,
		Reason:    reason,
	})
	if err != nil {
		return Submission{}, fmt.Errorf("create submission: %w", err)
	}

	// failures are logged and counted by the recorder.
	_ = s.Audit.Record(ctx, audit.Params{
		Action:     audit.ActionSubmit,
		EntityType: audit.EntityLeaveSubmission,
		EntityID:   created.ID,
		Actor:      &actor,
		Severity:   audit.SeverityInfo,
		Details: map[string]any{
			"type":      created.Type,
			"startDate": created.StartDate.Format(time.DateOnly),
			"endDate":   created.EndDate.Format(time.DateOnly),
			"days":      created.Days,
		},
	})
	return created, nil
}

// ListPending is the approver queue, oldest first.
func (s *Service) ListPending(ctx context.Context, actor auth.Actor) ([]PendingItem, error) {
	if !auth.CanApproveLeave(actor) {
		return nil, apperr.ErrForbidden
	}
	items, err := s.Store.ListPending(ctx, ReviewableTypes)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	return items, nil
}

// Decide approves or rejects a PENDING submission. Concurrent deciders race on
// a single conditional update; exactly one wins and the rest see ErrInvalidState.
func (s *Service) Decide(ctx context.Context, approver auth.Actor, id string, outcome Outcome, note string) (Submission, error) {
	if !auth.CanApproveLeave(approver) {
		return Submission{}, apperr.ErrForbidden
	}
	if _, err := uuid.Parse(id); err != nil {
		return Submission{}, fmt.Errorf("submission %q: %w", id, apperr.ErrNotFound)
	}
	if outcome != OutcomeApprove && outcome != OutcomeReject {
		return Submission{}, apperr.Validation("outcome", "outcome must be APPROVE or REJECT")
	}
	cleaned, err := s.cleanText("note", note)
	if err != nil {
		return Submission{}, err
	}
	var notePtr *string
	if cleaned != "" {
		notePtr = &cleaned
	}

	decided, ok, err := s.Store.UpdateStatusIfPending(ctx, id, Decision{
		Status:    outcome.Status(),
		DecidedBy: approver.ID,
		DecidedAt: s.now().UTC(),
		Note:      notePtr,
	})
	if err != nil {
		return Submission{}, fmt.Errorf("decide submission: %w", err)
	}
	if !ok {
		current, err := s.Store.Get(ctx, id)
		if err != nil {
			return Submission{}, err
		}
		return Submission{}, invalidState(current)
	}

	action := audit.ActionApprove
	if outcome == OutcomeReject {
		action = audit.ActionReject
	}
	details := map[string]any{
		"submitterId":    decided.UserID,
		"type":           decided.Type,
		"days":           decided.Days,
		"previousStatus": StatusPending,
		"newStatus":      decided.Status,
	}
	if notePtr != nil {
		details["note"] = *notePtr
	}
	_ = s.Audit.Record(ctx, audit.Params{
		Action:     action,
		EntityType: audit.EntityLeaveSubmission,
		EntityID:   decided.ID,
		Actor:      &approver,
		Severity:   audit.SeverityInfo,
		Details:    details,
	})
	s.Logger.Info("leave decided", "submissionId", decided.ID, "outcome", outcome, "approverId", approver.ID)
	return decided, nil
}

func (s *Service) ListMine(ctx context.Context, actor auth.Actor) ([]Submission, error) {
	items, err := s.Store.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return items, nil
}

// Get returns a submission to its owner or an approver. Anyone else gets
// ErrNotFound so ids cannot be enumerated.
func (s *Service) Get(ctx context.Context, actor auth.Actor, id string) (Submission, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Submission{}, fmt.Errorf("submission %q: %w", id, apperr.ErrNotFound)
	}
	sub, err := s.Store.Get(ctx, id)
	if err != nil {
		return Submission{}, err
	}
	if sub.UserID != actor.ID && !auth.CanApproveLeave(actor) {
		return Submission{}, fmt.Errorf("submission %q: %w", id, apperr.ErrNotFound)
	}
	return sub, nil
}

func (s *Service) Balance(ctx context.Context, actor auth.Actor) (Balance, error) {
	return s.Calculator.CalculateLeaveBalance(ctx, actor.ID, actor.EmploymentType)
}

func (s *Service) cleanText(field, raw string) (string, error) {
	cleaned := strings.TrimSpace(plainText.Sanitize(raw))
	if utf8.RuneCountInString(cleaned) > maxTextLength {
		return "", apperr.Validation(field, fmt.Sprintf("%s must be at most %d characters", field, maxTextLength))
	}
	return cleaned, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
