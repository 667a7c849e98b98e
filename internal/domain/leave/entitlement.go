package leave

import (
	"context"
	"fmt"
	"time"

	"staffleave/internal/domain/apperr"
	"staffleave/internal/domain/auth"
)

// Policy maps employment type to annual accrual in days. It is built once at
// boot and only read afterwards.
type Policy struct {
	days map[auth.EmploymentType]int
}

func DefaultPolicy() Policy {
	return Policy{days: map[auth.EmploymentType]int{
		auth.EmploymentFullTime: 14,
		auth.EmploymentPartTime: 7,
		auth.EmploymentContract: 10,
	}}
}

// NewPolicy builds a policy from configuration keyed by employment type name.
func NewPolicy(days map[string]int) (Policy, error) {
	p := Policy{days: make(map[auth.EmploymentType]int, len(days))}
	for kind, n := range days {
		if n < 0 {
			return Policy{}, &apperr.ConfigurationError{Key: "leave.days." + kind, Detail: "negative accrual"}
		}
		p.days[auth.EmploymentType(kind)] = n
	}
	return p, nil
}

func (p Policy) Accrual(t auth.EmploymentType) (int, error) {
	n, ok := p.days[t]
	if !ok {
		return 0, &apperr.ConfigurationError{Key: "leave.days." + string(t), Detail: "no accrual for employment type"}
	}
	return n, nil
}

type ConsumptionReader interface {
	// ApprovedDaysByType sums approved days of submissions starting in [from, to).
	ApprovedDaysByType(ctx context.Context, userID string, from, to time.Time) (map[SubmissionType]int, error)
}

type Calculator struct {
	Store  ConsumptionReader
	Policy Policy
	Now    func() time.Time
}

func NewCalculator(store ConsumptionReader, policy Policy) *Calculator {
	return &Calculator{Store: store, Policy: policy, Now: time.Now}
}

// CalculateLeaveBalance derives the current-year balance. Only approved annual
// leave consumes the entitlement; an overdrawn balance floors at zero.
func (c *Calculator) CalculateLeaveBalance(ctx context.Context, userID string, employment auth.EmploymentType) (Balance, error) {
	accrued, err := c.Policy.Accrual(employment)
	if err != nil {
		return Balance{}, err
	}

	now := time.Now()
	if c.Now != nil {
		now = c.Now()
	}
	from, to := yearWindow(now)
	used, err := c.Store.ApprovedDaysByType(ctx, userID, from, to)
	if err != nil {
		return Balance{}, fmt.Errorf("approved days: %w", err)
	}

	consumed := used[TypeAnnualLeave]
	remaining := accrued - consumed
	return Balance{
		UserID:          userID,
		EmploymentType:  employment,
		Year:            from.Year(),
		AccruedDays:     accrued,
		ConsumedDays:    consumed,
		RemainingDays:   max(remaining, 0),
		Overdrawn:       remaining < 0,
		MedicalCertDays: used[TypeMedicalCert],
	}, nil
}
