package leave

import "context"

type StoreAPI interface {
	ConsumptionReader
	Create(ctx context.Context, s Submission) (Submission, error)
	Get(ctx context.Context, id string) (Submission, error)
	ListPending(ctx context.Context, types []SubmissionType) ([]PendingItem, error)
	ListByUser(ctx context.Context, userID string) ([]Submission, error)
	// UpdateStatusIfPending moves a PENDING submission to its decided state in
	// one statement. ok is false when no PENDING row with that id existed.
	UpdateStatusIfPending(ctx context.Context, id string, d Decision) (s Submission, ok bool, err error)
}

var _ StoreAPI = (*Store)(nil)

