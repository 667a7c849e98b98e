package leave

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"staffleave/internal/domain/apperr"
	"staffleave/internal/domain/audit"
)

// memStore mirrors the Postgres store closely enough for workflow tests,
// including the conditional update.
type memStore struct {
	mu    sync.Mutex
	subs  map[string]Submission
	users map[string]Submitter
	clock time.Time
}

func newMemStore() *memStore {
	return &memStore{
		subs:  map[string]Submission{},
		users: map[string]Submitter{},
		clock: time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) Create(_ context.Context, s Submission) (Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = m.clock.Add(time.Second)
	s.ID = uuid.NewString()
	s.Status = StatusPending
	s.CreatedAt = m.clock
	m.subs[s.ID] = s
	return s, nil
}

func (m *memStore) Get(_ context.Context, id string) (Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[id]
	if !ok {
		return Submission{}, apperr.ErrNotFound
	}
	return s, nil
}

func (m *memStore) ListPending(_ context.Context, types []SubmissionType) ([]PendingItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []PendingItem{}
	for _, s := range m.subs {
		if s.Status != StatusPending {
			continue
		}
		for _, t := range types {
			if s.Type == t {
				out = append(out, PendingItem{Submission: s, Submitter: m.users[s.UserID]})
			}
		}
	}
	sortPending(out)
	return out, nil
}

func sortPending(items []PendingItem) {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0; j-- {
			a, b := items[j-1], items[j]
			if a.CreatedAt.Before(b.CreatedAt) || (a.CreatedAt.Equal(b.CreatedAt) && a.ID < b.ID) {
				break
			}
			items[j-1], items[j] = b, a
		}
	}
}

func (m *memStore) ListByUser(_ context.Context, userID string) ([]Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Submission{}
	for _, s := range m.subs {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) UpdateStatusIfPending(_ context.Context, id string, d Decision) (Submission, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[id]
	if !ok || s.Status != StatusPending {
		return Submission{}, false, nil
	}
	by := d.DecidedBy
	at := d.DecidedAt
	s.Status = d.Status
	s.DecidedBy = &by
	s.DecidedAt = &at
	s.DecisionNote = d.Note
	m.subs[id] = s
	return s, true, nil
}

func (m *memStore) ApprovedDaysByType(_ context.Context, userID string, from, to time.Time) (map[SubmissionType]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[SubmissionType]int{}
	for _, s := range m.subs {
		if s.UserID != userID || s.Status != StatusApproved {
			continue
		}
		if s.StartDate.Before(from) || !s.StartDate.Before(to) {
			continue
		}
		out[s.Type] += s.Days
	}
	return out, nil
}

// seed inserts a submission in a given state, bypassing the workflow.
func (m *memStore) seed(s Submission) Submission {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = m.clock.Add(time.Second)
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = m.clock
	}
	m.subs[s.ID] = s
	return s
}

type recordingAuditor struct {
	mu      sync.Mutex
	entries []audit.Params
	err     error
}

func (r *recordingAuditor) Record(_ context.Context, p audit.Params) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, p)
	return r.err
}

func (r *recordingAuditor) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}
