package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"staffleave/internal/domain/auth"
	"staffleave/internal/requestctx"
)

const defaultTimeout = 3 * time.Second

type EntryWriter interface {
	Insert(ctx context.Context, e Entry) error
}

// FailureCounter is told about every entry that could not be stored.
type FailureCounter interface {
	AuditWriteFailed(action string)
}

// Recorder writes audit entries. A failed write is logged and counted but
// never fails the operation that triggered it; the returned error is for
// callers that want to inspect it.
type Recorder struct {
	Store    EntryWriter
	Failures FailureCounter
	Timeout  time.Duration
	Logger   *slog.Logger
	Now      func() time.Time
}

func NewRecorder(store EntryWriter, failures FailureCounter, timeout time.Duration, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		Store:    store,
		Failures: failures,
		Timeout:  timeout,
		Logger:   logger.With("component", "audit"),
		Now:      time.Now,
	}
}

func (r *Recorder) Record(ctx context.Context, p Params) error {
	entry, err := r.build(ctx, p)
	if err == nil {
		timeout := r.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		// the entry must land even if the request was cancelled after the action committed.
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		err = r.Store.Insert(writeCtx, entry)
		cancel()
	}
	if err != nil {
		if r.Failures != nil {
			r.Failures.AuditWriteFailed(p.Action)
		}
		r.Logger.Error("audit record failed",
			"action", p.Action,
			"entityType", p.EntityType,
			"entityId", p.EntityID,
			"requestId", requestctx.GetRequestID(ctx),
			"err", err,
		)
		return fmt.Errorf("audit %s: %w", p.Action, err)
	}
	return nil
}

func (r *Recorder) build(ctx context.Context, p Params) (Entry, error) {
	if strings.TrimSpace(p.Action) == "" || strings.TrimSpace(p.EntityType) == "" {
		return Entry{}, fmt.Errorf("action and entity type are required")
	}
	details, err := json.Marshal(sanitizeDetails(p.Details))
	if err != nil {
		return Entry{}, fmt.Errorf("marshal details: %w", err)
	}

	prov := requestctx.GetProvenance(ctx)
	e := Entry{
		Action:     p.Action,
		EntityID:   p.EntityID,
		EntityType: p.EntityType,
		ActorID:    SystemActorID,
		ActorName:  SystemActorName,
		ActorRole:  string(auth.RoleSystem),
		IPAddress:  prov.IPAddress,
		UserAgent:  prov.UserAgent,
		Details:    details,
		Severity:   p.Severity,
		CreatedAt:  r.now().UTC(),
	}
	if p.Actor != nil {
		e.ActorID = p.Actor.ID
		e.ActorName = p.Actor.Name
		e.ActorRole = string(p.Actor.Role)
	}
	if e.Severity == "" {
		e.Severity = SeverityInfo
	}
	return e, nil
}

func (r *Recorder) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// sanitizeDetails masks values whose keys look like secrets.
func sanitizeDetails(details map[string]any) map[string]any {
	out := make(map[string]any, len(details))
	for key, value := range details {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "password") || strings.Contains(lower, "secret") ||
			strings.Contains(lower, "token") || strings.Contains(lower, "code") {
			out[key] = "***"
			continue
		}
		out[key] = value
	}
	return out
}
