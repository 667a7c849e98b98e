package audithandler

import (
	"context"
	"encoding/csv"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"staffleave/internal/domain/audit"
	"staffleave/internal/domain/auth"
	"staffleave/internal/transport/http/api"
	"staffleave/internal/transport/http/middleware"
	"staffleave/internal/transport/http/shared"
)

const maxExportRows = 5000

type Lister interface {
	List(ctx context.Context, actor auth.Actor, filter audit.Filter, limit, offset int) (audit.Page, error)
}

type Handler struct {
	Service Lister
	Gate    shared.Authenticator
}

func NewHandler(service Lister, gate shared.Authenticator) *Handler {
	return &Handler{Service: service, Gate: gate}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/audit", func(r chi.Router) {
		r.Get("/entries", h.handleListEntries)
		r.Get("/entries/export", h.handleExportEntries)
	})
}

func filterFrom(r *http.Request) audit.Filter {
	q := r.URL.Query()
	return audit.Filter{
		Action:     q.Get("action"),
		EntityType: q.Get("entityType"),
		EntityID:   q.Get("entityId"),
		ActorID:    q.Get("actorId"),
	}
}

func (h *Handler) handleListEntries(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Gate.RequireAuthenticated(r.Context())
	if err != nil {
		api.FromError(w, r, err)
		return
	}
	page, err := shared.ParsePagination(r, 100, 500)
	if err != nil {
		api.FromError(w, r, err)
		return
	}
	result, err := h.Service.List(r.Context(), actor, filterFrom(r), page.Limit, page.Offset)
	if err != nil {
		api.FromError(w, r, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(result.Total))
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExportEntries(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Gate.RequireAuthenticated(r.Context())
	if err != nil {
		api.FromError(w, r, err)
		return
	}
	result, err := h.Service.List(r.Context(), actor, filterFrom(r), maxExportRows, 0)
	if err != nil {
		api.FromError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=audit-entries.csv")
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "created_at", "severity", "action", "entity_type", "entity_id", "actor_id", "actor_name", "actor_role", "ip_address", "user_agent"}); err != nil {
		slog.Warn("audit export header failed", "err", err)
	}
	for _, e := range result.Items {
		row := []string{e.ID, e.CreatedAt.UTC().Format(time.RFC3339), string(e.Severity), e.Action, e.EntityType, e.EntityID, e.ActorID, e.ActorName, e.ActorRole, e.IPAddress, e.UserAgent}
		if err := writer.Write(row); err != nil {
			slog.Warn("audit export row failed", "err", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		slog.Warn("audit export flush failed", "err", err)
	}
}
