package leavehandler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"staffleave/internal/domain/auth"
	"staffleave/internal/domain/leave"
	"staffleave/internal/transport/http/api"
	"staffleave/internal/transport/http/middleware"
	"staffleave/internal/transport/http/shared"
)

type Workflow interface {
	Submit(ctx context.Context, actor auth.Actor, in leave.SubmitInput) (leave.Submission, error)
	ListPending(ctx context.Context, actor auth.Actor) ([]leave.PendingItem, error)
	Decide(ctx context.Context, approver auth.Actor, id string, outcome leave.Outcome, note string) (leave.Submission, error)
	ListMine(ctx context.Context, actor auth.Actor) ([]leave.Submission, error)
	Get(ctx context.Context, actor auth.Actor, id string) (leave.Submission, error)
	Balance(ctx context.Context, actor auth.Actor) (leave.Balance, error)
	RenderStatement(ctx context.Context, actor auth.Actor) (leave.Statement, error)
}

type Handler struct {
	Service Workflow
	Gate    shared.Authenticator
}

func NewHandler(service Workflow, gate shared.Authenticator) *Handler {
	return &Handler{Service: service, Gate: gate}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.Get("/balance", h.handleBalance)
		r.Get("/balance/statement", h.handleStatement)
		r.Post("/", h.handleSubmit)
		r.Get("/mine", h.handleListMine)
		r.Get("/approvals", h.handleListPending)
		r.Get("/{submissionID}", h.handleGet)
		r.Put("/{submissionID}", h.handleDecide)
	})
}

type submitRequest struct {
	Type      string `json:"type" validate:"required_text"`
	StartDate string `json:"startDate" validate:"required_text"`
	EndDate   string `json:"endDate" validate:"required_text"`
	Reason    string `json:"reason"`
}

type decideRequest struct {
	Outcome string `json:"outcome"`
	Note    string `json:"note"`
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Gate.RequireAuthenticated(r.Context())
	if err != nil {
		api.FromError(w, r, err)
		return
	}
	balance, err := h.Service.Balance(r.Context(), actor)
	if err != nil {
		api.FromError(w, r, err)
		return
	}
	api.Success(w, balance, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleStatement(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Gate.RequireAuthenticated(r.Context())
	if err != nil {
		api.FromError(w, r, err)
		return
	}
	st, err := h.Service.RenderStatement(r.Context(), actor)
	if err != nil {
		api.FromError(w, r, err)
		return
	}
	pdf := st.PDF
	filename := fmt.Sprintf("leave-statement-%d.pdf", st.Year)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Gate.RequireAuthenticated(r.Context())
	if err != nil {
		api.FromError(w, r, err)
		return
	}
	var payload submitRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.FromError(w, r, err)
		return
	}
	start, err := shared.ParseDate("startDate", payload.StartDate)
	if err != nil {
		api.FromError(w, r, err)
		return
	}
	end, err := shared.ParseDate("endDate", payload.EndDate)
	if err != nil {
		api.FromError(w, r, err)
		return
	}

	created, err := h.Service.Submit(r.Context(), actor, leave.SubmitInput{
		UserID:    actor.ID,
		Type:      leave.SubmissionType(payload.Type),
		StartDate: start,
		EndDate:   end,
		Reason:    payload.Reason,
	})
	if err != nil {
		api.FromError(w, r, err)
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Gate.RequireAuthenticated(r.Context())
	if err != nil {
		api.FromError(w, r, err)
		return
	}
	items, err := h.Service.ListMine(r.Context(), actor)
	if err != nil {
		api.FromError(w, r, err)
		return
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListPending(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Gate.RequireAuthenticated(r.Context())
	if err != nil {
		api.FromError(w, r, err)
		return
	}
	items, err := h.Service.ListPending(r.Context(), actor)
	if err != nil {
		api.FromError(w, r, err)
		return
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Gate.RequireAuthenticated(r.Context())
	if err != nil {
		api.FromError(w, r, err)
		return
	}
	sub, err := h.Service.Get(r.Context(), actor, chi.URLParam(r, "submissionID"))
	if err != nil {
		api.FromError(w, r, err)
		return
	}
	api.Success(w, sub, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDecide(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Gate.RequireAuthenticated(r.Context())
	if err != nil {
		api.FromError(w, r, err)
		return
	}
	var payload decideRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.FromError(w, r, err)
		return
	}
	outcome, err := leave.ParseOutcome(payload.Outcome)
	if err != nil {
		// Decide rejects it after the permission check.
		outcome = leave.Outcome(payload.Outcome)
	}

	decided, err := h.Service.Decide(r.Context(), actor, chi.URLParam(r, "submissionID"), outcome, payload.Note)
	if err != nil {
		api.FromError(w, r, err)
		return
	}
	api.Success(w, decided, middleware.GetRequestID(r.Context()))
}
