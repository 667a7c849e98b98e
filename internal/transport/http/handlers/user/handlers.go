package userhandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"staffleave/internal/domain/auth"
	"staffleave/internal/domain/identity"
	"staffleave/internal/transport/http/api"
	"staffleave/internal/transport/http/middleware"
	"staffleave/internal/transport/http/shared"
)

type Identity interface {
	shared.Authenticator
	Profile(ctx context.Context, actor auth.Actor) (auth.Actor, error)
	ChangeCredential(ctx context.Context, actor auth.Actor, current, next string) error
	SetupMFA(ctx context.Context, actor auth.Actor) (identity.MFASetup, error)
	EnableMFA(ctx context.Context, actor auth.Actor, code string) error
	CreateUser(ctx context.Context, actor auth.Actor, c auth.UserCandidate) (auth.Actor, error)
}

type Handler struct {
	Identity Identity
}

func NewHandler(id Identity) *Handler {
	return &Handler{Identity: id}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/user", func(r chi.Router) {
		r.Get("/me", h.handleMe)
		r.Post("/change-password", h.handleChangePassword)
		r.Post("/mfa/setup", h.handleMFASetup)
		r.Post("/mfa/enable", h.handleMFAEnable)
	})
	r.Post("/admin/users", h.handleCreateUser)
}

// Password rules are checked by the service so that a wrong current password
// is reported before anything about the new one.
type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type mfaEnableRequest struct {
	Code string `json:"code" validate:"required_text,len=6,numeric"`
}

type createUserRequest struct {
	Name           string   `json:"name"`
	Email          string   `json:"email" validate:"omitempty,email"`
	Password       string   `json:"password"`
	Role           string   `json:"role"`
	Level          string   `json:"level"`
	TeacherRoles   []string `json:"teacherRoles"`
	EmploymentType string   `json:"employmentType" validate:"omitempty,oneof=FULL_TIME PART_TIME CONTRACT"`
	ICNumber       string   `json:"icNumber" validate:"omitempty,identity_number"`
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Identity.RequireAuthenticated(r.Context())
	if err != nil {
		api.FromError(w, r, err)
		return
	}
	profile, err := h.Identity.Profile(r.Context(), actor)
	if err != nil {
		api.FromError(w, r, err)
		return
	}
	api.Success(w, profile, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Identity.RequireAuthenticated(r.Context())
	if err != nil {
		api.FromError(w, r, err)
		return
	}
	var payload changePasswordRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.FromError(w, r, err)
		return
	}
	if err := h.Identity.ChangeCredential(r.Context(), actor, payload.CurrentPassword, payload.NewPassword); err != nil {
		api.FromError(w, r, err)
		return
	}
	api.Success(w, map[string]string{"message": "password updated"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMFASetup(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Identity.RequireAuthenticated(r.Context())
	if err != nil {
		api.FromError(w, r, err)
		return
	}
	setup, err := h.Identity.SetupMFA(r.Context(), actor)
	if err != nil {
		api.FromError(w, r, err)
		return
	}
	api.Success(w, setup, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMFAEnable(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Identity.RequireAuthenticated(r.Context())
	if err != nil {
		api.FromError(w, r, err)
		return
	}
	var payload mfaEnableRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.FromError(w, r, err)
		return
	}
	if err := h.Identity.EnableMFA(r.Context(), actor, payload.Code); err != nil {
		api.FromError(w, r, err)
		return
	}
	api.Success(w, map[string]bool{"mfaEnabled": true}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Identity.RequireAuthenticated(r.Context())
	if err != nil {
		api.FromError(w, r, err)
		return
	}
	var payload createUserRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.FromError(w, r, err)
		return
	}
	caps := make([]auth.Capability, 0, len(payload.TeacherRoles))
	for _, c := range payload.TeacherRoles {
		caps = append(caps, auth.Capability(c))
	}
	created, err := h.Identity.CreateUser(r.Context(), actor, auth.UserCandidate{
		Name:           payload.Name,
		Email:          payload.Email,
		Password:       payload.Password,
		Role:           auth.Role(payload.Role),
		Level:          payload.Level,
		TeacherRoles:   caps,
		EmploymentType: auth.EmploymentType(payload.EmploymentType),
		ICNumber:       payload.ICNumber,
	})
	if err != nil {
		api.FromError(w, r, err)
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}
