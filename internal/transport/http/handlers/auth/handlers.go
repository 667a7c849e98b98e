package authhandler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"staffleave/internal/domain/identity"
	"staffleave/internal/transport/http/api"
	"staffleave/internal/transport/http/middleware"
	"staffleave/internal/transport/http/shared"
)

type Authenticator interface {
	Login(ctx context.Context, email, password, mfaCode string) (identity.LoginResult, error)
}

type Handler struct {
	Auth Authenticator
}

func NewHandler(a Authenticator) *Handler {
	return &Handler{Auth: a}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required_text"`
	Password string `json:"password" validate:"required_text"`
	MFACode  string `json:"mfaCode"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.FromError(w, r, err)
		return
	}
	result, err := h.Auth.Login(r.Context(), payload.Email, payload.Password, payload.MFACode)
	if errors.Is(err, identity.ErrMFARequired) {
		api.Fail(w, http.StatusUnauthorized, "mfa_required", "mfa code required", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.FromError(w, r, err)
		return
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}
