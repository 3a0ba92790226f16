package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/klink-asia/registry/internal/service"
	apperrors "github.com/klink-asia/registry/pkg/errors"
	"github.com/klink-asia/registry/pkg/middleware"
	"github.com/klink-asia/registry/pkg/validator"
)

// AccountHandler serves registration and the verification token flows.
type AccountHandler struct {
	registrants *service.RegistrantService
	log         *slog.Logger
}

// NewAccountHandler creates the account handler.
func NewAccountHandler(registrants *service.RegistrantService, log *slog.Logger) *AccountHandler {
	return &AccountHandler{registrants: registrants, log: log}
}

type registerRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
}

// Register handles POST /api/2.0/registration.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, r, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		writeError(w, h.log, r, err)
		return
	}

	reg, err := h.registrants.Register(r.Context(), req.FirstName, req.LastName, req.Email)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, response{Data: reg})
}

// InspectVerification handles GET /api/2.0/verify-email/{token}. It reports
// which address the link belongs to without consuming the token, so a
// client can render the password form.
func (h *AccountHandler) InspectVerification(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	reg, err := h.registrants.InspectVerification(r.Context(), token)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: map[string]string{
		"email": reg.Email,
	}})
}

type completeVerificationRequest struct {
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
}

// CompleteVerification handles POST /api/2.0/verify-email/{token}: the
// registrant chooses a password, which consumes the token and activates the
// account.
func (h *AccountHandler) CompleteVerification(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req completeVerificationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, r, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		writeError(w, h.log, r, err)
		return
	}

	reg, err := h.registrants.InspectVerification(r.Context(), token)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}

	err = h.registrants.SetPassword(r.Context(), reg.Email, token, req.Password, req.PasswordConfirm)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: map[string]string{
		"status": "verified",
	}})
}

type passwordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// RequestPasswordReset handles POST /api/2.0/password-reset. The response
// is identical whether or not the address has an account.
func (h *AccountHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req passwordResetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, r, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		writeError(w, h.log, r, err)
		return
	}

	if err := h.registrants.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, response{Data: map[string]string{
		"status": "accepted",
	}})
}

type setPasswordRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
}

// SetPassword handles POST /api/2.0/password.
func (h *AccountHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	var req setPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, r, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		writeError(w, h.log, r, err)
		return
	}

	err := h.registrants.SetPassword(r.Context(), req.Email, req.Token, req.Password, req.PasswordConfirm)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: map[string]string{
		"status": "password set",
	}})
}

type emailChangeRequest struct {
	NewEmail string `json:"new_email" validate:"required,email"`
}

// RequestEmailChange handles POST /api/2.0/email-change for the
// authenticated registrant.
func (h *AccountHandler) RequestEmailChange(w http.ResponseWriter, r *http.Request) {
	registrantID, err := uuid.Parse(middleware.RegistrantIDFromContext(r.Context()))
	if err != nil {
		writeError(w, h.log, r, apperrors.Unauthorized("invalid session"))
		return
	}

	var req emailChangeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, r, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		writeError(w, h.log, r, err)
		return
	}

	if err := h.registrants.RequestEmailChange(r.Context(), registrantID, req.NewEmail); err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, response{Data: map[string]string{
		"status": "confirmation sent",
	}})
}

type confirmEmailChangeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"token" validate:"required"`
}

// ConfirmEmailChange handles POST /api/2.0/email-change/confirm.
func (h *AccountHandler) ConfirmEmailChange(w http.ResponseWriter, r *http.Request) {
	var req confirmEmailChangeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, r, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		writeError(w, h.log, r, err)
		return
	}

	if err := h.registrants.ConfirmEmailChange(r.Context(), req.Email, req.Token); err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: map[string]string{
		"status": "email changed",
	}})
}
