package http

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/klink-asia/registry/internal/auth"
	"github.com/klink-asia/registry/internal/service"
	apperrors "github.com/klink-asia/registry/pkg/errors"
	"github.com/klink-asia/registry/pkg/middleware"
	"github.com/klink-asia/registry/pkg/validator"
)

// SessionHandler serves login and session refresh.
type SessionHandler struct {
	registrants *service.RegistrantService
	sessions    *auth.Manager
	log         *slog.Logger
}

// NewSessionHandler creates the session handler.
func NewSessionHandler(registrants *service.RegistrantService, sessions *auth.Manager, log *slog.Logger) *SessionHandler {
	return &SessionHandler{registrants: registrants, sessions: sessions, log: log}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// Login handles POST /api/2.0/session.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, r, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		writeError(w, h.log, r, err)
		return
	}

	reg, err := h.registrants.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}

	token, err := h.sessions.Generate(reg)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: sessionResponse{
		Token:     token,
		ExpiresIn: int64(h.sessions.TTL().Seconds()),
	}})
}

// Refresh handles GET /api/2.0/session for an authenticated registrant. It
// re-reads the account and issues a fresh token, so a disabled account
// cannot extend its session.
func (h *SessionHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	registrantID, err := uuid.Parse(middleware.RegistrantIDFromContext(r.Context()))
	if err != nil {
		writeError(w, h.log, r, apperrors.Unauthorized("invalid session"))
		return
	}

	reg, err := h.registrants.GetByID(r.Context(), registrantID)
	if err != nil {
		writeError(w, h.log, r, apperrors.Unauthorized("invalid session"))
		return
	}
	if !reg.Active {
		writeError(w, h.log, r, apperrors.Unauthorized("account disabled"))
		return
	}

	token, err := h.sessions.Generate(reg)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: sessionResponse{
		Token:     token,
		ExpiresIn: int64(h.sessions.TTL().Seconds()),
	}})
}
