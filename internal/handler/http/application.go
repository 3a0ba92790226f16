package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/klink-asia/registry/internal/domain"
	"github.com/klink-asia/registry/internal/service"
	apperrors "github.com/klink-asia/registry/pkg/errors"
	"github.com/klink-asia/registry/pkg/middleware"
	"github.com/klink-asia/registry/pkg/validator"
)

// ApplicationHandler serves the authenticated application CRUD endpoints.
type ApplicationHandler struct {
	apps *service.ApplicationService
	log  *slog.Logger
}

// NewApplicationHandler creates the application handler.
func NewApplicationHandler(apps *service.ApplicationService, log *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{apps: apps, log: log}
}

type registerApplicationRequest struct {
	Name        string   `json:"name" validate:"required"`
	URL         string   `json:"url" validate:"required,url"`
	Permissions []string `json:"permissions" validate:"dive,required"`
}

type registerApplicationResponse struct {
	Application *domain.Application `json:"application"`
	// Secret is returned exactly once, at registration.
	Secret string `json:"secret"`
}

// Register handles POST /api/2.0/applications.
func (h *ApplicationHandler) Register(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromContext(r)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}

	var req registerApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, r, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		writeError(w, h.log, r, err)
		return
	}

	app, secret, err := h.apps.Register(r.Context(), ownerID, req.Name, req.URL, req.Permissions)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, response{Data: registerApplicationResponse{
		Application: app,
		Secret:      secret,
	}})
}

// List handles GET /api/2.0/applications.
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromContext(r)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}

	apps, err := h.apps.List(r.Context(), ownerID)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	if apps == nil {
		apps = []*domain.Application{}
	}
	writeJSON(w, http.StatusOK, response{Data: apps})
}

// Get handles GET /api/2.0/applications/{id}.
func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromContext(r)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}

	appID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, r, apperrors.InvalidInput("invalid application id"))
		return
	}

	app, err := h.apps.Get(r.Context(), ownerID, appID)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: app})
}

// Delete handles DELETE /api/2.0/applications/{id}.
func (h *ApplicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromContext(r)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}

	appID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, r, apperrors.InvalidInput("invalid application id"))
		return
	}

	if err := h.apps.Delete(r.Context(), ownerID, appID); err != nil {
		writeError(w, h.log, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func ownerFromContext(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(middleware.RegistrantIDFromContext(r.Context()))
	if err != nil {
		return uuid.Nil, apperrors.Unauthorized("invalid session")
	}
	return id, nil
}
