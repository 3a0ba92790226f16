package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/klink-asia/registry/internal/access"
)

// AccessHandler serves the application access endpoints. Both endpoints
// answer HTTP 200 with an error object on failure; the only non-200 response
// is the legacy bad-method answer on /application/access.
type AccessHandler struct {
	gate          *access.Gate
	log           *slog.Logger
	preAuthHeader string
}

// NewAccessHandler creates the handler. If preAuthHeader is non-empty, a
// request carrying that header counts as pre-authenticated; the header must
// only ever be set by a terminating proxy that strips it from client input.
func NewAccessHandler(gate *access.Gate, log *slog.Logger, preAuthHeader string) *AccessHandler {
	return &AccessHandler{gate: gate, log: log, preAuthHeader: preAuthHeader}
}

type rpcParams struct {
	AppURL      string   `json:"app_url"`
	AppSecret   string   `json:"app_secret"`
	Permissions []string `json:"permissions"`
}

type rpcRequest struct {
	ID     any       `json:"id"`
	Params rpcParams `json:"params"`
}

type rpcResponse struct {
	ID     any              `json:"id"`
	Result any              `json:"result,omitempty"`
	Error  *access.RPCError `json:"error,omitempty"`
}

type legacyAccessRequest struct {
	AppURL      string   `json:"app_url"`
	Permissions []string `json:"permissions"`
	AuthToken   string   `json:"auth_token"`
}

// Authenticate handles POST /api/1.0/application.authenticate.
func (h *AccessHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// A request we could not parse has no usable id; the contract
		// echoes false in its place.
		writeJSON(w, http.StatusOK, rpcResponse{ID: false, Error: access.ErrParse})
		return
	}

	grant, err := h.gate.Authenticate(r.Context(), h.origin(r), access.Request{
		AppURL:      req.Params.AppURL,
		Secret:      req.Params.AppSecret,
		Permissions: req.Params.Permissions,
	})
	if err != nil {
		writeJSON(w, http.StatusOK, rpcResponse{ID: req.ID, Error: h.rpcError(r, err)})
		return
	}

	writeJSON(w, http.StatusOK, rpcResponse{ID: req.ID, Result: grant})
}

// LegacyAccess handles POST /application/access, the older flat request
// shape. Success answers with the bare grant object.
func (h *AccessHandler) LegacyAccess(w http.ResponseWriter, r *http.Request) {
	var req legacyAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusOK, rpcResponse{ID: false, Error: access.ErrParse})
		return
	}

	grant, err := h.gate.Authenticate(r.Context(), h.origin(r), access.Request{
		AppURL:      req.AppURL,
		Secret:      req.AuthToken,
		Permissions: req.Permissions,
	})
	if err != nil {
		writeJSON(w, http.StatusOK, rpcResponse{ID: false, Error: h.rpcError(r, err)})
		return
	}

	writeJSON(w, http.StatusOK, grant)
}

// LegacyBadMethod answers any verb other than POST on /application/access:
// HTTP 400 with the literal body "false". Old clients match on exactly this.
func (h *AccessHandler) LegacyBadMethod(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_, _ = w.Write([]byte("false"))
}

func (h *AccessHandler) origin(r *http.Request) access.Origin {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	preAuth := h.preAuthHeader != "" && r.Header.Get(h.preAuthHeader) != ""
	return access.Origin{Addr: host, PreAuthenticated: preAuth}
}

// rpcError maps gate failures onto the wire taxonomy. Anything that is not
// already an RPC error is an internal fault; it is logged and surfaced as a
// denial rather than leaking a distinct error shape.
func (h *AccessHandler) rpcError(r *http.Request, err error) *access.RPCError {
	var rpcErr *access.RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	h.log.ErrorContext(r.Context(), "access authentication failed",
		slog.String("error", err.Error()))
	return access.ErrPermissionDenied
}
