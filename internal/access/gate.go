package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/klink-asia/registry/internal/domain"
	apperrors "github.com/klink-asia/registry/pkg/errors"
)

// RPC error codes returned by the access endpoints. The codes and messages
// are fixed wire contract; clients match on them.
const (
	CodeParseError       = -32700
	CodeInvalidRequest   = -32602
	CodePermissionDenied = -32000
)

// RPCError is the error object returned on the RPC wire.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Fixed RPC errors. Denial causes are deliberately conflated into a single
// message so callers cannot probe which credential part failed.
var (
	ErrParse            = &RPCError{Code: CodeParseError, Message: "Invalid JSON object."}
	ErrInvalidRequest   = &RPCError{Code: CodeInvalidRequest, Message: "Invalid request."}
	ErrPermissionDenied = &RPCError{Code: CodePermissionDenied, Message: "Permission denied."}
)

// Origin describes where an access request came from.
type Origin struct {
	// Addr is the remote IP address, without port.
	Addr string
	// PreAuthenticated marks requests arriving over a transport that has
	// already authenticated the caller (e.g. a terminating proxy).
	PreAuthenticated bool
}

// Request carries the credentials presented by an application.
type Request struct {
	AppURL      string
	Secret      string
	Permissions []string
}

// Grant is the projection returned on successful authentication. It never
// carries the secret.
type Grant struct {
	ApplicationID uuid.UUID `json:"application_id"`
	Name          string    `json:"name"`
	AppURL        string    `json:"app_url"`
	Permissions   []string  `json:"permissions"`
	OwnerEmail    string    `json:"owner_email"`
	Active        bool      `json:"active"`
}

// ApplicationStore is the read-side lookup the gate needs.
type ApplicationStore interface {
	GetByURL(ctx context.Context, url string) (*domain.Application, error)
}

// RegistrantStore resolves application owners.
type RegistrantStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Registrant, error)
}

// Gate authenticates application access requests. It is a pure read path and
// safe for concurrent use.
type Gate struct {
	apps        ApplicationStore
	registrants RegistrantStore
	trusted     *AllowList
}

// NewGate builds a gate over the given stores and trusted-network list.
func NewGate(apps ApplicationStore, registrants RegistrantStore, trusted *AllowList) *Gate {
	return &Gate{apps: apps, registrants: registrants, trusted: trusted}
}

// TrustedOrigin reports whether the origin may present application
// credentials at all.
func (g *Gate) TrustedOrigin(origin Origin) bool {
	if origin.PreAuthenticated {
		return true
	}
	return g.trusted.ContainsString(origin.Addr)
}

// Authenticate validates the origin, the credential, and the requested
// permission set. It returns a Grant on success or one of the fixed RPC
// errors.
func (g *Gate) Authenticate(ctx context.Context, origin Origin, req Request) (*Grant, error) {
	if !g.TrustedOrigin(origin) {
		return nil, ErrInvalidRequest
	}
	if req.AppURL == "" || req.Secret == "" {
		return nil, ErrInvalidRequest
	}

	app, err := g.apps.GetByURL(ctx, req.AppURL)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrPermissionDenied
		}
		return nil, fmt.Errorf("look up application: %w", err)
	}
	if !app.Active {
		return nil, ErrPermissionDenied
	}
	if !app.CheckSecret(req.Secret) {
		return nil, ErrPermissionDenied
	}
	if !HasAll(app.Permissions, req.Permissions) {
		return nil, ErrPermissionDenied
	}

	grant := &Grant{
		ApplicationID: app.ID,
		Name:          app.Name,
		AppURL:        app.URL,
		Permissions:   app.Permissions,
		Active:        app.Active,
	}

	owner, err := g.registrants.GetByID(ctx, app.RegistrantID)
	if err == nil {
		grant.OwnerEmail = owner.Email
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("look up application owner: %w", err)
	}

	return grant, nil
}
