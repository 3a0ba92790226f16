package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/klink-asia/registry/internal/auth"
	"github.com/klink-asia/registry/pkg/health"
	"github.com/klink-asia/registry/pkg/middleware"
)

// SessionValidator adapts the session manager to the auth middleware.
func SessionValidator(m *auth.Manager) middleware.TokenValidator {
	return func(token string) (*middleware.Claims, error) {
		claims, err := m.Validate(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			RegistrantID: claims.RegistrantID,
			Email:        claims.Email,
			Role:         claims.Role,
		}, nil
	}
}

// RouterConfig carries everything the router mounts.
type RouterConfig struct {
	Logger       *slog.Logger
	ServiceName  string
	Access       *AccessHandler
	Account      *AccountHandler
	Sessions     *SessionHandler
	Applications *ApplicationHandler
	Health       *health.Handler
	SessionAuth  middleware.TokenValidator
	// IssueLimiter throttles the endpoints that send mail. Nil disables
	// throttling.
	IssueLimiter *middleware.RateLimiter
}

// NewRouter assembles the HTTP surface.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))

	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/1.0/application.authenticate", cfg.Access.Authenticate)

	// The legacy access path answers any verb but POST with 400 "false".
	r.Route("/application", func(r chi.Router) {
		r.MethodNotAllowed(cfg.Access.LegacyBadMethod)
		r.Post("/access", cfg.Access.LegacyAccess)
	})

	limited := func(h http.HandlerFunc) http.Handler {
		if cfg.IssueLimiter == nil {
			return h
		}
		return cfg.IssueLimiter.Limit(h)
	}

	r.Route("/api/2.0", func(r chi.Router) {
		r.Method(http.MethodPost, "/registration", limited(cfg.Account.Register))
		r.Get("/verify-email/{token}", cfg.Account.InspectVerification)
		r.Post("/verify-email/{token}", cfg.Account.CompleteVerification)
		r.Method(http.MethodPost, "/password-reset", limited(cfg.Account.RequestPasswordReset))
		r.Post("/password", cfg.Account.SetPassword)
		r.Post("/email-change/confirm", cfg.Account.ConfirmEmailChange)
		r.Post("/session", cfg.Sessions.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.SessionAuth))

			r.Get("/session", cfg.Sessions.Refresh)
			r.Post("/email-change", cfg.Account.RequestEmailChange)

			r.Route("/applications", func(r chi.Router) {
				r.Post("/", cfg.Applications.Register)
				r.Get("/", cfg.Applications.List)
				r.Get("/{id}", cfg.Applications.Get)
				r.Delete("/{id}", cfg.Applications.Delete)
			})
		})
	})

	return r
}
