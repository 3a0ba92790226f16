// Package app assembles the registry service and manages its lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/klink-asia/registry/internal/access"
	"github.com/klink-asia/registry/internal/auth"
	"github.com/klink-asia/registry/internal/config"
	"github.com/klink-asia/registry/internal/event"
	handler "github.com/klink-asia/registry/internal/handler/http"
	"github.com/klink-asia/registry/internal/notifier"
	"github.com/klink-asia/registry/internal/repository/postgres"
	"github.com/klink-asia/registry/internal/service"
	"github.com/klink-asia/registry/migrations"
	"github.com/klink-asia/registry/pkg/database"
	"github.com/klink-asia/registry/pkg/health"
	"github.com/klink-asia/registry/pkg/kafka"
	"github.com/klink-asia/registry/pkg/middleware"
	"github.com/klink-asia/registry/pkg/tracing"
)

// App holds the assembled service and its external connections.
type App struct {
	cfg      *config.Config
	log      *slog.Logger
	server   *http.Server
	pool     *pgxpool.Pool
	redis    *redis.Client
	producer *kafka.Producer
	tracing  func(context.Context) error
}

// New builds the application: connections, migrations, services, router.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Endpoint:       cfg.Tracing.Endpoint,
		Enabled:        cfg.Tracing.Enabled,
		SampleRate:     cfg.Tracing.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.PostgresPoolConfig())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := database.RunMigrations(ctx, pool, migrations.FS); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := database.NewRedisClient(ctx, cfg.RedisClientConfig())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)

	registrantRepo := postgres.NewRegistrantRepository(pool)
	applicationRepo := postgres.NewApplicationRepository(pool)
	tokenRepo := postgres.NewTokenRepository(pool)

	events := event.NewProducer(producer)
	ledger := service.NewLedger(tokenRepo, cfg.Token.TTL)

	var mailer notifier.Notifier
	if cfg.SMTP.Host == "" {
		mailer = notifier.NewLogNotifier(log)
	} else {
		mailer = notifier.NewSMTPNotifier(
			cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	}

	registrantSvc := service.NewRegistrantService(
		registrantRepo, ledger, mailer, events, log, cfg.SMTP.BaseURL)
	applicationSvc := service.NewApplicationService(applicationRepo, events, log)
	sessions := auth.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenTTL)

	allowList, err := access.NewAllowList(cfg.Access.TrustedNetworks)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("parse trusted networks: %w", err)
	}
	gate := access.NewGate(applicationRepo, registrantRepo, allowList)

	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})

	limiter := middleware.NewRateLimiter(
		redisClient, log, "issue", cfg.Access.RateLimit, cfg.Access.RateWindow)

	router := handler.NewRouter(handler.RouterConfig{
		Logger:       log,
		ServiceName:  cfg.Service.Name,
		Access:       handler.NewAccessHandler(gate, log, cfg.Access.PreAuthHeader),
		Account:      handler.NewAccountHandler(registrantSvc, log),
		Sessions:     handler.NewSessionHandler(registrantSvc, sessions, log),
		Applications: handler.NewApplicationHandler(applicationSvc, log),
		Health:       healthHandler,
		SessionAuth:  handler.SessionValidator(sessions),
		IssueLimiter: limiter,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		cfg:      cfg,
		log:      log,
		server:   server,
		pool:     pool,
		redis:    redisClient,
		producer: producer,
		tracing:  shutdownTracing,
	}, nil
}

// Run serves HTTP until the server is shut down.
func (a *App) Run() error {
	a.log.Info("server starting", slog.String("addr", a.server.Addr))
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve http: %w", err)
	}
	return nil
}

// Shutdown drains the server and closes connections.
func (a *App) Shutdown(ctx context.Context) error {
	a.log.Info("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}
	if err := a.producer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close kafka producer: %w", err))
	}
	if err := a.redis.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close redis: %w", err))
	}
	a.pool.Close()
	if err := a.tracing(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown tracing: %w", err))
	}

	return errors.Join(errs...)
}
