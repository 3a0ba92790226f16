package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/klink-asia/registry/internal/domain"
	"github.com/klink-asia/registry/internal/event"
	"github.com/klink-asia/registry/internal/repository"
	apperrors "github.com/klink-asia/registry/pkg/errors"
)

// ApplicationService manages application registrations.
type ApplicationService struct {
	apps   repository.ApplicationRepository
	events event.Publisher
	log    *slog.Logger
}

// NewApplicationService wires the application workflow.
func NewApplicationService(apps repository.ApplicationRepository, events event.Publisher, log *slog.Logger) *ApplicationService {
	return &ApplicationService{apps: apps, events: events, log: log}
}

// Register creates an application for the owner and returns it together
// with the freshly generated plaintext secret. The secret is shown exactly
// once; only its hash is stored.
func (s *ApplicationService) Register(ctx context.Context, ownerID uuid.UUID, name, url string, permissions []string) (*domain.Application, string, error) {
	secret, err := newOpaqueToken()
	if err != nil {
		return nil, "", fmt.Errorf("generate secret: %w", err)
	}

	app := &domain.Application{
		ID:           uuid.New(),
		RegistrantID: ownerID,
		Name:         name,
		URL:          url,
		SecretHash:   domain.HashSecret(secret),
		Permissions:  dedupe(permissions),
		Active:       true,
	}

	if err := s.apps.Create(ctx, app); err != nil {
		return nil, "", err
	}

	if err := s.events.ApplicationRegistered(ctx, app); err != nil {
		s.log.WarnContext(ctx, "failed to publish application.registered",
			slog.String("application_id", app.ID.String()),
			slog.String("error", err.Error()))
	}
	return app, secret, nil
}

// List returns the owner's applications.
func (s *ApplicationService) List(ctx context.Context, ownerID uuid.UUID) ([]*domain.Application, error) {
	return s.apps.ListByRegistrant(ctx, ownerID)
}

// Get returns one application, refusing access to other owners'
// registrations.
func (s *ApplicationService) Get(ctx context.Context, ownerID, appID uuid.UUID) (*domain.Application, error) {
	app, err := s.apps.GetByID(ctx, appID)
	if err != nil {
		return nil, err
	}
	if app.RegistrantID != ownerID {
		return nil, apperrors.NotFound("application", appID.String())
	}
	return app, nil
}

// Delete removes the owner's application.
func (s *ApplicationService) Delete(ctx context.Context, ownerID, appID uuid.UUID) error {
	if _, err := s.Get(ctx, ownerID, appID); err != nil {
		return err
	}
	if err := s.apps.Delete(ctx, appID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Lost a race with a concurrent delete; the outcome is the same.
			return nil
		}
		return err
	}

	if err := s.events.ApplicationDeregistered(ctx, appID); err != nil {
		s.log.WarnContext(ctx, "failed to publish application.deregistered",
			slog.String("application_id", appID.String()),
			slog.String("error", err.Error()))
	}
	return nil
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
