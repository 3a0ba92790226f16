// Package repository defines the persistence interfaces the services depend
// on. Implementations live in subpackages.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/klink-asia/registry/internal/domain"
)

// RegistrantRepository persists registrant accounts.
type RegistrantRepository interface {
	Create(ctx context.Context, r *domain.Registrant) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Registrant, error)
	GetByEmail(ctx context.Context, email string) (*domain.Registrant, error)
	UpdateEmail(ctx context.Context, id uuid.UUID, email string) error
	// UpdatePassword stores the hash and activates the account; setting the
	// first password is what completes registration.
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ApplicationRepository persists registered applications.
type ApplicationRepository interface {
	Create(ctx context.Context, a *domain.Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Application, error)
	GetByURL(ctx context.Context, url string) (*domain.Application, error)
	ListByRegistrant(ctx context.Context, registrantID uuid.UUID) ([]*domain.Application, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TokenRepository persists verification tokens. Replace and Consume are the
// only write paths and both are atomic.
type TokenRepository interface {
	// Replace removes any outstanding token for the same (registrant,
	// purpose) pair and inserts the new one in a single transaction.
	Replace(ctx context.Context, t *domain.VerificationToken) error
	// Consume deletes the matching unexpired token and returns it. Rows
	// issued at or before cutoff never match. A second consume of the same
	// token reports not found.
	Consume(ctx context.Context, registrantID uuid.UUID, purpose, token string, cutoff time.Time) (*domain.VerificationToken, error)
	// FindByToken looks up an unexpired token by value without consuming
	// it. Used to inspect a verification link before the holder submits
	// the completing request.
	FindByToken(ctx context.Context, purpose, token string, cutoff time.Time) (*domain.VerificationToken, error)
	// DeleteByRegistrant removes all tokens for a registrant, for rollback
	// and account deletion.
	DeleteByRegistrant(ctx context.Context, registrantID uuid.UUID) error
}
