package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/klink-asia/registry/internal/domain"
	apperrors "github.com/klink-asia/registry/pkg/errors"
)

// TokenRepository is the PostgreSQL verification token store.
type TokenRepository struct {
	db DB
}

// NewTokenRepository creates a token repository over db.
func NewTokenRepository(db DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Replace removes any outstanding token for the (registrant, purpose) pair
// and inserts the new one. Both statements run in one transaction so a
// reader never observes two live tokens for the same pair.
func (r *TokenRepository) Replace(ctx context.Context, t *domain.VerificationToken) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin token replace: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`DELETE FROM verification_tokens WHERE registrant_id = $1 AND purpose = $2`,
		t.RegistrantID, t.Purpose)
	if err != nil {
		return fmt.Errorf("delete outstanding token: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO verification_tokens (id, registrant_id, purpose, token, pending_email, issued_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.RegistrantID, t.Purpose, t.Token, t.PendingEmail, t.IssuedAt)
	if err != nil {
		return fmt.Errorf("insert token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit token replace: %w", err)
	}
	return nil
}

// Consume atomically deletes the matching unexpired token and returns it.
// The expiry predicate sits inside the DELETE so an expired or already
// consumed token is indistinguishable from one that never existed, and
// concurrent consumers succeed at most once.
func (r *TokenRepository) Consume(ctx context.Context, registrantID uuid.UUID, purpose, token string, cutoff time.Time) (*domain.VerificationToken, error) {
	query := `
		DELETE FROM verification_tokens
		WHERE registrant_id = $1 AND purpose = $2 AND token = $3 AND issued_at > $4
		RETURNING id, registrant_id, purpose, token, pending_email, issued_at`

	var t domain.VerificationToken
	err := r.db.QueryRow(ctx, query, registrantID, purpose, token, cutoff).Scan(
		&t.ID, &t.RegistrantID, &t.Purpose, &t.Token, &t.PendingEmail, &t.IssuedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("verification token", purpose)
		}
		return nil, fmt.Errorf("consume token: %w", err)
	}
	return &t, nil
}

// FindByToken looks up an unexpired token by value without consuming it.
func (r *TokenRepository) FindByToken(ctx context.Context, purpose, token string, cutoff time.Time) (*domain.VerificationToken, error) {
	query := `
		SELECT id, registrant_id, purpose, token, pending_email, issued_at
		FROM verification_tokens
		WHERE purpose = $1 AND token = $2 AND issued_at > $3`

	var t domain.VerificationToken
	err := r.db.QueryRow(ctx, query, purpose, token, cutoff).Scan(
		&t.ID, &t.RegistrantID, &t.Purpose, &t.Token, &t.PendingEmail, &t.IssuedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("verification token", purpose)
		}
		return nil, fmt.Errorf("find token: %w", err)
	}
	return &t, nil
}

// DeleteByRegistrant removes every token the registrant holds.
func (r *TokenRepository) DeleteByRegistrant(ctx context.Context, registrantID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM verification_tokens WHERE registrant_id = $1`, registrantID)
	if err != nil {
		return fmt.Errorf("delete tokens: %w", err)
	}
	return nil
}
