package service

import (
	"context"
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/klink-asia/registry/internal/domain"
	"github.com/klink-asia/registry/internal/repository"
)

// newOpaqueToken draws 32 bytes from the system CSPRNG and returns the
// hex-encoded SHA-512 digest. Token values carry no structure; possession
// is the whole credential.
func newOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	sum := sha512.Sum512(buf)
	return hex.EncodeToString(sum[:]), nil
}

// Ledger manages the verification token lifecycle: issue, inspect, consume.
// Issuing replaces any outstanding token for the same (registrant, purpose)
// pair; consuming is atomic and succeeds at most once per token.
type Ledger struct {
	tokens repository.TokenRepository
	ttl    time.Duration
	now    func() time.Time
}

// NewLedger creates a ledger with the given uniform token lifetime.
func NewLedger(tokens repository.TokenRepository, ttl time.Duration) *Ledger {
	return &Ledger{tokens: tokens, ttl: ttl, now: time.Now}
}

// TTL returns the configured token lifetime.
func (l *Ledger) TTL() time.Duration {
	return l.ttl
}

// Issue creates a fresh token for the registrant and purpose, invalidating
// any outstanding one. pendingEmail is captured for email-change tokens and
// applied verbatim at consume time.
func (l *Ledger) Issue(ctx context.Context, registrantID uuid.UUID, purpose string, pendingEmail *string) (*domain.VerificationToken, error) {
	if !domain.ValidPurpose(purpose) {
		return nil, fmt.Errorf("unknown token purpose %q", purpose)
	}

	value, err := newOpaqueToken()
	if err != nil {
		return nil, err
	}

	t := &domain.VerificationToken{
		ID:           uuid.New(),
		RegistrantID: registrantID,
		Purpose:      purpose,
		Token:        value,
		PendingEmail: pendingEmail,
		IssuedAt:     l.now().UTC(),
	}
	if err := l.tokens.Replace(ctx, t); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}
	return t, nil
}

// Consume atomically removes and returns the registrant's token if it
// matches and has not expired. Unknown, expired, and already consumed
// tokens all surface as ErrNotFound; callers must not distinguish them.
func (l *Ledger) Consume(ctx context.Context, registrantID uuid.UUID, purpose, token string) (*domain.VerificationToken, error) {
	cutoff := l.now().UTC().Add(-l.ttl)
	return l.tokens.Consume(ctx, registrantID, purpose, token, cutoff)
}

// Inspect looks up a live token by value without consuming it.
func (l *Ledger) Inspect(ctx context.Context, purpose, token string) (*domain.VerificationToken, error) {
	cutoff := l.now().UTC().Add(-l.ttl)
	return l.tokens.FindByToken(ctx, purpose, token, cutoff)
}

// Revoke discards all tokens the registrant holds.
func (l *Ledger) Revoke(ctx context.Context, registrantID uuid.UUID) error {
	return l.tokens.DeleteByRegistrant(ctx, registrantID)
}
