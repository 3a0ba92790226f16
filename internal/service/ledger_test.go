package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/klink-asia/registry/internal/domain"
	apperrors "github.com/klink-asia/registry/pkg/errors"
)

func TestNewOpaqueToken(t *testing.T) {
	a, err := newOpaqueToken()
	require.NoError(t, err)
	b, err := newOpaqueToken()
	require.NoError(t, err)

	// 128 hex chars = SHA-512 digest.
	assert.Len(t, a, 128)
	assert.Regexp(t, "^[0-9a-f]+$", a)
	assert.NotEqual(t, a, b)
}

func TestLedgerIssue(t *testing.T) {
	ctx := context.Background()
	registrantID := uuid.New()

	t.Run("stores fresh token via replace", func(t *testing.T) {
		tokens := new(mockTokenRepo)
		ledger := NewLedger(tokens, 24*time.Hour)

		var stored *domain.VerificationToken
		tokens.On("Replace", ctx, mock.AnythingOfType("*domain.VerificationToken")).
			Run(func(args mock.Arguments) {
				stored = args.Get(1).(*domain.VerificationToken)
			}).
			Return(nil)

		tok, err := ledger.Issue(ctx, registrantID, domain.PurposePasswordReset, nil)
		require.NoError(t, err)

		assert.Equal(t, registrantID, tok.RegistrantID)
		assert.Equal(t, domain.PurposePasswordReset, tok.Purpose)
		assert.Len(t, tok.Token, 128)
		assert.Nil(t, tok.PendingEmail)
		assert.Same(t, stored, tok)
	})

	t.Run("captures pending email payload", func(t *testing.T) {
		tokens := new(mockTokenRepo)
		ledger := NewLedger(tokens, 24*time.Hour)
		pending := "new@example.com"

		tokens.On("Replace", ctx, mock.AnythingOfType("*domain.VerificationToken")).Return(nil)

		tok, err := ledger.Issue(ctx, registrantID, domain.PurposeEmailChange, &pending)
		require.NoError(t, err)
		require.NotNil(t, tok.PendingEmail)
		assert.Equal(t, pending, *tok.PendingEmail)
	})

	t.Run("rejects unknown purpose", func(t *testing.T) {
		ledger := NewLedger(new(mockTokenRepo), 24*time.Hour)

		_, err := ledger.Issue(ctx, registrantID, "session", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown token purpose")
	})
}

func TestLedgerConsumeCutoff(t *testing.T) {
	ctx := context.Background()
	registrantID := uuid.New()

	fixed := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	tokens := new(mockTokenRepo)
	ledger := NewLedger(tokens, 24*time.Hour)
	ledger.now = func() time.Time { return fixed }

	wantCutoff := fixed.Add(-24 * time.Hour)
	tokens.On("Consume", ctx, registrantID, domain.PurposePasswordReset, "tok", wantCutoff).
		Return(nil, apperrors.ErrNotFound)

	_, err := ledger.Consume(ctx, registrantID, domain.PurposePasswordReset, "tok")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	tokens.AssertExpectations(t)
}

func TestLedgerInspectCutoff(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	tokens := new(mockTokenRepo)
	ledger := NewLedger(tokens, time.Hour)
	ledger.now = func() time.Time { return fixed }

	tok := &domain.VerificationToken{ID: uuid.New(), Token: "tok"}
	tokens.On("FindByToken", ctx, domain.PurposePasswordReset, "tok", fixed.Add(-time.Hour)).
		Return(tok, nil)

	got, err := ledger.Inspect(ctx, domain.PurposePasswordReset, "tok")
	require.NoError(t, err)
	assert.Same(t, tok, got)
	tokens.AssertExpectations(t)
}
