package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klink-asia/registry/internal/domain"
	apperrors "github.com/klink-asia/registry/pkg/errors"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testRegistrant() *domain.Registrant {
	return &domain.Registrant{
		ID:    uuid.New(),
		Email: "ada@example.com",
		Role:  domain.RoleUser,
	}
}

func TestManagerGenerateAndValidate(t *testing.T) {
	mgr := NewManager(testSecret, "registry", 15*time.Minute)
	reg := testRegistrant()

	token, err := mgr.Generate(reg)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := mgr.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, reg.ID.String(), claims.RegistrantID)
	assert.Equal(t, reg.Email, claims.Email)
	assert.Equal(t, domain.RoleUser, claims.Role)
	assert.Equal(t, "registry", claims.Issuer)
}

func TestManagerValidateRejections(t *testing.T) {
	mgr := NewManager(testSecret, "registry", 15*time.Minute)

	t.Run("garbage token", func(t *testing.T) {
		_, err := mgr.Validate("not.a.token")
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("wrong key", func(t *testing.T) {
		other := NewManager("ffffffffffffffffffffffffffffffff", "registry", 15*time.Minute)
		token, err := other.Generate(testRegistrant())
		require.NoError(t, err)

		_, err = mgr.Validate(token)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewManager(testSecret, "someone-else", 15*time.Minute)
		token, err := other.Generate(testRegistrant())
		require.NoError(t, err)

		_, err = mgr.Validate(token)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewManager(testSecret, "registry", 15*time.Minute)
		expired.now = func() time.Time { return time.Now().Add(-time.Hour) }

		token, err := expired.Generate(testRegistrant())
		require.NoError(t, err)

		_, err = mgr.Validate(token)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})
}
