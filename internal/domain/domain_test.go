package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrantPassword(t *testing.T) {
	t.Run("set and check round trip", func(t *testing.T) {
		r := &Registrant{}
		require.NoError(t, r.SetPassword("correct horse battery"))
		require.NotNil(t, r.PasswordHash)

		assert.True(t, r.CheckPassword("correct horse battery"))
		assert.False(t, r.CheckPassword("wrong password"))
	})

	t.Run("no hash never matches", func(t *testing.T) {
		r := &Registrant{}
		assert.False(t, r.CheckPassword(""))
		assert.False(t, r.CheckPassword("anything"))
	})
}

func TestApplicationSecret(t *testing.T) {
	app := &Application{SecretHash: HashSecret("s3cret")}

	assert.True(t, app.CheckSecret("s3cret"))
	assert.False(t, app.CheckSecret("S3cret"))
	assert.False(t, app.CheckSecret(""))
	assert.Len(t, app.SecretHash, 128)
}

func TestVerificationTokenExpiry(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tok := &VerificationToken{IssuedAt: issued}

	assert.Equal(t, issued.Add(24*time.Hour), tok.ExpiresAt(24*time.Hour))
}

func TestValidPurpose(t *testing.T) {
	assert.True(t, ValidPurpose(PurposePasswordReset))
	assert.True(t, ValidPurpose(PurposeEmailChange))
	assert.False(t, ValidPurpose("session"))
	assert.False(t, ValidPurpose(""))
}
