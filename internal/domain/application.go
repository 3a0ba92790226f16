package domain

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// Application is a registered client identified by its URL. It authenticates
// with a shared secret and carries a set of granted permissions.
type Application struct {
	ID           uuid.UUID `json:"id"`
	RegistrantID uuid.UUID `json:"registrant_id"`
	Name         string    `json:"name"`
	URL          string    `json:"url"`
	SecretHash   string    `json:"-"`
	Permissions  []string  `json:"permissions"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HashSecret returns the hex-encoded SHA-512 digest of an application secret.
func HashSecret(secret string) string {
	sum := sha512.Sum512([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// CheckSecret reports whether the plaintext secret matches the stored hash,
// in constant time.
func (a *Application) CheckSecret(secret string) bool {
	digest := HashSecret(secret)
	return subtle.ConstantTimeCompare([]byte(digest), []byte(a.SecretHash)) == 1
}
