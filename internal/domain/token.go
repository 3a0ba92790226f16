package domain

import (
	"time"

	"github.com/google/uuid"
)

// Verification token purposes. Registration and password reset share the
// password_reset purpose: a fresh account completes verification by setting
// its first password.
const (
	PurposePasswordReset = "password_reset"
	PurposeEmailChange   = "email_change"
)

// VerificationToken is a single-use token bound to a registrant and a
// purpose. At most one token per (registrant, purpose) pair exists at a
// time; issuing a new one replaces the old.
type VerificationToken struct {
	ID           uuid.UUID `json:"id"`
	RegistrantID uuid.UUID `json:"registrant_id"`
	Purpose      string    `json:"purpose"`
	Token        string    `json:"token"`
	PendingEmail *string   `json:"pending_email,omitempty"`
	IssuedAt     time.Time `json:"issued_at"`
}

// ExpiresAt returns the instant after which the token is no longer valid.
func (t *VerificationToken) ExpiresAt(ttl time.Duration) time.Time {
	return t.IssuedAt.Add(ttl)
}

// ValidPurpose reports whether p is a known token purpose.
func ValidPurpose(p string) bool {
	switch p {
	case PurposePasswordReset, PurposeEmailChange:
		return true
	}
	return false
}
