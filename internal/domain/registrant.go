package domain

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Registrant roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// Registrant is an account holder who owns applications and receives
// verification mail.
type Registrant struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	PasswordHash *string    `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Role         string     `json:"role"`
	Active       bool       `json:"active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// SetPassword hashes the plaintext password with bcrypt and stores the hash.
func (r *Registrant) SetPassword(plaintext string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	h := string(hash)
	r.PasswordHash = &h
	return nil
}

// CheckPassword reports whether the plaintext matches the stored hash. A
// registrant without a password hash (pending first verification) never
// matches.
func (r *Registrant) CheckPassword(plaintext string) bool {
	if r.PasswordHash == nil {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*r.PasswordHash), []byte(plaintext)) == nil
}
