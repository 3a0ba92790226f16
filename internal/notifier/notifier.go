// Package notifier delivers transactional mail to registrants.
package notifier

import "context"

// Template names for outgoing mail.
const (
	TemplateVerificationLink   = "verification_link"
	TemplatePasswordReset      = "password_reset"
	TemplateEmailChangeConfirm = "email_change_confirm"
)

// Notifier sends a templated message to a recipient. Implementations must
// be safe for concurrent use.
type Notifier interface {
	Send(ctx context.Context, recipient, template string, vars map[string]string) error
}
