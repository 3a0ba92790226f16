package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/klink-asia/registry/internal/domain"
	"github.com/klink-asia/registry/internal/event"
	"github.com/klink-asia/registry/internal/notifier"
	"github.com/klink-asia/registry/internal/repository"
	apperrors "github.com/klink-asia/registry/pkg/errors"
)

// Messages surfaced to clients. Token failures share one message so the
// caller cannot tell unknown, expired, and already consumed apart.
const (
	msgTokenInvalid       = "verification token is invalid or has expired"
	msgAddressUnusable    = "this email address cannot be used"
	msgInvalidCredentials = "invalid email or password"
)

// RegistrantService drives registration, verification, and the password and
// email flows.
type RegistrantService struct {
	registrants repository.RegistrantRepository
	ledger      *Ledger
	notifier    notifier.Notifier
	events      event.Publisher
	log         *slog.Logger
	baseURL     string
}

// NewRegistrantService wires the registrant workflow.
func NewRegistrantService(
	registrants repository.RegistrantRepository,
	ledger *Ledger,
	n notifier.Notifier,
	events event.Publisher,
	log *slog.Logger,
	baseURL string,
) *RegistrantService {
	return &RegistrantService{
		registrants: registrants,
		ledger:      ledger,
		notifier:    n,
		events:      events,
		log:         log,
		baseURL:     baseURL,
	}
}

// Register creates a disabled account without a password, issues a
// verification token, and mails the verification link. If any later step
// fails, earlier writes are compensated in reverse order on a best-effort
// basis and the caller sees one generic error.
func (s *RegistrantService) Register(ctx context.Context, firstName, lastName, email string) (*domain.Registrant, error) {
	reg := &domain.Registrant{
		ID:        uuid.New(),
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Role:      domain.RoleUser,
		Active:    false,
	}

	if err := s.registrants.Create(ctx, reg); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, apperrors.InvalidInput(msgAddressUnusable)
		}
		return nil, fmt.Errorf("create registrant: %w", err)
	}

	tok, err := s.ledger.Issue(ctx, reg.ID, domain.PurposePasswordReset, nil)
	if err != nil {
		s.rollbackRegistration(ctx, reg.ID)
		return nil, apperrors.InvalidInput(msgAddressUnusable)
	}

	err = s.notifier.Send(ctx, email, notifier.TemplateVerificationLink, map[string]string{
		"name": firstName,
		"link": s.verifyLink(tok.Token),
		"ttl":  s.ledger.TTL().String(),
	})
	if err != nil {
		s.log.WarnContext(ctx, "verification mail failed, rolling back registration",
			slog.String("registrant_id", reg.ID.String()),
			slog.String("error", err.Error()))
		s.rollbackRegistration(ctx, reg.ID)
		return nil, apperrors.InvalidInput(msgAddressUnusable)
	}

	if err := s.events.RegistrantRegistered(ctx, reg); err != nil {
		s.log.WarnContext(ctx, "failed to publish registrant.registered",
			slog.String("registrant_id", reg.ID.String()),
			slog.String("error", err.Error()))
	}

	return reg, nil
}

// rollbackRegistration undoes a partial registration in reverse creation
// order. Failures are logged and swallowed; there is nothing better to do
// with them.
func (s *RegistrantService) rollbackRegistration(ctx context.Context, registrantID uuid.UUID) {
	if err := s.ledger.Revoke(ctx, registrantID); err != nil {
		s.log.ErrorContext(ctx, "rollback: revoke tokens failed",
			slog.String("registrant_id", registrantID.String()),
			slog.String("error", err.Error()))
	}
	if err := s.registrants.Delete(ctx, registrantID); err != nil {
		s.log.ErrorContext(ctx, "rollback: delete registrant failed",
			slog.String("registrant_id", registrantID.String()),
			slog.String("error", err.Error()))
	}
}

// RequestPasswordReset issues a reset token and mails the reset link. An
// unknown address is a silent no-op so the endpoint cannot be used to probe
// which addresses have accounts.
func (s *RegistrantService) RequestPasswordReset(ctx context.Context, email string) error {
	reg, err := s.registrants.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("look up registrant: %w", err)
	}

	tok, err := s.ledger.Issue(ctx, reg.ID, domain.PurposePasswordReset, nil)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}

	err = s.notifier.Send(ctx, email, notifier.TemplatePasswordReset, map[string]string{
		"link": s.verifyLink(tok.Token),
	})
	if err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}

	if err := s.events.PasswordResetRequested(ctx, reg.ID); err != nil {
		s.log.WarnContext(ctx, "failed to publish registrant.password_reset",
			slog.String("registrant_id", reg.ID.String()),
			slog.String("error", err.Error()))
	}
	return nil
}

// SetPassword consumes a reset token and stores the new password. Setting a
// password also activates the account, which is how initial registration
// completes. A consumed token is not refunded if the final update fails.
func (s *RegistrantService) SetPassword(ctx context.Context, email, token, password, confirm string) error {
	if password != confirm {
		return apperrors.InvalidInput("passwords do not match")
	}
	if len(password) < domain.MinPasswordLength {
		return apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", domain.MinPasswordLength))
	}

	reg, err := s.registrants.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.Unauthorized(msgTokenInvalid)
		}
		return fmt.Errorf("look up registrant: %w", err)
	}

	if _, err := s.ledger.Consume(ctx, reg.ID, domain.PurposePasswordReset, token); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.Unauthorized(msgTokenInvalid)
		}
		return fmt.Errorf("consume token: %w", err)
	}

	if err := reg.SetPassword(password); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.registrants.UpdatePassword(ctx, reg.ID, *reg.PasswordHash); err != nil {
		return fmt.Errorf("store password: %w", err)
	}
	return nil
}

// RequestEmailChange issues an email-change token carrying the new address
// and mails the confirmation link to that address. The change only applies
// once the link is confirmed.
func (s *RegistrantService) RequestEmailChange(ctx context.Context, registrantID uuid.UUID, newEmail string) error {
	reg, err := s.registrants.GetByID(ctx, registrantID)
	if err != nil {
		return fmt.Errorf("look up registrant: %w", err)
	}

	tok, err := s.ledger.Issue(ctx, reg.ID, domain.PurposeEmailChange, &newEmail)
	if err != nil {
		return fmt.Errorf("issue email change token: %w", err)
	}

	err = s.notifier.Send(ctx, newEmail, notifier.TemplateEmailChangeConfirm, map[string]string{
		"new_email": newEmail,
		"link":      s.baseURL + "/api/2.0/email-change/confirm?token=" + tok.Token,
	})
	if err != nil {
		return fmt.Errorf("send confirmation mail: %w", err)
	}
	return nil
}

// ConfirmEmailChange consumes the token and applies the address captured at
// issue time. A new address submitted at confirm time would not be the one
// that was verified, so the payload wins unconditionally.
func (s *RegistrantService) ConfirmEmailChange(ctx context.Context, currentEmail, token string) error {
	reg, err := s.registrants.GetByEmail(ctx, currentEmail)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.Unauthorized(msgTokenInvalid)
		}
		return fmt.Errorf("look up registrant: %w", err)
	}

	tok, err := s.ledger.Consume(ctx, reg.ID, domain.PurposeEmailChange, token)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.Unauthorized(msgTokenInvalid)
		}
		return fmt.Errorf("consume token: %w", err)
	}
	if tok.PendingEmail == nil || *tok.PendingEmail == "" {
		return apperrors.Unauthorized(msgTokenInvalid)
	}

	if err := s.registrants.UpdateEmail(ctx, reg.ID, *tok.PendingEmail); err != nil {
		return fmt.Errorf("apply email change: %w", err)
	}

	if err := s.events.EmailChanged(ctx, reg.ID, *tok.PendingEmail); err != nil {
		s.log.WarnContext(ctx, "failed to publish registrant.email_changed",
			slog.String("registrant_id", reg.ID.String()),
			slog.String("error", err.Error()))
	}
	return nil
}

// InspectVerification reports whether a verification link is still live and
// which address it belongs to, without consuming the token.
func (s *RegistrantService) InspectVerification(ctx context.Context, token string) (*domain.Registrant, error) {
	tok, err := s.ledger.Inspect(ctx, domain.PurposePasswordReset, token)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized(msgTokenInvalid)
		}
		return nil, fmt.Errorf("inspect token: %w", err)
	}
	reg, err := s.registrants.GetByID(ctx, tok.RegistrantID)
	if err != nil {
		return nil, fmt.Errorf("look up registrant: %w", err)
	}
	return reg, nil
}

// Login checks the credentials and stamps the last login time. Disabled
// accounts and accounts that never set a password are denied with the same
// message as a wrong password.
func (s *RegistrantService) Login(ctx context.Context, email, password string) (*domain.Registrant, error) {
	reg, err := s.registrants.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized(msgInvalidCredentials)
		}
		return nil, fmt.Errorf("look up registrant: %w", err)
	}

	if !reg.Active || !reg.CheckPassword(password) {
		return nil, apperrors.Unauthorized(msgInvalidCredentials)
	}

	if err := s.registrants.UpdateLastLogin(ctx, reg.ID); err != nil {
		s.log.WarnContext(ctx, "failed to stamp last login",
			slog.String("registrant_id", reg.ID.String()),
			slog.String("error", err.Error()))
	}
	return reg, nil
}

// GetByID returns a registrant by id.
func (s *RegistrantService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Registrant, error) {
	return s.registrants.GetByID(ctx, id)
}

func (s *RegistrantService) verifyLink(token string) string {
	return s.baseURL + "/api/2.0/verify-email/" + token
}
