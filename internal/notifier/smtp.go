package notifier

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	mail "github.com/go-mail/mail/v2"

	apperrors "github.com/klink-asia/registry/pkg/errors"
)

type mailTemplate struct {
	subject string
	body    *template.Template
}

var templates = map[string]mailTemplate{
	TemplateVerificationLink: {
		subject: "Verify your email address",
		body: template.Must(template.New(TemplateVerificationLink).Parse(
			"Hello {{.name}},\n\n" +
				"Your account has been created. Open the link below to verify your\n" +
				"address and choose a password:\n\n{{.link}}\n\n" +
				"The link is valid for {{.ttl}}.\n")),
	},
	TemplatePasswordReset: {
		subject: "Reset your password",
		body: template.Must(template.New(TemplatePasswordReset).Parse(
			"Hello,\n\n" +
				"A password reset was requested for this address. Open the link below\n" +
				"to choose a new password:\n\n{{.link}}\n\n" +
				"If you did not request this, you can ignore this message.\n")),
	},
	TemplateEmailChangeConfirm: {
		subject: "Confirm your new email address",
		body: template.Must(template.New(TemplateEmailChangeConfirm).Parse(
			"Hello,\n\n" +
				"A change of your account email to {{.new_email}} was requested.\n" +
				"Open the link below to confirm:\n\n{{.link}}\n")),
	},
}

// SMTPNotifier sends mail through an SMTP relay.
type SMTPNotifier struct {
	dialer *mail.Dialer
	from   string
}

// NewSMTPNotifier creates a notifier for the given relay.
func NewSMTPNotifier(host string, port int, username, password, from string) *SMTPNotifier {
	return &SMTPNotifier{
		dialer: mail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// Send renders the named template and delivers it. The context deadline is
// not plumbed into the SMTP dial; delivery is bounded by the dialer timeout.
func (n *SMTPNotifier) Send(ctx context.Context, recipient, tmpl string, vars map[string]string) error {
	mt, ok := templates[tmpl]
	if !ok {
		return fmt.Errorf("unknown mail template %q", tmpl)
	}

	var body bytes.Buffer
	if err := mt.body.Execute(&body, vars); err != nil {
		return fmt.Errorf("render mail template %q: %w", tmpl, err)
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", n.from)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", mt.subject)
	msg.SetBody("text/plain", body.String())

	if err := n.dialer.DialAndSend(msg); err != nil {
		return apperrors.Delivery(fmt.Errorf("send mail to %s: %w", recipient, err))
	}
	return nil
}
