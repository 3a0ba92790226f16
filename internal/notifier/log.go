package notifier

import (
	"context"
	"log/slog"
)

// LogNotifier writes outgoing mail to the log instead of delivering it.
// Used in development and test environments without an SMTP relay.
type LogNotifier struct {
	log *slog.Logger
}

// NewLogNotifier creates a notifier that only logs.
func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Send(ctx context.Context, recipient, template string, vars map[string]string) error {
	n.log.InfoContext(ctx, "mail suppressed",
		slog.String("recipient", recipient),
		slog.String("template", template),
		slog.Any("vars", vars),
	)
	return nil
}
