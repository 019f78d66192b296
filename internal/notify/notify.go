// Package notify composes and delivers account emails.
package notify

import (
	"context"
	"log/slog"
)

// Message is one outbound email.
type Message struct {
	To      []string
	Subject string
	HTML    string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer records messages in the log instead of sending them. Bodies are
// not logged since they can carry credentials.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg Message) error {
	slog.Info("mail_skipped", "reason", "no mail provider configured", "to", msg.To, "subject", msg.Subject)
	return nil
}
