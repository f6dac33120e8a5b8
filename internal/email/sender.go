// Package email delivers booking notifications to customers.
package email

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Sender provides a testable abstraction over mail delivery.
type Sender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// LogSender writes messages to the application log instead of sending
// them.  Used when SES is not configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, recipient, subject, body string) error {
	log.Info().Str("recipient", recipient).Str("subject", subject).Int("body_len", len(body)).Msg("email (log only)")
	return nil
}
