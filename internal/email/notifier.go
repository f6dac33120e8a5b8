package email

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/football-field-booking/internal/queue"
)

const sendTimeout = 5 * time.Second

// Notifier turns booking events into customer emails.  It satisfies
// queue.Handler.
type Notifier struct {
	sender Sender
	log    zerolog.Logger
}

func NewNotifier(s Sender) *Notifier {
	return &Notifier{sender: s, log: log.With().Str("component", "notifier").Logger()}
}

func (n *Notifier) HandleBookingEvent(ctx context.Context, ev queue.BookingEvent) error {
	n.log.Info().Str("event", ev.Type).Uint64("booking_id", ev.BookingID).Str("date", ev.BookingDate).Msg("booking event")

	recipient := strings.TrimSpace(ev.CustomerEmail)
	if recipient == "" {
		return nil
	}
	msg, ok := BuildMessage(ev)
	if !ok {
		return nil
	}
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	return n.sender.Send(sendCtx, recipient, msg.Subject, msg.Body)
}
