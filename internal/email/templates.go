package email

import (
	"fmt"
	"strings"

	"github.com/iliyamo/football-field-booking/internal/queue"
)

// Message is a rendered notification.
type Message struct {
	Subject string
	Body    string
}

// formatMoney renders minor units with thousands separators: 300000 -> "300,000".
func formatMoney(v int64) string {
	s := fmt.Sprintf("%d", v)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// BuildMessage renders the notification for a booking event.  ok is false
// for event types that do not notify the customer.
func BuildMessage(ev queue.BookingEvent) (msg Message, ok bool) {
	var headline, subject string
	switch ev.Type {
	case queue.BookingCreated:
		subject = fmt.Sprintf("Booking #%d received", ev.BookingID)
		headline = "We have received your booking. It is pending confirmation."
	case queue.BookingConfirmed:
		subject = fmt.Sprintf("Booking #%d confirmed", ev.BookingID)
		headline = "Your booking is confirmed. See you on the pitch!"
	case queue.BookingCancelled:
		subject = fmt.Sprintf("Booking #%d cancelled", ev.BookingID)
		headline = "Your booking has been cancelled."
	default:
		return Message{}, false
	}
	name := strings.TrimSpace(ev.CustomerName)
	if name == "" {
		name = "there"
	}
	lines := []string{
		fmt.Sprintf("Hi %s,", name),
		"",
		headline,
		"",
		fmt.Sprintf("Field: %s", ev.FieldName),
		fmt.Sprintf("Date: %s", ev.BookingDate),
		fmt.Sprintf("Time: %s - %s", ev.StartTime, ev.EndTime),
		fmt.Sprintf("Price: %s", formatMoney(ev.TotalPrice)),
	}
	if reason := strings.TrimSpace(ev.CancelReason); ev.Type == queue.BookingCancelled && reason != "" {
		lines = append(lines, fmt.Sprintf("Reason: %s", reason))
	}
	return Message{Subject: subject, Body: strings.Join(lines, "\n")}, true
}
