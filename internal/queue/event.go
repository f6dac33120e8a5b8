// Package queue carries booking lifecycle events over RabbitMQ.
package queue

import "time"

// Queue names, one per event type.  The routing key equals the queue name
// on the default exchange.
const (
	BookingCreated   = "booking.created"
	BookingConfirmed = "booking.confirmed"
	BookingCancelled = "booking.cancelled"
)

// Queues lists every queue the publisher and consumer declare.
var Queues = []string{BookingCreated, BookingConfirmed, BookingCancelled}

// BookingEvent is the payload of every booking event.  It carries enough
// detail for notification and analytics consumers to act without querying
// the database.
type BookingEvent struct {
	Type          string    `json:"type"`
	BookingID     uint64    `json:"booking_id"`
	UserID        uint64    `json:"user_id,omitempty"`
	FieldID       uint64    `json:"field_id"`
	FieldName     string    `json:"field_name"`
	TimeSlotID    uint64    `json:"time_slot_id"`
	BookingDate   string    `json:"booking_date"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	TotalPrice    int64     `json:"total_price"`
	Status        string    `json:"status"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email,omitempty"`
	CustomerPhone string    `json:"customer_phone"`
	CancelReason  string    `json:"cancel_reason,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
