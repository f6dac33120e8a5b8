package model

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s BookingStatus) Terminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

// Blocks reports whether a booking in this state occupies its slot.
// Completed bookings keep blocking; only cancellation releases the slot.
func (s BookingStatus) Blocks() bool {
	return s != BookingCancelled
}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCompleted, BookingCancelled},
}

// CanTransition reports whether a booking may move from one status to
// another.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// PaymentStatus tracks settlement independently of the booking status.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Booking mirrors the bookings table.  BookingDate is a calendar date at
// midnight UTC.
type Booking struct {
	ID            uint64        `json:"id"`
	UserID        *uint64       `json:"userId,omitempty"`
	FieldID       uint64        `json:"fieldId"`
	TimeSlotID    uint64        `json:"timeSlotId"`
	BookingDate   time.Time     `json:"-"`
	TotalPrice    int64         `json:"totalPrice"`
	Status        BookingStatus `json:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	CustomerName  string        `json:"customerName"`
	CustomerPhone string        `json:"customerPhone"`
	CustomerEmail string        `json:"customerEmail,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	CancelReason  string        `json:"cancelReason,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// Date returns the booking date in YYYY-MM-DD form.
func (b Booking) Date() string { return b.BookingDate.Format(DateLayout) }

// BookingDetail is a booking joined with the field and slot it refers to,
// as returned to clients.
type BookingDetail struct {
	Booking
	BookingDateStr string    `json:"bookingDate"`
	FieldName      string    `json:"fieldName"`
	FieldSize      FieldSize `json:"fieldSize"`
	StartTime      string    `json:"startTime"`
	EndTime        string    `json:"endTime"`
}

// Slot returns the time range of the joined slot.
func (d BookingDetail) Slot() TimeSlot {
	return TimeSlot{ID: d.TimeSlotID, FieldID: d.FieldID, StartTime: d.StartTime, EndTime: d.EndTime}
}

// BookingFilter narrows admin booking listings.  Zero values mean "any".
type BookingFilter struct {
	FieldID  uint64
	Status   BookingStatus
	DateFrom *time.Time
	DateTo   *time.Time
	Phone    string
	Limit    int
	Offset   int
}
