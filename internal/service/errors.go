package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the services.  Handlers map them onto HTTP
// status codes with errors.Is.
var (
	ErrFieldNotFound    = errors.New("service: field not found")
	ErrTimeSlotNotFound = errors.New("service: time slot not found")
	ErrBookingNotFound  = errors.New("service: booking not found")
	ErrOpponentNotFound = errors.New("service: opponent post not found")
	ErrFeedbackNotFound = errors.New("service: feedback not found")

	ErrSlotBooked        = errors.New("service: time slot already booked for this date")
	ErrSlotLocked        = errors.New("service: time slot is locked for this date")
	ErrSlotUnavailable   = errors.New("service: time slot is not available")
	ErrInvalidTransition = errors.New("service: invalid booking status transition")
	ErrFieldHasBookings  = errors.New("service: field has upcoming bookings")
	ErrSlotHasBookings   = errors.New("service: time slot has upcoming bookings")
	ErrDuplicateSlot     = errors.New("service: time slot already exists for this field")

	ErrOpponentExists     = errors.New("service: booking already has an opponent post")
	ErrOpponentClosed     = errors.New("service: opponent post is no longer open")
	ErrOwnOpponent        = errors.New("service: cannot match your own opponent post")
	ErrBookingNotPostable = errors.New("service: booking cannot have an opponent post")

	ErrForbidden  = errors.New("service: forbidden")
	ErrValidation = errors.New("service: validation failed")
)

// ValidationError carries the user facing reason of a rejected input.  It
// matches ErrValidation under errors.Is.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalidf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
