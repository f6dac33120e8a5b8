package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nyaruka/phonenumbers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/football-field-booking/internal/metrics"
	"github.com/iliyamo/football-field-booking/internal/model"
	"github.com/iliyamo/football-field-booking/internal/queue"
	"github.com/iliyamo/football-field-booking/internal/repository"
)

const maxNotesLen = 500

// CreateBookingInput is the request to book one slot on one date.
// TotalPrice overrides the computed price and is honoured for admins only.
type CreateBookingInput struct {
	FieldID       uint64
	TimeSlotID    uint64
	Date          string
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	Notes         string
	TotalPrice    *int64
}

// BookingService owns booking creation and the status lifecycle.
type BookingService struct {
	tx          TxManager
	avail       *Availability
	bookings    BookingStore
	opponents   OpponentStore
	events      EventPublisher
	loc         *time.Location
	phoneRegion string
	now         func() time.Time
	log         zerolog.Logger
}

func NewBookingService(tx TxManager, avail *Availability, bookings BookingStore, opponents OpponentStore,
	events EventPublisher, loc *time.Location, phoneRegion string) *BookingService {
	if loc == nil {
		loc = time.UTC
	}
	return &BookingService{
		tx:          tx,
		avail:       avail,
		bookings:    bookings,
		opponents:   opponents,
		events:      events,
		loc:         loc,
		phoneRegion: phoneRegion,
		now:         time.Now,
		log:         log.With().Str("component", "booking").Logger(),
	}
}

func (s *BookingService) today() time.Time { return model.DateOf(s.now(), s.loc) }

// NormalizePhone parses a phone number in the given default region and
// returns it in E.164 form.
func NormalizePhone(raw, region string) (string, error) {
	num, err := phonenumbers.Parse(strings.TrimSpace(raw), region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", invalidf("invalid phone number %q", raw)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

func (s *BookingService) validate(in CreateBookingInput) (*model.Booking, error) {
	if in.FieldID == 0 {
		return nil, invalidf("fieldId is required")
	}
	if in.TimeSlotID == 0 {
		return nil, invalidf("timeSlotId is required")
	}
	date, err := model.ParseDate(in.Date)
	if err != nil {
		return nil, invalidf("%s", err.Error())
	}
	if date.Before(s.today()) {
		return nil, invalidf("booking date %s is in the past", in.Date)
	}
	name := strings.TrimSpace(in.CustomerName)
	if name == "" {
		return nil, invalidf("customerName is required")
	}
	phone, err := NormalizePhone(in.CustomerPhone, s.phoneRegion)
	if err != nil {
		return nil, err
	}
	email := strings.TrimSpace(in.CustomerEmail)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, invalidf("invalid email %q", email)
		}
	}
	if utf8.RuneCountInString(in.Notes) > maxNotesLen {
		return nil, invalidf("notes must be at most %d characters", maxNotesLen)
	}
	if in.TotalPrice != nil && *in.TotalPrice < 0 {
		return nil, invalidf("totalPrice must not be negative")
	}
	return &model.Booking{
		FieldID:       in.FieldID,
		TimeSlotID:    in.TimeSlotID,
		BookingDate:   date,
		Status:        model.BookingPending,
		PaymentStatus: model.PaymentUnpaid,
		CustomerName:  name,
		CustomerPhone: phone,
		CustomerEmail: email,
		Notes:         strings.TrimSpace(in.Notes),
	}, nil
}

// Create books a slot.  The availability re-check and the insert run in
// one transaction; the unique index on active bookings catches any race
// that slips past the re-check.
func (s *BookingService) Create(ctx context.Context, actor Actor, in CreateBookingInput) (*model.BookingDetail, error) {
	b, err := s.validate(in)
	if err != nil {
		return nil, err
	}
	if actor.UserID != 0 {
		uid := actor.UserID
		b.UserID = &uid
	}

	err = s.tx.Do(ctx, func(ctx context.Context) error {
		st, err := s.avail.Check(ctx, b.FieldID, b.TimeSlotID, b.BookingDate)
		if err != nil {
			return err
		}
		if err := st.Err(); err != nil {
			return err
		}
		b.TotalPrice = st.Price
		if in.TotalPrice != nil && actor.IsAdmin() {
			b.TotalPrice = *in.TotalPrice
		}
		if err := s.bookings.Create(ctx, b); err != nil {
			if errors.Is(err, repository.ErrDuplicate) || errors.Is(err, repository.ErrConflict) {
				return ErrSlotBooked
			}
			return fmt.Errorf("insert booking: %w", err)
		}
		return nil
	})
	if errors.Is(err, repository.ErrConflict) {
		err = ErrSlotBooked
	}
	if err != nil {
		metrics.IncBookingOutcome(outcomeOf(err))
		return nil, err
	}
	metrics.IncBookingOutcome("created")

	detail, err := s.bookings.GetDetail(ctx, b.ID)
	if err != nil {
		return nil, fmt.Errorf("reload booking: %w", err)
	}
	s.publish(ctx, queue.BookingCreated, detail)
	return detail, nil
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrSlotBooked):
		return "booked"
	case errors.Is(err, ErrSlotLocked):
		return "locked"
	case errors.Is(err, ErrSlotUnavailable):
		return "unavailable"
	case errors.Is(err, ErrFieldNotFound), errors.Is(err, ErrTimeSlotNotFound):
		return "not_found"
	}
	return "error"
}

// Get returns one booking.  Non-admins only see their own.
func (s *BookingService) Get(ctx context.Context, actor Actor, id uint64) (*model.BookingDetail, error) {
	d, err := s.bookings.GetDetail(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if !actor.IsAdmin() && !actor.Owns(d.UserID) {
		return nil, ErrForbidden
	}
	return d, nil
}

func (s *BookingService) List(ctx context.Context, f model.BookingFilter) ([]model.BookingDetail, int, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, invalidf("unknown status %q", f.Status)
	}
	return s.bookings.List(ctx, f)
}

func (s *BookingService) ListForUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error) {
	return s.bookings.ListByUser(ctx, userID)
}

// PublicBooking is the anonymised view of a booking shown on the public
// schedule of a field.
type PublicBooking struct {
	ID           uint64              `json:"id"`
	TimeSlotID   uint64              `json:"timeSlotId"`
	StartTime    string              `json:"startTime"`
	EndTime      string              `json:"endTime"`
	Status       model.BookingStatus `json:"status"`
	CustomerName string              `json:"customerName"`
}

// ListForFieldDate returns the occupied slots of a field on a date with
// customer details reduced to a masked name.
func (s *BookingService) ListForFieldDate(ctx context.Context, fieldID uint64, date time.Time) ([]PublicBooking, error) {
	items, err := s.bookings.ListForFieldDate(ctx, fieldID, date)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	out := make([]PublicBooking, 0, len(items))
	for _, d := range items {
		out = append(out, PublicBooking{
			ID:           d.ID,
			TimeSlotID:   d.TimeSlotID,
			StartTime:    d.StartTime,
			EndTime:      d.EndTime,
			Status:       d.Status,
			CustomerName: maskName(d.CustomerName),
		})
	}
	return out, nil
}

// maskName keeps the first rune of each word.
func maskName(name string) string {
	parts := strings.Fields(name)
	for i, p := range parts {
		r, _ := utf8.DecodeRuneInString(p)
		parts[i] = string(r) + "."
	}
	return strings.Join(parts, " ")
}

// UpdateStatus moves a booking along the lifecycle.  Admin only.
func (s *BookingService) UpdateStatus(ctx context.Context, actor Actor, id uint64, to model.BookingStatus, reason string) (*model.BookingDetail, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if !to.Valid() {
		return nil, invalidf("unknown status %q", to)
	}
	return s.transition(ctx, id, func(d *model.BookingDetail) error {
		if !model.CanTransition(d.Status, to) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, d.Status, to)
		}
		return nil
	}, to, reason)
}

// Cancel cancels a pending or confirmed booking.  Customers may only
// cancel their own bookings.
func (s *BookingService) Cancel(ctx context.Context, actor Actor, id uint64, reason string) (*model.BookingDetail, error) {
	return s.transition(ctx, id, func(d *model.BookingDetail) error {
		if !actor.IsAdmin() && !actor.Owns(d.UserID) {
			return ErrForbidden
		}
		if !model.CanTransition(d.Status, model.BookingCancelled) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, d.Status, model.BookingCancelled)
		}
		return nil
	}, model.BookingCancelled, strings.TrimSpace(reason))
}

func (s *BookingService) transition(ctx context.Context, id uint64, guard func(*model.BookingDetail) error,
	to model.BookingStatus, reason string) (*model.BookingDetail, error) {
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		d, err := s.bookings.GetDetail(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrBookingNotFound
		}
		if err != nil {
			return fmt.Errorf("get booking: %w", err)
		}
		if err := guard(d); err != nil {
			return err
		}
		if to != model.BookingCancelled {
			reason = d.CancelReason
		}
		if err := s.bookings.UpdateStatus(ctx, id, to, reason); err != nil {
			return fmt.Errorf("update booking status: %w", err)
		}
		if to == model.BookingCancelled {
			if err := s.opponents.CancelByBooking(ctx, id); err != nil {
				return fmt.Errorf("cancel opponent post: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.IncBookingTransition(string(to))

	detail, err := s.bookings.GetDetail(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload booking: %w", err)
	}
	switch to {
	case model.BookingConfirmed:
		s.publish(ctx, queue.BookingConfirmed, detail)
	case model.BookingCancelled:
		s.publish(ctx, queue.BookingCancelled, detail)
	}
	return detail, nil
}

// UpdatePayment records the payment state of a booking.  Admin only.
func (s *BookingService) UpdatePayment(ctx context.Context, actor Actor, id uint64, status model.PaymentStatus) (*model.BookingDetail, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	switch status {
	case model.PaymentUnpaid, model.PaymentPaid, model.PaymentRefunded:
	default:
		return nil, invalidf("unknown payment status %q", status)
	}
	err := s.bookings.UpdatePaymentStatus(ctx, id, status)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update payment status: %w", err)
	}
	return s.bookings.GetDetail(ctx, id)
}

// CompletePast marks confirmed bookings whose slot has ended as completed.
func (s *BookingService) CompletePast(ctx context.Context) (int64, error) {
	now := s.now().In(s.loc)
	n, err := s.bookings.CompletePast(ctx, model.DateOf(now, s.loc), now.Format("15:04"))
	if err != nil {
		return 0, fmt.Errorf("complete past bookings: %w", err)
	}
	if n > 0 {
		metrics.IncBookingTransition(string(model.BookingCompleted))
	}
	return n, nil
}

func (s *BookingService) publish(ctx context.Context, kind string, d *model.BookingDetail) {
	if s.events == nil {
		return
	}
	ev := queue.BookingEvent{
		Type:          kind,
		BookingID:     d.ID,
		FieldID:       d.FieldID,
		FieldName:     d.FieldName,
		TimeSlotID:    d.TimeSlotID,
		BookingDate:   d.BookingDateStr,
		StartTime:     d.StartTime,
		EndTime:       d.EndTime,
		TotalPrice:    d.TotalPrice,
		Status:        string(d.Status),
		CustomerName:  d.CustomerName,
		CustomerEmail: d.CustomerEmail,
		CustomerPhone: d.CustomerPhone,
		CancelReason:  d.CancelReason,
		OccurredAt:    s.now().UTC(),
	}
	if d.UserID != nil {
		ev.UserID = *d.UserID
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("event", kind).Uint64("booking_id", d.ID).Msg("publish booking event failed")
	}
}
