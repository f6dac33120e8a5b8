package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/football-field-booking/internal/model"
	"github.com/iliyamo/football-field-booking/internal/repository"
)

// Reasons a slot is unavailable.
const (
	ReasonInactive = "inactive"
	ReasonLocked   = "locked"
	ReasonBooked   = "booked"
)

// SlotStatus describes one slot of a field on one date.
type SlotStatus struct {
	TimeSlotID uint64  `json:"timeSlotId"`
	StartTime  string  `json:"startTime"`
	EndTime    string  `json:"endTime"`
	Price      int64   `json:"price"`
	Available  bool    `json:"available"`
	IsBooked   bool    `json:"isBooked"`
	IsLocked   bool    `json:"isLocked"`
	LockReason string  `json:"lockReason,omitempty"`
	BookingID  *uint64 `json:"bookingId,omitempty"`
	Reason     string  `json:"reason,omitempty"`
}

// Err converts an unavailable status into the matching sentinel error.
func (s SlotStatus) Err() error {
	switch {
	case s.Available:
		return nil
	case s.IsLocked:
		return ErrSlotLocked
	case s.IsBooked:
		return ErrSlotBooked
	default:
		return ErrSlotUnavailable
	}
}

// Availability answers whether a (field, slot, date) can be booked.  When
// called inside a transaction the lock record and overlapping bookings are
// read with FOR UPDATE, so the answer holds until commit.
type Availability struct {
	fields   FieldStore
	slots    TimeSlotStore
	bookings BookingStore
	locks    LockStore
}

func NewAvailability(fields FieldStore, slots TimeSlotStore, bookings BookingStore, locks LockStore) *Availability {
	return &Availability{fields: fields, slots: slots, bookings: bookings, locks: locks}
}

// loadSlot fetches a field and one of its slots.
func (a *Availability) loadSlot(ctx context.Context, fieldID, slotID uint64) (*model.Field, *model.TimeSlot, error) {
	field, err := a.fields.GetByID(ctx, fieldID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, ErrFieldNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get field: %w", err)
	}
	slot, err := a.slots.GetByID(ctx, slotID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && slot.FieldID != fieldID) {
		return nil, nil, ErrTimeSlotNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get time slot: %w", err)
	}
	return field, slot, nil
}

// lockOf returns the active lock for a slot and date, or nil.
func (a *Availability) lockOf(ctx context.Context, fieldID, slotID uint64, date time.Time) (*model.FieldLock, error) {
	l, err := a.locks.Get(ctx, fieldID, slotID, date)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get lock: %w", err)
	}
	if !l.IsLocked {
		return nil, nil
	}
	return l, nil
}

// Check evaluates a single slot.  A lock takes precedence over a booking.
// Unavailability is reported in the status, not as an error.
func (a *Availability) Check(ctx context.Context, fieldID, slotID uint64, date time.Time) (SlotStatus, error) {
	field, slot, err := a.loadSlot(ctx, fieldID, slotID)
	if err != nil {
		return SlotStatus{}, err
	}
	return a.check(ctx, field, slot, date)
}

func (a *Availability) check(ctx context.Context, field *model.Field, slot *model.TimeSlot, date time.Time) (SlotStatus, error) {
	st := SlotStatus{
		TimeSlotID: slot.ID,
		StartTime:  slot.StartTime,
		EndTime:    slot.EndTime,
		Price:      PriceFor(slot, field, date),
	}
	if !field.IsActive || !slot.IsActive {
		st.Reason = ReasonInactive
		return st, nil
	}
	lock, err := a.lockOf(ctx, field.ID, slot.ID, date)
	if err != nil {
		return SlotStatus{}, err
	}
	if lock != nil {
		st.IsLocked = true
		st.LockReason = lock.LockReason
		st.Reason = ReasonLocked
		return st, nil
	}
	ids, err := a.bookings.FindOverlapping(ctx, field.ID, date, slot.StartTime, slot.EndTime)
	if err != nil {
		return SlotStatus{}, fmt.Errorf("find overlapping bookings: %w", err)
	}
	if len(ids) > 0 {
		st.IsBooked = true
		st.BookingID = &ids[0]
		st.Reason = ReasonBooked
		return st, nil
	}
	st.Available = true
	return st, nil
}

// Board returns every active slot of a field annotated for the date.
func (a *Availability) Board(ctx context.Context, fieldID uint64, date time.Time) ([]SlotStatus, error) {
	field, err := a.fields.GetByID(ctx, fieldID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrFieldNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get field: %w", err)
	}
	slots, err := a.slots.ListByField(ctx, fieldID, true)
	if err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	bookings, err := a.bookings.ListForFieldDate(ctx, fieldID, date)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	locks, err := a.locks.ListByFieldDate(ctx, fieldID, date)
	if err != nil {
		return nil, fmt.Errorf("list locks: %w", err)
	}
	locked := make(map[uint64]model.FieldLock, len(locks))
	for _, l := range locks {
		locked[l.TimeSlotID] = l
	}

	out := make([]SlotStatus, 0, len(slots))
	for i := range slots {
		slot := &slots[i]
		st := SlotStatus{
			TimeSlotID: slot.ID,
			StartTime:  slot.StartTime,
			EndTime:    slot.EndTime,
			Price:      PriceFor(slot, field, date),
		}
		if l, ok := locked[slot.ID]; ok {
			st.IsLocked = true
			st.LockReason = l.LockReason
		}
		for _, b := range bookings {
			if b.TimeSlotID == slot.ID || slot.Overlaps(b.Slot()) {
				id := b.ID
				st.IsBooked = true
				st.BookingID = &id
				if b.TimeSlotID == slot.ID {
					break
				}
			}
		}
		switch {
		case !field.IsActive:
			st.Reason = ReasonInactive
		case st.IsLocked:
			st.Reason = ReasonLocked
		case st.IsBooked:
			st.Reason = ReasonBooked
		default:
			st.Available = true
		}
		out = append(out, st)
	}
	return out, nil
}
