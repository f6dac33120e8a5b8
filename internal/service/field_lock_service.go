package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/football-field-booking/internal/metrics"
	"github.com/iliyamo/football-field-booking/internal/model"
	"github.com/iliyamo/football-field-booking/internal/repository"
)

// FieldLockService lets administrators block slots on specific dates.
// Locks and bookings exclude each other: a booked slot cannot be locked
// and a locked slot cannot be booked.
type FieldLockService struct {
	tx    TxManager
	avail *Availability
	slots TimeSlotStore
	locks LockStore
	loc   *time.Location
	now   func() time.Time
	log   zerolog.Logger
}

func NewFieldLockService(tx TxManager, avail *Availability, slots TimeSlotStore, locks LockStore, loc *time.Location) *FieldLockService {
	if loc == nil {
		loc = time.UTC
	}
	return &FieldLockService{
		tx:    tx,
		avail: avail,
		slots: slots,
		locks: locks,
		loc:   loc,
		now:   time.Now,
		log:   log.With().Str("component", "field_lock").Logger(),
	}
}

func (s *FieldLockService) notPast(date time.Time) error {
	if date.Before(model.DateOf(s.now(), s.loc)) {
		return invalidf("date %s is in the past", date.Format(model.DateLayout))
	}
	return nil
}

// Lock blocks one slot on a date.  Re-locking an already locked slot
// replaces the reason.
func (s *FieldLockService) Lock(ctx context.Context, fieldID, slotID uint64, date time.Time, reason string, adminID uint64) (*model.FieldLock, error) {
	if err := s.notPast(date); err != nil {
		return nil, err
	}
	l := &model.FieldLock{
		FieldID:    fieldID,
		TimeSlotID: slotID,
		Date:       date,
		LockReason: strings.TrimSpace(reason),
	}
	if adminID != 0 {
		l.LockedBy = &adminID
	}
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		field, slot, err := s.avail.loadSlot(ctx, fieldID, slotID)
		if err != nil {
			return err
		}
		booked, err := s.booked(ctx, field, slot, date)
		if err != nil {
			return err
		}
		if booked {
			return ErrSlotBooked
		}
		if err := s.locks.Upsert(ctx, l); err != nil {
			return fmt.Errorf("upsert lock: %w", err)
		}
		return nil
	})
	if errors.Is(err, repository.ErrConflict) {
		err = ErrSlotBooked
	}
	if err != nil {
		return nil, err
	}
	metrics.IncLockOp("lock")
	s.log.Info().Uint64("field_id", fieldID).Uint64("time_slot_id", slotID).Str("date", l.Day).Msg("slot locked")
	return l, nil
}

func (s *FieldLockService) booked(ctx context.Context, field *model.Field, slot *model.TimeSlot, date time.Time) (bool, error) {
	ids, err := s.avail.bookings.FindOverlapping(ctx, field.ID, date, slot.StartTime, slot.EndTime)
	if err != nil {
		return false, fmt.Errorf("find overlapping bookings: %w", err)
	}
	return len(ids) > 0, nil
}

// Unlock clears the lock of one slot on a date.  Unlocking a slot that is
// not locked succeeds.
func (s *FieldLockService) Unlock(ctx context.Context, fieldID, slotID uint64, date time.Time) error {
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		if _, _, err := s.avail.loadSlot(ctx, fieldID, slotID); err != nil {
			return err
		}
		if _, err := s.locks.Unlock(ctx, fieldID, slotID, date); err != nil {
			return fmt.Errorf("unlock: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	metrics.IncLockOp("unlock")
	return nil
}

// LockAll locks every active slot of a field on a date except the booked
// ones.  Count is the number of slots locked after the call, including
// slots that were already locked; Skipped lists the booked slots.
func (s *FieldLockService) LockAll(ctx context.Context, fieldID uint64, date time.Time, reason string, adminID uint64) (*model.BulkLockResult, error) {
	if err := s.notPast(date); err != nil {
		return nil, err
	}
	res := &model.BulkLockResult{FieldID: fieldID, Date: date.Format(model.DateLayout), SlotIDs: []uint64{}}
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		res.SlotIDs, res.Skipped = []uint64{}, nil
		field, err := s.avail.fields.GetByID(ctx, fieldID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrFieldNotFound
		}
		if err != nil {
			return fmt.Errorf("get field: %w", err)
		}
		slots, err := s.slots.ListByField(ctx, fieldID, true)
		if err != nil {
			return fmt.Errorf("list time slots: %w", err)
		}
		for i := range slots {
			slot := &slots[i]
			booked, err := s.booked(ctx, field, slot, date)
			if err != nil {
				return err
			}
			if booked {
				res.Skipped = append(res.Skipped, slot.ID)
				continue
			}
			l := &model.FieldLock{FieldID: fieldID, TimeSlotID: slot.ID, Date: date, LockReason: strings.TrimSpace(reason)}
			if adminID != 0 {
				l.LockedBy = &adminID
			}
			if err := s.locks.Upsert(ctx, l); err != nil {
				return fmt.Errorf("upsert lock: %w", err)
			}
			res.SlotIDs = append(res.SlotIDs, slot.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.Count = len(res.SlotIDs)
	metrics.IncLockOp("lock_all")
	s.log.Info().Uint64("field_id", fieldID).Str("date", res.Date).Int("locked", res.Count).
		Int("skipped", len(res.Skipped)).Msg("field locked for date")
	return res, nil
}

// UnlockAll clears every lock of a field on a date.  Count is the number
// of slots that were locked before the call.
func (s *FieldLockService) UnlockAll(ctx context.Context, fieldID uint64, date time.Time) (*model.BulkLockResult, error) {
	res := &model.BulkLockResult{FieldID: fieldID, Date: date.Format(model.DateLayout), SlotIDs: []uint64{}}
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		if _, err := s.avail.fields.GetByID(ctx, fieldID); errors.Is(err, repository.ErrNotFound) {
			return ErrFieldNotFound
		} else if err != nil {
			return fmt.Errorf("get field: %w", err)
		}
		ids, err := s.locks.UnlockAll(ctx, fieldID, date)
		if err != nil {
			return fmt.Errorf("unlock all: %w", err)
		}
		if ids != nil {
			res.SlotIDs = ids
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.Count = len(res.SlotIDs)
	metrics.IncLockOp("unlock_all")
	return res, nil
}

// List returns the active locks of a field on a date.
func (s *FieldLockService) List(ctx context.Context, fieldID uint64, date time.Time) ([]model.FieldLock, error) {
	if _, err := s.avail.fields.GetByID(ctx, fieldID); errors.Is(err, repository.ErrNotFound) {
		return nil, ErrFieldNotFound
	} else if err != nil {
		return nil, fmt.Errorf("get field: %w", err)
	}
	return s.locks.ListByFieldDate(ctx, fieldID, date)
}
