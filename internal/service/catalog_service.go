package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/football-field-booking/internal/model"
	"github.com/iliyamo/football-field-booking/internal/repository"
)

// CacheInvalidator drops cached public catalogue responses after a write.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// FieldInput carries field attributes.  Nil pointers are left unchanged
// on update; on create they take their zero value, except IsActive which
// defaults to true.
type FieldInput struct {
	Name         *string
	Description  *string
	Size         *model.FieldSize
	PricePerHour *int64
	ImageURL     *string
	IsActive     *bool
}

// TimeSlotInput carries slot attributes with the same pointer semantics
// as FieldInput.
type TimeSlotInput struct {
	StartTime    *string
	EndTime      *string
	WeekdayPrice *int64
	WeekendPrice *int64
	IsActive     *bool
}

// CatalogService manages fields and their time slots.
type CatalogService struct {
	fields FieldStore
	slots  TimeSlotStore
	cache  CacheInvalidator
	loc    *time.Location
	now    func() time.Time
	log    zerolog.Logger
}

func NewCatalogService(fields FieldStore, slots TimeSlotStore, cache CacheInvalidator, loc *time.Location) *CatalogService {
	if loc == nil {
		loc = time.UTC
	}
	return &CatalogService{fields: fields, slots: slots, cache: cache, loc: loc, now: time.Now,
		log: log.With().Str("component", "catalog").Logger()}
}

// invalidate bumps the catalogue cache generation.  A failure leaves stale
// responses until the cache TTL expires, so it is logged but not returned.
func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("catalogue cache invalidation failed")
	}
}

func (s *CatalogService) ListFields(ctx context.Context, includeInactive bool) ([]model.Field, error) {
	return s.fields.List(ctx, !includeInactive)
}

// GetField returns a field with its slots.  Inactive fields and slots are
// only included when includeInactive is set.
func (s *CatalogService) GetField(ctx context.Context, id uint64, includeInactive bool) (*model.Field, error) {
	f, err := s.field(ctx, id)
	if err != nil {
		return nil, err
	}
	if !f.IsActive && !includeInactive {
		return nil, ErrFieldNotFound
	}
	slots, err := s.slots.ListByField(ctx, id, !includeInactive)
	if err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	f.TimeSlots = slots
	return f, nil
}

func (s *CatalogService) field(ctx context.Context, id uint64) (*model.Field, error) {
	f, err := s.fields.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrFieldNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get field: %w", err)
	}
	return f, nil
}

func applyFieldInput(f *model.Field, in FieldInput) error {
	if in.Name != nil {
		f.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		f.Description = strings.TrimSpace(*in.Description)
	}
	if in.Size != nil {
		f.Size = *in.Size
	}
	if in.PricePerHour != nil {
		f.PricePerHour = *in.PricePerHour
	}
	if in.ImageURL != nil {
		f.ImageURL = strings.TrimSpace(*in.ImageURL)
	}
	if in.IsActive != nil {
		f.IsActive = *in.IsActive
	}
	switch {
	case f.Name == "":
		return invalidf("name is required")
	case !f.Size.Valid():
		return invalidf("size must be 5, 7 or 11")
	case f.PricePerHour < 0:
		return invalidf("pricePerHour must not be negative")
	}
	return nil
}

func (s *CatalogService) CreateField(ctx context.Context, in FieldInput) (*model.Field, error) {
	f := &model.Field{IsActive: true}
	if err := applyFieldInput(f, in); err != nil {
		return nil, err
	}
	if err := s.fields.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("create field: %w", err)
	}
	s.invalidate(ctx)
	return f, nil
}

func (s *CatalogService) UpdateField(ctx context.Context, id uint64, in FieldInput) (*model.Field, error) {
	f, err := s.field(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyFieldInput(f, in); err != nil {
		return nil, err
	}
	if err := s.fields.Update(ctx, f); err != nil {
		return nil, fmt.Errorf("update field: %w", err)
	}
	s.invalidate(ctx)
	return f, nil
}

// DeleteField removes a field unless it has pending or confirmed bookings
// from today on.
func (s *CatalogService) DeleteField(ctx context.Context, id uint64) error {
	if _, err := s.field(ctx, id); err != nil {
		return err
	}
	n, err := s.fields.CountActiveBookingsFrom(ctx, id, model.DateOf(s.now(), s.loc))
	if err != nil {
		return fmt.Errorf("count bookings: %w", err)
	}
	if n > 0 {
		return ErrFieldHasBookings
	}
	if err := s.fields.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrFieldNotFound
		}
		return fmt.Errorf("delete field: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) ListTimeSlots(ctx context.Context, fieldID uint64, includeInactive bool) ([]model.TimeSlot, error) {
	if _, err := s.field(ctx, fieldID); err != nil {
		return nil, err
	}
	return s.slots.ListByField(ctx, fieldID, !includeInactive)
}

func applySlotInput(t *model.TimeSlot, in TimeSlotInput) error {
	if in.StartTime != nil {
		t.StartTime = *in.StartTime
	}
	if in.EndTime != nil {
		t.EndTime = *in.EndTime
	}
	if in.WeekdayPrice != nil {
		t.WeekdayPrice = *in.WeekdayPrice
	}
	if in.WeekendPrice != nil {
		t.WeekendPrice = *in.WeekendPrice
	}
	if in.IsActive != nil {
		t.IsActive = *in.IsActive
	}
	start, err := model.ParseClock(t.StartTime)
	if err != nil {
		return invalidf("startTime: %s", err.Error())
	}
	end, err := model.ParseClock(t.EndTime)
	if err != nil {
		return invalidf("endTime: %s", err.Error())
	}
	if start >= end {
		return invalidf("startTime must be before endTime")
	}
	if t.WeekdayPrice < 0 || t.WeekendPrice < 0 {
		return invalidf("prices must not be negative")
	}
	t.StartTime, t.EndTime = model.FormatClock(start), model.FormatClock(end)
	return nil
}

func (s *CatalogService) CreateTimeSlot(ctx context.Context, fieldID uint64, in TimeSlotInput) (*model.TimeSlot, error) {
	if _, err := s.field(ctx, fieldID); err != nil {
		return nil, err
	}
	t := &model.TimeSlot{FieldID: fieldID, IsActive: true}
	if err := applySlotInput(t, in); err != nil {
		return nil, err
	}
	if err := s.slots.Create(ctx, t); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateSlot
		}
		return nil, fmt.Errorf("create time slot: %w", err)
	}
	s.invalidate(ctx)
	return t, nil
}

func (s *CatalogService) slot(ctx context.Context, id uint64) (*model.TimeSlot, error) {
	t, err := s.slots.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTimeSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get time slot: %w", err)
	}
	return t, nil
}

// UpdateTimeSlot edits a slot.  The time range and the active flag are
// frozen while upcoming bookings reference the slot; prices stay editable.
func (s *CatalogService) UpdateTimeSlot(ctx context.Context, id uint64, in TimeSlotInput) (*model.TimeSlot, error) {
	t, err := s.slot(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *t
	if err := applySlotInput(t, in); err != nil {
		return nil, err
	}
	if t.StartTime != before.StartTime || t.EndTime != before.EndTime || t.IsActive != before.IsActive {
		n, err := s.slots.CountActiveBookingsFrom(ctx, id, model.DateOf(s.now(), s.loc))
		if err != nil {
			return nil, fmt.Errorf("count bookings: %w", err)
		}
		if n > 0 {
			return nil, ErrSlotHasBookings
		}
	}
	if err := s.slots.Update(ctx, t); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateSlot
		}
		return nil, fmt.Errorf("update time slot: %w", err)
	}
	s.invalidate(ctx)
	return t, nil
}

// DeleteTimeSlot removes a slot unless upcoming bookings reference it.
func (s *CatalogService) DeleteTimeSlot(ctx context.Context, id uint64) error {
	if _, err := s.slot(ctx, id); err != nil {
		return err
	}
	n, err := s.slots.CountActiveBookingsFrom(ctx, id, model.DateOf(s.now(), s.loc))
	if err != nil {
		return fmt.Errorf("count bookings: %w", err)
	}
	if n > 0 {
		return ErrSlotHasBookings
	}
	if err := s.slots.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTimeSlotNotFound
		}
		return fmt.Errorf("delete time slot: %w", err)
	}
	s.invalidate(ctx)
	return nil
}
