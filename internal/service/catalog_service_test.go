package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/football-field-booking/internal/model"
)

type mockInvalidator struct{ mock.Mock }

func (m *mockInvalidator) Invalidate(ctx context.Context) error { return m.Called(ctx).Error(0) }

func ptr[T any](v T) *T { return &v }

func TestCatalogService_FieldCRUD(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	inv := &mockInvalidator{}
	inv.On("Invalidate", mock.Anything).Return(nil)
	fx.catalog.cache = inv

	_, err := fx.catalog.CreateField(ctx, FieldInput{Name: ptr("Field C"), Size: ptr(model.FieldSize(6))})
	assert.ErrorIs(t, err, ErrValidation)

	f, err := fx.catalog.CreateField(ctx, FieldInput{Name: ptr("Field C"), Size: ptr(model.FieldSize11), PricePerHour: ptr(int64(500000))})
	require.NoError(t, err)
	assert.True(t, f.IsActive)

	f, err = fx.catalog.UpdateField(ctx, f.ID, FieldInput{IsActive: ptr(false)})
	require.NoError(t, err)
	assert.False(t, f.IsActive)
	assert.Equal(t, "Field C", f.Name)

	_, err = fx.catalog.GetField(ctx, f.ID, false)
	assert.ErrorIs(t, err, ErrFieldNotFound, "inactive field hidden from public")

	require.NoError(t, fx.catalog.DeleteField(ctx, f.ID))
	assert.ErrorIs(t, fx.catalog.DeleteField(ctx, f.ID), ErrFieldNotFound)

	inv.AssertNumberOfCalls(t, "Invalidate", 3)
}

func TestCatalogService_DeleteGuardedByBookings(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	b, err := fx.bookings.Create(ctx, customer, bookingInput("2024-06-15"))
	require.NoError(t, err)

	assert.ErrorIs(t, fx.catalog.DeleteField(ctx, 1), ErrFieldHasBookings)
	assert.ErrorIs(t, fx.catalog.DeleteTimeSlot(ctx, 5), ErrSlotHasBookings)

	_, err = fx.bookings.Cancel(ctx, customer, b.ID, "")
	require.NoError(t, err)
	assert.NoError(t, fx.catalog.DeleteTimeSlot(ctx, 5))
}

func TestCatalogService_TimeSlots(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	_, err := fx.catalog.CreateTimeSlot(ctx, 1, TimeSlotInput{StartTime: ptr("19:00"), EndTime: ptr("18:00")})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = fx.catalog.CreateTimeSlot(ctx, 1, TimeSlotInput{StartTime: ptr("18:00"), EndTime: ptr("19:00")})
	assert.ErrorIs(t, err, ErrDuplicateSlot)

	_, err = fx.catalog.CreateTimeSlot(ctx, 9, TimeSlotInput{StartTime: ptr("18:00"), EndTime: ptr("19:00")})
	assert.ErrorIs(t, err, ErrFieldNotFound)

	s, err := fx.catalog.CreateTimeSlot(ctx, 1, TimeSlotInput{StartTime: ptr("19:00:00"), EndTime: ptr("20:30"),
		WeekdayPrice: ptr(int64(250000)), WeekendPrice: ptr(int64(350000))})
	require.NoError(t, err)
	assert.Equal(t, "19:00", s.StartTime)
	assert.True(t, s.IsActive)

	s, err = fx.catalog.UpdateTimeSlot(ctx, s.ID, TimeSlotInput{WeekendPrice: ptr(int64(-1))})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Nil(t, s)

	slots, err := fx.catalog.ListTimeSlots(ctx, 1, false)
	require.NoError(t, err)
	assert.Len(t, slots, 2)

	f, err := fx.catalog.GetField(ctx, 1, false)
	require.NoError(t, err)
	assert.Len(t, f.TimeSlots, 2)
}

func TestCatalogService_UpdateSlotGuardedByBookings(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	fx.db.addSlot(model.TimeSlot{ID: 6, FieldID: 1, StartTime: "19:00", EndTime: "20:00",
		WeekdayPrice: 200000, WeekendPrice: 300000, IsActive: true})

	_, err := fx.bookings.Create(ctx, customer, bookingInput("2024-06-15"))
	require.NoError(t, err)
	in := bookingInput("2024-06-15")
	in.TimeSlotID = 6
	late, err := fx.bookings.Create(ctx, customer, in)
	require.NoError(t, err)

	_, err = fx.catalog.UpdateTimeSlot(ctx, 6, TimeSlotInput{StartTime: ptr("18:30"), EndTime: ptr("19:30")})
	assert.ErrorIs(t, err, ErrSlotHasBookings, "moving a booked slot would overlap slot 5")
	_, err = fx.catalog.UpdateTimeSlot(ctx, 6, TimeSlotInput{IsActive: ptr(false)})
	assert.ErrorIs(t, err, ErrSlotHasBookings)

	s, err := fx.catalog.UpdateTimeSlot(ctx, 6, TimeSlotInput{WeekendPrice: ptr(int64(320000))})
	require.NoError(t, err, "price edits stay allowed")
	assert.Equal(t, int64(320000), s.WeekendPrice)
	assert.Equal(t, "19:00", s.StartTime)

	ids, err := memBookings{fx.db}.FindOverlapping(ctx, 1, mustDate("2024-06-15"), "18:00", "19:00")
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	_, err = fx.bookings.Cancel(ctx, customer, late.ID, "")
	require.NoError(t, err)
	s, err = fx.catalog.UpdateTimeSlot(ctx, 6, TimeSlotInput{StartTime: ptr("20:00"), EndTime: ptr("21:00")})
	require.NoError(t, err)
	assert.Equal(t, "20:00", s.StartTime)
}

func TestCatalogService_InvalidateErrorDoesNotFailWrite(t *testing.T) {
	fx := newFixture()
	inv := &mockInvalidator{}
	inv.On("Invalidate", mock.Anything).Return(assert.AnError)
	fx.catalog.cache = inv

	f, err := fx.catalog.UpdateField(context.Background(), 1, FieldInput{PricePerHour: ptr(int64(260000))})
	require.NoError(t, err)
	assert.Equal(t, int64(260000), f.PricePerHour)
	inv.AssertExpectations(t)
}
