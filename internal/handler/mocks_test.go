package handler

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/football-field-booking/internal/model"
	"github.com/iliyamo/football-field-booking/internal/service"
)

type mockBookings struct{ mock.Mock }

func (m *mockBookings) Create(ctx context.Context, a service.Actor, in service.CreateBookingInput) (*model.BookingDetail, error) {
	args := m.Called(ctx, a, in)
	d, _ := args.Get(0).(*model.BookingDetail)
	return d, args.Error(1)
}

func (m *mockBookings) Get(ctx context.Context, a service.Actor, id uint64) (*model.BookingDetail, error) {
	args := m.Called(ctx, a, id)
	d, _ := args.Get(0).(*model.BookingDetail)
	return d, args.Error(1)
}

func (m *mockBookings) List(ctx context.Context, f model.BookingFilter) ([]model.BookingDetail, int, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]model.BookingDetail)
	return items, args.Int(1), args.Error(2)
}

func (m *mockBookings) ListForUser(ctx context.Context, uid uint64) ([]model.BookingDetail, error) {
	args := m.Called(ctx, uid)
	items, _ := args.Get(0).([]model.BookingDetail)
	return items, args.Error(1)
}

func (m *mockBookings) ListForFieldDate(ctx context.Context, fieldID uint64, date time.Time) ([]service.PublicBooking, error) {
	args := m.Called(ctx, fieldID, date)
	items, _ := args.Get(0).([]service.PublicBooking)
	return items, args.Error(1)
}

func (m *mockBookings) UpdateStatus(ctx context.Context, a service.Actor, id uint64, to model.BookingStatus, reason string) (*model.BookingDetail, error) {
	args := m.Called(ctx, a, id, to, reason)
	d, _ := args.Get(0).(*model.BookingDetail)
	return d, args.Error(1)
}

func (m *mockBookings) Cancel(ctx context.Context, a service.Actor, id uint64, reason string) (*model.BookingDetail, error) {
	args := m.Called(ctx, a, id, reason)
	d, _ := args.Get(0).(*model.BookingDetail)
	return d, args.Error(1)
}

func (m *mockBookings) UpdatePayment(ctx context.Context, a service.Actor, id uint64, st model.PaymentStatus) (*model.BookingDetail, error) {
	args := m.Called(ctx, a, id, st)
	d, _ := args.Get(0).(*model.BookingDetail)
	return d, args.Error(1)
}

type mockAvail struct{ mock.Mock }

func (m *mockAvail) Check(ctx context.Context, fieldID, slotID uint64, date time.Time) (service.SlotStatus, error) {
	args := m.Called(ctx, fieldID, slotID, date)
	return args.Get(0).(service.SlotStatus), args.Error(1)
}

func (m *mockAvail) Board(ctx context.Context, fieldID uint64, date time.Time) ([]service.SlotStatus, error) {
	args := m.Called(ctx, fieldID, date)
	items, _ := args.Get(0).([]service.SlotStatus)
	return items, args.Error(1)
}

type mockLocks struct{ mock.Mock }

func (m *mockLocks) Lock(ctx context.Context, fieldID, slotID uint64, date time.Time, reason string, adminID uint64) (*model.FieldLock, error) {
	args := m.Called(ctx, fieldID, slotID, date, reason, adminID)
	l, _ := args.Get(0).(*model.FieldLock)
	return l, args.Error(1)
}

func (m *mockLocks) Unlock(ctx context.Context, fieldID, slotID uint64, date time.Time) error {
	return m.Called(ctx, fieldID, slotID, date).Error(0)
}

func (m *mockLocks) LockAll(ctx context.Context, fieldID uint64, date time.Time, reason string, adminID uint64) (*model.BulkLockResult, error) {
	args := m.Called(ctx, fieldID, date, reason, adminID)
	r, _ := args.Get(0).(*model.BulkLockResult)
	return r, args.Error(1)
}

func (m *mockLocks) UnlockAll(ctx context.Context, fieldID uint64, date time.Time) (*model.BulkLockResult, error) {
	args := m.Called(ctx, fieldID, date)
	r, _ := args.Get(0).(*model.BulkLockResult)
	return r, args.Error(1)
}

func (m *mockLocks) List(ctx context.Context, fieldID uint64, date time.Time) ([]model.FieldLock, error) {
	args := m.Called(ctx, fieldID, date)
	items, _ := args.Get(0).([]model.FieldLock)
	return items, args.Error(1)
}

type mockUsers struct{ mock.Mock }

func (m *mockUsers) Create(ctx context.Context, u *model.User) error {
	err := m.Called(ctx, u).Error(0)
	if err == nil {
		u.ID = 9
		u.IsActive = true
	}
	return err
}

func (m *mockUsers) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockUsers) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

type mockTokens struct{ mock.Mock }

func (m *mockTokens) StoreRefresh(ctx context.Context, uid uint64, hash string, exp time.Time) error {
	return m.Called(ctx, uid, hash, exp).Error(0)
}

func (m *mockTokens) GetByHash(ctx context.Context, hash string) (*model.RefreshToken, error) {
	args := m.Called(ctx, hash)
	t, _ := args.Get(0).(*model.RefreshToken)
	return t, args.Error(1)
}

func (m *mockTokens) RevokeByHash(ctx context.Context, hash string) error {
	return m.Called(ctx, hash).Error(0)
}

func (m *mockTokens) RevokeAllForUser(ctx context.Context, uid uint64) error {
	return m.Called(ctx, uid).Error(0)
}

type mockDashboard struct{ mock.Mock }

func (m *mockDashboard) Range(from, to string) (time.Time, time.Time, error) {
	args := m.Called(from, to)
	return args.Get(0).(time.Time), args.Get(1).(time.Time), args.Error(2)
}

func (m *mockDashboard) Stats(ctx context.Context, from, to time.Time) (*model.DashboardStats, error) {
	args := m.Called(ctx, from, to)
	s, _ := args.Get(0).(*model.DashboardStats)
	return s, args.Error(1)
}

func (m *mockDashboard) Chart(ctx context.Context, p model.ChartPeriod, from, to time.Time) (*model.DashboardChart, error) {
	args := m.Called(ctx, p, from, to)
	c, _ := args.Get(0).(*model.DashboardChart)
	return c, args.Error(1)
}

func (m *mockDashboard) Export(ctx context.Context, w io.Writer, from, to time.Time) error {
	args := m.Called(ctx, w, from, to)
	_, _ = io.WriteString(w, "xlsx-bytes")
	return args.Error(0)
}
