// Package handler exposes the services over HTTP.  Handlers depend on the
// narrow interfaces below so they can be tested without a database.
package handler

import (
	"context"
	"io"
	"time"

	"github.com/iliyamo/football-field-booking/internal/model"
	"github.com/iliyamo/football-field-booking/internal/service"
)

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	GetByHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

type CatalogAPI interface {
	ListFields(ctx context.Context, includeInactive bool) ([]model.Field, error)
	GetField(ctx context.Context, id uint64, includeInactive bool) (*model.Field, error)
	CreateField(ctx context.Context, in service.FieldInput) (*model.Field, error)
	UpdateField(ctx context.Context, id uint64, in service.FieldInput) (*model.Field, error)
	DeleteField(ctx context.Context, id uint64) error
	ListTimeSlots(ctx context.Context, fieldID uint64, includeInactive bool) ([]model.TimeSlot, error)
	CreateTimeSlot(ctx context.Context, fieldID uint64, in service.TimeSlotInput) (*model.TimeSlot, error)
	UpdateTimeSlot(ctx context.Context, id uint64, in service.TimeSlotInput) (*model.TimeSlot, error)
	DeleteTimeSlot(ctx context.Context, id uint64) error
}

type AvailabilityAPI interface {
	Check(ctx context.Context, fieldID, slotID uint64, date time.Time) (service.SlotStatus, error)
	Board(ctx context.Context, fieldID uint64, date time.Time) ([]service.SlotStatus, error)
}

type BookingAPI interface {
	Create(ctx context.Context, actor service.Actor, in service.CreateBookingInput) (*model.BookingDetail, error)
	Get(ctx context.Context, actor service.Actor, id uint64) (*model.BookingDetail, error)
	List(ctx context.Context, f model.BookingFilter) ([]model.BookingDetail, int, error)
	ListForUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error)
	ListForFieldDate(ctx context.Context, fieldID uint64, date time.Time) ([]service.PublicBooking, error)
	UpdateStatus(ctx context.Context, actor service.Actor, id uint64, to model.BookingStatus, reason string) (*model.BookingDetail, error)
	Cancel(ctx context.Context, actor service.Actor, id uint64, reason string) (*model.BookingDetail, error)
	UpdatePayment(ctx context.Context, actor service.Actor, id uint64, status model.PaymentStatus) (*model.BookingDetail, error)
}

type LockAPI interface {
	Lock(ctx context.Context, fieldID, slotID uint64, date time.Time, reason string, adminID uint64) (*model.FieldLock, error)
	Unlock(ctx context.Context, fieldID, slotID uint64, date time.Time) error
	LockAll(ctx context.Context, fieldID uint64, date time.Time, reason string, adminID uint64) (*model.BulkLockResult, error)
	UnlockAll(ctx context.Context, fieldID uint64, date time.Time) (*model.BulkLockResult, error)
	List(ctx context.Context, fieldID uint64, date time.Time) ([]model.FieldLock, error)
}

type OpponentAPI interface {
	Create(ctx context.Context, actor service.Actor, in service.CreateOpponentInput) (*model.Opponent, error)
	ListOpen(ctx context.Context, f model.OpponentFilter) ([]model.Opponent, error)
	Match(ctx context.Context, actor service.Actor, id uint64, team, phone string) (*model.Opponent, error)
	Cancel(ctx context.Context, actor service.Actor, id uint64) error
}

type FeedbackAPI interface {
	Create(ctx context.Context, actor service.Actor, in service.CreateFeedbackInput) (*model.Feedback, error)
	List(ctx context.Context, status model.FeedbackStatus, limit, offset int) ([]model.Feedback, int, error)
	Get(ctx context.Context, id uint64) (*model.Feedback, error)
	UpdateStatus(ctx context.Context, id uint64, status model.FeedbackStatus) (*model.Feedback, error)
	Delete(ctx context.Context, id uint64) error
}

type DashboardAPI interface {
	Range(from, to string) (time.Time, time.Time, error)
	Stats(ctx context.Context, from, to time.Time) (*model.DashboardStats, error)
	Chart(ctx context.Context, period model.ChartPeriod, from, to time.Time) (*model.DashboardChart, error)
	Export(ctx context.Context, w io.Writer, from, to time.Time) error
}
