// Package service holds the booking business rules.  Services depend on the
// small store interfaces below; the MySQL repositories satisfy them and the
// tests use in-memory fakes.
package service

import (
	"context"
	"time"

	"github.com/iliyamo/football-field-booking/internal/model"
	"github.com/iliyamo/football-field-booking/internal/queue"
)

// TxManager runs fn inside one database transaction.  Stores called with
// the context handed to fn take part in it.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type FieldStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Field, error)
	List(ctx context.Context, onlyActive bool) ([]model.Field, error)
	Create(ctx context.Context, f *model.Field) error
	Update(ctx context.Context, f *model.Field) error
	Delete(ctx context.Context, id uint64) error
	CountActiveBookingsFrom(ctx context.Context, fieldID uint64, from time.Time) (int, error)
}

type TimeSlotStore interface {
	GetByID(ctx context.Context, id uint64) (*model.TimeSlot, error)
	ListByField(ctx context.Context, fieldID uint64, onlyActive bool) ([]model.TimeSlot, error)
	Create(ctx context.Context, s *model.TimeSlot) error
	Update(ctx context.Context, s *model.TimeSlot) error
	Delete(ctx context.Context, id uint64) error
	CountActiveBookingsFrom(ctx context.Context, slotID uint64, from time.Time) (int, error)
}

type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetDetail(ctx context.Context, id uint64) (*model.BookingDetail, error)
	FindOverlapping(ctx context.Context, fieldID uint64, date time.Time, start, end string) ([]uint64, error)
	ListForFieldDate(ctx context.Context, fieldID uint64, date time.Time) ([]model.BookingDetail, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error)
	List(ctx context.Context, f model.BookingFilter) ([]model.BookingDetail, int, error)
	UpdateStatus(ctx context.Context, id uint64, status model.BookingStatus, reason string) error
	UpdatePaymentStatus(ctx context.Context, id uint64, status model.PaymentStatus) error
	CompletePast(ctx context.Context, today time.Time, clock string) (int64, error)
}

type LockStore interface {
	Get(ctx context.Context, fieldID, slotID uint64, date time.Time) (*model.FieldLock, error)
	Upsert(ctx context.Context, l *model.FieldLock) error
	Unlock(ctx context.Context, fieldID, slotID uint64, date time.Time) (int64, error)
	UnlockAll(ctx context.Context, fieldID uint64, date time.Time) ([]uint64, error)
	ListByFieldDate(ctx context.Context, fieldID uint64, date time.Time) ([]model.FieldLock, error)
}

type OpponentStore interface {
	Create(ctx context.Context, o *model.Opponent) error
	GetByID(ctx context.Context, id uint64) (*model.Opponent, error)
	GetByBookingID(ctx context.Context, bookingID uint64) (*model.Opponent, error)
	ListOpen(ctx context.Context, f model.OpponentFilter, now time.Time) ([]model.Opponent, error)
	Update(ctx context.Context, o *model.Opponent) error
	CancelByBooking(ctx context.Context, bookingID uint64) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type FeedbackStore interface {
	Create(ctx context.Context, fb *model.Feedback) error
	GetByID(ctx context.Context, id uint64) (*model.Feedback, error)
	List(ctx context.Context, status model.FeedbackStatus, limit, offset int) ([]model.Feedback, int, error)
	UpdateStatus(ctx context.Context, id uint64, status model.FeedbackStatus) error
	Delete(ctx context.Context, id uint64) error
}

type DashboardStore interface {
	CountByStatus(ctx context.Context, from, to time.Time) (map[string]int, error)
	Revenue(ctx context.Context, from, to time.Time) (int64, error)
	CountOnDate(ctx context.Context, day time.Time) (int, error)
	CountActiveFields(ctx context.Context) (int, error)
	CountOpenOpponents(ctx context.Context, now time.Time) (int, error)
	RevenueSeries(ctx context.Context, period model.ChartPeriod, from, to time.Time) ([]model.ChartPoint, error)
	RevenueByFieldSize(ctx context.Context, from, to time.Time) ([]model.ChartPoint, error)
	RevenueByWeekday(ctx context.Context, from, to time.Time) ([]model.ChartPoint, error)
}

// EventPublisher delivers booking lifecycle events.  Publishing is best
// effort; failures are logged by the caller and never fail the request.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

// Actor identifies the caller of an operation.  A zero UserID is an
// anonymous guest.
type Actor struct {
	UserID uint64
	Role   string
}

func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }

// Owns reports whether the actor is the user referenced by userID.
func (a Actor) Owns(userID *uint64) bool {
	return a.UserID != 0 && userID != nil && *userID == a.UserID
}
