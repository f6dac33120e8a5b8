package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/football-field-booking/internal/model"
)

func newMock(t *testing.T) (*TxManager, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewTxManager(db), mock, func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	}
}

func TestTranslate(t *testing.T) {
	assert.Nil(t, translate(nil))
	assert.ErrorIs(t, translate(&mysql.MySQLError{Number: 1062}), ErrDuplicate)
	assert.ErrorIs(t, translate(&mysql.MySQLError{Number: 1213}), ErrConflict)
	assert.ErrorIs(t, translate(&mysql.MySQLError{Number: 1205}), ErrConflict)
	other := errors.New("boom")
	assert.Equal(t, other, translate(other))
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	txm, mock, done := newMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectRollback()

	want := errors.New("fail")
	err := txm.Do(context.Background(), func(ctx context.Context) error {
		assert.True(t, inTx(ctx))
		return want
	})
	assert.ErrorIs(t, err, want)
}

func TestTxManager_NestedReusesTransaction(t *testing.T) {
	txm, mock, done := newMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := txm.Do(context.Background(), func(ctx context.Context) error {
		return txm.Do(ctx, func(context.Context) error { return nil })
	})
	assert.NoError(t, err)
}

func TestBookingRepo_CreateDuplicate(t *testing.T) {
	txm, mock, done := newMock(t)
	defer done()
	repo := NewBookingRepo(txm.db)

	mock.ExpectExec("INSERT INTO bookings").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	b := &model.Booking{FieldID: 1, TimeSlotID: 5, BookingDate: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		Status: model.BookingPending, PaymentStatus: model.PaymentUnpaid, CustomerName: "A", CustomerPhone: "+84901234567"}
	assert.ErrorIs(t, repo.Create(context.Background(), b), ErrDuplicate)
}

func TestBookingRepo_FindOverlappingLocksInsideTx(t *testing.T) {
	txm, mock, done := newMock(t)
	defer done()
	repo := NewBookingRepo(txm.db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT b.id FROM bookings b .* FOR UPDATE`).
		WithArgs(uint64(1), "2024-06-15", "19:00", "18:00").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectRollback()

	var ids []uint64
	err := txm.Do(context.Background(), func(ctx context.Context) error {
		var err error
		ids, err = repo.FindOverlapping(ctx, 1, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), "18:00", "19:00")
		if err != nil {
			return err
		}
		return errors.New("stop")
	})
	assert.EqualError(t, err, "stop")
	assert.Equal(t, []uint64{7}, ids)
}

func TestBookingRepo_GetDetailNotFound(t *testing.T) {
	txm, mock, done := newMock(t)
	defer done()
	repo := NewBookingRepo(txm.db)

	mock.ExpectQuery("SELECT .* FROM bookings b JOIN fields f").
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows(bookingDetailColumns))

	_, err := repo.GetDetail(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookingRepo_ListCountsAndPages(t *testing.T) {
	txm, mock, done := newMock(t)
	defer done()
	repo := NewBookingRepo(txm.db)

	created := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM bookings b WHERE b.status = ?")).
		WithArgs("confirmed").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT .* FROM bookings b .* LIMIT 10 OFFSET 0").
		WithArgs("confirmed").
		WillReturnRows(sqlmock.NewRows(bookingDetailColumns).AddRow(
			3, nil, 1, 5, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), 300000,
			"confirmed", "paid", "Minh", "+84901234567", "", "", "", created, created,
			"Field A", 7, "18:00:00", "19:00:00"))

	items, total, err := repo.List(context.Background(), model.BookingFilter{Status: model.BookingConfirmed, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].UserID)
	assert.Equal(t, "2024-06-15", items[0].BookingDateStr)
	assert.Equal(t, "18:00", items[0].StartTime)
	assert.Equal(t, "19:00", items[0].EndTime)
}

func TestFieldLockRepo_GetMissing(t *testing.T) {
	txm, mock, done := newMock(t)
	defer done()
	repo := NewFieldLockRepo(txm.db)

	mock.ExpectQuery("SELECT .* FROM field_management").
		WithArgs(uint64(1), uint64(2), "2024-06-15").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.Get(context.Background(), 1, 2, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFieldLockRepo_Upsert(t *testing.T) {
	txm, mock, done := newMock(t)
	defer done()
	repo := NewFieldLockRepo(txm.db)

	by := uint64(4)
	mock.ExpectExec("INSERT INTO field_management .* ON DUPLICATE KEY UPDATE is_locked = 1").
		WithArgs(uint64(1), uint64(2), "2024-06-15", "maintenance", uint64(4)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	l := &model.FieldLock{FieldID: 1, TimeSlotID: 2, Date: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		LockReason: "maintenance", LockedBy: &by}
	require.NoError(t, repo.Upsert(context.Background(), l))
	assert.True(t, l.IsLocked)
	assert.Equal(t, "2024-06-15", l.Day)
}

func TestFieldLockRepo_UnlockAllNothingLocked(t *testing.T) {
	txm, mock, done := newMock(t)
	defer done()
	repo := NewFieldLockRepo(txm.db)

	mock.ExpectQuery("SELECT .* FROM field_management WHERE field_id = \\? AND date = \\? AND is_locked = 1").
		WithArgs(uint64(1), "2024-06-15").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	ids, err := repo.UnlockAll(context.Background(), 1, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFieldRepo_DeleteMissing(t *testing.T) {
	txm, mock, done := newMock(t)
	defer done()
	repo := NewFieldRepo(txm.db)

	mock.ExpectExec("DELETE FROM fields").WithArgs(uint64(9)).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), 9), ErrNotFound)
}

func TestOpponentRepo_DeleteExpired(t *testing.T) {
	txm, mock, done := newMock(t)
	defer done()
	repo := NewOpponentRepo(txm.db)

	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec("DELETE FROM opponents WHERE expires_at <= ?").
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestUserRepo_CreateDuplicateEmail(t *testing.T) {
	txm, mock, done := newMock(t)
	defer done()
	repo := NewUserRepo(txm.db)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("a@b.com", "hash", "", "", model.RoleCustomer).
		WillReturnError(&mysql.MySQLError{Number: 1062})

	err := repo.Create(context.Background(), &model.User{Email: " A@B.com ", PasswordHash: "hash"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestDashboardRepo_CountByStatus(t *testing.T) {
	txm, mock, done := newMock(t)
	defer done()
	repo := NewDashboardRepo(txm.db)

	mock.ExpectQuery("SELECT b.status, COUNT\\(\\*\\) FROM bookings b .* GROUP BY b.status").
		WithArgs("2024-06-01", "2024-06-30").
		WillReturnRows(sqlmock.NewRows([]string{"status", "n"}).AddRow("pending", 2).AddRow("confirmed", 5))

	got, err := repo.CountByStatus(context.Background(),
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"pending": 2, "confirmed": 5}, got)
}

func TestDashboardRepo_RevenueByWeekdayLabels(t *testing.T) {
	txm, mock, done := newMock(t)
	defer done()
	repo := NewDashboardRepo(txm.db)

	mock.ExpectQuery("DAYOFWEEK").
		WillReturnRows(sqlmock.NewRows([]string{"bucket", "count", "revenue"}).
			AddRow("1", 2, 600000).AddRow("7", 1, 300000))

	pts, err := repo.RevenueByWeekday(context.Background(),
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, pts, 2)
	assert.Equal(t, "Sunday", pts[0].Label)
	assert.Equal(t, "Saturday", pts[1].Label)
	assert.EqualValues(t, 600000, pts[0].Revenue)
}

func TestOpponentRepo_CancelByBookingIncludesMatched(t *testing.T) {
	txm, mock, done := newMock(t)
	defer done()
	repo := NewOpponentRepo(txm.db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE opponents SET status = 'cancelled' WHERE booking_id = ? AND status IN ('searching', 'matched')`)).
		WithArgs(uint64(12)).WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.CancelByBooking(context.Background(), 12))
}
