package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/football-field-booking/internal/model"
)

func TestExpiryOf(t *testing.T) {
	d := &model.BookingDetail{Booking: model.Booking{BookingDate: mustDate("2024-06-15")}, EndTime: "19:00"}

	got, err := ExpiryOf(d, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 15, 19, 0, 0, 0, time.UTC), got)

	hcm := time.FixedZone("ICT", 7*3600)
	got, err = ExpiryOf(d, hcm)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC), got)
}

func TestOpponentService_Lifecycle(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	b, err := fx.bookings.Create(ctx, customer, bookingInput("2024-06-15"))
	require.NoError(t, err)

	_, err = fx.opponents.Create(ctx, other, CreateOpponentInput{BookingID: b.ID, TeamName: "FC B", ContactPhone: "0912345678"})
	assert.ErrorIs(t, err, ErrForbidden)

	post, err := fx.opponents.Create(ctx, customer, CreateOpponentInput{
		BookingID: b.ID, TeamName: "FC A", ContactPhone: "0912345678", SkillLevel: model.SkillAdvanced,
	})
	require.NoError(t, err)
	assert.Equal(t, model.OpponentSearching, post.Status)
	assert.Equal(t, time.Date(2024, 6, 15, 19, 0, 0, 0, time.UTC), post.ExpiresAt)

	_, err = fx.opponents.Create(ctx, customer, CreateOpponentInput{BookingID: b.ID, TeamName: "FC A", ContactPhone: "0912345678"})
	assert.ErrorIs(t, err, ErrOpponentExists)

	open, err := fx.opponents.ListOpen(ctx, model.OpponentFilter{FieldID: 1})
	require.NoError(t, err)
	require.Len(t, open, 1)

	_, err = fx.opponents.Match(ctx, customer, post.ID, "FC A", "0912345678")
	assert.ErrorIs(t, err, ErrOwnOpponent)

	matched, err := fx.opponents.Match(ctx, other, post.ID, "FC B", "0987654321")
	require.NoError(t, err)
	assert.Equal(t, model.OpponentMatched, matched.Status)
	assert.Equal(t, "FC B", matched.MatchedTeam)

	_, err = fx.opponents.Match(ctx, other, post.ID, "FC C", "0987654321")
	assert.ErrorIs(t, err, ErrOpponentClosed)

	assert.ErrorIs(t, fx.opponents.Cancel(ctx, customer, post.ID), ErrOpponentClosed)
	assert.ErrorIs(t, fx.opponents.Cancel(ctx, customer, 999), ErrOpponentNotFound)
}

func TestOpponentService_RejectsEndedOrCancelledBookings(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	today, err := fx.bookings.Create(ctx, customer, bookingInput("2024-06-10"))
	require.NoError(t, err)

	fx.opponents.now = func() time.Time { return fixedNow.Add(12 * time.Hour) }
	_, err = fx.opponents.Create(ctx, customer, CreateOpponentInput{BookingID: today.ID, TeamName: "FC A", ContactPhone: "0912345678"})
	assert.ErrorIs(t, err, ErrBookingNotPostable)

	fx.opponents.now = func() time.Time { return fixedNow }
	_, err = fx.bookings.Cancel(ctx, customer, today.ID, "")
	require.NoError(t, err)
	_, err = fx.opponents.Create(ctx, customer, CreateOpponentInput{BookingID: today.ID, TeamName: "FC A", ContactPhone: "0912345678"})
	assert.ErrorIs(t, err, ErrBookingNotPostable)

	_, err = fx.opponents.Create(ctx, customer, CreateOpponentInput{BookingID: 999, TeamName: "FC A", ContactPhone: "0912345678"})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestOpponentService_DeleteExpired(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	b, err := fx.bookings.Create(ctx, customer, bookingInput("2024-06-10"))
	require.NoError(t, err)
	post, err := fx.opponents.Create(ctx, customer, CreateOpponentInput{BookingID: b.ID, TeamName: "FC A", ContactPhone: "0912345678"})
	require.NoError(t, err)

	n, err := fx.opponents.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	fx.opponents.now = func() time.Time { return post.ExpiresAt }
	open, err := fx.opponents.ListOpen(ctx, model.OpponentFilter{})
	require.NoError(t, err)
	assert.Empty(t, open, "a post is closed at its expiry instant")

	n, err = fx.opponents.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestOpponentService_MatchedPostCancelledWithBooking(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	b, err := fx.bookings.Create(ctx, customer, bookingInput("2024-06-15"))
	require.NoError(t, err)
	post, err := fx.opponents.Create(ctx, customer, CreateOpponentInput{BookingID: b.ID, TeamName: "FC A", ContactPhone: "0912345678"})
	require.NoError(t, err)
	_, err = fx.opponents.Match(ctx, other, post.ID, "FC B", "0987654321")
	require.NoError(t, err)

	_, err = fx.bookings.Cancel(ctx, customer, b.ID, "rain")
	require.NoError(t, err)

	got, err := memOpponents{fx.db}.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OpponentCancelled, got.Status)
}
