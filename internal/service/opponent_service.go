package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/football-field-booking/internal/model"
	"github.com/iliyamo/football-field-booking/internal/repository"
)

// CreateOpponentInput publishes a booking as looking for an opponent.
type CreateOpponentInput struct {
	BookingID    uint64
	TeamName     string
	ContactPhone string
	SkillLevel   model.SkillLevel
	Message      string
}

// OpponentService manages opponent posts.  A post expires when its
// booked slot ends.
type OpponentService struct {
	tx          TxManager
	bookings    BookingStore
	opponents   OpponentStore
	loc         *time.Location
	phoneRegion string
	now         func() time.Time
	log         zerolog.Logger
}

func NewOpponentService(tx TxManager, bookings BookingStore, opponents OpponentStore, loc *time.Location, phoneRegion string) *OpponentService {
	if loc == nil {
		loc = time.UTC
	}
	return &OpponentService{
		tx:          tx,
		bookings:    bookings,
		opponents:   opponents,
		loc:         loc,
		phoneRegion: phoneRegion,
		now:         time.Now,
		log:         log.With().Str("component", "opponent").Logger(),
	}
}

// ExpiryOf returns the instant a post for the booking stops being open:
// the booking date at the slot end time in the business time zone.
func ExpiryOf(d *model.BookingDetail, loc *time.Location) (time.Time, error) {
	return model.At(d.BookingDate, d.EndTime, loc)
}

func (s *OpponentService) Create(ctx context.Context, actor Actor, in CreateOpponentInput) (*model.Opponent, error) {
	team := strings.TrimSpace(in.TeamName)
	if in.BookingID == 0 {
		return nil, invalidf("bookingId is required")
	}
	if team == "" {
		return nil, invalidf("teamName is required")
	}
	if in.SkillLevel == "" {
		in.SkillLevel = model.SkillIntermediate
	}
	if !in.SkillLevel.Valid() {
		return nil, invalidf("unknown skill level %q", in.SkillLevel)
	}
	if utf8.RuneCountInString(in.Message) > maxNotesLen {
		return nil, invalidf("message must be at most %d characters", maxNotesLen)
	}
	phone, err := NormalizePhone(in.ContactPhone, s.phoneRegion)
	if err != nil {
		return nil, err
	}

	var o *model.Opponent
	err = s.tx.Do(ctx, func(ctx context.Context) error {
		b, err := s.bookings.GetDetail(ctx, in.BookingID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrBookingNotFound
		}
		if err != nil {
			return fmt.Errorf("get booking: %w", err)
		}
		if !actor.IsAdmin() && !actor.Owns(b.UserID) {
			return ErrForbidden
		}
		if b.Status != model.BookingPending && b.Status != model.BookingConfirmed {
			return fmt.Errorf("%w: booking is %s", ErrBookingNotPostable, b.Status)
		}
		expires, err := ExpiryOf(b, s.loc)
		if err != nil {
			return fmt.Errorf("expiry of booking %d: %w", b.ID, err)
		}
		if !expires.After(s.now()) {
			return fmt.Errorf("%w: booking has already ended", ErrBookingNotPostable)
		}
		if _, err := s.opponents.GetByBookingID(ctx, b.ID); err == nil {
			return ErrOpponentExists
		} else if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("get opponent post: %w", err)
		}
		o = &model.Opponent{
			BookingID:    b.ID,
			TeamName:     team,
			ContactPhone: phone,
			SkillLevel:   in.SkillLevel,
			Message:      strings.TrimSpace(in.Message),
			Status:       model.OpponentSearching,
			ExpiresAt:    expires,
			FieldID:      b.FieldID,
			FieldName:    b.FieldName,
			BookingDate:  b.BookingDateStr,
			StartTime:    b.StartTime,
			EndTime:      b.EndTime,
		}
		if actor.UserID != 0 {
			uid := actor.UserID
			o.UserID = &uid
		}
		if err := s.opponents.Create(ctx, o); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrOpponentExists
			}
			return fmt.Errorf("create opponent post: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// ListOpen returns searching posts that have not expired.
func (s *OpponentService) ListOpen(ctx context.Context, f model.OpponentFilter) ([]model.Opponent, error) {
	return s.opponents.ListOpen(ctx, f, s.now())
}

// Match accepts an open post on behalf of another team.
func (s *OpponentService) Match(ctx context.Context, actor Actor, id uint64, team, phone string) (*model.Opponent, error) {
	team = strings.TrimSpace(team)
	if team == "" {
		return nil, invalidf("teamName is required")
	}
	normalized, err := NormalizePhone(phone, s.phoneRegion)
	if err != nil {
		return nil, err
	}
	var o *model.Opponent
	err = s.tx.Do(ctx, func(ctx context.Context) error {
		o, err = s.get(ctx, id)
		if err != nil {
			return err
		}
		if !o.Open(s.now()) {
			return ErrOpponentClosed
		}
		if actor.Owns(o.UserID) {
			return ErrOwnOpponent
		}
		o.Status = model.OpponentMatched
		o.MatchedTeam = team
		o.MatchedPhone = normalized
		if actor.UserID != 0 {
			uid := actor.UserID
			o.MatchedBy = &uid
		}
		return s.opponents.Update(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Uint64("opponent_id", id).Uint64("booking_id", o.BookingID).Msg("opponent matched")
	return o, nil
}

// Cancel withdraws a searching post.  Only the owner or an admin may.
func (s *OpponentService) Cancel(ctx context.Context, actor Actor, id uint64) error {
	return s.tx.Do(ctx, func(ctx context.Context) error {
		o, err := s.get(ctx, id)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && !actor.Owns(o.UserID) {
			return ErrForbidden
		}
		if o.Status != model.OpponentSearching {
			return ErrOpponentClosed
		}
		o.Status = model.OpponentCancelled
		return s.opponents.Update(ctx, o)
	})
}

func (s *OpponentService) get(ctx context.Context, id uint64) (*model.Opponent, error) {
	o, err := s.opponents.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOpponentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get opponent post: %w", err)
	}
	return o, nil
}

// DeleteExpired removes every post whose slot has ended.
func (s *OpponentService) DeleteExpired(ctx context.Context) (int64, error) {
	n, err := s.opponents.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("delete expired opponent posts: %w", err)
	}
	return n, nil
}
