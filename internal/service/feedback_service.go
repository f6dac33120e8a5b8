package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/iliyamo/football-field-booking/internal/model"
	"github.com/iliyamo/football-field-booking/internal/repository"
)

const maxFeedbackLen = 2000

type CreateFeedbackInput struct {
	Name    string
	Email   string
	Rating  int
	Content string
}

type FeedbackService struct {
	store FeedbackStore
}

func NewFeedbackService(store FeedbackStore) *FeedbackService {
	return &FeedbackService{store: store}
}

func (s *FeedbackService) Create(ctx context.Context, actor Actor, in CreateFeedbackInput) (*model.Feedback, error) {
	name := strings.TrimSpace(in.Name)
	content := strings.TrimSpace(in.Content)
	email := strings.TrimSpace(in.Email)
	switch {
	case name == "":
		return nil, invalidf("name is required")
	case content == "":
		return nil, invalidf("content is required")
	case utf8.RuneCountInString(content) > maxFeedbackLen:
		return nil, invalidf("content must be at most %d characters", maxFeedbackLen)
	case in.Rating < 1 || in.Rating > 5:
		return nil, invalidf("rating must be between 1 and 5")
	}
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, invalidf("invalid email %q", email)
		}
	}
	fb := &model.Feedback{
		Name:    name,
		Email:   email,
		Rating:  uint8(in.Rating),
		Content: content,
		Status:  model.FeedbackNew,
	}
	if actor.UserID != 0 {
		uid := actor.UserID
		fb.UserID = &uid
	}
	if err := s.store.Create(ctx, fb); err != nil {
		return nil, fmt.Errorf("create feedback: %w", err)
	}
	return fb, nil
}

func (s *FeedbackService) List(ctx context.Context, status model.FeedbackStatus, limit, offset int) ([]model.Feedback, int, error) {
	if status != "" && !status.Valid() {
		return nil, 0, invalidf("unknown status %q", status)
	}
	return s.store.List(ctx, status, limit, offset)
}

func (s *FeedbackService) Get(ctx context.Context, id uint64) (*model.Feedback, error) {
	fb, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrFeedbackNotFound
	}
	return fb, err
}

func (s *FeedbackService) UpdateStatus(ctx context.Context, id uint64, status model.FeedbackStatus) (*model.Feedback, error) {
	if !status.Valid() {
		return nil, invalidf("unknown status %q", status)
	}
	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFeedbackNotFound
		}
		return nil, fmt.Errorf("update feedback: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *FeedbackService) Delete(ctx context.Context, id uint64) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrFeedbackNotFound
	}
	return err
}
