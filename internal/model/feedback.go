package model

import "time"

type FeedbackStatus string

const (
	FeedbackNew      FeedbackStatus = "new"
	FeedbackRead     FeedbackStatus = "read"
	FeedbackResolved FeedbackStatus = "resolved"
)

func (s FeedbackStatus) Valid() bool {
	return s == FeedbackNew || s == FeedbackRead || s == FeedbackResolved
}

// Feedback is a customer message to the administrators.
type Feedback struct {
	ID        uint64         `json:"id"`
	UserID    *uint64        `json:"userId,omitempty"`
	Name      string         `json:"name"`
	Email     string         `json:"email,omitempty"`
	Rating    uint8          `json:"rating"`
	Content   string         `json:"content"`
	Status    FeedbackStatus `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
}
