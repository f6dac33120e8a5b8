package model

import "time"

// OpponentStatus is the state of a "looking for a match" post.
type OpponentStatus string

const (
	OpponentSearching OpponentStatus = "searching"
	OpponentMatched   OpponentStatus = "matched"
	OpponentCancelled OpponentStatus = "cancelled"
)

// SkillLevel is a self-declared team level.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

// Valid reports whether l is a known level.
func (l SkillLevel) Valid() bool {
	return l == SkillBeginner || l == SkillIntermediate || l == SkillAdvanced
}

// Opponent is a post attached 1:1 to a booking.  ExpiresAt is the end of
// the booked slot; expired posts are removed by the sweep job.
type Opponent struct {
	ID           uint64         `json:"id"`
	BookingID    uint64         `json:"bookingId"`
	UserID       *uint64        `json:"userId,omitempty"`
	TeamName     string         `json:"teamName"`
	ContactPhone string         `json:"contactPhone"`
	SkillLevel   SkillLevel     `json:"skillLevel"`
	Message      string         `json:"message,omitempty"`
	Status       OpponentStatus `json:"status"`
	MatchedTeam  string         `json:"matchedTeam,omitempty"`
	MatchedPhone string         `json:"matchedPhone,omitempty"`
	MatchedBy    *uint64        `json:"matchedBy,omitempty"`
	ExpiresAt    time.Time      `json:"expiresAt"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`

	// Joined booking context for listings.
	FieldID     uint64 `json:"fieldId,omitempty"`
	FieldName   string `json:"fieldName,omitempty"`
	BookingDate string `json:"bookingDate,omitempty"`
	StartTime   string `json:"startTime,omitempty"`
	EndTime     string `json:"endTime,omitempty"`
}

// Open reports whether the post can still be matched at now.
func (o Opponent) Open(now time.Time) bool {
	return o.Status == OpponentSearching && now.Before(o.ExpiresAt)
}

// OpponentFilter narrows open post listings.
type OpponentFilter struct {
	FieldID uint64
	Date    *time.Time
	Limit   int
	Offset  int
}
