package model

import "time"

// FieldSize is the number of players per side a field is built for.
type FieldSize uint8

const (
	FieldSize5  FieldSize = 5
	FieldSize7  FieldSize = 7
	FieldSize11 FieldSize = 11
)

// Valid reports whether s is one of the supported pitch sizes.
func (s FieldSize) Valid() bool {
	return s == FieldSize5 || s == FieldSize7 || s == FieldSize11
}

// Field is a bookable pitch.  PricePerHour is used when a time slot carries
// no explicit price.
type Field struct {
	ID           uint64     `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Size         FieldSize  `json:"size"`
	PricePerHour int64      `json:"pricePerHour"`
	ImageURL     string     `json:"imageUrl"`
	IsActive     bool       `json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	TimeSlots    []TimeSlot `json:"timeSlots,omitempty"`
}

// TimeSlot is a fixed daily interval offered by a field.  IsActive=false
// withdraws the slot for every date; per-date locks live in FieldLock.
type TimeSlot struct {
	ID           uint64    `json:"id"`
	FieldID      uint64    `json:"fieldId"`
	StartTime    string    `json:"startTime"` // HH:MM
	EndTime      string    `json:"endTime"`   // HH:MM
	WeekdayPrice int64     `json:"weekdayPrice"`
	WeekendPrice int64     `json:"weekendPrice"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Range returns the slot bounds in minutes after midnight.
func (s TimeSlot) Range() (start, end int, err error) {
	if start, err = ParseClock(s.StartTime); err != nil {
		return 0, 0, err
	}
	if end, err = ParseClock(s.EndTime); err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// Overlaps reports whether two slots share any time.  Touching slots
// (18:00-19:00 and 19:00-20:00) do not overlap.
func (s TimeSlot) Overlaps(o TimeSlot) bool {
	s1, e1, err := s.Range()
	if err != nil {
		return false
	}
	s2, e2, err := o.Range()
	if err != nil {
		return false
	}
	return s1 < e2 && e1 > s2
}
