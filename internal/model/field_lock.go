package model

import "time"

// FieldLock is a per-date administrative override that blocks one slot of
// a field on one date, independent of bookings.  Stored in the
// field_management table, unique per (field, slot, date).
type FieldLock struct {
	ID         uint64    `json:"id"`
	FieldID    uint64    `json:"fieldId"`
	TimeSlotID uint64    `json:"timeSlotId"`
	Date       time.Time `json:"-"`
	Day        string    `json:"date"` // Date as YYYY-MM-DD
	IsLocked   bool      `json:"isLocked"`
	LockReason string    `json:"lockReason,omitempty"`
	LockedBy   *uint64   `json:"lockedBy,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// BulkLockResult reports the outcome of lock-all and unlock-all.
type BulkLockResult struct {
	FieldID uint64   `json:"fieldId"`
	Date    string   `json:"date"`
	Count   int      `json:"count"`
	SlotIDs []uint64 `json:"slotIds"`
	Skipped []uint64 `json:"skippedSlotIds,omitempty"`
}
