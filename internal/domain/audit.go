package domain

import "time"

// SlotEvent records one slot status transition. Events are append-only and feed
// the reporting folds for occupancy and duration history.
type SlotEvent struct {
	ID         string
	SlotID     string
	BookingID  string // empty for administrative transitions
	From       SlotStatus
	To         SlotStatus
	OccurredAt time.Time
}
