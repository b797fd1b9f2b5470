package domain

import (
	"math"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusActive    BookingStatus = "active"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusExpired   BookingStatus = "expired"
)

type Booking struct {
	ID             string
	SlotID         string
	DriverID       string
	StartTime      time.Time
	EndTime        time.Time // zero until completed or cancelled
	Status         BookingStatus
	AmountCents    int64
	EstimatedCents int64
	HoldExpiresAt  time.Time // set while pending
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func ValidBookingStatus(s BookingStatus) bool {
	switch s {
	case BookingStatusPending, BookingStatusActive, BookingStatusCompleted, BookingStatusCancelled, BookingStatusExpired:
		return true
	}
	return false
}

// Terminal reports whether the booking can no longer change state.
func (b *Booking) Terminal() bool {
	return b.Status == BookingStatusCompleted || b.Status == BookingStatusCancelled || b.Status == BookingStatusExpired
}

// ChargeCents computes the parking charge in cents for a stay of the given
// duration at priceCents per hour. Fractional hours are charged proportionally
// and the result is rounded to the nearest cent, never negative.
func ChargeCents(priceCents int64, duration time.Duration) int64 {
	if duration <= 0 || priceCents <= 0 {
		return 0
	}
	return int64(math.Round(float64(priceCents) * duration.Hours()))
}
