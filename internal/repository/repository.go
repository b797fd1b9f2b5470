package repository

import (
	"context"
	"errors"
	"time"

	"github.com/parkspot/parkspot/internal/domain"
)

// Storage-level sentinels. Services translate these into typed domain errors;
// nothing above the service layer should see them.
var (
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("status conflict")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

type SlotRepository interface {
	Create(ctx context.Context, slot *domain.Slot) error
	GetByID(ctx context.Context, id string) (*domain.Slot, error)
	// List returns all slots, or a provider's slots when providerID is set.
	List(ctx context.Context, providerID string) ([]domain.Slot, error)
	// Transition compare-and-swaps the slot status: it succeeds only when the
	// current status is one of from, setting status to to and the active
	// booking reference to bookingID (empty clears it). Returns ErrConflict
	// when the slot is in any other state. This is the serialization point
	// that makes concurrent reservations pick exactly one winner. The second
	// return value is the status the swap replaced, captured under the same
	// guard so audit events record the true prior state.
	Transition(ctx context.Context, id string, from []domain.SlotStatus, to domain.SlotStatus, bookingID string) (*domain.Slot, domain.SlotStatus, error)
	UpdatePrice(ctx context.Context, id string, priceCents int64) (*domain.Slot, error)
}

type BookingFilter struct {
	DriverID   string
	ProviderID string
	SlotID     string
	Status     domain.BookingStatus
}

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	List(ctx context.Context, filter BookingFilter) ([]domain.Booking, error)
	// UpdateStatus compare-and-swaps the booking status (ErrConflict when the
	// current status is not in from).
	UpdateStatus(ctx context.Context, id string, from []domain.BookingStatus, to domain.BookingStatus) (*domain.Booking, error)
	// Finish moves the booking to a terminal status, stamping EndTime and the
	// final charge. Same CAS contract as UpdateStatus.
	Finish(ctx context.Context, id string, from []domain.BookingStatus, to domain.BookingStatus, endTime time.Time, amountCents int64) (*domain.Booking, error)
	// ExpirePendingBefore marks pending bookings whose hold lapsed before the
	// deadline as expired and returns them.
	ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
}

type DriverRepository interface {
	Create(ctx context.Context, driver *domain.Driver) error
	GetByID(ctx context.Context, id string) (*domain.Driver, error)
	List(ctx context.Context) ([]domain.Driver, error)
	Credit(ctx context.Context, id string, amountCents int64) (*domain.Driver, error)
	// Debit fails with ErrInsufficientBalance unless the balance covers the
	// full amount.
	Debit(ctx context.Context, id string, amountCents int64) (*domain.Driver, error)
	// DebitUpTo takes as much of amountCents as the balance allows, flooring
	// at zero, and reports how much was actually debited.
	DebitUpTo(ctx context.Context, id string, amountCents int64) (int64, error)
	AppendWalletEntry(ctx context.Context, entry *domain.WalletEntry) error
	ListWalletEntries(ctx context.Context, driverID string) ([]domain.WalletEntry, error)
}

type ProviderRepository interface {
	Create(ctx context.Context, provider *domain.Provider) error
	GetByID(ctx context.Context, id string) (*domain.Provider, error)
	List(ctx context.Context) ([]domain.Provider, error)
	SetVerification(ctx context.Context, id string, status domain.VerificationStatus) (*domain.Provider, error)
	ToggleOnline(ctx context.Context, id string) (*domain.Provider, error)
}

type DisputeFilter struct {
	Status   domain.DisputeStatus
	Priority domain.DisputePriority
}

type DisputeRepository interface {
	Create(ctx context.Context, dispute *domain.Dispute) error
	GetByID(ctx context.Context, id string) (*domain.Dispute, error)
	List(ctx context.Context, filter DisputeFilter) ([]domain.Dispute, error)
	// UpdateStatus compare-and-swaps the dispute status; note is stored only
	// when transitioning to resolved.
	UpdateStatus(ctx context.Context, id string, from []domain.DisputeStatus, to domain.DisputeStatus, note string) (*domain.Dispute, error)
}

type AuditRepository interface {
	Append(ctx context.Context, event *domain.SlotEvent) error
	// List returns events for one slot, or all slots when slotID is empty,
	// oldest first.
	List(ctx context.Context, slotID string, since time.Time) ([]domain.SlotEvent, error)
}
