package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/parkspot/parkspot/internal/domain"
	"github.com/parkspot/parkspot/internal/repository"
	"github.com/stretchr/testify/assert"
)

func testSlot(id string) *domain.Slot {
	return &domain.Slot{
		ID:                id,
		Code:              "A-01",
		ProviderID:        "provider-1",
		VehicleClass:      domain.VehicleClassCar,
		PricePerHourCents: 5000,
		Status:            domain.SlotStatusAvailable,
	}
}

func TestSlotStore_createValidation(t *testing.T) {
	s := NewSlotStore()
	ctx := context.Background()

	err := s.Create(ctx, &domain.Slot{ID: "slot-1", Code: "A-01"})
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	bad := testSlot("slot-1")
	bad.VehicleClass = "boat"
	err = s.Create(ctx, bad)
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	negative := testSlot("slot-1")
	negative.PricePerHourCents = -1
	err = s.Create(ctx, negative)
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	assert.NoError(t, s.Create(ctx, testSlot("slot-1")))
	err = s.Create(ctx, testSlot("slot-1"))
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestSlotStore_transitionCAS(t *testing.T) {
	s := NewSlotStore()
	ctx := context.Background()
	assert.NoError(t, s.Create(ctx, testSlot("slot-1")))

	slot, prior, err := s.Transition(ctx, "slot-1",
		[]domain.SlotStatus{domain.SlotStatusAvailable}, domain.SlotStatusReserved, "booking-1")
	assert.NoError(t, err)
	assert.Equal(t, domain.SlotStatusReserved, slot.Status)
	assert.Equal(t, domain.SlotStatusAvailable, prior)
	assert.Equal(t, "booking-1", slot.ActiveBookingID)

	slot, prior, err = s.Transition(ctx, "slot-1",
		[]domain.SlotStatus{domain.SlotStatusReserved}, domain.SlotStatusOccupied, "booking-1")
	assert.NoError(t, err)
	assert.Equal(t, domain.SlotStatusOccupied, slot.Status)
	assert.Equal(t, domain.SlotStatusReserved, prior)

	_, _, err = s.Transition(ctx, "slot-1",
		[]domain.SlotStatus{domain.SlotStatusAvailable}, domain.SlotStatusReserved, "booking-2")
	assert.ErrorIs(t, err, repository.ErrConflict)

	_, _, err = s.Transition(ctx, "missing",
		[]domain.SlotStatus{domain.SlotStatusAvailable}, domain.SlotStatusReserved, "")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSlotStore_transitionConcurrentOneWinner(t *testing.T) {
	s := NewSlotStore()
	ctx := context.Background()
	assert.NoError(t, s.Create(ctx, testSlot("slot-1")))

	const attempts = 16
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.Transition(ctx, "slot-1",
				[]domain.SlotStatus{domain.SlotStatusAvailable}, domain.SlotStatusReserved, "booking")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	wins := 0
	for err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, repository.ErrConflict)
		}
	}
	assert.Equal(t, 1, wins)
}

func TestSlotStore_returnsCopies(t *testing.T) {
	s := NewSlotStore()
	ctx := context.Background()
	assert.NoError(t, s.Create(ctx, testSlot("slot-1")))

	slot, err := s.GetByID(ctx, "slot-1")
	assert.NoError(t, err)
	slot.Status = domain.SlotStatusOccupied

	fresh, err := s.GetByID(ctx, "slot-1")
	assert.NoError(t, err)
	assert.Equal(t, domain.SlotStatusAvailable, fresh.Status)
}

func TestBookingStore_finishCAS(t *testing.T) {
	slots := NewSlotStore()
	s := NewBookingStore(slots)
	ctx := context.Background()

	booking := &domain.Booking{
		ID:       "booking-1",
		SlotID:   "slot-1",
		DriverID: "driver-1",
		Status:   domain.BookingStatusActive,
	}
	assert.NoError(t, s.Create(ctx, booking))

	end := time.Now().UTC()
	finished, err := s.Finish(ctx, "booking-1",
		[]domain.BookingStatus{domain.BookingStatusActive}, domain.BookingStatusCompleted, end, 10000)
	assert.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCompleted, finished.Status)
	assert.Equal(t, int64(10000), finished.AmountCents)

	_, err = s.Finish(ctx, "booking-1",
		[]domain.BookingStatus{domain.BookingStatusActive}, domain.BookingStatusCancelled, end, 0)
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestBookingStore_listFilters(t *testing.T) {
	slots := NewSlotStore()
	s := NewBookingStore(slots)
	ctx := context.Background()

	slotA := testSlot("slot-a")
	slotB := testSlot("slot-b")
	slotB.Code = "B-01"
	slotB.ProviderID = "provider-2"
	assert.NoError(t, slots.Create(ctx, slotA))
	assert.NoError(t, slots.Create(ctx, slotB))

	assert.NoError(t, s.Create(ctx, &domain.Booking{ID: "b-1", SlotID: "slot-a", DriverID: "driver-1", Status: domain.BookingStatusActive}))
	assert.NoError(t, s.Create(ctx, &domain.Booking{ID: "b-2", SlotID: "slot-b", DriverID: "driver-2", Status: domain.BookingStatusCompleted}))

	byDriver, err := s.List(ctx, repository.BookingFilter{DriverID: "driver-1"})
	assert.NoError(t, err)
	assert.Len(t, byDriver, 1)
	assert.Equal(t, "b-1", byDriver[0].ID)

	byProvider, err := s.List(ctx, repository.BookingFilter{ProviderID: "provider-2"})
	assert.NoError(t, err)
	assert.Len(t, byProvider, 1)
	assert.Equal(t, "b-2", byProvider[0].ID)

	byStatus, err := s.List(ctx, repository.BookingFilter{Status: domain.BookingStatusCompleted})
	assert.NoError(t, err)
	assert.Len(t, byStatus, 1)
}

func TestBookingStore_expirePendingBefore(t *testing.T) {
	slots := NewSlotStore()
	s := NewBookingStore(slots)
	ctx := context.Background()
	deadline := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.NoError(t, s.Create(ctx, &domain.Booking{
		ID: "stale", SlotID: "slot-a", DriverID: "driver-1",
		Status: domain.BookingStatusPending, HoldExpiresAt: deadline.Add(-time.Minute),
	}))
	assert.NoError(t, s.Create(ctx, &domain.Booking{
		ID: "fresh", SlotID: "slot-b", DriverID: "driver-1",
		Status: domain.BookingStatusPending, HoldExpiresAt: deadline.Add(time.Minute),
	}))
	assert.NoError(t, s.Create(ctx, &domain.Booking{
		ID: "running", SlotID: "slot-c", DriverID: "driver-1",
		Status: domain.BookingStatusActive,
	}))

	expired, err := s.ExpirePendingBefore(ctx, deadline)
	assert.NoError(t, err)
	assert.Len(t, expired, 1)
	assert.Equal(t, "stale", expired[0].ID)
	assert.Equal(t, domain.BookingStatusExpired, expired[0].Status)

	fresh, err := s.GetByID(ctx, "fresh")
	assert.NoError(t, err)
	assert.Equal(t, domain.BookingStatusPending, fresh.Status)
}

func TestDriverStore_debit(t *testing.T) {
	s := NewDriverStore()
	ctx := context.Background()
	assert.NoError(t, s.Create(ctx, &domain.Driver{ID: "driver-1", Name: "Asha", WalletBalanceCents: 10000}))

	_, err := s.Debit(ctx, "driver-1", 15000)
	assert.ErrorIs(t, err, repository.ErrInsufficientBalance)

	driver, err := s.Debit(ctx, "driver-1", 4000)
	assert.NoError(t, err)
	assert.Equal(t, int64(6000), driver.WalletBalanceCents)
}

func TestDriverStore_debitUpTo(t *testing.T) {
	s := NewDriverStore()
	ctx := context.Background()
	assert.NoError(t, s.Create(ctx, &domain.Driver{ID: "driver-1", Name: "Asha", WalletBalanceCents: 10000}))

	debited, err := s.DebitUpTo(ctx, "driver-1", 15000)
	assert.NoError(t, err)
	assert.Equal(t, int64(10000), debited)

	driver, err := s.GetByID(ctx, "driver-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(0), driver.WalletBalanceCents)

	debited, err = s.DebitUpTo(ctx, "driver-1", 100)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), debited)
}

func TestAuditLog_appendAndFilter(t *testing.T) {
	s := NewAuditLog()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	assert.NoError(t, s.Append(ctx, &domain.SlotEvent{ID: "e-1", SlotID: "slot-1", From: domain.SlotStatusAvailable, To: domain.SlotStatusReserved, OccurredAt: base}))
	assert.NoError(t, s.Append(ctx, &domain.SlotEvent{ID: "e-2", SlotID: "slot-1", From: domain.SlotStatusReserved, To: domain.SlotStatusOccupied, OccurredAt: base.Add(time.Hour)}))
	assert.NoError(t, s.Append(ctx, &domain.SlotEvent{ID: "e-3", SlotID: "slot-2", From: domain.SlotStatusAvailable, To: domain.SlotStatusOutOfService, OccurredAt: base.Add(2 * time.Hour)}))

	all, err := s.List(ctx, "", time.Time{})
	assert.NoError(t, err)
	assert.Len(t, all, 3)

	bySlot, err := s.List(ctx, "slot-1", time.Time{})
	assert.NoError(t, err)
	assert.Len(t, bySlot, 2)

	since, err := s.List(ctx, "", base.Add(30*time.Minute))
	assert.NoError(t, err)
	assert.Len(t, since, 2)
}

func TestSeedDemo(t *testing.T) {
	s := New()
	ctx := context.Background()
	assert.NoError(t, SeedDemo(ctx, s))

	slots, err := s.Slots().List(ctx, "provider-demo")
	assert.NoError(t, err)
	assert.Len(t, slots, 16)
	assert.Equal(t, "A-01", slots[0].Code)

	drivers, err := s.Drivers().List(ctx)
	assert.NoError(t, err)
	assert.Len(t, drivers, 2)
}
