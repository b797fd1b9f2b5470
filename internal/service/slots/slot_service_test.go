package slots

import (
	"context"
	"testing"
	"time"

	"github.com/parkspot/parkspot/internal/domain"
	"github.com/parkspot/parkspot/internal/store"
	"github.com/stretchr/testify/assert"
)

func newService(t *testing.T) (*SlotService, *store.Store) {
	t.Helper()
	mem := store.New()
	return NewSlotService(mem.Slots(), mem.Audit()), mem
}

func TestCreateSlot(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	slot, err := service.CreateSlot(ctx, CreateSlotInput{
		Code:              "A-01",
		ProviderID:        "provider-1",
		VehicleClass:      domain.VehicleClassCar,
		PricePerHourCents: 5000,
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, slot.ID)
	assert.Equal(t, domain.SlotStatusAvailable, slot.Status)

	_, err = service.CreateSlot(ctx, CreateSlotInput{ProviderID: "provider-1", VehicleClass: domain.VehicleClassCar})
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	_, err = service.CreateSlot(ctx, CreateSlotInput{Code: "A-02", ProviderID: "provider-1", VehicleClass: "boat"})
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestReserve_onlyFromAvailable(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	slot, err := service.CreateSlot(ctx, CreateSlotInput{
		Code: "A-01", ProviderID: "provider-1", VehicleClass: domain.VehicleClassCar, PricePerHourCents: 5000,
	})
	assert.NoError(t, err)

	reserved, err := service.Reserve(ctx, slot.ID, "booking-1")
	assert.NoError(t, err)
	assert.Equal(t, domain.SlotStatusReserved, reserved.Status)
	assert.Equal(t, "booking-1", reserved.ActiveBookingID)

	_, err = service.Reserve(ctx, slot.ID, "booking-2")
	assert.True(t, domain.IsKind(err, domain.KindSlotUnavailable))

	_, err = service.Reserve(ctx, "missing", "booking-3")
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestOccupy_keepsBookingID(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	slot, err := service.CreateSlot(ctx, CreateSlotInput{
		Code: "A-01", ProviderID: "provider-1", VehicleClass: domain.VehicleClassCar, PricePerHourCents: 5000,
	})
	assert.NoError(t, err)

	_, err = service.Occupy(ctx, slot.ID)
	assert.True(t, domain.IsKind(err, domain.KindInvalidTransition))

	_, err = service.Reserve(ctx, slot.ID, "booking-1")
	assert.NoError(t, err)

	occupied, err := service.Occupy(ctx, slot.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.SlotStatusOccupied, occupied.Status)
	assert.Equal(t, "booking-1", occupied.ActiveBookingID)
}

func TestRelease_clearsBookingID(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	slot, err := service.CreateSlot(ctx, CreateSlotInput{
		Code: "A-01", ProviderID: "provider-1", VehicleClass: domain.VehicleClassCar, PricePerHourCents: 5000,
	})
	assert.NoError(t, err)

	_, err = service.Release(ctx, slot.ID)
	assert.True(t, domain.IsKind(err, domain.KindInvalidTransition))

	_, err = service.Reserve(ctx, slot.ID, "booking-1")
	assert.NoError(t, err)

	released, err := service.Release(ctx, slot.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.SlotStatusAvailable, released.Status)
	assert.Empty(t, released.ActiveBookingID)
}

func TestOutOfServiceAndRestore(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	slot, err := service.CreateSlot(ctx, CreateSlotInput{
		Code: "A-01", ProviderID: "provider-1", VehicleClass: domain.VehicleClassCar, PricePerHourCents: 5000,
	})
	assert.NoError(t, err)

	down, err := service.SetOutOfService(ctx, slot.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.SlotStatusOutOfService, down.Status)

	// An out-of-service slot cannot be reserved.
	_, err = service.Reserve(ctx, slot.ID, "booking-1")
	assert.True(t, domain.IsKind(err, domain.KindSlotUnavailable))

	restored, err := service.Restore(ctx, slot.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.SlotStatusAvailable, restored.Status)

	// Reserved or occupied slots cannot be taken down mid-booking.
	_, err = service.Reserve(ctx, slot.ID, "booking-1")
	assert.NoError(t, err)
	_, err = service.SetOutOfService(ctx, slot.ID)
	assert.True(t, domain.IsKind(err, domain.KindInvalidTransition))
}

func TestTransitions_appendAuditEvents(t *testing.T) {
	service, mem := newService(t)
	ctx := context.Background()

	slot, err := service.CreateSlot(ctx, CreateSlotInput{
		Code: "A-01", ProviderID: "provider-1", VehicleClass: domain.VehicleClassCar, PricePerHourCents: 5000,
	})
	assert.NoError(t, err)

	_, err = service.Reserve(ctx, slot.ID, "booking-1")
	assert.NoError(t, err)
	_, err = service.Occupy(ctx, slot.ID)
	assert.NoError(t, err)
	_, err = service.Release(ctx, slot.ID)
	assert.NoError(t, err)

	events, err := mem.Audit().List(ctx, slot.ID, time.Time{})
	assert.NoError(t, err)
	assert.Len(t, events, 3)
	assert.Equal(t, domain.SlotStatusAvailable, events[0].From)
	assert.Equal(t, domain.SlotStatusReserved, events[0].To)
	assert.Equal(t, domain.SlotStatusOccupied, events[1].To)
	assert.Equal(t, domain.SlotStatusAvailable, events[2].To)
}

func TestUpdatePrice(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	slot, err := service.CreateSlot(ctx, CreateSlotInput{
		Code: "A-01", ProviderID: "provider-1", VehicleClass: domain.VehicleClassCar, PricePerHourCents: 5000,
	})
	assert.NoError(t, err)

	updated, err := service.UpdatePrice(ctx, slot.ID, 7500)
	assert.NoError(t, err)
	assert.Equal(t, int64(7500), updated.PricePerHourCents)

	_, err = service.UpdatePrice(ctx, slot.ID, -1)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}
