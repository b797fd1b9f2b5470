package store

import (
	"context"
	"fmt"

	"github.com/parkspot/parkspot/internal/domain"
)

// SeedDemo loads a small fixed data set for local development: one approved
// online provider with sixteen car slots in zone A, and two funded drivers.
func SeedDemo(ctx context.Context, s *Store) error {
	provider := &domain.Provider{
		ID:           "provider-demo",
		Name:         "City Center Hub",
		OwnerContact: "ops@citycenterhub.example",
		Verification: domain.VerificationApproved,
		Online:       true,
	}
	if err := s.Providers().Create(ctx, provider); err != nil {
		return err
	}

	for i := 1; i <= 16; i++ {
		slot := &domain.Slot{
			ID:                fmt.Sprintf("slot-a-%02d", i),
			Code:              fmt.Sprintf("A-%02d", i),
			ProviderID:        provider.ID,
			VehicleClass:      domain.VehicleClassCar,
			HasEVCharger:      i%4 == 0,
			PricePerHourCents: 5000,
			Status:            domain.SlotStatusAvailable,
		}
		if err := s.Slots().Create(ctx, slot); err != nil {
			return err
		}
	}

	drivers := []*domain.Driver{
		{ID: "driver-demo-1", Name: "Demo Driver One", Email: "one@example.com", VehiclePlate: "KA-01-1234", WalletBalanceCents: 50000},
		{ID: "driver-demo-2", Name: "Demo Driver Two", Email: "two@example.com", VehiclePlate: "KA-05-9876", WalletBalanceCents: 20000},
	}
	for _, d := range drivers {
		if err := s.Drivers().Create(ctx, d); err != nil {
			return err
		}
	}
	return nil
}
