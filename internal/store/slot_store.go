package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/parkspot/parkspot/internal/domain"
	"github.com/parkspot/parkspot/internal/repository"
)

type SlotStore struct {
	mu    sync.RWMutex
	slots map[string]domain.Slot
}

func NewSlotStore() *SlotStore {
	return &SlotStore{slots: make(map[string]domain.Slot)}
}

func (s *SlotStore) Create(ctx context.Context, slot *domain.Slot) error {
	if slot.ID == "" || slot.Code == "" || slot.ProviderID == "" {
		return domain.Validationf("slot id, code and provider_id are required")
	}
	if !domain.ValidVehicleClass(slot.VehicleClass) {
		return domain.Validationf("unknown vehicle class %q", slot.VehicleClass)
	}
	if !domain.ValidSlotStatus(slot.Status) {
		return domain.Validationf("unknown slot status %q", slot.Status)
	}
	if slot.PricePerHourCents < 0 {
		return domain.Validationf("price per hour must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.slots[slot.ID]; ok {
		return domain.Validationf("slot %s already exists", slot.ID)
	}
	now := time.Now().UTC()
	slot.CreatedAt = now
	slot.UpdatedAt = now
	s.slots[slot.ID] = *slot
	return nil
}

func (s *SlotStore) GetByID(ctx context.Context, id string) (*domain.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot, ok := s.slots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &slot, nil
}

func (s *SlotStore) List(ctx context.Context, providerID string) ([]domain.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slots := make([]domain.Slot, 0, len(s.slots))
	for _, slot := range s.slots {
		if providerID != "" && slot.ProviderID != providerID {
			continue
		}
		slots = append(slots, slot)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Code < slots[j].Code })
	return slots, nil
}

func (s *SlotStore) Transition(ctx context.Context, id string, from []domain.SlotStatus, to domain.SlotStatus, bookingID string) (*domain.Slot, domain.SlotStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[id]
	if !ok {
		return nil, "", repository.ErrNotFound
	}
	matched := false
	for _, f := range from {
		if slot.Status == f {
			matched = true
			break
		}
	}
	if !matched {
		return nil, "", repository.ErrConflict
	}
	prior := slot.Status
	slot.Status = to
	slot.ActiveBookingID = bookingID
	slot.UpdatedAt = time.Now().UTC()
	s.slots[id] = slot
	return &slot, prior, nil
}

func (s *SlotStore) UpdatePrice(ctx context.Context, id string, priceCents int64) (*domain.Slot, error) {
	if priceCents < 0 {
		return nil, domain.Validationf("price per hour must not be negative")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	slot.PricePerHourCents = priceCents
	slot.UpdatedAt = time.Now().UTC()
	s.slots[id] = slot
	return &slot, nil
}

var _ repository.SlotRepository = (*SlotStore)(nil)
