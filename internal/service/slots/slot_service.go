package slots

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/parkspot/parkspot/internal/domain"
	"github.com/parkspot/parkspot/internal/kafka"
	"github.com/parkspot/parkspot/internal/repository"
)

type SlotUseCase interface {
	CreateSlot(ctx context.Context, input CreateSlotInput) (*domain.Slot, error)
	GetSlot(ctx context.Context, id string) (*domain.Slot, error)
	ListSlots(ctx context.Context, providerID string) ([]domain.Slot, error)
	UpdatePrice(ctx context.Context, id string, priceCents int64) (*domain.Slot, error)
	Reserve(ctx context.Context, slotID, bookingID string) (*domain.Slot, error)
	Occupy(ctx context.Context, slotID string) (*domain.Slot, error)
	Release(ctx context.Context, slotID string) (*domain.Slot, error)
	SetOutOfService(ctx context.Context, slotID string) (*domain.Slot, error)
	Restore(ctx context.Context, slotID string) (*domain.Slot, error)
}

type Cache interface {
	GetSlots(ctx context.Context, providerID string) ([]domain.Slot, error)
	SetSlots(ctx context.Context, providerID string, slots []domain.Slot) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type CreateSlotInput struct {
	Code              string              `json:"code"`
	ProviderID        string              `json:"provider_id"`
	VehicleClass      domain.VehicleClass `json:"vehicle_class"`
	HasEVCharger      bool                `json:"has_ev_charger"`
	PricePerHourCents int64               `json:"price_per_hour_cents"`
}

type SlotService struct {
	slots           repository.SlotRepository
	audit           repository.AuditRepository
	cache           Cache
	producer        Producer
	slotEventsTopic string
}

type SlotServiceOption func(*SlotService)

func WithCache(cache Cache) SlotServiceOption {
	return func(s *SlotService) { s.cache = cache }
}

func WithProducer(producer Producer, topic string) SlotServiceOption {
	return func(s *SlotService) {
		s.producer = producer
		s.slotEventsTopic = topic
	}
}

func NewSlotService(slots repository.SlotRepository, audit repository.AuditRepository, opts ...SlotServiceOption) *SlotService {
	service := &SlotService{slots: slots, audit: audit}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *SlotService) CreateSlot(ctx context.Context, input CreateSlotInput) (*domain.Slot, error) {
	if input.Code == "" || input.ProviderID == "" {
		return nil, domain.Validationf("code and provider_id are required")
	}
	if input.PricePerHourCents < 0 {
		return nil, domain.Validationf("price per hour must not be negative")
	}
	if !domain.ValidVehicleClass(input.VehicleClass) {
		return nil, domain.Validationf("unknown vehicle class %q", input.VehicleClass)
	}

	slot := &domain.Slot{
		ID:                uuid.NewString(),
		Code:              input.Code,
		ProviderID:        input.ProviderID,
		VehicleClass:      input.VehicleClass,
		HasEVCharger:      input.HasEVCharger,
		PricePerHourCents: input.PricePerHourCents,
		Status:            domain.SlotStatusAvailable,
	}
	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

func (s *SlotService) GetSlot(ctx context.Context, id string) (*domain.Slot, error) {
	slot, err := s.slots.GetByID(ctx, id)
	if err != nil {
		return nil, slotErr(err, id)
	}
	return slot, nil
}

func (s *SlotService) ListSlots(ctx context.Context, providerID string) ([]domain.Slot, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetSlots(ctx, providerID); err == nil && cached != nil {
			return cached, nil
		}
	}

	slots, err := s.slots.List(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetSlots(ctx, providerID, slots)
	}
	return slots, nil
}

func (s *SlotService) UpdatePrice(ctx context.Context, id string, priceCents int64) (*domain.Slot, error) {
	if priceCents < 0 {
		return nil, domain.Validationf("price per hour must not be negative")
	}
	slot, err := s.slots.UpdatePrice(ctx, id, priceCents)
	if err != nil {
		return nil, slotErr(err, id)
	}
	return slot, nil
}

// Reserve claims an available slot for a booking. Exactly one of several
// concurrent reservations wins; the rest observe the status conflict and fail
// with a slot_unavailable error.
func (s *SlotService) Reserve(ctx context.Context, slotID, bookingID string) (*domain.Slot, error) {
	slot, err := s.transition(ctx, slotID,
		[]domain.SlotStatus{domain.SlotStatusAvailable}, domain.SlotStatusReserved, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, domain.SlotUnavailablef("slot %s is not available", slotID)
		}
		return nil, slotErr(err, slotID)
	}
	return slot, nil
}

func (s *SlotService) Occupy(ctx context.Context, slotID string) (*domain.Slot, error) {
	current, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, slotErr(err, slotID)
	}

	slot, err := s.transition(ctx, slotID,
		[]domain.SlotStatus{domain.SlotStatusReserved}, domain.SlotStatusOccupied, current.ActiveBookingID)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, domain.InvalidTransitionf("slot %s is not reserved", slotID)
		}
		return nil, slotErr(err, slotID)
	}
	return slot, nil
}

func (s *SlotService) Release(ctx context.Context, slotID string) (*domain.Slot, error) {
	slot, err := s.transition(ctx, slotID,
		[]domain.SlotStatus{domain.SlotStatusReserved, domain.SlotStatusOccupied}, domain.SlotStatusAvailable, "")
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, domain.InvalidTransitionf("slot %s is neither reserved nor occupied", slotID)
		}
		return nil, slotErr(err, slotID)
	}
	return slot, nil
}

func (s *SlotService) SetOutOfService(ctx context.Context, slotID string) (*domain.Slot, error) {
	slot, err := s.transition(ctx, slotID,
		[]domain.SlotStatus{domain.SlotStatusAvailable}, domain.SlotStatusOutOfService, "")
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, domain.InvalidTransitionf("slot %s must be available to take out of service", slotID)
		}
		return nil, slotErr(err, slotID)
	}
	return slot, nil
}

func (s *SlotService) Restore(ctx context.Context, slotID string) (*domain.Slot, error) {
	slot, err := s.transition(ctx, slotID,
		[]domain.SlotStatus{domain.SlotStatusOutOfService}, domain.SlotStatusAvailable, "")
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, domain.InvalidTransitionf("slot %s is not out of service", slotID)
		}
		return nil, slotErr(err, slotID)
	}
	return slot, nil
}

// transition performs the CAS and, on success, appends the audit event every
// reporting fold depends on. Audit append failures are fatal; the event log
// must not silently diverge from slot state.
func (s *SlotService) transition(ctx context.Context, slotID string, from []domain.SlotStatus, to domain.SlotStatus, bookingID string) (*domain.Slot, error) {
	slot, prior, err := s.slots.Transition(ctx, slotID, from, to, bookingID)
	if err != nil {
		return nil, err
	}

	event := &domain.SlotEvent{
		ID:         uuid.NewString(),
		SlotID:     slotID,
		BookingID:  bookingID,
		From:       prior,
		To:         to,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.audit.Append(ctx, event); err != nil {
		return nil, err
	}

	if s.producer != nil && s.slotEventsTopic != "" {
		wire := kafka.SlotEvent{
			SlotID:     event.SlotID,
			BookingID:  event.BookingID,
			From:       string(event.From),
			To:         string(event.To),
			OccurredAt: event.OccurredAt,
		}
		if err := s.producer.Publish(ctx, s.slotEventsTopic, slotID, wire); err != nil {
			log.Printf("publish slot event for %s: %v", slotID, err)
		}
	}
	return slot, nil
}

func slotErr(err error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domain.NotFoundf("slot %s not found", id)
	}
	return err
}

var _ SlotUseCase = (*SlotService)(nil)
