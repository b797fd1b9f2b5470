package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/parkspot/parkspot/internal/domain"
	"github.com/parkspot/parkspot/internal/repository"
)

type BookingStore struct {
	mu       sync.RWMutex
	bookings map[string]domain.Booking
	slots    *SlotStore // provider filtering needs the slot -> provider mapping
}

func NewBookingStore(slots *SlotStore) *BookingStore {
	return &BookingStore{bookings: make(map[string]domain.Booking), slots: slots}
}

func (s *BookingStore) Create(ctx context.Context, booking *domain.Booking) error {
	if booking.ID == "" || booking.SlotID == "" || booking.DriverID == "" {
		return domain.Validationf("booking id, slot_id and driver_id are required")
	}
	if !domain.ValidBookingStatus(booking.Status) {
		return domain.Validationf("unknown booking status %q", booking.Status)
	}
	if booking.EstimatedCents < 0 || booking.AmountCents < 0 {
		return domain.Validationf("booking amounts must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[booking.ID]; ok {
		return domain.Validationf("booking %s already exists", booking.ID)
	}
	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	s.bookings[booking.ID] = *booking
	return nil
}

func (s *BookingStore) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	booking, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &booking, nil
}

func (s *BookingStore) List(ctx context.Context, filter repository.BookingFilter) ([]domain.Booking, error) {
	var providerSlots map[string]bool
	if filter.ProviderID != "" {
		slots, err := s.slots.List(ctx, filter.ProviderID)
		if err != nil {
			return nil, err
		}
		providerSlots = make(map[string]bool, len(slots))
		for _, slot := range slots {
			providerSlots[slot.ID] = true
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	bookings := make([]domain.Booking, 0)
	for _, b := range s.bookings {
		if filter.DriverID != "" && b.DriverID != filter.DriverID {
			continue
		}
		if filter.SlotID != "" && b.SlotID != filter.SlotID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if providerSlots != nil && !providerSlots[b.SlotID] {
			continue
		}
		bookings = append(bookings, b)
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].CreatedAt.After(bookings[j].CreatedAt) })
	return bookings, nil
}

func (s *BookingStore) UpdateStatus(ctx context.Context, id string, from []domain.BookingStatus, to domain.BookingStatus) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	booking, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !statusIn(booking.Status, from) {
		return nil, repository.ErrConflict
	}
	booking.Status = to
	booking.UpdatedAt = time.Now().UTC()
	s.bookings[id] = booking
	return &booking, nil
}

func (s *BookingStore) Finish(ctx context.Context, id string, from []domain.BookingStatus, to domain.BookingStatus, endTime time.Time, amountCents int64) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	booking, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !statusIn(booking.Status, from) {
		return nil, repository.ErrConflict
	}
	booking.Status = to
	booking.EndTime = endTime
	booking.AmountCents = amountCents
	booking.UpdatedAt = time.Now().UTC()
	s.bookings[id] = booking
	return &booking, nil
}

func (s *BookingStore) ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var expired []domain.Booking
	for id, b := range s.bookings {
		if b.Status != domain.BookingStatusPending || b.HoldExpiresAt.After(deadline) {
			continue
		}
		b.Status = domain.BookingStatusExpired
		b.EndTime = deadline
		b.UpdatedAt = time.Now().UTC()
		s.bookings[id] = b
		expired = append(expired, b)
	}
	return expired, nil
}

func statusIn(status domain.BookingStatus, set []domain.BookingStatus) bool {
	for _, s := range set {
		if status == s {
			return true
		}
	}
	return false
}

var _ repository.BookingRepository = (*BookingStore)(nil)
