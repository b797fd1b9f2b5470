package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/parkspot/parkspot/internal/domain"
	"github.com/parkspot/parkspot/internal/repository"
)

type DriverStore struct {
	mu      sync.RWMutex
	drivers map[string]domain.Driver
	wallet  map[string][]domain.WalletEntry
}

func NewDriverStore() *DriverStore {
	return &DriverStore{
		drivers: make(map[string]domain.Driver),
		wallet:  make(map[string][]domain.WalletEntry),
	}
}

func (s *DriverStore) Create(ctx context.Context, driver *domain.Driver) error {
	if driver.ID == "" || driver.Name == "" {
		return domain.Validationf("driver id and name are required")
	}
	if driver.WalletBalanceCents < 0 {
		return domain.Validationf("wallet balance must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drivers[driver.ID]; ok {
		return domain.Validationf("driver %s already exists", driver.ID)
	}
	now := time.Now().UTC()
	driver.CreatedAt = now
	driver.UpdatedAt = now
	s.drivers[driver.ID] = *driver
	return nil
}

func (s *DriverStore) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	driver, ok := s.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &driver, nil
}

func (s *DriverStore) List(ctx context.Context) ([]domain.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	drivers := make([]domain.Driver, 0, len(s.drivers))
	for _, d := range s.drivers {
		drivers = append(drivers, d)
	}
	sort.Slice(drivers, func(i, j int) bool { return drivers[i].CreatedAt.Before(drivers[j].CreatedAt) })
	return drivers, nil
}

func (s *DriverStore) Credit(ctx context.Context, id string, amountCents int64) (*domain.Driver, error) {
	if amountCents <= 0 {
		return nil, domain.Validationf("credit amount must be positive")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	driver, ok := s.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	driver.WalletBalanceCents += amountCents
	driver.UpdatedAt = time.Now().UTC()
	s.drivers[id] = driver
	return &driver, nil
}

func (s *DriverStore) Debit(ctx context.Context, id string, amountCents int64) (*domain.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	driver, ok := s.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if driver.WalletBalanceCents < amountCents {
		return nil, repository.ErrInsufficientBalance
	}
	driver.WalletBalanceCents -= amountCents
	driver.UpdatedAt = time.Now().UTC()
	s.drivers[id] = driver
	return &driver, nil
}

func (s *DriverStore) DebitUpTo(ctx context.Context, id string, amountCents int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	driver, ok := s.drivers[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	debited := amountCents
	if driver.WalletBalanceCents < debited {
		debited = driver.WalletBalanceCents
	}
	driver.WalletBalanceCents -= debited
	driver.UpdatedAt = time.Now().UTC()
	s.drivers[id] = driver
	return debited, nil
}

func (s *DriverStore) AppendWalletEntry(ctx context.Context, entry *domain.WalletEntry) error {
	if entry.DriverID == "" {
		return domain.Validationf("wallet entry driver_id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallet[entry.DriverID] = append(s.wallet[entry.DriverID], *entry)
	return nil
}

func (s *DriverStore) ListWalletEntries(ctx context.Context, driverID string) ([]domain.WalletEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]domain.WalletEntry, len(s.wallet[driverID]))
	copy(entries, s.wallet[driverID])
	sort.Slice(entries, func(i, j int) bool { return entries[i].OccurredAt.After(entries[j].OccurredAt) })
	return entries, nil
}

var _ repository.DriverRepository = (*DriverStore)(nil)
