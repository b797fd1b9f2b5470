package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/parkspot/parkspot/internal/domain"
	"github.com/parkspot/parkspot/internal/repository"
)

type ProviderStore struct {
	mu        sync.RWMutex
	providers map[string]domain.Provider
}

func NewProviderStore() *ProviderStore {
	return &ProviderStore{providers: make(map[string]domain.Provider)}
}

func (s *ProviderStore) Create(ctx context.Context, provider *domain.Provider) error {
	if provider.ID == "" || provider.Name == "" {
		return domain.Validationf("provider id and name are required")
	}
	if !domain.ValidVerificationStatus(provider.Verification) {
		return domain.Validationf("unknown verification status %q", provider.Verification)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.providers[provider.ID]; ok {
		return domain.Validationf("provider %s already exists", provider.ID)
	}
	now := time.Now().UTC()
	provider.CreatedAt = now
	provider.UpdatedAt = now
	s.providers[provider.ID] = *provider
	return nil
}

func (s *ProviderStore) GetByID(ctx context.Context, id string) (*domain.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	provider, ok := s.providers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &provider, nil
}

func (s *ProviderStore) List(ctx context.Context) ([]domain.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	providers := make([]domain.Provider, 0, len(s.providers))
	for _, p := range s.providers {
		providers = append(providers, p)
	}
	sort.Slice(providers, func(i, j int) bool { return providers[i].Name < providers[j].Name })
	return providers, nil
}

func (s *ProviderStore) SetVerification(ctx context.Context, id string, status domain.VerificationStatus) (*domain.Provider, error) {
	if !domain.ValidVerificationStatus(status) {
		return nil, domain.Validationf("unknown verification status %q", status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	provider, ok := s.providers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	provider.Verification = status
	provider.UpdatedAt = time.Now().UTC()
	s.providers[id] = provider
	return &provider, nil
}

func (s *ProviderStore) ToggleOnline(ctx context.Context, id string) (*domain.Provider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	provider, ok := s.providers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	provider.Online = !provider.Online
	provider.UpdatedAt = time.Now().UTC()
	s.providers[id] = provider
	return &provider, nil
}

var _ repository.ProviderRepository = (*ProviderStore)(nil)
