package providers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/parkspot/parkspot/internal/domain"
	"github.com/parkspot/parkspot/internal/repository"
)

type ProviderUseCase interface {
	RegisterProvider(ctx context.Context, input RegisterProviderInput) (*domain.Provider, error)
	GetProvider(ctx context.Context, id string) (*domain.Provider, error)
	ListProviders(ctx context.Context) ([]domain.Provider, error)
	SetVerification(ctx context.Context, id string, status domain.VerificationStatus) (*domain.Provider, error)
	ToggleOnline(ctx context.Context, id string) (*domain.Provider, error)
}

type RegisterProviderInput struct {
	Name         string `json:"name"`
	OwnerContact string `json:"owner_contact"`
}

type ProviderService struct {
	providers repository.ProviderRepository
}

func NewProviderService(providers repository.ProviderRepository) *ProviderService {
	return &ProviderService{providers: providers}
}

func (s *ProviderService) RegisterProvider(ctx context.Context, input RegisterProviderInput) (*domain.Provider, error) {
	if input.Name == "" {
		return nil, domain.Validationf("provider name is required")
	}

	// New lots start unverified and offline; an admin approves them and the
	// owner flips online before any slot is bookable.
	provider := &domain.Provider{
		ID:           uuid.NewString(),
		Name:         input.Name,
		OwnerContact: input.OwnerContact,
		Verification: domain.VerificationPending,
		Online:       false,
	}
	if err := s.providers.Create(ctx, provider); err != nil {
		return nil, err
	}
	return provider, nil
}

func (s *ProviderService) GetProvider(ctx context.Context, id string) (*domain.Provider, error) {
	provider, err := s.providers.GetByID(ctx, id)
	if err != nil {
		return nil, providerErr(err, id)
	}
	return provider, nil
}

func (s *ProviderService) ListProviders(ctx context.Context) ([]domain.Provider, error) {
	return s.providers.List(ctx)
}

func (s *ProviderService) SetVerification(ctx context.Context, id string, status domain.VerificationStatus) (*domain.Provider, error) {
	if !domain.ValidVerificationStatus(status) {
		return nil, domain.Validationf("unknown verification status %q", status)
	}
	provider, err := s.providers.SetVerification(ctx, id, status)
	if err != nil {
		return nil, providerErr(err, id)
	}
	return provider, nil
}

func (s *ProviderService) ToggleOnline(ctx context.Context, id string) (*domain.Provider, error) {
	provider, err := s.providers.ToggleOnline(ctx, id)
	if err != nil {
		return nil, providerErr(err, id)
	}
	return provider, nil
}

func providerErr(err error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domain.NotFoundf("provider %s not found", id)
	}
	return err
}

var _ ProviderUseCase = (*ProviderService)(nil)
