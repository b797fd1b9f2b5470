package disputes

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/parkspot/parkspot/internal/domain"
	"github.com/parkspot/parkspot/internal/repository"
)

type DisputeUseCase interface {
	CreateDispute(ctx context.Context, input CreateDisputeInput) (*domain.Dispute, error)
	GetDispute(ctx context.Context, id string) (*domain.Dispute, error)
	ListDisputes(ctx context.Context, filter repository.DisputeFilter) ([]domain.Dispute, error)
	StartProgress(ctx context.Context, id string) (*domain.Dispute, error)
	ResolveDispute(ctx context.Context, id, note string) (*domain.Dispute, error)
	CloseDispute(ctx context.Context, id string) (*domain.Dispute, error)
}

type CreateDisputeInput struct {
	BookingID    string                 `json:"booking_id"`
	ReporterID   string                 `json:"reporter_id"`
	ReporterRole domain.ReporterRole    `json:"reporter_role"`
	Type         domain.DisputeType     `json:"type"`
	Priority     domain.DisputePriority `json:"priority"`
	Subject      string                 `json:"subject"`
}

type DisputeService struct {
	disputes repository.DisputeRepository
	bookings repository.BookingRepository
}

func NewDisputeService(disputes repository.DisputeRepository, bookings repository.BookingRepository) *DisputeService {
	return &DisputeService{disputes: disputes, bookings: bookings}
}

func (s *DisputeService) CreateDispute(ctx context.Context, input CreateDisputeInput) (*domain.Dispute, error) {
	if input.ReporterID == "" {
		return nil, domain.Validationf("reporter_id is required")
	}
	if !domain.ValidDisputeType(input.Type) {
		return nil, domain.Validationf("unknown dispute type %q", input.Type)
	}
	if input.Priority == "" {
		input.Priority = domain.DisputePriorityMedium
	}
	if !domain.ValidDisputePriority(input.Priority) {
		return nil, domain.Validationf("unknown dispute priority %q", input.Priority)
	}
	if input.BookingID != "" {
		if _, err := s.bookings.GetByID(ctx, input.BookingID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, domain.NotFoundf("booking %s not found", input.BookingID)
			}
			return nil, err
		}
	}

	dispute := &domain.Dispute{
		ID:           uuid.NewString(),
		BookingID:    input.BookingID,
		ReporterID:   input.ReporterID,
		ReporterRole: input.ReporterRole,
		Type:         input.Type,
		Status:       domain.DisputeStatusOpen,
		Priority:     input.Priority,
		Subject:      input.Subject,
	}
	if err := s.disputes.Create(ctx, dispute); err != nil {
		return nil, err
	}
	return dispute, nil
}

func (s *DisputeService) GetDispute(ctx context.Context, id string) (*domain.Dispute, error) {
	dispute, err := s.disputes.GetByID(ctx, id)
	if err != nil {
		return nil, disputeErr(err, id)
	}
	return dispute, nil
}

func (s *DisputeService) ListDisputes(ctx context.Context, filter repository.DisputeFilter) ([]domain.Dispute, error) {
	if filter.Status != "" && !domain.ValidDisputeStatus(filter.Status) {
		return nil, domain.Validationf("unknown dispute status %q", filter.Status)
	}
	if filter.Priority != "" && !domain.ValidDisputePriority(filter.Priority) {
		return nil, domain.Validationf("unknown dispute priority %q", filter.Priority)
	}
	return s.disputes.List(ctx, filter)
}

func (s *DisputeService) StartProgress(ctx context.Context, id string) (*domain.Dispute, error) {
	dispute, err := s.disputes.UpdateStatus(ctx, id,
		[]domain.DisputeStatus{domain.DisputeStatusOpen}, domain.DisputeStatusInProgress, "")
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, domain.InvalidTransitionf("dispute %s is not open", id)
		}
		return nil, disputeErr(err, id)
	}
	return dispute, nil
}

// ResolveDispute requires a non-blank resolution note; a resolution nobody
// can read later is no resolution at all.
func (s *DisputeService) ResolveDispute(ctx context.Context, id, note string) (*domain.Dispute, error) {
	if strings.TrimSpace(note) == "" {
		return nil, domain.Validationf("resolution note is required")
	}

	dispute, err := s.disputes.UpdateStatus(ctx, id,
		[]domain.DisputeStatus{domain.DisputeStatusOpen, domain.DisputeStatusInProgress}, domain.DisputeStatusResolved, note)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, domain.InvalidTransitionf("dispute %s is already resolved or closed", id)
		}
		return nil, disputeErr(err, id)
	}
	return dispute, nil
}

func (s *DisputeService) CloseDispute(ctx context.Context, id string) (*domain.Dispute, error) {
	dispute, err := s.disputes.UpdateStatus(ctx, id,
		[]domain.DisputeStatus{domain.DisputeStatusOpen, domain.DisputeStatusInProgress, domain.DisputeStatusResolved}, domain.DisputeStatusClosed, "")
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, domain.InvalidTransitionf("dispute %s is already closed", id)
		}
		return nil, disputeErr(err, id)
	}
	return dispute, nil
}

func disputeErr(err error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domain.NotFoundf("dispute %s not found", id)
	}
	return err
}

var _ DisputeUseCase = (*DisputeService)(nil)
