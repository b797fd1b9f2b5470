package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/parkspot/parkspot/internal/domain"
	"github.com/parkspot/parkspot/internal/repository"
)

type DisputeStore struct {
	mu       sync.RWMutex
	disputes map[string]domain.Dispute
}

func NewDisputeStore() *DisputeStore {
	return &DisputeStore{disputes: make(map[string]domain.Dispute)}
}

func (s *DisputeStore) Create(ctx context.Context, dispute *domain.Dispute) error {
	if dispute.ID == "" || dispute.ReporterID == "" {
		return domain.Validationf("dispute id and reporter_id are required")
	}
	if !domain.ValidDisputeType(dispute.Type) {
		return domain.Validationf("unknown dispute type %q", dispute.Type)
	}
	if !domain.ValidDisputeStatus(dispute.Status) {
		return domain.Validationf("unknown dispute status %q", dispute.Status)
	}
	if !domain.ValidDisputePriority(dispute.Priority) {
		return domain.Validationf("unknown dispute priority %q", dispute.Priority)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.disputes[dispute.ID]; ok {
		return domain.Validationf("dispute %s already exists", dispute.ID)
	}
	now := time.Now().UTC()
	dispute.CreatedAt = now
	dispute.UpdatedAt = now
	s.disputes[dispute.ID] = *dispute
	return nil
}

func (s *DisputeStore) GetByID(ctx context.Context, id string) (*domain.Dispute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dispute, ok := s.disputes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &dispute, nil
}

func (s *DisputeStore) List(ctx context.Context, filter repository.DisputeFilter) ([]domain.Dispute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	disputes := make([]domain.Dispute, 0)
	for _, d := range s.disputes {
		if filter.Status != "" && d.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && d.Priority != filter.Priority {
			continue
		}
		disputes = append(disputes, d)
	}
	sort.Slice(disputes, func(i, j int) bool { return disputes[i].CreatedAt.After(disputes[j].CreatedAt) })
	return disputes, nil
}

func (s *DisputeStore) UpdateStatus(ctx context.Context, id string, from []domain.DisputeStatus, to domain.DisputeStatus, note string) (*domain.Dispute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dispute, ok := s.disputes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	matched := false
	for _, f := range from {
		if dispute.Status == f {
			matched = true
			break
		}
	}
	if !matched {
		return nil, repository.ErrConflict
	}
	dispute.Status = to
	if to == domain.DisputeStatusResolved {
		dispute.ResolutionNote = note
	}
	dispute.UpdatedAt = time.Now().UTC()
	s.disputes[id] = dispute
	return &dispute, nil
}

var _ repository.DisputeRepository = (*DisputeStore)(nil)
