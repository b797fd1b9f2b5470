package store

import (
	"context"
	"sync"
	"time"

	"github.com/parkspot/parkspot/internal/domain"
	"github.com/parkspot/parkspot/internal/repository"
)

// AuditLog is the append-only slot transition history. Events are kept in
// arrival order, which is also chronological for a single process.
type AuditLog struct {
	mu     sync.RWMutex
	events []domain.SlotEvent
}

func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

func (s *AuditLog) Append(ctx context.Context, event *domain.SlotEvent) error {
	if event.SlotID == "" {
		return domain.Validationf("slot event slot_id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *event)
	return nil
}

func (s *AuditLog) List(ctx context.Context, slotID string, since time.Time) ([]domain.SlotEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]domain.SlotEvent, 0)
	for _, e := range s.events {
		if e.OccurredAt.Before(since) {
			continue
		}
		if slotID != "" && e.SlotID != slotID {
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

var _ repository.AuditRepository = (*AuditLog)(nil)
