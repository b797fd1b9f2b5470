package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parkspot/parkspot/internal/domain"
)

type PGAuditRepository struct {
	db *pgxpool.Pool
}

func NewAuditRepository(db *pgxpool.Pool) AuditRepository {
	return &PGAuditRepository{db: db}
}

func (r *PGAuditRepository) Append(ctx context.Context, event *domain.SlotEvent) error {
	_, err := r.db.Exec(ctx, `INSERT INTO slot_events (id, slot_id, booking_id, from_status, to_status, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		event.ID, event.SlotID, event.BookingID, event.From, event.To, event.OccurredAt)
	return err
}

func (r *PGAuditRepository) List(ctx context.Context, slotID string, since time.Time) ([]domain.SlotEvent, error) {
	query := `SELECT id, slot_id, booking_id, from_status, to_status, occurred_at FROM slot_events WHERE occurred_at >= $1`
	args := []interface{}{since}
	if slotID != "" {
		query += ` AND slot_id=$2`
		args = append(args, slotID)
	}
	query += ` ORDER BY occurred_at`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]domain.SlotEvent, 0)
	for rows.Next() {
		var e domain.SlotEvent
		if err := rows.Scan(&e.ID, &e.SlotID, &e.BookingID, &e.From, &e.To, &e.OccurredAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

var _ AuditRepository = (*PGAuditRepository)(nil)
