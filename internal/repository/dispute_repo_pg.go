package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parkspot/parkspot/internal/domain"
)

type PGDisputeRepository struct {
	db *pgxpool.Pool
}

func NewDisputeRepository(db *pgxpool.Pool) DisputeRepository {
	return &PGDisputeRepository{db: db}
}

const disputeColumns = `id, booking_id, reporter_id, reporter_role, type, status, priority, subject, resolution_note, created_at, updated_at`

func scanDispute(row pgx.Row) (*domain.Dispute, error) {
	var d domain.Dispute
	if err := row.Scan(&d.ID, &d.BookingID, &d.ReporterID, &d.ReporterRole, &d.Type, &d.Status, &d.Priority, &d.Subject, &d.ResolutionNote, &d.CreatedAt, &d.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *PGDisputeRepository) Create(ctx context.Context, dispute *domain.Dispute) error {
	return r.db.QueryRow(ctx, `INSERT INTO disputes (id, booking_id, reporter_id, reporter_role, type, status, priority, subject, resolution_note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, '')
		RETURNING created_at, updated_at`,
		dispute.ID, dispute.BookingID, dispute.ReporterID, dispute.ReporterRole, dispute.Type, dispute.Status, dispute.Priority, dispute.Subject).
		Scan(&dispute.CreatedAt, &dispute.UpdatedAt)
}

func (r *PGDisputeRepository) GetByID(ctx context.Context, id string) (*domain.Dispute, error) {
	return scanDispute(r.db.QueryRow(ctx, `SELECT `+disputeColumns+` FROM disputes WHERE id=$1`, id))
}

func (r *PGDisputeRepository) List(ctx context.Context, filter DisputeFilter) ([]domain.Dispute, error) {
	query := `SELECT ` + disputeColumns + ` FROM disputes WHERE 1=1`
	args := []interface{}{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND status=$` + strconv.Itoa(len(args))
	}
	if filter.Priority != "" {
		args = append(args, filter.Priority)
		query += ` AND priority=$` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	disputes := make([]domain.Dispute, 0)
	for rows.Next() {
		var d domain.Dispute
		if err := rows.Scan(&d.ID, &d.BookingID, &d.ReporterID, &d.ReporterRole, &d.Type, &d.Status, &d.Priority, &d.Subject, &d.ResolutionNote, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		disputes = append(disputes, d)
	}
	return disputes, rows.Err()
}

func (r *PGDisputeRepository) UpdateStatus(ctx context.Context, id string, from []domain.DisputeStatus, to domain.DisputeStatus, note string) (*domain.Dispute, error) {
	fromSet := make([]string, 0, len(from))
	for _, f := range from {
		fromSet = append(fromSet, string(f))
	}

	dispute, err := scanDispute(r.db.QueryRow(ctx, `UPDATE disputes SET status=$1, resolution_note = CASE WHEN $1 = 'resolved' THEN $2 ELSE resolution_note END, updated_at=now()
		WHERE id=$3 AND status = ANY($4)
		RETURNING `+disputeColumns, to, note, id, fromSet))
	if err == nil {
		return dispute, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrConflict
}

var _ DisputeRepository = (*PGDisputeRepository)(nil)
