package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parkspot/parkspot/internal/domain"
)

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, slot_id, driver_id, start_time, end_time, status, amount_cents, estimated_cents, hold_expires_at, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.SlotID, &b.DriverID, &b.StartTime, &b.EndTime, &b.Status, &b.AmountCents, &b.EstimatedCents, &b.HoldExpiresAt, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	return r.db.QueryRow(ctx, `INSERT INTO bookings (id, slot_id, driver_id, start_time, end_time, status, amount_cents, estimated_cents, hold_expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		booking.ID, booking.SlotID, booking.DriverID, booking.StartTime, booking.EndTime, booking.Status, booking.AmountCents, booking.EstimatedCents, booking.HoldExpiresAt).
		Scan(&booking.CreatedAt, &booking.UpdatedAt)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	return scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id))
}

func (r *PGBookingRepository) List(ctx context.Context, filter BookingFilter) ([]domain.Booking, error) {
	query := `SELECT b.id, b.slot_id, b.driver_id, b.start_time, b.end_time, b.status, b.amount_cents, b.estimated_cents, b.hold_expires_at, b.created_at, b.updated_at
		FROM bookings b JOIN slots s ON s.id = b.slot_id WHERE 1=1`
	args := []interface{}{}
	if filter.DriverID != "" {
		args = append(args, filter.DriverID)
		query += ` AND b.driver_id=$` + strconv.Itoa(len(args))
	}
	if filter.ProviderID != "" {
		args = append(args, filter.ProviderID)
		query += ` AND s.provider_id=$` + strconv.Itoa(len(args))
	}
	if filter.SlotID != "" {
		args = append(args, filter.SlotID)
		query += ` AND b.slot_id=$` + strconv.Itoa(len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND b.status=$` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY b.created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.SlotID, &b.DriverID, &b.StartTime, &b.EndTime, &b.Status, &b.AmountCents, &b.EstimatedCents, &b.HoldExpiresAt, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id string, from []domain.BookingStatus, to domain.BookingStatus) (*domain.Booking, error) {
	booking, err := scanBooking(r.db.QueryRow(ctx, `UPDATE bookings SET status=$1, updated_at=now()
		WHERE id=$2 AND status = ANY($3)
		RETURNING `+bookingColumns, to, id, statusSet(from)))
	if err == nil {
		return booking, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrConflict
}

func (r *PGBookingRepository) Finish(ctx context.Context, id string, from []domain.BookingStatus, to domain.BookingStatus, endTime time.Time, amountCents int64) (*domain.Booking, error) {
	booking, err := scanBooking(r.db.QueryRow(ctx, `UPDATE bookings SET status=$1, end_time=$2, amount_cents=$3, updated_at=now()
		WHERE id=$4 AND status = ANY($5)
		RETURNING `+bookingColumns, to, endTime, amountCents, id, statusSet(from)))
	if err == nil {
		return booking, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrConflict
}

func (r *PGBookingRepository) ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `UPDATE bookings SET status=$1, end_time=$2, updated_at=now()
		WHERE status=$3 AND hold_expires_at <= $2
		RETURNING `+bookingColumns, domain.BookingStatusExpired, deadline, domain.BookingStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expired []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.SlotID, &b.DriverID, &b.StartTime, &b.EndTime, &b.Status, &b.AmountCents, &b.EstimatedCents, &b.HoldExpiresAt, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		expired = append(expired, b)
	}
	return expired, rows.Err()
}

func statusSet(from []domain.BookingStatus) []string {
	set := make([]string, 0, len(from))
	for _, f := range from {
		set = append(set, string(f))
	}
	return set
}

var _ BookingRepository = (*PGBookingRepository)(nil)
