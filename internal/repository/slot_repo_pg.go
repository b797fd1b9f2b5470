package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parkspot/parkspot/internal/domain"
)

type PGSlotRepository struct {
	db *pgxpool.Pool
}

func NewSlotRepository(db *pgxpool.Pool) SlotRepository {
	return &PGSlotRepository{db: db}
}

const slotColumns = `id, code, provider_id, vehicle_class, has_ev_charger, price_per_hour_cents, status, active_booking_id, created_at, updated_at`

func scanSlot(row pgx.Row) (*domain.Slot, error) {
	var s domain.Slot
	if err := row.Scan(&s.ID, &s.Code, &s.ProviderID, &s.VehicleClass, &s.HasEVCharger, &s.PricePerHourCents, &s.Status, &s.ActiveBookingID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *PGSlotRepository) Create(ctx context.Context, slot *domain.Slot) error {
	return r.db.QueryRow(ctx, `INSERT INTO slots (id, code, provider_id, vehicle_class, has_ev_charger, price_per_hour_cents, status, active_booking_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, '')
		RETURNING created_at, updated_at`,
		slot.ID, slot.Code, slot.ProviderID, slot.VehicleClass, slot.HasEVCharger, slot.PricePerHourCents, slot.Status).
		Scan(&slot.CreatedAt, &slot.UpdatedAt)
}

func (r *PGSlotRepository) GetByID(ctx context.Context, id string) (*domain.Slot, error) {
	return scanSlot(r.db.QueryRow(ctx, `SELECT `+slotColumns+` FROM slots WHERE id=$1`, id))
}

func (r *PGSlotRepository) List(ctx context.Context, providerID string) ([]domain.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots ORDER BY code`
	args := []interface{}{}
	if providerID != "" {
		query = `SELECT ` + slotColumns + ` FROM slots WHERE provider_id=$1 ORDER BY code`
		args = append(args, providerID)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make([]domain.Slot, 0)
	for rows.Next() {
		var s domain.Slot
		if err := rows.Scan(&s.ID, &s.Code, &s.ProviderID, &s.VehicleClass, &s.HasEVCharger, &s.PricePerHourCents, &s.Status, &s.ActiveBookingID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func (r *PGSlotRepository) Transition(ctx context.Context, id string, from []domain.SlotStatus, to domain.SlotStatus, bookingID string) (*domain.Slot, domain.SlotStatus, error) {
	fromSet := make([]string, 0, len(from))
	for _, f := range from {
		fromSet = append(fromSet, string(f))
	}

	// The self-join snapshot carries the pre-update status out of the same
	// guarded statement.
	var s domain.Slot
	var prior domain.SlotStatus
	err := r.db.QueryRow(ctx, `UPDATE slots s SET status=$1, active_booking_id=$2, updated_at=now()
		FROM (SELECT id, status FROM slots WHERE id=$3 FOR UPDATE) old
		WHERE s.id = old.id AND s.status = ANY($4)
		RETURNING s.id, s.code, s.provider_id, s.vehicle_class, s.has_ev_charger, s.price_per_hour_cents, s.status, s.active_booking_id, s.created_at, s.updated_at, old.status`,
		to, bookingID, id, fromSet).
		Scan(&s.ID, &s.Code, &s.ProviderID, &s.VehicleClass, &s.HasEVCharger, &s.PricePerHourCents, &s.Status, &s.ActiveBookingID, &s.CreatedAt, &s.UpdatedAt, &prior)
	if err == nil {
		return &s, prior, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", err
	}

	// No row matched: missing slot or a status conflict.
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, "", getErr
	}
	return nil, "", ErrConflict
}

func (r *PGSlotRepository) UpdatePrice(ctx context.Context, id string, priceCents int64) (*domain.Slot, error) {
	return scanSlot(r.db.QueryRow(ctx, `UPDATE slots SET price_per_hour_cents=$1, updated_at=now() WHERE id=$2 RETURNING `+slotColumns, priceCents, id))
}

var _ SlotRepository = (*PGSlotRepository)(nil)
