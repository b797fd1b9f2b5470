package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parkspot/parkspot/internal/domain"
)

type PGDriverRepository struct {
	db *pgxpool.Pool
}

func NewDriverRepository(db *pgxpool.Pool) DriverRepository {
	return &PGDriverRepository{db: db}
}

const driverColumns = `id, name, email, phone, vehicle_plate, wallet_balance_cents, created_at, updated_at`

func scanDriver(row pgx.Row) (*domain.Driver, error) {
	var d domain.Driver
	if err := row.Scan(&d.ID, &d.Name, &d.Email, &d.Phone, &d.VehiclePlate, &d.WalletBalanceCents, &d.CreatedAt, &d.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *PGDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	return r.db.QueryRow(ctx, `INSERT INTO drivers (id, name, email, phone, vehicle_plate, wallet_balance_cents)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		driver.ID, driver.Name, driver.Email, driver.Phone, driver.VehiclePlate, driver.WalletBalanceCents).
		Scan(&driver.CreatedAt, &driver.UpdatedAt)
}

func (r *PGDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	return scanDriver(r.db.QueryRow(ctx, `SELECT `+driverColumns+` FROM drivers WHERE id=$1`, id))
}

func (r *PGDriverRepository) List(ctx context.Context) ([]domain.Driver, error) {
	rows, err := r.db.Query(ctx, `SELECT `+driverColumns+` FROM drivers ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	drivers := make([]domain.Driver, 0)
	for rows.Next() {
		var d domain.Driver
		if err := rows.Scan(&d.ID, &d.Name, &d.Email, &d.Phone, &d.VehiclePlate, &d.WalletBalanceCents, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}

func (r *PGDriverRepository) Credit(ctx context.Context, id string, amountCents int64) (*domain.Driver, error) {
	return scanDriver(r.db.QueryRow(ctx, `UPDATE drivers SET wallet_balance_cents = wallet_balance_cents + $1, updated_at=now()
		WHERE id=$2 RETURNING `+driverColumns, amountCents, id))
}

func (r *PGDriverRepository) Debit(ctx context.Context, id string, amountCents int64) (*domain.Driver, error) {
	driver, err := scanDriver(r.db.QueryRow(ctx, `UPDATE drivers SET wallet_balance_cents = wallet_balance_cents - $1, updated_at=now()
		WHERE id=$2 AND wallet_balance_cents >= $1
		RETURNING `+driverColumns, amountCents, id))
	if err == nil {
		return driver, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrInsufficientBalance
}

func (r *PGDriverRepository) DebitUpTo(ctx context.Context, id string, amountCents int64) (int64, error) {
	var debited int64
	err := r.db.QueryRow(ctx, `WITH old AS (SELECT wallet_balance_cents AS bal FROM drivers WHERE id=$2 FOR UPDATE)
		UPDATE drivers SET wallet_balance_cents = wallet_balance_cents - LEAST(wallet_balance_cents, $1), updated_at=now()
		FROM old WHERE drivers.id=$2
		RETURNING LEAST(old.bal, $1)`, amountCents, id).Scan(&debited)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return debited, nil
}

func (r *PGDriverRepository) AppendWalletEntry(ctx context.Context, entry *domain.WalletEntry) error {
	_, err := r.db.Exec(ctx, `INSERT INTO wallet_entries (id, driver_id, booking_id, kind, amount_cents, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.DriverID, entry.BookingID, entry.Kind, entry.AmountCents, entry.OccurredAt)
	return err
}

func (r *PGDriverRepository) ListWalletEntries(ctx context.Context, driverID string) ([]domain.WalletEntry, error) {
	rows, err := r.db.Query(ctx, `SELECT id, driver_id, booking_id, kind, amount_cents, occurred_at
		FROM wallet_entries WHERE driver_id=$1 ORDER BY occurred_at DESC`, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.WalletEntry, 0)
	for rows.Next() {
		var e domain.WalletEntry
		if err := rows.Scan(&e.ID, &e.DriverID, &e.BookingID, &e.Kind, &e.AmountCents, &e.OccurredAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

var _ DriverRepository = (*PGDriverRepository)(nil)
