package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parkspot/parkspot/internal/domain"
)

type PGProviderRepository struct {
	db *pgxpool.Pool
}

func NewProviderRepository(db *pgxpool.Pool) ProviderRepository {
	return &PGProviderRepository{db: db}
}

const providerColumns = `id, name, owner_contact, verification_status, online, created_at, updated_at`

func scanProvider(row pgx.Row) (*domain.Provider, error) {
	var p domain.Provider
	if err := row.Scan(&p.ID, &p.Name, &p.OwnerContact, &p.Verification, &p.Online, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGProviderRepository) Create(ctx context.Context, provider *domain.Provider) error {
	return r.db.QueryRow(ctx, `INSERT INTO providers (id, name, owner_contact, verification_status, online)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		provider.ID, provider.Name, provider.OwnerContact, provider.Verification, provider.Online).
		Scan(&provider.CreatedAt, &provider.UpdatedAt)
}

func (r *PGProviderRepository) GetByID(ctx context.Context, id string) (*domain.Provider, error) {
	return scanProvider(r.db.QueryRow(ctx, `SELECT `+providerColumns+` FROM providers WHERE id=$1`, id))
}

func (r *PGProviderRepository) List(ctx context.Context) ([]domain.Provider, error) {
	rows, err := r.db.Query(ctx, `SELECT `+providerColumns+` FROM providers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	providers := make([]domain.Provider, 0)
	for rows.Next() {
		var p domain.Provider
		if err := rows.Scan(&p.ID, &p.Name, &p.OwnerContact, &p.Verification, &p.Online, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, rows.Err()
}

func (r *PGProviderRepository) SetVerification(ctx context.Context, id string, status domain.VerificationStatus) (*domain.Provider, error) {
	return scanProvider(r.db.QueryRow(ctx, `UPDATE providers SET verification_status=$1, updated_at=now() WHERE id=$2 RETURNING `+providerColumns, status, id))
}

func (r *PGProviderRepository) ToggleOnline(ctx context.Context, id string) (*domain.Provider, error) {
	return scanProvider(r.db.QueryRow(ctx, `UPDATE providers SET online = NOT online, updated_at=now() WHERE id=$1 RETURNING `+providerColumns, id))
}

var _ ProviderRepository = (*PGProviderRepository)(nil)
