package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"zen-backend/internal/models"
	"zen-backend/internal/services"
)

// ProfileRepo persists profiles in PostgreSQL as one JSONB document per
// storage key.
type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) Get(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var blob []byte
	err := r.pool.QueryRow(ctx, "SELECT data FROM profiles WHERE storage_key = $1", storageKey(id)).Scan(&blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, services.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeProfile(blob)
}

func (r *ProfileRepo) Save(ctx context.Context, p *models.Profile) error {
	blob, err := json.Marshal(p)
	if err != nil {
		return err
	}

	query := `INSERT INTO profiles (storage_key, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (storage_key) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`

	_, err = r.pool.Exec(ctx, query, p.StorageKey(), blob, p.CreatedAt, p.UpdatedAt)
	return err
}

// Update locks the row for the duration of the transaction, so concurrent
// updates of one profile run one after another.
func (r *ProfileRepo) Update(ctx context.Context, id uuid.UUID, apply func(p *models.Profile)) (*models.Profile, error) {
	key := storageKey(id)

	var updated *models.Profile
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var blob []byte
		err := tx.QueryRow(ctx, "SELECT data FROM profiles WHERE storage_key = $1 FOR UPDATE", key).Scan(&blob)
		if errors.Is(err, pgx.ErrNoRows) {
			return services.ErrProfileNotFound
		}
		if err != nil {
			return err
		}

		p, err := decodeProfile(blob)
		if err != nil {
			return err
		}
		apply(p)
		if blob, err = json.Marshal(p); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, "UPDATE profiles SET data = $2, updated_at = $3 WHERE storage_key = $1", key, blob, p.UpdatedAt); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *ProfileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM profiles WHERE storage_key = $1", storageKey(id))
	return err
}
