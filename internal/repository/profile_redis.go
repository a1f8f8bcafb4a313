package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"zen-backend/internal/models"
	"zen-backend/internal/services"
)

// maxUpdateAttempts bounds optimistic retries when another writer touches
// the same profile between WATCH and EXEC.
const maxUpdateAttempts = 100

// RedisProfileRepo stores each profile as a JSON string under its storage
// key. Untouched profiles expire after ttl; zero keeps them forever.
type RedisProfileRepo struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisProfileRepo(rdb *redis.Client, ttl time.Duration) *RedisProfileRepo {
	return &RedisProfileRepo{rdb: rdb, ttl: ttl}
}

func (r *RedisProfileRepo) Get(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	blob, err := r.rdb.Get(ctx, storageKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, services.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeProfile(blob)
}

func (r *RedisProfileRepo) Save(ctx context.Context, p *models.Profile) error {
	blob, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, p.StorageKey(), blob, r.ttl).Err()
}

// Update is an optimistic transaction: the key is watched while it is read,
// and the write is retried when another client changed it first.
func (r *RedisProfileRepo) Update(ctx context.Context, id uuid.UUID, apply func(p *models.Profile)) (*models.Profile, error) {
	key := storageKey(id)

	var updated *models.Profile
	txf := func(tx *redis.Tx) error {
		blob, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
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
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, blob, r.ttl)
			return nil
		})
		if err == nil {
			updated = p
		}
		return err
	}

	for i := 0; i < maxUpdateAttempts; i++ {
		err := r.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("profile %s: too much contention after %d attempts", id, maxUpdateAttempts)
}

func (r *RedisProfileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.rdb.Del(ctx, storageKey(id)).Err()
}
