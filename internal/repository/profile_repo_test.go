package repository

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"zen-backend/internal/database"
	"zen-backend/internal/models"
	"zen-backend/internal/services"
)

// exerciseStore runs the same contract against every backend.
func exerciseStore(t *testing.T, store services.ProfileStore) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	p := services.NewProfile(uuid.New(), now)

	_, err := store.Get(ctx, p.ID)
	assert.ErrorIs(t, err, services.ErrProfileNotFound)

	require.NoError(t, store.Save(ctx, p))

	// Mutating the caller's copy must not leak into the store.
	p.Points = 999
	got, err := store.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Points)
	assert.Equal(t, 5, got.StressLevel)
	assert.NotNil(t, got.CheckIns)

	got.CheckIns = append(got.CheckIns, models.CheckIn{Date: "2026-03-10", Mood: 6, Energy: 7})
	got.Points = 10
	require.NoError(t, store.Save(ctx, got))

	again, err := store.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, again.Points)
	assert.Equal(t, []models.CheckIn{{Date: "2026-03-10", Mood: 6, Energy: 7}}, again.CheckIns)

	updated, err := store.Update(ctx, p.ID, func(p *models.Profile) { p.Points += 5 })
	require.NoError(t, err)
	assert.Equal(t, 15, updated.Points)

	_, err = store.Update(ctx, uuid.New(), func(p *models.Profile) { p.Points++ })
	assert.ErrorIs(t, err, services.ErrProfileNotFound)

	// Concurrent updates of one profile never lose a write.
	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Update(ctx, p.ID, func(p *models.Profile) { p.Points++ })
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	again, err = store.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 15+n, again.Points)

	require.NoError(t, store.Delete(ctx, p.ID))
	_, err = store.Get(ctx, p.ID)
	assert.ErrorIs(t, err, services.ErrProfileNotFound)
}

func TestMemoryProfileRepo(t *testing.T) {
	exerciseStore(t, NewMemoryProfileRepo())
}

func TestRedisProfileRepo(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	defer rdb.Close()

	exerciseStore(t, NewRedisProfileRepo(rdb, time.Hour))
}

func TestProfileRepo_Postgres(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	pool, err := database.NewPostgresPool(url)
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, database.RunMigrations(context.Background(), pool, zaptest.NewLogger(t)))

	exerciseStore(t, NewProfileRepo(pool))
}

func TestStorageKey(t *testing.T) {
	id := uuid.MustParse("7f1b6d3e-2c4a-4b8e-9d10-3a5f6e7c8d90")
	assert.Equal(t, "zenUserData:7f1b6d3e-2c4a-4b8e-9d10-3a5f6e7c8d90", storageKey(id))
}
