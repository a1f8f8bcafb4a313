package repository

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"zen-backend/internal/models"
	"zen-backend/internal/services"
)

// MemoryProfileRepo keeps serialized profiles in process memory. Profiles
// are lost on restart.
type MemoryProfileRepo struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryProfileRepo() *MemoryProfileRepo {
	return &MemoryProfileRepo{blobs: make(map[string][]byte)}
}

func (r *MemoryProfileRepo) Get(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	r.mu.RLock()
	blob, ok := r.blobs[storageKey(id)]
	r.mu.RUnlock()
	if !ok {
		return nil, services.ErrProfileNotFound
	}
	return decodeProfile(blob)
}

func (r *MemoryProfileRepo) Save(ctx context.Context, p *models.Profile) error {
	blob, err := json.Marshal(p)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.blobs[p.StorageKey()] = blob
	r.mu.Unlock()
	return nil
}

func (r *MemoryProfileRepo) Update(ctx context.Context, id uuid.UUID, apply func(p *models.Profile)) (*models.Profile, error) {
	key := storageKey(id)

	r.mu.Lock()
	defer r.mu.Unlock()

	blob, ok := r.blobs[key]
	if !ok {
		return nil, services.ErrProfileNotFound
	}
	p, err := decodeProfile(blob)
	if err != nil {
		return nil, err
	}
	apply(p)
	if blob, err = json.Marshal(p); err != nil {
		return nil, err
	}
	r.blobs[key] = blob
	return p, nil
}

func (r *MemoryProfileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	delete(r.blobs, storageKey(id))
	r.mu.Unlock()
	return nil
}

func storageKey(id uuid.UUID) string {
	return (&models.Profile{ID: id}).StorageKey()
}

func decodeProfile(blob []byte) (*models.Profile, error) {
	p := &models.Profile{}
	if err := json.Unmarshal(blob, p); err != nil {
		return nil, err
	}
	if p.CheckIns == nil {
		p.CheckIns = []models.CheckIn{}
	}
	return p, nil
}
