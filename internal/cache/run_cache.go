// Package cache keeps recently generated runs so they can be fetched again by ID
// without hitting the database.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"multiverse-identity/backend/internal/models"
	"multiverse-identity/backend/pkg/cache"
	"multiverse-identity/backend/shared/redis"
)

// ErrMiss is returned when a run is not cached
var ErrMiss = errors.New("run not cached")

// RunCache stores runs by ID
type RunCache interface {
	Get(ctx context.Context, id string) (*models.Run, error)
	Set(ctx context.Context, run *models.Run) error
}

// MemoryRunCache keeps runs in process memory
type MemoryRunCache struct {
	items *cache.Cache
}

// NewMemoryRunCache creates an in-memory cache holding at most maxItems runs for ttl
func NewMemoryRunCache(ttl, purgeWindow time.Duration, maxItems int) *MemoryRunCache {
	return &MemoryRunCache{items: cache.NewCache(ttl, purgeWindow, maxItems)}
}

func (m *MemoryRunCache) Get(_ context.Context, id string) (*models.Run, error) {
	v, ok := m.items.Get(id)
	if !ok {
		return nil, ErrMiss
	}
	run := v.(models.Run)
	return &run, nil
}

// Set stores a copy so later changes by the caller do not leak into the cache
func (m *MemoryRunCache) Set(_ context.Context, run *models.Run) error {
	stored := *run
	stored.Personas = append([]models.Persona(nil), run.Personas...)
	m.items.Set(run.ID, stored)
	return nil
}

// Close stops the purge loop
func (m *MemoryRunCache) Close() {
	m.items.Close()
}

// RedisRunCache stores runs as JSON in redis
type RedisRunCache struct {
	client *redis.RedisClient
	ttl    time.Duration
	prefix string
}

func NewRedisRunCache(client *redis.RedisClient, ttl time.Duration) *RedisRunCache {
	return &RedisRunCache{client: client, ttl: ttl, prefix: "multiverse:run:"}
}

func (r *RedisRunCache) Get(ctx context.Context, id string) (*models.Run, error) {
	raw, err := r.client.Get(ctx, r.prefix+id)
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get run %s: %w", id, err)
	}

	var run models.Run
	if err := json.Unmarshal([]byte(raw), &run); err != nil {
		return nil, fmt.Errorf("decode cached run %s: %w", id, err)
	}
	return &run, nil
}

func (r *RedisRunCache) Set(ctx context.Context, run *models.Run) error {
	raw, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encode run %s: %w", run.ID, err)
	}
	if err := r.client.Set(ctx, r.prefix+run.ID, raw, r.ttl); err != nil {
		return fmt.Errorf("redis set run %s: %w", run.ID, err)
	}
	return nil
}
