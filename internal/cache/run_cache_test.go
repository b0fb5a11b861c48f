package cache

import (
	"context"
	"testing"
	"time"

	"multiverse-identity/backend/internal/models"
	"multiverse-identity/backend/shared/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRun() *models.Run {
	return &models.Run{
		ID:        "run-42",
		BaseName:  "Jane",
		Traits:    "brave",
		CreatedAt: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
		Personas: []models.Persona{
			{Position: 0, Universe: "Sci-Fi", Name: "Neo-Jane", Description: "d", Backstory: "b", Icon: "zap", Color: "c"},
		},
	}
}

func TestMemoryRunCache(t *testing.T) {
	c := NewMemoryRunCache(time.Minute, 0, 10)
	defer c.Close()
	ctx := context.Background()

	_, err := c.Get(ctx, "run-42")
	assert.ErrorIs(t, err, ErrMiss)

	run := sampleRun()
	require.NoError(t, c.Set(ctx, run))
	run.Personas[0].Name = "changed"

	got, err := c.Get(ctx, "run-42")
	require.NoError(t, err)
	assert.Equal(t, "Jane", got.BaseName)
	assert.Equal(t, "Neo-Jane", got.Personas[0].Name)
}

func TestRedisRunCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewRedisClient(redis.Options{Addr: mr.Addr()})
	defer client.Close()

	c := NewRedisRunCache(client, time.Minute)
	ctx := context.Background()

	_, err := c.Get(ctx, "run-42")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, sampleRun()))
	assert.True(t, mr.Exists("multiverse:run:run-42"))

	got, err := c.Get(ctx, "run-42")
	require.NoError(t, err)
	assert.Equal(t, "brave", got.Traits)
	require.Len(t, got.Personas, 1)
	assert.Equal(t, "Neo-Jane", got.Personas[0].Name)
	assert.True(t, got.CreatedAt.Equal(sampleRun().CreatedAt))

	mr.FastForward(2 * time.Minute)
	_, err = c.Get(ctx, "run-42")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisRunCacheCorruptEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewRedisClient(redis.Options{Addr: mr.Addr()})
	defer client.Close()

	require.NoError(t, mr.Set("multiverse:run:bad", "{not json"))

	_, err := NewRedisRunCache(client, time.Minute).Get(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
}
