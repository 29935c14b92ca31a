package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCooldownRepository(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := NewCooldownRepository(client)
	ctx := context.Background()

	ok, err := repo.Acquire(ctx, "a@example.com", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists(cooldownKeyPrefix+"a@example.com"))

	ok, err = repo.Acquire(ctx, "a@example.com", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Acquire(ctx, "b@example.com", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(time.Minute + time.Second)
	ok, err = repo.Acquire(ctx, "a@example.com", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repo.Release(ctx, "a@example.com"))
	ok, err = repo.Acquire(ctx, "a@example.com", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCooldownRepository_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	_, err := NewCooldownRepository(client).Acquire(context.Background(), "a@example.com", time.Minute)
	require.Error(t, err)
}
