package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/artschool-api/pkg/errors"
)

func newRedisCache(t *testing.T) (*CacheRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheRepository(client, "artschool:", nil), mr
}

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, "artschool:", nil)
	ctx := context.Background()

	var dest map[string]int
	assert.ErrorIs(t, repo.Get(ctx, "reports:dashboard", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "reports:dashboard", map[string]int{"students": 1}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "reports:*"))
	assert.NoError(t, repo.Ping(ctx))
}

func TestCacheRepositoryRoundTrip(t *testing.T) {
	repo, mr := newRedisCache(t)
	ctx := context.Background()

	var dest map[string]int
	assert.ErrorIs(t, repo.Get(ctx, "reports:dashboard", &dest), appErrors.ErrCacheMiss)

	require.NoError(t, repo.Set(ctx, "reports:dashboard", map[string]int{"students": 3}, time.Minute))
	assert.True(t, mr.Exists("artschool:reports:dashboard"))
	assert.Equal(t, time.Minute, mr.TTL("artschool:reports:dashboard"))

	require.NoError(t, repo.Get(ctx, "reports:dashboard", &dest))
	assert.Equal(t, map[string]int{"students": 3}, dest)
	assert.NoError(t, repo.Ping(ctx))
}

func TestCacheRepositoryGetRejectsCorruptPayload(t *testing.T) {
	repo, mr := newRedisCache(t)
	require.NoError(t, mr.Set("artschool:reports:dashboard", "{not json"))

	var dest map[string]int
	err := repo.Get(context.Background(), "reports:dashboard", &dest)
	require.Error(t, err)
	assert.NotErrorIs(t, err, appErrors.ErrCacheMiss)
}

func TestCacheRepositoryDeleteByPatternPagesThroughKeys(t *testing.T) {
	repo, mr := newRedisCache(t)
	ctx := context.Background()

	for i := 0; i < scanBatch*2+17; i++ {
		require.NoError(t, mr.Set(fmt.Sprintf("artschool:reports:%d", i), "1"))
	}
	require.NoError(t, mr.Set("artschool:students:1", "1"))
	require.NoError(t, mr.Set("other:reports:1", "1"))

	require.NoError(t, repo.DeleteByPattern(ctx, "reports:*"))
	assert.ElementsMatch(t, []string{"artschool:students:1", "other:reports:1"}, mr.Keys())
}

func TestCacheRepositoryReportsBackendErrors(t *testing.T) {
	repo, mr := newRedisCache(t)
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.Error(t, repo.Ping(ctx))
	assert.Error(t, repo.DeleteByPattern(ctx, "reports:*"))
}
