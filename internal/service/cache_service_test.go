package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenCacheRepo struct{ *mapCacheRepo }

func (brokenCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	return errors.New("connection refused")
}

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	repo := newMapCacheRepo()
	svc := NewCacheService(repo, nil, 0, nil, false)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "reports:dashboard", 1, 0))
	hit, err := svc.Get(ctx, "reports:dashboard", new(int))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Empty(t, repo.entries)

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
	assert.NoError(t, nilSvc.Invalidate(ctx, "reports:*"))
}

func TestCacheServiceHitAndMiss(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewCacheService(newMapCacheRepo(), metrics, time.Minute, nil, true)
	ctx := context.Background()

	var value int
	hit, err := svc.Get(ctx, "reports:dashboard", &value)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(ctx, "reports:dashboard", 7, 0))
	hit, err = svc.Get(ctx, "reports:dashboard", &value)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 7, value)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheMisses))

	require.NoError(t, svc.Invalidate(ctx, "reports:*"))
	hit, err = svc.Get(ctx, "reports:dashboard", &value)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheServiceSurfacesBackendErrors(t *testing.T) {
	svc := NewCacheService(brokenCacheRepo{newMapCacheRepo()}, nil, time.Minute, nil, true)

	hit, err := svc.Get(context.Background(), "reports:dashboard", new(int))
	assert.Error(t, err)
	assert.False(t, hit)
}

func TestCacheServiceSetFreshSkipsAfterInvalidate(t *testing.T) {
	repo := newMapCacheRepo()
	svc := NewCacheService(repo, nil, time.Minute, nil, true)
	ctx := context.Background()

	gen := svc.Generation()
	require.NoError(t, svc.SetFresh(ctx, "reports:dashboard", 1, 0, gen))
	assert.Contains(t, repo.entries, "reports:dashboard")

	require.NoError(t, svc.Invalidate(ctx, "reports:*"))
	assert.Equal(t, gen+1, svc.Generation())

	require.NoError(t, svc.SetFresh(ctx, "reports:dashboard", 2, 0, gen))
	assert.NotContains(t, repo.entries, "reports:dashboard")

	var nilSvc *CacheService
	assert.Zero(t, nilSvc.Generation())
	assert.NoError(t, nilSvc.SetFresh(ctx, "reports:dashboard", 3, 0, 0))
}
