package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bilishelf-api/internal/dto"
	"github.com/noah-isme/bilishelf-api/internal/models"
	appErrors "github.com/noah-isme/bilishelf-api/pkg/errors"
)

type memoryCacheRepo struct {
	entries map[string][]byte
	ttls    map[string]time.Duration
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (r *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := r.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (r *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	r.entries[key] = raw
	r.ttls[key] = ttl
	return nil
}

func (r *memoryCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range r.entries {
		if strings.HasPrefix(key, prefix) {
			delete(r.entries, key)
		}
	}
	return nil
}

func TestCatalogCacheKeyHidesCredential(t *testing.T) {
	key := CatalogCacheKey("SESSDATA=secret")
	assert.True(t, strings.HasPrefix(key, "bilishelf:catalog:"))
	assert.NotContains(t, key, "secret")
	assert.Equal(t, key, CatalogCacheKey("SESSDATA=secret"))
	assert.NotEqual(t, key, CatalogCacheKey("SESSDATA=other"))
}

func TestCacheServiceHitMissAndMetrics(t *testing.T) {
	repo := newMemoryCacheRepo()
	metrics := NewMetricsService()
	cache := NewCacheService(repo, metrics, 0, nil, true)
	ctx := context.Background()

	var out []int
	hit, err := cache.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(ctx, "k", []int{1, 2}, 0))
	assert.Equal(t, 2*time.Minute, repo.ttls["k"])

	hit, err = cache.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []int{1, 2}, out)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheHits))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheMisses))
}

func TestCacheServiceDisabledIsPermanentMiss(t *testing.T) {
	repo := newMemoryCacheRepo()
	cache := NewCacheService(repo, nil, time.Minute, nil, false)
	require.NoError(t, cache.Set(context.Background(), "k", 1, 0))
	assert.Empty(t, repo.entries)

	var nilCache *CacheService
	hit, err := nilCache.Get(context.Background(), "k", new(int))
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, nilCache.InvalidateCatalog(context.Background()))
}

func TestListRemoteFoldersUsesCatalogCache(t *testing.T) {
	store := newMemoryStore(t)
	catalog := newFakeCatalog()
	catalog.addFolder(10, "Anime")
	repo := newMemoryCacheRepo()
	svc := NewSyncService(store, catalog, SyncServiceConfig{
		DefaultCredential: "SESSDATA=abc",
		Cache:             NewCacheService(repo, nil, time.Minute, nil, true),
		CatalogTTL:        5 * time.Minute,
	})
	ctx := context.Background()

	first, cached, err := svc.ListRemoteFolders(ctx, dto.RemoteFolderListRequest{})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.False(t, cached)
	assert.Equal(t, 5*time.Minute, repo.ttls[CatalogCacheKey("SESSDATA=abc")])

	catalog.folders = append(catalog.folders, models.RemoteFolder{RemoteID: 11, Title: "Music"})
	again, cached, err := svc.ListRemoteFolders(ctx, dto.RemoteFolderListRequest{})
	require.NoError(t, err)
	assert.Len(t, again, 1)
	assert.True(t, cached)

	refreshed, cached, err := svc.ListRemoteFolders(ctx, dto.RemoteFolderListRequest{Refresh: true})
	require.NoError(t, err)
	assert.Len(t, refreshed, 2)
	assert.False(t, cached)
}
