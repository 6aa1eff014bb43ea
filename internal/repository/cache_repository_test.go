package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/bilishelf-api/pkg/errors"
)

type redisCacheStub struct {
	values  map[string]string
	ttls    map[string]time.Duration
	scanned []string
	deleted []string
	getErr  error
}

func newRedisCacheStub() *redisCacheStub {
	return &redisCacheStub{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *redisCacheStub) Get(_ context.Context, key string) *redis.StringCmd {
	if s.getErr != nil {
		return redis.NewStringResult("", s.getErr)
	}
	v, ok := s.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (s *redisCacheStub) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	s.values[key] = string(value.([]byte))
	s.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (s *redisCacheStub) Scan(_ context.Context, _ uint64, _ string, _ int64) *redis.ScanCmd {
	return redis.NewScanCmdResult(s.scanned, 0, nil)
}

func (s *redisCacheStub) Del(_ context.Context, keys ...string) *redis.IntCmd {
	s.deleted = append(s.deleted, keys...)
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestCacheRepositoryRoundTrip(t *testing.T) {
	stub := newRedisCacheStub()
	repo := NewCacheRepository(stub, nil)
	ctx := context.Background()

	var out []string
	assert.ErrorIs(t, repo.Get(ctx, "k", &out), appErrors.ErrCacheMiss)

	require.NoError(t, repo.Set(ctx, "k", []string{"a", "b"}, time.Minute))
	assert.Equal(t, time.Minute, stub.ttls["k"])
	require.NoError(t, repo.Get(ctx, "k", &out))
	assert.Equal(t, []string{"a", "b"}, out)
}

func TestCacheRepositoryCorruptEntryIsMiss(t *testing.T) {
	stub := newRedisCacheStub()
	stub.values["k"] = "{not json"
	var out map[string]int
	assert.ErrorIs(t, NewCacheRepository(stub, nil).Get(context.Background(), "k", &out), appErrors.ErrCacheMiss)
}

func TestCacheRepositoryPropagatesRedisErrors(t *testing.T) {
	stub := newRedisCacheStub()
	stub.getErr = errors.New("connection refused")
	var out []string
	err := NewCacheRepository(stub, nil).Get(context.Background(), "k", &out)
	require.Error(t, err)
	assert.NotErrorIs(t, err, appErrors.ErrCacheMiss)
}

func TestCacheRepositoryDeleteByPattern(t *testing.T) {
	stub := newRedisCacheStub()
	stub.scanned = []string{"bilishelf:catalog:1", "bilishelf:catalog:2"}
	require.NoError(t, NewCacheRepository(stub, nil).DeleteByPattern(context.Background(), "bilishelf:catalog:*"))
	assert.Equal(t, stub.scanned, stub.deleted)
}

func TestCacheRepositoryNilClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	var out []string
	assert.ErrorIs(t, repo.Get(context.Background(), "k", &out), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(context.Background(), "k", out, 0))
	assert.NoError(t, repo.DeleteByPattern(context.Background(), "*"))
}
