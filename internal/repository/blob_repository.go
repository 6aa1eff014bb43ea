package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisBlobClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisBlob keeps the KV state under a single Redis key.
type RedisBlob struct {
	client redisBlobClient
	key    string
}

// NewRedisBlob constructs a blob bound to key.
func NewRedisBlob(client redisBlobClient, key string) *RedisBlob {
	if key == "" {
		key = "state"
	}
	return &RedisBlob{client: client, key: key}
}

// Load returns the stored blob or nil when the key is absent.
func (b *RedisBlob) Load(ctx context.Context) ([]byte, error) {
	raw, err := b.client.Get(ctx, b.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", b.key, err)
	}
	return raw, nil
}

// Save overwrites the blob without expiry.
func (b *RedisBlob) Save(ctx context.Context, data []byte) error {
	if err := b.client.Set(ctx, b.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", b.key, err)
	}
	return nil
}

// MemoryBlob keeps the blob in process memory.
type MemoryBlob struct {
	mu   sync.RWMutex
	data []byte
}

// NewMemoryBlob returns an empty in-memory blob.
func NewMemoryBlob() *MemoryBlob {
	return &MemoryBlob{}
}

func (b *MemoryBlob) Load(ctx context.Context) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.data == nil {
		return nil, nil
	}
	return append([]byte(nil), b.data...), nil
}

func (b *MemoryBlob) Save(ctx context.Context, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = append([]byte(nil), data...)
	return nil
}
