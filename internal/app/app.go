// Package app assembles the store, remote client and services from configuration.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/bilishelf-api/internal/dto"
	"github.com/noah-isme/bilishelf-api/internal/handler"
	"github.com/noah-isme/bilishelf-api/internal/remote"
	"github.com/noah-isme/bilishelf-api/internal/repository"
	"github.com/noah-isme/bilishelf-api/internal/service"
	"github.com/noah-isme/bilishelf-api/pkg/cache"
	"github.com/noah-isme/bilishelf-api/pkg/config"
	"github.com/noah-isme/bilishelf-api/pkg/database"
	"github.com/noah-isme/bilishelf-api/pkg/jobs"
	"github.com/noah-isme/bilishelf-api/pkg/storage"
)

const syncRetryDelay = 30 * time.Second

// App holds the wired services of one process.
type App struct {
	Config *config.Config
	Logger *zap.Logger

	Store         repository.Store
	Metrics       *service.MetricsService
	Tokens        *service.APITokenService
	Sync          *service.SyncService
	SyncJobs      *service.SyncJobService
	Folders       *service.FolderService
	Tags          *service.TagService
	Videos        *service.VideoService
	Batch         *service.BatchService
	Snapshots     *service.SnapshotService
	SnapshotFiles *service.SnapshotFileService

	checks  map[string]handler.ReadinessCheck
	queue   *jobs.Queue
	redis   *redis.Client
	closers []func() error
}

// Option customises construction, mostly for tests and the CLI.
type Option func(*options)

type options struct {
	store      repository.Store
	remoteDoer remote.Doer
}

// WithStore bypasses the configured driver.
func WithStore(store repository.Store) Option {
	return func(o *options) { o.store = store }
}

// WithRemoteDoer replaces the HTTP transport of the remote client.
func WithRemoteDoer(doer remote.Doer) Option {
	return func(o *options) { o.remoteDoer = doer }
}

// New wires every service. Callers must Close the result.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: service.NewMetricsService(),
		Tokens:  service.NewAPITokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		checks:  make(map[string]handler.ReadinessCheck),
	}

	store := o.store
	if store == nil {
		var err error
		store, err = a.openStore(ctx)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
	}
	a.Store = store
	a.closers = append(a.closers, store.Close)

	catalogCache, err := a.catalogCache(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	doer := o.remoteDoer
	if doer == nil {
		doer = &http.Client{Timeout: cfg.Remote.Timeout}
	}
	client := remote.NewClient(doer, remote.Options{
		BaseURL:     cfg.Remote.BaseURL,
		UserAgent:   cfg.Remote.UserAgent,
		MaxAttempts: cfg.Remote.MaxAttempts,
		Observer:    a.Metrics,
		Logger:      logger.Named("remote"),
	})

	a.Sync = service.NewSyncService(store, client, service.SyncServiceConfig{
		DefaultCredential: cfg.Remote.Cookie,
		Metrics:           a.Metrics,
		Logger:            logger.Named("sync"),
		Cache:             catalogCache,
		CatalogTTL:        cfg.Remote.CatalogTTL,
	})
	a.SyncJobs = service.NewSyncJobService(a.Sync, service.SyncJobServiceConfig{Logger: logger.Named("sync_jobs")})
	a.queue = jobs.NewQueue("sync", a.SyncJobs.Handle, a.SyncJobs.QueueConfig(jobs.QueueConfig{
		Workers:    1,
		MaxRetries: cfg.Sync.WorkerRetries,
		RetryDelay: syncRetryDelay,
	}))
	a.SyncJobs.AttachQueue(a.queue)

	a.Folders = service.NewFolderService(store, service.FolderServiceConfig{Logger: logger.Named("folders")})
	a.Tags = service.NewTagService(store, service.TagServiceConfig{Logger: logger.Named("tags")})
	a.Videos = service.NewVideoService(store, service.VideoServiceConfig{Logger: logger.Named("videos")})
	a.Batch = service.NewBatchService(store, service.BatchServiceConfig{ChunkSize: cfg.Store.BatchChunk, Logger: logger.Named("batch")})
	a.Snapshots = service.NewSnapshotService(store, service.SnapshotServiceConfig{Logger: logger.Named("snapshot")})

	files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	a.SnapshotFiles = service.NewSnapshotFileService(a.Snapshots, files, signer, service.SnapshotFileConfig{
		APIPrefix: cfg.APIPrefix,
		Logger:    logger.Named("exports"),
	})

	return a, nil
}

func (a *App) openStore(ctx context.Context) (repository.Store, error) {
	cfg := a.Config
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		store := repository.NewPostgresStore(db, a.Logger.Named("store"))
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		a.checks["postgres"] = db.PingContext
		return store, nil
	case config.StoreDriverKV:
		client, err := a.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		return repository.NewKVStore(ctx, repository.NewRedisBlob(client, cfg.Store.KVKey), a.Logger.Named("store"))
	case config.StoreDriverMemory:
		return repository.NewKVStore(ctx, repository.NewMemoryBlob(), a.Logger.Named("store"))
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func (a *App) catalogCache(ctx context.Context) (*service.CacheService, error) {
	if !a.Config.Redis.CacheEnabled {
		return nil, nil
	}
	client, err := a.redisClient(ctx)
	if err != nil {
		return nil, err
	}
	repo := repository.NewCacheRepository(client, a.Logger.Named("cache"))
	return service.NewCacheService(repo, a.Metrics, a.Config.Remote.CatalogTTL, a.Logger.Named("cache"), true), nil
}

func (a *App) redisClient(ctx context.Context) (*redis.Client, error) {
	if a.redis != nil {
		return a.redis, nil
	}
	client, err := cache.NewRedis(ctx, a.Config.Redis)
	if err != nil {
		return nil, err
	}
	a.redis = client
	a.closers = append(a.closers, client.Close)
	a.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	return client, nil
}

// Start launches the sync worker, the optional sync schedule and export cleanup.
func (a *App) Start(ctx context.Context) {
	a.queue.Start(ctx)
	a.SyncJobs.StartSchedule(ctx, a.Config.Sync.Interval, dto.SyncRequest{MaxFolders: a.Config.Sync.DefaultMaxFolders})
	a.SnapshotFiles.StartCleanup(ctx, a.Config.Exports.SignedURLTTL)
}

// Close stops the worker and releases stores and connections in reverse order.
func (a *App) Close() error {
	if a.queue != nil {
		a.queue.Stop()
	}
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
