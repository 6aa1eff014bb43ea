package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/bilishelf-api/internal/dto"
	"github.com/noah-isme/bilishelf-api/internal/models"
	appErrors "github.com/noah-isme/bilishelf-api/pkg/errors"
	"github.com/noah-isme/bilishelf-api/pkg/jobs"
)

const (
	syncJobType          = "bilibili_sync"
	defaultSyncJobRetain = 50
)

type syncRunner interface {
	Run(ctx context.Context, req dto.SyncRequest) (*models.SyncResult, error)
}

type syncDispatcher interface {
	Enqueue(job jobs.Job) error
}

// SyncJobService runs synchronizations on a background queue and keeps the
// most recent job records in memory.
type SyncJobService struct {
	runner    syncRunner
	queue     syncDispatcher
	validator *validator.Validate
	logger    *zap.Logger
	now       func() int64
	newID     func() string
	retain    int

	mu   sync.RWMutex
	jobs map[string]*models.SyncJob
}

// SyncJobServiceConfig carries optional collaborators.
type SyncJobServiceConfig struct {
	Validator *validator.Validate
	Logger    *zap.Logger
	Now       func() int64
	NewID     func() string
	// Retain bounds how many job records are kept; the oldest finished ones go first.
	Retain int
}

// NewSyncJobService constructs the job service. AttachQueue must be called before Enqueue.
func NewSyncJobService(runner syncRunner, cfg SyncJobServiceConfig) *SyncJobService {
	if cfg.Validator == nil {
		cfg.Validator = validator.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = nowMillis
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	if cfg.Retain <= 0 {
		cfg.Retain = defaultSyncJobRetain
	}
	return &SyncJobService{
		runner:    runner,
		validator: cfg.Validator,
		logger:    cfg.Logger,
		now:       cfg.Now,
		newID:     cfg.NewID,
		retain:    cfg.Retain,
		jobs:      make(map[string]*models.SyncJob),
	}
}

// QueueConfig returns queue hooks that keep job records in step with the worker.
func (s *SyncJobService) QueueConfig(base jobs.QueueConfig) jobs.QueueConfig {
	base.Retryable = RetryableSyncError
	base.OnStart = s.markRunning
	base.OnFinish = s.markFinished
	if base.Logger == nil {
		base.Logger = s.logger
	}
	return base
}

// AttachQueue sets the dispatcher jobs are pushed to.
func (s *SyncJobService) AttachQueue(queue syncDispatcher) {
	s.queue = queue
}

// RetryableSyncError reports whether a failed run is worth repeating. Credential
// problems, bad requests and anti-automation blocks are not.
func RetryableSyncError(err error) bool {
	switch {
	case appErrors.HasCode(err, appErrors.ErrLoginRequired.Code),
		appErrors.HasCode(err, appErrors.ErrValidation.Code),
		appErrors.HasCode(err, appErrors.ErrRiskControlled.Code):
		return false
	}
	return true
}

// Enqueue records a manual job and hands it to the queue.
func (s *SyncJobService) Enqueue(ctx context.Context, req dto.SyncRequest) (*models.SyncJob, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid sync request")
	}
	return s.enqueue(req, models.SyncTriggerManual)
}

func (s *SyncJobService) enqueue(req dto.SyncRequest, trigger string) (*models.SyncJob, error) {
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "sync queue unavailable")
	}
	job := &models.SyncJob{
		ID:         s.newID(),
		Trigger:    trigger,
		Status:     models.SyncJobQueued,
		EnqueuedAt: s.now(),
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.pruneLocked()
	snapshot := *job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: syncJobType, Payload: req}); err != nil {
		s.mu.Lock()
		delete(s.jobs, job.ID)
		s.mu.Unlock()
		return nil, appErrors.Internal(err, "failed to enqueue sync job")
	}
	s.logger.Info("sync job enqueued", zap.String("job_id", job.ID), zap.String("trigger", trigger))
	return &snapshot, nil
}

// Get returns a copy of the job record.
func (s *SyncJobService) Get(ctx context.Context, id string) (*models.SyncJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "sync job not found")
	}
	out := *job
	return &out, nil
}

// Handle runs the sync carried by a queue job.
func (s *SyncJobService) Handle(ctx context.Context, job jobs.Job) error {
	req, ok := job.Payload.(dto.SyncRequest)
	if !ok {
		return appErrors.Clone(appErrors.ErrValidation, "sync job payload missing")
	}
	result, err := s.runner.Run(ctx, req)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if record, ok := s.jobs[job.ID]; ok {
		record.Result = result
	}
	s.mu.Unlock()
	return nil
}

// StartSchedule enqueues a sync with the default credential every interval. A
// tick is skipped while an earlier job is still pending.
func (s *SyncJobService) StartSchedule(ctx context.Context, interval time.Duration, req dto.SyncRequest) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.scheduledTick(req)
			}
		}
	}()
	s.logger.Info("scheduled sync enabled", zap.Duration("interval", interval))
}

func (s *SyncJobService) scheduledTick(req dto.SyncRequest) {
	if s.hasPending() {
		s.logger.Debug("scheduled sync skipped; previous job pending")
		return
	}
	if _, err := s.enqueue(req, models.SyncTriggerScheduled); err != nil {
		s.logger.Warn("scheduled sync enqueue failed", zap.Error(err))
	}
}

func (s *SyncJobService) hasPending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, job := range s.jobs {
		if job.Status == models.SyncJobQueued || job.Status == models.SyncJobRunning {
			return true
		}
	}
	return false
}

func (s *SyncJobService) markRunning(job jobs.Job) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.jobs[job.ID]
	if !ok {
		return
	}
	record.Status = models.SyncJobRunning
	record.Attempts = job.Attempt + 1
	if record.StartedAt == nil {
		record.StartedAt = &now
	}
}

func (s *SyncJobService) markFinished(job jobs.Job, err error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.jobs[job.ID]
	if !ok {
		return
	}
	record.FinishedAt = &now
	if err != nil {
		record.Status = models.SyncJobFailed
		record.Error = appErrors.FromError(err).Message
		s.logger.Warn("sync job failed", zap.String("job_id", job.ID), zap.Error(err))
		return
	}
	record.Status = models.SyncJobSucceeded
	record.Error = ""
	if record.Result != nil {
		s.logger.Info("sync job finished",
			zap.String("job_id", job.ID),
			zap.Int("folders_synced", record.Result.Summary.FoldersSynced),
			zap.Bool("has_more", record.Result.HasMore))
	}
}

func (s *SyncJobService) pruneLocked() {
	if len(s.jobs) <= s.retain {
		return
	}
	finished := make([]*models.SyncJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		if job.FinishedAt != nil {
			finished = append(finished, job)
		}
	}
	sort.Slice(finished, func(i, j int) bool {
		if finished[i].EnqueuedAt != finished[j].EnqueuedAt {
			return finished[i].EnqueuedAt < finished[j].EnqueuedAt
		}
		return finished[i].ID < finished[j].ID
	})
	for _, job := range finished {
		if len(s.jobs) <= s.retain {
			return
		}
		delete(s.jobs, job.ID)
	}
}
