package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bilishelf-api/internal/dto"
	"github.com/noah-isme/bilishelf-api/internal/models"
	appErrors "github.com/noah-isme/bilishelf-api/pkg/errors"
	"github.com/noah-isme/bilishelf-api/pkg/jobs"
)

type syncRunnerStub struct {
	mu     sync.Mutex
	result *models.SyncResult
	errs   []error
	calls  int
}

func (r *syncRunnerStub) Run(ctx context.Context, req dto.SyncRequest) (*models.SyncResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if len(r.errs) > 0 {
		err := r.errs[0]
		r.errs = r.errs[1:]
		return nil, err
	}
	return r.result, nil
}

type recordingDispatcher struct {
	jobs []jobs.Job
	err  error
}

func (d *recordingDispatcher) Enqueue(job jobs.Job) error {
	if d.err != nil {
		return d.err
	}
	d.jobs = append(d.jobs, job)
	return nil
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("job-%d", n)
	}
}

func TestSyncJobLifecycle(t *testing.T) {
	runner := &syncRunnerStub{result: &models.SyncResult{Summary: models.SyncSummary{FoldersSynced: 2}}}
	clock := &testClock{now: 1000}
	svc := NewSyncJobService(runner, SyncJobServiceConfig{Now: clock.Now, NewID: sequentialIDs()})
	dispatcher := &recordingDispatcher{}
	svc.AttachQueue(dispatcher)
	hooks := svc.QueueConfig(jobs.QueueConfig{})
	ctx := context.Background()

	job, err := svc.Enqueue(ctx, dto.SyncRequest{MaxFolders: 3})
	require.NoError(t, err)
	assert.Equal(t, "job-1", job.ID)
	assert.Equal(t, models.SyncJobQueued, job.Status)
	assert.Equal(t, models.SyncTriggerManual, job.Trigger)
	require.Len(t, dispatcher.jobs, 1)
	assert.Equal(t, dto.SyncRequest{MaxFolders: 3}, dispatcher.jobs[0].Payload)

	hooks.OnStart(dispatcher.jobs[0])
	running, err := svc.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncJobRunning, running.Status)
	assert.Equal(t, 1, running.Attempts)

	runErr := svc.Handle(ctx, dispatcher.jobs[0])
	hooks.OnFinish(dispatcher.jobs[0], runErr)
	done, err := svc.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncJobSucceeded, done.Status)
	require.NotNil(t, done.Result)
	assert.Equal(t, 2, done.Result.Summary.FoldersSynced)
	require.NotNil(t, done.FinishedAt)
}

func TestSyncJobFailureRecordsMessage(t *testing.T) {
	runner := &syncRunnerStub{errs: []error{appErrors.Clone(appErrors.ErrLoginRequired, "")}}
	svc := NewSyncJobService(runner, SyncJobServiceConfig{NewID: sequentialIDs()})
	dispatcher := &recordingDispatcher{}
	svc.AttachQueue(dispatcher)
	hooks := svc.QueueConfig(jobs.QueueConfig{})

	job, err := svc.Enqueue(context.Background(), dto.SyncRequest{})
	require.NoError(t, err)
	runErr := svc.Handle(context.Background(), dispatcher.jobs[0])
	assert.False(t, hooks.Retryable(runErr))
	hooks.OnFinish(dispatcher.jobs[0], runErr)

	got, err := svc.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncJobFailed, got.Status)
	assert.Equal(t, appErrors.ErrLoginRequired.Message, got.Error)
}

func TestSyncJobEnqueueErrors(t *testing.T) {
	svc := NewSyncJobService(&syncRunnerStub{}, SyncJobServiceConfig{})
	_, err := svc.Enqueue(context.Background(), dto.SyncRequest{})
	assert.ErrorIs(t, err, appErrors.ErrInternal)

	svc.AttachQueue(&recordingDispatcher{err: errors.New("queue full")})
	_, err = svc.Enqueue(context.Background(), dto.SyncRequest{})
	assert.ErrorIs(t, err, appErrors.ErrInternal)

	_, err = svc.Enqueue(context.Background(), dto.SyncRequest{Offset: -1})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestRetryableSyncError(t *testing.T) {
	assert.True(t, RetryableSyncError(appErrors.Clone(appErrors.ErrRemoteUnavailable, "")))
	assert.True(t, RetryableSyncError(errors.New("disk full")))
	assert.False(t, RetryableSyncError(appErrors.Clone(appErrors.ErrRiskControlled, "")))
	assert.False(t, RetryableSyncError(appErrors.Validation(errors.New("bad"), "invalid")))
}

func TestSyncJobScheduledTickSkipsWhilePending(t *testing.T) {
	svc := NewSyncJobService(&syncRunnerStub{}, SyncJobServiceConfig{NewID: sequentialIDs()})
	dispatcher := &recordingDispatcher{}
	svc.AttachQueue(dispatcher)

	svc.scheduledTick(dto.SyncRequest{})
	svc.scheduledTick(dto.SyncRequest{})
	require.Len(t, dispatcher.jobs, 1)

	svc.QueueConfig(jobs.QueueConfig{}).OnFinish(dispatcher.jobs[0], nil)
	svc.scheduledTick(dto.SyncRequest{})
	assert.Len(t, dispatcher.jobs, 2)

	job, err := svc.Get(context.Background(), "job-2")
	require.NoError(t, err)
	assert.Equal(t, models.SyncTriggerScheduled, job.Trigger)
}

func TestSyncJobPruneKeepsRecentRecords(t *testing.T) {
	clock := &testClock{now: 1}
	svc := NewSyncJobService(&syncRunnerStub{}, SyncJobServiceConfig{Now: clock.Now, NewID: sequentialIDs(), Retain: 2})
	dispatcher := &recordingDispatcher{}
	svc.AttachQueue(dispatcher)
	hooks := svc.QueueConfig(jobs.QueueConfig{})

	for i := 0; i < 3; i++ {
		_, err := svc.Enqueue(context.Background(), dto.SyncRequest{})
		require.NoError(t, err)
		hooks.OnFinish(dispatcher.jobs[i], nil)
	}

	_, err := svc.Get(context.Background(), "job-1")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	_, err = svc.Get(context.Background(), "job-3")
	assert.NoError(t, err)
}

func TestSyncJobRunsOnQueueWithRetry(t *testing.T) {
	runner := &syncRunnerStub{
		errs:   []error{appErrors.Clone(appErrors.ErrRemoteUnavailable, "")},
		result: &models.SyncResult{},
	}
	svc := NewSyncJobService(runner, SyncJobServiceConfig{})
	queue := jobs.NewQueue("sync", svc.Handle, svc.QueueConfig(jobs.QueueConfig{MaxRetries: 2, RetryDelay: time.Millisecond}))
	svc.AttachQueue(queue)
	queue.Start(context.Background())
	defer queue.Stop()

	job, err := svc.Enqueue(context.Background(), dto.SyncRequest{})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		got, err := svc.Get(context.Background(), job.ID)
		return err == nil && got.Status == models.SyncJobSucceeded
	}, 2*time.Second, 5*time.Millisecond)

	got, _ := svc.Get(context.Background(), job.ID)
	assert.Equal(t, 2, got.Attempts)
}
