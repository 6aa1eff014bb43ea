package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type finished struct {
	mu   sync.Mutex
	jobs map[string]error
	done chan struct{}
}

func newFinished(expected int) *finished {
	return &finished{jobs: map[string]error{}, done: make(chan struct{}, expected)}
}

func (f *finished) record(job Job, err error) {
	f.mu.Lock()
	f.jobs[job.ID] = err
	f.mu.Unlock()
	f.done <- struct{}{}
}

func (f *finished) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-f.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for job %d", i+1)
		}
	}
}

func TestQueueRunsJobs(t *testing.T) {
	fin := newFinished(2)
	q := NewQueue("test", func(ctx context.Context, job Job) error { return nil }, QueueConfig{Workers: 2, OnFinish: fin.record})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "a"}))
	require.NoError(t, q.Enqueue(Job{ID: "b"}))
	fin.wait(t, 2)

	fin.mu.Lock()
	defer fin.mu.Unlock()
	assert.Len(t, fin.jobs, 2)
	assert.NoError(t, fin.jobs["a"])
}

func TestQueueRetriesUntilSuccess(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	fin := newFinished(1)
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts < 3 {
			return errors.New("flaky")
		}
		return nil
	}, QueueConfig{MaxRetries: 3, RetryDelay: time.Millisecond, OnFinish: fin.record})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "a"}))
	fin.wait(t, 1)
	mu.Lock()
	assert.Equal(t, 3, attempts)
	mu.Unlock()
	assert.NoError(t, fin.jobs["a"])
}

func TestQueueSkipsNonRetryableErrors(t *testing.T) {
	permanent := errors.New("login required")
	fin := newFinished(1)
	calls := 0
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		calls++
		return permanent
	}, QueueConfig{
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
		Retryable:  func(err error) bool { return !errors.Is(err, permanent) },
		OnFinish:   fin.record,
	})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "a"}))
	fin.wait(t, 1)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, fin.jobs["a"], permanent)
}

func TestQueueRejectsBeforeStart(t *testing.T) {
	q := NewQueue("test", func(ctx context.Context, job Job) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(Job{ID: "a"}))
}
