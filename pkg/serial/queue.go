package serial

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

type request struct {
	ctx  context.Context
	fn   func(context.Context) error
	done chan error
}

// Queue runs writes one at a time in arrival order. Reads share access with each
// other and wait while a write runs; once a write is dequeued new reads block.
// A write must not call Write or Read on the same queue.
type Queue struct {
	name   string
	logger *zap.Logger

	rw       sync.RWMutex
	requests chan request
	ctx      context.Context
	cancel   context.CancelFunc
	stopped  chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// NewQueue starts the single writer goroutine.
func NewQueue(name string, bufferSize int, logger *zap.Logger) *Queue {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		name:     name,
		logger:   logger,
		requests: make(chan request, bufferSize),
		ctx:      ctx,
		cancel:   cancel,
		stopped:  make(chan struct{}),
	}
	q.wg.Add(1)
	go q.worker()
	q.logger.Sugar().Debugw("write queue started", "queue", name)
	return q
}

// Write enqueues fn and waits for its result.
func (q *Queue) Write(ctx context.Context, fn func(context.Context) error) error {
	if q.ctx.Err() != nil {
		return fmt.Errorf("write queue %s stopped", q.name)
	}
	req := request{ctx: ctx, fn: fn, done: make(chan error, 1)}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-q.ctx.Done():
		return fmt.Errorf("write queue %s stopped", q.name)
	case q.requests <- req:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-req.done:
		return err
	case <-q.stopped:
		select {
		case err := <-req.done:
			return err
		default:
			return fmt.Errorf("write queue %s stopped", q.name)
		}
	}
}

// Read runs fn under the shared lock.
func (q *Queue) Read(ctx context.Context, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.rw.RLock()
	defer q.rw.RUnlock()
	return fn(ctx)
}

// Close stops the writer after the running write finishes. Queued writes fail.
func (q *Queue) Close() {
	q.once.Do(func() {
		q.cancel()
		q.wg.Wait()
		q.logger.Sugar().Debugw("write queue stopped", "queue", q.name)
	})
}

func (q *Queue) worker() {
	defer q.wg.Done()
	defer close(q.stopped)
	for {
		select {
		case <-q.ctx.Done():
			q.drain()
			return
		case req := <-q.requests:
			req.done <- q.run(req)
		}
	}
}

func (q *Queue) run(req request) (err error) {
	if ctxErr := req.ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	q.rw.Lock()
	defer q.rw.Unlock()
	defer func() {
		if r := recover(); r != nil {
			q.logger.Sugar().Errorw("write panicked", "queue", q.name, "panic", r)
			err = fmt.Errorf("write queue %s: panic: %v", q.name, r)
		}
	}()
	return req.fn(req.ctx)
}

func (q *Queue) drain() {
	for {
		select {
		case req := <-q.requests:
			req.done <- fmt.Errorf("write queue %s stopped", q.name)
		default:
			return
		}
	}
}
