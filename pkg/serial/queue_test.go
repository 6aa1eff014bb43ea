package serial

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritesRunInArrivalOrder(t *testing.T) {
	q := NewQueue("test", 16, nil)
	defer q.Close()

	var (
		mu    sync.Mutex
		order []int
	)
	release := make(chan struct{})
	firstStarted := make(chan struct{})

	errs := make(chan error, 5)
	go func() {
		errs <- q.Write(context.Background(), func(ctx context.Context) error {
			close(firstStarted)
			<-release
			mu.Lock()
			order = append(order, 0)
			mu.Unlock()
			return nil
		})
	}()
	<-firstStarted

	for i := 1; i <= 4; i++ {
		i := i
		enqueued := make(chan struct{})
		go func() {
			close(enqueued)
			errs <- q.Write(context.Background(), func(ctx context.Context) error {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return nil
			})
		}()
		<-enqueued
		// let the goroutine reach the channel send before the next one starts
		time.Sleep(5 * time.Millisecond)
	}
	close(release)

	for i := 0; i < 5; i++ {
		require.NoError(t, <-errs)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestWriteReturnsError(t *testing.T) {
	q := NewQueue("test", 1, nil)
	defer q.Close()

	boom := errors.New("boom")
	err := q.Write(context.Background(), func(ctx context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestWriteRecoversPanic(t *testing.T) {
	q := NewQueue("test", 1, nil)
	defer q.Close()

	err := q.Write(context.Background(), func(ctx context.Context) error { panic("bad") })
	require.Error(t, err)

	require.NoError(t, q.Write(context.Background(), func(ctx context.Context) error { return nil }))
}

func TestReadsWaitForRunningWrite(t *testing.T) {
	q := NewQueue("test", 1, nil)
	defer q.Close()

	writing := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = q.Write(context.Background(), func(ctx context.Context) error {
			close(writing)
			<-release
			return nil
		})
	}()
	<-writing

	readDone := make(chan struct{})
	go func() {
		_ = q.Read(context.Background(), func(ctx context.Context) error { return nil })
		close(readDone)
	}()

	select {
	case <-readDone:
		t.Fatal("read ran during write")
	case <-time.After(20 * time.Millisecond):
	}
	close(release)
	select {
	case <-readDone:
	case <-time.After(time.Second):
		t.Fatal("read never completed")
	}
}

func TestWriteAfterClose(t *testing.T) {
	q := NewQueue("test", 1, nil)
	q.Close()
	err := q.Write(context.Background(), func(ctx context.Context) error { return nil })
	assert.Error(t, err)
}
