package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRetriesUntilSuccess(t *testing.T) {
	var calls int32
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("transient")
		}
		return nil
	}, QueueConfig{MaxRetries: 5, RetryDelay: 5 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.TryEnqueue(Job{ID: "1"}))
	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 3 }, time.Second, 5*time.Millisecond)
}

func TestQueueDropsPermanentFailure(t *testing.T) {
	var calls int32
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&calls, 1)
		return fmt.Errorf("bad payload: %w", ErrPermanent)
	}, QueueConfig{MaxRetries: 5, RetryDelay: time.Millisecond})
	q.Start(context.Background())

	require.NoError(t, q.TryEnqueue(Job{ID: "1"}))
	time.Sleep(30 * time.Millisecond)
	q.Stop()
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestQueueTryEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("test", func(context.Context, Job) error { return nil }, QueueConfig{})
	assert.ErrorIs(t, q.TryEnqueue(Job{ID: "1"}), ErrNotStarted)
}

func TestQueueTryEnqueueWhenFull(t *testing.T) {
	block := make(chan struct{})
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		select {
		case <-block:
		case <-ctx.Done():
		}
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())
	defer func() {
		close(block)
		q.Stop()
	}()

	require.NoError(t, q.TryEnqueue(Job{ID: "running"}))
	require.Eventually(t, func() bool { return q.Pending() == 0 }, time.Second, time.Millisecond)
	require.NoError(t, q.TryEnqueue(Job{ID: "buffered"}))
	assert.ErrorIs(t, q.TryEnqueue(Job{ID: "overflow"}), ErrQueueFull)
}
