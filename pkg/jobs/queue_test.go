package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	done := make(chan Job, 1)
	q := NewQueue("test", func(_ context.Context, job Job) error {
		done <- job
		return nil
	}, QueueConfig{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	id, err := q.Enqueue(Job{Kind: "report", Payload: "r1"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	select {
	case job := <-done:
		assert.Equal(t, id, job.ID)
		assert.Equal(t, "r1", job.Payload)
		assert.False(t, job.Enqueued.IsZero())
	case <-time.After(time.Second):
		t.Fatal("job was not processed")
	}
}

func TestQueueRetriesThenReportsFailure(t *testing.T) {
	var calls int32
	failed := make(chan Job, 1)
	q := NewQueue("retry", func(context.Context, Job) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("boom")
	}, QueueConfig{
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
		OnFailure: func(_ context.Context, job Job, _ error) {
			failed <- job
		},
	})
	q.Start(context.Background())
	defer q.Stop()

	_, err := q.Enqueue(Job{ID: "j1"})
	require.NoError(t, err)

	select {
	case job := <-failed:
		assert.Equal(t, "j1", job.ID)
		assert.Equal(t, 3, job.Attempt)
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	case <-time.After(2 * time.Second):
		t.Fatal("failure hook not called")
	}
}

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("idle", func(context.Context, Job) error { return nil }, QueueConfig{})
	_, err := q.Enqueue(Job{})
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestQueueRecoversHandlerPanic(t *testing.T) {
	failed := make(chan error, 1)
	q := NewQueue("panic", func(context.Context, Job) error {
		panic("bad payload")
	}, QueueConfig{
		OnFailure: func(_ context.Context, _ Job, err error) {
			failed <- err
		},
	})
	q.Start(context.Background())
	defer q.Stop()

	_, err := q.Enqueue(Job{ID: "p1"})
	require.NoError(t, err)

	select {
	case err := <-failed:
		assert.Contains(t, err.Error(), "bad payload")
	case <-time.After(time.Second):
		t.Fatal("panicking job was not reported")
	}
}

func TestQueueBackoffDoublesAndCaps(t *testing.T) {
	q := NewQueue("backoff", func(context.Context, Job) error { return nil }, QueueConfig{RetryDelay: 10 * time.Second})
	assert.Equal(t, 10*time.Second, q.backoff(1))
	assert.Equal(t, 20*time.Second, q.backoff(2))
	assert.Equal(t, 40*time.Second, q.backoff(3))
	assert.Equal(t, maxRetryDelay, q.backoff(4))
}
