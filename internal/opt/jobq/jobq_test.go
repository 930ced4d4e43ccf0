package jobq

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobQueue_RunsSubmittedJob(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewJobQueue(4)
	q.Start(ctx)

	done := make(chan struct{})
	require.NoError(t, q.Submit("snapshot-upload", func(ctx context.Context) {
		close(done)
	}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job never ran")
	}
}

func TestJobQueue_SerializesJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewJobQueue(8)

	var mu sync.Mutex
	var order []string
	record := func(name string) func(ctx context.Context) {
		return func(ctx context.Context) {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		}
	}

	require.NoError(t, q.Submit("first", record("first")))
	require.NoError(t, q.Submit("second", record("second")))
	require.NoError(t, q.Submit("third", record("third")))

	q.Start(ctx)
	time.Sleep(500 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestJobQueue_FullQueueRejects(t *testing.T) {
	// never started, so nothing drains the channel
	q := NewJobQueue(1)

	require.NoError(t, q.Submit("fits", func(ctx context.Context) {}))

	err := q.Submit("overflow", func(ctx context.Context) {})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrJobQueueFull)
	assert.Contains(t, err.Error(), "overflow")
}

func TestJobQueue_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	q := NewJobQueue(1)
	q.Start(ctx)
	cancel()
	time.Sleep(100 * time.Millisecond)

	var ran bool
	_ = q.Submit("late", func(ctx context.Context) { ran = true })
	time.Sleep(200 * time.Millisecond)

	assert.False(t, ran, "no job runs after shutdown")
}
