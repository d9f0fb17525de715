package processor

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/quorly/service/journal"
	"github.com/viant/quorly/service/messaging/memory"
)

func waitFor(t *testing.T, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !condition() {
		if time.Now().After(deadline) {
			t.Fatalf("condition was not met before the deadline")
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestServiceProcess(t *testing.T) {
	queue := memory.NewQueue[journal.Record](memory.Config{
		MaxRetries:  2,
		RetryDelay:  5 * time.Millisecond,
		QueueBuffer: 16,
	})

	var processed int32
	srv, err := New(
		WithQueue(queue),
		WithHandler(func(ctx context.Context, record *journal.Record) error {
			atomic.AddInt32(&processed, 1)
			return nil
		}),
		WithWorkers(2),
	)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, srv.Start(ctx))
	defer srv.Shutdown()

	for i := 0; i < 5; i++ {
		record := &journal.Record{Seq: uint64(i), Topic: journal.TopicProposed}
		require.NoError(t, queue.Publish(ctx, record))
	}

	waitFor(t, func() bool { return atomic.LoadInt32(&processed) == 5 })
}

func TestServiceRetry(t *testing.T) {
	queue := memory.NewQueue[journal.Record](memory.Config{
		MaxRetries:  3,
		RetryDelay:  time.Millisecond,
		QueueBuffer: 16,
	})

	var attempts int32
	srv, err := New(
		WithQueue(queue),
		WithHandler(func(ctx context.Context, record *journal.Record) error {
			if atomic.AddInt32(&attempts, 1) == 1 {
				return fmt.Errorf("transient failure")
			}
			return nil
		}),
		WithWorkers(1),
	)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, srv.Start(ctx))
	defer srv.Shutdown()

	record := &journal.Record{Seq: 1, Topic: journal.TopicConfirmed}
	require.NoError(t, queue.Publish(ctx, record))

	// first delivery fails, the queue redelivers
	waitFor(t, func() bool { return atomic.LoadInt32(&attempts) >= 2 })
}

func TestServiceNewErrors(t *testing.T) {
	queue := memory.NewQueue[journal.Record](memory.DefaultConfig())
	handler := func(ctx context.Context, record *journal.Record) error { return nil }

	testCases := []struct {
		description string
		options     []Option
	}{
		{
			description: "missing queue",
			options:     []Option{WithHandler(handler)},
		},
		{
			description: "missing handler",
			options:     []Option{WithQueue(queue)},
		},
	}
	for _, testCase := range testCases {
		_, err := New(testCase.options...)
		assert.Error(t, err, testCase.description)
	}
}
