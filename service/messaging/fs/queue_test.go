package fs

import (
	"context"
	"fmt"
	"os"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
)

type testEvent struct {
	Topic    string `json:"topic"`
	Proposal uint64 `json:"proposal"`
	Party    string `json:"party"`
}

func TestQueue(t *testing.T) {
	tempDir, err := os.MkdirTemp("/tmp", "queue-test")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	defer os.RemoveAll(tempDir)

	fs := afs.New()
	ctx := context.Background()

	config := QueueConfig{
		BasePath:   tempDir,
		MaxRetries: 2,
		RetryDelay: 10 * time.Millisecond,
	}

	queue, err := NewQueue[testEvent](fs, config)
	assert.NoError(t, err)
	assert.NotNil(t, queue)

	dirs := []string{
		queue.pendingDir,
		queue.processingDir,
		queue.completedDir,
		queue.failedDir,
		queue.dlqDir,
	}

	for _, dir := range dirs {
		exists, err := fs.Exists(ctx, dir)
		assert.NoError(t, err)
		assert.True(t, exists, fmt.Sprintf("Directory %s should exist", dir))
	}

	testCases := []testEvent{
		{Topic: "proposal.created", Proposal: 1, Party: "alice"},
		{Topic: "proposal.confirmed", Proposal: 1, Party: "bob"},
		{Topic: "proposal.executed", Proposal: 1},
	}

	for _, payload := range testCases {
		err := queue.Publish(ctx, &payload)
		assert.NoError(t, err)
	}

	objects, err := fs.List(ctx, queue.pendingDir)
	assert.NoError(t, err)
	assert.Equal(t, 3, len(objects)-1, "Should have 3 files in pending directory")

	for i := 0; i < len(testCases); i++ {
		message, err := queue.Consume(ctx)
		assert.NoError(t, err)
		assert.NotNil(t, message)

		payload := message.T()
		assert.NotNil(t, payload)
		assert.Equal(t, uint64(1), payload.Proposal)

		err = message.Ack()
		assert.NoError(t, err)

		time.Sleep(10 * time.Millisecond)
		completedObjects, err := fs.List(ctx, queue.completedDir)
		assert.NoError(t, err)
		assert.Equal(t, i+1, len(completedObjects)-1, "Should have completed objects")
	}

	// Failure and retry path
	payload := testEvent{Topic: "proposal.execution_failed", Proposal: 2}
	err = queue.Publish(ctx, &payload)
	assert.NoError(t, err)

	message, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.NotNil(t, message)

	// Nack moves the message to failed
	err = message.Nack(nil)
	assert.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	failedObjects, err := fs.List(ctx, queue.failedDir)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(failedObjects)-1, "Should have one file in failed directory")

	// Failed messages are redelivered ahead of pending ones
	message, err = queue.Consume(ctx)
	assert.NoError(t, err)
	assert.NotNil(t, message)

	err = message.Nack(nil)
	assert.NoError(t, err)

	message, err = queue.Consume(ctx)
	assert.NoError(t, err)
	assert.NotNil(t, message)

	// Third nack exceeds MaxRetries and lands in the DLQ
	err = message.Nack(nil)
	assert.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	dlqObjects, err := fs.List(ctx, queue.dlqDir)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(dlqObjects)-1, "Should have one file in DLQ directory")

	message, err = queue.Consume(ctx)
	assert.NoError(t, err)
	assert.Nil(t, message, "Should have no more messages to consume")
}

func TestQueueInitialization(t *testing.T) {
	fs := afs.New()
	_, err := NewQueue[testEvent](fs, QueueConfig{})
	assert.Error(t, err, "Should error with empty BasePath")

	tempDir := path.Join(os.TempDir(), fmt.Sprintf("queue-init-test-%d", time.Now().UnixNano()))
	config := QueueConfig{
		BasePath:   tempDir,
		MaxRetries: 2,
	}

	queue, err := NewQueue[testEvent](fs, config)
	assert.NoError(t, err)
	assert.NotNil(t, queue)

	os.RemoveAll(tempDir)
}
