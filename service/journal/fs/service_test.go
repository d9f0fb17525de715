package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/quorly/service/journal"
	qfs "github.com/viant/quorly/service/messaging/fs"
)

func TestServiceAppendAndList(t *testing.T) {
	tempDir, err := os.MkdirTemp("/tmp", "journal-test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	ctx := context.Background()
	aJournal, err := New(tempDir)
	require.NoError(t, err)

	entries := []*journal.Record{
		{Topic: journal.TopicProposed, Proposal: journal.ProposalID(0), Party: "alice"},
		{Topic: journal.TopicConfirmed, Proposal: journal.ProposalID(0), Party: "bob"},
		{Topic: journal.TopicDeposited, Party: "carol", Data: map[string]interface{}{"amount": 50}},
	}
	for _, entry := range entries {
		require.NoError(t, aJournal.Append(ctx, entry))
	}

	records, err := aJournal.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, record := range records {
		assert.Equal(t, uint64(i), record.Seq)
		assert.NotEmpty(t, record.ID)
		assert.False(t, record.CreatedAt.IsZero())
	}
	assert.Equal(t, journal.TopicDeposited, records[2].Topic)

	confirmed, err := aJournal.List(ctx, journal.ByTopic(journal.TopicConfirmed))
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, journal.Topic("proposal.confirmed"), confirmed[0].Topic)
}

func TestServiceRecoversSequence(t *testing.T) {
	tempDir, err := os.MkdirTemp("/tmp", "journal-recovery-test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	ctx := context.Background()
	first, err := New(tempDir)
	require.NoError(t, err)
	require.NoError(t, first.Append(ctx, &journal.Record{Topic: journal.TopicProposed, Proposal: journal.ProposalID(0)}))
	require.NoError(t, first.Append(ctx, &journal.Record{Topic: journal.TopicExecuted, Proposal: journal.ProposalID(0)}))

	// A journal reopened over the same directory continues the sequence
	second, err := New(tempDir)
	require.NoError(t, err)
	record := &journal.Record{Topic: journal.TopicDeposited, Party: "dave"}
	require.NoError(t, second.Append(ctx, record))
	assert.Equal(t, uint64(2), record.Seq)

	records, err := second.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestServiceValidation(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)

	tempDir, err := os.MkdirTemp("/tmp", "journal-validation-test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	aJournal, err := New(tempDir)
	require.NoError(t, err)
	assert.Error(t, aJournal.Append(context.Background(), nil))
}

func TestServiceWithDurableQueue(t *testing.T) {
	tempDir, err := os.MkdirTemp("/tmp", "journal-queue-test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	queue, err := qfs.NewQueue[journal.Record](afs.New(), qfs.QueueConfig{
		BasePath:   filepath.Join(tempDir, "queue"),
		MaxRetries: 1,
		RetryDelay: 10 * time.Millisecond,
	})
	require.NoError(t, err)

	ctx := context.Background()
	aJournal, err := New(filepath.Join(tempDir, "records"), WithQueue(queue))
	require.NoError(t, err)
	require.NoError(t, aJournal.Append(ctx, &journal.Record{Topic: journal.TopicProposed, Proposal: journal.ProposalID(0), Party: "alice"}))

	msg, err := aJournal.Queue().Consume(ctx)
	require.NoError(t, err)
	require.NotNil(t, msg)
	record := msg.T()
	assert.Equal(t, journal.TopicProposed, record.Topic)
	assert.NoError(t, msg.Ack())
}
