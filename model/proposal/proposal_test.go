package proposal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/viant/quorly/internal/clock"
)

func TestNewCopiesPayload(t *testing.T) {
	payload := []byte(`{"message":"hi"}`)
	p := New(3, "printer.print", 0, payload)

	payload[0] = 'X'
	assert.Equal(t, byte('{'), p.Payload[0])
	assert.Equal(t, uint64(3), p.ID)
	assert.Equal(t, StatePending, p.State)
	assert.Equal(t, 0, p.Confirmations)
	assert.Nil(t, p.ExecutedAt)
}

func TestNewNilPayload(t *testing.T) {
	p := New(0, "nop.nop", 0, nil)
	assert.Nil(t, p.Payload)
}

func TestMarkAndClearExecuted(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	restore := clock.Freeze(at)
	defer restore()

	p := New(0, "nop.nop", 0, nil)
	assert.False(t, p.Executed())

	p.MarkExecuted()
	assert.True(t, p.Executed())
	assert.Equal(t, StateExecuted, p.State)
	if assert.NotNil(t, p.ExecutedAt) {
		assert.Equal(t, at, *p.ExecutedAt)
	}

	p.ClearExecuted()
	assert.False(t, p.Executed())
	assert.Equal(t, StatePending, p.State)
	assert.Nil(t, p.ExecutedAt)
}

func TestCloneIndependence(t *testing.T) {
	p := New(7, "governance.addOwner", 0, []byte(`{"owner":"dave"}`))
	p.Confirmations = 2
	p.MarkExecuted()

	clone := p.Clone()
	clone.Payload[0] = 'X'
	clone.Confirmations = 99
	*clone.ExecutedAt = clone.ExecutedAt.Add(time.Hour)

	assert.Equal(t, byte('{'), p.Payload[0])
	assert.Equal(t, 2, p.Confirmations)
	assert.NotEqual(t, *clone.ExecutedAt, *p.ExecutedAt)

	var nilProposal *Proposal
	assert.Nil(t, nilProposal.Clone())
}
