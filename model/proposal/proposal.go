// Package proposal defines the unit of work a council decides on: an
// immutable description of one action plus its mutable confirmation state.
package proposal

import (
	"time"

	"github.com/viant/quorly/internal/clock"
)

// Proposal describes one pending action. ID, Target, Value and Payload are
// fixed at creation; only Confirmations and State mutate afterwards.
type Proposal struct {
	ID            uint64     `json:"id"`
	Target        string     `json:"target"`          // "service.method" dispatch selector
	Value         uint64     `json:"value,omitempty"` // opaque amount handed to the action
	Payload       []byte     `json:"payload,omitempty"`
	Confirmations int        `json:"confirmations"`
	State         State      `json:"state"`
	CreatedAt     time.Time  `json:"createdAt"`
	ExecutedAt    *time.Time `json:"executedAt,omitempty"`
}

// New creates a pending proposal. The payload is copied so later mutation of
// the caller's slice cannot alter the stored action.
func New(id uint64, target string, value uint64, payload []byte) *Proposal {
	var stored []byte
	if payload != nil {
		stored = make([]byte, len(payload))
		copy(stored, payload)
	}
	return &Proposal{
		ID:        id,
		Target:    target,
		Value:     value,
		Payload:   stored,
		State:     StatePending,
		CreatedAt: clock.Now(),
	}
}

// Executed reports whether the proposal reached its terminal state.
func (p *Proposal) Executed() bool { return p.State.IsExecuted() }

// MarkExecuted flips the proposal to its terminal state. The engine calls it
// before dispatching so that re-entrant calls observe the proposal as done.
func (p *Proposal) MarkExecuted() {
	now := clock.Now()
	p.ExecutedAt = &now
	p.State = StateExecuted
}

// ClearExecuted undoes MarkExecuted. Used only to roll back a dispatch that
// reported failure; the proposal becomes pending again with its
// confirmations intact.
func (p *Proposal) ClearExecuted() {
	p.ExecutedAt = nil
	p.State = StatePending
}

// Clone returns an independent copy, including the payload bytes, so views
// can hand proposals out without exposing internal state to mutation.
func (p *Proposal) Clone() *Proposal {
	if p == nil {
		return nil
	}
	out := *p
	if p.Payload != nil {
		out.Payload = make([]byte, len(p.Payload))
		copy(out.Payload, p.Payload)
	}
	if p.ExecutedAt != nil {
		at := *p.ExecutedAt
		out.ExecutedAt = &at
	}
	return &out
}
