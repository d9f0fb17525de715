package progress

import (
	"sync"
	"time"

	"github.com/viant/quorly/service/journal"
)

// Delta represents an incremental counter change derived from one journal
// record. The fields are signed and therefore can be either positive
// (increment) or negative (decrement).
type Delta struct {
	Proposed        int
	Confirmed       int
	Revoked         int
	Executed        int
	ExecutionFailed int
	BoardChanged    int
	Deposited       int
}

// Snapshot is a point-in-time copy of the aggregated counters.
type Snapshot struct {
	StartedAt       time.Time
	Proposed        int
	Confirmed       int
	Revoked         int
	Executed        int
	ExecutionFailed int
	BoardChanged    int
	Deposited       int
}

// Pending returns the number of proposals that are neither executed nor
// failed their last execution attempt.
func (s Snapshot) Pending() int {
	return s.Proposed - s.Executed
}

// Progress keeps aggregated lifecycle counters for one engine. It is safe
// for concurrent use.
type Progress struct {
	mu       sync.Mutex
	snapshot Snapshot
	onChange func(Snapshot)
}

// New creates an empty tracker.
func New() *Progress {
	return &Progress{snapshot: Snapshot{StartedAt: time.Now()}}
}

// Update applies the supplied delta to the tracker. If an onChange callback
// has been registered it is invoked with a copy of the updated counters
// outside the critical section, so the callback can perform slow operations
// (e.g. JSON encoding, I/O) without blocking record delivery.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.snapshot.Proposed += d.Proposed
	p.snapshot.Confirmed += d.Confirmed
	p.snapshot.Revoked += d.Revoked
	p.snapshot.Executed += d.Executed
	p.snapshot.ExecutionFailed += d.ExecutionFailed
	p.snapshot.BoardChanged += d.BoardChanged
	p.snapshot.Deposited += d.Deposited

	snapshot := p.snapshot
	cb := p.onChange
	p.mu.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy of the counters suitable for read-only inspection.
func (p *Progress) Snapshot() Snapshot {
	if p == nil {
		return Snapshot{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot
}

// OnChange registers a callback invoked after every Update. Passing nil
// disables the callback. Only one callback can be active; subsequent calls
// overwrite the previous value.
func (p *Progress) OnChange(cb func(Snapshot)) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.onChange = cb
	p.mu.Unlock()
}

// Observe maps a journal record to a counter update. Wire it as a journal
// subscriber to keep the tracker current.
func (p *Progress) Observe(record *journal.Record) {
	if p == nil || record == nil {
		return
	}
	var d Delta
	switch record.Topic {
	case journal.TopicProposed:
		d.Proposed = 1
	case journal.TopicConfirmed:
		d.Confirmed = 1
	case journal.TopicRevoked:
		d.Revoked = 1
	case journal.TopicExecuted:
		d.Executed = 1
	case journal.TopicExecutionFailed:
		d.ExecutionFailed = 1
	case journal.TopicOwnerAdded, journal.TopicOwnerRemoved, journal.TopicOwnerReplaced, journal.TopicThresholdChanged:
		d.BoardChanged = 1
	case journal.TopicDeposited:
		d.Deposited = 1
	default:
		return
	}
	p.Update(d)
}
