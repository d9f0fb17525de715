// Package memory provides the in-process journal backing used by default.
package memory

import (
	"context"
	"sync"

	"github.com/viant/quorly/internal/clock"
	"github.com/viant/quorly/internal/idgen"
	"github.com/viant/quorly/service/dao"
	"github.com/viant/quorly/service/dao/store"
	"github.com/viant/quorly/service/journal"
	"github.com/viant/quorly/service/messaging"
	qmem "github.com/viant/quorly/service/messaging/memory"
)

type service struct {
	mu      sync.Mutex
	seq     uint64
	records dao.Service[uint64, journal.Record]

	// fan-out queue
	events *qmem.Queue[journal.Record]

	queueConfig qmem.Config
}

// key selector – grab Seq field
func recordKey(r *journal.Record) uint64 { return r.Seq }

// New creates an in-memory journal.
func New(options ...Option) journal.Service {
	ret := &service{
		records:     store.NewMemoryStore[uint64, journal.Record](recordKey),
		queueConfig: qmem.DefaultConfig(),
	}
	for _, option := range options {
		option(ret)
	}
	ret.events = qmem.NewQueue[journal.Record](ret.queueConfig)
	return ret
}

// Append stamps and stores the record, then publishes it to the fan-out
// queue. Publication is best effort; a full queue never fails the append.
func (s *service) Append(ctx context.Context, record *journal.Record) error {
	if record == nil {
		return dao.ErrNilEntity
	}
	s.mu.Lock()
	record.Seq = s.seq
	s.seq++
	s.mu.Unlock()

	if record.ID == "" {
		record.ID = idgen.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = clock.Now()
	}
	if err := s.records.Save(ctx, record); err != nil {
		return err
	}
	// Dropped fan-out on a full buffer loses a notification, never a record;
	// List still serves the full history.
	_, _ = s.events.TryPublish(ctx, record)
	return nil
}

// List returns records in sequence order, filtered by parameters.
func (s *service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*journal.Record, error) {
	s.mu.Lock()
	count := s.seq
	s.mu.Unlock()

	var result []*journal.Record
	for seq := uint64(0); seq < count; seq++ {
		record, err := s.records.Load(ctx, seq)
		if err != nil {
			return nil, err
		}
		if record == nil || !record.Matches(parameters) {
			continue
		}
		result = append(result, record)
	}
	return result, nil
}

// Queue exposes the fan-out queue.
func (s *service) Queue() messaging.Queue[journal.Record] {
	return s.events
}

var _ journal.Service = (*service)(nil)
