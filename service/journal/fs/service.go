// Package fs provides a filesystem backed journal. Each record is one JSON
// file named by its zero-padded sequence number, so lexical listing order is
// sequence order and the journal survives process restarts.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/quorly/internal/clock"
	"github.com/viant/quorly/internal/idgen"
	"github.com/viant/quorly/service/dao"
	"github.com/viant/quorly/service/journal"
	"github.com/viant/quorly/service/messaging"
	qmem "github.com/viant/quorly/service/messaging/memory"
)

// Service implements a filesystem-based journal
type Service struct {
	basePath string
	fs       afs.Service
	mu       sync.RWMutex
	seq      uint64
	events   messaging.Queue[journal.Record]
}

// Ensure Service implements journal.Service
var _ journal.Service = (*Service)(nil)

// Option customises the filesystem journal.
type Option func(*Service)

// WithQueue overrides the fan-out queue, e.g. a filesystem queue when
// delivery must survive restarts.
func WithQueue(queue messaging.Queue[journal.Record]) Option {
	return func(s *Service) {
		s.events = queue
	}
}

// New creates a filesystem journal rooted at basePath. An existing journal
// is picked up where it left off: the next sequence number continues after
// the highest record already on disk.
func New(basePath string, options ...Option) (*Service, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	fs := afs.New()
	ctx := context.Background()
	exists, _ := fs.Exists(ctx, basePath)
	if !exists {
		if err := fs.Create(ctx, basePath, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", err)
		}
	}

	ret := &Service{
		basePath: basePath,
		fs:       fs,
	}
	for _, option := range options {
		option(ret)
	}
	if ret.events == nil {
		ret.events = qmem.NewQueue[journal.Record](qmem.DefaultConfig())
	}
	if err := ret.recoverSeq(ctx); err != nil {
		return nil, err
	}
	return ret, nil
}

// Append stamps and persists the record, then publishes it to the fan-out
// queue. Publication is best effort; persistence is the source of truth.
func (s *Service) Append(ctx context.Context, record *journal.Record) error {
	if record == nil {
		return dao.ErrNilEntity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record.Seq = s.seq
	if record.ID == "" {
		record.ID = idgen.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = clock.Now()
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	filePath := s.recordPath(record.Seq)
	if err := s.fs.Upload(ctx, filePath, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save record to file %s: %w", filePath, err)
	}

	s.seq++
	s.publish(ctx, record)
	return nil
}

// tryPublisher is implemented by queues that can enqueue without blocking.
type tryPublisher interface {
	TryPublish(ctx context.Context, record *journal.Record) (bool, error)
}

// publish fans the record out. A full in-process buffer drops the
// notification rather than stalling the append; persistence already
// succeeded, so List still serves the record.
func (s *Service) publish(ctx context.Context, record *journal.Record) {
	if queue, ok := s.events.(tryPublisher); ok {
		_, _ = queue.TryPublish(ctx, record)
		return
	}
	_ = s.events.Publish(ctx, record)
}

// List returns all records in sequence order, filtered by parameters.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*journal.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	objects, err := s.fs.List(ctx, s.basePath, option.NewRecursive(false))
	if err != nil {
		return nil, fmt.Errorf("failed to list record files: %w", err)
	}

	var records []*journal.Record
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			return nil, fmt.Errorf("failed to read record file %s: %w", object.URL(), err)
		}
		var record journal.Record
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record from %s: %w", object.URL(), err)
		}
		if !record.Matches(parameters) {
			continue
		}
		records = append(records, &record)
	}

	// Listing order is backend dependent, restore sequence order
	sort.Slice(records, func(i, j int) bool { return records[i].Seq < records[j].Seq })
	return records, nil
}

// Queue exposes the fan-out queue.
func (s *Service) Queue() messaging.Queue[journal.Record] {
	return s.events
}

func (s *Service) recoverSeq(ctx context.Context) error {
	objects, err := s.fs.List(ctx, s.basePath, option.NewRecursive(false))
	if err != nil {
		return fmt.Errorf("failed to list record files: %w", err)
	}
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(object.Name(), ".json")
		seq, err := strconv.ParseUint(name, 10, 64)
		if err != nil {
			continue
		}
		if seq >= s.seq {
			s.seq = seq + 1
		}
	}
	return nil
}

// recordPath returns the file path for a record; names are zero padded so
// that lexical order equals sequence order.
func (s *Service) recordPath(seq uint64) string {
	return path.Join(s.basePath, fmt.Sprintf("%020d.json", seq))
}
