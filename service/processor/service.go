package processor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/viant/quorly/service/journal"
	"github.com/viant/quorly/service/messaging"
)

// Handler processes a single journal record. Returning an error nacks the
// record; whether it is redelivered is the queue's decision.
type Handler func(ctx context.Context, record *journal.Record) error

// Config represents processor service configuration
type Config struct {
	// WorkerCount is the number of workers draining the queue
	WorkerCount int
}

// DefaultConfig returns the default processor configuration
func DefaultConfig() Config {
	return Config{
		WorkerCount: 2,
	}
}

// Service drains a journal record queue with a pool of workers.
type Service struct {
	config  Config
	queue   messaging.Queue[journal.Record]
	handler Handler

	workers  []*worker
	workerWg sync.WaitGroup
	started  bool
	mu       sync.Mutex
}

type worker struct {
	id       int
	service  *Service
	ctx      context.Context
	cancelFn context.CancelFunc
}

// New creates a new processor service
func New(options ...Option) (*Service, error) {
	s := &Service{
		config: DefaultConfig(),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.queue == nil {
		return nil, fmt.Errorf("record queue is required")
	}
	if s.handler == nil {
		return nil, fmt.Errorf("handler is required")
	}
	if s.config.WorkerCount < 1 {
		s.config.WorkerCount = 1
	}
	return s, nil
}

// Start launches the worker goroutines. It is a no-op when already started.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	for i := 0; i < s.config.WorkerCount; i++ {
		workerCtx, cancel := context.WithCancel(ctx)
		worker := &worker{
			id:       i,
			service:  s,
			ctx:      workerCtx,
			cancelFn: cancel,
		}
		s.workers = append(s.workers, worker)
		s.workerWg.Add(1)
		go worker.run()
	}
	s.started = true
	return nil
}

// run processes records from the queue
func (w *worker) run() {
	defer w.service.workerWg.Done()

	for {
		// Block until we either get a record or the context is cancelled.
		msg, err := w.service.queue.Consume(w.ctx)
		if err != nil {
			// Context was cancelled, graceful shutdown.
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			// Transient error (e.g. queue closed); back off a bit.
			time.Sleep(100 * time.Millisecond)
			continue
		}
		if msg == nil {
			// Non-blocking backends return no message when the queue is empty
			select {
			case <-w.ctx.Done():
				return
			case <-time.After(50 * time.Millisecond):
			}
			continue
		}
		if pErr := w.service.processMessage(w.ctx, msg); pErr != nil {
			log.Printf("processor worker %d: failed to process record: %v", w.id, pErr)
		}
	}
}

// processMessage hands a single record to the handler and acknowledges the
// outcome.
func (s *Service) processMessage(ctx context.Context, message messaging.Message[journal.Record]) error {
	record := message.T()
	if record == nil {
		return message.Ack()
	}
	if err := s.handler(ctx, record); err != nil {
		return message.Nack(err)
	}
	return message.Ack()
}

// Shutdown stops the workers and waits for them to drain.
func (s *Service) Shutdown() {
	s.mu.Lock()
	workers := s.workers
	s.workers = nil
	s.started = false
	s.mu.Unlock()

	for _, worker := range workers {
		worker.cancelFn()
	}
	s.workerWg.Wait()
}
