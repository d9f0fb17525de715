// Package event routes journal records to topic subscribers. It consumes the
// journal's fan-out queue with a processor worker and invokes every handler
// whose subscription matches the record's topic.
package event

import (
	"context"
	"sync"

	"github.com/viant/quorly/service/journal"
	"github.com/viant/quorly/service/messaging"
	"github.com/viant/quorly/service/processor"
)

// Handler receives a matching journal record. Handlers run on the consumer
// goroutine, so they should hand off long work.
type Handler func(record *journal.Record)

// Service is a topic based subscription registry over a record queue.
type Service struct {
	queue   messaging.Queue[journal.Record]
	workers int

	mu        sync.RWMutex
	byTopic   map[journal.Topic][]Handler
	all       []Handler
	processor *processor.Service
	cancel    context.CancelFunc
	started   bool
}

// New creates a subscription service over the queue. Consumption does not
// begin until the first subscription.
func New(queue messaging.Queue[journal.Record], options ...Option) *Service {
	ret := &Service{
		queue:   queue,
		workers: 1,
		byTopic: make(map[journal.Topic][]Handler),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Subscribe registers the handler for the given topics; with no topics the
// handler receives every record. The first subscription takes over
// consumption of the queue, so records are no longer available to direct
// queue consumers.
func (s *Service) Subscribe(handler Handler, topics ...journal.Topic) error {
	if handler == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(topics) == 0 {
		s.all = append(s.all, handler)
	}
	for _, topic := range topics {
		s.byTopic[topic] = append(s.byTopic[topic], handler)
	}
	return s.ensureStarted()
}

// ensureStarted launches the queue consumer; the caller holds s.mu.
func (s *Service) ensureStarted() error {
	if s.started {
		return nil
	}
	proc, err := processor.New(
		processor.WithQueue(s.queue),
		processor.WithHandler(s.dispatch),
		processor.WithWorkers(s.workers),
	)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := proc.Start(ctx); err != nil {
		cancel()
		return err
	}
	s.processor = proc
	s.cancel = cancel
	s.started = true
	return nil
}

// dispatch fans a consumed record out to the matching handlers.
func (s *Service) dispatch(ctx context.Context, record *journal.Record) error {
	if record == nil {
		return nil
	}
	s.mu.RLock()
	handlers := append([]Handler(nil), s.all...)
	handlers = append(handlers, s.byTopic[record.Topic]...)
	s.mu.RUnlock()

	for _, handler := range handlers {
		handler(record)
	}
	return nil
}

// Stop halts queue consumption and waits for the in-flight record to finish.
// Subscriptions survive a stop; the next Subscribe resumes consumption.
func (s *Service) Stop() {
	s.mu.Lock()
	proc, cancel := s.processor, s.cancel
	s.processor, s.cancel, s.started = nil, nil, false
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if proc != nil {
		proc.Shutdown()
	}
}
