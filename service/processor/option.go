package processor

import (
	"github.com/viant/quorly/service/journal"
	"github.com/viant/quorly/service/messaging"
)

// Option customises the processor service.
type Option func(*Service)

// WithQueue sets the record queue to drain
func WithQueue(queue messaging.Queue[journal.Record]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithHandler sets the record handler
func WithHandler(handler Handler) Option {
	return func(s *Service) {
		s.handler = handler
	}
}

// WithWorkers sets the number of worker goroutines
func WithWorkers(count int) Option {
	return func(s *Service) {
		s.config.WorkerCount = count
	}
}

// WithConfig sets the configuration for the service
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}
