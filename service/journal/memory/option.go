package memory

import (
	qmem "github.com/viant/quorly/service/messaging/memory"
)

type Option func(*service)

// WithQueueConfig tunes the fan-out queue, for example to widen the buffer
// for a journal expected to burst past the default of 100 records.
func WithQueueConfig(config qmem.Config) Option {
	return func(s *service) { s.queueConfig = config }
}
