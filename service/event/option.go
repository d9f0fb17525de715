package event

// Option customises the subscription service.
type Option func(s *Service)

// WithWorkers sets the number of consumer workers. The default of one
// preserves record order across handlers; more workers trade ordering for
// throughput.
func WithWorkers(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workers = count
		}
	}
}
