package quorly

import (
	"github.com/viant/quorly/model/types"
	"github.com/viant/quorly/policy"
	"github.com/viant/quorly/service/executor"
	"github.com/viant/quorly/service/journal"
	"github.com/viant/quorly/tracing"
	"github.com/viant/x"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the service facade.
type Option func(s *Service)

// WithConfig replaces the default configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) {
		if config != nil {
			s.config = config
		}
	}
}

// WithBoard seeds the owner registry, overriding the config's board section.
func WithBoard(required int, owners ...string) Option {
	return func(s *Service) {
		s.config.Board = BoardConfig{Owners: owners, Required: required}
	}
}

// WithPolicy sets the default proposal target policy. A policy attached to
// the call context still takes precedence.
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) { s.policy = p }
}

// WithGovernanceService renames the action service that dispatches with
// governance authority; the built-in governance action is registered under
// this name.
func WithGovernanceService(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.governanceService = name
		}
	}
}

// WithJournal replaces the journal configured by Journal.Vendor.
func WithJournal(aJournal journal.Service) Option {
	return func(s *Service) { s.journal = aJournal }
}

// WithExtensionTypes sets the extension types
func WithExtensionTypes(types ...*x.Type) Option {
	return func(s *Service) {
		s.extensionTypes = types
	}
}

// WithExtensionServices sets the extension services
func WithExtensionServices(services ...types.Service) Option {
	return func(s *Service) {
		s.extensionServices = services
	}
}

// WithExecutorOptions lets the caller supply additional options passed to
// executor.NewService (e.g. installing a dispatch listener).
func WithExecutorOptions(opts ...executor.Option) Option {
	return func(s *Service) {
		s.executorOptions = append(s.executorOptions, opts...)
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile
// is empty the stdout exporter is used; otherwise traces are written to the
// supplied file path. The function is safe to call multiple times, the first
// successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom
// SpanExporter. This enables integrations with exporters other than the
// built-in stdout exporter, for example OTLP, Jaeger or Zipkin. The function
// is safe to call multiple times, the first successful initialisation wins.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
