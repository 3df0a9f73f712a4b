package itinera

import (
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/itinera/itinera/model/trip"
	"github.com/itinera/itinera/model/types"
	"github.com/itinera/itinera/service/dao"
	"github.com/itinera/itinera/service/generator"
	"github.com/itinera/itinera/service/memory"
	"github.com/itinera/itinera/service/messaging"
	"github.com/itinera/itinera/service/stage"
	"github.com/itinera/itinera/tracing"
)

// Option customises service assembly.
type Option func(s *Service)

// WithGenerator sets the content generator.
func WithGenerator(gen generator.Service) Option {
	return func(s *Service) { s.generator = gen }
}

// WithSessionDAO sets the session persistence backend.
func WithSessionDAO(sessionDAO dao.Service[string, trip.Session]) Option {
	return func(s *Service) { s.sessionDAO = sessionDAO }
}

// WithMemoryStore sets the long-term memory backend.
func WithMemoryStore(store memory.Store) Option {
	return func(s *Service) { s.memoryStore = store }
}

// WithMemoryPolicy sets when sessions are written to memory.
func WithMemoryPolicy(policy memory.Policy) Option {
	return func(s *Service) { s.memoryPolicy = policy }
}

// WithQueues sets the stage request and response queues.
func WithQueues(requests messaging.Queue[stage.TaskRequest], responses messaging.Queue[stage.TaskResponse]) Option {
	return func(s *Service) {
		s.requests = requests
		s.responses = responses
	}
}

// WithWorkers sets the stage worker count.
func WithWorkers(count int) Option {
	return func(s *Service) { s.workers = count }
}

// WithCallTimeout bounds how long a turn waits for the stage.
func WithCallTimeout(timeout time.Duration) Option {
	return func(s *Service) { s.callTimeout = timeout }
}

// WithActionServices registers extra stage action services.
func WithActionServices(services ...types.Service) Option {
	return func(s *Service) { s.extraServices = append(s.extraServices, services...) }
}

// WithTracing configures OpenTelemetry tracing with the stdout exporter,
// writing to outputFile or os.Stdout when empty.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures tracing with a custom SpanExporter.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
