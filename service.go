package itinera

import (
	"time"

	"github.com/itinera/itinera/model/trip"
	"github.com/itinera/itinera/model/types"
	"github.com/itinera/itinera/service/action/proposal"
	"github.com/itinera/itinera/service/action/revision"
	"github.com/itinera/itinera/service/composer"
	"github.com/itinera/itinera/service/dao"
	sessionmem "github.com/itinera/itinera/service/dao/session/memory"
	"github.com/itinera/itinera/service/generator"
	"github.com/itinera/itinera/service/memory"
	"github.com/itinera/itinera/service/messaging"
	queuemem "github.com/itinera/itinera/service/messaging/memory"
	"github.com/itinera/itinera/service/revisor"
	"github.com/itinera/itinera/service/session"
	"github.com/itinera/itinera/service/stage"
)

// Service assembles the planning engine.
type Service struct {
	runtime *Runtime

	generator     generator.Service
	sessionDAO    dao.Service[string, trip.Session]
	memoryStore   memory.Store
	memoryPolicy  memory.Policy
	requests      messaging.Queue[stage.TaskRequest]
	responses     messaging.Queue[stage.TaskResponse]
	workers       int
	callTimeout   time.Duration
	extraServices []types.Service
}

// New creates a service. Without options it runs entirely in process: mock
// generator, in-memory sessions, queues and memory store.
func New(options ...Option) *Service {
	ret := &Service{runtime: &Runtime{}}
	ret.init(options)
	return ret
}

func (s *Service) init(options []Option) {
	for _, option := range options {
		option(s)
	}
	s.ensureBaseSetup()

	sessions := session.New(s.sessionDAO)
	registry := stage.NewRegistry(
		proposal.New(composer.New(s.generator)),
		revision.New(revisor.New(s.generator)),
	)
	for _, service := range s.extraServices {
		registry.Register(service)
	}

	s.runtime.sessions = sessions
	s.runtime.memoryStore = s.memoryStore
	s.runtime.memoryPolicy = s.memoryPolicy
	s.runtime.processor = stage.NewProcessor(stage.ProcessorConfig{WorkerCount: s.workers}, registry, sessions, s.requests, s.responses)
	s.runtime.client = stage.NewClient(s.requests, s.responses, s.callTimeout)
}

func (s *Service) ensureBaseSetup() {
	if s.generator == nil {
		s.generator = &generator.Mock{}
	}
	if s.sessionDAO == nil {
		s.sessionDAO = sessionmem.New()
	}
	if s.memoryStore == nil {
		s.memoryStore = memory.NewInMemStore()
	}
	if s.memoryPolicy == "" {
		s.memoryPolicy = memory.PolicyOnFinalize
	}
	if s.requests == nil {
		s.requests = queuemem.NewQueue[stage.TaskRequest](queuemem.DefaultConfig())
	}
	if s.responses == nil {
		s.responses = queuemem.NewQueue[stage.TaskResponse](queuemem.DefaultConfig())
	}
	if s.workers <= 0 {
		s.workers = stage.DefaultProcessorConfig().WorkerCount
	}
	if s.callTimeout <= 0 {
		s.callTimeout = time.Minute
	}
}

// Runtime returns the assembled runtime.
func (s *Service) Runtime() *Runtime {
	return s.runtime
}
