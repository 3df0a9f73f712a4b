package stage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/itinera/itinera/service/messaging"
	"github.com/itinera/itinera/service/session"
	"github.com/itinera/itinera/tracing"
)

// ProcessorConfig configures the stage worker pool.
type ProcessorConfig struct {
	WorkerCount int
}

// DefaultProcessorConfig returns the default pool configuration.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{WorkerCount: 5}
}

// Processor consumes task requests, runs the named action against the
// resolved session and publishes responses.
type Processor struct {
	config    ProcessorConfig
	registry  *Registry
	sessions  *session.Manager
	requests  messaging.Queue[TaskRequest]
	responses messaging.Queue[TaskResponse]

	workers    []*worker
	workerWg   sync.WaitGroup
	shutdownFn context.CancelFunc
}

type worker struct {
	id        int
	processor *Processor
	ctx       context.Context
}

// NewProcessor creates a stage processor over the supplied queues.
func NewProcessor(config ProcessorConfig, registry *Registry, sessions *session.Manager, requests messaging.Queue[TaskRequest], responses messaging.Queue[TaskResponse]) *Processor {
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultProcessorConfig().WorkerCount
	}
	return &Processor{
		config:    config,
		registry:  registry,
		sessions:  sessions,
		requests:  requests,
		responses: responses,
	}
}

// Start launches the worker pool. Workers run on a context derived from
// ctx, so generation in flight survives an individual caller going away
// but stops on Shutdown.
func (p *Processor) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	p.shutdownFn = cancel
	for i := 0; i < p.config.WorkerCount; i++ {
		worker := &worker{id: i, processor: p, ctx: workerCtx}
		p.workers = append(p.workers, worker)
		p.workerWg.Add(1)
		go worker.run()
	}
}

// Shutdown stops the workers and waits for in-flight tasks to finish.
func (p *Processor) Shutdown() {
	if p.shutdownFn != nil {
		p.shutdownFn()
	}
	p.workerWg.Wait()
}

// run processes messages from the request queue until the context ends.
func (w *worker) run() {
	defer w.processor.workerWg.Done()
	for {
		msg, err := w.processor.requests.Consume(w.ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			time.Sleep(100 * time.Millisecond)
			continue
		}
		if msg == nil {
			continue
		}
		if pErr := w.processor.processMessage(w.ctx, msg); pErr != nil {
			log.Printf("stage worker %d: failed to process task: %v", w.id, pErr)
		}
	}
}

func (p *Processor) processMessage(ctx context.Context, msg messaging.Message[TaskRequest]) error {
	request := msg.T()
	response := p.execute(ctx, request)
	if err := p.responses.Publish(ctx, response); err != nil {
		_ = msg.Nack(err)
		return fmt.Errorf("publish response for task %s: %w", request.ID, err)
	}
	return msg.Ack()
}

// execute resolves the session, dispatches to the action method and maps
// the outcome to a TaskResponse. Errors become failed responses rather
// than queue-level failures so the caller always hears back.
func (p *Processor) execute(ctx context.Context, request *TaskRequest) (response *TaskResponse) {
	var err error
	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("stage.%s.%s", request.Service, request.Method), "CONSUMER")
	defer func() { tracing.EndSpan(span, err) }()
	span.WithAttributes(map[string]string{"task.id": request.ID})

	response = &TaskResponse{TaskID: request.ID, Status: StatusFailed}

	token := request.SessionToken
	payload := request.Payload
	if token == "" {
		token, payload = session.ExtractToken(payload)
	}
	aSession, err := p.sessions.Resolve(ctx, token, request.OwnerID)
	if err != nil {
		response.Error = err.Error()
		return response
	}
	response.SessionID = aSession.ID
	span.WithAttributes(map[string]string{"session.id": aSession.ID})

	service := p.registry.Lookup(request.Service)
	if service == nil {
		err = fmt.Errorf("unknown stage service %q", request.Service)
		response.Error = err.Error()
		return response
	}
	method, err := service.Method(request.Method)
	if err != nil {
		response.Error = err.Error()
		return response
	}

	input := &Input{Session: aSession, Payload: payload}
	output := &Output{}
	if err = method(ctx, input, output); err != nil {
		response.Error = err.Error()
		var failure *Failure
		if errors.As(err, &failure) {
			response.Code = failure.Code
			response.Section = string(failure.Section)
		}
		// persist whatever state the action reached before failing
		if saveErr := p.sessions.Persist(ctx, aSession); saveErr != nil {
			log.Printf("stage: persist session %s after failure: %v", aSession.ID, saveErr)
		}
		return response
	}

	if err = p.sessions.Persist(ctx, aSession); err != nil {
		response.Error = err.Error()
		return response
	}
	response.Status = StatusCompleted
	response.Artifact = output.Artifact
	return response
}
