package stage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/itinera/itinera/internal/idgen"
	"github.com/itinera/itinera/service/messaging"
)

// Client publishes task requests and correlates responses back to callers
// by task ID.
type Client struct {
	requests  messaging.Queue[TaskRequest]
	responses messaging.Queue[TaskResponse]
	timeout   time.Duration

	mux     sync.Mutex
	pending map[string]chan *TaskResponse

	shutdownFn context.CancelFunc
	done       sync.WaitGroup
}

// NewClient creates a client over the supplied queues. A non-positive
// timeout falls back to one minute.
func NewClient(requests messaging.Queue[TaskRequest], responses messaging.Queue[TaskResponse], timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Client{
		requests:  requests,
		responses: responses,
		timeout:   timeout,
		pending:   map[string]chan *TaskResponse{},
	}
}

// Start launches the response consumer loop.
func (c *Client) Start(ctx context.Context) {
	consumerCtx, cancel := context.WithCancel(ctx)
	c.shutdownFn = cancel
	c.done.Add(1)
	go c.consumeResponses(consumerCtx)
}

// Shutdown stops the response consumer.
func (c *Client) Shutdown() {
	if c.shutdownFn != nil {
		c.shutdownFn()
	}
	c.done.Wait()
}

// Call publishes a request and blocks until its response arrives or the
// call times out. A timed-out task keeps running on the worker side; its
// state lands in the session store and a later turn picks it up.
func (c *Client) Call(ctx context.Context, request *TaskRequest) (*TaskResponse, error) {
	if request.ID == "" {
		request.ID = idgen.New()
	}
	ch := make(chan *TaskResponse, 1)
	c.mux.Lock()
	c.pending[request.ID] = ch
	c.mux.Unlock()
	defer func() {
		c.mux.Lock()
		delete(c.pending, request.ID)
		c.mux.Unlock()
	}()

	if err := c.requests.Publish(ctx, request); err != nil {
		return nil, fmt.Errorf("publish task %s: %w", request.ID, err)
	}
	select {
	case response := <-ch:
		return response, nil
	case <-time.After(c.timeout):
		return nil, ErrTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Client) consumeResponses(ctx context.Context) {
	defer c.done.Done()
	for {
		msg, err := c.responses.Consume(ctx)
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
		response := msg.T()
		c.mux.Lock()
		ch, ok := c.pending[response.TaskID]
		c.mux.Unlock()
		if !ok {
			// late response for a timed-out call
			log.Printf("stage client: dropping response for unknown task %s", response.TaskID)
			_ = msg.Ack()
			continue
		}
		ch <- response
		_ = msg.Ack()
	}
}
