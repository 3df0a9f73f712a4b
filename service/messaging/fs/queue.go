// Package fs implements a filesystem-backed queue so that stages running
// as separate processes can exchange task requests and responses through a
// shared directory (or any afs-supported scheme).
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viant/afs"
	"github.com/viant/afs/file"

	"github.com/itinera/itinera/service/messaging"
)

// envelope is the persisted form of a queued message.
type envelope[T any] struct {
	ID        string    `json:"id"`
	Data      T         `json:"data"`
	Retries   int       `json:"retries"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Message implements messaging.Message for the filesystem queue.
type Message[T any] struct {
	envelope  envelope[T]
	queue     *Queue[T]
	processed bool
	mu        sync.Mutex
}

// T returns the message payload
func (m *Message[T]) T() *T {
	return &m.envelope.Data
}

// Ack removes the message from the processing directory.
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message already processed")
	}
	m.processed = true
	return m.queue.complete(context.Background(), &m.envelope)
}

// Nack requeues the message until MaxRetries is exhausted, then moves it to
// the failed directory.
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message already processed")
	}
	m.processed = true
	if err != nil {
		m.envelope.Error = err.Error()
	}
	m.envelope.Retries++
	m.envelope.UpdatedAt = time.Now()
	return m.queue.fail(context.Background(), &m.envelope)
}

// Config holds configuration for the filesystem queue.
type Config struct {
	BasePath     string
	MaxRetries   int
	PollInterval time.Duration
}

// DefaultConfig returns a default queue configuration rooted at basePath.
func DefaultConfig(basePath string) Config {
	return Config{
		BasePath:     basePath,
		MaxRetries:   3,
		PollInterval: 100 * time.Millisecond,
	}
}

// Queue implements a filesystem-based messaging.Queue.
type Queue[T any] struct {
	fs            afs.Service
	config        Config
	pendingDir    string
	processingDir string
	failedDir     string
	mu            sync.Mutex
}

// NewQueue creates a new filesystem-based queue.
func NewQueue[T any](fs afs.Service, config Config) (*Queue[T], error) {
	if config.BasePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 100 * time.Millisecond
	}
	q := &Queue[T]{
		fs:            fs,
		config:        config,
		pendingDir:    path.Join(config.BasePath, "pending"),
		processingDir: path.Join(config.BasePath, "processing"),
		failedDir:     path.Join(config.BasePath, "failed"),
	}
	ctx := context.Background()
	for _, dir := range []string{q.pendingDir, q.processingDir, q.failedDir} {
		exists, _ := fs.Exists(ctx, dir)
		if !exists {
			if err := fs.Create(ctx, dir, file.DefaultDirOsMode, true); err != nil {
				return nil, fmt.Errorf("failed to create queue directory %s: %w", dir, err)
			}
		}
	}
	return q, nil
}

// Publish writes the payload as a pending message file.
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	now := time.Now()
	env := envelope[T]{
		ID:        fmt.Sprintf("%d-%s", now.UnixNano(), uuid.New().String()),
		Data:      *t,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return q.write(ctx, q.pendingDir, &env)
}

// Consume polls the pending directory and claims the oldest message by
// moving it into the processing directory.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	ticker := time.NewTicker(q.config.PollInterval)
	defer ticker.Stop()
	for {
		message, err := q.claim(ctx)
		if err != nil {
			return nil, err
		}
		if message != nil {
			return message, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (q *Queue[T]) claim(ctx context.Context) (*Message[T], error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	objects, err := q.fs.List(ctx, q.pendingDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending messages: %w", err)
	}
	var names []string
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		names = append(names, object.Name())
	}
	if len(names) == 0 {
		return nil, nil
	}
	// message file names start with a nanosecond timestamp, so
	// lexicographic order approximates FIFO
	sort.Strings(names)

	name := names[0]
	data, err := q.fs.DownloadWithURL(ctx, path.Join(q.pendingDir, name))
	if err != nil {
		return nil, nil
	}
	var env envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		// poison message, park it
		_ = q.fs.Delete(ctx, path.Join(q.pendingDir, name))
		return nil, nil
	}
	if err := q.fs.Delete(ctx, path.Join(q.pendingDir, name)); err != nil {
		return nil, nil
	}
	if err := q.write(ctx, q.processingDir, &env); err != nil {
		return nil, err
	}
	return &Message[T]{envelope: env, queue: q}, nil
}

func (q *Queue[T]) complete(ctx context.Context, env *envelope[T]) error {
	return q.fs.Delete(ctx, q.messagePath(q.processingDir, env.ID))
}

func (q *Queue[T]) fail(ctx context.Context, env *envelope[T]) error {
	if err := q.fs.Delete(ctx, q.messagePath(q.processingDir, env.ID)); err != nil {
		return err
	}
	if env.Retries <= q.config.MaxRetries {
		return q.write(ctx, q.pendingDir, env)
	}
	return q.write(ctx, q.failedDir, env)
}

func (q *Queue[T]) write(ctx context.Context, dir string, env *envelope[T]) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return q.fs.Upload(ctx, q.messagePath(dir, env.ID), file.DefaultFileOsMode, bytes.NewReader(data))
}

func (q *Queue[T]) messagePath(dir, id string) string {
	return path.Join(dir, id+".json")
}

var _ messaging.Queue[any] = (*Queue[any])(nil)
