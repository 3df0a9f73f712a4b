package itinera

import (
	"fmt"
	"os"
	"time"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/itinera/itinera/model/trip"
	"github.com/itinera/itinera/service/dao"
	sessionfs "github.com/itinera/itinera/service/dao/session/fs"
	sessionmem "github.com/itinera/itinera/service/dao/session/memory"
	"github.com/itinera/itinera/service/generator"
	"github.com/itinera/itinera/service/memory"
	"github.com/itinera/itinera/service/messaging"
	queuefs "github.com/itinera/itinera/service/messaging/fs"
	queuemem "github.com/itinera/itinera/service/messaging/memory"
	"github.com/itinera/itinera/service/stage"
)

// Config is the serialisable service configuration. The zero value is
// usable: every nested field inherits its package default.
type Config struct {
	Generator generator.Settings `json:"generator" yaml:"generator"`
	Queue     QueueConfig        `json:"queue" yaml:"queue"`
	Sessions  SessionsConfig     `json:"sessions" yaml:"sessions"`
	Memory    MemoryConfig       `json:"memory" yaml:"memory"`
	Workers   int                `json:"workers" yaml:"workers"`
	// CallTimeout bounds a turn's wait on the stage, e.g. "90s".
	CallTimeout string `json:"callTimeout" yaml:"callTimeout"`
}

// QueueConfig selects the stage queue transport.
type QueueConfig struct {
	// Vendor is "memory" or "fs".
	Vendor   string `json:"vendor" yaml:"vendor"`
	BasePath string `json:"basePath" yaml:"basePath"`
}

// SessionsConfig selects the session store.
type SessionsConfig struct {
	// Store is "memory" or "fs".
	Store    string `json:"store" yaml:"store"`
	BasePath string `json:"basePath" yaml:"basePath"`
}

// MemoryConfig selects the long-term memory store.
type MemoryConfig struct {
	// Store is "memory" or "sqlite".
	Store string `json:"store" yaml:"store"`
	Path  string `json:"path" yaml:"path"`
	// Policy is "on-finalize" (default) or "every-turn".
	Policy string `json:"policy" yaml:"policy"`
}

// DefaultConfig returns a config matching the in-process defaults.
func DefaultConfig() *Config {
	return &Config{
		Queue:       QueueConfig{Vendor: "memory"},
		Sessions:    SessionsConfig{Store: "memory"},
		Memory:      MemoryConfig{Store: "memory", Policy: string(memory.PolicyOnFinalize)},
		Workers:     stage.DefaultProcessorConfig().WorkerCount,
		CallTimeout: "1m",
	}
}

// Validate reports invalid settings.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	switch c.Queue.Vendor {
	case "", "memory":
	case "fs":
		if c.Queue.BasePath == "" {
			return fmt.Errorf("queue.basePath is required for the fs vendor")
		}
	default:
		return fmt.Errorf("unsupported queue vendor %q", c.Queue.Vendor)
	}
	switch c.Sessions.Store {
	case "", "memory":
	case "fs":
		if c.Sessions.BasePath == "" {
			return fmt.Errorf("sessions.basePath is required for the fs store")
		}
	default:
		return fmt.Errorf("unsupported session store %q", c.Sessions.Store)
	}
	switch c.Memory.Store {
	case "", "memory":
	case "sqlite":
		if c.Memory.Path == "" {
			return fmt.Errorf("memory.path is required for the sqlite store")
		}
	default:
		return fmt.Errorf("unsupported memory store %q", c.Memory.Store)
	}
	switch memory.Policy(c.Memory.Policy) {
	case "", memory.PolicyOnFinalize, memory.PolicyEveryTurn:
	default:
		return fmt.Errorf("unsupported memory policy %q", c.Memory.Policy)
	}
	if c.CallTimeout != "" {
		if _, err := time.ParseDuration(c.CallTimeout); err != nil {
			return fmt.Errorf("invalid callTimeout: %w", err)
		}
	}
	return nil
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return config, nil
}

// NewFromConfig assembles a service from a validated config.
func NewFromConfig(config *Config, options ...Option) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	gen, err := generator.New(&config.Generator)
	if err != nil {
		return nil, err
	}

	var sessionDAO dao.Service[string, trip.Session]
	switch config.Sessions.Store {
	case "fs":
		if sessionDAO, err = sessionfs.New(config.Sessions.BasePath); err != nil {
			return nil, err
		}
	default:
		sessionDAO = sessionmem.New()
	}

	var requests messaging.Queue[stage.TaskRequest]
	var responses messaging.Queue[stage.TaskResponse]
	switch config.Queue.Vendor {
	case "fs":
		fs := afs.New()
		if requests, err = queuefs.NewQueue[stage.TaskRequest](fs, queuefs.DefaultConfig(config.Queue.BasePath+"/requests")); err != nil {
			return nil, err
		}
		if responses, err = queuefs.NewQueue[stage.TaskResponse](fs, queuefs.DefaultConfig(config.Queue.BasePath+"/responses")); err != nil {
			return nil, err
		}
	default:
		requests = queuemem.NewQueue[stage.TaskRequest](queuemem.DefaultConfig())
		responses = queuemem.NewQueue[stage.TaskResponse](queuemem.DefaultConfig())
	}

	var store memory.Store
	switch config.Memory.Store {
	case "sqlite":
		if store, err = memory.NewSQLiteStore(config.Memory.Path); err != nil {
			return nil, err
		}
	default:
		store = memory.NewInMemStore()
	}

	callTimeout := time.Minute
	if config.CallTimeout != "" {
		callTimeout, _ = time.ParseDuration(config.CallTimeout)
	}

	base := []Option{
		WithGenerator(gen),
		WithSessionDAO(sessionDAO),
		WithQueues(requests, responses),
		WithMemoryStore(store),
		WithMemoryPolicy(memory.Policy(config.Memory.Policy)),
		WithWorkers(config.Workers),
		WithCallTimeout(callTimeout),
	}
	return New(append(base, options...)...), nil
}
