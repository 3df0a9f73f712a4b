package stage

import (
	"sync"

	"github.com/itinera/itinera/model/types"
)

// Registry holds the action services a stage worker can dispatch to.
type Registry struct {
	services map[string]types.Service
	mux      sync.RWMutex
}

// NewRegistry creates a registry preloaded with the supplied services.
func NewRegistry(services ...types.Service) *Registry {
	registry := &Registry{services: map[string]types.Service{}}
	for _, service := range services {
		registry.Register(service)
	}
	return registry
}

// Register adds a service, replacing any previous one with the same name.
func (r *Registry) Register(service types.Service) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.services[service.Name()] = service
}

// Lookup returns a service by name, or nil when unknown.
func (r *Registry) Lookup(name string) types.Service {
	r.mux.RLock()
	defer r.mux.RUnlock()
	return r.services[name]
}
