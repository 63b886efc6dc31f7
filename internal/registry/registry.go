package registry

import (
	"sync"
	"time"

	"github.com/fabriclab/sanctl/pkg/mds"
)

// Options carries the connection parameters a transport factory needs to
// reach a switch management endpoint.
type Options struct {
	Addr     string
	Scheme   string
	Port     int
	Username string
	Password string
	Insecure bool
	Timeout  time.Duration
}

// TransportFactory creates a switch transport from connection options.
type TransportFactory func(opts Options) (mds.Transport, error)

// Registry manages the available switch transport implementations.
// Transports register themselves from an init func so importing a
// transport package is all it takes to make it selectable by name.
type Registry struct {
	mu         sync.RWMutex
	transports map[string]TransportFactory
}

var (
	registryInstance *Registry
	registryOnce     sync.Once
)

// GetRegistry returns the singleton registry instance
func GetRegistry() *Registry {
	registryOnce.Do(func() {
		registryInstance = &Registry{
			transports: make(map[string]TransportFactory),
		}
	})
	return registryInstance
}

// RegisterTransport registers a transport factory under a name
func (r *Registry) RegisterTransport(name string, factory TransportFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transports[name] = factory
}

// GetTransport returns a transport factory by name
func (r *Registry) GetTransport(name string) (TransportFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, exists := r.transports[name]
	return factory, exists
}

// Transports returns the names of all registered transports
func (r *Registry) Transports() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.transports))
	for name := range r.transports {
		names = append(names, name)
	}
	return names
}
