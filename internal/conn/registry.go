package conn

import (
	"sync"

	"github.com/rs/zerolog"
)

// Registry is a process-wide registry of shared database handles, keyed by
// resolved storage location. Multiple logical driver instances opened for
// the same name resolve to exactly one underlying handle.
//
// Entries are created on first use and live for the registry's lifetime;
// a full reset destroys a handle's contents in place rather than replacing
// the entry, preserving the one-handle-per-name invariant.
//
// The registry is injected into drivers rather than accessed as ambient
// state. Lookup-or-create is serialized so concurrent initialization cannot
// create duplicate handles for the same name.
type Registry struct {
	mu    sync.Mutex
	conns map[string]*Conn
	log   zerolog.Logger
}

// NewRegistry creates an empty handle registry.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		conns: make(map[string]*Conn),
		log:   logger,
	}
}

// Acquire returns the shared handle for a resolved path, opening it on
// first use.
func (r *Registry) Acquire(path string) (*Conn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.conns[path]; ok {
		return c, nil
	}

	c, err := Open(path, r.log)
	if err != nil {
		return nil, err
	}
	r.conns[path] = c
	return c, nil
}

// Size returns the number of open handles. Used for testing and introspection.
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.conns)
}
