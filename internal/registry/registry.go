// Package registry tracks live server instances by numeric id so a host
// runtime can address them as opaque handles.
package registry

import (
	"sync"

	"github.com/mintaslang/dew/internal/config"
	"github.com/mintaslang/dew/internal/logging"
	"github.com/mintaslang/dew/internal/server"
)

// Registry maps numeric ids to server instances.
type Registry struct {
	mutex   sync.RWMutex
	servers map[int64]*server.Server
	nextID  int64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{servers: make(map[int64]*server.Server)}
}

// New creates a server and registers it, returning its handle.
func (r *Registry) New(cfg *config.Config, logger logging.Logger, ev server.Evaluator) int64 {
	return r.Add(server.New(cfg, logger, ev))
}

// Add registers an existing server and returns its handle. Ids start at 1;
// 0 is never a valid handle.
func (r *Registry) Add(s *server.Server) int64 {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.nextID++
	id := r.nextID
	r.servers[id] = s
	return id
}

// Get resolves a handle to its server.
func (r *Registry) Get(id int64) (*server.Server, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	s, ok := r.servers[id]
	return s, ok
}

// Remove closes and drops a server. Unknown handles are a no-op.
func (r *Registry) Remove(id int64) {
	r.mutex.Lock()
	s, ok := r.servers[id]
	delete(r.servers, id)
	r.mutex.Unlock()
	if ok {
		s.Close()
	}
}

// Len returns the number of registered servers.
func (r *Registry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.servers)
}

// Each calls fn for every registered server. The registry lock is held for
// the duration; fn must not call back into the registry.
func (r *Registry) Each(fn func(id int64, s *server.Server)) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	for id, s := range r.servers {
		fn(id, s)
	}
}
