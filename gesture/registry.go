package gesture

import (
	"sync"

	"github.com/mobile-next/gesturekit/utils"
)

// Registry tracks live managers so they can be detached on shutdown.
type Registry struct {
	mu       sync.RWMutex
	managers map[string]*Manager
}

// NewRegistry creates a new manager registry instance
func NewRegistry() *Registry {
	return &Registry{
		managers: make(map[string]*Manager),
	}
}

// Register adds a manager under id, replacing any previous entry
func (r *Registry) Register(id string, m *Manager) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.managers[id] = m
}

func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.managers, id)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.managers)
}

// Each calls fn for every registered manager
func (r *Registry) Each(fn func(id string, m *Manager)) {
	r.mu.RLock()
	snapshot := make(map[string]*Manager, len(r.managers))
	for id, m := range r.managers {
		snapshot[id] = m
	}
	r.mu.RUnlock()

	for id, m := range snapshot {
		fn(id, m)
	}
}

// CleanupAll detaches every registered manager and empties the registry
func (r *Registry) CleanupAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.managers) == 0 {
		return
	}

	for id, m := range r.managers {
		utils.Verbose("Detaching gesture manager %s", id)
		m.Detach()
	}

	// clear the registry
	r.managers = make(map[string]*Manager)
}
