package runtime

import (
	"sync"
	"wa-gateway/contract"
)

// Registry keeps one sink per attached observer.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]contract.EventSink // map connection handle -> Sink
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]contract.EventSink),
	}
}

// Subscribe registers an observer under its connection handle.
// A second subscription with the same handle replaces the first one.
func (r *Registry) Subscribe(handle string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[handle] = sink
}

// Unsubscribe removes the observer and hands its sink back so the caller
// can release it.
func (r *Registry) Unsubscribe(handle string) (contract.EventSink, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sink, ok := r.sessions[handle]
	if ok {
		delete(r.sessions, handle)
	}
	return sink, ok
}

// Sinks returns a snapshot safe to iterate without holding the lock.
func (r *Registry) Sinks() map[string]contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snapshot := make(map[string]contract.EventSink, len(r.sessions))
	for handle, sink := range r.sessions {
		snapshot[handle] = sink
	}
	return snapshot
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
