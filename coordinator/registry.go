// Package coordinator routes customer utterances to remote domain agents and
// assembles their answers into one reply. Routing is a pure, swappable
// classifier; delegation fans out concurrently and joins every call before
// composing the aggregate response.
package coordinator

import (
	"context"
	"sync"

	"shopmesh/a2a"
)

// Delegate is the client-side view of one remote agent: its advertised card
// and a way to send it a task.
type Delegate interface {
	Card() a2a.AgentCard
	SendTask(ctx context.Context, task a2a.Task) (string, error)
}

// Registry is the in-memory capability registry mapping agent name to its
// proxy. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	delegates map[string]Delegate
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{delegates: make(map[string]Delegate)}
}

// Register adds the delegate under its card name, replacing any previous
// registration.
func (r *Registry) Register(d Delegate) {
	if d == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delegates[d.Card().Name] = d
}

// Lookup returns the delegate registered under name.
func (r *Registry) Lookup(name string) (Delegate, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.delegates[name]
	return d, ok
}

// Cards returns the advertised capability set of every known agent.
func (r *Registry) Cards() []a2a.AgentCard {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cards := make([]a2a.AgentCard, 0, len(r.delegates))
	for _, d := range r.delegates {
		cards = append(cards, d.Card())
	}
	return cards
}
