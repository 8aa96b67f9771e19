// Package results holds the resolved variants of edits experiments and the
// notifications page code listens for.
package results

import (
	"sync"

	"github.com/baditaflorin/go_ab_runner/internal/core/domain"
)

// Registry maps experiment ids to the variant resolved for this page view.
// Readers only read; the runner is the only writer.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]domain.Variant
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]domain.Variant)}
}

// Record stores the resolved variant for an experiment.
func (r *Registry) Record(experimentID string, variant domain.Variant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[experimentID] = variant
}

// Get returns the variant resolved for the experiment.
func (r *Registry) Get(experimentID string) (domain.Variant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[experimentID]
	return v, ok
}

// Snapshot returns a copy of every entry.
func (r *Registry) Snapshot() map[string]domain.Variant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]domain.Variant, len(r.entries))
	for k, v := range r.entries {
		out[k] = v
	}
	return out
}

// Len returns the number of recorded experiments.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
