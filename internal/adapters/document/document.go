// Package document tracks page readiness for deferred evaluation.
package document

import "sync"

// State is a page whose structural content may still be loading.
type State struct {
	mu      sync.Mutex
	loading bool
	pending []func()
}

// New creates a document in the given readiness state.
func New(loading bool) *State {
	return &State{loading: loading}
}

// Ready creates a document whose content has already loaded.
func Ready() *State {
	return New(false)
}

// Loading reports whether content is still loading.
func (s *State) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// OnContentLoaded registers fn to run on MarkLoaded. When the content has
// already loaded fn runs immediately.
func (s *State) OnContentLoaded(fn func()) {
	s.mu.Lock()
	if !s.loading {
		s.mu.Unlock()
		fn()
		return
	}
	s.pending = append(s.pending, fn)
	s.mu.Unlock()
}

// MarkLoaded flips the document to loaded and runs pending callbacks once,
// in registration order.
func (s *State) MarkLoaded() {
	s.mu.Lock()
	s.loading = false
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, fn := range pending {
		fn()
	}
}

// Pending returns the number of callbacks waiting for MarkLoaded.
func (s *State) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
