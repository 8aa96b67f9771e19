package results

import (
	"sync"

	"github.com/baditaflorin/go_ab_runner/internal/core/domain"
)

// Listener reacts to an edits notification.
type Listener func(domain.Notification)

// Bus fans notifications out to listeners registered before the publish.
type Bus struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]Listener
	order     []int
	published []domain.Notification
}

// NewBus creates a bus with no listeners.
func NewBus() *Bus {
	return &Bus{listeners: make(map[int]Listener)}
}

// Subscribe registers fn and returns a function that removes it.
func (b *Bus) Subscribe(fn Listener) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	b.order = append(b.order, id)
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners, id)
	}
}

// Publish delivers n to every current listener in registration order.
func (b *Bus) Publish(n domain.Notification) {
	b.mu.Lock()
	b.published = append(b.published, n)
	fns := make([]Listener, 0, len(b.listeners))
	for _, id := range b.order {
		if fn, ok := b.listeners[id]; ok {
			fns = append(fns, fn)
		}
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(n)
	}
}

// Published returns every notification delivered so far.
func (b *Bus) Published() []domain.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.Notification, len(b.published))
	copy(out, b.published)
	return out
}
