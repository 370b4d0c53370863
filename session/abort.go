package session

import (
	"context"
	"sync"
)

// AbortRegistry tracks the cancellation handle of every in-flight tool
// invocation. A session boundary (switch, fork, restart, shutdown)
// triggers AbortAll before any state is cleared, so no call outlives the
// session that started it.
type AbortRegistry struct {
	mu   sync.Mutex
	next int
	set  map[int]context.CancelFunc
}

// NewAbortRegistry creates an empty registry.
func NewAbortRegistry() *AbortRegistry {
	return &AbortRegistry{set: make(map[int]context.CancelFunc)}
}

// Track derives a cancellable context, registers its cancel handle, and
// returns the context plus a release func the caller must defer. Release
// deregisters and cancels (cancelling a finished context is a no-op).
func (r *AbortRegistry) Track(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	id := r.next
	r.next++
	r.set[id] = cancel
	r.mu.Unlock()

	return ctx, func() {
		r.mu.Lock()
		delete(r.set, id)
		r.mu.Unlock()
		cancel()
	}
}

// AbortAll cancels every still-registered invocation.
func (r *AbortRegistry) AbortAll() {
	r.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(r.set))
	for _, c := range r.set {
		cancels = append(cancels, c)
	}
	r.set = make(map[int]context.CancelFunc)
	r.mu.Unlock()
	for _, c := range cancels {
		c()
	}
}

// Len returns the number of in-flight invocations.
func (r *AbortRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.set)
}
