package di

import "sync/atomic"

// resolution tracks the graph locks held by one logical resolution.
//
// Every public call on a stable Graph handle starts a new resolution. The Graph passed to
// factories and callbacks carries the resolution that created it, so calls made through it
// re-enter the locks already held instead of deadlocking. Once the outermost call returns the
// resolution is finished and later calls through the same handle start a new one.
//
// A resolution belongs to a single goroutine. The Graph passed to a factory must not be used by
// other goroutines until the factory has returned.
type resolution struct {
	held     map[*graph]int
	finished atomic.Bool
}

func newResolution() *resolution {
	return &resolution{held: make(map[*graph]int)}
}

func (r *resolution) finish() {
	r.finished.Store(true)
}

// begin returns the resolution to use for a call made through h and a function to call when the
// call returns.
func (h *Graph) begin() (*resolution, func()) {
	if r := h.res; r != nil && !r.finished.Load() {
		return r, func() {}
	}

	r := newResolution()
	return r, r.finish
}

func (g *graph) lock(r *resolution) {
	if n := r.held[g]; n > 0 {
		r.held[g] = n + 1
		return
	}

	g.mu.Lock()
	r.held[g] = 1
}

func (g *graph) unlock(r *resolution) {
	if n := r.held[g]; n > 1 {
		r.held[g] = n - 1
		return
	}

	delete(r.held, g)
	g.mu.Unlock()
}
