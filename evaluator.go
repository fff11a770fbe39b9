package di

import (
	"go.uber.org/zap"

	"github.com/sectrean/di-graph/internal/errors"
)

type frameState uint8

const (
	framePending frameState = iota
	frameDone
	frameFailed
)

// frame is a service under construction, or constructed and waiting for its post-construct
// callback.
type frame struct {
	svc      boundService
	arg      any
	instance any
	state    frameState
}

// evaluator constructs the instances of one graph. It is guarded by the graph lock.
//
// Frames are pushed for every construction and kept until the outermost construction returns.
// A pending frame for the same service and argument means the dependencies are cyclic. When the
// count of constructions in flight drops to zero, post-construct callbacks and plugins run for
// the completed frames in the order they completed. A service completes only after every
// dependency it resolved, so dependencies are always post-constructed first.
type evaluator struct {
	g         *graph
	frames    []frame
	completed []int
	depth     int
}

func (e *evaluator) evaluate(r *resolution, svc boundService, arg any) (any, error) {
	g := e.g
	g.lock(r)
	defer g.unlock(r)

	key := svc.Key()
	if err := g.checkDisposed(key); err != nil {
		return nil, err
	}

	if i := e.pendingIndex(svc, arg); i >= 0 {
		return nil, e.cycleError(i, key)
	}

	idx := len(e.frames)
	e.frames = append(e.frames, frame{svc: svc, arg: arg})
	e.depth++

	h := &Graph{g: g, res: r}
	inst, err := callFactory(svc, h, arg)

	if err != nil {
		err = e.wrapError(key, err)
		e.frames[idx].state = frameFailed
	} else {
		e.frames[idx].instance = inst
		e.frames[idx].state = frameDone
		e.completed = append(e.completed, idx)
		g.track(svc)
	}

	e.depth--
	if e.depth > 0 {
		return inst, err
	}

	hookErr := e.drain(h)
	if err != nil {
		if hookErr != nil {
			g.logger.Warn("post-construct callback failed while handling a resolution error",
				zap.Stringer("key", key),
				zap.Error(hookErr),
			)
		}
		return nil, err
	}
	if hookErr != nil {
		return nil, hookErr
	}

	return inst, nil
}

func callFactory(svc boundService, h *Graph, arg any) (val any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Errorf("panic: %v", p)
		}
	}()

	return svc.newInstance(h, arg)
}

func (e *evaluator) pendingIndex(svc boundService, arg any) int {
	for i, f := range e.frames {
		if f.state == framePending && f.svc == svc && argsEqual(f.arg, arg) {
			return i
		}
	}
	return -1
}

// pendingChain returns the keys of the pending frames starting at frame i.
func (e *evaluator) pendingChain(i int) []TypeKey {
	var chain []TypeKey
	for _, f := range e.frames[i:] {
		if f.state == framePending {
			chain = append(chain, f.svc.Key())
		}
	}
	return chain
}

func (e *evaluator) cycleError(i int, key TypeKey) error {
	chain := e.pendingChain(i)
	direct := len(chain) == 1
	chain = append(chain, key)

	return &CyclicDependencyError{Key: key, Chain: chain, Direct: direct}
}

// wrapError adds the dependency chain to a factory error.
//
// Errors that already carry a chain, cycle errors and graph state errors are returned unchanged.
func (e *evaluator) wrapError(key TypeKey, err error) error {
	var (
		resolutionErr *DependencyResolutionError
		cycleErr      *CyclicDependencyError
		notFoundErr   *EntryNotFoundError
	)

	switch {
	case errors.As(err, &resolutionErr),
		errors.As(err, &cycleErr),
		errors.Is(err, ErrGraphDisposed),
		errors.Is(err, ErrInvalidRegistration):
		return err
	case errors.As(err, &notFoundErr):
		missing := notFoundErr.Key
		return &DependencyResolutionError{Key: key, Chain: e.pendingChain(0), Missing: &missing, Err: err}
	default:
		return &DependencyResolutionError{Key: key, Chain: e.pendingChain(0), Err: err}
	}
}

// drain runs the post-construct callbacks and plugins of all completed frames.
func (e *evaluator) drain(h *Graph) error {
	frames, completed := e.frames, e.completed
	e.frames, e.completed = nil, nil

	var errs errors.MultiError
	for _, i := range completed {
		f := frames[i]

		if err := callPostConstructSafely(f.svc, h, f.instance); err != nil {
			errs = errs.Append(errors.Wrapf(err, "post-construct %s", f.svc.Key()))
		}
		e.g.plugins.postConstruct(h, f.svc.Scope(), f.arg, f.instance)
	}

	return errs.Join()
}

func callPostConstructSafely(svc boundService, h *Graph, val any) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Errorf("panic: %v", p)
		}
	}()

	return svc.postConstruct(h, val)
}
