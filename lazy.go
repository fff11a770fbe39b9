package di

import (
	"sync"

	"github.com/sectrean/di-graph/internal/errors"
)

// Lazy is an instance of type T that is resolved from a Graph the first time [Lazy.Get] is called.
//
// The result, including an error, is kept for later calls. Lazy is safe for concurrent use.
type Lazy[T any] struct {
	fn func() (T, error)
}

// ResolveLazy returns a Lazy for the instance of type T.
//
// The entry is looked up immediately, the instance is resolved on the first call to Get.
func ResolveLazy[T any](g *Graph, opts ...KeyOption) (*Lazy[T], error) {
	p, err := ResolveProvider[T](g, opts...)
	if err != nil {
		return nil, err
	}

	return &Lazy[T]{fn: sync.OnceValues((func() (T, error))(p))}, nil
}

// Get returns the resolved instance.
func (l *Lazy[T]) Get() (T, error) {
	val, err := l.fn()
	return val, errors.Wrap(err, "lazy get")
}
