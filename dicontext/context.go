// Package dicontext carries a [di.Graph] on a [context.Context].
package dicontext

import (
	"context"
	"reflect"

	"github.com/sectrean/di-graph"
	"github.com/sectrean/di-graph/internal/errors"
)

type graphContextKey struct{}

// WithGraph returns a new [context.Context] that carries the provided [di.Graph].
func WithGraph(ctx context.Context, g *di.Graph) context.Context {
	return context.WithValue(ctx, graphContextKey{}, g)
}

// Graph returns the [di.Graph] stored on the [context.Context], if present.
func Graph(ctx context.Context) *di.Graph {
	if g, ok := ctx.Value(graphContextKey{}).(*di.Graph); ok {
		return g
	}
	return nil
}

// Resolve an instance of type T from the [di.Graph] stored on the [context.Context].
func Resolve[T any](ctx context.Context, opts ...di.KeyOption) (T, error) {
	g := Graph(ctx)
	if g == nil {
		var zero T
		return zero, errors.Errorf("resolve %s from context: graph not found on context", reflect.TypeFor[T]())
	}

	val, err := di.Resolve[T](g, opts...)
	return val, errors.Wrap(err, "resolve from context")
}

// MustResolve resolves an instance of type T from the [di.Graph] stored on the
// [context.Context].
//
// It panics if the instance cannot be resolved.
func MustResolve[T any](ctx context.Context, opts ...di.KeyOption) T {
	val, err := Resolve[T](ctx, opts...)
	if err != nil {
		panic(err)
	}
	return val
}
