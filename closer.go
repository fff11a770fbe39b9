package di

import (
	"context"
)

// Closer is used to close an instance when its Graph is disposed.
//
// Any of these Close method signatures are supported:
//
//	Close(context.Context) error
//	Close(context.Context)
//	Close() error
//	Close()
//
// See [WithCloser].
type Closer interface {
	Close(ctx context.Context) error
}

// WithCloser closes the instances of a service when the Graph is disposed.
//
// The instance must implement [Closer] or one of the other compatible Close method signatures.
// Instances that do not are ignored. Close is called with [context.Background].
//
// Only [Singleton] and [Multiton] instances are disposed.
func WithCloser() RegisterOption {
	return registerOption(func(r *registration) error {
		r.dispose = func(_ *Graph, val any) error {
			c := getCloser(val)
			if c == nil {
				return nil
			}
			return c.Close(context.Background())
		}
		return nil
	})
}

// getCloser returns the Closer interface if the given value implements it,
// or any of the compatible Close function signatures.
func getCloser(val any) Closer {
	switch c := val.(type) {
	case Closer:
		return c
	case closerWithContextNoError:
		return closerWithContextNoErrorWrapper{c}
	case closerNoContextWithError:
		return closerNoContextWithErrorWrapper{c}
	case closerNoContextNoError:
		return closerNoContextNoErrorWrapper{c}

	default:
		return nil
	}
}

type closerWithContextNoError interface {
	Close(ctx context.Context)
}

type closerNoContextWithError interface {
	Close() error
}

type closerNoContextNoError interface {
	Close()
}

type closerNoContextNoErrorWrapper struct {
	c closerNoContextNoError
}

func (w closerNoContextNoErrorWrapper) Close(context.Context) error {
	w.c.Close()
	return nil
}

type closerWithContextNoErrorWrapper struct {
	c closerWithContextNoError
}

func (w closerWithContextNoErrorWrapper) Close(ctx context.Context) error {
	w.c.Close(ctx)
	return nil
}

type closerNoContextWithErrorWrapper struct {
	c closerNoContextWithError
}

func (w closerNoContextWithErrorWrapper) Close(context.Context) error {
	return w.c.Close()
}
