package di

import (
	"reflect"

	"github.com/sectrean/di-graph/internal/errors"
)

// Provider returns an instance of T each time it is called.
type Provider[T any] func() (T, error)

// Factory returns an instance of R for the argument each time it is called.
type Factory[A, R any] func(A) (R, error)

// Resolve returns the instance of type T from the Graph.
//
// Available options:
//   - [WithQualifier] specifies the qualifier of the entry.
func Resolve[T any](g *Graph, opts ...KeyOption) (T, error) {
	val, err := g.Resolve(KeyOf[T](opts...))
	if err != nil {
		var zero T
		return zero, err
	}
	return castValue[T](val)
}

// MustResolve is like Resolve but panics if the instance cannot be resolved.
func MustResolve[T any](g *Graph, opts ...KeyOption) T {
	val, err := Resolve[T](g, opts...)
	if err != nil {
		panic(err)
	}
	return val
}

// ResolveOptional returns the instance of type T, or false if there is no entry for it.
//
// Errors from the construction of an existing entry are returned.
func ResolveOptional[T any](g *Graph, opts ...KeyOption) (T, bool, error) {
	val, ok, err := g.ResolveOptional(KeyOf[T](opts...))
	if !ok || err != nil {
		var zero T
		return zero, ok, err
	}

	t, err := castValue[T](val)
	return t, true, err
}

// ResolveProvider returns a Provider for instances of type T.
//
// The entry is looked up immediately, instances are created when the Provider is called.
func ResolveProvider[T any](g *Graph, opts ...KeyOption) (Provider[T], error) {
	p, err := g.Provider(KeyOf[T](opts...))
	if err != nil {
		return nil, err
	}

	return func() (T, error) {
		val, err := p()
		if err != nil {
			var zero T
			return zero, err
		}
		return castValue[T](val)
	}, nil
}

// ResolveFactory returns a Factory creating instances of R from arguments of type A.
func ResolveFactory[A, R any](g *Graph, opts ...KeyOption) (Factory[A, R], error) {
	f, err := g.Factory(FactoryKeyOf[A, R](opts...))
	if err != nil {
		return nil, err
	}

	return func(arg A) (R, error) {
		val, err := f(arg)
		if err != nil {
			var zero R
			return zero, err
		}
		return castValue[R](val)
	}, nil
}

// ResolveWithArg returns the instance of R created for the argument.
func ResolveWithArg[A, R any](g *Graph, arg A, opts ...KeyOption) (R, error) {
	val, err := g.ResolveWithArg(FactoryKeyOf[A, R](opts...), arg)
	if err != nil {
		var zero R
		return zero, err
	}
	return castValue[R](val)
}

// ProvidersOfType returns a Provider for every entry of type T in the Graph and its ancestors,
// whatever its qualifier. Factories are not included.
//
// Entries that can no longer be looked up, for example because the Graph was disposed, are skipped.
func ProvidersOfType[T any](g *Graph) []Provider[T] {
	want := KeyOf[T]()

	var providers []Provider[T]
	for _, key := range g.Keys() {
		if !key.TypeEquals(want) {
			continue
		}

		p, err := g.Provider(key)
		if err != nil {
			continue
		}
		providers = append(providers, func() (T, error) {
			val, err := p()
			if err != nil {
				var zero T
				return zero, err
			}
			return castValue[T](val)
		})
	}
	return providers
}

// InstancesOfType returns the instances of every entry of type T in the Graph and its ancestors.
//
// The first construction error is returned.
func InstancesOfType[T any](g *Graph) ([]T, error) {
	providers := ProvidersOfType[T](g)
	instances := make([]T, 0, len(providers))
	for _, p := range providers {
		val, err := p()
		if err != nil {
			return nil, errors.Wrapf(err, "di.InstancesOfType %s", reflect.TypeFor[T]())
		}
		instances = append(instances, val)
	}
	return instances, nil
}

// MembersInject injects the dependencies of target with the injector registered with
// [ProvideMembersInjector] for the type of target.
func MembersInject(g *Graph, target any) error {
	if target == nil {
		return errors.New("di.MembersInject: target is nil")
	}

	t := reflect.TypeOf(target)
	inject, err := g.membersInjector(t)
	if err != nil {
		return errors.Wrapf(err, "di.MembersInject %s", t)
	}
	return inject(g, target)
}

// membersInjector looks up the injector for targets of type t. Injector keys carry the target
// type as their argument type, so they are resolved without an argument.
func (h *Graph) membersInjector(t reflect.Type) (membersInjector, error) {
	r, done := h.begin()
	defer done()

	val, err := h.g.instance(r, membersInjectorKey(t), nil)
	if err != nil {
		return nil, err
	}
	inject, _ := val.(membersInjector)
	return inject, nil
}

func castValue[T any](val any) (T, error) {
	if val == nil {
		var zero T
		return zero, nil
	}

	t, ok := val.(T)
	if !ok {
		return t, errors.Errorf("resolved value of type %T is not assignable to %s", val, reflect.TypeFor[T]())
	}
	return t, nil
}
