package di

import (
	"reflect"

	"github.com/sectrean/di-graph/internal/errors"
)

// Constant registers a value of type T with the builder.
//
// Constants are returned as-is, they are never constructed, post-constructed or disposed.
//
// Available options:
//   - [WithQualifier] specifies the qualifier of the entry.
//   - [WithGenerics] is accepted for keys of generic types and does not change the key.
//   - [Override] replaces an existing entry with the same key.
func Constant[T any](b *ComponentBuilder, value T, opts ...RegisterOption) error {
	return b.RegisterConstant(KeyOf[T](), value, opts...)
}

// Provide registers a factory for services of type T with the builder.
//
// The scope must not be a factory scope. The factory receives the Graph the service is bound to and
// can resolve its dependencies from it.
//
// Example:
//
//	err := di.Provide(b, di.Singleton, func(g *di.Graph) (*Store, error) {
//		db, err := di.Resolve[*sql.DB](g)
//		if err != nil {
//			return nil, err
//		}
//		return NewStore(db), nil
//	})
//
// Available options:
//   - [WithQualifier] specifies the qualifier of the entry.
//   - [WithGenerics] is accepted for keys of generic types and does not change the key.
//   - [Override] replaces an existing entry with the same key.
//   - [Eager] creates the instance when the Graph is created. Singleton scope only.
//   - [WithPostConstruct] is called after the instance and its dependencies are created.
//   - [WithDispose] is called when the Graph is disposed. Singleton and Multiton scopes only.
//   - [WithCloser] closes the instance when the Graph is disposed.
func Provide[T any](b *ComponentBuilder, scope Scope, factory func(*Graph) (T, error), opts ...RegisterOption) error {
	var fn func(*Graph) (any, error)
	if factory != nil {
		fn = func(g *Graph) (any, error) {
			return factory(g)
		}
	}
	return b.RegisterProvider(KeyOf[T](), scope, fn, opts...)
}

// ProvideFactory registers a factory that creates services of type R from an argument of type A.
//
// The scope must be [PrototypeFactory] or [Multiton].
func ProvideFactory[A, R any](
	b *ComponentBuilder,
	scope Scope,
	factory func(*Graph, A) (R, error),
	opts ...RegisterOption,
) error {
	var fn func(*Graph, any) (any, error)
	if factory != nil {
		fn = func(g *Graph, arg any) (any, error) {
			a, _ := arg.(A)
			return factory(g, a)
		}
	}
	return b.RegisterFactory(FactoryKeyOf[A, R](), scope, fn, opts...)
}

// ProvideMembersInjector registers a function that injects the dependencies of an existing value of
// type T. It is used by [MembersInject].
func ProvideMembersInjector[T any](b *ComponentBuilder, inject func(*Graph, T) error, opts ...RegisterOption) error {
	if inject == nil {
		return errors.Wrapf(invalidRegistration("inject is nil"), "register members injector %s", reflect.TypeFor[T]())
	}

	injector := membersInjector(func(g *Graph, target any) error {
		return inject(g, target.(T))
	})
	return b.RegisterConstant(membersInjectorKey(reflect.TypeFor[T]()), injector, opts...)
}

type membersInjector func(g *Graph, target any) error

var typeMembersInjector = reflect.TypeFor[membersInjector]()

func membersInjectorKey(t reflect.Type) TypeKey {
	return TypeKey{id: keyID{typ: typeMembersInjector, arg: t}}
}

// RegisterOption is used to configure an entry when calling [Constant], [Provide],
// [ProvideFactory] or one of the ComponentBuilder register methods.
type RegisterOption interface {
	applyRegistration(*registration) error
}

type registerOption func(*registration) error

func (o registerOption) applyRegistration(r *registration) error {
	return o(r)
}

type registration struct {
	key           TypeKey
	override      bool
	eager         bool
	postConstruct func(*Graph, any) error
	dispose       func(*Graph, any) error
}

func newRegistration(key TypeKey, opts []RegisterOption) (*registration, error) {
	r := &registration{key: key}
	err := applyOptions(opts, func(opt RegisterOption) error {
		return opt.applyRegistration(r)
	})
	return r, err
}

func (r *registration) hasCallbacks() bool {
	return r.postConstruct != nil || r.dispose != nil
}

// OverrideOption replaces an existing entry or subcomponent.
type OverrideOption interface {
	RegisterOption
	SubcomponentOption
}

// Override replaces an existing entry, or subcomponent, with the same key.
//
// Registration fails if there is nothing to replace.
func Override() OverrideOption {
	return overrideOption{}
}

type overrideOption struct{}

func (overrideOption) applyRegistration(r *registration) error {
	r.override = true
	return nil
}

func (overrideOption) applySubcomponent(c *subcomponentConfig) {
	c.override = true
}

var _ OverrideOption = overrideOption{}

// Eager creates the instance of a Singleton when the Graph is created instead of on first use.
func Eager() RegisterOption {
	return registerOption(func(r *registration) error {
		r.eager = true
		return nil
	})
}

// WithPostConstruct sets a callback that is called with each new instance after the outermost
// resolution that created it has completed, so every dependency of the instance is fully built.
//
// Callbacks run in the order the instances completed, so dependencies are post-constructed before
// the services using them. An error from the callback is returned from the resolution.
//
// This option will return an error if the service type is not assignable to T.
func WithPostConstruct[T any](f func(*Graph, T) error) RegisterOption {
	return registerOption(func(r *registration) error {
		if err := checkCallbackType[T](r.key); err != nil {
			return errors.Wrap(err, "with post-construct")
		}
		r.postConstruct = func(g *Graph, val any) error {
			return f(g, castCallbackValue[T](val))
		}
		return nil
	})
}

// WithDispose sets a callback that is called with each cached instance when the Graph is disposed.
//
// Only [Singleton] and [Multiton] instances are disposed.
//
// This option will return an error if the service type is not assignable to T.
func WithDispose[T any](f func(*Graph, T) error) RegisterOption {
	return registerOption(func(r *registration) error {
		if err := checkCallbackType[T](r.key); err != nil {
			return errors.Wrap(err, "with dispose")
		}
		r.dispose = func(g *Graph, val any) error {
			return f(g, castCallbackValue[T](val))
		}
		return nil
	})
}

func checkCallbackType[T any](key TypeKey) error {
	svcType := key.Type()
	cbType := reflect.TypeFor[T]()
	if svcType == nil || !svcType.AssignableTo(cbType) {
		return invalidRegistration("service type %s is not assignable to %s", typeString(svcType), cbType)
	}
	return nil
}

func castCallbackValue[T any](val any) T {
	t, _ := val.(T)
	return t
}
