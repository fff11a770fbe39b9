package di

import (
	"reflect"

	"github.com/sectrean/di-graph/internal/errors"
)

// Invoke calls the given function with parameters resolved from the provided Graph.
//
// The function may take any number of parameters which will be resolved from the Graph,
// and may return any number of results. A *Graph parameter receives g.
// An [error] return parameter will be passed along and any other return parameters are ignored.
//
// Available options:
//   - [WithArgQualifier]
func Invoke(g *Graph, fn any, opts ...InvokeOption) error {
	fnType := reflect.TypeOf(fn)
	fnVal := reflect.ValueOf(fn)

	// Make sure fn is a function
	if fnType == nil || fnType.Kind() != reflect.Func {
		return errors.Errorf("di.Invoke %T: fn must be a function", fn)
	}

	deps := make([]TypeKey, fnType.NumIn())
	for i := range fnType.NumIn() {
		deps[i] = KeyFor(fnType.In(i))
	}

	config := &invokeConfig{deps: deps}
	err := applyOptions(opts, func(opt InvokeOption) error {
		return opt.applyInvokeConfig(config)
	})
	if err != nil {
		return errors.Wrapf(err, "di.Invoke %T", fn)
	}

	// Resolve deps from the Graph
	in := make([]reflect.Value, fnType.NumIn())
	for i, dep := range config.deps {
		var depVal any
		var depErr error

		if dep.Type() == typeGraph && dep.Qualifier() == nil {
			depVal = g
		} else {
			depVal, depErr = g.Resolve(dep)
		}

		if depErr != nil {
			// Stop at the first error
			return errors.Wrapf(depErr, "di.Invoke %T", fn)
		}
		in[i] = safeReflectValue(dep.Type(), depVal)
	}

	out := fnVal.Call(in)

	// Return the first error return value, if any.
	// Don't wrap the error, return it as-is.
	for i := range fnType.NumOut() {
		if fnType.Out(i) == typeError {
			err, _ := out[i].Interface().(error)
			return err
		}
	}

	return nil
}

// InvokeOption is used to configure the behavior of Invoke.
//
// Available options:
//   - [WithArgQualifier]
type InvokeOption interface {
	applyInvokeConfig(*invokeConfig) error
}

type invokeConfig struct {
	deps []TypeKey
}

// WithArgQualifier resolves the first parameter of type T that has no qualifier yet with the
// qualifier q.
//
// This option can be used multiple times for parameters of the same type.
//
// Example:
//
//	err := di.Invoke(g, func(primary, replica *sql.DB) error {
//		return migrate(primary, replica)
//	},
//		di.WithArgQualifier[*sql.DB]("primary"),
//		di.WithArgQualifier[*sql.DB]("replica"),
//	)
func WithArgQualifier[T any](q any) InvokeOption {
	return argQualifierOption{t: reflect.TypeFor[T](), q: q}
}

type argQualifierOption struct {
	t reflect.Type
	q any
}

func (o argQualifierOption) applyInvokeConfig(c *invokeConfig) error {
	for i, dep := range c.deps {
		if dep.Type() == o.t && dep.Qualifier() == nil {
			c.deps[i] = dep.WithQualifier(o.q)
			return nil
		}
	}
	return errors.Errorf("with arg qualifier %s: argument not found", o.t)
}
