package di

import "fmt"

// Scope specifies how the instances of a service are created and cached by a [Graph].
//
// Available scopes:
//   - [Prototype] creates a new instance on every request.
//   - [Singleton] creates the instance once per Graph.
//   - [WeakSingleton] caches the instance until the weak reference cache releases it.
//   - [SoftSingleton] caches the instance until the soft reference cache releases it.
//   - [PrototypeFactory] creates a new instance from an argument on every request.
//   - [Multiton] creates one instance per distinct argument.
type Scope uint8

const (
	// Prototype specifies that a new instance is created for each request.
	Prototype Scope = iota

	// Singleton specifies that the instance is created once and then shared within the Graph.
	Singleton

	// WeakSingleton specifies that the instance is shared until the Graph releases it.
	//
	// Weak references are released by [Graph.ReleaseWeakReferences], [Graph.ReleaseReferences] or
	// when the weak reference cache is full or expired.
	WeakSingleton

	// SoftSingleton is like WeakSingleton but is only released by [Graph.ReleaseReferences] or when
	// the soft reference cache is full or expired.
	SoftSingleton

	// PrototypeFactory specifies that a new instance is created from the argument for each request.
	PrototypeFactory

	// Multiton specifies that one instance is created for each distinct argument.
	//
	// Arguments are compared with == when comparable and with reflect.DeepEqual otherwise.
	Multiton
)

// IsFactoryScope reports whether services of this scope take an argument.
func (s Scope) IsFactoryScope() bool {
	return s == PrototypeFactory || s == Multiton
}

func (s Scope) valid() bool {
	return s <= Multiton
}

func (s Scope) String() string {
	switch s {
	case Prototype:
		return "Prototype"
	case Singleton:
		return "Singleton"
	case WeakSingleton:
		return "WeakSingleton"
	case SoftSingleton:
		return "SoftSingleton"
	case PrototypeFactory:
		return "PrototypeFactory"
	case Multiton:
		return "Multiton"
	default:
		return fmt.Sprintf("Unknown Scope %d", s)
	}
}
