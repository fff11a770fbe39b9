package di

import (
	"fmt"
	"hash/maphash"
	"reflect"
	"strings"
)

// TypeKey identifies an entry of a [Component] and the service bound to it in a [Graph].
//
// A key is made of the service type, an optional argument type for factories and an optional
// qualifier. Keys can be compared with == and used as map keys; == agrees with [TypeKey.Equal].
type TypeKey struct {
	id keyID
}

// keyID is the map identity of a TypeKey.
type keyID struct {
	typ       reflect.Type
	arg       reflect.Type
	qualifier any
}

var hashSeed = maphash.MakeSeed()

// KeyOf returns the key of a service of type T.
//
// Available options:
//   - [WithQualifier]
//   - [WithGenerics]
func KeyOf[T any](opts ...KeyOption) TypeKey {
	return KeyFor(reflect.TypeFor[T](), opts...)
}

// FactoryKeyOf returns the key of a factory that takes an argument of type A and returns R.
func FactoryKeyOf[A, R any](opts ...KeyOption) TypeKey {
	k := KeyFor(reflect.TypeFor[R](), opts...)
	k.id.arg = reflect.TypeFor[A]()
	return k
}

// KeyFor returns the key of a service of type t.
func KeyFor(t reflect.Type, opts ...KeyOption) TypeKey {
	k := TypeKey{id: keyID{typ: t}}
	for _, opt := range opts {
		opt.applyKey(&k)
	}
	return k
}

// Type returns the service type.
func (k TypeKey) Type() reflect.Type {
	return k.id.typ
}

// ArgType returns the factory argument type, or nil for non-factory keys.
func (k TypeKey) ArgType() reflect.Type {
	return k.id.arg
}

// Qualifier returns the qualifier, or nil.
func (k TypeKey) Qualifier() any {
	return k.id.qualifier
}

// IsFactory reports whether the key identifies a factory.
func (k TypeKey) IsFactory() bool {
	return k.id.arg != nil
}

// Equal reports whether both keys identify the same entry.
//
// Keys with a qualifier that is not comparable are compared by value.
func (k TypeKey) Equal(other TypeKey) bool {
	if !k.valid() || !other.valid() {
		return k.TypeEquals(other) && argsEqual(k.id.qualifier, other.id.qualifier)
	}
	return k.id == other.id
}

// TypeEquals is like Equal but ignores the qualifier.
func (k TypeKey) TypeEquals(other TypeKey) bool {
	return k.id.typ == other.id.typ && k.id.arg == other.id.arg
}

// Hash returns a hash consistent with Equal.
//
// Hashes are stable for the lifetime of the process.
func (k TypeKey) Hash() uint64 {
	if !k.valid() {
		return maphash.Comparable(hashSeed, keyID{typ: k.id.typ, arg: k.id.arg})
	}
	return maphash.Comparable(hashSeed, k.id)
}

// valid reports whether the key can be used as a map key. Keys with a qualifier that is not
// comparable never match an entry.
func (k TypeKey) valid() bool {
	return isComparable(k.id.qualifier)
}

// Descriptor returns the structural description of the service type.
func (k TypeKey) Descriptor() TypeDescriptor {
	return DescribeType(k.id.typ)
}

// WithQualifier returns a copy of the key with the given qualifier.
func (k TypeKey) WithQualifier(q any) TypeKey {
	k.id.qualifier = q
	return k
}

func (k TypeKey) String() string {
	return k.format(typeString)
}

// Describe is like String but names types with their full package path, including the
// arguments of generic types.
func (k TypeKey) Describe() string {
	return k.format(func(t reflect.Type) string {
		return DescribeType(t).String()
	})
}

func (k TypeKey) format(name func(reflect.Type) string) string {
	var sb strings.Builder
	sb.WriteString(name(k.id.typ))
	if k.id.arg != nil {
		sb.WriteString(" (arg ")
		sb.WriteString(name(k.id.arg))
		sb.WriteString(")")
	}
	if k.id.qualifier != nil {
		fmt.Fprintf(&sb, " (qualifier %v)", k.id.qualifier)
	}
	return sb.String()
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// KeyOption is used to configure a [TypeKey].
//
// Available options:
//   - [WithQualifier]
//   - [WithGenerics]
type KeyOption interface {
	applyKey(*TypeKey)
}

// QualifierOption sets the qualifier of a key. It can be used wherever a key is built.
type QualifierOption interface {
	KeyOption
	RegisterOption
}

// WithQualifier sets a qualifier to tell apart services of the same type.
//
// The qualifier must be comparable.
func WithQualifier(q any) QualifierOption {
	return qualifierOption{q}
}

type qualifierOption struct {
	q any
}

func (o qualifierOption) applyKey(k *TypeKey) {
	k.id.qualifier = o.q
}

func (o qualifierOption) applyRegistration(r *registration) error {
	if !isComparable(o.q) {
		return invalidRegistration("qualifier of type %T is not comparable", o.q)
	}
	r.key.id.qualifier = o.q
	return nil
}

// WithGenerics requests a key that tells apart instantiations of a generic type.
//
// Go types keep their type arguments at runtime, so every key already does: the option returns
// the same key as without it. Use [TypeKey.Descriptor] or [TypeKey.Describe] for the structural
// description of the type.
func WithGenerics() QualifierOption {
	return genericsOption{}
}

type genericsOption struct{}

func (genericsOption) applyKey(*TypeKey) {}

func (genericsOption) applyRegistration(*registration) error {
	return nil
}

var (
	_ QualifierOption = qualifierOption{}
	_ QualifierOption = genericsOption{}
)

// TypeDescriptor is a structural description of a Go type.
//
// Named types are described by package path and name, including any type arguments.
// Unnamed composite types are described by their element, key, parameter and result types.
type TypeDescriptor struct {
	Kind    reflect.Kind
	PkgPath string
	Name    string
	Len     int
	Dir     reflect.ChanDir
	Elem    *TypeDescriptor
	Key     *TypeDescriptor
	In      []TypeDescriptor
	Out     []TypeDescriptor
}

// DescribeType returns the descriptor of t.
func DescribeType(t reflect.Type) TypeDescriptor {
	if t == nil {
		return TypeDescriptor{Kind: reflect.Invalid}
	}

	d := TypeDescriptor{Kind: t.Kind(), PkgPath: t.PkgPath(), Name: t.Name()}
	if d.Name != "" {
		return d
	}

	switch t.Kind() {
	case reflect.Pointer, reflect.Slice:
		elem := DescribeType(t.Elem())
		d.Elem = &elem
	case reflect.Chan:
		elem := DescribeType(t.Elem())
		d.Elem = &elem
		d.Dir = t.ChanDir()
	case reflect.Array:
		elem := DescribeType(t.Elem())
		d.Elem = &elem
		d.Len = t.Len()
	case reflect.Map:
		key := DescribeType(t.Key())
		elem := DescribeType(t.Elem())
		d.Key = &key
		d.Elem = &elem
	case reflect.Func:
		for i := range t.NumIn() {
			d.In = append(d.In, DescribeType(t.In(i)))
		}
		for i := range t.NumOut() {
			d.Out = append(d.Out, DescribeType(t.Out(i)))
		}
	default:
		d.Name = t.String()
	}

	return d
}

// Equal reports whether both descriptors describe the same type.
func (d TypeDescriptor) Equal(other TypeDescriptor) bool {
	if d.Kind != other.Kind || d.PkgPath != other.PkgPath || d.Name != other.Name ||
		d.Len != other.Len || d.Dir != other.Dir {
		return false
	}
	if !descriptorPtrEqual(d.Elem, other.Elem) || !descriptorPtrEqual(d.Key, other.Key) {
		return false
	}
	return descriptorsEqual(d.In, other.In) && descriptorsEqual(d.Out, other.Out)
}

func descriptorPtrEqual(a, b *TypeDescriptor) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func descriptorsEqual(a, b []TypeDescriptor) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// String returns the fully qualified type name.
func (d TypeDescriptor) String() string {
	if d.Name != "" {
		if d.PkgPath == "" {
			return d.Name
		}
		return d.PkgPath + "." + d.Name
	}

	switch d.Kind {
	case reflect.Pointer:
		return "*" + d.Elem.String()
	case reflect.Slice:
		return "[]" + d.Elem.String()
	case reflect.Array:
		return fmt.Sprintf("[%d]%s", d.Len, d.Elem.String())
	case reflect.Chan:
		switch d.Dir {
		case reflect.RecvDir:
			return "<-chan " + d.Elem.String()
		case reflect.SendDir:
			return "chan<- " + d.Elem.String()
		default:
			return "chan " + d.Elem.String()
		}
	case reflect.Map:
		return "map[" + d.Key.String() + "]" + d.Elem.String()
	case reflect.Func:
		return "func(" + joinDescriptors(d.In) + ") (" + joinDescriptors(d.Out) + ")"
	default:
		return d.Kind.String()
	}
}

func joinDescriptors(ds []TypeDescriptor) string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = d.String()
	}
	return strings.Join(parts, ", ")
}
