package di

import (
	"fmt"
	"reflect"
	"slices"
	"sort"

	"github.com/sectrean/di-graph/internal/errors"
)

// Component is an immutable registry of entries and subcomponents.
//
// Components are created with [NewComponent] or [ComponentBuilder.Build] and are used to create
// Graphs with [Component.CreateGraph] or a [Tree].
type Component struct {
	qualifier     any
	entries       map[keyID]slot
	subcomponents map[any]*Component
}

var typeComponent = reflect.TypeFor[*Component]()

// NewComponent creates a Component with the qualifier and populates it with block.
func NewComponent(qualifier any, block BuilderBlock) (*Component, error) {
	b := NewComponentBuilder(qualifier)
	if block != nil {
		if err := block(b); err != nil {
			return nil, errors.Wrap(err, "di.NewComponent")
		}
	}

	c, err := b.build()
	if err != nil {
		return nil, errors.Wrap(err, "di.NewComponent")
	}
	return c, nil
}

// Qualifier returns the qualifier of the component.
func (c *Component) Qualifier() any {
	return c.qualifier
}

// Len returns the number of entries.
func (c *Component) Len() int {
	return len(c.entries)
}

// Has reports whether an entry with the key exists.
func (c *Component) Has(key TypeKey) bool {
	if !key.valid() {
		return false
	}
	_, ok := c.entries[key.id]
	return ok
}

// Entry returns the entry with the key.
func (c *Component) Entry(key TypeKey) (Entry, bool) {
	if !key.valid() {
		return nil, false
	}
	s, ok := c.entries[key.id]
	return s.entry, ok
}

// Keys returns the keys of all entries in registration order.
func (c *Component) Keys() []TypeKey {
	slots := c.orderedSlots()
	keys := make([]TypeKey, len(slots))
	for i, s := range slots {
		keys[i] = s.entry.Key()
	}
	return keys
}

// Subcomponent returns the nested subcomponent at path.
func (c *Component) Subcomponent(path ...any) (*Component, error) {
	cur := c
	for _, q := range path {
		var next *Component
		ok := isComparable(q)
		if ok {
			next, ok = cur.subcomponents[q]
		}
		if !ok {
			err := &EntryNotFoundError{Key: KeyFor(typeComponent, WithQualifier(q))}
			return nil, errors.Wrapf(err, "di.Component.Subcomponent %v", q)
		}
		cur = next
	}
	return cur, nil
}

// Derive returns a copy of the component extended by block.
func (c *Component) Derive(block BuilderBlock) (*Component, error) {
	return c.DeriveWithQualifier(c.qualifier, block)
}

// DeriveWithQualifier is like Derive but sets a new qualifier.
func (c *Component) DeriveWithQualifier(qualifier any, block BuilderBlock) (*Component, error) {
	b := NewComponentBuilder(qualifier)
	if err := b.Include(c); err != nil {
		return nil, errors.Wrap(err, "di.Component.Derive")
	}
	if block != nil {
		if err := block(b); err != nil {
			return nil, errors.Wrap(err, "di.Component.Derive")
		}
	}

	derived, err := b.build()
	if err != nil {
		return nil, errors.Wrap(err, "di.Component.Derive")
	}
	return derived, nil
}

func (c *Component) orderedSlots() []slot {
	slots := make([]slot, 0, len(c.entries))
	for _, s := range c.entries {
		slots = append(slots, s)
	}
	slices.SortFunc(slots, func(a, b slot) int {
		return a.seq - b.seq
	})
	return slots
}

func (c *Component) eagerKeys() []TypeKey {
	var keys []TypeKey
	for _, s := range c.orderedSlots() {
		if s.eager {
			keys = append(keys, s.entry.Key())
		}
	}
	return keys
}

// subcomponentQualifiers returns the subcomponent qualifiers in a stable order.
func (c *Component) subcomponentQualifiers() []any {
	qs := make([]any, 0, len(c.subcomponents))
	for q := range c.subcomponents {
		qs = append(qs, q)
	}
	sort.Slice(qs, func(i, j int) bool {
		return fmt.Sprint(qs[i]) < fmt.Sprint(qs[j])
	})
	return qs
}

func (c *Component) String() string {
	return fmt.Sprintf("Component(qualifier=%v, entries=%d, subcomponents=%d)",
		c.qualifier, len(c.entries), len(c.subcomponents))
}
