package di

import (
	"fmt"
	"maps"

	"github.com/sectrean/di-graph/internal/errors"
)

// BuilderBlock populates a [ComponentBuilder].
//
// Registration functions return their errors, so a block usually joins them:
//
//	func(b *di.ComponentBuilder) error {
//		return errors.Join(
//			di.Constant(b, cfg),
//			di.Provide(b, di.Singleton, NewStore),
//		)
//	}
type BuilderBlock func(b *ComponentBuilder) error

// ComponentBuilder is a mutable registry of entries and subcomponents used to build a [Component].
//
// A ComponentBuilder is not safe for concurrent use. After [ComponentBuilder.Build] every method
// returns an error.
type ComponentBuilder struct {
	qualifier     any
	entries       map[keyID]slot
	seq           int
	subcomponents map[any]*Component
	subBuilders   map[any]*ComponentBuilder
	built         bool
}

// slot is an entry with its registration order.
type slot struct {
	entry Entry
	seq   int
	eager bool
}

// NewComponentBuilder returns an empty builder for a component with the given qualifier.
func NewComponentBuilder(qualifier any) *ComponentBuilder {
	return &ComponentBuilder{
		qualifier:     qualifier,
		entries:       make(map[keyID]slot),
		subcomponents: make(map[any]*Component),
		subBuilders:   make(map[any]*ComponentBuilder),
	}
}

// Qualifier returns the qualifier of the component being built.
func (b *ComponentBuilder) Qualifier() any {
	return b.qualifier
}

// Has reports whether an entry with the key is registered.
func (b *ComponentBuilder) Has(key TypeKey) bool {
	if !key.valid() {
		return false
	}
	_, ok := b.entries[key.id]
	return ok
}

// Register adds an entry.
//
// Fails if an entry with the same key exists and override is false, or if none exists and override
// is true.
func (b *ComponentBuilder) Register(entry Entry, override bool) error {
	if entry == nil {
		return errors.Wrap(invalidRegistration("entry is nil"), "register")
	}
	return errors.Wrapf(b.add(entry, override, false), "register %s", entry.Key())
}

// RegisterConstant registers a value under key.
func (b *ComponentBuilder) RegisterConstant(key TypeKey, value any, opts ...RegisterOption) error {
	r, err := newRegistration(key, opts)
	if err == nil && (r.hasCallbacks() || r.eager) {
		err = invalidRegistration("constant entries do not support callbacks or eager creation")
	}
	if err != nil {
		return errors.Wrapf(err, "register %s", r.key)
	}

	e := &constantEntry{key: r.key, value: value}
	return errors.Wrapf(b.add(e, r.override, false), "register %s", r.key)
}

// RegisterProvider registers a factory without argument under key.
//
// This is the untyped form of [Provide].
func (b *ComponentBuilder) RegisterProvider(
	key TypeKey,
	scope Scope,
	factory func(*Graph) (any, error),
	opts ...RegisterOption,
) error {
	r, err := newRegistration(key, opts)
	if err == nil {
		err = validateProvider(r, scope, factory != nil)
	}
	if err != nil {
		return errors.Wrapf(err, "register %s", r.key)
	}

	e := &providerEntry{
		key:           r.key,
		scope:         scope,
		factory:       factory,
		postConstruct: r.postConstruct,
		dispose:       r.dispose,
	}
	return errors.Wrapf(b.add(e, r.override, r.eager), "register %s", r.key)
}

func validateProvider(r *registration, scope Scope, hasFactory bool) error {
	switch {
	case !hasFactory:
		return invalidRegistration("factory is nil")
	case !scope.valid():
		return invalidRegistration("unknown scope %d", uint8(scope))
	case scope.IsFactoryScope():
		return invalidRegistration("scope %s requires a factory with an argument", scope)
	case r.key.IsFactory():
		return invalidRegistration("key with argument type %s requires a factory scope", r.key.ArgType())
	case r.eager && scope != Singleton:
		return invalidRegistration("eager creation requires %s scope, got %s", Singleton, scope)
	case r.dispose != nil && scope != Singleton:
		return invalidRegistration("dispose callbacks are not supported by %s scope", scope)
	}
	return nil
}

// RegisterFactory registers a factory that takes an argument under key.
//
// This is the untyped form of [ProvideFactory]. The key must have an argument type.
func (b *ComponentBuilder) RegisterFactory(
	key TypeKey,
	scope Scope,
	factory func(*Graph, any) (any, error),
	opts ...RegisterOption,
) error {
	r, err := newRegistration(key, opts)
	if err == nil {
		err = validateFactory(r, scope, factory != nil)
	}
	if err != nil {
		return errors.Wrapf(err, "register %s", r.key)
	}

	e := &factoryEntry{
		key:           r.key,
		scope:         scope,
		factory:       factory,
		postConstruct: r.postConstruct,
		dispose:       r.dispose,
	}
	return errors.Wrapf(b.add(e, r.override, false), "register %s", r.key)
}

func validateFactory(r *registration, scope Scope, hasFactory bool) error {
	switch {
	case !hasFactory:
		return invalidRegistration("factory is nil")
	case !scope.IsFactoryScope():
		return invalidRegistration("scope %s does not take an argument", scope)
	case !r.key.IsFactory():
		return invalidRegistration("factory key requires an argument type")
	case r.eager:
		return invalidRegistration("eager creation requires %s scope, got %s", Singleton, scope)
	case r.dispose != nil && scope != Multiton:
		return invalidRegistration("dispose callbacks are not supported by %s scope", scope)
	}
	return nil
}

// Alias registers key as another name for the existing entry target.
func (b *ComponentBuilder) Alias(target, key TypeKey, override bool) error {
	if err := b.checkOpen(); err != nil {
		return errors.Wrapf(err, "alias %s", key)
	}
	if !b.Has(target) {
		return errors.Wrapf(&EntryNotFoundError{Key: target}, "alias %s", key)
	}
	if target.Equal(key) {
		return errors.Wrapf(invalidRegistration("entry cannot be an alias of itself"), "alias %s", key)
	}

	e := &aliasEntry{key: key, target: target}
	return errors.Wrapf(b.add(e, override, false), "alias %s", key)
}

// Remove removes the entry with the key.
//
// If silent is false, removing a missing entry fails with an [EntryNotFoundError].
func (b *ComponentBuilder) Remove(key TypeKey, silent bool) error {
	if err := b.checkOpen(); err != nil {
		return errors.Wrapf(err, "remove %s", key)
	}
	if !b.Has(key) {
		if silent {
			return nil
		}
		return errors.Wrapf(&EntryNotFoundError{Key: key}, "remove %s", key)
	}

	delete(b.entries, key.id)
	return nil
}

func (b *ComponentBuilder) add(e Entry, override, eager bool) error {
	if err := b.checkOpen(); err != nil {
		return err
	}

	if !e.Key().valid() {
		return invalidRegistration("qualifier of type %T is not comparable", e.Key().Qualifier())
	}

	id := e.Key().id
	_, exists := b.entries[id]
	if exists && !override {
		return invalidRegistration("entry with key %s already exists", e.Key())
	}
	if !exists && override {
		return invalidRegistration("entry with key %s does not exist but override is true", e.Key())
	}

	b.seq++
	b.entries[id] = slot{entry: e, seq: b.seq, eager: eager}
	return nil
}

func (b *ComponentBuilder) checkOpen() error {
	if b.built {
		return invalidRegistration("builder has already been built")
	}
	return nil
}

// SubcomponentIncludeMode controls how [ComponentBuilder.Include] handles the subcomponents of the
// included component.
type SubcomponentIncludeMode uint8

const (
	// Merge extends existing subcomponents with the included ones, recursively.
	// This is the default.
	Merge SubcomponentIncludeMode = iota
	// Replace replaces existing subcomponents with the included ones.
	Replace
	// KeepIfAbsent adds included subcomponents that do not exist yet.
	KeepIfAbsent
	// Skip ignores the included subcomponents.
	Skip
)

func (m SubcomponentIncludeMode) String() string {
	switch m {
	case Merge:
		return "Merge"
	case Replace:
		return "Replace"
	case KeepIfAbsent:
		return "KeepIfAbsent"
	case Skip:
		return "Skip"
	default:
		return fmt.Sprintf("Unknown SubcomponentIncludeMode %d", m)
	}
}

// IncludeOption is used to configure [ComponentBuilder.Include].
//
// Available options:
//   - [IncludeOverride]
//   - [WithSubcomponentMode]
type IncludeOption interface {
	applyInclude(*includeConfig)
}

type includeConfig struct {
	override bool
	mode     SubcomponentIncludeMode
}

type includeOption func(*includeConfig)

func (o includeOption) applyInclude(c *includeConfig) {
	o(c)
}

// IncludeOverride sets whether included entries may replace existing ones. The default is true.
func IncludeOverride(override bool) IncludeOption {
	return includeOption(func(c *includeConfig) {
		c.override = override
	})
}

// WithSubcomponentMode sets how included subcomponents are combined with existing ones.
func WithSubcomponentMode(mode SubcomponentIncludeMode) IncludeOption {
	return includeOption(func(c *includeConfig) {
		c.mode = mode
	})
}

// Include copies the entries and subcomponents of c into the builder.
func (b *ComponentBuilder) Include(c *Component, opts ...IncludeOption) error {
	if err := b.checkOpen(); err != nil {
		return errors.Wrap(err, "include")
	}
	if c == nil {
		return errors.Wrap(invalidRegistration("component is nil"), "include")
	}

	cfg := includeConfig{override: true, mode: Merge}
	for _, opt := range opts {
		opt.applyInclude(&cfg)
	}

	slots := c.orderedSlots()
	if !cfg.override {
		for _, s := range slots {
			if _, ok := b.entries[s.entry.Key().id]; ok {
				return errors.Wrapf(invalidRegistration("entry with key %s already exists", s.entry.Key()),
					"include %v", c.qualifier)
			}
		}
	}

	for _, s := range slots {
		b.seq++
		b.entries[s.entry.Key().id] = slot{entry: s.entry, seq: b.seq, eager: s.eager}
	}

	for _, q := range c.subcomponentQualifiers() {
		sc := c.subcomponents[q]

		switch cfg.mode {
		case Skip:
		case KeepIfAbsent:
			if !b.hasSubcomponent(q) {
				b.subcomponents[q] = sc
			}
		case Replace:
			delete(b.subBuilders, q)
			b.subcomponents[q] = sc
		case Merge:
			sb, err := b.subcomponentBuilder(q)
			if err == nil {
				err = sb.Include(sc)
			}
			if err != nil {
				return errors.Wrapf(err, "include %v", c.qualifier)
			}
		}
	}

	return nil
}

// SubcomponentOption is used to configure [ComponentBuilder.Subcomponent].
//
// Available options:
//   - [Override] replaces an existing subcomponent.
//   - [DeriveExisting] extends an existing subcomponent.
type SubcomponentOption interface {
	applySubcomponent(*subcomponentConfig)
}

type subcomponentConfig struct {
	override       bool
	deriveExisting bool
}

// DeriveExisting extends an existing subcomponent instead of creating a new one.
func DeriveExisting() SubcomponentOption {
	return deriveExistingOption{}
}

type deriveExistingOption struct{}

func (deriveExistingOption) applySubcomponent(c *subcomponentConfig) {
	c.deriveExisting = true
}

// Subcomponent registers a subcomponent with the qualifier and populates it with block.
//
// Without options the subcomponent must not exist yet.
func (b *ComponentBuilder) Subcomponent(qualifier any, block BuilderBlock, opts ...SubcomponentOption) error {
	if err := b.checkOpen(); err != nil {
		return errors.Wrapf(err, "subcomponent %v", qualifier)
	}

	if !isComparable(qualifier) {
		return errors.Wrapf(invalidRegistration("qualifier of type %T is not comparable", qualifier),
			"subcomponent %v", qualifier)
	}

	var cfg subcomponentConfig
	for _, opt := range opts {
		opt.applySubcomponent(&cfg)
	}

	exists := b.hasSubcomponent(qualifier)
	var err error
	switch {
	case cfg.override && cfg.deriveExisting:
		err = invalidRegistration("override and derive existing cannot be combined")
	case cfg.override && !exists:
		err = invalidRegistration("subcomponent with qualifier %v does not exist but override is true", qualifier)
	case cfg.deriveExisting && !exists:
		err = invalidRegistration("subcomponent with qualifier %v does not exist but derive existing is true", qualifier)
	case !cfg.override && !cfg.deriveExisting && exists:
		err = invalidRegistration("subcomponent with qualifier %v already exists", qualifier)
	}
	if err != nil {
		return errors.Wrapf(err, "subcomponent %v", qualifier)
	}

	if cfg.override {
		delete(b.subcomponents, qualifier)
		delete(b.subBuilders, qualifier)
	}

	sb, err := b.subcomponentBuilder(qualifier)
	if err == nil && block != nil {
		err = block(sb)
	}
	return errors.Wrapf(err, "subcomponent %v", qualifier)
}

func (b *ComponentBuilder) hasSubcomponent(q any) bool {
	if _, ok := b.subcomponents[q]; ok {
		return true
	}
	_, ok := b.subBuilders[q]
	return ok
}

// subcomponentBuilder returns the builder of the subcomponent q, creating it from an existing
// subcomponent if there is one.
func (b *ComponentBuilder) subcomponentBuilder(q any) (*ComponentBuilder, error) {
	if sb, ok := b.subBuilders[q]; ok {
		return sb, nil
	}

	sb := NewComponentBuilder(q)
	if existing, ok := b.subcomponents[q]; ok {
		if err := sb.Include(existing); err != nil {
			return nil, err
		}
		delete(b.subcomponents, q)
	}
	b.subBuilders[q] = sb
	return sb, nil
}

// Build returns the Component.
//
// The builder hands its state over to the Component and cannot be used afterwards.
func (b *ComponentBuilder) Build() (*Component, error) {
	c, err := b.build()
	if err != nil {
		return nil, errors.Wrap(err, "di.ComponentBuilder.Build")
	}
	return c, nil
}

func (b *ComponentBuilder) build() (*Component, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	subs := maps.Clone(b.subcomponents)
	for q, sb := range b.subBuilders {
		sc, err := sb.build()
		if err != nil {
			return nil, errors.Wrapf(err, "subcomponent %v", q)
		}
		subs[q] = sc
	}

	c := &Component{
		qualifier:     b.qualifier,
		entries:       b.entries,
		subcomponents: subs,
	}

	b.built = true
	b.entries = nil
	b.subcomponents = nil
	b.subBuilders = nil
	return c, nil
}
