package di

import (
	"fmt"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"

	"github.com/sectrean/di-graph/internal/errors"
)

// Graph is a live instance of a [Component]. It creates, caches and disposes the services
// registered with the Component and can be chained to a parent Graph.
//
// Services are looked up in the Graph first and then in its ancestors. Instances are cached in the
// Graph that owns the entry, so ancestors never hold instances of their descendants.
//
// A Graph is safe for concurrent use. Construction is serialized per Graph.
//
// The *Graph passed to factories and callbacks belongs to the resolution in progress. It may be
// stored and used later, but must not be shared with other goroutines while the factory runs.
type Graph struct {
	g   *graph
	res *resolution
}

var typeGraph = reflect.TypeFor[*Graph]()

type graph struct {
	id        uuid.UUID
	parent    *graph
	component *Component
	handle    *Graph
	logger    *zap.Logger
	baseLog   *zap.Logger
	plugins   *Plugins
	weakRefs  *referenceCache
	softRefs  *referenceCache

	// Set before the graph is registered with its parent.
	name       any
	registered bool
	seq        uint64

	mu      sync.Mutex
	cache   map[keyID]boundService
	eval    evaluator
	closing bool

	// Services with at least one constructed instance, in order of first construction.
	constructed []boundService
	tracked     map[boundService]bool

	disposed  atomic.Bool
	childSeq  atomic.Uint64
	children  *xsync.MapOf[any, *graph]
	onDispose func(*graph)
}

// CreateGraph creates a root Graph from the component.
//
// Available options:
//   - [WithBuilder] derives the component before the Graph is created.
//   - [WithLogger] sets the logger of the Graph and its subgraphs.
//   - [WithPlugins] sets the plugins of the Graph and its subgraphs.
//   - [WithWeakReferences] and [WithSoftReferences] bound the reference caches.
func (c *Component) CreateGraph(opts ...GraphOption) (*Graph, error) {
	cfg := newGraphConfig(opts)
	if cfg.identifier != nil {
		return nil, errors.New("di.Component.CreateGraph: identifier is not supported for root graphs")
	}

	r := newResolution()
	defer r.finish()

	g, err := newGraph(r, nil, c, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "di.Component.CreateGraph")
	}
	return g.handle, nil
}

func newGraph(r *resolution, parent *graph, c *Component, cfg graphConfig) (*graph, error) {
	base := cfg.logger
	plugins := cfg.plugins
	if parent != nil {
		if base == nil {
			base = parent.baseLog
		}
		if plugins == nil {
			plugins = parent.plugins
		}
	}
	if base == nil {
		base = zap.NewNop()
	}

	if cfg.block != nil || plugins.hasInitializing() {
		var err error
		c, err = initializeComponent(r, parent, c, cfg.block, plugins)
		if err != nil {
			return nil, err
		}
	}

	g := &graph{
		id:        uuid.New(),
		parent:    parent,
		component: c,
		baseLog:   base,
		plugins:   plugins,
		cache:     make(map[keyID]boundService),
		tracked:   make(map[boundService]bool),
		children:  xsync.NewMapOf[any, *graph](),
	}
	g.handle = &Graph{g: g}
	g.eval.g = g
	g.logger = base.With(
		zap.Stringer("graph_id", g.id),
		zap.Any("qualifier", c.qualifier),
	)

	switch {
	case cfg.weak != nil || parent == nil:
		g.weakRefs = newReferenceCache(valueOr(cfg.weak, defaultWeakPolicy))
	default:
		g.weakRefs = parent.weakRefs
	}
	switch {
	case cfg.soft != nil || parent == nil:
		g.softRefs = newReferenceCache(valueOr(cfg.soft, defaultSoftPolicy))
	default:
		g.softRefs = parent.softRefs
	}

	for _, key := range c.eagerKeys() {
		if _, err := g.instance(r, key, nil); err != nil {
			_ = g.dispose(r)
			return nil, errors.Wrapf(err, "eager %s", key)
		}
	}

	g.logger.Debug("graph created")
	return g, nil
}

func initializeComponent(
	r *resolution,
	parent *graph,
	c *Component,
	block BuilderBlock,
	plugins *Plugins,
) (*Component, error) {
	b := NewComponentBuilder(c.qualifier)
	if err := b.Include(c); err != nil {
		return nil, err
	}
	if block != nil {
		if err := block(b); err != nil {
			return nil, err
		}
	}

	var parentHandle *Graph
	if parent != nil {
		parentHandle = &Graph{g: parent, res: r}
	}
	if err := plugins.initializingComponent(parentHandle, b); err != nil {
		return nil, err
	}

	return b.build()
}

// ID returns the unique identifier of the Graph.
func (h *Graph) ID() uuid.UUID {
	return h.g.id
}

// Component returns the component the Graph was created from.
func (h *Graph) Component() *Component {
	return h.g.component
}

// Parent returns the parent Graph, or nil for a root Graph.
func (h *Graph) Parent() *Graph {
	if h.g.parent == nil {
		return nil
	}
	return h.g.parent.handle
}

// Name returns the identifier the Graph is registered under in its parent, or nil.
func (h *Graph) Name() any {
	return h.g.name
}

// IsDisposed reports whether the Graph has been disposed.
func (h *Graph) IsDisposed() bool {
	return h.g.disposed.Load()
}

// Has reports whether the Graph or one of its ancestors has an entry with the key.
func (h *Graph) Has(key TypeKey) bool {
	for cur := h.g; cur != nil; cur = cur.parent {
		if cur.component.Has(key) {
			return true
		}
	}
	return false
}

// Keys returns the keys of the Graph and its ancestors, ancestors first.
func (h *Graph) Keys() []TypeKey {
	var chain []*graph
	for cur := h.g; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}

	seen := make(map[keyID]bool)
	var keys []TypeKey
	for _, g := range slices.Backward(chain) {
		for _, k := range g.component.Keys() {
			if !seen[k.id] {
				seen[k.id] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// Resolve returns the instance for the key.
//
// Returns an [EntryNotFoundError] if neither the Graph nor its ancestors have an entry with the key.
func (h *Graph) Resolve(key TypeKey) (any, error) {
	if key.IsFactory() {
		return nil, errors.Errorf("di.Graph.Resolve %s: factory keys require an argument", key)
	}

	r, done := h.begin()
	defer done()

	return h.g.instance(r, key, nil)
}

// ResolveWithArg returns the instance created by the factory with the key for the argument.
func (h *Graph) ResolveWithArg(key TypeKey, arg any) (any, error) {
	if err := checkArg(key, arg); err != nil {
		return nil, errors.Wrapf(err, "di.Graph.ResolveWithArg %s", key)
	}

	r, done := h.begin()
	defer done()

	return h.g.instance(r, key, arg)
}

// ResolveOptional is like Resolve but reports a missing entry with false instead of an error.
//
// Errors from the construction of an existing entry are still returned.
func (h *Graph) ResolveOptional(key TypeKey) (any, bool, error) {
	r, done := h.begin()
	defer done()

	svc, err := h.g.service(r, key)
	if err != nil || svc == nil {
		return nil, false, err
	}

	val, err := svc.instance(r, nil)
	return val, true, err
}

// Provider returns a function that returns the instance for the key each time it is called.
//
// The entry is looked up immediately, the instance is only created when the function is called.
func (h *Graph) Provider(key TypeKey) (func() (any, error), error) {
	svc, err := h.lookup(key)
	if err != nil {
		return nil, err
	}

	return func() (any, error) {
		r, done := h.begin()
		defer done()
		return svc.instance(r, nil)
	}, nil
}

// Factory returns a function that returns the instance of the factory with the key for an argument.
func (h *Graph) Factory(key TypeKey) (func(any) (any, error), error) {
	if !key.IsFactory() {
		return nil, errors.Errorf("di.Graph.Factory %s: key has no argument type", key)
	}

	svc, err := h.lookup(key)
	if err != nil {
		return nil, err
	}

	return func(arg any) (any, error) {
		if err := checkArg(key, arg); err != nil {
			return nil, err
		}

		r, done := h.begin()
		defer done()
		return svc.instance(r, arg)
	}, nil
}

func (h *Graph) lookup(key TypeKey) (boundService, error) {
	r, done := h.begin()
	defer done()

	svc, err := h.g.service(r, key)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, &EntryNotFoundError{Key: key}
	}
	return svc, nil
}

func checkArg(key TypeKey, arg any) error {
	at := key.ArgType()
	if at == nil {
		return errors.New("key has no argument type")
	}
	if arg != nil && !reflect.TypeOf(arg).AssignableTo(at) {
		return errors.Errorf("argument of type %T is not assignable to %s", arg, at)
	}
	return nil
}

func (g *graph) instance(r *resolution, key TypeKey, arg any) (any, error) {
	svc, err := g.service(r, key)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, &EntryNotFoundError{Key: key}
	}
	return svc.instance(r, arg)
}

// service returns the bound service for the key from g or the nearest ancestor that has an entry
// for it. It returns nil if there is none.
//
// Each graph is locked only while its own cache is consulted.
func (g *graph) service(r *resolution, key TypeKey) (boundService, error) {
	for cur := g; cur != nil; cur = cur.parent {
		svc, found, err := cur.localService(r, key)
		if err != nil || found {
			return svc, err
		}
	}
	return nil, nil
}

func (g *graph) localService(r *resolution, key TypeKey) (boundService, bool, error) {
	g.lock(r)
	defer g.unlock(r)

	if err := g.checkDisposed(key); err != nil {
		return nil, false, err
	}
	if !key.valid() {
		return nil, false, nil
	}
	if svc, ok := g.cache[key.id]; ok {
		return svc, true, nil
	}

	s, ok := g.component.entries[key.id]
	if !ok {
		return nil, false, nil
	}

	svc := s.entry.bind(g)
	g.cache[key.id] = svc
	return svc, true, nil
}

// track records that svc has constructed an instance. It must be called with the graph locked.
func (g *graph) track(svc boundService) {
	if !g.tracked[svc] {
		g.tracked[svc] = true
		g.constructed = append(g.constructed, svc)
	}
}

func (g *graph) checkDisposed(key TypeKey) error {
	if g.disposed.Load() {
		return errors.Wrapf(ErrGraphDisposed, "resolve %s", key)
	}
	return nil
}

// OpenSubgraph creates a Graph from the subcomponent with the qualifier and registers it as a child
// of this Graph.
//
// The child is registered under the qualifier, or under the identifier set with [WithIdentifier].
// Registered children are disposed with their parent and can be found with [Graph.Child].
//
// Available options:
//   - [WithIdentifier] registers the child under a different name.
//   - [WithBuilder] derives the subcomponent before the Graph is created.
//   - [WithLogger], [WithPlugins], [WithWeakReferences] and [WithSoftReferences] replace the
//     settings inherited from the parent.
func (h *Graph) OpenSubgraph(qualifier any, opts ...GraphOption) (*Graph, error) {
	r, done := h.begin()
	defer done()

	child, err := h.g.openSubgraph(r, qualifier, newGraphConfig(opts), true)
	if err != nil {
		return nil, errors.Wrapf(err, "di.Graph.OpenSubgraph %v", qualifier)
	}
	return child.handle, nil
}

// CreateSubgraph is like OpenSubgraph but does not register the child.
//
// The caller is responsible for disposing the child.
func (h *Graph) CreateSubgraph(qualifier any, opts ...GraphOption) (*Graph, error) {
	r, done := h.begin()
	defer done()

	child, err := h.g.openSubgraph(r, qualifier, newGraphConfig(opts), false)
	if err != nil {
		return nil, errors.Wrapf(err, "di.Graph.CreateSubgraph %v", qualifier)
	}
	return child.handle, nil
}

func (g *graph) openSubgraph(r *resolution, qualifier any, cfg graphConfig, register bool) (*graph, error) {
	name := qualifier
	if cfg.identifier != nil {
		name = cfg.identifier
	}
	if register && !isComparable(name) {
		return nil, errors.Errorf("identifier of type %T is not comparable", name)
	}
	if cfg.weak != nil && cfg.weak.TTL > 0 || cfg.soft != nil && cfg.soft.TTL > 0 {
		return nil, errors.New("reference expiration is only supported for root graphs")
	}

	if err := g.checkCanOpen(r, name, register); err != nil {
		return nil, err
	}

	sc, err := g.component.Subcomponent(qualifier)
	if err != nil {
		return nil, err
	}

	child, err := newGraph(r, g, sc, cfg)
	if err != nil || !register {
		return child, err
	}

	g.lock(r)
	err = g.checkCanOpen(r, name, register)
	if err == nil {
		child.name = name
		child.registered = true
		child.seq = g.childSeq.Add(1)
		g.children.Store(name, child)
	}
	g.unlock(r)

	if err != nil {
		_ = child.dispose(r)
		return nil, err
	}
	return child, nil
}

func (g *graph) checkCanOpen(r *resolution, name any, register bool) error {
	g.lock(r)
	defer g.unlock(r)

	if g.closing || g.disposed.Load() {
		return ErrGraphDisposed
	}
	if _, ok := g.children.Load(name); ok && register {
		return errors.Errorf("subgraph with identifier %v is already open", name)
	}
	return nil
}

// Child returns the open child Graph registered under the name.
func (h *Graph) Child(name any) (*Graph, bool) {
	if !isComparable(name) {
		return nil, false
	}
	if child, ok := h.g.children.Load(name); ok {
		return child.handle, true
	}
	return nil, false
}

// Children returns the open child Graphs in the order they were opened.
func (h *Graph) Children() []*Graph {
	children := h.g.openChildren()
	handles := make([]*Graph, len(children))
	for i, c := range children {
		handles[len(children)-1-i] = c.handle
	}
	return handles
}

// openChildren returns the registered children, most recently opened first.
func (g *graph) openChildren() []*graph {
	var children []*graph
	g.children.Range(func(_ any, c *graph) bool {
		children = append(children, c)
		return true
	})
	slices.SortFunc(children, func(a, b *graph) int {
		switch {
		case a.seq > b.seq:
			return -1
		case a.seq < b.seq:
			return 1
		default:
			return 0
		}
	})
	return children
}

// Dispose disposes the open children of the Graph, most recently opened first, then the Graph.
//
// [GraphDisposePlugin]s are notified before the dispose callbacks of the cached instances run in
// reverse construction order, so services are disposed before their dependencies. The Graph is then marked disposed and removed from its parent.
// Later calls do nothing.
func (h *Graph) Dispose() error {
	r, done := h.begin()
	defer done()

	return errors.Wrap(h.g.dispose(r), "di.Graph.Dispose")
}

func (g *graph) dispose(r *resolution) error {
	g.lock(r)
	if g.closing || g.disposed.Load() {
		g.unlock(r)
		return nil
	}
	g.closing = true
	g.unlock(r)

	var errs errors.MultiError
	for _, child := range g.openChildren() {
		errs = errs.Append(child.dispose(r))
	}

	g.lock(r)
	h := &Graph{g: g, res: r}
	g.plugins.graphDispose(h)
	for _, svc := range slices.Backward(g.constructed) {
		errs = errs.Append(svc.dispose(h))
	}
	g.disposed.Store(true)
	g.cache = nil
	g.constructed = nil
	g.tracked = nil
	g.unlock(r)

	if g.registered {
		g.parent.children.Delete(g.name)
	}
	if g.onDispose != nil {
		g.onDispose(g)
	}

	g.logger.Debug("graph disposed")
	return errs.Join()
}

// ReleaseWeakReferences releases the cached [WeakSingleton] instances of the Graph and of every
// Graph sharing its weak reference cache.
func (h *Graph) ReleaseWeakReferences() {
	h.g.weakRefs.purge()
}

// ReleaseReferences releases the cached [WeakSingleton] and [SoftSingleton] instances of the Graph
// and of every Graph sharing its reference caches. Call it when memory is low.
func (h *Graph) ReleaseReferences() {
	h.g.weakRefs.purge()
	h.g.softRefs.purge()
}

func (h *Graph) String() string {
	return fmt.Sprintf("Graph(%s, qualifier=%v)", h.g.id, h.g.component.qualifier)
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
