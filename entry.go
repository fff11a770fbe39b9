package di

// Entry is the description of a service registered with a [Component].
//
// Entries never reference a Graph. They are bound to a Graph the first time their key is
// requested from it.
//
// The variants are constants, providers, factories and aliases. Entries are created with the
// registration functions such as [Constant], [Provide] and [ProvideFactory].
type Entry interface {
	// Key returns the key the entry is registered under.
	Key() TypeKey
	// Scope returns the scope of the entry. Constants and aliases report [Singleton].
	Scope() Scope

	bind(g *graph) boundService
}

type constantEntry struct {
	key   TypeKey
	value any
}

func (e *constantEntry) Key() TypeKey { return e.key }
func (e *constantEntry) Scope() Scope { return Singleton }

func (e *constantEntry) bind(g *graph) boundService {
	return &constantService{g: g, entry: e}
}

type providerEntry struct {
	key           TypeKey
	scope         Scope
	factory       func(*Graph) (any, error)
	postConstruct func(*Graph, any) error
	dispose       func(*Graph, any) error
}

func (e *providerEntry) Key() TypeKey { return e.key }
func (e *providerEntry) Scope() Scope { return e.scope }

func (e *providerEntry) bind(g *graph) boundService {
	switch e.scope {
	case Singleton:
		return &singletonService{g: g, entry: e}
	case WeakSingleton:
		return &referenceService{g: g, entry: e, cache: g.weakRefs}
	case SoftSingleton:
		return &referenceService{g: g, entry: e, cache: g.softRefs}
	default:
		return &prototypeService{g: g, entry: e}
	}
}

type factoryEntry struct {
	key           TypeKey
	scope         Scope
	factory       func(*Graph, any) (any, error)
	postConstruct func(*Graph, any) error
	dispose       func(*Graph, any) error
}

func (e *factoryEntry) Key() TypeKey { return e.key }
func (e *factoryEntry) Scope() Scope { return e.scope }

func (e *factoryEntry) bind(g *graph) boundService {
	if e.scope == Multiton {
		return &multitonService{g: g, entry: e}
	}
	return &prototypeFactoryService{g: g, entry: e}
}

type aliasEntry struct {
	key    TypeKey
	target TypeKey
}

func (e *aliasEntry) Key() TypeKey { return e.key }
func (e *aliasEntry) Scope() Scope { return Singleton }

func (e *aliasEntry) bind(g *graph) boundService {
	return &aliasService{g: g, entry: e}
}

var (
	_ Entry = (*constantEntry)(nil)
	_ Entry = (*providerEntry)(nil)
	_ Entry = (*factoryEntry)(nil)
	_ Entry = (*aliasEntry)(nil)
)
