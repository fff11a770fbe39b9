package di

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/sectrean/di-graph/internal/errors"
)

// InitializingComponentPlugin is called before a Graph is created and can change the entries of
// its component.
//
// parent is nil for root Graphs.
type InitializingComponentPlugin interface {
	InitializingComponent(parent *Graph, b *ComponentBuilder) error
}

// PostConstructPlugin is called once for every instance created by a Graph, after the
// post-construct callback of the instance. arg is nil unless the service is a factory.
type PostConstructPlugin interface {
	PostConstruct(g *Graph, scope Scope, arg, instance any)
}

// GraphDisposePlugin is called right before a Graph is marked disposed.
type GraphDisposePlugin interface {
	GraphDispose(g *Graph)
}

// Plugins is a registry of plugins passed to Graphs with [WithPlugins].
//
// Plugins are called in the order they were added. Adding and removing plugins is safe for
// concurrent use and does not block Graphs calling the plugins.
//
// Plugins are compared with ==, so they should be pointers.
type Plugins struct {
	mu             sync.Mutex
	initializing   atomic.Pointer[[]InitializingComponentPlugin]
	postConstructs atomic.Pointer[[]PostConstructPlugin]
	disposes       atomic.Pointer[[]GraphDisposePlugin]
}

// NewPlugins returns an empty registry.
func NewPlugins() *Plugins {
	return &Plugins{}
}

// Add adds the plugin for every plugin interface it implements.
//
// Returns false if the plugin implements none or was already added.
func (p *Plugins) Add(plugin any) bool {
	var added bool
	if pl, ok := plugin.(InitializingComponentPlugin); ok {
		added = p.AddInitializingComponentPlugin(pl) || added
	}
	if pl, ok := plugin.(PostConstructPlugin); ok {
		added = p.AddPostConstructPlugin(pl) || added
	}
	if pl, ok := plugin.(GraphDisposePlugin); ok {
		added = p.AddGraphDisposePlugin(pl) || added
	}
	return added
}

// Remove removes the plugin from every list it was added to.
func (p *Plugins) Remove(plugin any) bool {
	var removed bool
	if pl, ok := plugin.(InitializingComponentPlugin); ok {
		removed = p.RemoveInitializingComponentPlugin(pl) || removed
	}
	if pl, ok := plugin.(PostConstructPlugin); ok {
		removed = p.RemovePostConstructPlugin(pl) || removed
	}
	if pl, ok := plugin.(GraphDisposePlugin); ok {
		removed = p.RemoveGraphDisposePlugin(pl) || removed
	}
	return removed
}

// AddInitializingComponentPlugin adds pl. Returns false if it was already added.
func (p *Plugins) AddInitializingComponentPlugin(pl InitializingComponentPlugin) bool {
	return addPlugin(&p.mu, &p.initializing, pl)
}

// RemoveInitializingComponentPlugin removes pl. Returns false if it was not added.
func (p *Plugins) RemoveInitializingComponentPlugin(pl InitializingComponentPlugin) bool {
	return removePlugin(&p.mu, &p.initializing, pl)
}

// AddPostConstructPlugin adds pl. Returns false if it was already added.
func (p *Plugins) AddPostConstructPlugin(pl PostConstructPlugin) bool {
	return addPlugin(&p.mu, &p.postConstructs, pl)
}

// RemovePostConstructPlugin removes pl. Returns false if it was not added.
func (p *Plugins) RemovePostConstructPlugin(pl PostConstructPlugin) bool {
	return removePlugin(&p.mu, &p.postConstructs, pl)
}

// AddGraphDisposePlugin adds pl. Returns false if it was already added.
func (p *Plugins) AddGraphDisposePlugin(pl GraphDisposePlugin) bool {
	return addPlugin(&p.mu, &p.disposes, pl)
}

// RemoveGraphDisposePlugin removes pl. Returns false if it was not added.
func (p *Plugins) RemoveGraphDisposePlugin(pl GraphDisposePlugin) bool {
	return removePlugin(&p.mu, &p.disposes, pl)
}

// Reset removes all plugins.
func (p *Plugins) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.initializing.Store(nil)
	p.postConstructs.Store(nil)
	p.disposes.Store(nil)
}

// Len returns the number of registrations across all plugin lists.
func (p *Plugins) Len() int {
	if p == nil {
		return 0
	}
	return len(loadPlugins(&p.initializing)) + len(loadPlugins(&p.postConstructs)) + len(loadPlugins(&p.disposes))
}

func (p *Plugins) hasInitializing() bool {
	return p != nil && len(loadPlugins(&p.initializing)) > 0
}

func (p *Plugins) initializingComponent(parent *Graph, b *ComponentBuilder) error {
	if p == nil {
		return nil
	}

	for _, pl := range loadPlugins(&p.initializing) {
		if err := pl.InitializingComponent(parent, b); err != nil {
			return errors.Wrapf(err, "initializing component plugin %T", pl)
		}
	}
	return nil
}

func (p *Plugins) postConstruct(g *Graph, scope Scope, arg, instance any) {
	if p == nil {
		return
	}

	for _, pl := range loadPlugins(&p.postConstructs) {
		pl.PostConstruct(g, scope, arg, instance)
	}
}

func (p *Plugins) graphDispose(g *Graph) {
	if p == nil {
		return
	}

	for _, pl := range loadPlugins(&p.disposes) {
		pl.GraphDispose(g)
	}
}

func loadPlugins[P any](list *atomic.Pointer[[]P]) []P {
	if l := list.Load(); l != nil {
		return *l
	}
	return nil
}

func addPlugin[P comparable](mu *sync.Mutex, list *atomic.Pointer[[]P], pl P) bool {
	mu.Lock()
	defer mu.Unlock()

	cur := loadPlugins(list)
	if slices.Contains(cur, pl) {
		return false
	}

	next := append(slices.Clone(cur), pl)
	list.Store(&next)
	return true
}

func removePlugin[P comparable](mu *sync.Mutex, list *atomic.Pointer[[]P], pl P) bool {
	mu.Lock()
	defer mu.Unlock()

	cur := loadPlugins(list)
	i := slices.Index(cur, pl)
	if i < 0 {
		return false
	}

	next := slices.Delete(slices.Clone(cur), i, i+1)
	list.Store(&next)
	return true
}
