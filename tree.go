package di

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/sectrean/di-graph/internal/errors"
)

// Path addresses a Graph in a [Tree]. The empty path is the root Graph; each following element is
// the qualifier, or identifier, of a subgraph of the previous one.
type Path []any

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, token := range p {
		parts[i] = fmt.Sprint(token)
	}
	return strings.Join(parts, ".")
}

// Tree opens and closes the Graphs of a component hierarchy by path.
//
// The root Graph is created from the component of the Tree. Subgraphs are opened as children of
// the Graph at the parent path. A Tree is safe for concurrent use.
//
// Example:
//
//	tree := di.NewTree(appComponent)
//	app, err := tree.Open(nil)
//	session, err := tree.Open(di.Path{"session"}, di.WithIdentifier(sessionID))
//	err = tree.Close(di.Path{sessionID})
type Tree struct {
	component *Component
	opts      []GraphOption
	mu        sync.Mutex
	root      atomic.Pointer[graph]
}

// NewTree returns a Tree for the component. The options are used to create the root Graph.
func NewTree(c *Component, opts ...GraphOption) *Tree {
	return &Tree{component: c, opts: opts}
}

// Get returns the open Graph at path.
func (t *Tree) Get(path Path) (*Graph, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	root := t.root.Load()
	if root == nil {
		return nil, errors.New("di.Tree.Get: no graph is open")
	}

	g := getOrNil(root, path, len(path))
	if g == nil {
		return nil, errors.Errorf("di.Tree.Get: no graph is open at path %s", path)
	}
	return g.handle, nil
}

// GetOrNil returns the open Graph at path, or nil.
func (t *Tree) GetOrNil(path Path) *Graph {
	t.mu.Lock()
	defer t.mu.Unlock()

	if g := getOrNil(t.root.Load(), path, len(path)); g != nil {
		return g.handle
	}
	return nil
}

// IsOpen reports whether a Graph is open at path.
func (t *Tree) IsOpen(path Path) bool {
	return t.GetOrNil(path) != nil
}

// Open opens the Graph at path.
//
// The empty path opens the root Graph. Otherwise the Graph at the parent path must be open and
// the last element of path is the qualifier of the subcomponent to open.
//
// Available options:
//   - [WithIdentifier] registers the subgraph under a different name than its qualifier.
//     Not supported for the root Graph.
//   - [WithBuilder] derives the component before the Graph is created.
func (t *Tree) Open(path Path, opts ...GraphOption) (*Graph, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	g, err := t.open(path, opts)
	if err != nil {
		return nil, errors.Wrap(err, "di.Tree.Open")
	}
	return g, nil
}

// GetOrOpen returns the Graph at path if it is open or opens it.
func (t *Tree) GetOrOpen(path Path, opts ...GraphOption) (*Graph, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	root := t.root.Load()
	if root != nil {
		if len(path) == 0 {
			return root.handle, nil
		}

		name := path[len(path)-1]
		if id := newGraphConfig(opts).identifier; id != nil {
			name = id
		}
		if parent := getOrNil(root, path, len(path)-1); parent != nil && isComparable(name) {
			if child, ok := parent.children.Load(name); ok {
				return child.handle, nil
			}
		}
	}

	g, err := t.open(path, opts)
	if err != nil {
		return nil, errors.Wrap(err, "di.Tree.GetOrOpen")
	}
	return g, nil
}

func (t *Tree) open(path Path, opts []GraphOption) (*Graph, error) {
	root := t.root.Load()
	if root == nil {
		return t.openRoot(path, opts)
	}

	if len(path) == 0 {
		return nil, errors.New("cannot open the root graph because it is already open")
	}

	parent := getOrNil(root, path, len(path)-1)
	if parent == nil {
		return nil, errors.Errorf("cannot open %s because %s is not open", path, path[:len(path)-1])
	}

	g, err := parent.handle.OpenSubgraph(path[len(path)-1], opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open %s", path)
	}

	g.g.logger.Debug("graph opened", zap.Stringer("path", path))
	return g, nil
}

func (t *Tree) openRoot(path Path, opts []GraphOption) (*Graph, error) {
	if len(path) > 0 {
		return nil, errors.Errorf("cannot open %s because the root graph is not open", path)
	}
	if newGraphConfig(opts).identifier != nil {
		return nil, errors.New("identifier is not supported for the root graph")
	}

	h, err := t.component.CreateGraph(append(t.opts[:len(t.opts):len(t.opts)], opts...)...)
	if err != nil {
		return nil, err
	}

	root := h.g
	root.onDispose = func(g *graph) {
		t.root.CompareAndSwap(g, nil)
	}
	t.root.Store(root)

	root.logger.Debug("graph opened", zap.Stringer("path", path))
	return h, nil
}

// Create creates the Graph at path without registering it with its parent.
//
// The caller is responsible for disposing the Graph.
func (t *Tree) Create(path Path, opts ...GraphOption) (*Graph, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	root := t.root.Load()
	if root == nil {
		if len(path) > 0 {
			return nil, errors.Errorf("di.Tree.Create: cannot create %s because the root graph is not open", path)
		}

		h, err := t.component.CreateGraph(append(t.opts[:len(t.opts):len(t.opts)], opts...)...)
		return h, errors.Wrap(err, "di.Tree.Create")
	}

	if len(path) == 0 {
		h, err := t.component.CreateGraph(append(t.opts[:len(t.opts):len(t.opts)], opts...)...)
		return h, errors.Wrap(err, "di.Tree.Create")
	}

	parent := getOrNil(root, path, len(path)-1)
	if parent == nil {
		return nil, errors.Errorf("di.Tree.Create: cannot create %s because %s is not open",
			path, path[:len(path)-1])
	}

	h, err := parent.handle.CreateSubgraph(path[len(path)-1], opts...)
	if err != nil {
		return nil, errors.Wrap(err, "di.Tree.Create")
	}
	return h, nil
}

// Close disposes the Graph at path and every Graph opened below it, leaves first.
func (t *Tree) Close(path Path) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	root := t.root.Load()
	if root == nil {
		return errors.New("di.Tree.Close: cannot close because nothing is open")
	}

	g := getOrNil(root, path, len(path))
	if g == nil {
		return errors.Errorf("di.Tree.Close: cannot close %s because it is not open", path)
	}

	return errors.Wrap(t.close(g, path), "di.Tree.Close")
}

// CloseIfOpen is like Close but does nothing if no Graph is open at path.
//
// It reports whether a Graph was closed.
func (t *Tree) CloseIfOpen(path Path) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	g := getOrNil(t.root.Load(), path, len(path))
	if g == nil {
		return false, nil
	}

	return true, errors.Wrap(t.close(g, path), "di.Tree.CloseIfOpen")
}

func (t *Tree) close(g *graph, path Path) error {
	g.logger.Debug("closing graph", zap.Stringer("path", path))
	return g.handle.Dispose()
}

// getOrNil walks the first depth elements of path from root.
func getOrNil(root *graph, path Path, depth int) *graph {
	g := root
	for _, token := range path[:depth] {
		if g == nil || !isComparable(token) {
			return nil
		}

		child, ok := g.children.Load(token)
		if !ok {
			return nil
		}
		g = child
	}
	return g
}
