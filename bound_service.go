package di

import (
	"reflect"
	"slices"
	"sync/atomic"

	"github.com/sectrean/di-graph/internal/errors"
)

// boundService is an Entry bound to the cache state of a graph.
type boundService interface {
	Key() TypeKey
	Scope() Scope

	// instance returns a cached instance or creates one through the evaluator.
	instance(r *resolution, arg any) (any, error)
	// newInstance calls the factory and caches the result. It is only called by the evaluator.
	newInstance(h *Graph, arg any) (any, error)
	postConstruct(h *Graph, instance any) error
	dispose(h *Graph) error
}

type constantService struct {
	g     *graph
	entry *constantEntry
}

func (s *constantService) Key() TypeKey { return s.entry.key }
func (s *constantService) Scope() Scope { return Singleton }

func (s *constantService) instance(*resolution, any) (any, error) {
	if err := s.g.checkDisposed(s.entry.key); err != nil {
		return nil, err
	}
	return s.entry.value, nil
}

func (s *constantService) newInstance(*Graph, any) (any, error) { return s.entry.value, nil }
func (s *constantService) postConstruct(*Graph, any) error     { return nil }
func (s *constantService) dispose(*Graph) error                { return nil }

type prototypeService struct {
	g     *graph
	entry *providerEntry
}

func (s *prototypeService) Key() TypeKey { return s.entry.key }
func (s *prototypeService) Scope() Scope { return s.entry.scope }

func (s *prototypeService) instance(r *resolution, _ any) (any, error) {
	return s.g.eval.evaluate(r, s, nil)
}

func (s *prototypeService) newInstance(h *Graph, _ any) (any, error) {
	return s.entry.factory(h)
}

func (s *prototypeService) postConstruct(h *Graph, val any) error {
	return callPostConstruct(s.entry.postConstruct, h, val)
}

func (s *prototypeService) dispose(*Graph) error { return nil }

type memo struct {
	val any
}

type singletonService struct {
	g     *graph
	entry *providerEntry
	value atomic.Pointer[memo]
}

func (s *singletonService) Key() TypeKey { return s.entry.key }
func (s *singletonService) Scope() Scope { return Singleton }

func (s *singletonService) instance(r *resolution, _ any) (any, error) {
	if err := s.g.checkDisposed(s.entry.key); err != nil {
		return nil, err
	}
	if m := s.value.Load(); m != nil {
		return m.val, nil
	}

	s.g.lock(r)
	defer s.g.unlock(r)

	if m := s.value.Load(); m != nil {
		return m.val, nil
	}
	return s.g.eval.evaluate(r, s, nil)
}

func (s *singletonService) newInstance(h *Graph, _ any) (any, error) {
	val, err := s.entry.factory(h)
	if err != nil {
		return nil, err
	}

	s.value.Store(&memo{val: val})
	return val, nil
}

func (s *singletonService) postConstruct(h *Graph, val any) error {
	return callPostConstruct(s.entry.postConstruct, h, val)
}

func (s *singletonService) dispose(h *Graph) error {
	m := s.value.Load()
	if m == nil || s.entry.dispose == nil {
		return nil
	}
	return errors.Wrapf(s.entry.dispose(h, m.val), "dispose %s", s.entry.key)
}

// referenceService backs WeakSingleton and SoftSingleton services.
type referenceService struct {
	g     *graph
	entry *providerEntry
	cache *referenceCache
}

func (s *referenceService) Key() TypeKey { return s.entry.key }
func (s *referenceService) Scope() Scope { return s.entry.scope }

func (s *referenceService) instance(r *resolution, _ any) (any, error) {
	if err := s.g.checkDisposed(s.entry.key); err != nil {
		return nil, err
	}
	if val, ok := s.cache.get(s); ok {
		return val, nil
	}

	s.g.lock(r)
	defer s.g.unlock(r)

	if val, ok := s.cache.get(s); ok {
		return val, nil
	}
	return s.g.eval.evaluate(r, s, nil)
}

func (s *referenceService) newInstance(h *Graph, _ any) (any, error) {
	val, err := s.entry.factory(h)
	if err != nil {
		return nil, err
	}

	s.cache.put(s, val)
	return val, nil
}

func (s *referenceService) postConstruct(h *Graph, val any) error {
	return callPostConstruct(s.entry.postConstruct, h, val)
}

// dispose releases the reference without calling any callback.
func (s *referenceService) dispose(*Graph) error {
	s.cache.remove(s)
	return nil
}

type prototypeFactoryService struct {
	g     *graph
	entry *factoryEntry
}

func (s *prototypeFactoryService) Key() TypeKey { return s.entry.key }
func (s *prototypeFactoryService) Scope() Scope { return PrototypeFactory }

func (s *prototypeFactoryService) instance(r *resolution, arg any) (any, error) {
	return s.g.eval.evaluate(r, s, arg)
}

func (s *prototypeFactoryService) newInstance(h *Graph, arg any) (any, error) {
	return s.entry.factory(h, arg)
}

func (s *prototypeFactoryService) postConstruct(h *Graph, val any) error {
	return callPostConstruct(s.entry.postConstruct, h, val)
}

func (s *prototypeFactoryService) dispose(*Graph) error { return nil }

// multitonService caches one instance per distinct argument. values is guarded by the graph lock.
type multitonService struct {
	g      *graph
	entry  *factoryEntry
	values argMap
}

func (s *multitonService) Key() TypeKey { return s.entry.key }
func (s *multitonService) Scope() Scope { return Multiton }

func (s *multitonService) instance(r *resolution, arg any) (any, error) {
	s.g.lock(r)
	defer s.g.unlock(r)

	if err := s.g.checkDisposed(s.entry.key); err != nil {
		return nil, err
	}
	if val, ok := s.values.load(arg); ok {
		return val, nil
	}
	return s.g.eval.evaluate(r, s, arg)
}

func (s *multitonService) newInstance(h *Graph, arg any) (any, error) {
	val, err := s.entry.factory(h, arg)
	if err != nil {
		return nil, err
	}

	s.values.store(arg, val)
	return val, nil
}

func (s *multitonService) postConstruct(h *Graph, val any) error {
	return callPostConstruct(s.entry.postConstruct, h, val)
}

func (s *multitonService) dispose(h *Graph) error {
	if s.entry.dispose == nil {
		return nil
	}

	var errs errors.MultiError
	s.values.eachReverse(func(_, val any) {
		errs = errs.Append(s.entry.dispose(h, val))
	})
	return errs.Wrapf("dispose %s", s.entry.key)
}

// aliasService resolves the target of an alias entry from the graph it is bound to.
type aliasService struct {
	g     *graph
	entry *aliasEntry
}

func (s *aliasService) Key() TypeKey { return s.entry.key }
func (s *aliasService) Scope() Scope { return Singleton }

func (s *aliasService) instance(r *resolution, arg any) (any, error) {
	target, err := s.target(r)
	if err != nil {
		return nil, err
	}
	return target.instance(r, arg)
}

// target follows the alias chain to the first non-alias service.
func (s *aliasService) target(r *resolution) (boundService, error) {
	chain := []TypeKey{s.entry.key}
	seen := map[*aliasService]bool{s: true}

	cur := s
	for {
		svc, err := cur.g.service(r, cur.entry.target)
		if err != nil {
			return nil, err
		}
		if svc == nil {
			return nil, &EntryNotFoundError{Key: cur.entry.target}
		}

		next, ok := svc.(*aliasService)
		if !ok {
			return svc, nil
		}
		chain = append(chain, next.entry.key)
		if seen[next] {
			return nil, &CyclicDependencyError{Key: next.entry.key, Chain: chain}
		}
		seen[next] = true
		cur = next
	}
}

func (s *aliasService) newInstance(*Graph, any) (any, error) {
	return nil, errors.Errorf("alias %s cannot create instances", s.entry.key)
}

func (s *aliasService) postConstruct(*Graph, any) error { return nil }
func (s *aliasService) dispose(*Graph) error          { return nil }

func callPostConstruct(f func(*Graph, any) error, h *Graph, val any) error {
	if f == nil {
		return nil
	}
	return f(h, val)
}

// argMap maps factory arguments to instances using value equality.
//
// Comparable arguments are indexed by a map. Other arguments, such as slices, are compared with
// reflect.DeepEqual.
type argMap struct {
	index map[any]int
	pairs []argPair
}

type argPair struct {
	arg any
	val any
}

func (m *argMap) load(arg any) (any, bool) {
	if i, ok := m.find(arg); ok {
		return m.pairs[i].val, true
	}
	return nil, false
}

func (m *argMap) find(arg any) (int, bool) {
	if isComparable(arg) {
		i, ok := m.index[arg]
		return i, ok
	}

	for i, p := range m.pairs {
		if !isComparable(p.arg) && reflect.DeepEqual(p.arg, arg) {
			return i, true
		}
	}
	return 0, false
}

func (m *argMap) store(arg, val any) {
	if i, ok := m.find(arg); ok {
		m.pairs[i].val = val
		return
	}

	m.pairs = append(m.pairs, argPair{arg: arg, val: val})
	if isComparable(arg) {
		if m.index == nil {
			m.index = make(map[any]int)
		}
		m.index[arg] = len(m.pairs) - 1
	}
}

// eachReverse calls f for every pair, most recently stored first.
func (m *argMap) eachReverse(f func(arg, val any)) {
	for _, p := range slices.Backward(m.pairs) {
		f(p.arg, p.val)
	}
}

func (m *argMap) len() int {
	return len(m.pairs)
}

// isComparable reports whether v can be used as a map key without panicking.
func isComparable(v any) bool {
	return v == nil || reflect.ValueOf(v).Comparable()
}

// argsEqual compares factory arguments by value.
func argsEqual(a, b any) bool {
	if isComparable(a) && isComparable(b) {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
