package testtypes

import (
	"sync/atomic"

	"github.com/sectrean/di-graph"
)

// Factory creates StructA values tagged with the number of previous calls.
type Factory struct {
	count atomic.Int32
}

func (f *Factory) ProvideStructA(*di.Graph) (*StructA, error) {
	n := f.count.Add(1) - 1
	return &StructA{Tag: int(n)}, nil
}

func (f *Factory) ProvideInterfaceA(g *di.Graph) (InterfaceA, error) {
	return f.ProvideStructA(g)
}

// Calls returns the number of values created so far.
func (f *Factory) Calls() int {
	return int(f.count.Load())
}

func ExpectStructA(count int) []*StructA {
	var s []*StructA
	for i := range count {
		s = append(s, &StructA{Tag: i})
	}
	return s
}
