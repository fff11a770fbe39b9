package testtypes

import (
	"github.com/sectrean/di-graph"
)

func ProvideInterfaceA(*di.Graph) (InterfaceA, error) {
	return &StructA{}, nil
}

func ProvideStructAPtr(*di.Graph) (*StructA, error) {
	return &StructA{}, nil
}

func ProvideInterfaceB(g *di.Graph) (InterfaceB, error) {
	a, err := di.Resolve[InterfaceA](g)
	if err != nil {
		return nil, err
	}
	return NewInterfaceB(a), nil
}

func ProvideInterfaceC(g *di.Graph) (InterfaceC, error) {
	a, err := di.Resolve[InterfaceA](g)
	if err != nil {
		return nil, err
	}
	b, err := di.Resolve[InterfaceB](g)
	if err != nil {
		return nil, err
	}
	return NewInterfaceC(a, b), nil
}

func ProvideInterfaceD(g *di.Graph) (InterfaceD, error) {
	a, err := di.Resolve[InterfaceA](g)
	if err != nil {
		return nil, err
	}
	b, err := di.Resolve[InterfaceB](g)
	if err != nil {
		return nil, err
	}
	c, err := di.Resolve[InterfaceC](g)
	if err != nil {
		return nil, err
	}
	return NewInterfaceD(a, b, c), nil
}
