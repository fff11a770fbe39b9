package testtypes

import (
	"context"
	"reflect"
)

var (
	TypeStructA    = reflect.TypeFor[StructA]()
	TypeStructAPtr = reflect.TypeFor[*StructA]()
	TypeInterfaceA = reflect.TypeFor[InterfaceA]()
)

type InterfaceA interface {
	A()
	Close(context.Context) error
}

type InterfaceB interface {
	B()
	Close(context.Context)
}

type InterfaceC interface {
	C()
	Close() error
}

type InterfaceD interface {
	D()
	Close()
}

type StructA struct {
	Tag any
}

func (StructA) A()                          {}
func (StructA) Close(context.Context) error { return nil }

type StructB struct {
	Tag any
}

func (StructB) B()                    {}
func (StructB) Close(context.Context) {}

type StructC struct {
	Tag any
}

func (StructC) C()           {}
func (StructC) Close() error { return nil }

type StructD struct {
	Tag any
}

func (StructD) D()     {}
func (StructD) Close() {}

func NewInterfaceB(InterfaceA) InterfaceB {
	return &StructB{}
}

func NewInterfaceC(InterfaceA, InterfaceB) InterfaceC {
	return &StructC{}
}

func NewInterfaceD(InterfaceA, InterfaceB, InterfaceC) InterfaceD {
	return &StructD{}
}
