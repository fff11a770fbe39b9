package di_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sectrean/di-graph"
	"github.com/sectrean/di-graph/internal/testtypes"
)

type List[T any] struct {
	items []T
}

func Test_TypeKey(t *testing.T) {
	t.Run("equal", func(t *testing.T) {
		k1 := di.KeyOf[testtypes.InterfaceA]()
		k2 := di.KeyFor(testtypes.TypeInterfaceA)

		assert.True(t, k1.Equal(k2))
		assert.True(t, k1.TypeEquals(k2))
		assert.Equal(t, k1.Hash(), k2.Hash())
	})

	t.Run("qualifier", func(t *testing.T) {
		k1 := di.KeyOf[testtypes.InterfaceA](di.WithQualifier("a"))
		k2 := di.KeyOf[testtypes.InterfaceA](di.WithQualifier("b"))
		k3 := di.KeyOf[testtypes.InterfaceA]().WithQualifier("a")

		assert.False(t, k1.Equal(k2))
		assert.True(t, k1.TypeEquals(k2))
		assert.True(t, k1.Equal(k3))
		assert.Equal(t, "a", k1.Qualifier())
	})

	t.Run("different types", func(t *testing.T) {
		k1 := di.KeyOf[testtypes.InterfaceA]()
		k2 := di.KeyOf[*testtypes.StructA]()

		assert.False(t, k1.Equal(k2))
		assert.False(t, k1.TypeEquals(k2))
	})

	t.Run("generics option does not change the key", func(t *testing.T) {
		k1 := di.KeyOf[List[string]]()
		k2 := di.KeyOf[List[string]](di.WithGenerics())

		assert.True(t, k1 == k2)
		assert.True(t, k1.Equal(k2))
		assert.True(t, k2.Equal(k1))
		assert.Equal(t, k1.Hash(), k2.Hash())

		m := map[di.TypeKey]int{k1: 1}
		assert.Equal(t, 1, m[k2])

		s1 := di.KeyOf[[]string]()
		s2 := di.KeyOf[[]string](di.WithGenerics())
		assert.True(t, s1 == s2)
		assert.Equal(t, 1, map[di.TypeKey]int{s2: 1}[s1])
	})

	t.Run("type arguments", func(t *testing.T) {
		strings := di.KeyOf[List[string]](di.WithGenerics())
		ints := di.KeyOf[List[int]](di.WithGenerics())

		assert.False(t, strings.Equal(ints))
		assert.False(t, strings.Descriptor().Equal(ints.Descriptor()))
		assert.False(t, di.KeyOf[[]string]().Equal(di.KeyOf[[]int]()))
	})

	t.Run("factory key", func(t *testing.T) {
		k := di.FactoryKeyOf[string, *testtypes.StructA]()

		assert.True(t, k.IsFactory())
		assert.Equal(t, reflect.TypeFor[string](), k.ArgType())
		assert.Equal(t, testtypes.TypeStructAPtr, k.Type())
		assert.False(t, k.Equal(di.KeyOf[*testtypes.StructA]()))
		assert.False(t, k.TypeEquals(di.KeyOf[*testtypes.StructA]()))
		assert.False(t, di.KeyOf[*testtypes.StructA]().IsFactory())
	})

	t.Run("qualifier not comparable", func(t *testing.T) {
		k1 := di.KeyOf[int](di.WithQualifier([]string{"a"}))
		k2 := di.KeyOf[int](di.WithQualifier([]string{"a"}))
		k3 := di.KeyOf[int](di.WithQualifier([]string{"b"}))

		assert.True(t, k1.Equal(k2))
		assert.False(t, k1.Equal(k3))
		assert.False(t, k1.Equal(di.KeyOf[int]()))
		assert.Equal(t, k1.Hash(), k2.Hash())
	})

	t.Run("map key", func(t *testing.T) {
		m := map[di.TypeKey]int{
			di.KeyOf[testtypes.InterfaceA](): 1,
		}

		assert.Equal(t, 1, m[di.KeyOf[testtypes.InterfaceA](di.WithGenerics())])
	})
}

func Test_TypeKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  di.TypeKey
		want string
	}{
		{
			name: "type",
			key:  di.KeyOf[testtypes.InterfaceA](),
			want: "testtypes.InterfaceA",
		},
		{
			name: "qualifier",
			key:  di.KeyOf[*testtypes.StructA](di.WithQualifier("q")),
			want: "*testtypes.StructA (qualifier q)",
		},
		{
			name: "factory",
			key:  di.FactoryKeyOf[int, testtypes.InterfaceA](di.WithQualifier(1)),
			want: "testtypes.InterfaceA (arg int) (qualifier 1)",
		},
		{
			name: "generics",
			key:  di.KeyOf[*testtypes.StructA](di.WithGenerics()),
			want: "*testtypes.StructA",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.String())
		})
	}
}

func Test_TypeKey_Describe(t *testing.T) {
	tests := []struct {
		name string
		key  di.TypeKey
		want string
	}{
		{
			name: "pointer",
			key:  di.KeyOf[*testtypes.StructA](),
			want: "*github.com/sectrean/di-graph/internal/testtypes.StructA",
		},
		{
			name: "map",
			key:  di.KeyOf[map[string][]int](di.WithGenerics()),
			want: "map[string][]int",
		},
		{
			name: "factory with qualifier",
			key:  di.FactoryKeyOf[int, *testtypes.StructA](di.WithQualifier("q")),
			want: "*github.com/sectrean/di-graph/internal/testtypes.StructA (arg int) (qualifier q)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.Describe())
		})
	}
}

func Test_DescribeType(t *testing.T) {
	t.Run("named", func(t *testing.T) {
		d := di.DescribeType(testtypes.TypeStructA)

		assert.Equal(t, reflect.Struct, d.Kind)
		assert.Equal(t, "github.com/sectrean/di-graph/internal/testtypes", d.PkgPath)
		assert.Equal(t, "StructA", d.Name)
	})

	t.Run("composite", func(t *testing.T) {
		d1 := di.DescribeType(reflect.TypeFor[func(string) (*testtypes.StructA, error)]())
		d2 := di.DescribeType(reflect.TypeFor[func(string) (*testtypes.StructA, error)]())
		d3 := di.DescribeType(reflect.TypeFor[func(int) (*testtypes.StructA, error)]())

		assert.True(t, d1.Equal(d2))
		assert.False(t, d1.Equal(d3))
		assert.Equal(t, "func(string) (*github.com/sectrean/di-graph/internal/testtypes.StructA, error)", d1.String())
	})

	t.Run("channels", func(t *testing.T) {
		recv := di.DescribeType(reflect.TypeFor[<-chan int]())
		send := di.DescribeType(reflect.TypeFor[chan<- int]())

		assert.False(t, recv.Equal(send))
		assert.Equal(t, "<-chan int", recv.String())
		assert.Equal(t, "chan<- int", send.String())
	})

	t.Run("arrays", func(t *testing.T) {
		d := di.DescribeType(reflect.TypeFor[[4]byte]())

		assert.Equal(t, "[4]uint8", d.String())
		assert.False(t, d.Equal(di.DescribeType(reflect.TypeFor[[5]byte]())))
	})

	t.Run("nil", func(t *testing.T) {
		assert.Equal(t, reflect.Invalid, di.DescribeType(nil).Kind)
	})
}
