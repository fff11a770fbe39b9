package di_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sectrean/di-graph"
	"github.com/sectrean/di-graph/internal/errors"
	"github.com/sectrean/di-graph/internal/testtypes"
	"github.com/sectrean/di-graph/internal/testutils"
)

func Test_NewComponent(t *testing.T) {
	t.Run("nil block", func(t *testing.T) {
		c, err := di.NewComponent("empty", nil)
		require.NoError(t, err)

		assert.Equal(t, "empty", c.Qualifier())
		assert.Equal(t, 0, c.Len())
		assert.Empty(t, c.Keys())
	})

	t.Run("block error", func(t *testing.T) {
		c, err := di.NewComponent("app", func(b *di.ComponentBuilder) error {
			return errors.Join(
				di.Provide(b, di.Singleton, testtypes.ProvideInterfaceA),
				di.Provide(b, di.Singleton, testtypes.ProvideInterfaceA),
			)
		})
		testutils.LogError(t, err)

		assert.Nil(t, c)
		assert.ErrorIs(t, err, di.ErrInvalidRegistration)
		assert.EqualError(t, err, "di.NewComponent: register testtypes.InterfaceA: invalid registration: "+
			"entry with key testtypes.InterfaceA already exists")
	})
}

func Test_Component(t *testing.T) {
	c, err := di.NewComponent("app", func(b *di.ComponentBuilder) error {
		return errors.Join(
			di.Provide(b, di.Singleton, testtypes.ProvideInterfaceB),
			di.Provide(b, di.Singleton, testtypes.ProvideInterfaceA),
			di.Constant(b, &testtypes.StructA{}, di.WithQualifier("const")),
			b.Subcomponent("session", func(b *di.ComponentBuilder) error {
				return b.Subcomponent("request", nil)
			}),
		)
	})
	require.NoError(t, err)

	t.Run("keys in registration order", func(t *testing.T) {
		assert.Equal(t, []di.TypeKey{
			di.KeyOf[testtypes.InterfaceB](),
			di.KeyOf[testtypes.InterfaceA](),
			di.KeyOf[*testtypes.StructA](di.WithQualifier("const")),
		}, c.Keys())
		assert.Equal(t, 3, c.Len())
	})

	t.Run("has", func(t *testing.T) {
		assert.True(t, c.Has(di.KeyOf[testtypes.InterfaceA]()))
		assert.True(t, c.Has(di.KeyOf[testtypes.InterfaceA](di.WithGenerics())))
		assert.False(t, c.Has(di.KeyOf[testtypes.InterfaceA](di.WithQualifier("const"))))
		assert.False(t, c.Has(di.KeyOf[testtypes.InterfaceC]()))
	})

	t.Run("entry", func(t *testing.T) {
		e, ok := c.Entry(di.KeyOf[*testtypes.StructA](di.WithQualifier("const")))
		require.True(t, ok)
		assert.Equal(t, di.Singleton, e.Scope())

		_, ok = c.Entry(di.KeyOf[testtypes.InterfaceC]())
		assert.False(t, ok)
	})

	t.Run("subcomponent", func(t *testing.T) {
		sc, err := c.Subcomponent("session", "request")
		require.NoError(t, err)
		assert.Equal(t, "request", sc.Qualifier())

		self, err := c.Subcomponent()
		require.NoError(t, err)
		assert.Same(t, c, self)
	})

	t.Run("subcomponent missing", func(t *testing.T) {
		sc, err := c.Subcomponent("session", "missing")
		testutils.LogError(t, err)

		assert.Nil(t, sc)
		assert.ErrorIs(t, err, di.ErrEntryNotFound)
		assert.EqualError(t, err, "di.Component.Subcomponent missing: entry not found: "+
			"service with key *di.Component (qualifier missing) does not exist")
	})

	t.Run("derive", func(t *testing.T) {
		derived, err := c.Derive(func(b *di.ComponentBuilder) error {
			return errors.Join(
				di.Provide(b, di.Singleton, testtypes.ProvideInterfaceC),
				b.Remove(di.KeyOf[testtypes.InterfaceB](), false),
			)
		})
		require.NoError(t, err)

		assert.Equal(t, "app", derived.Qualifier())
		assert.True(t, derived.Has(di.KeyOf[testtypes.InterfaceC]()))
		assert.False(t, derived.Has(di.KeyOf[testtypes.InterfaceB]()))
		mustSubcomponent(t, derived, "session", "request")

		// The original is unchanged
		assert.False(t, c.Has(di.KeyOf[testtypes.InterfaceC]()))
		assert.True(t, c.Has(di.KeyOf[testtypes.InterfaceB]()))
	})

	t.Run("derive with qualifier", func(t *testing.T) {
		derived, err := c.DeriveWithQualifier("test", nil)
		require.NoError(t, err)

		assert.Equal(t, "test", derived.Qualifier())
		assert.Equal(t, c.Keys(), derived.Keys())
	})

	t.Run("derive error", func(t *testing.T) {
		_, err := c.Derive(func(b *di.ComponentBuilder) error {
			return di.Provide(b, di.Singleton, testtypes.ProvideInterfaceA)
		})
		testutils.LogError(t, err)

		assert.ErrorIs(t, err, di.ErrInvalidRegistration)
	})

	t.Run("string", func(t *testing.T) {
		assert.Equal(t, "Component(qualifier=app, entries=3, subcomponents=1)", c.String())
	})
}
