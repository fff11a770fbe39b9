package di

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_argMap(t *testing.T) {
	t.Run("comparable", func(t *testing.T) {
		var m argMap
		m.store("a", 1)
		m.store("b", 2)
		m.store("a", 3)

		val, ok := m.load("a")
		assert.True(t, ok)
		assert.Equal(t, 3, val)

		_, ok = m.load("c")
		assert.False(t, ok)
		assert.Equal(t, 2, m.len())
	})

	t.Run("not comparable", func(t *testing.T) {
		var m argMap
		m.store([]int{1, 2}, "first")
		m.store([]int{1, 3}, "second")

		val, ok := m.load([]int{1, 2})
		assert.True(t, ok)
		assert.Equal(t, "first", val)

		_, ok = m.load([]int{1})
		assert.False(t, ok)
		assert.Equal(t, 2, m.len())
	})

	t.Run("nil", func(t *testing.T) {
		var m argMap
		m.store(nil, "nil")

		val, ok := m.load(nil)
		assert.True(t, ok)
		assert.Equal(t, "nil", val)
	})

	t.Run("each reverse", func(t *testing.T) {
		var m argMap
		m.store(1, "one")
		m.store([]int{2}, "two")
		m.store(3, "three")

		var got []any
		m.eachReverse(func(_, val any) {
			got = append(got, val)
		})
		assert.Equal(t, []any{"three", "two", "one"}, got)
	})
}

func Test_argsEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"equal ints", 1, 1, true},
		{"different ints", 1, 2, false},
		{"different types", 1, int64(1), false},
		{"equal slices", []string{"a"}, []string{"a"}, true},
		{"different slices", []string{"a"}, []string{"b"}, false},
		{"equal maps", map[string]int{"a": 1}, map[string]int{"a": 1}, true},
		{"slice and nil", []string(nil), nil, false},
		{"nils", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, argsEqual(tt.a, tt.b))
		})
	}
}

func Test_isComparable(t *testing.T) {
	type withSlice struct{ s []int }

	assert.True(t, isComparable(nil))
	assert.True(t, isComparable("a"))
	assert.True(t, isComparable(struct{ a int }{1}))
	assert.False(t, isComparable([]int{1}))
	assert.False(t, isComparable(map[int]int{}))
	assert.False(t, isComparable(withSlice{}))
}

func Test_referenceCache(t *testing.T) {
	t.Run("size", func(t *testing.T) {
		c := newReferenceCache(ReferencePolicy{Size: 2})
		s1, s2, s3 := &referenceService{}, &referenceService{}, &referenceService{}

		c.put(s1, 1)
		c.put(s2, 2)
		c.put(s3, 3)

		assert.Equal(t, 2, c.len())
		_, ok := c.get(s1)
		assert.False(t, ok)

		val, ok := c.get(s3)
		assert.True(t, ok)
		assert.Equal(t, 3, val)
	})

	t.Run("remove and purge", func(t *testing.T) {
		c := newReferenceCache(ReferencePolicy{})
		s1, s2 := &referenceService{}, &referenceService{}

		c.put(s1, 1)
		c.put(s2, 2)
		c.remove(s1)
		assert.Equal(t, 1, c.len())

		c.purge()
		assert.Equal(t, 0, c.len())
	})

	t.Run("ttl", func(t *testing.T) {
		c := newReferenceCache(ReferencePolicy{TTL: 10 * time.Millisecond})
		s := &referenceService{}

		c.put(s, 1)

		assert.Eventually(t, func() bool {
			_, ok := c.get(s)
			return !ok
		}, time.Second, 5*time.Millisecond)
	})
}
