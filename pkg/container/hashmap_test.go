package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapPutGetOverwrite(t *testing.T) {
	m := NewMap()
	m.Put("k1", "v1")
	v, ok := m.Get("k1")
	assert.True(t, ok)
	assert.Equal(t, "v1", v)

	m.Put("k1", "v2")
	v, ok = m.Get("k1")
	assert.True(t, ok)
	assert.Equal(t, "v2", v)
}

func TestMapGetMissingKey(t *testing.T) {
	m := NewMap()
	_, ok := m.Get("missing")
	assert.False(t, ok)
}

func TestMapDeleteRemovesEntry(t *testing.T) {
	m := NewMap()
	m.Put("k1", 42)
	v, ok := m.Delete("k1")
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	_, ok = m.Get("k1")
	assert.False(t, ok)

	_, ok = m.Delete("k1")
	assert.False(t, ok)
}

func TestMapCountAcrossBuckets(t *testing.T) {
	m := NewMapSized(4)
	for i := 0; i < 20; i++ {
		m.Put(i, i*i)
	}
	assert.Equal(t, 20, m.Count(CountImmediate))
	for i := 0; i < 20; i++ {
		v, ok := m.Get(i)
		assert.True(t, ok)
		assert.Equal(t, i*i, v)
	}
}

func TestMapRangeVisitsEveryEntry(t *testing.T) {
	m := NewMap()
	want := map[any]any{"a": 1, "b": 2, "c": 3}
	for k, v := range want {
		m.Put(k, v)
	}

	got := make(map[any]any)
	m.Range(func(key, val any) { got[key] = val })
	assert.Equal(t, want, got)
}

func TestNewMapSizedRejectsNonPositiveBucketCount(t *testing.T) {
	m := NewMapSized(0)
	assert.Equal(t, defaultMapBuckets, len(m.buckets))
}
