package container

import (
	"testing"

	"github.com/edtrt/edtrt/pkg/schederr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDequeOwnerPopsLIFO(t *testing.T) {
	d := NewDeque()
	require.NoError(t, d.Insert(Tail(), "a"))
	require.NoError(t, d.Insert(Tail(), "b"))
	require.NoError(t, d.Insert(Tail(), "c"))

	got, err := d.Remove(Tail())
	require.NoError(t, err)
	assert.Equal(t, "c", got)

	got, err = d.Remove(Tail())
	require.NoError(t, err)
	assert.Equal(t, "b", got)
}

func TestDequeThiefPopsFIFO(t *testing.T) {
	d := NewDeque()
	require.NoError(t, d.Insert(Tail(), "a"))
	require.NoError(t, d.Insert(Tail(), "b"))
	require.NoError(t, d.Insert(Tail(), "c"))

	got, err := d.Remove(Head())
	require.NoError(t, err)
	assert.Equal(t, "a", got)

	got, err = d.Remove(Head())
	require.NoError(t, err)
	assert.Equal(t, "b", got)
}

func TestDequeOwnerAndThiefMeetInMiddleWithoutDuplication(t *testing.T) {
	d := NewDeque()
	for _, item := range []string{"a", "b", "c", "d"} {
		require.NoError(t, d.Insert(Tail(), item))
	}

	seen := make(map[string]bool)
	for i := 0; i < 4; i++ {
		var got any
		var err error
		if i%2 == 0 {
			got, err = d.Remove(Tail())
		} else {
			got, err = d.Remove(Head())
		}
		require.NoError(t, err)
		assert.False(t, seen[got.(string)], "item %v popped twice", got)
		seen[got.(string)] = true
	}
	assert.Len(t, seen, 4)
}

func TestDequeRemoveFromEmptyReturnsErrNotFound(t *testing.T) {
	d := NewDeque()
	_, err := d.Remove(Tail())
	assert.ErrorIs(t, err, schederr.ErrNotFound)
}

func TestDequeCountReflectsInsertsAndRemoves(t *testing.T) {
	d := NewDeque()
	assert.Equal(t, 0, d.Count(CountImmediate))
	require.NoError(t, d.Insert(Tail(), 1))
	require.NoError(t, d.Insert(Head(), 2))
	assert.Equal(t, 2, d.Count(CountImmediate))
	_, err := d.Remove(Tail())
	require.NoError(t, err)
	assert.Equal(t, 1, d.Count(CountImmediate))
}

func TestDequeIteratorIsSnapshotNotLive(t *testing.T) {
	d := NewDeque()
	require.NoError(t, d.Insert(Tail(), "a"))
	require.NoError(t, d.Insert(Tail(), "b"))

	it := d.CreateIterator()
	require.NoError(t, d.Insert(Tail(), "c"))

	item, ok := it.Apply(IterHead, nil)
	require.True(t, ok)
	assert.Equal(t, "a", item)

	item, ok = it.Apply(IterNext, nil)
	require.True(t, ok)
	assert.Equal(t, "b", item)

	_, ok = it.Apply(IterNext, nil)
	assert.False(t, ok, "snapshot must not observe the post-iterator insert")
}
