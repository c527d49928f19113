package container

import (
	"testing"

	"github.com/edtrt/edtrt/pkg/schederr"
	"github.com/stretchr/testify/assert"
)

func TestBinHeapPopsHighestPriorityFirst(t *testing.T) {
	b := NewBinHeap()
	b.PushPriority("low", 1)
	b.PushPriority("high", 10)
	b.PushPriority("mid", 5)

	item, priority, err := b.Pop()
	assert.NoError(t, err)
	assert.Equal(t, "high", item)
	assert.Equal(t, int64(10), priority)

	item, priority, err = b.Pop()
	assert.NoError(t, err)
	assert.Equal(t, "mid", item)
	assert.Equal(t, int64(5), priority)

	item, priority, err = b.Pop()
	assert.NoError(t, err)
	assert.Equal(t, "low", item)
	assert.Equal(t, int64(1), priority)
}

func TestBinHeapPeekDoesNotRemove(t *testing.T) {
	b := NewBinHeap()
	b.PushPriority("only", 3)

	item, priority, ok := b.Peek()
	assert.True(t, ok)
	assert.Equal(t, "only", item)
	assert.Equal(t, int64(3), priority)

	assert.Equal(t, 1, b.Count(CountImmediate))
}

func TestBinHeapPopEmptyReturnsErrNotFound(t *testing.T) {
	b := NewBinHeap()
	_, _, err := b.Pop()
	assert.ErrorIs(t, err, schederr.ErrNotFound)
}

func TestBinHeapPeekEmptyReportsNotOK(t *testing.T) {
	b := NewBinHeap()
	_, _, ok := b.Peek()
	assert.False(t, ok)
}
