package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHintsSetGetRoundTrip(t *testing.T) {
	h := NewHints()
	h.Set(HintPriority, 7)

	v, ok := h.Get(HintPriority)
	assert.True(t, ok)
	assert.Equal(t, int64(7), v)
	assert.True(t, h.Has(HintPriority))
}

func TestHintsGetUnsetReturnsFalse(t *testing.T) {
	h := NewHints()
	v, ok := h.Get(HintAffinity)
	assert.False(t, ok)
	assert.Equal(t, int64(0), v)
	assert.False(t, h.Has(HintAffinity))
}

func TestHintsUnsetClearsProperty(t *testing.T) {
	h := NewHints()
	h.Set(HintTime, 99)
	h.Unset(HintTime)

	_, ok := h.Get(HintTime)
	assert.False(t, ok)
	assert.False(t, h.Has(HintTime))
}

func TestHintsChainedSetReturnsSameBlock(t *testing.T) {
	h := NewHints().Set(HintPriority, 1).Set(HintSpace, 2)
	v1, _ := h.Get(HintPriority)
	v2, _ := h.Get(HintSpace)
	assert.Equal(t, int64(1), v1)
	assert.Equal(t, int64(2), v2)
}

func TestNilHintsGetIsSafeAndReportsUnset(t *testing.T) {
	var h *Hints
	v, ok := h.Get(HintPriority)
	assert.False(t, ok)
	assert.Equal(t, int64(0), v)
	assert.False(t, h.Has(HintPriority))
}

func TestNilHintsUnsetIsNoOp(t *testing.T) {
	var h *Hints
	assert.NotPanics(t, func() { h.Unset(HintPriority) })
}

func TestEdtHasFlag(t *testing.T) {
	e := &Edt{Flags: EdtFlagUsesHints | EdtFlagUsesAffinity}
	assert.True(t, e.HasFlag(EdtFlagUsesHints))
	assert.True(t, e.HasFlag(EdtFlagUsesAffinity))
	assert.False(t, e.HasFlag(EdtFlagRuntimeEdt))
}

func TestDbStateIsLocal(t *testing.T) {
	assert.True(t, DbLocalActive.IsLocal())
	assert.True(t, DbLocalInactive.IsLocal())
	assert.False(t, DbProxy.IsLocal())
	assert.False(t, DbRemoteInactive.IsLocal())
}

func TestAccessModeString(t *testing.T) {
	assert.Equal(t, "RO", AccessModeRO.String())
	assert.Equal(t, "RW", AccessModeRW.String())
	assert.Equal(t, "EW", AccessModeEW.String())
}
