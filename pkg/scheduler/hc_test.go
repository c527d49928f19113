package scheduler

import (
	"testing"

	"github.com/edtrt/edtrt/pkg/container"
	"github.com/edtrt/edtrt/pkg/schederr"
	"github.com/edtrt/edtrt/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHCGetWorkPopsOwnDequeFirst(t *testing.T) {
	pd := container.NewPdSpace("pd-a", 2, false)
	h := NewHCHeuristic(pd)

	own := &types.Edt{GUID: types.GUID("own")}
	require.NoError(t, pd.Workers.WorkerDeques[0].Insert(container.Tail(), own))

	got, err := h.GetWork(0)
	require.NoError(t, err)
	assert.Equal(t, own.GUID, got.GUID)
}

func TestHCGetWorkStealsFromAnotherWorkerWhenOwnIsEmpty(t *testing.T) {
	pd := container.NewPdSpace("pd-a", 2, false)
	h := NewHCHeuristic(pd)

	stolen := &types.Edt{GUID: types.GUID("stolen")}
	require.NoError(t, pd.Workers.WorkerDeques[1].Insert(container.Tail(), stolen))

	got, err := h.GetWork(0)
	require.NoError(t, err)
	assert.Equal(t, stolen.GUID, got.GUID)
}

func TestHCGetWorkReturnsErrNotFoundWhenAllEmpty(t *testing.T) {
	pd := container.NewPdSpace("pd-a", 2, false)
	h := NewHCHeuristic(pd)

	_, err := h.GetWork(0)
	assert.ErrorIs(t, err, schederr.ErrNotFound)
}

func TestHCGetWorkRejectsOutOfRangeWorker(t *testing.T) {
	pd := container.NewPdSpace("pd-a", 2, false)
	h := NewHCHeuristic(pd)

	_, err := h.GetWork(5)
	assert.ErrorIs(t, err, schederr.ErrBadLocation)
}

func TestHCNotifyReadyHonoursSpaceHint(t *testing.T) {
	pd := container.NewPdSpace("pd-a", 3, false)
	h := NewHCHeuristic(pd)

	e := &types.Edt{
		GUID:  types.NewGUID(),
		Hints: types.NewHints().Set(types.HintSpace, 2),
	}
	err := h.Notify(EdtReady, &NotifyPayload{Edt: e, WorkerID: 0})
	require.NoError(t, err)

	assert.Equal(t, 0, pd.Workers.WorkerDeques[0].Count(container.CountImmediate))
	assert.Equal(t, 1, pd.Workers.WorkerDeques[2].Count(container.CountImmediate))
}

func TestHCNotifyReadyDefaultsToPayloadWorkerWithoutHint(t *testing.T) {
	pd := container.NewPdSpace("pd-a", 3, false)
	h := NewHCHeuristic(pd)

	e := &types.Edt{GUID: types.NewGUID()}
	err := h.Notify(EdtReady, &NotifyPayload{Edt: e, WorkerID: 1})
	require.NoError(t, err)

	assert.Equal(t, 1, pd.Workers.WorkerDeques[1].Count(container.CountImmediate))
}

func TestHCNotifyRejectsNilPayload(t *testing.T) {
	pd := container.NewPdSpace("pd-a", 1, false)
	h := NewHCHeuristic(pd)

	err := h.Notify(EdtReady, nil)
	assert.ErrorIs(t, err, schederr.ErrInvalidArgument)
}

func TestHCTransactAndAnalyzeAreUnsupported(t *testing.T) {
	pd := container.NewPdSpace("pd-a", 1, false)
	h := NewHCHeuristic(pd)

	assert.ErrorIs(t, h.Transact(nil, "pd-b"), schederr.ErrNotSupported)
	assert.ErrorIs(t, h.Analyze(AnalyzeKind(0), AnalyzeProperty(0), nil), schederr.ErrNotSupported)
}
