package scheduler

import (
	"github.com/edtrt/edtrt/pkg/container"
	"github.com/edtrt/edtrt/pkg/schederr"
	"github.com/edtrt/edtrt/pkg/types"
)

// PriorityHeuristic owns one locked bin-heap keyed by the EDT's priority
// hint, : get_work pops the max, edt-ready pushes with the
// EDT's priority (defaulting to 0 when unset), and every other notify is a
// no-op except the destroy on edt-done (nothing to destroy here beyond the
// heap entry, already popped by the time done fires).
type PriorityHeuristic struct {
	heap *container.BinHeap
}

func NewPriorityHeuristic() *PriorityHeuristic {
	return &PriorityHeuristic{heap: container.NewBinHeap()}
}

func (h *PriorityHeuristic) ID() HeuristicID { return Priority }

func (h *PriorityHeuristic) GetWork(workerID int) (*types.Edt, error) {
	item, _, err := h.heap.Pop()
	if err != nil {
		return nil, schederr.ErrNotFound
	}
	return item.(*types.Edt), nil
}

func (h *PriorityHeuristic) Notify(kind NotifyKind, payload *NotifyPayload) error {
	if kind != EdtReady {
		return schederr.ErrNoOp
	}
	if payload == nil || payload.Edt == nil {
		return schederr.ErrInvalidArgument
	}
	var priority int64
	if payload.Edt.Hints != nil {
		priority, _ = payload.Edt.Hints.Get(types.HintPriority)
	}
	h.heap.PushPriority(payload.Edt, priority)
	return nil
}

func (h *PriorityHeuristic) Transact(obj container.Object, dest types.PDLocation) error {
	return schederr.ErrNotSupported
}

func (h *PriorityHeuristic) Analyze(kind AnalyzeKind, props AnalyzeProperty, payload any) error {
	return schederr.ErrNotSupported
}
