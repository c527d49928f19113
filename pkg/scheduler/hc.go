package scheduler

import (
	"github.com/edtrt/edtrt/pkg/container"
	"github.com/edtrt/edtrt/pkg/schederr"
	"github.com/edtrt/edtrt/pkg/types"
)

// HCHeuristic is the baseline work-stealing policy. Each PD
// owns a Wst with one deque per worker. get_work pops the caller's own
// deque first, then retries the last successful victim, then sweeps every
// deque round-robin. notify(edt-ready) pushes to the calling worker's
// deque, honouring an edt-space hint when present.
type HCHeuristic struct {
	pd *container.PdSpace

	// lastVictim remembers, per worker, the index that last yielded a
	// steal — retrying the last victim deque before giving up.
	lastVictim []int
}

// NewHCHeuristic builds the hc policy over pd's Wst.
func NewHCHeuristic(pd *container.PdSpace) *HCHeuristic {
	n := pd.Workers.Count(container.CountImmediate)
	return &HCHeuristic{pd: pd, lastVictim: make([]int, n)}
}

func (h *HCHeuristic) ID() HeuristicID { return HC }

func (h *HCHeuristic) GetWork(workerID int) (*types.Edt, error) {
	deques := h.pd.Workers.WorkerDeques
	n := len(deques)
	if workerID < 0 || workerID >= n {
		return nil, schederr.ErrBadLocation
	}

	if item, err := deques[workerID].Remove(container.Tail()); err == nil {
		return item.(*types.Edt), nil
	}

	if victim := h.lastVictim[workerID]; victim != workerID {
		if item, err := deques[victim].Remove(container.Head()); err == nil {
			return item.(*types.Edt), nil
		}
	}

	for i := 1; i < n; i++ {
		victim := (workerID + i) % n
		if victim == workerID {
			continue
		}
		if item, err := deques[victim].Remove(container.Head()); err == nil {
			h.lastVictim[workerID] = victim
			return item.(*types.Edt), nil
		}
	}

	if h.pd.Count(container.CountImmediate|container.CountRecursive|container.CountOnlyEDT) == 0 {
		return nil, schederr.ErrNotFound
	}
	return nil, schederr.ErrNotFound
}

func (h *HCHeuristic) Notify(kind NotifyKind, payload *NotifyPayload) error {
	switch kind {
	case EdtReady:
		return h.notifyReady(payload)
	case EdtDone:
		// work-destroy: nothing owned by this heuristic survives an EDT;
		// the PD's EdtProxy map (if any) is cleared by the caller.
		return nil
	default:
		return schederr.ErrNoOp
	}
}

func (h *HCHeuristic) notifyReady(payload *NotifyPayload) error {
	if payload == nil || payload.Edt == nil {
		return schederr.ErrInvalidArgument
	}
	deques := h.pd.Workers.WorkerDeques
	worker := payload.WorkerID
	if payload.Edt.Hints != nil {
		if v, ok := payload.Edt.Hints.Get(types.HintSpace); ok {
			worker = int(v)
		}
	}
	if worker < 0 || worker >= len(deques) {
		return schederr.ErrBadLocation
	}
	return deques[worker].Insert(container.Tail(), payload.Edt)
}

func (h *HCHeuristic) Transact(obj container.Object, dest types.PDLocation) error {
	return schederr.ErrNotSupported
}

func (h *HCHeuristic) Analyze(kind AnalyzeKind, props AnalyzeProperty, payload any) error {
	return schederr.ErrNotSupported
}
