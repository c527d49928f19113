package scheduler

import (
	"sync/atomic"

	"github.com/edtrt/edtrt/pkg/container"
	"github.com/edtrt/edtrt/pkg/schederr"
	"github.com/edtrt/edtrt/pkg/types"
)

// StaticHeuristic implements round-robin dispersal with disperse/affinity
// hints. It shares the Wst with HCHeuristic — static only
// rewrites placement hints during pre-process-msg; the actual deque
// push/pop on edt-ready follows the same rule HC uses.
type StaticHeuristic struct {
	pd *container.PdSpace

	numLocalWorkers int
	counter         uint64

	// affinityTable is the platform's round-robin destination list for
	// distributed disperse placement. The local worker rotation in
	// preProcessEdt covers every worker, worker 0 included.
	affinityTable []types.PDLocation
}

// NewStaticHeuristic builds the static policy. affinityTable may be nil for
// a single-PD deployment (disperse then only ever targets local workers).
func NewStaticHeuristic(pd *container.PdSpace, numLocalWorkers int, affinityTable []types.PDLocation) *StaticHeuristic {
	return &StaticHeuristic{pd: pd, numLocalWorkers: numLocalWorkers, affinityTable: affinityTable}
}

func (h *StaticHeuristic) ID() HeuristicID { return Static }

func (h *StaticHeuristic) GetWork(workerID int) (*types.Edt, error) {
	deques := h.pd.Workers.WorkerDeques
	if workerID < 0 || workerID >= len(deques) {
		return nil, schederr.ErrBadLocation
	}
	if item, err := deques[workerID].Remove(container.Tail()); err == nil {
		return item.(*types.Edt), nil
	}
	if h.pd.Workers.CommDeque != nil {
		if item, err := h.pd.Workers.CommDeque.Remove(container.Head()); err == nil {
			return item.(*types.Edt), nil
		}
	}
	return nil, schederr.ErrNotFound
}

func (h *StaticHeuristic) Notify(kind NotifyKind, payload *NotifyPayload) error {
	switch kind {
	case PreProcessMsg:
		return h.preProcess(payload)
	case EdtReady:
		return h.ready(payload)
	default:
		return schederr.ErrNoOp
	}
}

func (h *StaticHeuristic) preProcess(payload *NotifyPayload) error {
	if payload == nil {
		return schederr.ErrInvalidArgument
	}
	if payload.Edt != nil {
		return h.preProcessEdt(payload)
	}
	if payload.Db != nil {
		if payload.Db.Hints != nil {
			if v, ok := payload.Db.Hints.Get(types.HintDbAffinity); ok {
				payload.DestLocation = types.PDLocation(intToLocation(v, h.affinityTable))
			}
		}
		return nil
	}
	return schederr.ErrInvalidArgument
}

func (h *StaticHeuristic) preProcessEdt(payload *NotifyPayload) error {
	edt := payload.Edt
	hints := edt.Hints
	if hints == nil || !hints.Has(types.HintDisperse) {
		return nil
	}
	n := atomic.AddUint64(&h.counter, 1) - 1
	workerID := int(n % uint64(h.numLocalWorkers))
	hints.Set(types.HintSpace, int64(workerID))

	if len(h.affinityTable) > 0 && !hints.Has(types.HintAffinity) {
		idx := n % uint64(len(h.affinityTable))
		payload.DestLocation = h.affinityTable[idx]
	}
	return nil
}

func (h *StaticHeuristic) ready(payload *NotifyPayload) error {
	if payload == nil || payload.Edt == nil {
		return schederr.ErrInvalidArgument
	}
	worker := payload.WorkerID
	if payload.Edt.Hints != nil {
		if v, ok := payload.Edt.Hints.Get(types.HintSpace); ok {
			worker = int(v)
		}
	}
	deques := h.pd.Workers.WorkerDeques
	if worker < 0 || worker >= len(deques) {
		return schederr.ErrBadLocation
	}
	return deques[worker].Insert(container.Tail(), payload.Edt)
}

func intToLocation(v int64, table []types.PDLocation) types.PDLocation {
	if len(table) == 0 {
		return ""
	}
	idx := int(v) % len(table)
	if idx < 0 {
		idx += len(table)
	}
	return table[idx]
}

func (h *StaticHeuristic) Transact(obj container.Object, dest types.PDLocation) error {
	return schederr.ErrNotSupported
}

func (h *StaticHeuristic) Analyze(kind AnalyzeKind, props AnalyzeProperty, payload any) error {
	return schederr.ErrNotSupported
}
