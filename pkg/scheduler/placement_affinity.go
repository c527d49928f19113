package scheduler

import (
	"sync"

	"github.com/edtrt/edtrt/pkg/container"
	"github.com/edtrt/edtrt/pkg/schederr"
	"github.com/edtrt/edtrt/pkg/types"
)

// PlacementAffinityHeuristic does round-robin bulk EDT placement across the
// platform affinity table, per a fixed affinity table. Unlike static (which only
// disperses when the caller asks via a hint), this heuristic rewrites
// dest_location for every user EDT pre-process-msg: explicit affinity wins,
// otherwise the shared counter cycles the affinity table under its own
// spin-lock. Runtime EDTs always stay local; DB-creates follow the
// db-affinity hint or default local.
type PlacementAffinityHeuristic struct {
	mu            sync.Mutex
	counter       uint64
	affinityTable []types.PDLocation
	local         types.PDLocation
}

func NewPlacementAffinityHeuristic(local types.PDLocation, affinityTable []types.PDLocation) *PlacementAffinityHeuristic {
	return &PlacementAffinityHeuristic{affinityTable: affinityTable, local: local}
}

func (h *PlacementAffinityHeuristic) ID() HeuristicID { return PlacementAffinity }

// GetWork is not implemented by this heuristic — bulk placement only acts
// during pre-process-msg; dispatch on the placed PD falls to whichever
// dispatch heuristic (hc, static, priority) is also registered there.
func (h *PlacementAffinityHeuristic) GetWork(workerID int) (*types.Edt, error) {
	return nil, schederr.ErrNotSupported
}

func (h *PlacementAffinityHeuristic) Notify(kind NotifyKind, payload *NotifyPayload) error {
	if kind != PreProcessMsg {
		return schederr.ErrNoOp
	}
	if payload == nil {
		return schederr.ErrInvalidArgument
	}
	if payload.Edt != nil {
		return h.placeEdt(payload)
	}
	if payload.Db != nil {
		return h.placeDb(payload)
	}
	return schederr.ErrInvalidArgument
}

func (h *PlacementAffinityHeuristic) placeEdt(payload *NotifyPayload) error {
	edt := payload.Edt
	if edt.HasFlag(types.EdtFlagRuntimeEdt) {
		payload.DestLocation = h.local
		return nil
	}
	if edt.Hints != nil {
		if v, ok := edt.Hints.Get(types.HintAffinity); ok {
			payload.DestLocation = intToLocation(v, h.affinityTable)
			return nil
		}
	}
	if len(h.affinityTable) == 0 {
		payload.DestLocation = h.local
		return nil
	}
	h.mu.Lock()
	idx := h.counter % uint64(len(h.affinityTable))
	h.counter++
	h.mu.Unlock()
	payload.DestLocation = h.affinityTable[idx]
	return nil
}

func (h *PlacementAffinityHeuristic) placeDb(payload *NotifyPayload) error {
	db := payload.Db
	if db.Hints != nil {
		if v, ok := db.Hints.Get(types.HintDbAffinity); ok {
			payload.DestLocation = intToLocation(v, h.affinityTable)
			return nil
		}
	}
	payload.DestLocation = h.local
	return nil
}

func (h *PlacementAffinityHeuristic) Transact(obj container.Object, dest types.PDLocation) error {
	return schederr.ErrNotSupported
}

func (h *PlacementAffinityHeuristic) Analyze(kind AnalyzeKind, props AnalyzeProperty, payload any) error {
	return schederr.ErrNotSupported
}
