package scheduler

import (
	"sync"

	"github.com/edtrt/edtrt/pkg/container"
	"github.com/edtrt/edtrt/pkg/schederr"
	"github.com/edtrt/edtrt/pkg/types"
)

// MessageHandle is what hc-comm-delegate's get_work returns instead of an
// EDT: an opaque reference to an outbound-or-inbound message, stamped with
// the worker (box) it's routed through.
type MessageHandle struct {
	ID     uint64
	BoxID  int
	Target types.GUID // non-empty when a compute worker is waiting on a specific reply
}

// HCCommDelegateHeuristic adds a private outbox/inbox deque pair per worker
// on top of the baseline Wst, . A communication worker
// steals from every compute worker's outbox round-robin; a compute worker
// only ever pops its own inbox, optionally filtering for a target handle
// via a locally maintained candidate list.
type HCCommDelegateHeuristic struct {
	outbox []*container.Deque
	inbox  []*container.Deque

	// commWorkerID identifies the single worker acting as the comm worker;
	// -1 means no dedicated comm worker (compute-only configuration).
	commWorkerID int
	hybrid       bool

	mu         sync.Mutex
	candidates map[int][]MessageHandle // per-worker parked-but-unclaimed handles
	nextMsgID  uint64
}

// NewHCCommDelegateHeuristic builds the heuristic over numWorkers workers,
// designating commWorkerID as the dedicated comm worker (or -1 for none).
func NewHCCommDelegateHeuristic(numWorkers, commWorkerID int, hybrid bool) *HCCommDelegateHeuristic {
	h := &HCCommDelegateHeuristic{
		outbox:       make([]*container.Deque, numWorkers),
		inbox:        make([]*container.Deque, numWorkers),
		commWorkerID: commWorkerID,
		hybrid:       hybrid,
		candidates:   make(map[int][]MessageHandle),
	}
	for i := range h.outbox {
		h.outbox[i] = container.NewDeque()
		h.inbox[i] = container.NewDeque()
	}
	return h
}

func (h *HCCommDelegateHeuristic) ID() HeuristicID { return HCCommDelegate }

func (h *HCCommDelegateHeuristic) isCommWorker(workerID int) bool {
	return h.commWorkerID >= 0 && workerID == h.commWorkerID
}

// GetWork always returns ErrNotSupported. Because Heuristic.GetWork returns
// an *Edt and has no room for a target-handle argument, the worker-type
// discipline lives in GetMessage (a comm worker's steal loop, or a compute
// worker's plain inbox pop) and GetMessageForTarget (a targeted pop).
func (h *HCCommDelegateHeuristic) GetWork(workerID int) (*types.Edt, error) {
	// hc-comm-delegate never hands back an *Edt — get_work here returns
	// message handles, so callers that need one use GetMessage instead.
	// Heuristic.GetWork's *Edt-only signature can't express that, so a
	// plain get_work on this heuristic reports "nothing for you this way".
	return nil, schederr.ErrNotSupported
}

// GetMessage is the message-handle-returning form of get_work that
// compute/comm workers actually call for this heuristic.
func (h *HCCommDelegateHeuristic) GetMessage(workerID int) (MessageHandle, error) {
	if h.isCommWorker(workerID) {
		return h.commSteal(workerID)
	}
	return h.computePop(workerID, "")
}

// GetMessageForTarget is a compute worker's targeted pop: scan the
// candidate list first, then drain inbox entries until the target is found
// or the inbox is empty. Non-matching entries are moved onto the worker's
// candidate list; they are not put back on the inbox.
func (h *HCCommDelegateHeuristic) GetMessageForTarget(workerID int, target types.GUID) (MessageHandle, error) {
	if h.isCommWorker(workerID) {
		return MessageHandle{}, schederr.ErrInvalidArgument // "a non-targeted take is forbidden" has no meaning for the comm worker
	}
	return h.computePop(workerID, target)
}

func (h *HCCommDelegateHeuristic) commSteal(workerID int) (MessageHandle, error) {
	n := len(h.outbox)
	for i := 0; i < n; i++ {
		victim := (workerID + i) % n
		if victim == workerID && !h.hybrid {
			continue
		}
		if item, err := h.outbox[victim].Remove(container.Head()); err == nil {
			return item.(MessageHandle), nil
		}
	}
	return MessageHandle{}, schederr.ErrNotFound
}

func (h *HCCommDelegateHeuristic) computePop(workerID int, target types.GUID) (MessageHandle, error) {
	h.mu.Lock()
	list := h.candidates[workerID]
	for i, c := range list {
		if target == "" || c.Target == target {
			h.candidates[workerID] = append(list[:i], list[i+1:]...)
			h.mu.Unlock()
			return c, nil
		}
	}
	h.mu.Unlock()

	for {
		item, err := h.inbox[workerID].Remove(container.Head())
		if err != nil {
			return MessageHandle{}, schederr.ErrNotFound
		}
		handle := item.(MessageHandle)
		if target == "" || handle.Target == target {
			return handle, nil
		}
		h.mu.Lock()
		h.candidates[workerID] = append(h.candidates[workerID], handle)
		h.mu.Unlock()
	}
}

// Notify(comm-ready) stamps and routes a handle, : a
// compute worker's handle is boxed into its own outbox; a comm worker's
// inbound handle lands in the named box's inbox (outbound responses may
// loop back to the originating outbox only in hybrid mode).
func (h *HCCommDelegateHeuristic) Notify(kind NotifyKind, payload *NotifyPayload) error {
	if kind != CommReady {
		return schederr.ErrNoOp
	}
	if payload == nil {
		return schederr.ErrInvalidArgument
	}
	boxID := payload.WorkerID
	if boxID < 0 || boxID >= len(h.outbox) {
		return schederr.ErrBadLocation
	}
	h.mu.Lock()
	h.nextMsgID++
	handle := MessageHandle{ID: h.nextMsgID, BoxID: boxID}
	h.mu.Unlock()

	if h.isCommWorker(boxID) {
		return nil // comm worker's own comm-ready is resolved by commSteal, not routed
	}
	return h.outbox[boxID].Insert(container.Tail(), handle)
}

// DeliverToInbox routes a response handle to box boxID's inbox — the comm
// worker's half of completing a round trip.
func (h *HCCommDelegateHeuristic) DeliverToInbox(boxID int, handle MessageHandle) error {
	if boxID < 0 || boxID >= len(h.inbox) {
		return schederr.ErrBadLocation
	}
	return h.inbox[boxID].Insert(container.Tail(), handle)
}

func (h *HCCommDelegateHeuristic) Transact(obj container.Object, dest types.PDLocation) error {
	return schederr.ErrNotSupported
}

func (h *HCCommDelegateHeuristic) Analyze(kind AnalyzeKind, props AnalyzeProperty, payload any) error {
	return schederr.ErrNotSupported
}
