// Package scheduler implements the facade and the seven pluggable placement
// and dispatch heuristics: hc, hc-comm-delegate, static, priority,
// placement-affinity, ce, and st. Every heuristic implements Heuristic;
// the facade looks one up by HeuristicID and dispatches get_work / notify /
// transact / analyze to it.
package scheduler

import (
	"github.com/edtrt/edtrt/pkg/container"
	"github.com/edtrt/edtrt/pkg/types"
)

// HeuristicID selects one of the seven pluggable policies.
type HeuristicID int

const (
	HC HeuristicID = iota
	HCCommDelegate
	Static
	Priority
	PlacementAffinity
	CE
	ST
)

func (id HeuristicID) String() string {
	switch id {
	case HC:
		return "hc"
	case HCCommDelegate:
		return "hc-comm-delegate"
	case Static:
		return "static"
	case Priority:
		return "priority"
	case PlacementAffinity:
		return "placement-affinity"
	case CE:
		return "ce"
	case ST:
		return "st"
	default:
		return "unknown"
	}
}

// NotifyKind enumerates the event kinds notify() carries, .
type NotifyKind int

const (
	PreProcessMsg NotifyKind = iota
	PostProcessMsg
	EdtCreate
	EdtSatisfied
	EdtReady
	EdtDone
	DbCreate
	DbAcquire
	DbRelease
	DbDestroy
	CommReady
)

// AnalyzeKind enumerates the payload kinds analyze() exchanges; only the ST
// heuristic uses these.
type AnalyzeKind int

const (
	SpacetimeEdt AnalyzeKind = iota
	SpacetimeDb
)

// AnalyzeProperty is a bitwise-OR'd modifier on an analyze() call.
type AnalyzeProperty int

const (
	PropCreate AnalyzeProperty = 1 << iota
	PropDestroy
	PropRequest
	PropResponse
	PropDone
	PropUpdate
	PropAck
	PropNack
)

// NotifyPayload carries whatever context a notify() call needs; only the
// fields relevant to kind are populated, carrying the same
// payload" pair shape.
type NotifyPayload struct {
	Edt      *types.Edt
	Db       *types.Db
	WorkerID int

	// DestLocation is written back by Static/PlacementAffinity's
	// pre-process-msg handling.
	DestLocation types.PDLocation
}

// Heuristic is the contract every pluggable policy implements.
type Heuristic interface {
	ID() HeuristicID

	// GetWork returns a runnable EDT for the calling worker, or
	// (nil, schederr.ErrNotFound) when none is available. Must not block
	// except in the CE heuristic, which may park on a neighbour response.
	GetWork(workerID int) (*types.Edt, error)

	// Notify delivers kind with payload; most heuristics react to only a
	// handful of kinds and return schederr.ErrNoOp for the rest.
	Notify(kind NotifyKind, payload *NotifyPayload) error

	// Transact moves obj to dest. Only EDT and DbSpace objects transact.
	Transact(obj container.Object, dest types.PDLocation) error

	// Analyze exchanges lightweight placement information; only the st
	// heuristic implements this meaningfully.
	Analyze(kind AnalyzeKind, props AnalyzeProperty, payload any) error
}
