package types

import (
	"time"

	"github.com/google/uuid"
)

// GUID identifies an EDT, a DB, or a PD. It is opaque outside this package;
// callers should treat it as a comparable value, never parse its contents.
type GUID string

// NewGUID returns a fresh, globally unique identifier.
func NewGUID() GUID {
	return GUID(uuid.New().String())
}

// PDLocation identifies a policy domain — the per-node runtime instance that
// owns a scheduler tree, a set of workers, and (on exactly one PD at a time)
// the ST heuristic's centralised placement analysis.
type PDLocation string

// AccessMode is the mode in which an EDT acquires a DB dependence.
type AccessMode int

const (
	AccessModeRO AccessMode = iota
	AccessModeRW
	AccessModeEW // exclusive write: no concurrent readers or writers
)

func (m AccessMode) String() string {
	switch m {
	case AccessModeRO:
		return "RO"
	case AccessModeRW:
		return "RW"
	case AccessModeEW:
		return "EW"
	default:
		return "unknown"
	}
}

// EdtState is the lifecycle state of an EDT, per its own state machine.
type EdtState int

const (
	EdtCreated EdtState = iota
	EdtAllDepsAdded
	EdtPartial
	EdtAllSatisfied
	EdtAllAcquired
	EdtRunning
	EdtReaping
	EdtRescheduled
)

func (s EdtState) String() string {
	switch s {
	case EdtCreated:
		return "created"
	case EdtAllDepsAdded:
		return "all-deps-added"
	case EdtPartial:
		return "partial"
	case EdtAllSatisfied:
		return "all-satisfied"
	case EdtAllAcquired:
		return "all-acquired"
	case EdtRunning:
		return "running"
	case EdtReaping:
		return "reaping"
	case EdtRescheduled:
		return "rescheduled"
	default:
		return "unknown"
	}
}

// EdtFlags are bitwise-OR'd advisory markers on an EDT.
type EdtFlags uint32

const (
	EdtFlagUsesHints EdtFlags = 1 << iota
	EdtFlagRuntimeEdt
	EdtFlagUsesSchedulerObject
	EdtFlagUsesAffinity
)

// DepSlot is one entry of an EDT's resolved-dependence vector: one per DB
// dependence slot. Ptr is nil until the DB has been locally acquired.
type DepSlot struct {
	DB   GUID
	Mode AccessMode
	Ptr  uintptr // opaque local pointer once acquired; 0 until then
}

// EdtFunc is the opaque, fire-once body of an EDT. The scheduling core never
// inspects it — invocation is outside this module's scope.
type EdtFunc func(params []uint64, deps []DepSlot)

// Edt is an Event-Driven Task: a fire-once procedure with a fixed number of
// input dependence slots and a fixed number of DB dependences.
type Edt struct {
	GUID         GUID
	TemplateGUID GUID // identifies the EdtFunc template this instance runs
	SlotCount    int
	DepCount     int
	Func         EdtFunc
	ParamV       []uint64
	DepV         []DepSlot
	State        EdtState
	Flags        EdtFlags
	Hints        *Hints

	// Runtime placement, set once the ST heuristic (or a short-circuit path)
	// has resolved them.
	ScheduledSpace PDLocation
	ScheduledTime  uint64

	CreatedAt time.Time
}

// HasFlag reports whether f is set on the EDT's flag bitmask.
func (e *Edt) HasFlag(f EdtFlags) bool { return e.Flags&f != 0 }

// DbState is the lifecycle state of a DbSpace, per its own state diagram.
type DbState int

const (
	DbProxy DbState = iota
	DbInfo
	DbLocalActive
	DbLocalInactive
	DbRemoteInactive
)

func (s DbState) String() string {
	switch s {
	case DbProxy:
		return "proxy"
	case DbInfo:
		return "info"
	case DbLocalActive:
		return "local-active"
	case DbLocalInactive:
		return "local-inactive"
	case DbRemoteInactive:
		return "remote-inactive"
	default:
		return "unknown"
	}
}

// IsLocal reports whether s is one of the two local-* states, in which a
// DbSpace must hold a non-nil Ptr (an invariant of the DB lifecycle).
func (s DbState) IsLocal() bool {
	return s == DbLocalActive || s == DbLocalInactive
}

// Db is a data block: a content-addressed memory region with a GUID, a
// size, and a placement. The scheduling core owns only this metadata — the
// payload bytes are an explicit non-goal (out of scope for this module).
type Db struct {
	GUID    GUID
	Size    uint64
	Ptr     uintptr // 0 (null) until locally acquired
	HomePD  PDLocation
	Mode    AccessMode
	Hints   *Hints
	Created time.Time
}

// Hints is the stack-allocated, type-tagged advisory metadata block attached
// to an EDT or a DB, keyed by one of a fixed set of hint properties. A zero
// Hints has an empty propMask and never affects correctness — callers of
// Get return ENOENT for anything unset.
type Hints struct {
	propMask uint64
	values   map[HintProperty]int64
}

// HintProperty enumerates the recognised hint properties. EDT and DB
// properties share one namespace, and a Hints block does not record which
// entity it belongs to: Set accepts any property, so a DB-only property set
// on an EDT's hints (or vice versa) is stored without error.
type HintProperty int

const (
	// EDT hints.
	HintPriority HintProperty = iota
	HintSlotMaxAccess
	HintAffinity
	HintSpace
	HintTime
	HintDisperse
	HintPhase

	// DB hints.
	HintDbAffinity
	HintNear
	HintInter
	HintFar
	HintHighBandwidth
)

// DisperseMode is the value domain of HintDisperse.
type DisperseMode int64

const (
	DisperseNear DisperseMode = iota
	DisperseAny
)

// NewHints returns an empty, zero-value hint block ready for Set calls.
func NewHints() *Hints {
	return &Hints{values: make(map[HintProperty]int64)}
}

// Set stores v under property p, returning it for chaining.
func (h *Hints) Set(p HintProperty, v int64) *Hints {
	h.propMask |= 1 << uint(p)
	h.values[p] = v
	return h
}

// Get returns the value stored for p and true, or (0, false) if p was never
// set — the caller-visible equivalent of a missing-hint lookup.
func (h *Hints) Get(p HintProperty) (int64, bool) {
	if h == nil {
		return 0, false
	}
	v, ok := h.values[p]
	return v, ok
}

// Unset clears property p.
func (h *Hints) Unset(p HintProperty) {
	if h == nil {
		return
	}
	h.propMask &^= 1 << uint(p)
	delete(h.values, p)
}

// Has reports whether property p is currently set.
func (h *Hints) Has(p HintProperty) bool {
	if h == nil {
		return false
	}
	_, ok := h.values[p]
	return ok
}
