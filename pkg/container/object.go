// Package container implements the scheduling core's object containers:
// deque, list, map, bin-heap, dbspace, dbtime, pdspace, wst, and pr-wsh,
// each behind the same function-table-shaped contract. Dynamic dispatch
// over container kinds maps cleanly onto a Go interface with one concrete
// type per enumerated kind — SchedulerObjectKind doubles as the
// allocation-provenance marker callers occasionally need, since they
// sometimes have to know which concrete type backs an Object without a
// type switch.
package container

import "fmt"

// SchedulerObjectKind tags which concrete container type an Object is. It
// doubles as the allocation-provenance marker; destruction and marshalling
// do not consult it.
type SchedulerObjectKind int

const (
	KindDeque SchedulerObjectKind = iota
	KindList
	KindMap
	KindBinHeap
	KindDbSpace
	KindDbTime
	KindPdSpace
	KindWst
	KindPrWsh
	KindEdtProxy
)

func (k SchedulerObjectKind) String() string {
	switch k {
	case KindDeque:
		return "deque"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindBinHeap:
		return "binheap"
	case KindDbSpace:
		return "dbspace"
	case KindDbTime:
		return "dbtime"
	case KindPdSpace:
		return "pdspace"
	case KindWst:
		return "wst"
	case KindPrWsh:
		return "pr-wsh"
	case KindEdtProxy:
		return "edtproxy"
	default:
		return "unknown"
	}
}

// PositionKind is the *kind* half of an insert/remove Position.
type PositionKind int

const (
	PosBefore PositionKind = iota
	PosAfter
	PosInPlace
)

// Locator is the *locator* half of an insert/remove Position.
type Locator int

const (
	LocHead Locator = iota
	LocTail
	LocIterator
)

// Position composes a PositionKind and a Locator to address an insert or
// remove point within a container, .
type Position struct {
	Kind    PositionKind
	At      Locator
	Iter    Iterator // used only when At == LocIterator
}

// Head is the common "insert/remove at the head" position.
func Head() Position { return Position{Kind: PosBefore, At: LocHead} }

// Tail is the common "insert/remove at the tail" position.
func Tail() Position { return Position{Kind: PosAfter, At: LocTail} }

// IteratorOp enumerates the operations an Iterator supports.
type IteratorOp int

const (
	IterCurrent IteratorOp = iota
	IterHead
	IterTail
	IterNext
	IterPrev
	IterSearchKey
	IterSearchData
)

// Iterator walks a container's contents without mutating it. Search ops
// take a predicate because containers here hold opaque `any` handles (GUIDs,
// message handles, ...) rather than one concrete comparable type.
type Iterator interface {
	// Apply performs op and returns the resulting item (or nil, false at
	// either end of the container). SearchKey/SearchData use pred to test
	// each item; the first matching item is returned.
	Apply(op IteratorOp, pred func(item any) bool) (item any, ok bool)
}

// CountFlags are bitwise-OR'd modifiers to Container.Count.
type CountFlags int

const (
	CountImmediate CountFlags = 1 << iota // only this container, not descendants
	CountRecursive                        // include descendant containers (e.g. PdSpace -> Wst -> deques)
	CountOnlyEDT                          // only count items known to be EDT handles
	CountOnlyDB                           // only count items known to be DB handles
)

// Mapping is the binding kind passed to GetForLocation: whether the returned
// child container is bound to a location that is merely potential, already
// mapped, explicitly unmapped, pinned to hardware, released, or bound to a
// specific worker.
type Mapping int

const (
	MapPotential Mapping = iota
	MapMapped
	MapUnmapped
	MapPinned
	MapReleased
	MapWorker
)

// RunlevelPhase is one phase of the bring-up/tear-down sequence, bring-up/tear-down sequence.
type RunlevelPhase int

const (
	RLConfigParse RunlevelPhase = iota
	RLNetworkOK
	RLPDOK
	RLMemoryOK
	RLGUIDOK
	RLComputeOK
	RLUserOK
)

// RunlevelProperties is the bitfield carried alongside a runlevel switch.
type RunlevelProperties uint32

const (
	RLRequest RunlevelProperties = 1 << iota
	RLResponse
	RLRelease
	RLAsync
	RLBarrier
	RLBringUp
	RLTearDown
	RLPDMaster
	RLNodeMaster
	RLBlessed
	RLFromMsg
)

// Object is the uniform contract every scheduler-object container
// implements, . Not every concrete type
// gives every method a meaningful implementation (e.g. a BinHeap has no
// child for GetForLocation, a plain Deque doesn't sub-divide by location) —
// such methods return ErrNotSupported rather than panicking, matching
// the convention that every non-zero return is fatal to the caller's operation
// contract (the caller decides whether that's reachable at all).
type Object interface {
	Kind() SchedulerObjectKind

	// Insert places item at pos. Remove takes it back out and returns it.
	Insert(pos Position, item any) error
	Remove(pos Position) (item any, err error)

	// Count reports how many items satisfy flags.
	Count(flags CountFlags) int

	CreateIterator() Iterator
	DestroyIterator(Iterator)

	// GetForLocation descends into a child container bound to loc with the
	// given mapping (e.g. PdSpace -> Wst -> per-worker deque).
	GetForLocation(kind SchedulerObjectKind, loc string, mapping Mapping) (Object, error)
	SetLocation(loc string)

	// SwitchRunlevel runs this object's bring-up/tear-down callback for the
	// given phase; implementations that have no work for a phase return nil.
	SwitchRunlevel(phase RunlevelPhase, props RunlevelProperties) error

	// MarshallSize and Marshall support the transact op (spec §4.1, §6);
	// decoding is the package function UnmarshallDb, not an interface
	// method. Containers that never travel between PDs (most do not —
	// only EDT and DbSpace objects transact) return 0/ErrNotSupported.
	MarshallSize() (int, error)
	Marshall(buf []byte) (int, error)
}

// ErrNotSupported is returned by Object methods a concrete container does
// not implement meaningfully for its kind.
var ErrNotSupported = fmt.Errorf("container: operation not supported for this object kind")
