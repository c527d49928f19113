package container

import (
	"sync"

	"github.com/edtrt/edtrt/pkg/schederr"
	"github.com/edtrt/edtrt/pkg/types"
)

// DbSpace is the per-DB scheduling object: the DB lifecycle state
// machine plus the waiters list that blocks EDTs acquiring it. Exactly one
// DbSpace exists per DB GUID per PD that has ever touched it (proxy or
// local). Every field after the lock is owned by it — a per-
// DbSpace spin-lock" requirement.
type DbSpace struct {
	mu sync.Mutex

	db    types.Db
	state types.DbState

	// waiters holds GUIDs of EDTs blocked acquiring this DB, FIFO order.
	waiters *List

	// timeline is this DbSpace's chain of DbTime entries (one per distinct
	// scheduled access window the ST heuristic has placed against this DB).
	// Most heuristics never populate it; only st does.
	timeline *List

	// activeCount is the number of in-flight local acquires; free marks
	// that the user has requested destruction once the last one drains.
	activeCount int
	free        bool
	// mapping records the last get-for-location binding kind resolved
	// against this DbSpace (potential, mapped, unmapped, pinned, released, or worker-bound).
	mapping Mapping

	loc string
}

// NewDbSpace creates a DbSpace in the proxy state for db.
func NewDbSpace(db types.Db) *DbSpace {
	return &DbSpace{
		db:       db,
		state:    types.DbProxy,
		waiters:  NewList(),
		timeline: NewList(),
	}
}

func (d *DbSpace) Kind() SchedulerObjectKind { return KindDbSpace }

// State returns the current lifecycle state under lock.
func (d *DbSpace) State() types.DbState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// DB returns a copy of the DB metadata under lock.
func (d *DbSpace) DB() types.Db {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.db
}

// validTransitions enumerates the DB lifecycle edges allows.
var validTransitions = map[types.DbState][]types.DbState{
	types.DbProxy:           {types.DbInfo, types.DbLocalActive, types.DbRemoteInactive},
	types.DbInfo:            {types.DbLocalActive, types.DbRemoteInactive},
	types.DbLocalActive:     {types.DbLocalInactive},
	types.DbLocalInactive:   {types.DbLocalActive, types.DbRemoteInactive},
	types.DbRemoteInactive:  {types.DbLocalActive, types.DbProxy},
}

// Transition moves the DbSpace to next, rejecting edges this state machine doesn't
// allow. Acquire and Release set the state themselves, and the ST heuristic's
// ops use ForceState, so this edge table is checked only by callers of
// Transition.
func (d *DbSpace) Transition(next types.DbState) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, allowed := range validTransitions[d.state] {
		if allowed == next {
			d.state = next
			if next.IsLocal() && d.db.Ptr == 0 {
				d.db.Ptr = 1 // placeholder acquisition marker; real allocator is out of scope
			}
			return nil
		}
	}
	return schederr.ErrInvalidArgument
}

// Acquire grants mode to an EDT, incrementing activeCount and transitioning
// local-inactive -> local-active on the first concurrent holder (the
// db-acquire op).
func (d *DbSpace) Acquire(mode types.AccessMode) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == types.DbLocalInactive {
		d.state = types.DbLocalActive
	} else if d.state != types.DbLocalActive {
		return schederr.ErrInvalidArgument
	}
	d.activeCount++
	return nil
}

// ReleaseResult reports what a Release call did, so the caller (pkg/scheduler's
// ST heuristic) knows whether to send db-done to the scheduler node.
type ReleaseResult struct {
	WentInactive bool
	ShouldDestroy bool
}

// Release implements db-release : activeCount--, the owning
// DbTime's edtDoneCount++; when scheduled==done and activeCount==0 the
// DbSpace drops to local-inactive, optionally destructing if Free() was
// called, and the caller sends db-done to the scheduler node.
func (d *DbSpace) Release(dt *DbTime) (ReleaseResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.activeCount == 0 {
		return ReleaseResult{}, schederr.ErrInvalidArgument
	}
	d.activeCount--
	dt.MarkDone()
	scheduled, done := dt.Counts()
	if scheduled != done || d.activeCount != 0 {
		return ReleaseResult{}, nil
	}
	d.state = types.DbLocalInactive
	return ReleaseResult{WentInactive: true, ShouldDestroy: d.free}, nil
}

// Free marks the DbSpace for destruction once its last acquire drains,
// per db-free's "decrement once if a per-PD latent acquire exists" rule.
func (d *DbSpace) Free(noRelease bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.free = true
	if !noRelease && d.activeCount > 0 {
		d.activeCount--
	}
}

// SetMapping records the last get-for-location binding kind resolved
// against this DbSpace.
func (d *DbSpace) SetMapping(m Mapping) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mapping = m
}

func (d *DbSpace) Mapping() Mapping {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mapping
}

// ForceState sets the lifecycle state directly, bypassing Transition's edge
// table — used by the scheduler-node-only ops (db-at-scheduler, db-move-dst)
// whose transitions are "create or upgrade" rather
// than a single validated edge.
func (d *DbSpace) ForceState(s types.DbState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = s
}

// UpdateMeta merges incoming metadata (size, home PD, mode) into this
// DbSpace without touching its GUID, state, waiters, or timeline — used
// when a proxy DbSpace learns real attributes from an arriving db-info or
// db-at-space message.
func (d *DbSpace) UpdateMeta(db types.Db) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.db.Size = db.Size
	d.db.HomePD = db.HomePD
	d.db.Mode = db.Mode
	if db.Ptr != 0 {
		d.db.Ptr = db.Ptr
	}
}

// TryLock/Unlock expose the per-object spin-lock directly for the ST
// heuristic's full-depv trylock-all-or-release-and-retry protocol
// , which must hold several DbSpaces' locks across one
// caller-driven decision rather than for the duration of a single method.
func (d *DbSpace) TryLock() bool { return d.mu.TryLock() }
func (d *DbSpace) Lock()         { d.mu.Lock() }
func (d *DbSpace) Unlock()       { d.mu.Unlock() }

// Timeline returns the DbSpace's ordered DbTime list. The ST heuristic fills
// it on the scheduler node (placement) and on the PD that created the DB
// (db-create's head DbTime); other heuristics leave it empty.
func (d *DbSpace) Timeline() *List { return d.timeline }

// Waiters returns the list of EDT GUIDs parked waiting to acquire this DB.
func (d *DbSpace) Waiters() *List { return d.waiters }

// Kind-uniform container contract below; a DbSpace's Insert/Remove operate
// on its waiters list, treating a DbSpace
// as "a container of waiting EDTs with attached state".

func (d *DbSpace) Insert(pos Position, item any) error {
	return d.waiters.Insert(pos, item)
}

func (d *DbSpace) Remove(pos Position) (any, error) {
	return d.waiters.Remove(pos)
}

func (d *DbSpace) Count(flags CountFlags) int {
	if flags&CountRecursive != 0 {
		return d.waiters.Count(CountImmediate) + d.timeline.Count(CountImmediate)
	}
	return d.waiters.Count(CountImmediate)
}

func (d *DbSpace) CreateIterator() Iterator  { return d.waiters.CreateIterator() }
func (d *DbSpace) DestroyIterator(it Iterator) { d.waiters.DestroyIterator(it) }

// GetForLocation returns the timeline container when asked for KindDbTime;
// it is the only descendant a DbSpace has.
func (d *DbSpace) GetForLocation(kind SchedulerObjectKind, loc string, mapping Mapping) (Object, error) {
	if kind == KindDbTime {
		return d.timeline, nil
	}
	return nil, ErrNotSupported
}

func (d *DbSpace) SetLocation(loc string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loc = loc
}

func (d *DbSpace) SwitchRunlevel(phase RunlevelPhase, props RunlevelProperties) error { return nil }

// MarshallSize/Marshall support the db-move-src/db-move-dst transact path
// (the DB ops table): a DbSpace travelling to a new
// home PD marshals its metadata, not any payload (payload storage is out of
// scope for the whole module).
func (d *DbSpace) MarshallSize() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	// GUID (2-byte length prefix + bytes) + 8-byte size + HomePD (2-byte
	// length prefix + bytes) + 4-byte mode — must match marshallDb exactly,
	// since Marshall rejects a buffer any smaller than this.
	return len(d.db.GUID) + 2 + 8 + len(d.db.HomePD) + 2 + 4, nil
}

func (d *DbSpace) Marshall(buf []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := marshallDb(buf, d.db)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// UnmarshallDb decodes a DbSpace marshalled by Marshall — the arriving side
// of the db-move-src/db-move-dst transact path.
func UnmarshallDb(buf []byte) (types.Db, int, error) {
	return unmarshallDb(buf)
}
