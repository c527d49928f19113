package container

import (
	"sync"

	"github.com/edtrt/edtrt/pkg/types"
)

// DbTime is one entry of a DbSpace's timeline: the ST heuristic's record of
// a single scheduled access window against a DB — which space holds the
// access, at what logical time, and which EDTs are queued ready to run once
// that window opens . The scheduler node keeps the placement timeline;
// other PDs also hold DbTimes (db-create inserts a head DbTime on the
// creating PD, and edt-at-space parks EDTs on the local head DbTime).
type DbTime struct {
	mu sync.Mutex

	Space types.PDLocation
	Time  uint64

	// EdtScheduledCount/EdtDoneCount track how many EDTs have been placed
	// against this window and how many have reported edt-done; invariant
	// EdtDoneCount <= EdtScheduledCount always holds.
	EdtScheduledCount int
	EdtDoneCount      int

	// SchedulerCount/SchedulerDone are set only on the scheduler node: the
	// number of deps placed here by the placement algorithm, and whether
	// every one of them has finished (enabling a time-shift).
	SchedulerCount int
	SchedulerDone  bool

	ExclusiveWaiterCount int

	// ready holds GUIDs of EDTs whose full dependence set is satisfied for
	// this window and are waiting on db-time-shift-at-scheduler to fire.
	ready *List
	// wait holds GUIDs of EDTs blocked because the DB has not yet arrived
	// locally for this window (edt-at-space's waitList).
	wait *List

	loc string
}

// NewDbTime creates an empty timeline entry at (space, time).
func NewDbTime(space types.PDLocation, time uint64) *DbTime {
	return &DbTime{Space: space, Time: time, ready: NewList(), wait: NewList()}
}

// WaitList returns the list of EDT GUIDs parked because the DB payload for
// this window hasn't arrived at Space yet.
func (t *DbTime) WaitList() *List { return t.wait }

// MarkScheduled/MarkDone maintain the scheduled/done counters under lock.
func (t *DbTime) MarkScheduled() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.EdtScheduledCount++
}

func (t *DbTime) MarkDone() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.EdtDoneCount++
}

// Counts returns a snapshot of the scheduled/done counters.
func (t *DbTime) Counts() (scheduled, done int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.EdtScheduledCount, t.EdtDoneCount
}

func (t *DbTime) Kind() SchedulerObjectKind { return KindDbTime }

func (t *DbTime) Insert(pos Position, item any) error { return t.ready.Insert(pos, item) }
func (t *DbTime) Remove(pos Position) (any, error)    { return t.ready.Remove(pos) }
func (t *DbTime) Count(flags CountFlags) int          { return t.ready.Count(flags) }
func (t *DbTime) CreateIterator() Iterator            { return t.ready.CreateIterator() }
func (t *DbTime) DestroyIterator(it Iterator)         { t.ready.DestroyIterator(it) }

func (t *DbTime) GetForLocation(kind SchedulerObjectKind, loc string, mapping Mapping) (Object, error) {
	return nil, ErrNotSupported
}

func (t *DbTime) SetLocation(loc string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loc = loc
}

// Shift moves this window to a new (space, time) pair — the db-time-shift-
// at-scheduler op. The ready list travels with
// the window unchanged.
func (t *DbTime) Shift(space types.PDLocation, time uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Space = space
	t.Time = time
}

func (t *DbTime) SwitchRunlevel(phase RunlevelPhase, props RunlevelProperties) error { return nil }

func (t *DbTime) MarshallSize() (int, error)       { return 0, ErrNotSupported }
func (t *DbTime) Marshall(buf []byte) (int, error) { return 0, ErrNotSupported }
