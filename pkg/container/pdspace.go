package container

import (
	"sync"

	"github.com/edtrt/edtrt/pkg/schederr"
	"github.com/edtrt/edtrt/pkg/types"
)

// PdSpace is the per-PD root scheduling object: the DB directory (every
// DbSpace this PD has ever touched, proxy or local) plus the Wst holding its
// workers' deques. Every heuristic's get_work/notify/transact/analyze
// ultimately bottoms out here, .
type PdSpace struct {
	mu sync.Mutex

	Location types.PDLocation
	DbMap    *Map // types.GUID -> *DbSpace
	Workers  *Wst

	// edts holds every *EdtProxy currently under suspended analysis on this
	// PD (non-empty only on the elected schedulerLocation for st, or
	// transiently during acquisition for every heuristic).
	edts *Map // types.GUID -> *EdtProxy
}

// NewPdSpace allocates a PdSpace for loc with numWorkers workers.
// withCommWorker mirrors Wst's own flag (hc-comm-delegate only).
func NewPdSpace(loc types.PDLocation, numWorkers int, withCommWorker bool) *PdSpace {
	return &PdSpace{
		Location: loc,
		DbMap:    NewMap(),
		Workers:  NewWst(numWorkers, withCommWorker),
		edts:     NewMap(),
	}
}

func (s *PdSpace) Kind() SchedulerObjectKind { return KindPdSpace }

// DbSpaceFor returns the DbSpace for guid, creating a fresh proxy-state one
// if this PD has never seen it before — the usual entry point for
// db-acquire/db-create handling (the DB ops table).
func (s *PdSpace) DbSpaceFor(guid types.GUID, create func() types.Db) *DbSpace {
	if v, ok := s.DbMap.Get(guid); ok {
		return v.(*DbSpace)
	}
	ds := NewDbSpace(create())
	s.DbMap.Put(guid, ds)
	return ds
}

// RangeDbSpaces calls fn for every DbSpace this PD's directory currently
// holds, in no particular order — used by the reconciler's timeline sweep
// rather than the Iterator contract, since that only exposes opaque `any`
// items and the sweep needs typed *DbSpace values.
func (s *PdSpace) RangeDbSpaces(fn func(guid types.GUID, ds *DbSpace)) {
	s.DbMap.Range(func(key, val any) {
		fn(key.(types.GUID), val.(*DbSpace))
	})
}

// EdtProxyFor returns the EdtProxy for guid, creating one from edt if this
// is the first time this PD has needed suspended analysis for it.
func (s *PdSpace) EdtProxyFor(guid types.GUID, edt types.Edt) *EdtProxy {
	if v, ok := s.edts.Get(guid); ok {
		return v.(*EdtProxy)
	}
	p := NewEdtProxy(edt)
	s.edts.Put(guid, p)
	return p
}

// ReleaseEdtProxy removes guid's EdtProxy once its analysis has resolved
// (scheduled, rescheduled away, or reaped).
func (s *PdSpace) ReleaseEdtProxy(guid types.GUID) {
	s.edts.Delete(guid)
}

// Insert/Remove are not meaningful at the PdSpace root itself; callers go
// through DbSpaceFor/Workers/GetForLocation instead.
func (s *PdSpace) Insert(pos Position, item any) error { return ErrNotSupported }
func (s *PdSpace) Remove(pos Position) (any, error)    { return nil, ErrNotSupported }

func (s *PdSpace) Count(flags CountFlags) int {
	switch {
	case flags&CountOnlyDB != 0:
		return s.DbMap.Count(CountImmediate)
	case flags&CountOnlyEDT != 0:
		return s.edts.Count(CountImmediate)
	case flags&CountRecursive != 0:
		return s.DbMap.Count(CountImmediate) + s.edts.Count(CountImmediate) + s.Workers.Count(CountRecursive)
	default:
		return s.DbMap.Count(CountImmediate) + s.edts.Count(CountImmediate)
	}
}

func (s *PdSpace) CreateIterator() Iterator  { return s.DbMap.CreateIterator() }
func (s *PdSpace) DestroyIterator(it Iterator) { s.DbMap.DestroyIterator(it) }

// GetForLocation descends to Workers for KindWst, or resolves loc as a DB
// GUID for KindDbSpace.
func (s *PdSpace) GetForLocation(kind SchedulerObjectKind, loc string, mapping Mapping) (Object, error) {
	switch kind {
	case KindWst:
		return s.Workers, nil
	case KindDbSpace:
		if v, ok := s.DbMap.Get(types.GUID(loc)); ok {
			return v.(*DbSpace), nil
		}
		return nil, schederr.ErrNotFound
	default:
		return nil, ErrNotSupported
	}
}

func (s *PdSpace) SetLocation(loc string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Location = types.PDLocation(loc)
}

// SwitchRunlevel propagates to Workers; the DB/EDT maps have no runlevel-
// sensitive setup of their own (their entries are created lazily).
func (s *PdSpace) SwitchRunlevel(phase RunlevelPhase, props RunlevelProperties) error {
	return s.Workers.SwitchRunlevel(phase, props)
}

func (s *PdSpace) MarshallSize() (int, error)       { return 0, ErrNotSupported }
func (s *PdSpace) Marshall(buf []byte) (int, error) { return 0, ErrNotSupported }
