package container

import (
	"sync"

	"github.com/edtrt/edtrt/pkg/types"
)

// EdtProxy is the scheduler-node-only object representing an EDT under
// suspended analysis: exists only
// on the PD running an in-flight ST placement decision for that EDT, never
// replicated anywhere else. It holds the EDT's current acquisition progress
// (which dep slots have been locked so far under the full-depv trylock-all
// protocol) separately from the Edt value itself, so a retry can release
// exactly what it acquired without re-deriving it from DepV each time.
type EdtProxy struct {
	mu sync.Mutex

	edt types.Edt

	// acquired holds indices into edt.DepV that have been locked so far in
	// the current trylock-all attempt; the trylock-all avoidance protocol
	// releases exactly this set on conflict, then retries.
	acquired []int

	loc string
}

// NewEdtProxy wraps edt for suspended analysis.
func NewEdtProxy(edt types.Edt) *EdtProxy {
	return &EdtProxy{edt: edt}
}

func (p *EdtProxy) Kind() SchedulerObjectKind { return KindEdtProxy }

// Edt returns a copy of the wrapped EDT.
func (p *EdtProxy) Edt() types.Edt {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.edt
}

// MarkAcquired records that DepV[idx] was successfully trylocked.
func (p *EdtProxy) MarkAcquired(idx int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.acquired = append(p.acquired, idx)
}

// ReleaseAll returns every acquired index (for the caller to release the
// corresponding DbSpace locks) and clears the set, per the trylock-all
// retry protocol: on any single conflict, release everything already held
// and retry from scratch rather than holding partial locks.
func (p *EdtProxy) ReleaseAll() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.acquired
	p.acquired = nil
	return out
}

func (p *EdtProxy) AllAcquired() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.acquired) == len(p.edt.DepV)
}

// Insert/Remove are not meaningful on an EdtProxy itself (it wraps exactly
// one EDT, not a collection) — present only to satisfy Object.
func (p *EdtProxy) Insert(pos Position, item any) error { return ErrNotSupported }
func (p *EdtProxy) Remove(pos Position) (any, error)    { return nil, ErrNotSupported }

func (p *EdtProxy) Count(flags CountFlags) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.acquired)
}

func (p *EdtProxy) CreateIterator() Iterator {
	p.mu.Lock()
	defer p.mu.Unlock()
	items := make([]any, len(p.acquired))
	for i, idx := range p.acquired {
		items[i] = idx
	}
	return &sliceIterator{items: items, pos: -1}
}

func (p *EdtProxy) DestroyIterator(Iterator) {}

func (p *EdtProxy) GetForLocation(kind SchedulerObjectKind, loc string, mapping Mapping) (Object, error) {
	return nil, ErrNotSupported
}

func (p *EdtProxy) SetLocation(loc string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loc = loc
}

func (p *EdtProxy) SwitchRunlevel(phase RunlevelPhase, props RunlevelProperties) error { return nil }

func (p *EdtProxy) MarshallSize() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return marshallEdtSize(p.edt), nil
}

func (p *EdtProxy) Marshall(buf []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return marshallEdt(buf, p.edt)
}
