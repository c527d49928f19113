package container

import (
	"sync"

	"github.com/edtrt/edtrt/pkg/schederr"
)

// Deque is the work-stealing container backing the hc heuristic: the owning
// worker pushes and pops its own bottom, thieves pop from the top. Only
// LIFO-from-owner / FIFO-from-thief ordering is required, not a
// specific lock-free algorithm, so this implementation gets that ordering
// from a single mutex rather than a Chase-Lev CAS loop — same external
// behaviour, far less surface for a subtle bug.
type Deque struct {
	mu    sync.Mutex
	items []any
	loc   string
}

// NewDeque returns an empty Deque.
func NewDeque() *Deque { return &Deque{} }

func (d *Deque) Kind() SchedulerObjectKind { return KindDeque }

// Insert only honours Head/Tail; an iterator-relative insert on a deque is
// not meaningful (nothing else observes deque order but owner/thief ends).
func (d *Deque) Insert(pos Position, item any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch pos.At {
	case LocHead:
		d.items = append([]any{item}, d.items...)
	case LocTail:
		d.items = append(d.items, item)
	default:
		return ErrNotSupported
	}
	return nil
}

// Remove pops from the requested end. Owners call with Tail() (LIFO, own
// work), thieves call with Head() (FIFO, steal the oldest).
func (d *Deque) Remove(pos Position) (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.items) == 0 {
		return nil, schederr.ErrNotFound
	}
	switch pos.At {
	case LocHead:
		item := d.items[0]
		d.items = d.items[1:]
		return item, nil
	case LocTail:
		last := len(d.items) - 1
		item := d.items[last]
		d.items = d.items[:last]
		return item, nil
	default:
		return nil, ErrNotSupported
	}
}

func (d *Deque) Count(flags CountFlags) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.items)
}

func (d *Deque) CreateIterator() Iterator {
	d.mu.Lock()
	defer d.mu.Unlock()
	snapshot := make([]any, len(d.items))
	copy(snapshot, d.items)
	return &sliceIterator{items: snapshot, pos: -1}
}

func (d *Deque) DestroyIterator(Iterator) {}

func (d *Deque) GetForLocation(kind SchedulerObjectKind, loc string, mapping Mapping) (Object, error) {
	return nil, ErrNotSupported
}

func (d *Deque) SetLocation(loc string) { d.loc = loc }

func (d *Deque) SwitchRunlevel(phase RunlevelPhase, props RunlevelProperties) error { return nil }

func (d *Deque) MarshallSize() (int, error) { return 0, ErrNotSupported }
func (d *Deque) Marshall(buf []byte) (int, error) { return 0, ErrNotSupported }

// sliceIterator is the shared Iterator implementation for containers whose
// contents are naturally ordered (Deque, List): it walks a point-in-time
// snapshot rather than the live container, so concurrent mutation never
// invalidates an in-flight iteration.
type sliceIterator struct {
	items []any
	pos   int
}

func (it *sliceIterator) Apply(op IteratorOp, pred func(item any) bool) (any, bool) {
	switch op {
	case IterHead:
		it.pos = 0
	case IterTail:
		it.pos = len(it.items) - 1
	case IterNext:
		it.pos++
	case IterPrev:
		it.pos--
	case IterCurrent:
		// no movement
	case IterSearchKey, IterSearchData:
		for i, item := range it.items {
			if pred(item) {
				it.pos = i
				return item, true
			}
		}
		return nil, false
	}
	if it.pos < 0 || it.pos >= len(it.items) {
		return nil, false
	}
	return it.items[it.pos], true
}
