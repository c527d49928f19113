package container

import (
	"container/heap"
	"sync"

	"github.com/edtrt/edtrt/pkg/schederr"
)

// heapEntry pairs an item with the priority it was inserted under. Higher
// Priority pops first (the priority heuristic's "highest hint wins" rule).
type heapEntry struct {
	item     any
	priority int64
}

// innerHeap implements container/heap.Interface; BinHeap wraps it behind a
// mutex so callers never touch heap.Interface directly.
type innerHeap []heapEntry

func (h innerHeap) Len() int            { return len(h) }
func (h innerHeap) Less(i, j int) bool  { return h[i].priority > h[j].priority }
func (h innerHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *innerHeap) Push(x any)         { *h = append(*h, x.(heapEntry)) }
func (h *innerHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// BinHeap is a mutex-guarded max-priority heap: the priority heuristic's
// ready queue uses it, and PrWsh wraps it.
type BinHeap struct {
	mu  sync.Mutex
	h   innerHeap
	loc string
}

func NewBinHeap() *BinHeap {
	b := &BinHeap{}
	heap.Init(&b.h)
	return b
}

func (b *BinHeap) Kind() SchedulerObjectKind { return KindBinHeap }

// Insert ignores pos — a heap has only one insertion point, priority order.
// item must be a heapEntry{item, priority}; PushPriority is the typed
// convenience most callers use instead.
func (b *BinHeap) Insert(pos Position, item any) error {
	e, ok := item.(heapEntry)
	if !ok {
		return schederr.ErrInvalidArgument
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	heap.Push(&b.h, e)
	return nil
}

// PushPriority is the typed entry point scheduler code uses.
func (b *BinHeap) PushPriority(item any, priority int64) {
	_ = b.Insert(Position{}, heapEntry{item, priority})
}

// Remove ignores pos — a heap only removes its max; Pop is the typed form.
func (b *BinHeap) Remove(pos Position) (any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.h.Len() == 0 {
		return nil, schederr.ErrNotFound
	}
	e := heap.Pop(&b.h).(heapEntry)
	return e.item, nil
}

// Pop is the typed convenience returning both the item and its priority.
func (b *BinHeap) Pop() (item any, priority int64, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.h.Len() == 0 {
		return nil, 0, schederr.ErrNotFound
	}
	e := heap.Pop(&b.h).(heapEntry)
	return e.item, e.priority, nil
}

// Peek reports the current max without removing it.
func (b *BinHeap) Peek() (item any, priority int64, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.h.Len() == 0 {
		return nil, 0, false
	}
	return b.h[0].item, b.h[0].priority, true
}

func (b *BinHeap) Count(flags CountFlags) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.h.Len()
}

func (b *BinHeap) CreateIterator() Iterator {
	b.mu.Lock()
	defer b.mu.Unlock()
	items := make([]any, len(b.h))
	for i, e := range b.h {
		items[i] = e.item
	}
	return &sliceIterator{items: items, pos: -1}
}

func (b *BinHeap) DestroyIterator(Iterator) {}

func (b *BinHeap) GetForLocation(kind SchedulerObjectKind, loc string, mapping Mapping) (Object, error) {
	return nil, ErrNotSupported
}

func (b *BinHeap) SetLocation(loc string) { b.loc = loc }

func (b *BinHeap) SwitchRunlevel(phase RunlevelPhase, props RunlevelProperties) error { return nil }

func (b *BinHeap) MarshallSize() (int, error)       { return 0, ErrNotSupported }
func (b *BinHeap) Marshall(buf []byte) (int, error) { return 0, ErrNotSupported }
