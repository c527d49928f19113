package container

import "github.com/edtrt/edtrt/pkg/schederr"

// Wst ("worker scheduling table") is an array of per-worker Deques plus an
// optional dedicated comm-worker deque, . The hc heuristic
// steals across WorkerDeques in round-robin victim order; static's get_work
// falls back to CommDeque when present. hc-comm-delegate does not use
// CommDeque; it keeps its own per-worker outbox/inbox deques.
type Wst struct {
	WorkerDeques []*Deque
	CommDeque    *Deque // nil when the PD has no dedicated comm worker
	loc          string
}

// NewWst allocates a Wst with numWorkers empty deques. withComm adds a
// dedicated comm-worker deque (hc-comm-delegate only).
func NewWst(numWorkers int, withComm bool) *Wst {
	w := &Wst{WorkerDeques: make([]*Deque, numWorkers)}
	for i := range w.WorkerDeques {
		w.WorkerDeques[i] = NewDeque()
	}
	if withComm {
		w.CommDeque = NewDeque()
	}
	return w
}

func (w *Wst) Kind() SchedulerObjectKind { return KindWst }

// Insert is not meaningful on the Wst itself — callers insert directly into
// the worker deque returned by GetForLocation.
func (w *Wst) Insert(pos Position, item any) error { return ErrNotSupported }
func (w *Wst) Remove(pos Position) (any, error)    { return nil, ErrNotSupported }

// Count sums every worker deque (and the comm deque, if present) when flags
// includes CountRecursive; with CountImmediate it reports only the number of
// worker slots (a structural count, not a work count).
func (w *Wst) Count(flags CountFlags) int {
	if flags&CountRecursive == 0 {
		return len(w.WorkerDeques)
	}
	total := 0
	for _, d := range w.WorkerDeques {
		total += d.Count(CountImmediate)
	}
	if w.CommDeque != nil {
		total += w.CommDeque.Count(CountImmediate)
	}
	return total
}

func (w *Wst) CreateIterator() Iterator {
	items := make([]any, len(w.WorkerDeques))
	for i, d := range w.WorkerDeques {
		items[i] = d
	}
	return &sliceIterator{items: items, pos: -1}
}

func (w *Wst) DestroyIterator(Iterator) {}

// GetForLocation resolves a worker index (as a decimal string in loc) to its
// Deque under MapWorker, or returns the comm deque for any other mapping
// when one exists.
func (w *Wst) GetForLocation(kind SchedulerObjectKind, loc string, mapping Mapping) (Object, error) {
	if mapping == MapWorker {
		idx, err := parseWorkerIndex(loc)
		if err != nil || idx < 0 || idx >= len(w.WorkerDeques) {
			return nil, schederr.ErrBadLocation
		}
		return w.WorkerDeques[idx], nil
	}
	if w.CommDeque != nil {
		return w.CommDeque, nil
	}
	return nil, schederr.ErrNotFound
}

func parseWorkerIndex(loc string) (int, error) {
	n := 0
	if loc == "" {
		return 0, schederr.ErrInvalidArgument
	}
	for _, r := range loc {
		if r < '0' || r > '9' {
			return 0, schederr.ErrInvalidArgument
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}

func (w *Wst) SetLocation(loc string) { w.loc = loc }

// SwitchRunlevel propagates to every worker deque; a Deque itself has no
// runlevel-sensitive state, so this is mostly a structural no-op kept for
// symmetry with PdSpace's propagation.
func (w *Wst) SwitchRunlevel(phase RunlevelPhase, props RunlevelProperties) error {
	for _, d := range w.WorkerDeques {
		if err := d.SwitchRunlevel(phase, props); err != nil {
			return err
		}
	}
	return nil
}

func (w *Wst) MarshallSize() (int, error)       { return 0, ErrNotSupported }
func (w *Wst) Marshall(buf []byte) (int, error) { return 0, ErrNotSupported }
