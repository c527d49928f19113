package container

import (
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/edtrt/edtrt/pkg/schederr"
)

// entry is a Map key/value pair; keys are typically a types.GUID but the
// Map itself treats them as opaque comparable values (fmt.Stringer is
// assumed only when a key needs hashing below).
type entry struct {
	key, val any
}

// mapBucket is one modulo-hash bucket with its own lock, so concurrent
// inserts to different buckets never contend (PdSpace's DB directory is the
// busiest user of this: many DBs hash to many buckets).
type mapBucket struct {
	mu      sync.Mutex
	entries []entry
}

// Map is a fixed-bucket-count, per-bucket-locked hash map, used for PdSpace's
// DB directory and for the CE heuristic's child-location table.
type Map struct {
	buckets []*mapBucket
	n       int64 // not maintained; Count() walks every bucket instead
	loc     string
}

const defaultMapBuckets = 64

// NewMap returns an empty Map with the default bucket count.
func NewMap() *Map { return NewMapSized(defaultMapBuckets) }

// NewMapSized returns an empty Map with a caller-chosen bucket count; pick a
// larger count for containers expected to hold many entries (e.g. a PdSpace
// tracking every locally-active DB) to keep per-bucket contention low.
func NewMapSized(buckets int) *Map {
	if buckets < 1 {
		buckets = defaultMapBuckets
	}
	m := &Map{buckets: make([]*mapBucket, buckets)}
	for i := range m.buckets {
		m.buckets[i] = &mapBucket{}
	}
	return m
}

func (m *Map) Kind() SchedulerObjectKind { return KindMap }

func hashKey(key any) uint64 {
	h := fnv.New64a()
	switch k := key.(type) {
	case string:
		h.Write([]byte(k))
	case fmt.Stringer:
		h.Write([]byte(k.String()))
	default:
		h.Write([]byte(fmt.Sprintf("%v", k)))
	}
	return h.Sum64()
}

func (m *Map) bucketFor(key any) *mapBucket {
	return m.buckets[hashKey(key)%uint64(len(m.buckets))]
}

// Insert expects item to be an entry{key, val} pair; pos is ignored (a hash
// map has no position), since position only
// constrains ordered containers.
func (m *Map) Insert(pos Position, item any) error {
	e, ok := item.(entry)
	if !ok {
		return schederr.ErrInvalidArgument
	}
	b := m.bucketFor(e.key)
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, existing := range b.entries {
		if existing.key == e.key {
			b.entries[i] = e
			return nil
		}
	}
	b.entries = append(b.entries, e)
	return nil
}

// Put is the typed convenience wrapper scheduler code actually calls.
func (m *Map) Put(key, val any) { _ = m.Insert(Position{}, entry{key, val}) }

// Get looks up key without removing it.
func (m *Map) Get(key any) (any, bool) {
	b := m.bucketFor(key)
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.entries {
		if e.key == key {
			return e.val, true
		}
	}
	return nil, false
}

// Remove always returns ErrNotSupported: a hash map has no position to
// remove from. Removal by key goes through Delete.
func (m *Map) Remove(pos Position) (any, error) {
	return nil, ErrNotSupported // keyed removal goes through Delete, not the positional contract
}

// Delete removes key and reports whether it was present.
func (m *Map) Delete(key any) (any, bool) {
	b := m.bucketFor(key)
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, e := range b.entries {
		if e.key == key {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			return e.val, true
		}
	}
	return nil, false
}

// Range calls fn for a snapshot of every key/value pair, bucket by bucket.
// fn is never called while a bucket lock is held by Range itself, but
// concurrent Insert/Delete calls can still race with the snapshot — callers
// that need a consistent view (the reconciler's timeline sweep) tolerate a
// DB joining or leaving mid-sweep since it will be picked up next tick.
func (m *Map) Range(fn func(key, val any)) {
	for _, b := range m.buckets {
		b.mu.Lock()
		snapshot := make([]entry, len(b.entries))
		copy(snapshot, b.entries)
		b.mu.Unlock()
		for _, e := range snapshot {
			fn(e.key, e.val)
		}
	}
}

func (m *Map) Count(flags CountFlags) int {
	total := 0
	for _, b := range m.buckets {
		b.mu.Lock()
		total += len(b.entries)
		b.mu.Unlock()
	}
	return total
}

func (m *Map) CreateIterator() Iterator {
	items := make([]any, 0)
	for _, b := range m.buckets {
		b.mu.Lock()
		for _, e := range b.entries {
			items = append(items, e)
		}
		b.mu.Unlock()
	}
	return &sliceIterator{items: items, pos: -1}
}

func (m *Map) DestroyIterator(Iterator) {}

func (m *Map) GetForLocation(kind SchedulerObjectKind, loc string, mapping Mapping) (Object, error) {
	return nil, ErrNotSupported
}

func (m *Map) SetLocation(loc string) { m.loc = loc }

func (m *Map) SwitchRunlevel(phase RunlevelPhase, props RunlevelProperties) error { return nil }

func (m *Map) MarshallSize() (int, error)       { return 0, ErrNotSupported }
func (m *Map) Marshall(buf []byte) (int, error) { return 0, ErrNotSupported }
