package container

import (
	"sync"

	"github.com/edtrt/edtrt/pkg/schederr"
)

// List is a doubly-linked container supporting insert/remove at head, tail,
// or relative to an iterator position (the full Position
// matrix). Used for DbSpace's waiters list and timeline, and for DbTime's
// ready and wait lists.
type List struct {
	mu   sync.Mutex
	head *listNode
	tail *listNode
	n    int
	loc  string
}

type listNode struct {
	item       any
	prev, next *listNode
}

func NewList() *List { return &List{} }

func (l *List) Kind() SchedulerObjectKind { return KindList }

func (l *List) Insert(pos Position, item any) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	node := &listNode{item: item}
	switch pos.At {
	case LocHead:
		l.linkBefore(node, l.head)
	case LocTail:
		l.linkAfter(node, l.tail)
	case LocIterator:
		ref, err := l.nodeAt(pos)
		if err != nil {
			return err
		}
		if pos.Kind == PosBefore {
			l.linkBefore(node, ref)
		} else {
			l.linkAfter(node, ref)
		}
	default:
		return schederr.ErrInvalidArgument
	}
	l.n++
	return nil
}

func (l *List) linkBefore(node, ref *listNode) {
	if ref == nil {
		l.linkAfter(node, l.tail)
		return
	}
	node.next = ref
	node.prev = ref.prev
	if ref.prev != nil {
		ref.prev.next = node
	} else {
		l.head = node
	}
	ref.prev = node
}

func (l *List) linkAfter(node, ref *listNode) {
	if ref == nil {
		node.prev, node.next = nil, nil
		l.head, l.tail = node, node
		return
	}
	node.prev = ref
	node.next = ref.next
	if ref.next != nil {
		ref.next.prev = node
	} else {
		l.tail = node
	}
	ref.next = node
}

// nodeAt resolves pos.Iter's current item back to this list's node; the
// iterator tracks its position by index into the snapshot it was created
// from, so we re-walk the live list counting from head.
func (l *List) nodeAt(pos Position) (*listNode, error) {
	si, ok := pos.Iter.(*sliceIterator)
	if !ok || si.pos < 0 {
		return nil, schederr.ErrInvalidArgument
	}
	cur := l.head
	for i := 0; cur != nil && i < si.pos; i++ {
		cur = cur.next
	}
	if cur == nil {
		return nil, schederr.ErrNotFound
	}
	return cur, nil
}

func (l *List) Remove(pos Position) (any, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var node *listNode
	switch pos.At {
	case LocHead:
		node = l.head
	case LocTail:
		node = l.tail
	case LocIterator:
		n, err := l.nodeAt(pos)
		if err != nil {
			return nil, err
		}
		node = n
	default:
		return nil, schederr.ErrInvalidArgument
	}
	if node == nil {
		return nil, schederr.ErrNotFound
	}
	l.unlink(node)
	l.n--
	return node.item, nil
}

func (l *List) unlink(node *listNode) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}
}

func (l *List) Count(flags CountFlags) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.n
}

func (l *List) CreateIterator() Iterator {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := make([]any, 0, l.n)
	for cur := l.head; cur != nil; cur = cur.next {
		items = append(items, cur.item)
	}
	return &sliceIterator{items: items, pos: -1}
}

func (l *List) DestroyIterator(Iterator) {}

func (l *List) GetForLocation(kind SchedulerObjectKind, loc string, mapping Mapping) (Object, error) {
	return nil, ErrNotSupported
}

func (l *List) SetLocation(loc string) { l.loc = loc }

func (l *List) SwitchRunlevel(phase RunlevelPhase, props RunlevelProperties) error { return nil }

func (l *List) MarshallSize() (int, error)         { return 0, ErrNotSupported }
func (l *List) Marshall(buf []byte) (int, error) { return 0, ErrNotSupported }
