package transport

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/edtrt/edtrt/pkg/schederr"
	"github.com/edtrt/edtrt/pkg/types"
)

// Mock is an in-memory Transport connecting every PD registered in the same
// process. Handlers run synchronously on the sending goroutine, matching
// running each PD's scheduler in its own
// thread group while exchanging messages through a mock transport — the
// "thread group" separation is the caller's (pkg/pdtest spins one goroutine
// pool per simulated PD); this type only removes the network hop.
type Mock struct {
	mu       sync.RWMutex
	handlers map[types.PDLocation]Handler
	dead     map[types.PDLocation]bool
	nextID   uint64
}

// NewMock returns an empty in-memory transport.
func NewMock() *Mock {
	return &Mock{
		handlers: make(map[types.PDLocation]Handler),
		dead:     make(map[types.PDLocation]bool),
	}
}

func (m *Mock) RegisterHandler(loc types.PDLocation, h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[loc] = h
}

// Unregister removes loc's handler, e.g. when a simulated PD shuts down.
func (m *Mock) Unregister(loc types.PDLocation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.handlers, loc)
}

// MarkDead simulates a "location-dead" send outcome:
// every subsequent Send to loc fails permanently until Revive is called.
func (m *Mock) MarkDead(loc types.PDLocation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dead[loc] = true
}

// Revive clears a prior MarkDead.
func (m *Mock) Revive(loc types.PDLocation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.dead, loc)
}

// NextID hands out a process-wide unique message id for pairing CE
// heuristic requests with responses.
func (m *Mock) NextID() uint64 { return atomic.AddUint64(&m.nextID, 1) }

func (m *Mock) Send(ctx context.Context, msg Message) (Message, error) {
	m.mu.RLock()
	dead := m.dead[msg.Dest]
	h, ok := m.handlers[msg.Dest]
	m.mu.RUnlock()

	if dead {
		return Message{}, schederr.ErrPermanentSend
	}
	if !ok {
		return Message{}, ErrUnregisteredLocation
	}
	if msg.ID == 0 {
		msg.ID = m.NextID()
	}
	return h(ctx, msg)
}
