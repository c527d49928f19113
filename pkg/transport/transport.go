// Package transport defines the message-transport boundary the scheduling
// core sends policy messages across. A real network transport is a
// separate collaborator outside the core's own responsibility; Transport
// is the interface that boundary has to satisfy, and Mock is the in-memory
// implementation both pkg/pdtest and single-process deployments use to run
// each PD's scheduler in its own goroutine group while exchanging messages
// without a network hop.
package transport

import (
	"context"
	"fmt"

	"github.com/edtrt/edtrt/pkg/types"
)

// MessageKind names the policy-message types exchanged between PDs.
type MessageKind string

const (
	MsgSchedGetWork MessageKind = "SCHED_GET_WORK"
	MsgSchedNotify  MessageKind = "SCHED_NOTIFY"
	MsgSchedTransact MessageKind = "SCHED_TRANSACT"
	MsgSchedAnalyze MessageKind = "SCHED_ANALYZE"
	MsgHintSet      MessageKind = "HINT_SET"
	MsgHintGet      MessageKind = "HINT_GET"
	MsgWorkCreate   MessageKind = "WORK_CREATE"
	MsgWorkDestroy  MessageKind = "WORK_DESTROY"
	MsgDbCreate     MessageKind = "DB_CREATE"
	MsgDbAcquire    MessageKind = "DB_ACQUIRE"
	MsgDbRelease    MessageKind = "DB_RELEASE"
	MsgDbFree       MessageKind = "DB_FREE"
)

// Message is one policy message: it carries a source and
// destination location, a request/response flag, and a message-id used by
// the CE heuristic to pair replies.
type Message struct {
	ID       uint64
	Src      types.PDLocation
	Dest     types.PDLocation
	Kind     MessageKind
	Request  bool
	Payload  any
}

// Handler processes an inbound Message and returns the response to send
// back (the zero Message if the kind expects no reply).
type Handler func(ctx context.Context, msg Message) (Message, error)

// Transport sends a Message to its Dest and returns the reply, or an error
// from pkg/schederr (ErrTransientSend, ErrPermanentSend, ErrBadLocation).
type Transport interface {
	Send(ctx context.Context, msg Message) (Message, error)
	RegisterHandler(loc types.PDLocation, h Handler)
}

// ErrUnregisteredLocation is returned by Mock.Send when Dest has no
// registered handler.
var ErrUnregisteredLocation = fmt.Errorf("transport: no handler registered for location")
