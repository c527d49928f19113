package scheduler

import (
	"context"

	"github.com/edtrt/edtrt/pkg/container"
	"github.com/edtrt/edtrt/pkg/schederr"
	"github.com/edtrt/edtrt/pkg/transport"
	"github.com/edtrt/edtrt/pkg/types"
)

// HandleMessage is this PD's transport.Handler: it decodes an inbound
// Message and calls straight into the owning heuristic's typed methods,
// per st.go's own comment that analyze is "handled by the transport handler
// calling the typed methods above directly" rather than through the generic
// Heuristic.Analyze/Transact (which only ever see local calls and return
// ErrNotSupported for st and ce).
func (f *Facade) HandleMessage(ctx context.Context, msg transport.Message) (transport.Message, error) {
	switch msg.Kind {
	case transport.MsgSchedAnalyze:
		return f.handleAnalyze(ctx, msg)
	case transport.MsgSchedTransact:
		return f.handleTransact(ctx, msg)
	case transport.MsgSchedGetWork:
		return f.handleGetWork(msg)
	default:
		return transport.Message{}, schederr.ErrNotSupported
	}
}

func (f *Facade) handleAnalyze(ctx context.Context, msg transport.Message) (transport.Message, error) {
	h, ok := f.heuristics[ST]
	if !ok {
		return transport.Message{}, schederr.ErrNotSupported
	}
	st := h.(*STHeuristic)

	switch payload := msg.Payload.(type) {
	case types.Edt:
		space, time, err := st.placeLocally(payload)
		if err != nil {
			return transport.Message{}, err
		}
		resp := placementResponse{space: space, time: time}
		return transport.Message{Src: msg.Dest, Dest: msg.Src, Kind: msg.Kind, Payload: resp}, nil
	case types.Db:
		if err := st.DbAtScheduler(payload); err != nil {
			return transport.Message{}, err
		}
		return transport.Message{Src: msg.Dest, Dest: msg.Src, Kind: msg.Kind}, nil
	case types.GUID:
		if err := st.DbDoneAtScheduler(payload); err != nil {
			return transport.Message{}, err
		}
		return transport.Message{Src: msg.Dest, Dest: msg.Src, Kind: msg.Kind}, nil
	default:
		return transport.Message{}, schederr.ErrInvalidArgument
	}
}

func (f *Facade) handleTransact(_ context.Context, msg transport.Message) (transport.Message, error) {
	h, ok := f.heuristics[ST]
	if !ok {
		return transport.Message{}, schederr.ErrNotSupported
	}
	st := h.(*STHeuristic)

	buf, ok := msg.Payload.([]byte)
	if !ok {
		return transport.Message{}, schederr.ErrInvalidArgument
	}
	db, _, err := container.UnmarshallDb(buf)
	if err != nil {
		return transport.Message{}, err
	}
	if err := st.DbMoveDst(db); err != nil {
		return transport.Message{}, err
	}
	return transport.Message{Src: msg.Dest, Dest: msg.Src, Kind: msg.Kind}, nil
}

func (f *Facade) handleGetWork(msg transport.Message) (transport.Message, error) {
	h, ok := f.heuristics[CE]
	if !ok {
		return transport.Message{}, schederr.ErrNotSupported
	}
	ce := h.(*CEHeuristic)

	edt, err := ce.ServeWorkRequest(msg.Src)
	if err != nil && err != schederr.ErrNotFound {
		return transport.Message{}, err
	}
	return transport.Message{Src: msg.Dest, Dest: msg.Src, Kind: msg.Kind, Payload: edt}, nil
}
