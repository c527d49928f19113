package scheduler

import (
	"context"
	"testing"

	"github.com/edtrt/edtrt/pkg/container"
	"github.com/edtrt/edtrt/pkg/schederr"
	"github.com/edtrt/edtrt/pkg/transport"
	"github.com/edtrt/edtrt/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHandleMessageAnalyzeRoutesToSchedulerST verifies wire.go's dispatch
// for an inbound placement request: a worker PD sends MsgSchedAnalyze
// carrying an Edt, and the scheduler-node facade answers with a
// placementResponse rather than ErrNotSupported.
func TestHandleMessageAnalyzeRoutesToSchedulerST(t *testing.T) {
	pd := container.NewPdSpace(types.PDLocation("scheduler"), 2, false)
	facade := NewFacade(types.PDLocation("scheduler"), pd, ST)
	st := NewSTHeuristic(pd, types.PDLocation("scheduler"), types.PDLocation("scheduler"), true, 0, nil, transport.NewMock())
	facade.Register(st)

	db := types.Db{GUID: types.GUID("db-x"), Size: 10, HomePD: types.PDLocation("scheduler"), Mode: types.AccessModeRO}
	pd.DbSpaceFor(db.GUID, func() types.Db { return db })

	edt := types.Edt{
		GUID:  types.NewGUID(),
		DepV:  []types.DepSlot{{DB: db.GUID, Mode: types.AccessModeRO}},
		State: types.EdtCreated,
	}
	msg := transport.Message{Src: types.PDLocation("worker"), Dest: types.PDLocation("scheduler"), Kind: transport.MsgSchedAnalyze, Payload: edt}

	resp, err := facade.HandleMessage(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, transport.MsgSchedAnalyze, resp.Kind)
	assert.Equal(t, types.PDLocation("worker"), resp.Dest)
	assert.IsType(t, placementResponse{}, resp.Payload)
}

func TestHandleMessageAnalyzeDbAtScheduler(t *testing.T) {
	pd := container.NewPdSpace(types.PDLocation("scheduler"), 2, false)
	facade := NewFacade(types.PDLocation("scheduler"), pd, ST)
	st := NewSTHeuristic(pd, types.PDLocation("scheduler"), types.PDLocation("scheduler"), true, 0, nil, transport.NewMock())
	facade.Register(st)

	db := types.Db{GUID: types.GUID("db-new"), Size: 42, HomePD: types.PDLocation("origin"), Mode: types.AccessModeRW}
	msg := transport.Message{Src: types.PDLocation("origin"), Dest: types.PDLocation("scheduler"), Kind: transport.MsgSchedAnalyze, Payload: db}

	resp, err := facade.HandleMessage(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, transport.MsgSchedAnalyze, resp.Kind)
}

func TestHandleMessageAnalyzeWithoutSTRegistered(t *testing.T) {
	pd := container.NewPdSpace(types.PDLocation("pd-a"), 2, false)
	facade := NewFacade(types.PDLocation("pd-a"), pd, HC)
	facade.Register(NewHCHeuristic(pd))

	msg := transport.Message{Src: "x", Dest: "pd-a", Kind: transport.MsgSchedAnalyze, Payload: types.Edt{}}
	_, err := facade.HandleMessage(context.Background(), msg)
	assert.ErrorIs(t, err, schederr.ErrNotSupported)
}

func TestHandleMessageAnalyzeInvalidPayload(t *testing.T) {
	pd := container.NewPdSpace(types.PDLocation("scheduler"), 2, false)
	facade := NewFacade(types.PDLocation("scheduler"), pd, ST)
	facade.Register(NewSTHeuristic(pd, "scheduler", "scheduler", true, 0, nil, transport.NewMock()))

	msg := transport.Message{Src: "x", Dest: "scheduler", Kind: transport.MsgSchedAnalyze, Payload: "not a valid payload"}
	_, err := facade.HandleMessage(context.Background(), msg)
	assert.ErrorIs(t, err, schederr.ErrInvalidArgument)
}

func TestHandleMessageTransactDecodesDbAndCallsMoveDst(t *testing.T) {
	pd := container.NewPdSpace(types.PDLocation("pd-dst"), 2, false)
	facade := NewFacade(types.PDLocation("pd-dst"), pd, ST)
	facade.Register(NewSTHeuristic(pd, "pd-dst", "scheduler", false, 0, nil, transport.NewMock()))

	db := types.Db{GUID: types.GUID("db-move"), Size: 128, HomePD: types.PDLocation("pd-dst"), Mode: types.AccessModeRW}

	src := container.NewDbSpace(db)
	sz, serr := src.MarshallSize()
	require.NoError(t, serr)
	buf := make([]byte, sz)
	_, merr := src.Marshall(buf)
	require.NoError(t, merr)

	msg := transport.Message{Src: "pd-src", Dest: "pd-dst", Kind: transport.MsgSchedTransact, Payload: buf}
	resp, err := facade.HandleMessage(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, transport.MsgSchedTransact, resp.Kind)
}

func TestHandleMessageGetWorkServesFromCE(t *testing.T) {
	pd := container.NewPdSpace(types.PDLocation("ce-a"), 2, false)
	facade := NewFacade(types.PDLocation("ce-a"), pd, CE)
	ce := NewCEHeuristic(types.PDLocation("ce-a"), "", false, []types.PDLocation{"xe-1"}, nil, transport.NewMock())
	facade.Register(ce)

	edt, err := ce.GetWork(0)
	assert.Nil(t, edt)
	assert.ErrorIs(t, err, schederr.ErrNotFound)

	msg := transport.Message{Src: "neighbour", Dest: "ce-a", Kind: transport.MsgSchedGetWork}
	resp, herr := facade.HandleMessage(context.Background(), msg)
	require.NoError(t, herr)
	assert.Equal(t, transport.MsgSchedGetWork, resp.Kind)
	assert.Nil(t, resp.Payload)
}

func TestHandleMessageUnsupportedKind(t *testing.T) {
	pd := container.NewPdSpace(types.PDLocation("pd-a"), 2, false)
	facade := NewFacade(types.PDLocation("pd-a"), pd, HC)
	facade.Register(NewHCHeuristic(pd))

	msg := transport.Message{Kind: transport.MsgWorkCreate}
	_, err := facade.HandleMessage(context.Background(), msg)
	assert.ErrorIs(t, err, schederr.ErrNotSupported)
}
