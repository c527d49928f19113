package pdtest

import (
	"context"
	"testing"
	"time"

	"github.com/edtrt/edtrt/pkg/schederr"
	"github.com/edtrt/edtrt/pkg/scheduler"
	"github.com/edtrt/edtrt/pkg/transport"
	"github.com/edtrt/edtrt/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClusterStartRegistersHandlers(t *testing.T) {
	c := NewCluster(ClusterConfig{
		PDs: []PDConfig{
			{Location: "pd-a", NumWorkers: 2, Heuristic: scheduler.HC},
			{Location: "pd-b", NumWorkers: 2, Heuristic: scheduler.HC},
		},
	})
	require.NoError(t, c.Start())
	assert.Len(t, c.All(), 2)
	assert.NotNil(t, c.Get("pd-a"))
	assert.NotNil(t, c.Get("pd-b"))
	assert.Nil(t, c.Get("pd-missing"))
}

func TestClusterStartRejectsDuplicateLocation(t *testing.T) {
	c := NewCluster(ClusterConfig{
		PDs: []PDConfig{
			{Location: "pd-a", Heuristic: scheduler.HC},
			{Location: "pd-a", Heuristic: scheduler.HC},
		},
	})
	err := c.Start()
	assert.Error(t, err)
}

func TestClusterSTPlacementRequestReachesSchedulerNode(t *testing.T) {
	c := NewCluster(ClusterConfig{
		PDs: []PDConfig{
			{Location: "scheduler", NumWorkers: 2, Heuristic: scheduler.ST, SchedulerLocation: "scheduler", Neighbours: []types.PDLocation{"worker"}},
			{Location: "worker", NumWorkers: 2, Heuristic: scheduler.ST, SchedulerLocation: "scheduler", Neighbours: []types.PDLocation{"scheduler"}},
		},
	})
	require.NoError(t, c.Start())

	schedPD := c.Get("scheduler")
	workerPD := c.Get("worker")
	require.NotNil(t, schedPD.ST())
	require.NotNil(t, workerPD.ST())

	db := types.Db{GUID: types.GUID("shared-db"), Size: 64, HomePD: "scheduler", Mode: types.AccessModeRO}
	schedPD.Space.DbSpaceFor(db.GUID, func() types.Db { return db })

	edt := types.Edt{
		GUID: types.NewGUID(),
		DepV: []types.DepSlot{{DB: db.GUID, Mode: types.AccessModeRO}},
	}

	// worker is not the scheduler node, so RequestPlacement sends an
	// analyze(request) over the shared Mock transport and scheduler resolves
	// it against its own, fully-seeded DbSpace.
	space, _, err := workerPD.ST().RequestPlacement(context.Background(), edt)
	require.NoError(t, err)
	assert.NotEmpty(t, space)
}

func TestClusterKillMakesDestinationUnreachable(t *testing.T) {
	c := NewCluster(ClusterConfig{
		PDs: []PDConfig{
			{Location: "pd-a", Heuristic: scheduler.HC},
			{Location: "pd-b", Heuristic: scheduler.HC},
		},
	})
	require.NoError(t, c.Start())

	msg := transport.Message{Src: "pd-a", Dest: "pd-b", Kind: transport.MsgSchedGetWork}

	// pd-b only has hc registered (no ce), so a get-work message it actually
	// receives resolves to ErrNotSupported, not a transport failure — the
	// only way to distinguish "unreachable" from "reachable but unsupported"
	// is the send error kind, not whether Send errors at all.
	c.Kill("pd-b")
	_, err := c.Transport.Send(context.Background(), msg)
	assert.ErrorIs(t, err, schederr.ErrPermanentSend)

	c.Revive("pd-b")
	_, err = c.Transport.Send(context.Background(), msg)
	assert.NotErrorIs(t, err, schederr.ErrPermanentSend)
}

func TestWaitForTimesOutWhenConditionNeverTrue(t *testing.T) {
	err := WaitFor(context.Background(), 50*time.Millisecond, 10*time.Millisecond, "never", func() bool { return false })
	assert.Error(t, err)
}

func TestWaitForSucceedsImmediately(t *testing.T) {
	err := WaitFor(context.Background(), time.Second, 10*time.Millisecond, "always", func() bool { return true })
	assert.NoError(t, err)
}

func TestSeedWorkerPushesOntoWorkerDeque(t *testing.T) {
	c := NewCluster(ClusterConfig{
		PDs: []PDConfig{{Location: "pd-a", NumWorkers: 2, Heuristic: scheduler.HC}},
	})
	require.NoError(t, c.Start())

	pd := c.Get("pd-a")
	edt := NewEdt()
	require.NoError(t, pd.SeedWorker(0, edt))

	got, err := pd.Facade.GetWork(0)
	require.NoError(t, err)
	assert.Equal(t, edt.GUID, got.GUID)
}

func TestSeedWorkerRejectsOutOfRangeWorker(t *testing.T) {
	c := NewCluster(ClusterConfig{
		PDs: []PDConfig{{Location: "pd-a", NumWorkers: 1, Heuristic: scheduler.HC}},
	})
	require.NoError(t, c.Start())

	err := c.Get("pd-a").SeedWorker(5, NewEdt())
	assert.Error(t, err)
}
