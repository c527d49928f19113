package storage

import "github.com/edtrt/edtrt/pkg/types"

// Store persists the state a restarting PD needs to rejoin the cluster
// without re-deriving it: the PD roster, the schedulerLocation designation,
// and the DB directory (metadata only — payload storage is an explicit
// non-goal). It is never on the hot path of get_work/notify;
// the in-memory container.PdSpace tree is authoritative while a PD is up.
type Store interface {
	// PD roster.
	CreatePD(pd *PDRecord) error
	GetPD(loc types.PDLocation) (*PDRecord, error)
	ListPDs() ([]*PDRecord, error)
	UpdatePD(pd *PDRecord) error
	DeletePD(loc types.PDLocation) error

	// SchedulerLocation is the ST heuristic's single elected analysis node.
	SetSchedulerLocation(loc types.PDLocation) error
	GetSchedulerLocation() (types.PDLocation, error)

	// DB directory: metadata only, keyed by GUID.
	PutDb(db *types.Db) error
	GetDb(guid types.GUID) (*types.Db, error)
	ListDbs() ([]*types.Db, error)
	DeleteDb(guid types.GUID) error

	Close() error
}

// PDRecord is the roster entry persisted for one PD.
type PDRecord struct {
	Location   types.PDLocation
	BindAddr   string
	NumWorkers int
	MasterID   int // scheduler.HeuristicID, stored as int to avoid an import cycle
	JoinedAt   int64

	// LastHeartbeat and Down are liveness bookkeeping maintained locally by
	// each PD's own reconciler, not replicated through Raft: every PD's view
	// of who else is alive can lag briefly without threatening roster
	// consistency, so it is cheaper to let it be eventually-consistent gossip
	// rather than pay a log entry per heartbeat.
	LastHeartbeat int64
	Down          bool
}
