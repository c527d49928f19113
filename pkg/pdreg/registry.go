package pdreg

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/edtrt/edtrt/pkg/log"
	"github.com/edtrt/edtrt/pkg/storage"
	"github.com/edtrt/edtrt/pkg/types"
	"github.com/hashicorp/raft"
	raftboltdb "github.com/hashicorp/raft-boltdb"
)

// Registry is the Raft-backed PD roster: every PD that has ever joined the
// cluster, plus the single elected schedulerLocation the ST heuristic
// centralises its placement analysis on. One Registry instance runs per PD;
// only the Raft leader's writes (Join/Leave/ElectSchedulerLocation) commit.
type Registry struct {
	location types.PDLocation
	bindAddr string
	dataDir  string

	raft  *raft.Raft
	fsm   *registryFSM
	store storage.Store
}

// Config configures a new Registry.
type Config struct {
	Location types.PDLocation
	BindAddr string
	DataDir  string
}

// NewRegistry builds a Registry backed by a fresh bbolt store under
// cfg.DataDir: create the data dir, open the store, build the FSM, and
// defer Raft wiring to Bootstrap/Join.
func NewRegistry(cfg Config) (*Registry, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	store, err := storage.NewBoltStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	return &Registry{
		location: cfg.Location,
		bindAddr: cfg.BindAddr,
		dataDir:  cfg.DataDir,
		fsm:      newRegistryFSM(store),
		store:    store,
	}, nil
}

func (r *Registry) raftConfig() (*raft.Config, error) {
	config := raft.DefaultConfig()
	config.LocalID = raft.ServerID(r.location)
	// Tuned for LAN-local PD clusters rather than Raft's WAN-conservative
	// defaults, favoring faster failover over tolerance of high-latency links.
	config.HeartbeatTimeout = 500 * time.Millisecond
	config.ElectionTimeout = 500 * time.Millisecond
	config.LeaderLeaseTimeout = 250 * time.Millisecond
	return config, nil
}

func (r *Registry) newRaft() (*raft.Raft, *raft.NetworkTransport, error) {
	config, err := r.raftConfig()
	if err != nil {
		return nil, nil, err
	}

	addr, err := net.ResolveTCPAddr("tcp", r.bindAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve bind address: %w", err)
	}
	transport, err := raft.NewTCPTransport(r.bindAddr, addr, 3, 10*time.Second, os.Stderr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create transport: %w", err)
	}
	snapshotStore, err := raft.NewFileSnapshotStore(r.dataDir, 2, os.Stderr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create snapshot store: %w", err)
	}
	logStore, err := raftboltdb.NewBoltStore(filepath.Join(r.dataDir, "raft-log.db"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create log store: %w", err)
	}
	stableStore, err := raftboltdb.NewBoltStore(filepath.Join(r.dataDir, "raft-stable.db"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create stable store: %w", err)
	}

	rft, err := raft.NewRaft(config, r.fsm, logStore, stableStore, snapshotStore, transport)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create raft: %w", err)
	}
	return rft, transport, nil
}

// Bootstrap starts a new single-PD cluster, electing this PD as
// schedulerLocation since it is, by construction, the only candidate.
func (r *Registry) Bootstrap() error {
	rft, transport, err := r.newRaft()
	if err != nil {
		return err
	}
	r.raft = rft

	configuration := raft.Configuration{
		Servers: []raft.Server{{ID: raft.ServerID(r.location), Address: transport.LocalAddr()}},
	}
	if err := r.raft.BootstrapCluster(configuration).Error(); err != nil {
		return fmt.Errorf("failed to bootstrap cluster: %w", err)
	}

	return r.ElectSchedulerLocation(r.location)
}

// Join starts this PD's own Raft instance so it can be added to an existing
// cluster. It does not contact the leader: the leader must call AddVoter
// for this PD, after which the Raft TCP transport handles log replication.
func (r *Registry) Join() error {
	rft, _, err := r.newRaft()
	if err != nil {
		return err
	}
	r.raft = rft
	return nil
}

// AddVoter adds a newly-joining PD to the Raft configuration; only the
// leader's call commits.
func (r *Registry) AddVoter(loc types.PDLocation, addr string) error {
	if r.raft == nil {
		return fmt.Errorf("raft not initialized")
	}
	if !r.IsLeader() {
		return fmt.Errorf("not the leader, current leader: %s", r.LeaderAddr())
	}
	future := r.raft.AddVoter(raft.ServerID(loc), raft.ServerAddress(addr), 0, 10*time.Second)
	return future.Error()
}

// IsLeader reports whether this Registry instance is the current Raft leader.
func (r *Registry) IsLeader() bool {
	return r.raft != nil && r.raft.State() == raft.Leader
}

// LeaderAddr returns the Raft-reported address of the current leader.
func (r *Registry) LeaderAddr() string {
	if r.raft == nil {
		return ""
	}
	return string(r.raft.Leader())
}

func (r *Registry) apply(op string, data any) error {
	if r.raft == nil {
		return fmt.Errorf("raft not initialized")
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal command: %w", err)
	}
	cmd := Command{Op: op, Data: payload}
	raw, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	future := r.raft.Apply(raw, 5*time.Second)
	if err := future.Error(); err != nil {
		return fmt.Errorf("failed to apply command: %w", err)
	}
	if resp := future.Response(); resp != nil {
		if err, ok := resp.(error); ok && err != nil {
			return err
		}
	}
	return nil
}

// JoinPD records a new PD in the roster.
func (r *Registry) JoinPD(pd storage.PDRecord) error {
	if err := r.apply("join_pd", pd); err != nil {
		return err
	}
	log.Info(fmt.Sprintf("pd joined: %s (%s)", pd.Location, pd.BindAddr))
	return nil
}

// LeavePD removes a PD from the roster.
func (r *Registry) LeavePD(loc types.PDLocation) error {
	return r.apply("leave_pd", loc)
}

// ElectSchedulerLocation designates loc as the ST heuristic's single
// analysis node. this module never specifies the election mechanism
// itself; this registry reuses the same Raft log every other roster change
// commits through, so the designation is linearizable with PD joins/leaves.
func (r *Registry) ElectSchedulerLocation(loc types.PDLocation) error {
	return r.apply("set_scheduler_location", loc)
}

// SchedulerLocation reads the current schedulerLocation from local storage
// (a committed, replicated value — safe to read without going through Raft).
func (r *Registry) SchedulerLocation() (types.PDLocation, error) {
	return r.store.GetSchedulerLocation()
}

// ListPDs returns the current roster.
func (r *Registry) ListPDs() ([]*storage.PDRecord, error) {
	return r.store.ListPDs()
}

// Heartbeat records that loc was just observed alive. Unlike JoinPD/LeavePD
// this bypasses Raft entirely — liveness is local gossip, not roster truth,
// and every PD's copy of it is allowed to be stale by one reconcile tick.
func (r *Registry) Heartbeat(loc types.PDLocation, now int64) error {
	pd, err := r.store.GetPD(loc)
	if err != nil {
		return err
	}
	pd.LastHeartbeat = now
	pd.Down = false
	return r.store.UpdatePD(pd)
}

// MarkDown records loc as down without removing it from the roster; a
// later heartbeat clears the flag automatically.
func (r *Registry) MarkDown(loc types.PDLocation) error {
	pd, err := r.store.GetPD(loc)
	if err != nil {
		return err
	}
	if pd.Down {
		return nil
	}
	pd.Down = true
	return r.store.UpdatePD(pd)
}

// Shutdown releases the Raft instance and the underlying store.
func (r *Registry) Shutdown() error {
	if r.raft != nil {
		if err := r.raft.Shutdown().Error(); err != nil {
			return fmt.Errorf("failed to shutdown raft: %w", err)
		}
	}
	return r.store.Close()
}
