package pdreg

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/edtrt/edtrt/pkg/storage"
	"github.com/edtrt/edtrt/pkg/types"
	"github.com/hashicorp/raft"
)

// registryFSM applies committed roster/schedulerLocation changes to a
// storage.Store over a small command set: a PD joining or leaving, and a
// schedulerLocation handoff.
type registryFSM struct {
	mu    sync.RWMutex
	store storage.Store
}

func newRegistryFSM(store storage.Store) *registryFSM {
	return &registryFSM{store: store}
}

// Command is one Raft log entry.
type Command struct {
	Op   string          `json:"op"`
	Data json.RawMessage `json:"data"`
}

func (f *registryFSM) Apply(log *raft.Log) interface{} {
	var cmd Command
	if err := json.Unmarshal(log.Data, &cmd); err != nil {
		return fmt.Errorf("failed to unmarshal command: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch cmd.Op {
	case "join_pd":
		var pd storage.PDRecord
		if err := json.Unmarshal(cmd.Data, &pd); err != nil {
			return err
		}
		return f.store.CreatePD(&pd)

	case "leave_pd":
		var loc types.PDLocation
		if err := json.Unmarshal(cmd.Data, &loc); err != nil {
			return err
		}
		return f.store.DeletePD(loc)

	case "set_scheduler_location":
		var loc types.PDLocation
		if err := json.Unmarshal(cmd.Data, &loc); err != nil {
			return err
		}
		return f.store.SetSchedulerLocation(loc)

	default:
		return fmt.Errorf("unknown command: %s", cmd.Op)
	}
}

func (f *registryFSM) Snapshot() (raft.FSMSnapshot, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	pds, err := f.store.ListPDs()
	if err != nil {
		return nil, fmt.Errorf("failed to list pds: %w", err)
	}
	loc, err := f.store.GetSchedulerLocation()
	if err != nil {
		loc = "" // no scheduler elected yet; not fatal to a snapshot
	}

	return &registrySnapshot{PDs: pds, SchedulerLocation: loc}, nil
}

func (f *registryFSM) Restore(rc io.ReadCloser) error {
	defer rc.Close()

	var snap registrySnapshot
	if err := json.NewDecoder(rc).Decode(&snap); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, pd := range snap.PDs {
		if err := f.store.CreatePD(pd); err != nil {
			return fmt.Errorf("failed to restore pd: %w", err)
		}
	}
	if snap.SchedulerLocation != "" {
		if err := f.store.SetSchedulerLocation(snap.SchedulerLocation); err != nil {
			return fmt.Errorf("failed to restore scheduler location: %w", err)
		}
	}
	return nil
}

type registrySnapshot struct {
	PDs               []*storage.PDRecord
	SchedulerLocation types.PDLocation
}

func (s *registrySnapshot) Persist(sink raft.SnapshotSink) error {
	err := func() error {
		if err := json.NewEncoder(sink).Encode(s); err != nil {
			return err
		}
		return sink.Close()
	}()
	if err != nil {
		sink.Cancel()
	}
	return err
}

func (s *registrySnapshot) Release() {}
