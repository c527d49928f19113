// Package pdtest is an in-process multi-PD test harness: it wires several
// container.PdSpace/scheduler.Facade pairs together over one shared
// transport.Mock, the way a real deployment wires them over a network
// transport. It exists to exercise the cross-PD paths no single-process
// edtrtd ever drives on its own — ST placement requests answered by a
// remote scheduler node, CE work requests climbing to a parent or round-
// robining to a neighbour, db-move's transact round trip — without
// spawning real processes or VMs.
package pdtest

import (
	"github.com/edtrt/edtrt/pkg/container"
	"github.com/edtrt/edtrt/pkg/scheduler"
	"github.com/edtrt/edtrt/pkg/transport"
	"github.com/edtrt/edtrt/pkg/types"
)

// PDConfig describes one simulated PD.
type PDConfig struct {
	Location   types.PDLocation
	NumWorkers int

	// Heuristic is the master heuristic this PD's facade dispatches
	// get_work to by default; every PD also gets a plain hc heuristic
	// registered alongside it, same as cmd/edtrtd's buildFacade.
	Heuristic scheduler.HeuristicID

	// CE topology: Parent/HasParent and Children are only consulted when
	// Heuristic == scheduler.CE.
	Parent    types.PDLocation
	HasParent bool
	Children  []types.PDLocation

	// Neighbours feeds ce.go's round-robin peer list when Heuristic == CE,
	// and st.go's neighbourCount (its single-PD short-circuit threshold)
	// when Heuristic == ST.
	Neighbours []types.PDLocation

	// ST topology: SchedulerLocation names which PD in the cluster runs
	// the centralised placement analysis; IsScheduler is derived by
	// Cluster.Start rather than set here, so a ClusterConfig only has to
	// name the scheduler once.
	SchedulerLocation types.PDLocation
}

// ClusterConfig is the full simulated cluster.
type ClusterConfig struct {
	PDs []PDConfig
}

// PD is one running simulated policy domain.
type PD struct {
	Location types.PDLocation
	Space    *container.PdSpace
	Facade   *scheduler.Facade

	st *scheduler.STHeuristic
	ce *scheduler.CEHeuristic
}

// ST returns this PD's ST heuristic instance, or nil if it wasn't
// configured with one — tests driving ST-specific assertions (timeline
// state, trylock behavior) need the concrete type, not just the facade.
func (p *PD) ST() *scheduler.STHeuristic { return p.st }

// CE returns this PD's CE heuristic instance, or nil if it wasn't
// configured with one.
func (p *PD) CE() *scheduler.CEHeuristic { return p.ce }

// Cluster is a set of simulated PDs sharing one transport.Mock.
type Cluster struct {
	Config    ClusterConfig
	Transport *transport.Mock

	pds map[types.PDLocation]*PD
}
