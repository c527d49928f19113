package pdtest

import (
	"fmt"

	"github.com/edtrt/edtrt/pkg/container"
	"github.com/edtrt/edtrt/pkg/scheduler"
	"github.com/edtrt/edtrt/pkg/transport"
	"github.com/edtrt/edtrt/pkg/types"
)

// NewCluster builds an unstarted cluster from config. Call Start to wire
// every PD's facade and register its handler on the shared transport.
func NewCluster(config ClusterConfig) *Cluster {
	return &Cluster{
		Config:    config,
		Transport: transport.NewMock(),
		pds:       make(map[types.PDLocation]*PD),
	}
}

// Start builds every configured PD's container.PdSpace and scheduler.Facade,
// registers its master heuristic (plus a baseline hc heuristic, matching
// cmd/edtrtd's buildFacade), and registers the facade's HandleMessage on the
// shared transport so cross-PD Analyze/Transact/GetWork traffic actually
// reaches a handler instead of failing with ErrUnregisteredLocation.
func (c *Cluster) Start() error {
	for _, cfg := range c.Config.PDs {
		if cfg.Location == "" {
			return fmt.Errorf("pdtest: PDConfig.Location must not be empty")
		}
		if _, exists := c.pds[cfg.Location]; exists {
			return fmt.Errorf("pdtest: duplicate PD location %q", cfg.Location)
		}

		numWorkers := cfg.NumWorkers
		if numWorkers <= 0 {
			numWorkers = 2
		}
		space := container.NewPdSpace(cfg.Location, numWorkers, cfg.Heuristic == scheduler.HCCommDelegate)
		facade := scheduler.NewFacade(cfg.Location, space, cfg.Heuristic)
		facade.Register(scheduler.NewHCHeuristic(space))

		pd := &PD{Location: cfg.Location, Space: space, Facade: facade}

		switch cfg.Heuristic {
		case scheduler.ST:
			isScheduler := cfg.SchedulerLocation == cfg.Location
			pd.st = scheduler.NewSTHeuristic(space, cfg.Location, cfg.SchedulerLocation, isScheduler, len(cfg.Neighbours), nil, c.Transport)
			facade.Register(pd.st)
		case scheduler.CE:
			pd.ce = scheduler.NewCEHeuristic(cfg.Location, cfg.Parent, cfg.HasParent, cfg.Children, cfg.Neighbours, c.Transport)
			facade.Register(pd.ce)
		case scheduler.HCCommDelegate:
			facade.Register(scheduler.NewHCCommDelegateHeuristic(numWorkers, 0, false))
		case scheduler.Static:
			facade.Register(scheduler.NewStaticHeuristic(space, numWorkers, nil))
		case scheduler.Priority:
			facade.Register(scheduler.NewPriorityHeuristic())
		case scheduler.PlacementAffinity:
			facade.Register(scheduler.NewPlacementAffinityHeuristic(cfg.Location, nil))
		}

		c.Transport.RegisterHandler(cfg.Location, facade.HandleMessage)
		c.pds[cfg.Location] = pd
	}
	return nil
}

// Stop unregisters every PD's handler from the shared transport. A stopped
// cluster's PDs are still reachable via Get for post-mortem assertions; only
// further cross-PD messages start failing.
func (c *Cluster) Stop() {
	for loc := range c.pds {
		c.Transport.Unregister(loc)
	}
}

// Get returns the simulated PD at loc, or nil if none was configured.
func (c *Cluster) Get(loc types.PDLocation) *PD {
	return c.pds[loc]
}

// All returns every simulated PD, in no particular order.
func (c *Cluster) All() []*PD {
	pds := make([]*PD, 0, len(c.pds))
	for _, pd := range c.pds {
		pds = append(pds, pd)
	}
	return pds
}

// Kill simulates loc going unreachable: every Send targeting it now fails
// permanently, matching a location-dead send outcome,
// without actually tearing down its PdSpace/Facade state — tests can still
// inspect what it held at the moment of failure.
func (c *Cluster) Kill(loc types.PDLocation) {
	c.Transport.MarkDead(loc)
}

// Revive undoes a prior Kill.
func (c *Cluster) Revive(loc types.PDLocation) {
	c.Transport.Revive(loc)
}
