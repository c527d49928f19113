package reconciler

import (
	"context"
	"sync"
	"time"

	"github.com/edtrt/edtrt/pkg/container"
	"github.com/edtrt/edtrt/pkg/events"
	"github.com/edtrt/edtrt/pkg/log"
	"github.com/edtrt/edtrt/pkg/metrics"
	"github.com/edtrt/edtrt/pkg/pdreg"
	"github.com/edtrt/edtrt/pkg/scheduler"
	"github.com/edtrt/edtrt/pkg/types"
	"github.com/rs/zerolog"
)

// livenessTimeout is how long a PD can go without a heartbeat before the
// reconciler marks it down.
const livenessTimeout = 30 * time.Second

// Reconciler runs the two background sweeps the scheduling core depends on
// but never drives itself: PD liveness (so a dead neighbour stops being
// offered placements or steal targets) and, on whichever PD is currently
// schedulerLocation, ST timeline follow-through (so a window whose EDTs have
// all reported done actually shifts once nothing else triggers it).
type Reconciler struct {
	registry *pdreg.Registry
	pd       *container.PdSpace
	st       *scheduler.STHeuristic // nil unless this PD runs the ST heuristic
	broker   *events.Broker
	logger   zerolog.Logger

	mu     sync.Mutex
	stopCh chan struct{}
}

// New builds a Reconciler. st may be nil when this PD's EDTs run under a
// heuristic other than ST, in which case timeline follow-through is skipped.
func New(registry *pdreg.Registry, pd *container.PdSpace, st *scheduler.STHeuristic, broker *events.Broker) *Reconciler {
	return &Reconciler{
		registry: registry,
		pd:       pd,
		st:       st,
		broker:   broker,
		logger:   log.WithComponent("reconciler"),
		stopCh:   make(chan struct{}),
	}
}

// Start begins the reconciliation loop.
func (r *Reconciler) Start() {
	go r.run()
}

// Stop stops the reconciler.
func (r *Reconciler) Stop() {
	close(r.stopCh)
}

func (r *Reconciler) run() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	r.logger.Info().Msg("reconciler started")

	for {
		select {
		case <-ticker.C:
			r.reconcile()
		case <-r.stopCh:
			r.logger.Info().Msg("reconciler stopped")
			return
		}
	}
}

func (r *Reconciler) reconcile() {
	timer := metrics.NewTimer()
	defer func() {
		timer.ObserveDuration(metrics.ReconciliationDuration)
		metrics.ReconciliationCyclesTotal.Inc()
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.reconcilePDLiveness()
	r.reconcileTimelines()
}

// reconcilePDLiveness marks PDs down once their last recorded heartbeat is
// older than livenessTimeout. Marking down never removes a PD from the
// roster — a later heartbeat clears the flag on its own.
func (r *Reconciler) reconcilePDLiveness() {
	pds, err := r.registry.ListPDs()
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to list pds")
		return
	}

	now := time.Now()
	for _, pd := range pds {
		if pd.Down {
			continue
		}
		lastSeen := time.Unix(pd.LastHeartbeat, 0)
		if now.Sub(lastSeen) <= livenessTimeout {
			continue
		}

		r.logger.Warn().
			Str("pd", string(pd.Location)).
			Dur("no_heartbeat_duration", now.Sub(lastSeen)).
			Msg("pd is down, marking down")

		if err := r.registry.MarkDown(pd.Location); err != nil {
			r.logger.Error().Err(err).Str("pd", string(pd.Location)).Msg("failed to mark pd down")
			continue
		}
		metrics.PDsMarkedDownTotal.Inc()
		if r.broker != nil {
			r.broker.Publish(&events.Event{
				Type:    events.EventPDDown,
				Message: "pd marked down on liveness timeout",
				Metadata: map[string]string{
					"pd": string(pd.Location),
				},
			})
		}
	}
}

// reconcileTimelines sweeps every DbSpace this PD holds as schedulerLocation
// for a head window that has gone schedulerDone but never shifted — the
// ordinary path is db-done-at-scheduler triggering db-time-shift-at-scheduler
// directly, but a PD that failed over into schedulerLocation mid-timeline
// needs this sweep to pick windows back up.
func (r *Reconciler) reconcileTimelines() {
	if r.st == nil || !r.st.IsSchedulerLocation() {
		return
	}

	ctx := context.Background()
	r.pd.RangeDbSpaces(func(_ types.GUID, ds *container.DbSpace) {
		r.shiftIfDone(ctx, ds)
	})
}

func (r *Reconciler) shiftIfDone(ctx context.Context, ds *container.DbSpace) {
	it := ds.Timeline().CreateIterator()
	defer ds.Timeline().DestroyIterator(it)

	head, ok := it.Apply(container.IterHead, nil)
	if !ok {
		return
	}
	dt, isDbTime := head.(*container.DbTime)
	if !isDbTime || !dt.SchedulerDone {
		return
	}

	guid := ds.DB().GUID
	if err := r.st.DbTimeShiftAtScheduler(ctx, guid); err != nil {
		r.logger.Error().Err(err).Str("db", string(guid)).Msg("failed to shift db timeline")
		return
	}
	r.logger.Debug().Str("db", string(guid)).Msg("shifted db timeline window")
	if r.broker != nil {
		r.broker.Publish(&events.Event{
			Type:    events.EventDbMoved,
			Message: "db timeline shifted by reconciler follow-through",
			Metadata: map[string]string{
				"db": string(guid),
			},
		})
	}
}

// Heartbeat records that loc (normally this PD's own location) is alive.
// Daemons call this on their own tick independent of the reconciler's;
// kept here so callers don't need to reach into pdreg directly.
func Heartbeat(registry *pdreg.Registry, loc types.PDLocation) error {
	return registry.Heartbeat(loc, time.Now().Unix())
}
