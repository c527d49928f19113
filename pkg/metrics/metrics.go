package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// EDT lifecycle metrics.
	EdtsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "edtrt_edts_total",
			Help: "Total number of EDTs known to this PD, by lifecycle state",
		},
		[]string{"state"},
	)

	EdtsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "edtrt_edts_created_total",
			Help: "Total number of EDTs created on this PD",
		},
	)

	EdtsDoneTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "edtrt_edts_done_total",
			Help: "Total number of EDTs that completed running",
		},
	)

	EdtsRescheduledTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "edtrt_edts_rescheduled_total",
			Help: "Total number of EDTs rescheduled away from this PD",
		},
	)

	// DB lifecycle metrics.
	DbsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "edtrt_dbs_total",
			Help: "Total number of DBs known to this PD, by lifecycle state",
		},
		[]string{"state"},
	)

	DbMovesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "edtrt_db_moves_total",
			Help: "Total number of db-move-src transactions sent from this PD",
		},
	)

	// Scheduler metrics.
	GetWorkLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "edtrt_get_work_latency_seconds",
			Help:    "Time taken for a get_work call to resolve, by heuristic",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"heuristic"},
	)

	StealAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edtrt_steal_attempts_total",
			Help: "Total number of deque steal attempts, by outcome (hit/miss)",
		},
		[]string{"outcome"},
	)

	STPlacementDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "edtrt_st_placement_duration_seconds",
			Help:    "Time taken to resolve a space/time placement decision",
			Buckets: prometheus.DefBuckets,
		},
	)

	STTrylockRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "edtrt_st_trylock_retries_total",
			Help: "Total number of full-depv trylock-all retries forced by a held lock",
		},
	)

	// Transport metrics.
	TransportSendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "edtrt_transport_send_duration_seconds",
			Help:    "Time taken for a transport.Send round trip, by message kind",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	TransportSendFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edtrt_transport_send_failures_total",
			Help: "Total number of failed transport sends, by reason",
		},
		[]string{"reason"},
	)

	// Raft / pdreg metrics.
	RaftLeader = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "edtrt_raft_is_leader",
			Help: "Whether this PD is the pdreg Raft leader (1 = leader, 0 = follower)",
		},
	)

	RaftPeers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "edtrt_raft_peers_total",
			Help: "Total number of PDs in the pdreg roster",
		},
	)

	RaftApplyDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "edtrt_raft_apply_duration_seconds",
			Help:    "Time taken to apply a pdreg Raft log entry in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Reconciler metrics.
	ReconciliationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "edtrt_reconciliation_duration_seconds",
			Help:    "Time taken for a reconciliation cycle in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ReconciliationCyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "edtrt_reconciliation_cycles_total",
			Help: "Total number of reconciliation cycles completed",
		},
	)

	PDsMarkedDownTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "edtrt_pds_marked_down_total",
			Help: "Total number of PDs the reconciler has marked down on liveness timeout",
		},
	)
)

func init() {
	prometheus.MustRegister(EdtsTotal)
	prometheus.MustRegister(EdtsCreatedTotal)
	prometheus.MustRegister(EdtsDoneTotal)
	prometheus.MustRegister(EdtsRescheduledTotal)
	prometheus.MustRegister(DbsTotal)
	prometheus.MustRegister(DbMovesTotal)
	prometheus.MustRegister(GetWorkLatency)
	prometheus.MustRegister(StealAttemptsTotal)
	prometheus.MustRegister(STPlacementDuration)
	prometheus.MustRegister(STTrylockRetries)
	prometheus.MustRegister(TransportSendDuration)
	prometheus.MustRegister(TransportSendFailuresTotal)
	prometheus.MustRegister(RaftLeader)
	prometheus.MustRegister(RaftPeers)
	prometheus.MustRegister(RaftApplyDuration)
	prometheus.MustRegister(ReconciliationDuration)
	prometheus.MustRegister(ReconciliationCyclesTotal)
	prometheus.MustRegister(PDsMarkedDownTotal)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
