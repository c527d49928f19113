/*
Package metrics defines and registers every Prometheus metric the scheduling
core and its collaborators emit, plus the HTTP exposition and health-check
surface cmd/edtrtd serves on /metrics and /healthz.

# Metric Catalog

EDT lifecycle: edtrt_edts_total{state}, edtrt_edts_created_total,
edtrt_edts_done_total, edtrt_edts_rescheduled_total.

DB lifecycle: edtrt_dbs_total{state}, edtrt_db_moves_total.

Scheduler: edtrt_get_work_latency_seconds{heuristic},
edtrt_steal_attempts_total{outcome}, edtrt_st_placement_duration_seconds,
edtrt_st_trylock_retries_total.

Transport: edtrt_transport_send_duration_seconds{kind},
edtrt_transport_send_failures_total{reason}.

pdreg/Raft: edtrt_raft_is_leader, edtrt_raft_peers_total,
edtrt_raft_apply_duration_seconds.

Reconciler: edtrt_reconciliation_duration_seconds,
edtrt_reconciliation_cycles_total, edtrt_pds_marked_down_total.

# Usage

	timer := metrics.NewTimer()
	placeLocally(edt)
	timer.ObserveDuration(metrics.STPlacementDuration)

	metrics.StealAttemptsTotal.WithLabelValues("hit").Inc()

# Health

RegisterComponent/HealthHandler (health.go) track named subsystem health
(pdreg, scheduler) independent of the metric registry, so /healthz can
report liveness even when a scrape of /metrics would otherwise succeed on a
half-initialized PD.
*/
package metrics
