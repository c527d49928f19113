/*
Package reconciler runs the background sweeps the scheduling core never
triggers on its own: PD liveness and ST timeline follow-through.

Liveness is level-triggered and stateless between cycles, same as the
teacher's original reconciler — a PD is marked down whenever its last
recorded heartbeat (gossiped locally through pkg/pdreg, not replicated
through Raft) is older than 30 seconds, and the mark clears itself on the
next heartbeat rather than needing an explicit "recovered" transition.

Timeline follow-through exists only for ST: the ordinary path
is db-done-at-scheduler triggering db-time-shift-at-scheduler directly, but a
PD that becomes schedulerLocation mid-timeline (after a failover) needs a
sweep to notice any head window already marked schedulerDone and shift it.
Reconciler skips this sweep entirely when this PD isn't running ST, or isn't
the elected schedulerLocation.
*/
package reconciler
