/*
Package scheduler is the dispatch core of one PD: a Facade fronting however
many of the seven pluggable heuristics this PD has registered, plus the
per-heuristic implementations themselves.

# Architecture

	┌─────────────────────────── Facade ───────────────────────────┐
	│  get_work(worker) ─┐                                          │
	│  notify(kind)     ─┼─► heuristics[masterID / named ID]        │
	│  transact(obj,dst) │      hc · hc-comm-delegate · static       │
	│  analyze(kind)    ─┘      priority · placement-affinity        │
	│                           ce · st                              │
	└─────────────────────────────────────────────────────────────┘

Every heuristic implements the same Heuristic interface (heuristic.go): the
four facade operations plus ID. A PD registers one master heuristic (named at construction)
alongside a baseline hc heuristic, since hc's steal-from-neighbour contract
is the fallback every worker deque relies on regardless of which heuristic
actually places or schedules an EDT.

# Heuristics

hc: plain work-stealing across a flat array of worker deques.

hc-comm-delegate: a private outbox/inbox deque pair per worker holding
message handles; a designated comm worker steals from the outboxes, and a
compute worker pops only its own inbox, so a blocking send never starves a
compute worker.

static: a fixed home-worker assignment per EDT, resolved once at creation
and never re-balanced.

priority: one locked bin-heap shared by all workers, popped in order of the
EDT's priority hint rather than insertion order.

placement-affinity: rewrites an EDT's or DB's destination PD during
pre-process-msg (affinity hint, else round-robin over the affinity table);
its get_work returns ErrNotSupported, leaving dispatch to another heuristic.

ce: the hierarchical pending-request scheduler (ce.go) — one context per
child XE and per neighbour CE, a coordination tick that forces a request
upward when local work is exhausted and round-robins outbound requests to
neighbours, and a pending-request FIFO per direction so UpdateIdle knows
who to wake first.

st: the centralised space/time placement heuristic (st.go) — every EDT's
actual placement is resolved on one elected schedulerLocation PD via the
DB ops table (db-at-scheduler, db-done-at-scheduler, db-move-src/dst) and a
trylock-all-or-release-and-retry protocol across every dep DB's DbSpace, to
avoid the cross-EDT deadlock a naive sorted-lock-order scheme would still
risk under concurrent placement requests touching overlapping dep sets.

# Wire dispatch

st and ce's Analyze/Transact are deliberately unimplemented on the
Heuristic interface (ErrNotSupported) — both only ever make sense answering
an inbound message from another PD, never a purely local call. wire.go's
Facade.HandleMessage is the registered transport.Handler that decodes an
inbound message by Kind and calls straight into the owning heuristic's
typed methods (placeLocally, DbAtScheduler, DbMoveDst, ServeWorkRequest).

# See Also

  - pkg/container - the per-object scheduler types (Deque, DbSpace, PdSpace,
    Wst) every heuristic operates on
  - pkg/transport - the Message/Handler contract HandleMessage implements
  - pkg/pdreg - schedulerLocation election st.go depends on
  - pkg/reconciler - PD liveness and ST timeline follow-through
*/
package scheduler
