/*
Package pdreg provides the Raft-backed PD roster and schedulerLocation
election that the ST placement heuristic depends on: exactly
one PD at a time acts as the centralised analysis node for every DB's
timeline, and every PD needs a consistent view of who that is and which
other PDs currently exist.

Registry wraps a hashicorp/raft instance behind a small Command{Op, Data} envelope
applied through registryFSM onto a pkg/storage.Store. The roster itself
(join/leave) and the schedulerLocation designation travel through the same
replicated log, so a PD never observes one without the other being
consistent.

This package is a named collaborator the scheduling core calls into (to
learn who schedulerLocation is) but never the other way around — the ST
heuristic takes schedulerLocation as a constructor argument rather than
querying a Registry directly, keeping pkg/scheduler free of a Raft
dependency.
*/
package pdreg
