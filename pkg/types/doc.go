/*
Package types defines the core data structures of the EDT scheduling core.

This package is the foundation of edtrt's data model: the Event-Driven Task
(Edt), the data block (Db), and the advisory Hints block attached to either.
Every other package — container, scheduler, pdreg, transport — operates on
these types rather than redefining them.

# Core Types

Edt: a fire-once procedure with a fixed slot count and a fixed DB-dependence
count. Identified by GUID, carries a resolved-dependence vector (DepSlot),
moves through the EdtState lifecycle (created → ... → reaping), and is never
mutated by anything but its owning PD's scheduler.

Db: a content-addressed memory region — size, home PD, and currently granted
AccessMode. This package models only DB metadata; payload storage is out of
scope for the whole module.

Hints: a type-tagged, stack-allocated advisory bag attached to an Edt or a
Db. Hints never affect correctness — a heuristic that ignores every hint on
an EDT must still schedule it correctly, just less well.

# Usage

Creating an EDT with a priority hint:

	e := &types.Edt{
		GUID:      types.NewGUID(),
		SlotCount: 1,
		DepCount:  1,
		DepV:      []types.DepSlot{{DB: dbGUID, Mode: types.AccessModeRW}},
		Hints:     types.NewHints().Set(types.HintPriority, 10),
		Flags:     types.EdtFlagUsesHints,
	}

# Thread Safety

Types in this package carry no internal locking. Mutation discipline is
enforced by the owning package (pkg/container's DbSpace/EdtProxy wrap these
values behind a spin-lock; pkg/scheduler never shares an *Edt across PDs
without a transact step first).
*/
package types
