package scheduler

import (
	"context"
	"sync"

	"github.com/edtrt/edtrt/pkg/container"
	"github.com/edtrt/edtrt/pkg/log"
	"github.com/edtrt/edtrt/pkg/schederr"
	"github.com/edtrt/edtrt/pkg/transport"
	"github.com/edtrt/edtrt/pkg/types"
)

// STHeuristic is the distributed space/time placement policy.
// get_work and edt-ready on every PD drive a standard work-stealing Wst
// (delegated to an embedded HCHeuristic); DB lifecycle and placement
// decisions travel as analyze messages to the single PD elected
// schedulerLocation, which runs the full heuristic locally.
type STHeuristic struct {
	*HCHeuristic

	location          types.PDLocation
	schedulerLocation types.PDLocation
	isScheduler       bool
	neighbourCount    int
	affinityTable     []types.PDLocation

	pd        *container.PdSpace
	transport transport.Transport

	mu         sync.Mutex
	rrPlaceIdx int
}

// NewSTHeuristic builds the st policy. isScheduler marks this PD as the
// elected schedulerLocation.
func NewSTHeuristic(pd *container.PdSpace, location, schedulerLocation types.PDLocation, isScheduler bool, neighbourCount int, affinityTable []types.PDLocation, tr transport.Transport) *STHeuristic {
	return &STHeuristic{
		HCHeuristic:       NewHCHeuristic(pd),
		location:          location,
		schedulerLocation: schedulerLocation,
		isScheduler:       isScheduler,
		neighbourCount:    neighbourCount,
		affinityTable:     affinityTable,
		pd:                pd,
		transport:         tr,
	}
}

func (h *STHeuristic) ID() HeuristicID { return ST }

// IsSchedulerLocation reports whether this PD is the centralised analysis
// node for ST placement — the one the reconciler should drive timeline
// follow-through on.
func (h *STHeuristic) IsSchedulerLocation() bool { return h.isScheduler }

// --- DB lifecycle ops, its ops table -------------------------------

// DbCreate implements db-create: a local EDT creates a DB. A DbSpace is
// created at info (no ptr) or local-active (ptr given), with a head DbTime
// at time; if this PD isn't the scheduler node, analyze(create) is sent
// there.
func (h *STHeuristic) DbCreate(ctx context.Context, db types.Db, time uint64) (*container.DbSpace, error) {
	ds := h.pd.DbSpaceFor(db.GUID, func() types.Db { return db })
	state := types.DbInfo
	if db.Ptr != 0 {
		state = types.DbLocalActive
	}
	ds.ForceState(state)
	ds.Timeline().Insert(container.Head(), container.NewDbTime(h.location, time))

	if !h.isScheduler {
		return ds, h.sendAnalyze(ctx, PropCreate, db)
	}
	return ds, nil
}

// DbAcquire implements db-acquire: activeCount++, local-inactive->local-active.
func (h *STHeuristic) DbAcquire(guid types.GUID, mode types.AccessMode) error {
	ds, err := h.dbSpace(guid)
	if err != nil {
		return err
	}
	return ds.Acquire(mode)
}

// DbRelease implements db-release, sending db-done to the scheduler node
// once the DbSpace goes inactive.
func (h *STHeuristic) DbRelease(ctx context.Context, guid types.GUID) error {
	ds, err := h.dbSpace(guid)
	if err != nil {
		return err
	}
	dt, err := h.headDbTime(ds)
	if err != nil {
		return err
	}
	res, err := ds.Release(dt)
	if err != nil {
		return err
	}
	if res.WentInactive && !h.isScheduler {
		return h.sendAnalyze(ctx, PropDone, guid)
	}
	return nil
}

// DbFree implements db-free (user free) by marking the DbSpace free via
// DbSpace.Free. Unlike DbRelease it changes no state and sends no db-done
// to the scheduler node.
func (h *STHeuristic) DbFree(ctx context.Context, guid types.GUID, noRelease bool) error {
	ds, err := h.dbSpace(guid)
	if err != nil {
		return err
	}
	ds.Free(noRelease)
	return nil
}

// DbAtScheduler is the scheduler-node variant of create: create or upgrade
// (proxy->info) the scheduler-side DbSpace, mapping=mapped.
func (h *STHeuristic) DbAtScheduler(db types.Db) error {
	ds := h.pd.DbSpaceFor(db.GUID, func() types.Db { return db })
	if ds.State() == types.DbProxy {
		ds.ForceState(types.DbInfo)
	}
	ds.UpdateMeta(db)
	ds.SetMapping(container.MapMapped)
	return nil
}

// DbDoneAtScheduler implements db-done-at-scheduler: increment edtDoneCount
// for the named window; if it now equals schedulerCount and a next DbTime
// exists, mark schedulerDone (enabling a time-shift). It never destructs
// the DbSpace, even when this PD is also the home and the DB is marked free.
func (h *STHeuristic) DbDoneAtScheduler(guid types.GUID) error {
	ds, err := h.dbSpace(guid)
	if err != nil {
		return err
	}
	dt, err := h.headDbTime(ds)
	if err != nil {
		return err
	}
	dt.MarkDone()
	_, done := dt.Counts()
	if done != dt.SchedulerCount {
		return nil
	}
	if ds.Timeline().Count(container.CountImmediate) > 1 {
		markSchedulerDone(dt)
	}
	return nil
}

func markSchedulerDone(dt *container.DbTime) {
	dt.SchedulerDone = true
}

// DbTimeShiftAtScheduler implements db-time-shift-at-scheduler: drop the
// head DbTime once schedulerDone, and send analyze(update) to the next
// space to initiate a move there.
func (h *STHeuristic) DbTimeShiftAtScheduler(ctx context.Context, guid types.GUID) error {
	ds, err := h.dbSpace(guid)
	if err != nil {
		return err
	}
	head, err := h.headDbTime(ds)
	if err != nil {
		return err
	}
	if !head.SchedulerDone {
		return schederr.ErrInvalidArgument
	}
	if _, err := ds.Timeline().Remove(container.Head()); err != nil {
		return err
	}
	next, err := h.headDbTime(ds)
	if err != nil {
		return nil // no further window queued; nothing to move toward
	}
	return h.dbMoveSrc(ctx, ds, next.Space)
}

// dbMoveSrc implements db-move-src: the source PD transitions local-inactive
// -> info and ships a SCHED_TRANSACT of the DbSpace to dest. The DB's local
// Ptr is left as it was.
func (h *STHeuristic) dbMoveSrc(ctx context.Context, ds *container.DbSpace, dest types.PDLocation) error {
	if ds.State() == types.DbLocalInactive {
		ds.ForceState(types.DbInfo)
	}
	if h.transport == nil {
		return nil
	}
	size, _ := ds.MarshallSize()
	buf := make([]byte, size)
	n, err := ds.Marshall(buf)
	if err != nil {
		return err
	}
	msg := transport.Message{Src: h.location, Dest: dest, Kind: transport.MsgSchedTransact, Payload: buf[:n]}
	_, err = h.transport.Send(ctx, msg)
	return err
}

// DbMoveDst implements db-move-dst: create or upgrade the DbSpace on
// arrival; if its head DbTime already has waiters, mark remote-inactive
// until the payload itself (db-at-space) arrives.
func (h *STHeuristic) DbMoveDst(db types.Db) error {
	ds := h.pd.DbSpaceFor(db.GUID, func() types.Db { return db })
	ds.UpdateMeta(db)
	dt, err := h.headDbTime(ds)
	if err == nil && dt.WaitList().Count(container.CountImmediate) > 0 {
		ds.ForceState(types.DbRemoteInactive)
		return nil
	}
	if db.Ptr != 0 {
		ds.ForceState(types.DbLocalActive)
	} else {
		ds.ForceState(types.DbLocalInactive)
	}
	return nil
}

// DbAtSpace implements db-at-space: the DB payload arrived. Store ptr,
// mapping=pinned, and kick the waitlist.
func (h *STHeuristic) DbAtSpace(guid types.GUID, ptr uintptr) (released []types.GUID, err error) {
	ds, err := h.dbSpace(guid)
	if err != nil {
		return nil, err
	}
	db := ds.DB()
	db.Ptr = ptr
	ds.UpdateMeta(db)
	ds.SetMapping(container.MapPinned)
	if ds.State() == types.DbRemoteInactive {
		ds.ForceState(types.DbLocalInactive)
	}

	dt, err := h.headDbTime(ds)
	if err != nil {
		return nil, nil
	}
	var woken []types.GUID
	for {
		item, err := dt.WaitList().Remove(container.Head())
		if err != nil {
			break
		}
		woken = append(woken, item.(types.GUID))
	}
	return woken, nil
}

// EdtAtScheduler implements edt-at-scheduler: a dep DB is unknown to the
// scheduler yet, so a proxy DbSpace is created for it so the EdtProxy can
// park there.
func (h *STHeuristic) EdtAtScheduler(edt types.Edt, dep types.DepSlot) *container.EdtProxy {
	h.pd.DbSpaceFor(dep.DB, func() types.Db { return types.Db{GUID: dep.DB} })
	return h.pd.EdtProxyFor(edt.GUID, edt)
}

// EdtAtSpace implements edt-at-space: the EDT arrived at its scheduled PD;
// for each dep, if the DB isn't present at this time-slot locally, the EDT
// is appended to that DbTime's waitList and suspended, edtScheduledCount++.
func (h *STHeuristic) EdtAtSpace(edt types.Edt) (ready bool, err error) {
	allReady := true
	for _, dep := range edt.DepV {
		ds, err := h.dbSpace(dep.DB)
		if err != nil {
			return false, err
		}
		dt, err := h.headDbTime(ds)
		if err != nil {
			return false, err
		}
		dt.MarkScheduled()
		if !ds.State().IsLocal() {
			dt.WaitList().Insert(container.Tail(), edt.GUID)
			allReady = false
		}
	}
	return allReady, nil
}

func (h *STHeuristic) dbSpace(guid types.GUID) (*container.DbSpace, error) {
	obj, err := h.pd.GetForLocation(container.KindDbSpace, string(guid), container.MapMapped)
	if err != nil {
		return nil, err
	}
	return obj.(*container.DbSpace), nil
}

func (h *STHeuristic) headDbTime(ds *container.DbSpace) (*container.DbTime, error) {
	it := ds.Timeline().CreateIterator()
	defer ds.Timeline().DestroyIterator(it)
	item, ok := it.Apply(container.IterHead, nil)
	if !ok {
		return nil, schederr.ErrNotFound
	}
	return item.(*container.DbTime), nil
}

func (h *STHeuristic) sendAnalyze(ctx context.Context, prop AnalyzeProperty, payload any) error {
	if h.transport == nil {
		return nil
	}
	msg := transport.Message{Src: h.location, Dest: h.schedulerLocation, Kind: transport.MsgSchedAnalyze, Request: true, Payload: payload}
	_, err := h.transport.Send(ctx, msg)
	return err
}

// --- Placement algorithm ---------------------------------------------------

// placementCandidate is one (space, time) option considered while scanning
// the reference DB's timeline.
type placementCandidate struct {
	space types.PDLocation
	time  uint64
	cost  uint64
}

// RequestPlacement resolves (space, time) for edt. On the scheduler node it
// runs the algorithm directly; elsewhere it forwards an analyze(request) to
// schedulerLocation and unpacks the response.
func (h *STHeuristic) RequestPlacement(ctx context.Context, edt types.Edt) (types.PDLocation, uint64, error) {
	if h.neighbourCount == 0 {
		// Single-PD short circuit: every DB has exactly one time slot
		// numbered 1; respond immediately.
		return h.location, 1, nil
	}
	if len(edt.DepV) == 0 {
		// No useful deps: skip analysis, round-robin placement for load
		// balancing across the affinity table.
		return h.roundRobinPlacement(), 1, nil
	}
	if !h.isScheduler {
		resp, err := h.sendPlacementRequest(ctx, edt)
		return resp.space, resp.time, err
	}
	return h.placeLocally(edt)
}

func (h *STHeuristic) roundRobinPlacement() types.PDLocation {
	if len(h.affinityTable) == 0 {
		return h.location
	}
	h.mu.Lock()
	idx := h.rrPlaceIdx % len(h.affinityTable)
	h.rrPlaceIdx++
	h.mu.Unlock()
	return h.affinityTable[idx]
}

type placementResponse struct {
	space types.PDLocation
	time  uint64
}

func (h *STHeuristic) sendPlacementRequest(ctx context.Context, edt types.Edt) (placementResponse, error) {
	msg := transport.Message{Src: h.location, Dest: h.schedulerLocation, Kind: transport.MsgSchedAnalyze, Request: true, Payload: edt}
	reply, err := h.transport.Send(ctx, msg)
	if err != nil {
		return placementResponse{}, err
	}
	resp, ok := reply.Payload.(placementResponse)
	if !ok {
		return placementResponse{}, schederr.ErrInvalidArgument
	}
	return resp, nil
}

// placeLocally runs the full algorithm under the full-depv trylock-all
// protocol: grab the PdSpace-level lock's effect (our Map is already
// bucket-locked per entry, so the only extra step is trylocking every dep's
// DbSpace), then compute the cost-minimising (space, time).
func (h *STHeuristic) placeLocally(edt types.Edt) (types.PDLocation, uint64, error) {
	spaces, err := h.resolveDeps(edt)
	if err != nil {
		return "", 0, err
	}
	if err := h.trylockAll(spaces); err != nil {
		return "", 0, err
	}
	defer h.unlockAll(spaces)

	space, time := h.computePlacement(spaces)

	for i, ds := range spaces {
		_ = i
		h.scheduleDep(ds, space, time)
	}

	log.WithPD(string(h.location)).Debug().
		Str("edt", string(edt.GUID)).
		Str("space", string(space)).
		Msg("st placement resolved")
	return space, time, nil
}

func (h *STHeuristic) resolveDeps(edt types.Edt) ([]*container.DbSpace, error) {
	spaces := make([]*container.DbSpace, 0, len(edt.DepV))
	for _, dep := range edt.DepV {
		ds, err := h.dbSpace(dep.DB)
		if err != nil {
			return nil, err
		}
		spaces = append(spaces, ds)
	}
	return spaces, nil
}

// trylockAll implements deadlock avoidance: attempt trylock on
// every dep's DbSpace; on any failure release everything acquired so far,
// block briefly on the first still-held lock (then release it too), and
// retry the whole attempt. Sorted locking is explicitly rejected because it
// blocks unrelated chains.
func (h *STHeuristic) trylockAll(spaces []*container.DbSpace) error {
	for {
		acquired := make([]*container.DbSpace, 0, len(spaces))
		var held *container.DbSpace
		for _, ds := range spaces {
			if ds.TryLock() {
				acquired = append(acquired, ds)
				continue
			}
			held = ds
			break
		}
		if held == nil {
			return nil
		}
		for _, ds := range acquired {
			ds.Unlock()
		}
		held.Lock()
		held.Unlock()
	}
}

func (h *STHeuristic) unlockAll(spaces []*container.DbSpace) {
	for _, ds := range spaces {
		ds.Unlock()
	}
}

// computePlacement runs steps 1-5 of the placement algorithm: pick the
// largest dep as reference, scan its timeline for the cheapest zero-conflict
// slot, fall back to the next-largest reference, and finally append a new
// slot when nothing feasible exists anywhere.
func (h *STHeuristic) computePlacement(spaces []*container.DbSpace) (types.PDLocation, uint64) {
	order := referenceOrder(spaces)

	var lastRefSpace types.PDLocation
	var lastRefTime uint64

	for _, refIdx := range order {
		ref := spaces[refIdx]
		best, ok := h.scanReferenceTimeline(ref, spaces)
		if ok {
			return best.space, best.time
		}
		if dt, err := h.headDbTime(ref); err == nil {
			lastRefSpace, lastRefTime = dt.Space, dt.Time
		}
	}

	// No feasible slot anywhere: append a new slot at refTime+1, at the
	// last reference time's space (left as
	// specified, no invented refinement).
	return lastRefSpace, lastRefTime + 1
}

// referenceOrder returns dep indices sorted largest-DB-size first.
func referenceOrder(spaces []*container.DbSpace) []int {
	order := make([]int, len(spaces))
	for i := range order {
		order[i] = i
	}
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && spaces[order[j]].DB().Size > spaces[order[j-1]].DB().Size; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	return order
}

func (h *STHeuristic) scanReferenceTimeline(ref *container.DbSpace, spaces []*container.DbSpace) (placementCandidate, bool) {
	it := ref.Timeline().CreateIterator()
	defer ref.Timeline().DestroyIterator(it)

	var best placementCandidate
	found := false
	for item, ok := it.Apply(container.IterHead, nil); ok; item, ok = it.Apply(container.IterNext, nil) {
		dt := item.(*container.DbTime)
		cost := h.candidateCost(dt, spaces)
		if !found || cost < best.cost {
			best = placementCandidate{space: dt.Space, time: dt.Time, cost: cost}
			found = true
		}
		if cost == 0 {
			break
		}
	}
	if found && best.cost == 0 {
		return best, true
	}
	return best, false
}

// candidateCost sums, over every dep other than the reference, the DB's
// size when it has no slot at refTime with refSpace — this heuristic's cost model.
// A mismatched space at the same time is a conflict and costs the total.
func (h *STHeuristic) candidateCost(dt *container.DbTime, spaces []*container.DbSpace) uint64 {
	var total uint64
	var cost uint64
	for _, ds := range spaces {
		size := ds.DB().Size
		total += size
		if ds == nil {
			continue
		}
		if slot, ok := h.findSlotAt(ds, dt.Time); ok {
			if slot.Space != dt.Space {
				return total // conflict: mismatched space at the same time
			}
			continue // this dep already has a compatible slot here, no added cost
		}
		cost += size
	}
	return cost
}

func (h *STHeuristic) findSlotAt(ds *container.DbSpace, time uint64) (*container.DbTime, bool) {
	it := ds.Timeline().CreateIterator()
	defer ds.Timeline().DestroyIterator(it)
	for item, ok := it.Apply(container.IterHead, nil); ok; item, ok = it.Apply(container.IterNext, nil) {
		dt := item.(*container.DbTime)
		if dt.Time == time {
			return dt, true
		}
	}
	return nil, false
}

// scheduleDep creates/locates the chosen DbTime on ds and increments its
// schedulerCount; if the previous head is now fully drained it is marked
// schedulerDone to enable a time-shift.
func (h *STHeuristic) scheduleDep(ds *container.DbSpace, space types.PDLocation, time uint64) {
	if dt, ok := h.findSlotAt(ds, time); ok {
		dt.SchedulerCount++
		return
	}
	dt := container.NewDbTime(space, time)
	dt.SchedulerCount = 1
	ds.Timeline().Insert(container.Tail(), dt)

	if head, err := h.headDbTime(ds); err == nil {
		_, done := head.Counts()
		if done == head.SchedulerCount {
			markSchedulerDone(head)
		}
	}
}

func (h *STHeuristic) Transact(obj container.Object, dest types.PDLocation) error {
	return schederr.ErrNotSupported // DB/EDT transact for st goes through DbMoveSrc/transport directly
}

func (h *STHeuristic) Analyze(kind AnalyzeKind, props AnalyzeProperty, payload any) error {
	return schederr.ErrNotSupported // analyze is handled by the transport handler calling the typed methods above directly
}
