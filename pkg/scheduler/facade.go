package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/edtrt/edtrt/pkg/container"
	"github.com/edtrt/edtrt/pkg/log"
	"github.com/edtrt/edtrt/pkg/schederr"
	"github.com/edtrt/edtrt/pkg/types"
)

// Facade dispatches get_work/notify/transact/analyze to the configured
// heuristic instances, . It holds the PD's rootObj (its
// PdSpace) and one instance per registered heuristic; masterHeuristicId is
// the default target for get_work when the caller doesn't name one.
type Facade struct {
	location   types.PDLocation
	rootObj    *container.PdSpace
	heuristics map[HeuristicID]Heuristic
	masterID   HeuristicID
	logger     zerolog.Logger
}

// NewFacade builds a facade rooted at rootObj, defaulting get_work to
// masterID. Heuristics are built on their own (none takes the facade) and
// installed after construction via Register.
func NewFacade(loc types.PDLocation, rootObj *container.PdSpace, masterID HeuristicID) *Facade {
	return &Facade{
		location:   loc,
		rootObj:    rootObj,
		heuristics: make(map[HeuristicID]Heuristic),
		masterID:   masterID,
		logger:     log.WithPD(string(loc)),
	}
}

// Register installs h under its own ID, overwriting any previous instance
// for that ID.
func (f *Facade) Register(h Heuristic) { f.heuristics[h.ID()] = h }

// RootObj returns the facade's PdSpace, for heuristics and tests that need
// direct container access.
func (f *Facade) RootObj() *container.PdSpace { return f.rootObj }

// Location returns the PD this facade belongs to.
func (f *Facade) Location() types.PDLocation { return f.location }

func (f *Facade) heuristic(id HeuristicID) (Heuristic, error) {
	h, ok := f.heuristics[id]
	if !ok {
		return nil, schederr.ErrNotSupported
	}
	return h, nil
}

// GetWork returns a runnable EDT from the master heuristic.
func (f *Facade) GetWork(workerID int) (*types.Edt, error) {
	return f.GetWorkFrom(f.masterID, workerID)
}

// GetWorkFrom targets a specific heuristic rather than the master.
func (f *Facade) GetWorkFrom(id HeuristicID, workerID int) (*types.Edt, error) {
	h, err := f.heuristic(id)
	if err != nil {
		return nil, err
	}
	edt, err := h.GetWork(workerID)
	if err != nil && !schederr.Fatal(err) {
		return nil, err
	}
	if err != nil {
		f.logger.Debug().Str("heuristic", id.String()).Int("worker", workerID).Err(err).Msg("get_work failed")
	}
	return edt, err
}

// Notify dispatches kind to every registered heuristic that wants it. A
// heuristic returning ErrNoOp is expected and not logged as an error.
func (f *Facade) Notify(kind NotifyKind, payload *NotifyPayload) error {
	var firstErr error
	for id, h := range f.heuristics {
		err := h.Notify(kind, payload)
		if err == nil || err == schederr.ErrNoOp {
			continue
		}
		f.logger.Warn().Str("heuristic", id.String()).Err(err).Msg("notify failed")
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NotifyTo dispatches kind to exactly one heuristic.
func (f *Facade) NotifyTo(id HeuristicID, kind NotifyKind, payload *NotifyPayload) error {
	h, err := f.heuristic(id)
	if err != nil {
		return err
	}
	return h.Notify(kind, payload)
}

// Transact moves obj to dest via the named heuristic. Every heuristic's
// Transact currently returns ErrNotSupported; st moves DBs through
// dbMoveSrc and the transport instead.
func (f *Facade) Transact(id HeuristicID, obj container.Object, dest types.PDLocation) error {
	h, err := f.heuristic(id)
	if err != nil {
		return err
	}
	return h.Transact(obj, dest)
}

// Analyze exchanges placement information via the named heuristic.
func (f *Facade) Analyze(id HeuristicID, kind AnalyzeKind, props AnalyzeProperty, payload any) error {
	h, err := f.heuristic(id)
	if err != nil {
		return err
	}
	return h.Analyze(kind, props, payload)
}

// SwitchRunlevel propagates a runlevel transition to the root container;
// the facade itself has no state that outlives a single runlevel.
func (f *Facade) SwitchRunlevel(phase container.RunlevelPhase, props container.RunlevelProperties) error {
	return f.rootObj.SwitchRunlevel(phase, props)
}
