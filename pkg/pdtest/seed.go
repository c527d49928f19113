package pdtest

import (
	"fmt"

	"github.com/edtrt/edtrt/pkg/container"
	"github.com/edtrt/edtrt/pkg/types"
)

// SeedWorker pushes edt directly onto workerID's own deque, bypassing
// notify/placement — the moral equivalent of "this EDT was already placed
// here" for tests that only want to exercise get_work's steal order rather
// than how the EDT arrived.
func (p *PD) SeedWorker(workerID int, edt *types.Edt) error {
	if workerID < 0 || workerID >= len(p.Space.Workers.WorkerDeques) {
		return fmt.Errorf("pdtest: worker %d out of range for pd %q", workerID, p.Location)
	}
	return p.Space.Workers.WorkerDeques[workerID].Insert(container.Tail(), edt)
}

// NewEdt builds a minimal runnable Edt for test fixtures: a GUID, no deps,
// and state created — callers needing hints or a DepV set them afterward.
func NewEdt() *types.Edt {
	return &types.Edt{
		GUID:  types.NewGUID(),
		State: types.EdtCreated,
	}
}
