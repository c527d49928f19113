package container

// PrWsh ("pending-request work-stealing heap") is a thin named wrapper over
// BinHeap that reports its own kind tag, KindPrWsh. The CE heuristic does
// not use it: it keeps its pending requests in plain FIFO slices.
type PrWsh struct {
	*BinHeap
}

func NewPrWsh() *PrWsh { return &PrWsh{BinHeap: NewBinHeap()} }

func (p *PrWsh) Kind() SchedulerObjectKind { return KindPrWsh }
