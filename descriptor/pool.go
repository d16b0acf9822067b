package descriptor

import (
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/armory"
	"github.com/vkngwrapper/armory/backend"
	"golang.org/x/exp/slog"
)

// Pool hands out descriptor slots from a growable collection of fixed-size
// free-list heaps. A new heap is created lazily whenever every existing heap
// is full; heaps are never merged, compacted, or destroyed before the pool
// itself is.
//
// Alongside each heap's own occupancy mask the Pool maintains a spare-
// capacity index: the set of heap indices known to have at least one free
// slot. Any member of that set is a valid allocation target, so membership
// order is irrelevant.
//
// A Pool is exclusively owned by one goroutine or frame context and performs
// no internal synchronization.
type Pool struct {
	logger *slog.Logger
	device backend.Device

	kind     backend.HeapKind
	flags    backend.HeapFlags
	nodeMask uint32

	heaps []*fixedHeap
	spare *swiss.Map[int, struct{}]
}

// NewPool creates an empty Pool that will allocate native heaps of the
// provided kind from device on first demand.
func NewPool(logger *slog.Logger, device backend.Device, kind backend.HeapKind, flags backend.HeapFlags, nodeMask uint32) *Pool {
	return &Pool{
		logger: logger,
		device: device,

		kind:     kind,
		flags:    flags,
		nodeMask: nodeMask,

		spare: swiss.NewMap[int, struct{}](8),
	}
}

// AllocHandle hands out one descriptor slot, creating a new native heap
// first if every existing heap is full. On native heap-creation failure the
// status code is returned alongside the wrapped error and the pool is left
// unchanged.
func (p *Pool) AllocHandle() (Handle, backend.Result, error) {
	p.logger.Debug("Pool::AllocHandle")

	heapIndex, ok := p.anySpareHeap()
	if !ok {
		var res backend.Result
		var err error
		heapIndex, res, err = p.appendHeap()
		if err != nil {
			return Handle{}, res, errors.Mark(err, armory.HeapCreateFailedError)
		}
	}

	heap := p.heaps[heapIndex]
	slot := heap.allocSlot()
	if heap.isFull() {
		p.spare.Delete(heapIndex)
	}
	armory.DebugValidate(p)

	return Handle{heap: heapIndex, slot: slot}, backend.Success, nil
}

// TODO: wire handle reclamation through fixedHeap.freeSlot and re-register
// the heap in the spare-capacity set

// anySpareHeap returns an arbitrary member of the spare-capacity set
func (p *Pool) anySpareHeap() (int, bool) {
	found := false
	var heapIndex int

	p.spare.Iter(func(index int, _ struct{}) (stop bool) {
		heapIndex = index
		found = true
		return true
	})

	return heapIndex, found
}

func (p *Pool) appendHeap() (int, backend.Result, error) {
	heap, res, err := newFixedHeap(p.device, p.kind, p.flags, p.nodeMask)
	if err != nil {
		return -1, res, err
	}

	index := len(p.heaps)
	p.heaps = append(p.heaps, heap)
	p.spare.Put(index, struct{}{})

	return index, res, nil
}

// ResolveAddress computes the native address for a handle issued by this
// pool. The handle's slot must still be occupied; resolving a handle after
// pool destruction is undefined.
func (p *Pool) ResolveAddress(h Handle) backend.DescriptorAddress {
	return p.heaps[h.heap].slotAddress(h.slot)
}

// HeapCount returns the number of native heaps created so far
func (p *Pool) HeapCount() int {
	return len(p.heaps)
}

// OccupiedSlots returns the number of occupied slots in the heap at
// heapIndex
func (p *Pool) OccupiedSlots(heapIndex int) int {
	return p.heaps[heapIndex].occupiedCount()
}

// AddStatistics accumulates this pool's footprint into stats
func (p *Pool) AddStatistics(stats *armory.Statistics) {
	for _, heap := range p.heaps {
		stats.HeapCount++
		stats.SlotCount += FixedHeapSize
		stats.AllocationCount += heap.occupiedCount()
	}
}

// PrintDetailedMap writes a JSON description of every heap's occupancy to
// the provided writer
func (p *Pool) PrintDetailedMap(writer *jwriter.Writer) {
	objState := writer.Object()
	defer objState.End()

	objState.Name("Kind").String(p.kind.String())
	objState.Name("HeapCount").Int(len(p.heaps))

	arrayState := objState.Name("Heaps").Array()
	defer arrayState.End()

	for index, heap := range p.heaps {
		heapState := arrayState.Object()
		heapState.Name("Index").Int(index)
		heapState.Name("OccupiedSlots").Int(heap.occupiedCount())
		heapState.Name("Full").Bool(heap.isFull())
		heapState.End()
	}
}

// BuildStatsString returns the PrintDetailedMap JSON as a string
func (p *Pool) BuildStatsString() string {
	writer := jwriter.NewWriter()
	p.PrintDetailedMap(&writer)

	return string(writer.Bytes())
}

// Validate performs internal consistency checks on the pool's two levels of
// bookkeeping. When the implementation is functioning correctly, it should
// not be possible for this method to return an error.
func (p *Pool) Validate() error {
	var err error
	p.spare.Iter(func(index int, _ struct{}) (stop bool) {
		if index >= len(p.heaps) {
			err = errors.Newf("the spare-capacity set contains heap index %d, but only %d heaps exist", index, len(p.heaps))
			return true
		}
		if p.heaps[index].isFull() {
			err = errors.Newf("the spare-capacity set contains heap index %d, but that heap is full", index)
			return true
		}
		return false
	})
	if err != nil {
		return err
	}

	for index, heap := range p.heaps {
		if !heap.isFull() && !p.spare.Has(index) {
			return errors.Newf("heap index %d has spare capacity but is missing from the spare-capacity set", index)
		}
	}

	return nil
}

// Destroy releases every native heap unconditionally. The caller must
// guarantee that no GPU work still references any outstanding handle; this
// is not validated internally.
func (p *Pool) Destroy() {
	p.logger.Debug("Pool::Destroy")

	for _, heap := range p.heaps {
		heap.destroy()
	}
	p.heaps = nil
	p.spare = swiss.NewMap[int, struct{}](8)
}
