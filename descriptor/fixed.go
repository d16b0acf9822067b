package descriptor

import (
	"math/bits"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/armory/backend"
)

// FixedHeapSize is the slot capacity of every free-list heap: one slot per
// bit of the occupancy mask.
const FixedHeapSize = 64

// fixedHeap is a fixed-capacity free-list allocator over a single native
// descriptor heap. Availability is one 64-bit mask with a set bit meaning
// the slot is free; allocation claims the lowest free slot so reuse stays
// deterministic and early-biased.
type fixedHeap struct {
	// Bit flag representation of available slots in the heap.
	//
	//  0 - occupied
	//  1 - free
	availability uint64
	handleSize   int
	start        backend.DescriptorAddress
	raw          backend.DescriptorHeap
}

func newFixedHeap(device backend.Device, kind backend.HeapKind, flags backend.HeapFlags, nodeMask uint32) (*fixedHeap, backend.Result, error) {
	raw, res, err := device.CreateDescriptorHeap(FixedHeapSize, kind, flags, nodeMask)
	if err != nil {
		return nil, res, errors.Wrapf(err, "creating a fixed free-list heap of kind %s", kind.String())
	}

	return &fixedHeap{
		availability: ^uint64(0), // all free
		handleSize:   device.DescriptorIncrementSize(kind),
		start:        raw.BaseAddress(),
		raw:          raw,
	}, res, nil
}

// allocSlot claims and returns the lowest free slot. Callers must check
// isFull first: allocating from a full heap is a precondition violation and
// panics.
func (h *fixedHeap) allocSlot() int {
	slot := bits.TrailingZeros64(h.availability)
	if slot >= FixedHeapSize {
		panic("attempted to allocate a descriptor from a full fixed heap")
	}
	// Mark the slot occupied
	h.availability ^= 1 << slot

	return slot
}

// freeSlot releases a previously claimed slot back to the mask
func (h *fixedHeap) freeSlot(slot int) {
	h.availability |= 1 << slot
}

func (h *fixedHeap) isFull() bool {
	return h.availability == 0
}

// occupiedCount returns the number of slots currently claimed
func (h *fixedHeap) occupiedCount() int {
	return FixedHeapSize - bits.OnesCount64(h.availability)
}

func (h *fixedHeap) slotAddress(slot int) backend.DescriptorAddress {
	return h.start.OffsetSlots(slot, h.handleSize)
}

func (h *fixedHeap) destroy() {
	h.raw.Destroy()
}
