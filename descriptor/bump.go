package descriptor

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/armory/backend"
	"golang.org/x/exp/slog"
)

// BumpHeap is a linear allocator over a single native descriptor heap of
// caller-chosen capacity. Allocation only ever advances a cursor; individual
// slots are never reclaimed. Instead, Clear releases every slot at once,
// which suits descriptor tables that are rebuilt from scratch each recording
// period.
//
// A BumpHeap is exclusively owned by one goroutine or frame context and
// performs no internal synchronization.
type BumpHeap struct {
	logger *slog.Logger

	handleSize int
	count      int
	capacity   int
	start      backend.DescriptorAddress
	raw        backend.DescriptorHeap
}

// NewBumpHeap creates a BumpHeap backed by a freshly-created native heap of
// capacity slots of the provided kind. On native failure the status code is
// returned alongside the wrapped error.
func NewBumpHeap(logger *slog.Logger, device backend.Device, kind backend.HeapKind, capacity int, nodeMask uint32) (*BumpHeap, backend.Result, error) {
	raw, res, err := device.CreateDescriptorHeap(capacity, kind, 0, nodeMask)
	if err != nil {
		return nil, res, errors.Wrapf(err, "creating a bump heap of kind %s with %d slots", kind.String(), capacity)
	}

	return &BumpHeap{
		logger: logger,

		handleSize: device.DescriptorIncrementSize(kind),
		capacity:   capacity,
		start:      raw.BaseAddress(),
		raw:        raw,
	}, res, nil
}

// AllocHandle hands out the next sequential slot. Callers must check IsFull
// first: allocating from a full heap is a precondition violation and panics.
func (h *BumpHeap) AllocHandle() Handle {
	if h.IsFull() {
		panic("attempted to allocate a descriptor from a full bump heap")
	}

	slot := h.count
	h.count++

	return Handle{slot: slot}
}

// HandleAddress resolves a handle issued by this heap to its native address
func (h *BumpHeap) HandleAddress(handle Handle) backend.DescriptorAddress {
	return h.start.OffsetSlots(handle.slot, h.handleSize)
}

// IsFull returns true when every slot has been handed out since the last
// Clear
func (h *BumpHeap) IsFull() bool {
	return h.count >= h.capacity
}

// Capacity returns the slot capacity chosen at construction
func (h *BumpHeap) Capacity() int {
	return h.capacity
}

// AllocationCount returns the number of slots handed out since the last
// Clear
func (h *BumpHeap) AllocationCount() int {
	return h.count
}

// Clear releases every slot at once by rewinding the cursor. The caller must
// guarantee that no GPU work still references a handle from the prior
// period.
func (h *BumpHeap) Clear() {
	h.logger.Debug("BumpHeap::Clear")

	h.count = 0
}

// Validate performs internal consistency checks on the heap. When the
// implementation is functioning correctly, it should not be possible for
// this method to return an error.
func (h *BumpHeap) Validate() error {
	if h.count < 0 || h.count > h.capacity {
		return errors.Newf("the allocation cursor %d lies outside the heap capacity %d", h.count, h.capacity)
	}

	return nil
}

// Destroy releases the native heap. The BumpHeap must not be used afterward,
// and the caller must guarantee no GPU work still references any handle it
// issued.
func (h *BumpHeap) Destroy() {
	h.logger.Debug("BumpHeap::Destroy")

	h.raw.Destroy()
}
