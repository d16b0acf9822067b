package descriptor

// Handle is an opaque reference to one descriptor slot handed out by an
// allocator in this package. It identifies the slot by (heap index, slot
// index) rather than by raw address so that slot-occupancy invariants stay
// checkable; the concrete native address is computed only when the handle is
// resolved at the backend boundary.
//
// A Handle stays valid until its owning allocator is cleared or destroyed.
// It must not be resolved after that point.
type Handle struct {
	heap int
	slot int
}

// HeapIndex returns the index of the owning heap within the allocator that
// issued this handle. It is always 0 for handles issued by a BumpHeap.
func (h Handle) HeapIndex() int {
	return h.heap
}

// Slot returns the slot index within the owning heap
func (h Handle) Slot() int {
	return h.slot
}
