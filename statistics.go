package armory

// Statistics describes the current footprint of a descriptor heap pool
type Statistics struct {
	// HeapCount is the number of native heaps the pool has created
	HeapCount int
	// SlotCount is the total descriptor capacity across all heaps
	SlotCount int
	// AllocationCount is the number of descriptor slots currently occupied
	AllocationCount int
}

func (s *Statistics) Clear() {
	s.HeapCount = 0
	s.SlotCount = 0
	s.AllocationCount = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.HeapCount += other.HeapCount
	s.SlotCount += other.SlotCount
	s.AllocationCount += other.AllocationCount
}
