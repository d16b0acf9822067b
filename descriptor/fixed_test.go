package descriptor

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/armory/backend"
	mock_backend "github.com/vkngwrapper/armory/backend/mocks"
	"go.uber.org/mock/gomock"
)

func buildFixedHeap(t *testing.T, ctrl *gomock.Controller) *fixedHeap {
	raw := mock_backend.NewMockDescriptorHeap(ctrl)
	raw.EXPECT().BaseAddress().Return(backend.DescriptorAddress{Ptr: 0x4000})

	device := mock_backend.NewMockDevice(ctrl)
	device.EXPECT().CreateDescriptorHeap(FixedHeapSize, backend.HeapKindShaderResource, backend.HeapFlags(0), uint32(0)).
		Return(raw, backend.Success, nil)
	device.EXPECT().DescriptorIncrementSize(backend.HeapKindShaderResource).Return(64)

	heap, res, err := newFixedHeap(device, backend.HeapKindShaderResource, 0, 0)
	require.NoError(t, err)
	require.Equal(t, backend.Success, res)

	return heap
}

func TestFixedHeapAscendingSlots(t *testing.T) {
	ctrl := gomock.NewController(t)
	heap := buildFixedHeap(t, ctrl)

	for i := 0; i < FixedHeapSize; i++ {
		require.False(t, heap.isFull())
		slot := heap.allocSlot()
		require.Equal(t, i, slot)
		require.Equal(t, uintptr(0x4000+i*64), heap.slotAddress(slot).Ptr)
	}

	require.True(t, heap.isFull())
	require.Equal(t, FixedHeapSize, heap.occupiedCount())
	require.Panics(t, func() {
		heap.allocSlot()
	})
}

func TestFixedHeapLowestSlotReuse(t *testing.T) {
	ctrl := gomock.NewController(t)
	heap := buildFixedHeap(t, ctrl)

	for i := 0; i < 8; i++ {
		heap.allocSlot()
	}

	heap.freeSlot(6)
	heap.freeSlot(2)
	heap.freeSlot(4)
	require.Equal(t, 5, heap.occupiedCount())

	// The scan always resolves toward the lowest free index
	require.Equal(t, 2, heap.allocSlot())
	require.Equal(t, 4, heap.allocSlot())
	require.Equal(t, 6, heap.allocSlot())
	require.Equal(t, 8, heap.allocSlot())
}
