package descriptor_test

import (
	"io"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/armory"
	"github.com/vkngwrapper/armory/backend"
	mock_backend "github.com/vkngwrapper/armory/backend/mocks"
	"github.com/vkngwrapper/armory/descriptor"
	"go.uber.org/mock/gomock"
	"golang.org/x/exp/slog"
)

func buildPool(ctrl *gomock.Controller, expectedHeaps int) (*descriptor.Pool, []*mock_backend.MockDescriptorHeap) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	device := mock_backend.NewMockDevice(ctrl)

	heaps := make([]*mock_backend.MockDescriptorHeap, 0, expectedHeaps)
	for i := 0; i < expectedHeaps; i++ {
		heap := mock_backend.NewMockDescriptorHeap(ctrl)
		heap.EXPECT().BaseAddress().Return(backend.DescriptorAddress{Ptr: uintptr(0x10000 * (i + 1))})
		heaps = append(heaps, heap)

		device.EXPECT().CreateDescriptorHeap(descriptor.FixedHeapSize, backend.HeapKindShaderResource, backend.HeapFlags(0), uint32(0)).
			Return(heap, backend.Success, nil)
		device.EXPECT().DescriptorIncrementSize(backend.HeapKindShaderResource).Return(32)
	}

	return descriptor.NewPool(logger, device, backend.HeapKindShaderResource, 0, 0), heaps
}

func TestPoolSingleHeapAscending(t *testing.T) {
	ctrl := gomock.NewController(t)
	pool, _ := buildPool(ctrl, 1)

	for i := 0; i < descriptor.FixedHeapSize; i++ {
		handle, res, err := pool.AllocHandle()
		require.NoError(t, err)
		require.Equal(t, backend.Success, res)
		require.Equal(t, 0, handle.HeapIndex())
		require.Equal(t, i, handle.Slot())

		require.NoError(t, pool.Validate())
	}

	require.Equal(t, 1, pool.HeapCount())
	require.Equal(t, descriptor.FixedHeapSize, pool.OccupiedSlots(0))
}

func TestPoolGrowth(t *testing.T) {
	ctrl := gomock.NewController(t)

	const fullHeaps = 2
	pool, _ := buildPool(ctrl, fullHeaps+1)

	// Fill two heaps completely, then allocate one handle more
	for i := 0; i < descriptor.FixedHeapSize*fullHeaps+1; i++ {
		_, _, err := pool.AllocHandle()
		require.NoError(t, err)
	}

	require.Equal(t, fullHeaps+1, pool.HeapCount())
	require.Equal(t, descriptor.FixedHeapSize, pool.OccupiedSlots(0))
	require.Equal(t, descriptor.FixedHeapSize, pool.OccupiedSlots(1))
	require.Equal(t, 1, pool.OccupiedSlots(fullHeaps))
	require.NoError(t, pool.Validate())

	var stats armory.Statistics
	stats.Clear()
	pool.AddStatistics(&stats)
	require.Equal(t, armory.Statistics{
		HeapCount:       fullHeaps + 1,
		SlotCount:       descriptor.FixedHeapSize * (fullHeaps + 1),
		AllocationCount: descriptor.FixedHeapSize*fullHeaps + 1,
	}, stats)
}

func TestPoolResolveAddress(t *testing.T) {
	ctrl := gomock.NewController(t)
	pool, _ := buildPool(ctrl, 2)

	var last descriptor.Handle
	for i := 0; i < descriptor.FixedHeapSize+3; i++ {
		handle, _, err := pool.AllocHandle()
		require.NoError(t, err)
		last = handle
	}

	// Slot 2 on the second heap: base 0x20000, stride 32
	require.Equal(t, 1, last.HeapIndex())
	require.Equal(t, 2, last.Slot())
	require.Equal(t, uintptr(0x20000+2*32), pool.ResolveAddress(last).Ptr)
}

func TestPoolCreateFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	device := mock_backend.NewMockDevice(ctrl)
	device.EXPECT().CreateDescriptorHeap(descriptor.FixedHeapSize, backend.HeapKindSampler, backend.HeapFlags(0), uint32(0)).
		Return(nil, backend.ErrorOutOfHostMemory, backend.ErrorOutOfHostMemory.ToError())

	pool := descriptor.NewPool(logger, device, backend.HeapKindSampler, 0, 0)

	_, res, err := pool.AllocHandle()
	require.Error(t, err)
	require.Equal(t, backend.ErrorOutOfHostMemory, res)
	require.True(t, errors.Is(err, armory.HeapCreateFailedError))

	// The failed creation must not leave a phantom heap behind
	require.Equal(t, 0, pool.HeapCount())
	require.NoError(t, pool.Validate())
}

func TestPoolStatsString(t *testing.T) {
	ctrl := gomock.NewController(t)
	pool, _ := buildPool(ctrl, 1)

	_, _, err := pool.AllocHandle()
	require.NoError(t, err)
	_, _, err = pool.AllocHandle()
	require.NoError(t, err)

	str := pool.BuildStatsString()
	require.Contains(t, str, `"Kind":"HeapKindShaderResource"`)
	require.Contains(t, str, `"HeapCount":1`)
	require.Contains(t, str, `"OccupiedSlots":2`)
	require.Contains(t, str, `"Full":false`)
}

func TestPoolDestroy(t *testing.T) {
	ctrl := gomock.NewController(t)
	pool, heaps := buildPool(ctrl, 2)

	for i := 0; i < descriptor.FixedHeapSize+1; i++ {
		_, _, err := pool.AllocHandle()
		require.NoError(t, err)
	}

	for _, heap := range heaps {
		heap.EXPECT().Destroy()
	}
	pool.Destroy()
	require.Equal(t, 0, pool.HeapCount())
}
