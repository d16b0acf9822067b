package descriptor_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/armory/backend"
	mock_backend "github.com/vkngwrapper/armory/backend/mocks"
	"github.com/vkngwrapper/armory/descriptor"
	"go.uber.org/mock/gomock"
	"golang.org/x/exp/slog"
)

func buildBumpHeap(t *testing.T, ctrl *gomock.Controller, capacity int) (*descriptor.BumpHeap, *mock_backend.MockDescriptorHeap) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	heap := mock_backend.NewMockDescriptorHeap(ctrl)
	heap.EXPECT().BaseAddress().Return(backend.DescriptorAddress{Ptr: 0x1000})

	device := mock_backend.NewMockDevice(ctrl)
	device.EXPECT().CreateDescriptorHeap(capacity, backend.HeapKindRenderTarget, backend.HeapFlags(0), uint32(0)).
		Return(heap, backend.Success, nil)
	device.EXPECT().DescriptorIncrementSize(backend.HeapKindRenderTarget).Return(32)

	bump, res, err := descriptor.NewBumpHeap(logger, device, backend.HeapKindRenderTarget, capacity, 0)
	require.NoError(t, err)
	require.Equal(t, backend.Success, res)

	return bump, heap
}

func TestBumpHeapSequentialAddresses(t *testing.T) {
	ctrl := gomock.NewController(t)
	bump, _ := buildBumpHeap(t, ctrl, 8)

	var prev backend.DescriptorAddress
	for i := 0; i < 8; i++ {
		handle := bump.AllocHandle()
		require.Equal(t, i, handle.Slot())

		addr := bump.HandleAddress(handle)
		require.Equal(t, uintptr(0x1000+i*32), addr.Ptr)
		if i > 0 {
			require.Greater(t, addr.Ptr, prev.Ptr)
		}
		prev = addr

		require.NoError(t, bump.Validate())
	}

	require.True(t, bump.IsFull())
	require.Panics(t, func() {
		bump.AllocHandle()
	})
}

func TestBumpHeapClear(t *testing.T) {
	ctrl := gomock.NewController(t)
	bump, _ := buildBumpHeap(t, ctrl, 4)

	first := bump.HandleAddress(bump.AllocHandle())
	bump.AllocHandle()
	bump.AllocHandle()
	require.Equal(t, 3, bump.AllocationCount())

	bump.Clear()
	require.Equal(t, 0, bump.AllocationCount())
	require.False(t, bump.IsFull())

	again := bump.HandleAddress(bump.AllocHandle())
	require.Equal(t, first, again)
}

func TestBumpHeapDestroy(t *testing.T) {
	ctrl := gomock.NewController(t)
	bump, heap := buildBumpHeap(t, ctrl, 4)

	heap.EXPECT().Destroy()
	bump.Destroy()
}

func TestBumpHeapCreateFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	device := mock_backend.NewMockDevice(ctrl)
	device.EXPECT().CreateDescriptorHeap(16, backend.HeapKindDepthStencil, backend.HeapFlags(0), uint32(0)).
		Return(nil, backend.ErrorOutOfDeviceMemory, backend.ErrorOutOfDeviceMemory.ToError())

	bump, res, err := descriptor.NewBumpHeap(logger, device, backend.HeapKindDepthStencil, 16, 0)
	require.Error(t, err)
	require.Equal(t, backend.ErrorOutOfDeviceMemory, res)
	require.Nil(t, bump)
}
