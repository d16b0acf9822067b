package backend

// HeapKind identifies the descriptor table type a heap stores. The per-slot
// address increment is uniform within a kind but varies between kinds, so a
// heap's kind is fixed at creation.
type HeapKind uint32

const (
	HeapKindShaderResource HeapKind = iota
	HeapKindSampler
	HeapKindRenderTarget
	HeapKindDepthStencil
)

var heapKindMapping = map[HeapKind]string{
	HeapKindShaderResource: "HeapKindShaderResource",
	HeapKindSampler:        "HeapKindSampler",
	HeapKindRenderTarget:   "HeapKindRenderTarget",
	HeapKindDepthStencil:   "HeapKindDepthStencil",
}

func (k HeapKind) String() string {
	return heapKindMapping[k]
}

// HeapFlags indicate specific descriptor heap behaviors to activate
type HeapFlags uint32

const (
	// HeapShaderVisible requests a heap whose descriptors can be bound
	// directly to a shader-visible table rather than staged CPU-side
	HeapShaderVisible HeapFlags = 1 << iota
)

var heapFlagsMapping = map[HeapFlags]string{
	HeapShaderVisible: "HeapShaderVisible",
}

func (f HeapFlags) String() string {
	return heapFlagsMapping[f]
}

// DescriptorAddress is a raw CPU-side descriptor table address. Addresses
// within one heap are laid out at a fixed per-kind stride from the heap's
// base address.
type DescriptorAddress struct {
	Ptr uintptr
}

// OffsetSlots returns the address stride bytes * slots past this one.
func (a DescriptorAddress) OffsetSlots(slots, stride int) DescriptorAddress {
	return DescriptorAddress{Ptr: a.Ptr + uintptr(slots*stride)}
}

// DescriptorHeap is a native fixed-capacity backing allocation for an array
// of descriptors.
type DescriptorHeap interface {
	// BaseAddress returns the CPU address of slot 0
	BaseAddress() DescriptorAddress
	// Destroy releases the native heap. The heap (and every address minted
	// from it) must not be used afterward.
	Destroy()
}

// Device is the subset of a native device consumed by this module's
// allocators.
type Device interface {
	// CreateDescriptorHeap creates a native descriptor heap with capacity
	// slots of the provided kind. nodeMask selects the device node the heap
	// lives on, for multi-adapter setups; pass 0 otherwise.
	CreateDescriptorHeap(capacity int, kind HeapKind, flags HeapFlags, nodeMask uint32) (DescriptorHeap, Result, error)
	// DescriptorIncrementSize returns the per-slot address stride in bytes
	// for heaps of the provided kind.
	DescriptorIncrementSize(kind HeapKind) int
}

// CommandBufferLevel distinguishes directly-submittable command buffers from
// ones that can only be executed from within a primary buffer.
type CommandBufferLevel uint32

const (
	CommandBufferLevelPrimary CommandBufferLevel = iota
	CommandBufferLevelSecondary
)

var commandBufferLevelMapping = map[CommandBufferLevel]string{
	CommandBufferLevelPrimary:   "CommandBufferLevelPrimary",
	CommandBufferLevelSecondary: "CommandBufferLevelSecondary",
}

func (l CommandBufferLevel) String() string {
	return commandBufferLevelMapping[l]
}

// CommandBufferUsageFlags indicate how a command buffer's recording will be
// used
type CommandBufferUsageFlags uint32

const (
	// CommandBufferUsageOneTimeSubmit promises the recorded content will be
	// submitted exactly once before the buffer is reset or freed
	CommandBufferUsageOneTimeSubmit CommandBufferUsageFlags = 1 << iota
)

var commandBufferUsageFlagsMapping = map[CommandBufferUsageFlags]string{
	CommandBufferUsageOneTimeSubmit: "CommandBufferUsageOneTimeSubmit",
}

func (f CommandBufferUsageFlags) String() string {
	return commandBufferUsageFlagsMapping[f]
}

// CommandBuffer is a native recording target. Its lifecycle is
// allocated -> begun -> finished; a finished buffer may be submitted and
// must not record further commands until its allocator is reset.
type CommandBuffer interface {
	// Begin moves the buffer into the recording state
	Begin(flags CommandBufferUsageFlags) (Result, error)
	// Finish closes recording, leaving the buffer ready for submission
	Finish() (Result, error)
}

// CommandAllocator is a native pool of backing storage for command buffers.
// Individual buffers are never freed back to it; reclaiming their storage is
// a whole-allocator Reset.
type CommandAllocator interface {
	// AllocateCommandBuffer carves one command buffer out of the allocator
	AllocateCommandBuffer(level CommandBufferLevel) (CommandBuffer, Result, error)
	// Reset reclaims the storage of every buffer allocated from this
	// allocator, invalidating their recorded content. When releaseResources
	// is true the backing memory is returned to the system as well.
	Reset(releaseResources bool) (Result, error)
	// Destroy releases the allocator and every buffer carved from it
	Destroy()
}
