package armory

import "github.com/pkg/errors"

// HeapCreateFailedError is the error wrapped by descriptor allocators when
// the native backend fails to create a descriptor heap
var HeapCreateFailedError error = errors.New("failed to create a native descriptor heap")

// BufferAllocateFailedError is the error wrapped by the command-buffer pool
// when the native allocator fails to carve out a new command buffer
var BufferAllocateFailedError error = errors.New("failed to allocate a native command buffer")
