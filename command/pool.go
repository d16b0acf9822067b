package command

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/armory"
	"github.com/vkngwrapper/armory/backend"
	"golang.org/x/exp/slog"
)

// Strategy selects how a Pool maps recording requests onto underlying
// command buffers.
type Strategy uint32

const (
	// StrategySingleBuffer records everything, render-pass content included,
	// into one primary buffer that is begun exactly once
	StrategySingleBuffer Strategy = iota
	// StrategyPerPass begins a fresh primary buffer at every render-pass
	// boundary, finishing the previous one
	StrategyPerPass
)

var strategyMapping = map[Strategy]string{
	StrategySingleBuffer: "StrategySingleBuffer",
	StrategyPerPass:      "StrategyPerPass",
}

func (s Strategy) String() string {
	return strategyMapping[s]
}

// Pool owns a native command allocator and a growable sequence of command
// buffers carved from it, amortizing buffer allocation across frames.
// Buffers are created lazily, reused by index after Reset, and only released
// when the whole pool is destroyed.
//
// A Pool is exclusively owned by one goroutine or frame context and performs
// no internal synchronization. Waiting for the GPU to finish with the
// buffers before Reset or Destroy is the caller's responsibility.
type Pool struct {
	logger *slog.Logger

	allocator backend.CommandAllocator
	buffers   []backend.CommandBuffer
	strategy  strategy

	// nextIndex is the allocation cursor: the number of buffers begun so far
	// this period under StrategyPerPass
	nextIndex int
	// needsBegin arms the one-time Begin under StrategySingleBuffer
	needsBegin bool
}

// NewPool creates a Pool over the provided native allocator. The Strategy is
// fixed for the life of the pool.
func NewPool(logger *slog.Logger, allocator backend.CommandAllocator, strat Strategy) *Pool {
	p := &Pool{
		logger: logger,

		allocator:  allocator,
		needsBegin: true,
	}

	switch strat {
	case StrategySingleBuffer:
		p.strategy = singleBufferStrategy{}
	case StrategyPerPass:
		p.strategy = perPassStrategy{}
	default:
		panic("attempted to create a command pool with an unknown strategy")
	}

	return p
}

// RecordingBuffer returns the buffer commands should currently be recorded
// into, allocating and beginning buffers as the pool's Strategy dictates.
// insideRenderPass must be true when the caller is recording content for a
// render pass that is already open; under StrategyPerPass such calls return
// the buffer that has the pass open rather than advancing to a new one.
func (p *Pool) RecordingBuffer(insideRenderPass bool) (backend.CommandBuffer, error) {
	buf, err := p.strategy.recordingBuffer(p, insideRenderPass)
	if err != nil {
		return nil, err
	}
	armory.DebugValidate(p)

	return buf, nil
}

// SubmitSet finishes the currently active buffer and returns the buffers
// ready for submission in allocation order. Calling this before any buffer
// was ever begun is a precondition violation and panics.
//
// The active buffer is finished exactly once; SubmitSet must not be called
// twice without an intervening Reset.
func (p *Pool) SubmitSet() ([]backend.CommandBuffer, error) {
	p.logger.Debug("Pool::SubmitSet")

	return p.strategy.submitSet(p)
}

// Prewarm ensures at least one buffer exists without beginning it, so the
// first RecordingBuffer call of a frame does not pay the allocation.
func (p *Pool) Prewarm() error {
	p.logger.Debug("Pool::Prewarm")

	if len(p.buffers) != 0 {
		return nil
	}

	_, err := p.allocateBuffer()
	return err
}

// DetachBuffer removes and returns the buffer at position 0, lending it out
// for recording tracked outside this pool. Pool bookkeeping is not adjusted;
// the caller must ReturnBuffer it before the next SubmitSet or Reset.
func (p *Pool) DetachBuffer() backend.CommandBuffer {
	buf := p.buffers[0]
	p.buffers = p.buffers[1:]

	return buf
}

// ReturnBuffer reinserts a buffer previously lent out via DetachBuffer at
// position 0.
func (p *Pool) ReturnBuffer(buf backend.CommandBuffer) {
	p.buffers = append([]backend.CommandBuffer{buf}, p.buffers...)
}

// Reset resets the native allocator, invalidating all previously recorded
// content, rewinds the cursor and re-arms the one-time begin flag. The
// buffers themselves are retained and will be reused by index. The caller
// must guarantee no GPU work still reads any buffer owned by this pool.
func (p *Pool) Reset(releaseResources bool) (backend.Result, error) {
	p.logger.Debug("Pool::Reset")

	res, err := p.allocator.Reset(releaseResources)
	if err != nil {
		return res, errors.Wrap(err, "resetting the native command allocator")
	}

	p.nextIndex = 0
	p.needsBegin = true

	return res, nil
}

// Validate performs internal consistency checks on the pool. When the
// implementation is functioning correctly, it should not be possible for
// this method to return an error.
func (p *Pool) Validate() error {
	if p.nextIndex < 0 || p.nextIndex > len(p.buffers) {
		return errors.Newf("the allocation cursor %d lies outside the buffer list of length %d", p.nextIndex, len(p.buffers))
	}

	return nil
}

// Destroy releases the native allocator; every buffer the pool owned
// becomes invalid. The caller must guarantee all GPU work using them has
// completed.
func (p *Pool) Destroy() {
	p.logger.Debug("Pool::Destroy")

	p.allocator.Destroy()
	p.buffers = nil
}

func (p *Pool) allocateBuffer() (backend.CommandBuffer, error) {
	buf, res, err := p.allocator.AllocateCommandBuffer(backend.CommandBufferLevelPrimary)
	if err != nil {
		wrapped := errors.Wrapf(err, "allocating a primary command buffer: %s", res.String())
		return nil, errors.Mark(wrapped, armory.BufferAllocateFailedError)
	}
	p.buffers = append(p.buffers, buf)

	return buf, nil
}
