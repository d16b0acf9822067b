package command

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/armory/backend"
)

// strategy is the behavior behind a Pool's Strategy tag. Each variant keeps
// its own begin/finish bookkeeping so the two sets of invariants stay
// independently verifiable.
type strategy interface {
	recordingBuffer(p *Pool, insideRenderPass bool) (backend.CommandBuffer, error)
	submitSet(p *Pool) ([]backend.CommandBuffer, error)
}

// singleBufferStrategy lazily allocates exactly one buffer and begins it
// exactly once; every request, inside a render pass or not, returns that
// same buffer.
type singleBufferStrategy struct{}

func (singleBufferStrategy) recordingBuffer(p *Pool, insideRenderPass bool) (backend.CommandBuffer, error) {
	if len(p.buffers) == 0 {
		_, err := p.allocateBuffer()
		if err != nil {
			return nil, err
		}
	}

	buf := p.buffers[0]
	if p.needsBegin {
		_, err := buf.Begin(backend.CommandBufferUsageOneTimeSubmit)
		if err != nil {
			return nil, errors.Wrap(err, "beginning the primary command buffer")
		}
		p.needsBegin = false
	}

	return buf, nil
}

func (singleBufferStrategy) submitSet(p *Pool) ([]backend.CommandBuffer, error) {
	if len(p.buffers) == 0 {
		panic("requested the submission set from a command pool that never allocated a buffer")
	}

	_, err := p.buffers[0].Finish()
	if err != nil {
		return nil, errors.Wrap(err, "finishing the primary command buffer")
	}

	return p.buffers, nil
}

// perPassStrategy begins a fresh buffer at every outside-render-pass
// request, finishing the previously active one; requests made while a
// render pass is open return the buffer that has the pass open without
// touching the cursor.
type perPassStrategy struct{}

func (perPassStrategy) recordingBuffer(p *Pool, insideRenderPass bool) (backend.CommandBuffer, error) {
	// Crossing a pass boundary closes out the previously active buffer, if
	// it is still attached to the pool
	prev := p.nextIndex
	if prev > 0 {
		prev--
	}
	if prev < len(p.buffers) && p.nextIndex != 0 && !insideRenderPass {
		_, err := p.buffers[prev].Finish()
		if err != nil {
			return nil, errors.Wrapf(err, "finishing command buffer %d", prev)
		}
	}

	target := p.nextIndex
	if insideRenderPass && target > 0 {
		// The buffer holding the open pass is the one the cursor already
		// moved past. The clamp at zero aliases "nothing allocated yet" to
		// slot 0 so a first-ever call inside a pass cannot step below the
		// list.
		target--
	}

	if len(p.buffers) <= target {
		_, err := p.allocateBuffer()
		if err != nil {
			return nil, err
		}
	}

	buf := p.buffers[target]
	if !insideRenderPass {
		_, err := buf.Begin(backend.CommandBufferUsageOneTimeSubmit)
		if err != nil {
			return nil, errors.Wrapf(err, "beginning command buffer %d", target)
		}
		p.nextIndex++
	}

	return buf, nil
}

func (perPassStrategy) submitSet(p *Pool) ([]backend.CommandBuffer, error) {
	if p.nextIndex == 0 {
		panic("requested the submission set from a command pool that never began a buffer")
	}

	_, err := p.buffers[p.nextIndex-1].Finish()
	if err != nil {
		return nil, errors.Wrapf(err, "finishing command buffer %d", p.nextIndex-1)
	}

	return p.buffers[:p.nextIndex], nil
}
