package hal

import (
	"github.com/gogpu/hal/backend"
)

// CommandPool allocates and recycles command buffers for one queue
// family. Every buffer it hands out carries the pool's capability.
//
// A pool and the buffers allocated from it belong to a single
// recording goroutine; neither is safe for concurrent use. Different
// pools may be used from different goroutines freely.
type CommandPool struct {
	raw        backend.CommandPool
	device     *Device
	capability Capability
	flags      PoolFlags

	// outstanding tracks every live buffer so a pool reset can
	// invalidate them.
	outstanding []*bufferCore
}

// Capability returns the capability every buffer from this pool
// carries.
func (p *CommandPool) Capability() Capability { return p.capability }

// Flags returns the flags the pool was created with.
func (p *CommandPool) Flags() PoolFlags { return p.flags }

// AcquireCommandBuffer allocates one primary command buffer in the
// initial state with the given shot mode.
func (p *CommandPool) AcquireCommandBuffer(shot Shot) (*CommandBuffer, error) {
	return p.acquire(shot, Primary)
}

// AcquireSecondaryCommandBuffer allocates one secondary command buffer
// in the initial state with the given shot mode.
func (p *CommandPool) AcquireSecondaryCommandBuffer(shot Shot) (*CommandBuffer, error) {
	return p.acquire(shot, Secondary)
}

func (p *CommandPool) acquire(shot Shot, level Level) (*CommandBuffer, error) {
	bufs, err := p.Allocate(1, level, shot)
	if err != nil {
		return nil, err
	}
	return bufs[0], nil
}

// Allocate allocates n command buffers of the given level and shot
// mode. On error no buffers are allocated.
func (p *CommandPool) Allocate(n int, level Level, shot Shot) ([]*CommandBuffer, error) {
	raws, err := p.raw.Allocate(n, level)
	if err != nil {
		return nil, err
	}
	bufs := make([]*CommandBuffer, n)
	for i, raw := range raws {
		core := &bufferCore{
			raw:   raw,
			pool:  p,
			shot:  shot,
			level: level,
			state: StateInitial,
		}
		p.outstanding = append(p.outstanding, core)
		bufs[i] = &CommandBuffer{core: core, capability: p.capability}
	}
	return bufs, nil
}

// Reset bulk-resets the pool. Every buffer previously allocated from
// it is invalidated: the handles stay alive but any use other than
// Free returns ErrBufferInvalidated, and fresh buffers must be
// acquired. Illegal while any buffer from the pool is pending.
func (p *CommandPool) Reset() error {
	for _, core := range p.outstanding {
		core.resolvePending()
		if core.state == StatePending {
			return ErrBufferPending
		}
	}
	if err := p.raw.Reset(); err != nil {
		return err
	}
	for _, core := range p.outstanding {
		core.state = StateInvalid
	}
	p.outstanding = nil
	return nil
}

// Free returns buffers to the pool. The handles are invalidated; any
// later use returns ErrBufferInvalidated. Freeing a pending buffer is
// rejected.
func (p *CommandPool) Free(bufs ...*CommandBuffer) error {
	raws := make([]backend.CommandBuffer, len(bufs))
	for i, b := range bufs {
		if b.State() == StatePending {
			return ErrBufferPending
		}
		raws[i] = b.core.raw
	}
	p.raw.Free(raws)
	for _, b := range bufs {
		b.core.state = StateInvalid
		for i, core := range p.outstanding {
			if core == b.core {
				p.outstanding = append(p.outstanding[:i], p.outstanding[i+1:]...)
				break
			}
		}
	}
	return nil
}

// Destroy frees the pool and everything allocated from it. All
// outstanding buffer handles are invalidated.
func (p *CommandPool) Destroy() {
	p.device.raw.DestroyCommandPool(p.raw)
	for _, core := range p.outstanding {
		core.state = StateInvalid
	}
	p.outstanding = nil
}
