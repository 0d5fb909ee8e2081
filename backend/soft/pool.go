package soft

import (
	"github.com/gogpu/hal/backend"
)

// commandPool hands out command buffers. Host memory has no real pool
// arena, so allocation is per buffer; the pool tracks what it handed
// out to support bulk reset.
type commandPool struct {
	flags backend.PoolFlags
	live  []*commandBuffer
}

func (p *commandPool) Reset() error {
	for _, cb := range p.live {
		cb.cmds = nil
		cb.flags = 0
	}
	return nil
}

func (p *commandPool) Allocate(n int, level backend.Level) ([]backend.CommandBuffer, error) {
	out := make([]backend.CommandBuffer, n)
	for i := range out {
		cb := &commandBuffer{level: level}
		p.live = append(p.live, cb)
		out[i] = cb
	}
	return out, nil
}

func (p *commandPool) Free(bufs []backend.CommandBuffer) {
	for _, b := range bufs {
		cb := b.(*commandBuffer)
		cb.cmds = nil
		for i, live := range p.live {
			if live == cb {
				p.live = append(p.live[:i], p.live[i+1:]...)
				break
			}
		}
	}
}
