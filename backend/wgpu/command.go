package wgpu

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gputypes"
	whal "github.com/gogpu/wgpu/hal"

	"github.com/gogpu/hal/backend"
)

// commandPool hands out recording containers. wgpu encoders are
// single-use, so the pool has no arena to manage.
type commandPool struct {
	live []*commandBuffer
}

func (p *commandPool) Reset() error {
	for _, cb := range p.live {
		cb.ops = nil
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
		cb.ops = nil
		for i, live := range p.live {
			if live == cb {
				p.live = append(p.live[:i], p.live[i+1:]...)
				break
			}
		}
	}
}

// op is one recorded operation, encoded at submit time.
type op func(d *device, enc whal.CommandEncoder, st *encodeState) error

// encodeState threads the open render pass through encoding.
type encodeState struct {
	pass       whal.RenderPassEncoder
	passFormat gputypes.TextureFormat
}

// commandBuffer records operations and replays them into a fresh wgpu
// command encoder on every submission. Recording validation lives in
// the hal wrapper; multishot buffers re-encode per submit, which is
// what keeps them resubmittable on an API with single-use encoders.
type commandBuffer struct {
	level backend.Level
	ops   []op
}

func (cb *commandBuffer) Begin(flags backend.CommandBufferFlags, inh backend.InheritanceInfo) error {
	cb.ops = cb.ops[:0]
	return nil
}

func (cb *commandBuffer) Finish() error { return nil }

func (cb *commandBuffer) Reset() error {
	cb.ops = nil
	return nil
}

func (cb *commandBuffer) ExecuteCommands(secondaries []backend.CommandBuffer) error {
	for _, sec := range secondaries {
		cb.ops = append(cb.ops, sec.(*commandBuffer).ops...)
	}
	return nil
}

func (cb *commandBuffer) CopyBuffer(src, dst backend.Buffer, regions []backend.BufferCopy) error {
	s, d := src.(*buffer), dst.(*buffer)
	copies := make([]whal.BufferCopy, len(regions))
	for i, r := range regions {
		copies[i] = whal.BufferCopy{SrcOffset: r.SrcOffset, DstOffset: r.DstOffset, Size: r.Size}
	}
	cb.ops = append(cb.ops, func(dev *device, enc whal.CommandEncoder, st *encodeState) error {
		enc.CopyBufferToBuffer(s.raw, d.raw, copies)
		return nil
	})
	return nil
}

func (cb *commandBuffer) FillBuffer(dst backend.Buffer, offset, size uint64, value uint32) error {
	d := dst.(*buffer)
	pattern := make([]byte, size)
	for i := uint64(0); i+4 <= size; i += 4 {
		binary.LittleEndian.PutUint32(pattern[i:], value)
	}
	cb.ops = append(cb.ops, func(dev *device, enc whal.CommandEncoder, st *encodeState) error {
		// No fill primitive on this API: stage the pattern and copy.
		staging, err := dev.raw.CreateBuffer(&whal.BufferDescriptor{
			Label: "hal_fill_staging",
			Size:  size,
			Usage: gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("wgpu: fill staging buffer: %w", err)
		}
		dev.rawQueue.WriteBuffer(staging, 0, pattern)
		enc.CopyBufferToBuffer(staging, d.raw, []whal.BufferCopy{{SrcOffset: 0, DstOffset: offset, Size: size}})
		// Freed after the submission completes.
		dev.queue.retire(staging)
		return nil
	})
	return nil
}

func (cb *commandBuffer) CopyBufferToImage(src backend.Buffer, dst backend.Image, regions []backend.BufferImageCopy) error {
	s, d := src.(*buffer), dst.(*texture)
	copies := make([]whal.BufferTextureCopy, len(regions))
	for i, r := range regions {
		rowLen := r.RowLength
		if rowLen == 0 {
			rowLen = r.ImageExtent.Width
		}
		copies[i] = whal.BufferTextureCopy{
			BufferLayout: whal.ImageDataLayout{
				Offset:       r.BufferOffset,
				BytesPerRow:  rowLen * 4,
				RowsPerImage: r.ImageExtent.Height,
			},
			TextureBase: whal.ImageCopyTexture{Texture: d.raw, MipLevel: 0},
			Size:        whal.Extent3D{Width: r.ImageExtent.Width, Height: r.ImageExtent.Height, DepthOrArrayLayers: 1},
		}
	}
	cb.ops = append(cb.ops, func(dev *device, enc whal.CommandEncoder, st *encodeState) error {
		enc.CopyBufferToTexture(s.raw, d.raw, copies)
		return nil
	})
	return nil
}

func (cb *commandBuffer) Dispatch(x, y, z uint32) error {
	cb.ops = append(cb.ops, func(dev *device, enc whal.CommandEncoder, st *encodeState) error {
		if err := dev.ensurePipelines(); err != nil {
			return err
		}
		pass := enc.BeginComputePass(&whal.ComputePassDescriptor{Label: "hal_dispatch"})
		pass.SetPipeline(dev.dispatch.pipeline)
		pass.SetBindGroup(0, dev.dispatch.bindGroup, nil)
		pass.Dispatch(x, y, z)
		pass.End()
		return nil
	})
	return nil
}

func (cb *commandBuffer) BeginRenderPass(target backend.Image, area backend.Rect) error {
	var view whal.TextureView
	var format gputypes.TextureFormat
	switch t := target.(type) {
	case *texture:
		view, format = t.view, t.format
	case *swapchainImage:
		view, format = t.tex.view, t.tex.format
	default:
		return fmt.Errorf("wgpu: foreign render target %T: %w", target, backend.ErrCreation)
	}
	cb.ops = append(cb.ops, func(dev *device, enc whal.CommandEncoder, st *encodeState) error {
		st.pass = enc.BeginRenderPass(&whal.RenderPassDescriptor{
			Label: "hal_render_pass",
			ColorAttachments: []whal.RenderPassColorAttachment{{
				View:       view,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: gputypes.Color{},
			}},
		})
		st.passFormat = format
		return nil
	})
	return nil
}

func (cb *commandBuffer) EndRenderPass() error {
	cb.ops = append(cb.ops, func(dev *device, enc whal.CommandEncoder, st *encodeState) error {
		if st.pass != nil {
			st.pass.End()
			st.pass = nil
		}
		return nil
	})
	return nil
}

func (cb *commandBuffer) Draw(vertexCount, instanceCount uint32) error {
	cb.ops = append(cb.ops, func(dev *device, enc whal.CommandEncoder, st *encodeState) error {
		if st.pass == nil || vertexCount == 0 || instanceCount == 0 {
			return nil
		}
		pipeline, err := dev.fillPipelineFor(st.passFormat)
		if err != nil {
			return err
		}
		st.pass.SetPipeline(pipeline)
		st.pass.Draw(3, instanceCount, 0, 0)
		return nil
	})
	return nil
}

// SetViewport is accepted but not encoded: the render pass encoder of
// this API offers no dynamic viewport, so draws cover the full target.
func (cb *commandBuffer) SetViewport(v backend.Rect) error {
	return nil
}

// encode replays the recorded ops into one finished wgpu command
// buffer.
func (cb *commandBuffer) encode(dev *device, label string) (whal.CommandBuffer, error) {
	enc, err := dev.raw.CreateCommandEncoder(&whal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := enc.BeginEncoding(label); err != nil {
		return nil, fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	var st encodeState
	for _, o := range cb.ops {
		if err := o(dev, enc, &st); err != nil {
			enc.DiscardEncoding()
			return nil, err
		}
	}
	if st.pass != nil {
		st.pass.End()
	}
	out, err := enc.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("wgpu: end encoding: %w", err)
	}
	return out, nil
}
