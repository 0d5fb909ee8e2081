package soft

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/hal/backend"
)

// execState is the mutable replay state threaded through one command
// buffer execution.
type execState struct {
	renderTarget *imageRes
	renderArea   backend.Rect
	viewport     backend.Rect
}

// command is one recorded operation, replayed on the queue worker.
type command interface {
	execute(st *execState) error
}

type cmdCopyBuffer struct {
	src, dst *bufferRes
	regions  []backend.BufferCopy
}

func (c *cmdCopyBuffer) execute(st *execState) error {
	for _, r := range c.regions {
		if !c.src.sparse && r.SrcOffset+r.Size > c.src.size {
			return fmt.Errorf("soft: copy reads past source buffer: %w", backend.ErrOutOfMemory)
		}
		if !c.dst.sparse && r.DstOffset+r.Size > c.dst.size {
			return fmt.Errorf("soft: copy writes past destination buffer: %w", backend.ErrOutOfMemory)
		}
		tmp := make([]byte, r.Size)
		c.src.read(r.SrcOffset, tmp)
		c.dst.write(r.DstOffset, tmp)
	}
	return nil
}

type cmdFillBuffer struct {
	dst    *bufferRes
	offset uint64
	size   uint64
	value  uint32
}

func (c *cmdFillBuffer) execute(st *execState) error {
	if !c.dst.sparse && c.offset+c.size > c.dst.size {
		return fmt.Errorf("soft: fill writes past buffer: %w", backend.ErrOutOfMemory)
	}
	tmp := make([]byte, c.size)
	for i := uint64(0); i+4 <= c.size; i += 4 {
		binary.LittleEndian.PutUint32(tmp[i:], c.value)
	}
	c.dst.write(c.offset, tmp)
	return nil
}

type cmdCopyBufferToImage struct {
	src     *bufferRes
	dst     *imageRes
	regions []backend.BufferImageCopy
}

func (c *cmdCopyBufferToImage) execute(st *execState) error {
	dstStride := int(c.dst.extent.Width) * 4
	for _, r := range c.regions {
		rowLen := int(r.RowLength)
		if rowLen == 0 {
			rowLen = int(r.ImageExtent.Width)
		}
		srcStride := rowLen * 4
		rowBytes := int(r.ImageExtent.Width) * 4
		row := make([]byte, rowBytes)
		for y := 0; y < int(r.ImageExtent.Height); y++ {
			c.src.read(r.BufferOffset+uint64(y*srcStride), row)
			dy := int(r.ImageOffsetY) + y
			if dy < 0 || dy >= int(c.dst.extent.Height) {
				continue
			}
			// Clip the row to the image width the way Y is clipped, so
			// out-of-bounds regions never bleed into the next row.
			x0 := int(r.ImageOffsetX)
			src := row
			if x0 < 0 {
				src = src[-x0*4:]
				x0 = 0
			}
			w := len(src) / 4
			if rem := int(c.dst.extent.Width) - x0; w > rem {
				w = rem
			}
			if w <= 0 {
				continue
			}
			copy(c.dst.pix[dy*dstStride+x0*4:], src[:w*4])
		}
	}
	return nil
}

type cmdDispatch struct {
	x, y, z uint32
}

// Dispatches have no shader to run; the command participates in
// ordering and validation only.
func (c *cmdDispatch) execute(st *execState) error { return nil }

type cmdBeginRenderPass struct {
	target *imageRes
	area   backend.Rect
}

func (c *cmdBeginRenderPass) execute(st *execState) error {
	st.renderTarget = c.target
	st.renderArea = c.area
	st.viewport = c.area
	// Load op: clear the render area.
	c.target.fill(c.area, 0, 0, 0, 0)
	return nil
}

type cmdEndRenderPass struct{}

func (c *cmdEndRenderPass) execute(st *execState) error {
	st.renderTarget = nil
	return nil
}

type cmdSetViewport struct {
	viewport backend.Rect
}

func (c *cmdSetViewport) execute(st *execState) error {
	st.viewport = c.viewport
	return nil
}

type cmdDraw struct {
	vertexCount, instanceCount uint32
}

// Draws fill the active viewport with opaque white. Good enough to
// observe that geometry "reached" a region, which is all the reference
// backend promises.
func (c *cmdDraw) execute(st *execState) error {
	if st.renderTarget == nil || c.vertexCount == 0 || c.instanceCount == 0 {
		return nil
	}
	st.renderTarget.fill(st.viewport, 0xff, 0xff, 0xff, 0xff)
	return nil
}

// commandBuffer is the raw recording container. Lifecycle validation
// happens in the wrapper layer; the raw buffer just accumulates
// commands.
type commandBuffer struct {
	level backend.Level
	flags backend.CommandBufferFlags
	cmds  []command
}

func (cb *commandBuffer) Begin(flags backend.CommandBufferFlags, inh backend.InheritanceInfo) error {
	cb.flags = flags
	cb.cmds = cb.cmds[:0]
	return nil
}

func (cb *commandBuffer) Finish() error { return nil }

func (cb *commandBuffer) Reset() error {
	cb.cmds = nil
	cb.flags = 0
	return nil
}

func (cb *commandBuffer) ExecuteCommands(secondaries []backend.CommandBuffer) error {
	for _, sec := range secondaries {
		// Snapshot the secondary's commands as recorded now; a later
		// reset of the secondary must not affect this primary.
		cb.cmds = append(cb.cmds, sec.(*commandBuffer).cmds...)
	}
	return nil
}

func (cb *commandBuffer) CopyBuffer(src, dst backend.Buffer, regions []backend.BufferCopy) error {
	cb.cmds = append(cb.cmds, &cmdCopyBuffer{
		src:     src.(*bufferRes),
		dst:     dst.(*bufferRes),
		regions: append([]backend.BufferCopy(nil), regions...),
	})
	return nil
}

func (cb *commandBuffer) FillBuffer(dst backend.Buffer, offset, size uint64, value uint32) error {
	cb.cmds = append(cb.cmds, &cmdFillBuffer{
		dst:    dst.(*bufferRes),
		offset: offset,
		size:   size,
		value:  value,
	})
	return nil
}

func (cb *commandBuffer) CopyBufferToImage(src backend.Buffer, dst backend.Image, regions []backend.BufferImageCopy) error {
	cb.cmds = append(cb.cmds, &cmdCopyBufferToImage{
		src:     src.(*bufferRes),
		dst:     imageOf(dst),
		regions: append([]backend.BufferImageCopy(nil), regions...),
	})
	return nil
}

func (cb *commandBuffer) Dispatch(x, y, z uint32) error {
	cb.cmds = append(cb.cmds, &cmdDispatch{x: x, y: y, z: z})
	return nil
}

func (cb *commandBuffer) BeginRenderPass(target backend.Image, area backend.Rect) error {
	cb.cmds = append(cb.cmds, &cmdBeginRenderPass{target: imageOf(target), area: area})
	return nil
}

func (cb *commandBuffer) EndRenderPass() error {
	cb.cmds = append(cb.cmds, &cmdEndRenderPass{})
	return nil
}

func (cb *commandBuffer) Draw(vertexCount, instanceCount uint32) error {
	cb.cmds = append(cb.cmds, &cmdDraw{vertexCount: vertexCount, instanceCount: instanceCount})
	return nil
}

func (cb *commandBuffer) SetViewport(v backend.Rect) error {
	cb.cmds = append(cb.cmds, &cmdSetViewport{viewport: v})
	return nil
}

// imageOf unwraps a backend image to its pixel storage. Swapchain
// images present themselves as images too.
func imageOf(img backend.Image) *imageRes {
	switch t := img.(type) {
	case *imageRes:
		return t
	case *swapchainImage:
		return t.res
	}
	panic(fmt.Sprintf("soft: foreign image type %T", img))
}
