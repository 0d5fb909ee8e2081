package soft

import (
	"image"
	"sort"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/hal/backend"
)

// memoryRes is a host allocation sparse resources bind into.
type memoryRes struct {
	data []byte
}

func (m *memoryRes) Size() uint64 { return uint64(len(m.data)) }

// pageBind is one applied sparse bind: resource range → memory range.
type pageBind struct {
	resourceOffset uint64
	size           uint64
	memory         *memoryRes
	memoryOffset   uint64
}

// bufferRes is a buffer resource. Dense buffers own their bytes;
// sparse buffers resolve accesses through their bind list. Reads of
// unbound sparse ranges yield zeros and writes to them are dropped,
// mirroring the undefined-content contract of real devices in the most
// forgiving way.
type bufferRes struct {
	size   uint64
	sparse bool
	data   []byte

	mu    sync.Mutex
	binds []pageBind // sorted by resourceOffset, non-overlapping
}

func (b *bufferRes) Size() uint64 { return b.size }

// applyBinds installs sparse binds, replacing any overlapping ranges.
// A nil memory unbinds the range.
func (b *bufferRes) applyBinds(binds []backend.SparseBind) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sb := range binds {
		kept := b.binds[:0]
		for _, old := range b.binds {
			if old.resourceOffset+old.size <= sb.ResourceOffset ||
				old.resourceOffset >= sb.ResourceOffset+sb.Size {
				kept = append(kept, old)
			}
		}
		b.binds = kept
		if sb.Memory != nil {
			b.binds = append(b.binds, pageBind{
				resourceOffset: sb.ResourceOffset,
				size:           sb.Size,
				memory:         sb.Memory.(*memoryRes),
				memoryOffset:   sb.MemoryOffset,
			})
		}
	}
	sort.Slice(b.binds, func(i, j int) bool {
		return b.binds[i].resourceOffset < b.binds[j].resourceOffset
	})
}

// read copies len(dst) bytes starting at offset into dst.
func (b *bufferRes) read(offset uint64, dst []byte) {
	if !b.sparse {
		copy(dst, b.data[offset:])
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range dst {
		dst[i] = 0
	}
	b.walkBinds(offset, uint64(len(dst)), func(mem []byte, at uint64, n uint64) {
		copy(dst[at:at+n], mem)
	})
}

// write copies src into the buffer starting at offset.
func (b *bufferRes) write(offset uint64, src []byte) {
	if !b.sparse {
		copy(b.data[offset:], src)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.walkBinds(offset, uint64(len(src)), func(mem []byte, at uint64, n uint64) {
		copy(mem, src[at:at+n])
	})
}

// walkBinds visits every bound sub-range of [offset, offset+size),
// handing the visitor the backing memory slice and the position of the
// sub-range relative to offset.
func (b *bufferRes) walkBinds(offset, size uint64, visit func(mem []byte, at, n uint64)) {
	end := offset + size
	for _, bind := range b.binds {
		bStart, bEnd := bind.resourceOffset, bind.resourceOffset+bind.size
		if bEnd <= offset || bStart >= end {
			continue
		}
		lo, hi := max(offset, bStart), min(end, bEnd)
		memOff := bind.memoryOffset + (lo - bStart)
		visit(bind.memory.data[memOff:memOff+(hi-lo)], lo-offset, hi-lo)
	}
}

// imageRes is a two-dimensional image stored as tightly packed 4-byte
// pixels. Sparse images share the bind machinery of buffers over the
// flattened pixel storage.
type imageRes struct {
	extent backend.Extent
	format gputypes.TextureFormat
	pix    []byte
}

func newImage(extent backend.Extent, format gputypes.TextureFormat) *imageRes {
	return &imageRes{
		extent: extent,
		format: format,
		pix:    make([]byte, int(extent.Width)*int(extent.Height)*4),
	}
}

func (im *imageRes) Extent() backend.Extent         { return im.extent }
func (im *imageRes) Format() gputypes.TextureFormat { return im.format }

// rgba exposes the pixel storage as an image.RGBA sharing memory, for
// blitting.
func (im *imageRes) rgba() *image.RGBA {
	return &image.RGBA{
		Pix:    im.pix,
		Stride: int(im.extent.Width) * 4,
		Rect:   image.Rect(0, 0, int(im.extent.Width), int(im.extent.Height)),
	}
}

// fill sets every pixel inside the clipped rectangle to the given
// RGBA value.
func (im *imageRes) fill(area backend.Rect, r, g, b, a uint8) {
	x0, y0 := int(area.X), int(area.Y)
	x1, y1 := x0+int(area.Width), y0+int(area.Height)
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > int(im.extent.Width) {
		x1 = int(im.extent.Width)
	}
	if y1 > int(im.extent.Height) {
		y1 = int(im.extent.Height)
	}
	stride := int(im.extent.Width) * 4
	for y := y0; y < y1; y++ {
		row := im.pix[y*stride:]
		for x := x0; x < x1; x++ {
			p := row[x*4 : x*4+4]
			p[0], p[1], p[2], p[3] = r, g, b, a
		}
	}
}

// ReadBuffer copies len(dst) bytes of a soft buffer into dst, starting
// at offset. Buffers live in host memory, so this is the backend's
// map-for-read equivalent; the caller synchronizes against queue work
// with a fence first.
func ReadBuffer(b backend.Buffer, offset uint64, dst []byte) {
	b.(*bufferRes).read(offset, dst)
}

// WriteBuffer copies src into a soft buffer at offset, the
// map-for-write counterpart of ReadBuffer.
func WriteBuffer(b backend.Buffer, offset uint64, src []byte) {
	b.(*bufferRes).write(offset, src)
}
