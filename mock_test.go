package hal

import (
	"time"

	"github.com/gogpu/hal/backend"
)

// Raw-layer fakes. They record calls and never fail, so the tests
// observe exactly what the typed wrappers validate and forward.

type fakeRawBuffer struct {
	begun    int
	flags    backend.CommandBufferFlags
	inh      backend.InheritanceInfo
	finished int
	resets   int
	ops      int
	executed [][]backend.CommandBuffer
}

func (f *fakeRawBuffer) Begin(flags backend.CommandBufferFlags, inh backend.InheritanceInfo) error {
	f.begun++
	f.flags = flags
	f.inh = inh
	return nil
}
func (f *fakeRawBuffer) Finish() error { f.finished++; return nil }
func (f *fakeRawBuffer) Reset() error { f.resets++; return nil }
func (f *fakeRawBuffer) ExecuteCommands(secs []backend.CommandBuffer) error {
	f.executed = append(f.executed, secs)
	return nil
}
func (f *fakeRawBuffer) CopyBuffer(src, dst backend.Buffer, regions []backend.BufferCopy) error {
	f.ops++
	return nil
}
func (f *fakeRawBuffer) FillBuffer(dst backend.Buffer, offset, size uint64, value uint32) error {
	f.ops++
	return nil
}
func (f *fakeRawBuffer) CopyBufferToImage(src backend.Buffer, dst backend.Image, regions []backend.BufferImageCopy) error {
	f.ops++
	return nil
}
func (f *fakeRawBuffer) Dispatch(x, y, z uint32) error { f.ops++; return nil }
func (f *fakeRawBuffer) BeginRenderPass(target backend.Image, area backend.Rect) error {
	f.ops++
	return nil
}
func (f *fakeRawBuffer) EndRenderPass() error { f.ops++; return nil }
func (f *fakeRawBuffer) Draw(vertexCount, instanceCount uint32) error { f.ops++; return nil }
func (f *fakeRawBuffer) SetViewport(v backend.Rect) error { f.ops++; return nil }

type fakeRawPool struct {
	allocated int
	resets    int
	freed     int
}

func (f *fakeRawPool) Reset() error { f.resets++; return nil }
func (f *fakeRawPool) Allocate(n int, level backend.Level) ([]backend.CommandBuffer, error) {
	out := make([]backend.CommandBuffer, n)
	for i := range out {
		out[i] = &fakeRawBuffer{}
	}
	f.allocated += n
	return out, nil
}
func (f *fakeRawPool) Free(bufs []backend.CommandBuffer) { f.freed += len(bufs) }

type fakeRawFence struct {
	signaled bool
	resets   int
}

func (f *fakeRawFence) Wait(timeout time.Duration) (bool, error) { return f.signaled, nil }
func (f *fakeRawFence) Reset() error { f.resets++; f.signaled = false; return nil }
func (f *fakeRawFence) Signaled() bool { return f.signaled }

type fakeRawSemaphore struct{}

type fakeRawQueue struct {
	capability backend.Capability
	submits    []backend.Submission
	binds      []backend.BindSparseInfo
	waits      int
	suboptimal bool
	presentErr error
}

func (f *fakeRawQueue) Family() backend.QueueFamilyID { return 0 }
func (f *fakeRawQueue) Capability() backend.Capability { return f.capability }
func (f *fakeRawQueue) Submit(sub backend.Submission, fence backend.Fence) error {
	f.submits = append(f.submits, sub)
	return nil
}
func (f *fakeRawQueue) BindSparse(info backend.BindSparseInfo, fence backend.Fence) error {
	f.binds = append(f.binds, info)
	return nil
}
func (f *fakeRawQueue) Present(s backend.Surface, img backend.SwapchainImage, w backend.Semaphore) (bool, error) {
	return f.suboptimal, f.presentErr
}
func (f *fakeRawQueue) WaitIdle() error { f.waits++; return nil }

// newTestPool builds a typed pool over fakes without a device.
func newTestPool(c Capability, flags PoolFlags) (*CommandPool, *fakeRawPool) {
	raw := &fakeRawPool{}
	return &CommandPool{raw: raw, capability: c, flags: flags}, raw
}

func newTestQueue(c Capability) (*Queue, *fakeRawQueue) {
	raw := &fakeRawQueue{capability: c}
	return &Queue{raw: raw, capability: c}, raw
}

func newTestFence(signaled bool) (*Fence, *fakeRawFence) {
	raw := &fakeRawFence{signaled: signaled}
	return &Fence{raw: raw}, raw
}
