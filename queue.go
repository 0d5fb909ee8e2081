package hal

import (
	"time"

	"github.com/gogpu/hal/backend"
)

// Fence is a device-to-host synchronization primitive. It starts
// unsignaled (unless created signaled), is signaled by the device when
// an associated submission completes, and is observed and reset by the
// host.
type Fence struct {
	raw backend.Fence
}

// Wait blocks until the fence signals or the timeout elapses. It
// returns true if the fence signaled within the timeout.
func (f *Fence) Wait(timeout time.Duration) (bool, error) {
	return f.raw.Wait(timeout)
}

// Reset returns the fence to the unsignaled state.
func (f *Fence) Reset() error {
	return f.raw.Reset()
}

// Signaled reports the fence state without blocking.
func (f *Fence) Signaled() bool {
	return f.raw.Signaled()
}

// Semaphore is a device-to-device synchronization primitive ordering
// work between queue submissions. The host never observes its state.
type Semaphore struct {
	raw backend.Semaphore
}

// SemaphoreWait pairs a semaphore with the pipeline stage at which the
// waiting submission must block.
type SemaphoreWait struct {
	Semaphore *Semaphore
	Stage     PipelineStage
}

// Submission describes one batch handed to a queue: the command
// buffers to execute in order, the semaphores to wait on before any of
// them reaches the given stages, and the semaphores to signal once all
// of them complete.
type Submission struct {
	CommandBuffers   []*CommandBuffer
	WaitSemaphores   []SemaphoreWait
	SignalSemaphores []*Semaphore
}

// BindSparseInfo describes one sparse binding batch: memory range
// updates for sparse buffers and images, ordered against other queue
// work by semaphores.
type BindSparseInfo struct {
	WaitSemaphores   []*Semaphore
	SignalSemaphores []*Semaphore
	BufferBinds      []SparseBufferBind
	ImageOpaqueBinds []SparseImageBind
}

// Queue is a typed wrapper around one backend queue. Its capability
// gates which command buffers it accepts.
//
// A queue serializes the submissions it receives; submissions to
// different queues are unordered unless linked by semaphores. A queue
// may be used from one goroutine at a time.
type Queue struct {
	raw        backend.Queue
	capability Capability
	family     QueueFamilyID

	// inflight holds the cores of every pending submission; WaitIdle
	// resolves them. Fenced cores also resolve lazily through their
	// watch list, but stay tracked here so a fence reset between signal
	// and observation cannot strand them in Pending.
	inflight []*bufferCore
}

// Capability returns the queue's capability tag.
func (q *Queue) Capability() Capability { return q.capability }

// Family returns the queue family this queue was opened from.
func (q *Queue) Family() QueueFamilyID { return q.family }

// Raw returns the backend queue, the counterpart of Device.Raw for
// device-sharing integrations.
func (q *Queue) Raw() backend.Queue { return q.raw }

// Submit validates and enqueues one submission. The buffers execute in
// slice order after every wait semaphore is signaled; the fence, if
// given, signals once the whole batch completes.
//
// Validation covers: every buffer is primary, executable (or pending
// with simultaneous use), of a capability this queue supports, and not
// a OneShot buffer that was already submitted; the fence, if given, is
// unsignaled. SubmitTrusted skips these checks.
func (q *Queue) Submit(sub Submission, fence *Fence) error {
	if fence != nil && fence.Signaled() {
		return ErrFenceAlreadySignaled
	}
	for _, b := range sub.CommandBuffers {
		if b.core.level != Primary {
			return ErrLevelMismatch
		}
		if !q.capability.Supports(b.capability) {
			return ErrCapabilityMismatch
		}
		switch b.State() {
		case StateExecutable:
		case StatePending:
			if !b.core.simultaneous {
				return ErrBufferPending
			}
		default:
			return ErrNotExecutable
		}
		if b.core.shot == OneShot && b.core.submitted {
			return ErrOneShotResubmit
		}
	}
	return q.submit(sub, fence)
}

// SubmitTrusted enqueues one submission without per-call validation.
// The caller asserts the invariants Submit would check; violating them
// is undefined at the backend's discretion. Use it on hot paths where
// the surrounding code already guarantees buffer states.
func (q *Queue) SubmitTrusted(sub Submission, fence *Fence) error {
	return q.submit(sub, fence)
}

func (q *Queue) submit(sub Submission, fence *Fence) error {
	raw := backend.Submission{
		CommandBuffers:   make([]backend.CommandBuffer, len(sub.CommandBuffers)),
		WaitSemaphores:   make([]backend.SemaphoreWait, len(sub.WaitSemaphores)),
		SignalSemaphores: make([]backend.Semaphore, len(sub.SignalSemaphores)),
	}
	for i, b := range sub.CommandBuffers {
		raw.CommandBuffers[i] = b.core.raw
	}
	for i, w := range sub.WaitSemaphores {
		raw.WaitSemaphores[i] = backend.SemaphoreWait{Semaphore: w.Semaphore.raw, Stage: w.Stage}
	}
	for i, s := range sub.SignalSemaphores {
		raw.SignalSemaphores[i] = s.raw
	}
	var rawFence backend.Fence
	if fence != nil {
		rawFence = fence.raw
	}
	if err := q.raw.Submit(raw, rawFence); err != nil {
		return err
	}
	for _, b := range sub.CommandBuffers {
		b.core.state = StatePending
		b.core.submitted = true
		if fence != nil {
			b.core.watch = append(b.core.watch, fence)
		}
		q.inflight = append(q.inflight, b.core)
	}
	return nil
}

// BindSparse enqueues sparse memory binding updates. Bindings take
// effect in queue order relative to submissions, subject to the given
// semaphores; the fence, if given, signals once the updates are
// applied. A nil Memory in a bind unbinds the range.
func (q *Queue) BindSparse(info BindSparseInfo, fence *Fence) error {
	raw := backend.BindSparseInfo{
		WaitSemaphores:   make([]backend.Semaphore, len(info.WaitSemaphores)),
		SignalSemaphores: make([]backend.Semaphore, len(info.SignalSemaphores)),
		BufferBinds:      info.BufferBinds,
		ImageOpaqueBinds: info.ImageOpaqueBinds,
	}
	for i, s := range info.WaitSemaphores {
		raw.WaitSemaphores[i] = s.raw
	}
	for i, s := range info.SignalSemaphores {
		raw.SignalSemaphores[i] = s.raw
	}
	var rawFence backend.Fence
	if fence != nil {
		rawFence = fence.raw
	}
	return q.raw.BindSparse(raw, rawFence)
}

// Present queues the presentation of an acquired swapchain image,
// waiting on the given semaphore (if any) before the image is read.
// The suboptimal result reports that presentation succeeded but the
// swapchain no longer matches the surface and should be reconfigured.
func (q *Queue) Present(surface *Surface, image SwapchainImage, wait *Semaphore) (suboptimal bool, err error) {
	var rawWait backend.Semaphore
	if wait != nil {
		rawWait = wait.raw
	}
	return q.raw.Present(surface.raw, image, rawWait)
}

// WaitIdle blocks until every submission on this queue has completed,
// then resolves the pending state of their command buffers.
func (q *Queue) WaitIdle() error {
	if err := q.raw.WaitIdle(); err != nil {
		return err
	}
	for _, core := range q.inflight {
		core.markResolved()
	}
	q.inflight = nil
	return nil
}
