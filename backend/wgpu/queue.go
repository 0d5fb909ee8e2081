package wgpu

import (
	"fmt"
	"sync"
	"time"

	whal "github.com/gogpu/wgpu/hal"

	"github.com/gogpu/hal/backend"
)

// fence wraps a wgpu timeline fence behind the binary fence contract.
// Each submission bumps the target value; the fence counts as signaled
// once the timeline reached the latest target. Reset moves the base
// forward instead of rewinding the timeline.
type fence struct {
	dev *device
	raw whal.Fence

	mu              sync.Mutex
	createdSignaled bool
	target          uint64
	base            uint64
}

// nextTarget reserves the timeline value the next submission signals.
func (f *fence) nextTarget() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.target++
	return f.target
}

func (f *fence) Wait(timeout time.Duration) (bool, error) {
	f.mu.Lock()
	target, base, created := f.target, f.base, f.createdSignaled
	f.mu.Unlock()
	if target == base {
		// Nothing submitted since creation or the last reset.
		return created, nil
	}
	ok, err := f.dev.raw.Wait(f.raw, target, timeout)
	if err != nil {
		return false, fmt.Errorf("wgpu: wait fence: %w", err)
	}
	return ok, nil
}

func (f *fence) Reset() error {
	f.mu.Lock()
	f.base = f.target
	f.createdSignaled = false
	f.mu.Unlock()
	return nil
}

func (f *fence) Signaled() bool {
	ok, _ := f.Wait(0)
	return ok
}

// semaphore carries no state: a single implicitly ordered queue
// satisfies every wait by submission order alone.
type semaphore struct{}

type queue struct {
	dev *device

	mu      sync.Mutex
	retired []whal.Buffer // staging buffers freed on the next idle
	idle    *fence        // lazily created fence backing WaitIdle
}

func (q *queue) Family() backend.QueueFamilyID { return 0 }

func (q *queue) Capability() backend.Capability { return backend.CapabilityGeneral }

// retire schedules a transient buffer for destruction once the queue
// next goes idle.
func (q *queue) retire(b whal.Buffer) {
	q.mu.Lock()
	q.retired = append(q.retired, b)
	q.mu.Unlock()
}

func (q *queue) flushRetired() {
	q.mu.Lock()
	retired := q.retired
	q.retired = nil
	q.mu.Unlock()
	for _, b := range retired {
		q.dev.raw.DestroyBuffer(b)
	}
}

func (q *queue) Submit(sub backend.Submission, f backend.Fence) error {
	encoded := make([]whal.CommandBuffer, 0, len(sub.CommandBuffers))
	for _, cb := range sub.CommandBuffers {
		raw, err := cb.(*commandBuffer).encode(q.dev, "hal_submit")
		if err != nil {
			return err
		}
		encoded = append(encoded, raw)
	}

	var rawFence whal.Fence
	var value uint64 = 1
	if f != nil {
		fn := f.(*fence)
		rawFence = fn.raw
		value = fn.nextTarget()
	}
	if err := q.dev.rawQueue.Submit(encoded, rawFence, value); err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	for _, raw := range encoded {
		q.dev.raw.FreeCommandBuffer(raw)
	}
	return nil
}

// BindSparse is unsupported: wgpu exposes no sparse residency. Sparse
// resources are served by the software backend.
func (q *queue) BindSparse(info backend.BindSparseInfo, f backend.Fence) error {
	return fmt.Errorf("wgpu: sparse binding: %w", backend.ErrCreation)
}

func (q *queue) Present(surface backend.Surface, img backend.SwapchainImage, wait backend.Semaphore) (bool, error) {
	s, ok := surface.(*wgpuSurface)
	if !ok {
		return false, fmt.Errorf("wgpu: present to foreign surface %T: %w", surface, backend.ErrSurfaceLost)
	}
	return s.present(q, img)
}

// WaitIdle submits an empty batch behind everything in flight and
// waits for its fence.
func (q *queue) WaitIdle() error {
	q.mu.Lock()
	if q.idle == nil {
		raw, err := q.dev.raw.CreateFence()
		if err != nil {
			q.mu.Unlock()
			return fmt.Errorf("wgpu: create idle fence: %w", err)
		}
		q.idle = &fence{dev: q.dev, raw: raw}
	}
	idle := q.idle
	q.mu.Unlock()

	value := idle.nextTarget()
	if err := q.dev.rawQueue.Submit(nil, idle.raw, value); err != nil {
		return fmt.Errorf("wgpu: idle submit: %w", err)
	}
	ok, err := q.dev.raw.Wait(idle.raw, value, 5*time.Second)
	if err != nil {
		return fmt.Errorf("wgpu: wait idle: %w", err)
	}
	if !ok {
		return fmt.Errorf("wgpu: wait idle timed out: %w", backend.ErrDeviceLost)
	}
	q.flushRetired()
	return nil
}

// shutdown releases queue-owned resources at device destruction.
func (q *queue) shutdown() {
	q.flushRetired()
	q.mu.Lock()
	idle := q.idle
	q.idle = nil
	q.mu.Unlock()
	if idle != nil {
		q.dev.raw.DestroyFence(idle.raw)
	}
}
