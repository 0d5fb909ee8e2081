package soft

import (
	"sync"
	"time"

	"github.com/gogpu/hal"
	"github.com/gogpu/hal/backend"
)

// fence signals by closing a channel, so waiters can select against a
// timer. Reset swaps in a fresh channel.
type fence struct {
	mu       sync.Mutex
	signaled bool
	done     chan struct{}
}

func newFence(signaled bool) *fence {
	f := &fence{signaled: signaled, done: make(chan struct{})}
	if signaled {
		close(f.done)
	}
	return f
}

func (f *fence) signal() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.signaled {
		f.signaled = true
		close(f.done)
	}
}

func (f *fence) Wait(timeout time.Duration) (bool, error) {
	f.mu.Lock()
	done := f.done
	f.mu.Unlock()
	select {
	case <-done:
		return true, nil
	default:
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return true, nil
	case <-timer.C:
		return false, nil
	}
}

func (f *fence) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signaled {
		f.signaled = false
		f.done = make(chan struct{})
	}
	return nil
}

func (f *fence) Signaled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signaled
}

// semaphore is binary: signal makes one wait pass, and the wait
// consumes the signal. A one-slot channel gives exactly that.
type semaphore struct {
	ch chan struct{}
}

func newSemaphore() *semaphore {
	return &semaphore{ch: make(chan struct{}, 1)}
}

func (s *semaphore) signal() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

func (s *semaphore) wait() {
	<-s.ch
}

// batch is one unit of queue work: a submission, a sparse bind, a
// present, or a drain marker.
type batch struct {
	cmds    []command
	waits   []*semaphore
	signals []*semaphore
	fence   *fence

	sparse *backend.BindSparseInfo

	present func()

	drain chan struct{}
}

// queue runs batches in submission order on a worker goroutine.
// Cross-queue ordering exists only through semaphores.
type queue struct {
	dev        *device
	family     backend.QueueFamilyID
	capability backend.Capability

	work chan batch
	done chan struct{}
}

func newQueue(dev *device, family backend.QueueFamilyID, c backend.Capability) *queue {
	q := &queue{
		dev:        dev,
		family:     family,
		capability: c,
		work:       make(chan batch, 64),
		done:       make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *queue) run() {
	defer close(q.done)
	for b := range q.work {
		for _, s := range b.waits {
			s.wait()
		}
		if b.sparse != nil {
			applySparse(b.sparse)
		}
		var st execState
		for _, c := range b.cmds {
			if err := c.execute(&st); err != nil {
				// Execution errors on a real device are device-loss
				// territory; here they surface in the log and the batch
				// still completes so fences cannot deadlock.
				hal.Logger().Error("soft: command execution failed", "err", err)
				break
			}
		}
		if b.present != nil {
			b.present()
		}
		for _, s := range b.signals {
			s.signal()
		}
		if b.fence != nil {
			b.fence.signal()
		}
		if b.drain != nil {
			close(b.drain)
		}
	}
}

func (q *queue) Family() backend.QueueFamilyID  { return q.family }
func (q *queue) Capability() backend.Capability { return q.capability }

func (q *queue) Submit(sub backend.Submission, f backend.Fence) error {
	b := batch{}
	for _, cb := range sub.CommandBuffers {
		b.cmds = append(b.cmds, cb.(*commandBuffer).cmds...)
	}
	for _, w := range sub.WaitSemaphores {
		b.waits = append(b.waits, w.Semaphore.(*semaphore))
	}
	for _, s := range sub.SignalSemaphores {
		b.signals = append(b.signals, s.(*semaphore))
	}
	if f != nil {
		b.fence = f.(*fence)
	}
	q.work <- b
	return nil
}

func (q *queue) BindSparse(info backend.BindSparseInfo, f backend.Fence) error {
	b := batch{sparse: &info}
	for _, w := range info.WaitSemaphores {
		b.waits = append(b.waits, w.(*semaphore))
	}
	for _, s := range info.SignalSemaphores {
		b.signals = append(b.signals, s.(*semaphore))
	}
	if f != nil {
		b.fence = f.(*fence)
	}
	q.work <- b
	return nil
}

func applySparse(info *backend.BindSparseInfo) {
	for _, bb := range info.BufferBinds {
		bb.Buffer.(*bufferRes).applyBinds(bb.Binds)
	}
	// Host images are always fully resident, so opaque image binds
	// have nothing to apply; they still participate in queue ordering
	// and fence signaling.
}

func (q *queue) Present(surface backend.Surface, img backend.SwapchainImage, wait backend.Semaphore) (bool, error) {
	s := surface.(*softSurface)
	sc, ok := img.(*swapchainImage)
	if !ok {
		return false, backend.ErrSwapchainNotConfigured
	}
	b := batch{drain: make(chan struct{})}
	if wait != nil {
		b.waits = append(b.waits, wait.(*semaphore))
	}
	var suboptimal bool
	var perr error
	b.present = func() {
		suboptimal, perr = s.present(sc)
	}
	q.work <- b
	<-b.drain
	return suboptimal, perr
}

func (q *queue) WaitIdle() error {
	b := batch{drain: make(chan struct{})}
	q.work <- b
	<-b.drain
	return nil
}

// shutdown stops the worker after draining queued work.
func (q *queue) shutdown() {
	close(q.work)
	<-q.done
}
