package hal

import (
	"errors"
	"testing"
)

func TestPoolAllocate(t *testing.T) {
	p, raw := newTestPool(Compute, 0)
	bufs, err := p.Allocate(3, Primary, MultiShot)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if len(bufs) != 3 {
		t.Fatalf("allocated %d buffers, want 3", len(bufs))
	}
	if raw.allocated != 3 {
		t.Errorf("raw allocations = %d, want 3", raw.allocated)
	}
	for i, cb := range bufs {
		if got := cb.Capability(); got != Compute {
			t.Errorf("buffer %d capability = %v, want Compute (pool capability)", i, got)
		}
		if got := cb.State(); got != StateInitial {
			t.Errorf("buffer %d state = %v, want Initial", i, got)
		}
		if got := cb.Shot(); got != MultiShot {
			t.Errorf("buffer %d shot = %v, want MultiShot", i, got)
		}
	}
}

func TestPoolResetInvalidatesOutstanding(t *testing.T) {
	p, raw := newTestPool(General, 0)
	cb := acquire(t, p, OneShot)
	cb.Begin(false)
	cb.Finish()

	if err := p.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if raw.resets != 1 {
		t.Errorf("raw resets = %d, want 1", raw.resets)
	}
	if got := cb.State(); got != StateInvalid {
		t.Errorf("state after pool reset = %v, want Invalid", got)
	}
	if err := cb.Begin(false); !errors.Is(err, ErrBufferInvalidated) {
		t.Errorf("Begin after pool reset err = %v, want ErrBufferInvalidated", err)
	}

	// A fresh acquire works as usual.
	cb2 := acquire(t, p, OneShot)
	if err := cb2.Begin(false); err != nil {
		t.Errorf("Begin on reacquired buffer: %v", err)
	}
}

func TestPoolResetRejectsPending(t *testing.T) {
	p, _ := newTestPool(General, 0)
	q, _ := newTestQueue(General)
	cb := acquire(t, p, OneShot)
	cb.Begin(false)
	cb.Finish()
	if err := q.Submit(Submission{CommandBuffers: []*CommandBuffer{cb}}, nil); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if err := p.Reset(); !errors.Is(err, ErrBufferPending) {
		t.Errorf("Reset with pending buffer err = %v, want ErrBufferPending", err)
	}

	q.WaitIdle()
	if err := p.Reset(); err != nil {
		t.Errorf("Reset after WaitIdle: %v", err)
	}
}

func TestPoolFree(t *testing.T) {
	p, raw := newTestPool(General, 0)
	cb := acquire(t, p, OneShot)

	if err := p.Free(cb); err != nil {
		t.Fatalf("Free: %v", err)
	}
	if raw.freed != 1 {
		t.Errorf("raw freed = %d, want 1", raw.freed)
	}
	if err := cb.Begin(false); !errors.Is(err, ErrBufferInvalidated) {
		t.Errorf("Begin after Free err = %v, want ErrBufferInvalidated", err)
	}

	// Freed buffers no longer belong to the pool; reset ignores them.
	if err := p.Reset(); err != nil {
		t.Errorf("Reset after Free: %v", err)
	}
}

func TestPoolFreeRejectsPending(t *testing.T) {
	p, _ := newTestPool(General, 0)
	q, _ := newTestQueue(General)
	cb := acquire(t, p, OneShot)
	cb.Begin(false)
	cb.Finish()
	q.Submit(Submission{CommandBuffers: []*CommandBuffer{cb}}, nil)

	if err := p.Free(cb); !errors.Is(err, ErrBufferPending) {
		t.Errorf("Free(pending) err = %v, want ErrBufferPending", err)
	}
}
