package hal

import (
	"errors"
	"testing"

	"github.com/gogpu/hal/backend"
)

func acquire(t *testing.T, p *CommandPool, shot Shot) *CommandBuffer {
	t.Helper()
	cb, err := p.AcquireCommandBuffer(shot)
	if err != nil {
		t.Fatalf("AcquireCommandBuffer: %v", err)
	}
	return cb
}

func TestCommandBufferLifecycle(t *testing.T) {
	p, _ := newTestPool(General, 0)
	cb := acquire(t, p, OneShot)

	if got := cb.State(); got != StateInitial {
		t.Fatalf("fresh buffer state = %v, want Initial", got)
	}
	if err := cb.Finish(); !errors.Is(err, ErrNotRecording) {
		t.Errorf("Finish before Begin err = %v, want ErrNotRecording", err)
	}
	if err := cb.Dispatch(1, 1, 1); !errors.Is(err, ErrNotRecording) {
		t.Errorf("Dispatch before Begin err = %v, want ErrNotRecording", err)
	}

	if err := cb.Begin(false); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if got := cb.State(); got != StateRecording {
		t.Errorf("state after Begin = %v, want Recording", got)
	}
	if err := cb.Begin(false); !errors.Is(err, ErrAlreadyRecording) {
		t.Errorf("double Begin err = %v, want ErrAlreadyRecording", err)
	}

	if err := cb.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if got := cb.State(); got != StateExecutable {
		t.Errorf("state after Finish = %v, want Executable", got)
	}
	if err := cb.Dispatch(1, 1, 1); !errors.Is(err, ErrNotRecording) {
		t.Errorf("Dispatch after Finish err = %v, want ErrNotRecording", err)
	}
}

func TestBeginFlagsFromShot(t *testing.T) {
	tests := []struct {
		name    string
		shot    Shot
		pending bool
		want    backend.CommandBufferFlags
	}{
		{"one shot", OneShot, false, backend.FlagOneTimeSubmit},
		{"multi shot", MultiShot, false, 0},
		{"multi shot pending resubmit", MultiShot, true, backend.FlagSimultaneousUse},
		{"one shot pending resubmit", OneShot, true, backend.FlagOneTimeSubmit | backend.FlagSimultaneousUse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestPool(General, 0)
			cb := acquire(t, p, tt.shot)
			if err := cb.Begin(tt.pending); err != nil {
				t.Fatalf("Begin: %v", err)
			}
			raw := cb.core.raw.(*fakeRawBuffer)
			if raw.flags != tt.want {
				t.Errorf("begin flags = %v, want %v", raw.flags, tt.want)
			}
		})
	}
}

func TestBeginLevelMismatch(t *testing.T) {
	p, _ := newTestPool(General, 0)
	prim := acquire(t, p, OneShot)
	sec, err := p.AcquireSecondaryCommandBuffer(OneShot)
	if err != nil {
		t.Fatalf("AcquireSecondaryCommandBuffer: %v", err)
	}

	if err := sec.Begin(false); !errors.Is(err, ErrLevelMismatch) {
		t.Errorf("Begin on secondary err = %v, want ErrLevelMismatch", err)
	}
	if err := prim.BeginSecondary(false, InheritanceInfo{}); !errors.Is(err, ErrLevelMismatch) {
		t.Errorf("BeginSecondary on primary err = %v, want ErrLevelMismatch", err)
	}
}

func TestBeginSecondaryInheritance(t *testing.T) {
	p, _ := newTestPool(Graphics, 0)
	sec, err := p.AcquireSecondaryCommandBuffer(MultiShot)
	if err != nil {
		t.Fatalf("AcquireSecondaryCommandBuffer: %v", err)
	}
	pass := struct{ name string }{"pass"}
	if err := sec.BeginSecondary(false, InheritanceInfo{RenderPass: &pass, Subpass: 1}); err != nil {
		t.Fatalf("BeginSecondary: %v", err)
	}
	raw := sec.core.raw.(*fakeRawBuffer)
	if raw.flags&backend.FlagRenderPassContinue == 0 {
		t.Error("inheritance with a render pass did not set render-pass-continue")
	}
	if raw.inh.Subpass != 1 {
		t.Errorf("inheritance subpass = %d, want 1", raw.inh.Subpass)
	}
}

func TestCapabilityGatesRecording(t *testing.T) {
	type op struct {
		name string
		call func(cb *CommandBuffer) error
		need Capability
	}
	ops := []op{
		{"CopyBuffer", func(cb *CommandBuffer) error { return cb.CopyBuffer(nil, nil, nil) }, Transfer},
		{"FillBuffer", func(cb *CommandBuffer) error { return cb.FillBuffer(nil, 0, 4, 0) }, Transfer},
		{"Dispatch", func(cb *CommandBuffer) error { return cb.Dispatch(1, 1, 1) }, Compute},
		{"Draw", func(cb *CommandBuffer) error { return cb.Draw(3, 1) }, Graphics},
		{"BeginRenderPass", func(cb *CommandBuffer) error { return cb.BeginRenderPass(nil, Rect{}) }, Graphics},
	}
	caps := []Capability{Transfer, Compute, Graphics, General}
	for _, c := range caps {
		for _, o := range ops {
			p, _ := newTestPool(c, 0)
			cb := acquire(t, p, MultiShot)
			if err := cb.Begin(false); err != nil {
				t.Fatalf("Begin: %v", err)
			}
			err := o.call(cb)
			if c.Supports(o.need) {
				if err != nil {
					t.Errorf("%v buffer: %s = %v, want success", c, o.name, err)
				}
			} else if !errors.Is(err, ErrCapabilityMismatch) {
				t.Errorf("%v buffer: %s = %v, want ErrCapabilityMismatch", c, o.name, err)
			}
		}
	}
}

func TestDowngradeSharesState(t *testing.T) {
	p, _ := newTestPool(General, 0)
	cb := acquire(t, p, MultiShot)

	view, err := cb.Downgrade(Transfer)
	if err != nil {
		t.Fatalf("Downgrade: %v", err)
	}
	if got := view.Capability(); got != Transfer {
		t.Errorf("view capability = %v, want Transfer", got)
	}

	if err := view.Begin(false); err != nil {
		t.Fatalf("Begin on view: %v", err)
	}
	if got := cb.State(); got != StateRecording {
		t.Errorf("original state after view Begin = %v, want Recording (shared)", got)
	}

	// The narrowed view loses compute access; the original keeps it.
	if err := view.Dispatch(1, 1, 1); !errors.Is(err, ErrCapabilityMismatch) {
		t.Errorf("Dispatch on Transfer view err = %v, want ErrCapabilityMismatch", err)
	}
	if err := cb.Dispatch(1, 1, 1); err != nil {
		t.Errorf("Dispatch on General original: %v", err)
	}
}

func TestDowngradeRejectsWidening(t *testing.T) {
	p, _ := newTestPool(Compute, 0)
	cb := acquire(t, p, MultiShot)
	if _, err := cb.Downgrade(Graphics); !errors.Is(err, ErrCapabilityMismatch) {
		t.Errorf("Downgrade Compute→Graphics err = %v, want ErrCapabilityMismatch", err)
	}
	if _, err := cb.Downgrade(General); !errors.Is(err, ErrCapabilityMismatch) {
		t.Errorf("Downgrade Compute→General err = %v, want ErrCapabilityMismatch", err)
	}
}

func TestRebeginRequiresResetIndividual(t *testing.T) {
	p, _ := newTestPool(General, 0)
	cb := acquire(t, p, MultiShot)
	cb.Begin(false)
	cb.Finish()

	if err := cb.Begin(false); !errors.Is(err, ErrNotResettable) {
		t.Errorf("re-Begin without reset flag err = %v, want ErrNotResettable", err)
	}
	if err := cb.Reset(); !errors.Is(err, ErrNotResettable) {
		t.Errorf("Reset without reset flag err = %v, want ErrNotResettable", err)
	}

	p2, _ := newTestPool(General, PoolResetIndividual)
	cb2 := acquire(t, p2, MultiShot)
	cb2.Begin(false)
	cb2.Finish()
	if err := cb2.Begin(false); err != nil {
		t.Errorf("re-Begin with reset flag: %v", err)
	}
	if got := cb2.core.raw.(*fakeRawBuffer).resets; got != 1 {
		t.Errorf("implicit resets = %d, want 1", got)
	}
}

func TestResetReturnsToInitial(t *testing.T) {
	p, _ := newTestPool(General, PoolResetIndividual)
	cb := acquire(t, p, OneShot)
	cb.Begin(false)
	cb.Finish()
	if err := cb.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if got := cb.State(); got != StateInitial {
		t.Errorf("state after Reset = %v, want Initial", got)
	}
}

func TestExecuteCommands(t *testing.T) {
	p, _ := newTestPool(General, 0)
	prim := acquire(t, p, OneShot)
	sec, _ := p.AcquireSecondaryCommandBuffer(MultiShot)

	prim.Begin(false)

	// The secondary is not executable yet.
	if err := prim.ExecuteCommands(sec); !errors.Is(err, ErrNotExecutable) {
		t.Errorf("ExecuteCommands(initial secondary) err = %v, want ErrNotExecutable", err)
	}

	sec.BeginSecondary(false, InheritanceInfo{})
	sec.Finish()
	if err := prim.ExecuteCommands(sec); err != nil {
		t.Fatalf("ExecuteCommands: %v", err)
	}
	raw := prim.core.raw.(*fakeRawBuffer)
	if len(raw.executed) != 1 || len(raw.executed[0]) != 1 {
		t.Fatalf("executed batches = %v, want one batch of one buffer", raw.executed)
	}

	// Primary buffers cannot be executed from another primary.
	prim2 := acquire(t, p, OneShot)
	prim2.Begin(false)
	prim2.Finish()
	if err := prim.ExecuteCommands(prim2); !errors.Is(err, ErrLevelMismatch) {
		t.Errorf("ExecuteCommands(primary) err = %v, want ErrLevelMismatch", err)
	}
}

func TestExecuteCommandsCapability(t *testing.T) {
	// A Transfer primary cannot execute a Compute secondary.
	tp, _ := newTestPool(Transfer, 0)
	cp, _ := newTestPool(Compute, 0)

	prim := acquire(t, tp, OneShot)
	sec, _ := cp.AcquireSecondaryCommandBuffer(MultiShot)
	sec.BeginSecondary(false, InheritanceInfo{})
	sec.Finish()

	prim.Begin(false)
	if err := prim.ExecuteCommands(sec); !errors.Is(err, ErrCapabilityMismatch) {
		t.Errorf("ExecuteCommands err = %v, want ErrCapabilityMismatch", err)
	}
}
