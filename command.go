package hal

import (
	"github.com/gogpu/hal/backend"
)

// BufferState is the lifecycle state of a command buffer.
type BufferState uint8

const (
	// StateInitial: allocated, not yet recording.
	StateInitial BufferState = iota

	// StateRecording: between Begin and Finish.
	StateRecording

	// StateExecutable: finished, ready to submit.
	StateExecutable

	// StatePending: submitted, execution not yet known to be complete.
	StatePending

	// StateInvalid: the owning pool was reset or destroyed; the buffer
	// must be reacquired.
	StateInvalid
)

// stateNames maps BufferState values to their string representation.
var stateNames = [...]string{
	StateInitial:    "Initial",
	StateRecording:  "Recording",
	StateExecutable: "Executable",
	StatePending:    "Pending",
	StateInvalid:    "Invalid",
}

// String returns the string representation of a BufferState.
func (s BufferState) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}

// InheritanceInfo carries the primary-buffer state a secondary command
// buffer relies on while recording.
type InheritanceInfo = backend.InheritanceInfo

// bufferCore is the single underlying identity of a command buffer,
// shared between the original handle and every downgraded view.
type bufferCore struct {
	raw   backend.CommandBuffer
	pool  *CommandPool
	shot  Shot
	level Level

	state BufferState

	// simultaneous records that the current recording was begun with
	// allow-pending-resubmit, permitting submission while pending.
	simultaneous bool

	// submitted marks a OneShot buffer that already went through its
	// one submit cycle.
	submitted bool

	// watch holds the fences of pending submissions; once all are
	// signaled the buffer leaves the Pending state. Every submission,
	// fenced or not, also resolves through Queue.WaitIdle.
	watch []*Fence
}

// resolvePending moves the core out of Pending once every watched
// fence has signaled. Queue.WaitIdle calls markResolved directly,
// covering fence-less submissions and fences reset before the state
// was observed.
func (c *bufferCore) resolvePending() {
	if c.state != StatePending || len(c.watch) == 0 {
		return
	}
	for _, f := range c.watch {
		if !f.Signaled() {
			return
		}
	}
	c.markResolved()
}

// markResolved transitions Pending → Executable and drops the fence
// watch list.
func (c *bufferCore) markResolved() {
	if c.state == StatePending {
		c.state = StateExecutable
	}
	c.watch = nil
}

// CommandBuffer is a typed wrapper around one backend command buffer.
// It carries a capability that gates which recording operations are
// legal, a shot mode, and a level. Downgraded views share the same
// underlying buffer.
//
// A command buffer is exclusively owned by the pool that allocated it
// and, like the pool, is not safe for concurrent use.
type CommandBuffer struct {
	core       *bufferCore
	capability Capability
}

// Capability returns the buffer's capability tag.
func (b *CommandBuffer) Capability() Capability { return b.capability }

// Shot returns the buffer's shot mode.
func (b *CommandBuffer) Shot() Shot { return b.core.shot }

// Level returns the buffer's level.
func (b *CommandBuffer) Level() Level { return b.core.level }

// State returns the buffer's lifecycle state, resolving a pending
// submission whose fences have signaled.
func (b *CommandBuffer) State() BufferState {
	b.core.resolvePending()
	return b.core.state
}

// Downgrade returns a view of the buffer narrowed to the given
// capability. The view shares the underlying command stream and state:
// recording through it is observable through the original handle. No
// copy takes place. Widening is rejected with ErrCapabilityMismatch.
func (b *CommandBuffer) Downgrade(to Capability) (*CommandBuffer, error) {
	if !b.capability.Supports(to) {
		return nil, ErrCapabilityMismatch
	}
	return &CommandBuffer{core: b.core, capability: to}, nil
}

// beginState checks that the buffer may start recording and performs
// the implicit individual reset when beginning from Executable.
func (b *CommandBuffer) beginState() error {
	switch b.State() {
	case StateInitial:
		return nil
	case StateRecording:
		return ErrAlreadyRecording
	case StatePending:
		return ErrBufferPending
	case StateInvalid:
		return ErrBufferInvalidated
	case StateExecutable:
		// Re-recording implies an individual reset.
		if b.core.pool.flags&backend.PoolResetIndividual == 0 {
			return ErrNotResettable
		}
		return b.core.raw.Reset()
	}
	return ErrBufferInvalidated
}

// Begin starts recording a primary command buffer.
//
// allowPendingResubmit marks the recording as safely resubmittable
// while a prior submission may still be executing; it adds the
// simultaneous-use flag on top of the shot-derived flags.
func (b *CommandBuffer) Begin(allowPendingResubmit bool) error {
	if b.core.level != Primary {
		return ErrLevelMismatch
	}
	if err := b.beginState(); err != nil {
		return err
	}
	flags := b.core.shot.flags(allowPendingResubmit)
	if err := b.core.raw.Begin(flags, InheritanceInfo{}); err != nil {
		return err
	}
	b.core.state = StateRecording
	b.core.simultaneous = allowPendingResubmit
	b.core.submitted = false
	return nil
}

// BeginSecondary starts recording a secondary command buffer. The
// inheritance info describes the render-pass context established by
// the primary buffer that will execute it; a non-nil render pass adds
// the render-pass-continue flag.
func (b *CommandBuffer) BeginSecondary(allowPendingResubmit bool, inh InheritanceInfo) error {
	if b.core.level != Secondary {
		return ErrLevelMismatch
	}
	if err := b.beginState(); err != nil {
		return err
	}
	flags := b.core.shot.flags(allowPendingResubmit)
	if inh.RenderPass != nil {
		flags |= backend.FlagRenderPassContinue
	}
	if err := b.core.raw.Begin(flags, inh); err != nil {
		return err
	}
	b.core.state = StateRecording
	b.core.simultaneous = allowPendingResubmit
	b.core.submitted = false
	return nil
}

// Finish ends recording. No recording call is legal afterwards until
// the buffer is reset and begun again.
func (b *CommandBuffer) Finish() error {
	if b.State() != StateRecording {
		return ErrNotRecording
	}
	if err := b.core.raw.Finish(); err != nil {
		return err
	}
	b.core.state = StateExecutable
	return nil
}

// Reset returns the buffer to the initial state. Only legal when the
// owning pool was created with PoolResetIndividual and the buffer is
// not pending.
func (b *CommandBuffer) Reset() error {
	if b.core.pool.flags&backend.PoolResetIndividual == 0 {
		return ErrNotResettable
	}
	switch b.State() {
	case StatePending:
		return ErrBufferPending
	case StateInvalid:
		return ErrBufferInvalidated
	}
	if err := b.core.raw.Reset(); err != nil {
		return err
	}
	b.core.state = StateInitial
	b.core.submitted = false
	return nil
}

// recording checks the state and the capability gate for one recording
// call.
func (b *CommandBuffer) recording(need Capability) error {
	if b.State() != StateRecording {
		return ErrNotRecording
	}
	if !b.capability.Supports(need) {
		return ErrCapabilityMismatch
	}
	return nil
}

// CopyBuffer records a buffer-to-buffer copy. Requires Transfer.
func (b *CommandBuffer) CopyBuffer(src, dst Buffer, regions []BufferCopy) error {
	if err := b.recording(Transfer); err != nil {
		return err
	}
	return b.core.raw.CopyBuffer(src, dst, regions)
}

// FillBuffer records filling a buffer range with a repeated 32-bit
// value. Requires Transfer.
func (b *CommandBuffer) FillBuffer(dst Buffer, offset, size uint64, value uint32) error {
	if err := b.recording(Transfer); err != nil {
		return err
	}
	return b.core.raw.FillBuffer(dst, offset, size, value)
}

// CopyBufferToImage records a buffer-to-image copy. Requires Transfer.
func (b *CommandBuffer) CopyBufferToImage(src Buffer, dst Image, regions []BufferImageCopy) error {
	if err := b.recording(Transfer); err != nil {
		return err
	}
	return b.core.raw.CopyBufferToImage(src, dst, regions)
}

// Dispatch records a compute dispatch. Requires Compute.
func (b *CommandBuffer) Dispatch(x, y, z uint32) error {
	if err := b.recording(Compute); err != nil {
		return err
	}
	return b.core.raw.Dispatch(x, y, z)
}

// BeginRenderPass starts a render pass targeting the given image over
// the given area. Requires Graphics.
func (b *CommandBuffer) BeginRenderPass(target Image, area Rect) error {
	if err := b.recording(Graphics); err != nil {
		return err
	}
	return b.core.raw.BeginRenderPass(target, area)
}

// EndRenderPass ends the current render pass. Requires Graphics.
func (b *CommandBuffer) EndRenderPass() error {
	if err := b.recording(Graphics); err != nil {
		return err
	}
	return b.core.raw.EndRenderPass()
}

// Draw records an instanced draw into the current render pass.
// Requires Graphics.
func (b *CommandBuffer) Draw(vertexCount, instanceCount uint32) error {
	if err := b.recording(Graphics); err != nil {
		return err
	}
	return b.core.raw.Draw(vertexCount, instanceCount)
}

// SetViewport records the active viewport. Requires Graphics.
func (b *CommandBuffer) SetViewport(v Rect) error {
	if err := b.recording(Graphics); err != nil {
		return err
	}
	return b.core.raw.SetViewport(v)
}

// ExecuteCommands appends the given secondary buffers to this primary
// buffer in the order given; order is preserved exactly. Each
// secondary must be executable and of a capability this buffer
// supports.
func (b *CommandBuffer) ExecuteCommands(secondaries ...*CommandBuffer) error {
	if b.core.level != Primary {
		return ErrLevelMismatch
	}
	if b.State() != StateRecording {
		return ErrNotRecording
	}
	raws := make([]backend.CommandBuffer, len(secondaries))
	for i, sec := range secondaries {
		if sec.core.level != Secondary {
			return ErrLevelMismatch
		}
		if !b.capability.Supports(sec.capability) {
			return ErrCapabilityMismatch
		}
		if sec.State() != StateExecutable {
			return ErrNotExecutable
		}
		raws[i] = sec.core.raw
	}
	return b.core.raw.ExecuteCommands(raws)
}
