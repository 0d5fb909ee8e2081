package hal

import (
	"errors"

	"github.com/gogpu/hal/backend"
)

// Recoverable error conditions shared with the backend contracts.
// They are re-exported here so applications only import hal.
var (
	// ErrOutOfMemory: pool, buffer, or backing storage allocation
	// failed. Recoverable; retry after freeing resources.
	ErrOutOfMemory = backend.ErrOutOfMemory

	// ErrUnsupportedBackend: no viable backend or adapter was found at
	// instance creation.
	ErrUnsupportedBackend = backend.ErrUnsupportedBackend

	// ErrWindowUnsupported: the window handle is of a kind the selected
	// backend cannot present to.
	ErrWindowUnsupported = backend.ErrWindowUnsupported

	// ErrSurfaceLost: the native surface is gone; recreate it from the
	// window.
	ErrSurfaceLost = backend.ErrSurfaceLost

	// ErrOutOfDate: the surface changed enough that the swapchain can
	// no longer present; reconfigure and retry.
	ErrOutOfDate = backend.ErrOutOfDate

	// ErrAcquireTimeout: no swapchain image became available in time.
	ErrAcquireTimeout = backend.ErrAcquireTimeout

	// ErrSwapchainNotConfigured: AcquireImage or Present before
	// ConfigureSwapchain.
	ErrSwapchainNotConfigured = backend.ErrSwapchainNotConfigured

	// ErrCreation: ConfigureSwapchain failed.
	ErrCreation = backend.ErrCreation

	// ErrDeviceLost: the device stopped responding.
	ErrDeviceLost = backend.ErrDeviceLost
)

// Programming-contract violations. The reference protocol leaves these
// undefined; this implementation checks every one of them at the point
// of violation and returns a typed error instead.
var (
	// ErrNotRecording is returned by recording calls outside the
	// Recording state (before Begin, or after Finish).
	ErrNotRecording = errors.New("hal: command buffer is not recording")

	// ErrAlreadyRecording is returned by Begin on a buffer already in
	// the Recording state.
	ErrAlreadyRecording = errors.New("hal: command buffer is already recording")

	// ErrNotExecutable is returned when a submission lists a buffer
	// that has not been finished.
	ErrNotExecutable = errors.New("hal: command buffer is not executable")

	// ErrBufferInvalidated is returned by any use of a command buffer
	// after its pool was reset or destroyed without reallocating it.
	ErrBufferInvalidated = errors.New("hal: command buffer invalidated by pool reset")

	// ErrBufferPending is returned when a buffer is used while a
	// submission of it has not completed, unless it was begun with
	// allow-pending-resubmit.
	ErrBufferPending = errors.New("hal: command buffer is pending execution")

	// ErrOneShotResubmit is returned when a OneShot buffer is submitted
	// a second time without being re-recorded.
	ErrOneShotResubmit = errors.New("hal: one-shot command buffer resubmitted")

	// ErrCapabilityMismatch is returned when an operation, a secondary
	// buffer, or a submission requires a capability the target does not
	// support.
	ErrCapabilityMismatch = errors.New("hal: capability not supported")

	// ErrLevelMismatch is returned when a primary-only operation is
	// invoked on a secondary buffer or vice versa.
	ErrLevelMismatch = errors.New("hal: wrong command buffer level")

	// ErrFenceAlreadySignaled is returned by Submit when the supplied
	// fence is already in the signaled state.
	ErrFenceAlreadySignaled = errors.New("hal: fence already signaled")

	// ErrNotResettable is returned by CommandBuffer.Reset when the
	// owning pool was created without PoolResetIndividual.
	ErrNotResettable = errors.New("hal: pool does not allow individual reset")
)
