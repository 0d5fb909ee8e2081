package backend

import (
	"time"

	"github.com/gogpu/gputypes"
)

// Instance is a backend entry point: it enumerates adapters and turns
// window handles into surfaces.
type Instance interface {
	// Name returns the backend identifier (e.g. "soft", "wgpu").
	Name() string

	// EnumerateAdapters lists the physical devices the backend found.
	EnumerateAdapters() []Adapter

	// CreateSurface binds a native window handle to a new surface.
	CreateSurface(w Window) (Surface, error)

	// DestroySurface releases the surface and any swapchain it owns.
	// The surface must not be used afterwards.
	DestroySurface(s Surface)

	// Destroy releases the instance. All adapters, devices, and
	// surfaces created from it must already be destroyed.
	Destroy()
}

// Adapter is a physical device exposed by an instance.
type Adapter interface {
	// Info describes the device.
	Info() AdapterInfo

	// QueueFamilies lists the queue families the adapter offers.
	QueueFamilies() []QueueFamily

	// Open creates a logical device together with count queues of the
	// given family. Opening more queues than the family's MaxQueues
	// fails with ErrOutOfMemory.
	Open(family QueueFamilyID, count int) (Device, []Queue, error)
}

// Device creates and destroys the resources the hal layer manages.
// Methods creating resources return ErrOutOfMemory on allocation
// failure.
type Device interface {
	// CreateCommandPool creates a pool bound to a queue family. All
	// command buffers allocated from it carry the family's capability.
	CreateCommandPool(family QueueFamilyID, flags PoolFlags) (CommandPool, error)

	// DestroyCommandPool releases the pool and every buffer allocated
	// from it. None of them may still be pending on a queue.
	DestroyCommandPool(p CommandPool)

	// CreateFence creates a binary fence, optionally already signaled.
	CreateFence(signaled bool) (Fence, error)

	// DestroyFence releases a fence. It must not be attached to a
	// pending submission.
	DestroyFence(f Fence)

	// CreateSemaphore creates a device-side ordering primitive.
	CreateSemaphore() (Semaphore, error)

	// DestroySemaphore releases a semaphore not referenced by any
	// pending submission.
	DestroySemaphore(s Semaphore)

	// CreateBuffer creates a buffer. Sparse buffers start with no
	// backing memory and are bound through Queue.BindSparse.
	CreateBuffer(size uint64, sparse bool) (Buffer, error)

	// DestroyBuffer releases a buffer.
	DestroyBuffer(b Buffer)

	// CreateImage creates a two-dimensional image.
	CreateImage(extent Extent, format gputypes.TextureFormat) (Image, error)

	// DestroyImage releases an image.
	DestroyImage(i Image)

	// AllocateMemory allocates backing memory for sparse binding.
	AllocateMemory(size uint64) (Memory, error)

	// FreeMemory releases an allocation no sparse range still points
	// into.
	FreeMemory(m Memory)

	// WaitIdle blocks until every queue of the device is idle.
	WaitIdle() error

	// Destroy releases the device. WaitIdle first.
	Destroy()
}

// CommandPool hands out raw command buffers tied to one queue family.
// A pool is externally synchronized: one goroutine records through it
// at a time.
type CommandPool interface {
	// Reset returns every buffer allocated from the pool to its initial
	// state. No buffer of the pool may be pending.
	Reset() error

	// Allocate creates n command buffers of the given level. Either all
	// n are returned or none: on failure any partially created native
	// buffers are released before the error propagates.
	Allocate(n int, level Level) ([]CommandBuffer, error)

	// Free releases buffers allocated from this pool. The buffers must
	// not be referenced afterwards.
	Free(bufs []CommandBuffer)
}

// CommandBuffer is a raw recording target. Lifecycle checking and
// capability gating are done by the hal wrapper; implementations only
// translate calls.
type CommandBuffer interface {
	// Begin starts recording with the given usage flags. Secondary
	// buffers receive the primary-state inheritance info.
	Begin(flags CommandBufferFlags, inh InheritanceInfo) error

	// Finish ends recording. The buffer becomes submittable.
	Finish() error

	// Reset returns the buffer to its initial state. Only legal when
	// the owning pool was created with PoolResetIndividual.
	Reset() error

	// ExecuteCommands appends the given secondary buffers in order.
	ExecuteCommands(bufs []CommandBuffer) error

	// CopyBuffer records a buffer-to-buffer copy. Transfer class.
	CopyBuffer(src, dst Buffer, regions []BufferCopy) error

	// FillBuffer records filling a buffer range with a repeated 32-bit
	// value. Transfer class.
	FillBuffer(dst Buffer, offset, size uint64, value uint32) error

	// CopyBufferToImage records a buffer-to-image copy. Transfer class.
	CopyBufferToImage(src Buffer, dst Image, regions []BufferImageCopy) error

	// Dispatch records a compute dispatch. Compute class.
	Dispatch(x, y, z uint32) error

	// BeginRenderPass starts a render pass over the given area.
	// Graphics class.
	BeginRenderPass(target Image, area Rect) error

	// EndRenderPass ends the current render pass. Graphics class.
	EndRenderPass() error

	// Draw records a draw of instanced vertices into the current render
	// pass. Graphics class.
	Draw(vertexCount, instanceCount uint32) error

	// SetViewport records the active viewport. Graphics class.
	SetViewport(v Rect) error
}

// Submission bundles command buffers with their synchronization for one
// queue submit call.
type Submission struct {
	// CommandBuffers execute in the order listed.
	CommandBuffers []CommandBuffer

	// WaitSemaphores gate execution: each stage waits for its semaphore
	// before beginning.
	WaitSemaphores []SemaphoreWait

	// SignalSemaphores are signaled after every listed buffer finished.
	SignalSemaphores []Semaphore
}

// SemaphoreWait pairs a semaphore with the pipeline stage that must
// wait on it.
type SemaphoreWait struct {
	Semaphore Semaphore
	Stage     PipelineStage
}

// BindSparseInfo describes a sparse memory bind operation submitted
// through Queue.BindSparse.
type BindSparseInfo struct {
	WaitSemaphores   []Semaphore
	SignalSemaphores []Semaphore
	BufferBinds      []SparseBufferBind
	ImageOpaqueBinds []SparseImageBind
}

// Queue executes submissions in the order they arrive and owns the
// present operation.
type Queue interface {
	// Family returns the queue family this queue belongs to.
	Family() QueueFamilyID

	// Capability returns the capability of the queue's family.
	Capability() Capability

	// Submit enqueues the submission. The fence, if non-nil, is
	// signaled after all listed command buffers finished. Preconditions
	// (buffer capabilities, fence state) are validated by the hal
	// wrapper, not here.
	Submit(sub Submission, fence Fence) error

	// BindSparse binds or unbinds memory ranges of sparse resources
	// with the same wait/signal/fence semantics as Submit.
	BindSparse(info BindSparseInfo, fence Fence) error

	// Present hands an acquired swapchain image back to the window
	// system, waiting on wait first if non-nil. The returned flag
	// reports a suboptimal (but successful) present.
	Present(surface Surface, image SwapchainImage, wait Semaphore) (suboptimal bool, err error)

	// WaitIdle blocks until all work previously submitted to this
	// queue completed.
	WaitIdle() error
}

// Fence is a host-visible binary completion signal.
type Fence interface {
	// Wait blocks until the fence signals or the timeout elapses; zero
	// timeout polls. It reports whether the fence is signaled.
	Wait(timeout time.Duration) (bool, error)

	// Reset returns a signaled fence to the unsignaled state. The fence
	// must not be attached to a pending submission.
	Reset() error

	// Signaled polls the fence state without blocking.
	Signaled() bool
}

// Semaphore is a device-side ordering primitive between submissions.
// It has no host-visible state.
type Semaphore interface{}

// Surface is a live binding to a native window, owning at most one
// configured swapchain.
type Surface interface {
	// SupportsQueueFamily reports whether queues of the family can
	// present to this surface.
	SupportsQueueFamily(f QueueFamily) bool

	// Capabilities reports the read-only presentation properties of the
	// surface on the given adapter.
	Capabilities(a Adapter) SurfaceCapabilities

	// SupportedFormats lists the pixel formats the surface can present.
	SupportedFormats(a Adapter) []gputypes.TextureFormat

	// ConfigureSwapchain tears down any previous swapchain completely,
	// then creates presentation resources for the new config. Old and
	// new resources are never live at the same time.
	ConfigureSwapchain(d Device, cfg SwapchainConfig) error

	// UnconfigureSwapchain destroys the configured swapchain, returning
	// the surface to the unconfigured state. No-op when unconfigured.
	UnconfigureSwapchain(d Device)

	// AcquireImage returns the presentable image of the configured
	// swapchain, plus a suboptimal flag. There is exactly one
	// outstanding image per swapchain. Fails with
	// ErrSwapchainNotConfigured before ConfigureSwapchain.
	AcquireImage(timeout time.Duration) (SwapchainImage, bool, error)
}
