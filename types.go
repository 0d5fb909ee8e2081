package hal

import (
	"github.com/gogpu/hal/backend"
)

// Re-exported backend types. The wrapper layer adds typed state and
// validation on top; the plain data types pass through unchanged so
// callers only import one package.
type (
	// QueueFamilyID identifies a queue family within an adapter.
	QueueFamilyID = backend.QueueFamilyID

	// QueueFamily describes one family: its capability and how many
	// queues it exposes.
	QueueFamily = backend.QueueFamily

	// AdapterInfo is the static description of a physical adapter.
	AdapterInfo = backend.AdapterInfo

	// PoolFlags configure command pool behavior.
	PoolFlags = backend.PoolFlags

	// PipelineStage is a pipeline stage bitmask used by semaphore waits.
	PipelineStage = backend.PipelineStage

	// Buffer is an opaque backend buffer resource.
	Buffer = backend.Buffer

	// Image is an opaque backend image resource.
	Image = backend.Image

	// Memory is an opaque backend memory allocation.
	Memory = backend.Memory

	// BufferCopy is one region of a buffer-to-buffer copy.
	BufferCopy = backend.BufferCopy

	// BufferImageCopy is one region of a buffer-to-image copy.
	BufferImageCopy = backend.BufferImageCopy

	// Rect is an integer rectangle with unsigned extent.
	Rect = backend.Rect

	// SparseBind binds one span of a sparse resource to memory.
	SparseBind = backend.SparseBind

	// SparseBufferBind groups sparse binds for one buffer.
	SparseBufferBind = backend.SparseBufferBind

	// SparseImageBind groups sparse binds for one image.
	SparseImageBind = backend.SparseImageBind

	// Extent is a two-dimensional size in pixels.
	Extent = backend.Extent

	// Range is an inclusive count range.
	Range = backend.Range

	// ExtentRange is an inclusive extent range.
	ExtentRange = backend.ExtentRange

	// PresentMode selects how presentation is paced.
	PresentMode = backend.PresentMode

	// PresentModes is a set of supported present modes.
	PresentModes = backend.PresentModes

	// CompositeAlphaMode selects how the surface alpha is composited.
	CompositeAlphaMode = backend.CompositeAlphaMode

	// CompositeAlphaModes is a set of supported composite alpha modes.
	CompositeAlphaModes = backend.CompositeAlphaModes

	// SurfaceCapabilities describes what swapchain configurations a
	// surface accepts on a given adapter.
	SurfaceCapabilities = backend.SurfaceCapabilities

	// SwapchainConfig selects one swapchain configuration.
	SwapchainConfig = backend.SwapchainConfig

	// SwapchainImage is an opaque handle to one presentable image.
	SwapchainImage = backend.SwapchainImage

	// Window is an opaque backend-interpreted window handle.
	Window = backend.Window

	// RenderPass is an opaque render pass handle.
	RenderPass = backend.RenderPass

	// Framebuffer is an opaque framebuffer handle.
	Framebuffer = backend.Framebuffer
)

// Pool flag values.
const (
	PoolTransient       = backend.PoolTransient
	PoolResetIndividual = backend.PoolResetIndividual
)

// Pipeline stages for semaphore waits.
const (
	StageTopOfPipe             = backend.StageTopOfPipe
	StageTransfer              = backend.StageTransfer
	StageComputeShader         = backend.StageComputeShader
	StageColorAttachmentOutput = backend.StageColorAttachmentOutput
	StageBottomOfPipe          = backend.StageBottomOfPipe
)

// Present modes.
const (
	PresentModeFifo      = backend.PresentModeFifo
	PresentModeMailbox   = backend.PresentModeMailbox
	PresentModeImmediate = backend.PresentModeImmediate
)

// Composite alpha modes.
const (
	CompositeAlphaOpaque         = backend.CompositeAlphaOpaque
	CompositeAlphaPreMultiplied  = backend.CompositeAlphaPreMultiplied
	CompositeAlphaPostMultiplied = backend.CompositeAlphaPostMultiplied
	CompositeAlphaInherit        = backend.CompositeAlphaInherit
)
