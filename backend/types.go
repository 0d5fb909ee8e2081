package backend

import (
	"github.com/gogpu/gputypes"
)

// Capability describes the subset of GPU operations a queue family, a
// command pool, or a command buffer is permitted to carry.
//
// The four values form a lattice: General supports everything, Graphics
// and Compute each support Transfer, and Transfer supports only itself.
// Graphics and Compute are not ordered with respect to each other.
type Capability uint8

const (
	// CapabilityTransfer permits copy and fill operations only.
	CapabilityTransfer Capability = iota

	// CapabilityCompute permits compute dispatch plus all transfer
	// operations.
	CapabilityCompute

	// CapabilityGraphics permits render passes and draws plus all
	// transfer operations.
	CapabilityGraphics

	// CapabilityGeneral permits every operation.
	CapabilityGeneral
)

// capabilityNames maps Capability values to their string representation.
var capabilityNames = [...]string{
	CapabilityTransfer: "Transfer",
	CapabilityCompute:  "Compute",
	CapabilityGraphics: "Graphics",
	CapabilityGeneral:  "General",
}

// String returns the string representation of a Capability.
func (c Capability) String() string {
	if int(c) < len(capabilityNames) {
		return capabilityNames[c]
	}
	return "Unknown"
}

// Supports reports whether every operation legal under o is also legal
// under c. It is reflexive and transitive; Graphics and Compute do not
// support each other.
func (c Capability) Supports(o Capability) bool {
	switch c {
	case CapabilityGeneral:
		return true
	case CapabilityGraphics:
		return o == CapabilityGraphics || o == CapabilityTransfer
	case CapabilityCompute:
		return o == CapabilityCompute || o == CapabilityTransfer
	case CapabilityTransfer:
		return o == CapabilityTransfer
	}
	return false
}

// SupportsGraphics reports whether graphics operations are legal under c.
func (c Capability) SupportsGraphics() bool { return c.Supports(CapabilityGraphics) }

// SupportsCompute reports whether compute operations are legal under c.
func (c Capability) SupportsCompute() bool { return c.Supports(CapabilityCompute) }

// SupportsTransfer reports whether transfer operations are legal under c.
// Every capability includes transfer.
func (c Capability) SupportsTransfer() bool { return true }

// QueueFamilyID identifies a queue family within an adapter.
type QueueFamilyID uint32

// QueueFamily describes a group of queues sharing one capability.
// Families are enumerated from an adapter and immutable afterwards.
type QueueFamily struct {
	// ID is the family index within its adapter.
	ID QueueFamilyID

	// Capability is shared by every queue of the family.
	Capability Capability

	// MaxQueues is the number of queues that may be opened concurrently
	// from this family.
	MaxQueues int
}

// AdapterInfo describes a physical device.
type AdapterInfo struct {
	// Name is the device name as reported by the driver.
	Name string

	// Vendor is the device vendor, if known.
	Vendor string

	// DeviceType distinguishes discrete, integrated, and software
	// devices.
	DeviceType gputypes.DeviceType
}

// CommandBufferFlags are the usage flags passed to a raw command buffer
// begin call. They mirror the native one-time-submit, render-pass
// continuation, and simultaneous-use bits.
type CommandBufferFlags uint8

const (
	// FlagOneTimeSubmit marks a buffer that is submitted once and then
	// reset or freed.
	FlagOneTimeSubmit CommandBufferFlags = 1 << iota

	// FlagRenderPassContinue marks a secondary buffer recorded entirely
	// inside a render pass established by its executing primary.
	FlagRenderPassContinue

	// FlagSimultaneousUse marks a buffer that may be resubmitted while a
	// previous submission of it is still pending.
	FlagSimultaneousUse
)

// Level distinguishes directly submittable command buffers from those
// only executable out of a primary buffer.
type Level uint8

const (
	// LevelPrimary buffers are submitted to queues and may execute
	// secondary buffers.
	LevelPrimary Level = iota

	// LevelSecondary buffers are executed via a primary buffer and are
	// never submitted directly.
	LevelSecondary
)

// PoolFlags configure command pool creation.
type PoolFlags uint8

const (
	// PoolTransient hints that buffers from the pool are short-lived.
	PoolTransient PoolFlags = 1 << iota

	// PoolResetIndividual allows buffers from the pool to be reset one
	// at a time instead of only through a pool reset.
	PoolResetIndividual
)

// RenderPass is an opaque backend render pass handle. The hal layer
// never inspects it; it only flows through inheritance info.
type RenderPass interface{}

// Framebuffer is an opaque backend framebuffer handle.
type Framebuffer interface{}

// InheritanceInfo carries the primary-buffer state a secondary command
// buffer may rely on while recording.
type InheritanceInfo struct {
	// RenderPass is the pass the secondary buffer will execute within,
	// or nil when the buffer is not render-pass confined.
	RenderPass RenderPass

	// Subpass is the subpass index within RenderPass.
	Subpass int

	// Framebuffer optionally pins the exact framebuffer the primary
	// buffer will render into.
	Framebuffer Framebuffer
}

// PipelineStage is a bitmask of execution stages used in semaphore
// waits.
type PipelineStage uint32

const (
	// StageTopOfPipe is the earliest execution stage.
	StageTopOfPipe PipelineStage = 1 << iota

	// StageTransfer covers copy and fill operations.
	StageTransfer

	// StageComputeShader covers compute dispatches.
	StageComputeShader

	// StageColorAttachmentOutput covers color writes of render passes.
	StageColorAttachmentOutput

	// StageBottomOfPipe is the latest execution stage.
	StageBottomOfPipe
)

// Buffer is a backend buffer resource.
type Buffer interface {
	// Size returns the buffer size in bytes.
	Size() uint64
}

// Image is a backend image resource.
type Image interface {
	// Extent returns the image dimensions.
	Extent() Extent

	// Format returns the pixel format.
	Format() gputypes.TextureFormat
}

// Memory is a backend memory allocation used to back sparse resources.
type Memory interface {
	// Size returns the allocation size in bytes.
	Size() uint64
}

// BufferCopy describes one region of a buffer-to-buffer copy.
type BufferCopy struct {
	SrcOffset uint64
	DstOffset uint64
	Size      uint64
}

// BufferImageCopy describes one region of a buffer-to-image copy.
// The buffer holds tightly packed rows unless RowLength says otherwise.
type BufferImageCopy struct {
	BufferOffset uint64

	// RowLength is the buffer row stride in texels; zero means tightly
	// packed at the image width.
	RowLength uint32

	// ImageOffset is the top-left texel of the destination region.
	ImageOffsetX uint32
	ImageOffsetY uint32

	// ImageExtent is the size of the destination region.
	ImageExtent Extent
}

// Rect is an integer rectangle, used for render areas and viewports.
type Rect struct {
	X, Y          int32
	Width, Height uint32
}

// SparseBind describes binding a memory range behind a range of a
// sparse resource. A nil Memory unbinds the range.
type SparseBind struct {
	// ResourceOffset is the byte offset within the sparse resource.
	ResourceOffset uint64

	// Size is the length of the bound range in bytes.
	Size uint64

	// Memory backs the range; nil leaves the range unbound.
	Memory Memory

	// MemoryOffset is the byte offset within Memory.
	MemoryOffset uint64
}

// SparseBufferBind groups the sparse binds of one buffer.
type SparseBufferBind struct {
	Buffer Buffer
	Binds  []SparseBind
}

// SparseImageBind groups the opaque sparse binds of one image.
type SparseImageBind struct {
	Image Image
	Binds []SparseBind
}

// Extent is a two-dimensional size in pixels.
type Extent struct {
	Width  uint32
	Height uint32
}

// PresentMode selects how presentation is paced.
type PresentMode uint8

const (
	// PresentModeFifo queues frames and presents on vertical blank.
	// Every backend supports it.
	PresentModeFifo PresentMode = 1 << iota

	// PresentModeMailbox replaces the queued frame when a new one
	// arrives.
	PresentModeMailbox

	// PresentModeImmediate presents without waiting for vertical blank.
	PresentModeImmediate
)

// PresentModes is a set of supported present modes.
type PresentModes uint8

// Has reports whether the set contains m.
func (s PresentModes) Has(m PresentMode) bool { return uint8(s)&uint8(m) != 0 }

// CompositeAlphaMode selects how the compositor treats the alpha
// channel of presented images.
type CompositeAlphaMode uint8

const (
	// CompositeAlphaOpaque ignores the alpha channel.
	CompositeAlphaOpaque CompositeAlphaMode = 1 << iota

	// CompositeAlphaPreMultiplied expects premultiplied color values.
	CompositeAlphaPreMultiplied

	// CompositeAlphaPostMultiplied expects straight color values.
	CompositeAlphaPostMultiplied

	// CompositeAlphaInherit defers to native platform settings.
	CompositeAlphaInherit
)

// CompositeAlphaModes is a set of supported composite alpha modes.
type CompositeAlphaModes uint8

// Has reports whether the set contains m.
func (s CompositeAlphaModes) Has(m CompositeAlphaMode) bool { return uint8(s)&uint8(m) != 0 }

// Range is an inclusive count range.
type Range struct {
	Min uint32
	Max uint32
}

// ExtentRange is an inclusive extent range.
type ExtentRange struct {
	Min Extent
	Max Extent
}

// SurfaceCapabilities reports the negotiated, read-only presentation
// properties of a surface on a given adapter.
type SurfaceCapabilities struct {
	// PresentModes are the supported presentation modes.
	PresentModes PresentModes

	// CompositeAlphaModes are the supported alpha composite modes.
	CompositeAlphaModes CompositeAlphaModes

	// ImageCount is the allowed swapchain image count range. The range
	// is informative: the configured swapchain exposes one outstanding
	// image at a time regardless.
	ImageCount Range

	// CurrentExtent is the surface extent the window system currently
	// prescribes, or nil when the swapchain extent is free to choose.
	CurrentExtent *Extent

	// Extents bounds the configurable swapchain extent.
	Extents ExtentRange

	// MaxImageLayers is the maximum array layer count.
	MaxImageLayers uint32

	// Usage lists the usages presentable images support. At minimum
	// render attachment and copy source.
	Usage gputypes.TextureUsage
}

// SwapchainConfig describes the presentation target requested through
// Surface.ConfigureSwapchain.
type SwapchainConfig struct {
	// Format is the pixel format of the presentable image. It must be
	// one of the formats reported by Surface.SupportedFormats.
	Format gputypes.TextureFormat

	// Extent is the requested image size.
	Extent Extent

	// ImageCount is the requested image count, clamped to the
	// capability range by backends.
	ImageCount uint32

	// PresentMode paces presentation.
	PresentMode PresentMode

	// CompositeAlpha selects compositor alpha treatment.
	CompositeAlpha CompositeAlphaMode

	// Usage lists the usages the application needs on the presentable
	// image.
	Usage gputypes.TextureUsage
}

// SwapchainImage is an acquired presentable image. Its concrete type is
// backend specific; it is handed back unmodified through Queue.Present.
type SwapchainImage interface{}

// Window is a native window handle. Concrete backends type-assert it
// to the presentation contract they support (for example
// soft.PixelWindow). A backend that cannot present to the given window
// fails surface creation with ErrWindowUnsupported.
type Window interface{}
