// Package wgpu implements the backend contract on gogpu/wgpu's
// hardware abstraction. Command buffers record operations and encode
// them into a fresh wgpu command encoder at submit time; fences map to
// wgpu timeline fences; presentation renders into a swapchain texture
// and reads it back into the window through a staging buffer.
//
// WebGPU-class queues are implicitly ordered, so semaphores carry no
// device state here: a submission's waits are satisfied by queue order
// alone. Cross-device semaphores are not supported.
//
// Importing the package registers it under the name "wgpu" with
// priority 100, above the software backend. It is only available when
// a usable GPU adapter is present.
package wgpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	whal "github.com/gogpu/wgpu/hal"

	// Vulkan is the only wgpu backend wired here; it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/hal/backend"
)

// Name is the registry name of this backend.
const Name = "wgpu"

// Priority is the registry priority: above the software backend.
const Priority = 100

func init() {
	backend.Register(backend.Entry{
		Name:      Name,
		Priority:  Priority,
		Available: available,
		Create:    createInstance,
	})
}

// available probes for a usable adapter without keeping any state.
func available() bool {
	b, ok := whal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return false
	}
	inst, err := b.CreateInstance(&whal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return false
	}
	defer inst.Destroy()
	return len(inst.EnumerateAdapters(nil)) > 0
}

func createInstance(appName string, appVersion uint32) (backend.Instance, error) {
	b, ok := whal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("wgpu: vulkan backend not compiled in: %w", backend.ErrUnsupportedBackend)
	}
	raw, err := b.CreateInstance(&whal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}
	return &instance{raw: raw}, nil
}

type instance struct {
	raw whal.Instance
}

func (in *instance) Name() string { return Name }

func (in *instance) EnumerateAdapters() []backend.Adapter {
	exposed := in.raw.EnumerateAdapters(nil)
	adapters := make([]backend.Adapter, 0, len(exposed))

	// Discrete first, then integrated, then the rest.
	rank := func(t gputypes.DeviceType) int {
		switch t {
		case gputypes.DeviceTypeDiscreteGPU:
			return 0
		case gputypes.DeviceTypeIntegratedGPU:
			return 1
		}
		return 2
	}
	for r := 0; r <= 2; r++ {
		for i := range exposed {
			if rank(exposed[i].Info.DeviceType) == r {
				adapters = append(adapters, &adapter{exposed: exposed[i]})
			}
		}
	}
	return adapters
}

func (in *instance) CreateSurface(w backend.Window) (backend.Surface, error) {
	win, ok := w.(FramebufferWindow)
	if !ok {
		return nil, fmt.Errorf("wgpu: create surface from %T: %w", w, backend.ErrWindowUnsupported)
	}
	return newSurface(win), nil
}

func (in *instance) DestroySurface(s backend.Surface) {}

func (in *instance) Destroy() {
	in.raw.Destroy()
}

type adapter struct {
	exposed whal.ExposedAdapter
}

func (a *adapter) Info() backend.AdapterInfo {
	return backend.AdapterInfo{
		Name:       a.exposed.Info.Name,
		Vendor:     "wgpu",
		DeviceType: a.exposed.Info.DeviceType,
	}
}

// QueueFamilies exposes the single general queue of a WebGPU-class
// device.
func (a *adapter) QueueFamilies() []backend.QueueFamily {
	return []backend.QueueFamily{
		{ID: 0, Capability: backend.CapabilityGeneral, MaxQueues: 1},
	}
}

func (a *adapter) Open(family backend.QueueFamilyID, count int) (backend.Device, []backend.Queue, error) {
	if family != 0 || count != 1 {
		return nil, nil, fmt.Errorf("wgpu: open family %d with %d queues: %w",
			family, count, backend.ErrCreation)
	}
	opened, err := a.exposed.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return nil, nil, fmt.Errorf("wgpu: open adapter %q: %w", a.exposed.Info.Name, err)
	}
	dev := &device{raw: opened.Device, rawQueue: opened.Queue}
	q := &queue{dev: dev}
	dev.queue = q
	return dev, []backend.Queue{q}, nil
}

type device struct {
	raw      whal.Device
	rawQueue whal.Queue
	queue    *queue

	// Lazily built compute state for Dispatch; see pipeline.go.
	pipeOnce sync.Once
	pipeErr  error
	dispatch dispatchPipeline
	fill     fillPipeline
}

func (d *device) CreateCommandPool(family backend.QueueFamilyID, flags backend.PoolFlags) (backend.CommandPool, error) {
	return &commandPool{}, nil
}

func (d *device) DestroyCommandPool(p backend.CommandPool) {}

func (d *device) CreateFence(signaled bool) (backend.Fence, error) {
	raw, err := d.raw.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("wgpu: create fence: %w", err)
	}
	return &fence{dev: d, raw: raw, createdSignaled: signaled}, nil
}

func (d *device) DestroyFence(f backend.Fence) {
	d.raw.DestroyFence(f.(*fence).raw)
}

func (d *device) CreateSemaphore() (backend.Semaphore, error) {
	return &semaphore{}, nil
}

func (d *device) DestroySemaphore(s backend.Semaphore) {}

func (d *device) CreateBuffer(size uint64, sparse bool) (backend.Buffer, error) {
	if sparse {
		// wgpu has no sparse residency; sparse resources stay on the
		// software backend.
		return nil, fmt.Errorf("wgpu: sparse buffers: %w", backend.ErrCreation)
	}
	raw, err := d.raw.CreateBuffer(&whal.BufferDescriptor{
		Label: "hal_buffer",
		Size:  size,
		Usage: gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst | gputypes.BufferUsageStorage,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create buffer: %w", err)
	}
	return &buffer{dev: d, raw: raw, size: size}, nil
}

func (d *device) DestroyBuffer(b backend.Buffer) {
	d.raw.DestroyBuffer(b.(*buffer).raw)
}

func (d *device) CreateImage(extent backend.Extent, format gputypes.TextureFormat) (backend.Image, error) {
	tex, view, err := d.createTexture(extent, format, "hal_image")
	if err != nil {
		return nil, err
	}
	return &texture{dev: d, raw: tex, view: view, extent: extent, format: format}, nil
}

func (d *device) createTexture(extent backend.Extent, format gputypes.TextureFormat, label string) (whal.Texture, whal.TextureView, error) {
	tex, err := d.raw.CreateTexture(&whal.TextureDescriptor{
		Label:         label,
		Size:          whal.Extent3D{Width: extent.Width, Height: extent.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("wgpu: create texture: %w", err)
	}
	view, err := d.raw.CreateTextureView(tex, &whal.TextureViewDescriptor{Label: label + "_view"})
	if err != nil {
		d.raw.DestroyTexture(tex)
		return nil, nil, fmt.Errorf("wgpu: create texture view: %w", err)
	}
	return tex, view, nil
}

func (d *device) DestroyImage(img backend.Image) {
	im := img.(*texture)
	d.raw.DestroyTextureView(im.view)
	d.raw.DestroyTexture(im.raw)
}

func (d *device) AllocateMemory(size uint64) (backend.Memory, error) {
	return nil, fmt.Errorf("wgpu: explicit memory allocation: %w", backend.ErrCreation)
}

func (d *device) FreeMemory(m backend.Memory) {}

func (d *device) WaitIdle() error {
	return d.queue.WaitIdle()
}

func (d *device) Destroy() {
	d.queue.shutdown()
	d.destroyPipelines()
	d.raw.Destroy()
}

// buffer wraps a wgpu buffer.
type buffer struct {
	dev  *device
	raw  whal.Buffer
	size uint64
}

func (b *buffer) Size() uint64 { return b.size }

// texture wraps a wgpu texture plus its default view.
type texture struct {
	dev    *device
	raw    whal.Texture
	view   whal.TextureView
	extent backend.Extent
	format gputypes.TextureFormat
}

func (im *texture) Extent() backend.Extent         { return im.extent }
func (im *texture) Format() gputypes.TextureFormat { return im.format }

// NativeDevice returns the underlying wgpu device when d was opened by
// this backend. Device-sharing integrations hand it to libraries that
// speak wgpu/hal directly.
func NativeDevice(d backend.Device) (any, bool) {
	dev, ok := d.(*device)
	if !ok {
		return nil, false
	}
	return dev.raw, true
}

// NativeQueue is the queue counterpart of NativeDevice.
func NativeQueue(q backend.Queue) (any, bool) {
	qu, ok := q.(*queue)
	if !ok {
		return nil, false
	}
	return qu.dev.rawQueue, true
}

// ReadBuffer copies len(dst) bytes of a wgpu buffer into dst, starting
// at offset. The caller synchronizes against queue work with a fence
// first.
func ReadBuffer(b backend.Buffer, offset uint64, dst []byte) error {
	buf := b.(*buffer)
	return buf.dev.rawQueue.ReadBuffer(buf.raw, offset, dst)
}

// WriteBuffer copies src into a wgpu buffer at offset, the upload
// counterpart of ReadBuffer.
func WriteBuffer(b backend.Buffer, offset uint64, src []byte) {
	buf := b.(*buffer)
	buf.dev.rawQueue.WriteBuffer(buf.raw, offset, src)
}
