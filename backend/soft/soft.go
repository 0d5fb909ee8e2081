// Package soft is the CPU reference backend. It implements the full
// backend contract on host memory: buffers and images are byte slices,
// queues are worker goroutines, and presentation blits a renderbuffer
// into a caller-supplied pixel window.
//
// Draws execute as solid fills over the active viewport. The backend
// exists to exercise the command, synchronization, and presentation
// protocols deterministically, not to rasterize geometry; transfer and
// fill commands are executed exactly.
//
// Importing the package registers it under the name "soft" with
// priority 10, below any GPU backend.
package soft

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/hal/backend"
)

// Name is the registry name of this backend.
const Name = "soft"

// Priority is the registry priority: below GPU backends, above
// nothing.
const Priority = 10

func init() {
	backend.Register(backend.Entry{
		Name:      Name,
		Priority:  Priority,
		Available: func() bool { return true },
		Create:    createInstance,
	})
}

func createInstance(appName string, appVersion uint32) (backend.Instance, error) {
	return &instance{app: appName}, nil
}

type instance struct {
	app string
}

func (in *instance) Name() string { return Name }

func (in *instance) EnumerateAdapters() []backend.Adapter {
	return []backend.Adapter{&adapter{}}
}

func (in *instance) CreateSurface(w backend.Window) (backend.Surface, error) {
	win, ok := w.(PixelWindow)
	if !ok {
		return nil, fmt.Errorf("soft: create surface from %T: %w", w, backend.ErrWindowUnsupported)
	}
	return newSurface(win), nil
}

func (in *instance) DestroySurface(s backend.Surface) {}

func (in *instance) Destroy() {}

type adapter struct{}

func (a *adapter) Info() backend.AdapterInfo {
	return backend.AdapterInfo{
		Name:       "Soft Renderer",
		Vendor:     "gogpu",
		DeviceType: gputypes.DeviceTypeCPU,
	}
}

func (a *adapter) QueueFamilies() []backend.QueueFamily {
	return []backend.QueueFamily{
		{ID: 0, Capability: backend.CapabilityGeneral, MaxQueues: 4},
		{ID: 1, Capability: backend.CapabilityTransfer, MaxQueues: 1},
	}
}

func (a *adapter) Open(family backend.QueueFamilyID, count int) (backend.Device, []backend.Queue, error) {
	var fam backend.QueueFamily
	found := false
	for _, f := range a.QueueFamilies() {
		if f.ID == family {
			fam = f
			found = true
			break
		}
	}
	if !found || count < 1 || count > fam.MaxQueues {
		return nil, nil, fmt.Errorf("soft: open family %d with %d queues: %w",
			family, count, backend.ErrCreation)
	}
	dev := &device{}
	queues := make([]backend.Queue, count)
	for i := range queues {
		q := newQueue(dev, family, fam.Capability)
		dev.queues = append(dev.queues, q)
		queues[i] = q
	}
	return dev, queues, nil
}

type device struct {
	queues []*queue
}

func (d *device) CreateCommandPool(family backend.QueueFamilyID, flags backend.PoolFlags) (backend.CommandPool, error) {
	return &commandPool{flags: flags}, nil
}

func (d *device) DestroyCommandPool(p backend.CommandPool) {}

func (d *device) CreateFence(signaled bool) (backend.Fence, error) {
	return newFence(signaled), nil
}

func (d *device) DestroyFence(f backend.Fence) {}

func (d *device) CreateSemaphore() (backend.Semaphore, error) {
	return newSemaphore(), nil
}

func (d *device) DestroySemaphore(s backend.Semaphore) {}

func (d *device) CreateBuffer(size uint64, sparse bool) (backend.Buffer, error) {
	b := &bufferRes{size: size, sparse: sparse}
	if !sparse {
		b.data = make([]byte, size)
	}
	return b, nil
}

func (d *device) DestroyBuffer(b backend.Buffer) {}

func (d *device) CreateImage(extent backend.Extent, format gputypes.TextureFormat) (backend.Image, error) {
	return newImage(extent, format), nil
}

func (d *device) DestroyImage(img backend.Image) {}

func (d *device) AllocateMemory(size uint64) (backend.Memory, error) {
	return &memoryRes{data: make([]byte, size)}, nil
}

func (d *device) FreeMemory(m backend.Memory) {}

func (d *device) WaitIdle() error {
	for _, q := range d.queues {
		if err := q.WaitIdle(); err != nil {
			return err
		}
	}
	return nil
}

func (d *device) Destroy() {
	for _, q := range d.queues {
		q.shutdown()
	}
	d.queues = nil
}
