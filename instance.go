package hal

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/hal/backend"
)

// Instance is the front door: it owns the backend connection and
// enumerates the adapters it exposes.
type Instance struct {
	raw  backend.Instance
	name string
}

// Create selects the highest-priority available backend from the
// registry and creates an instance on it. The application name and
// version are forwarded to backends that report them to drivers.
func Create(appName string, appVersion uint32) (*Instance, error) {
	entry, err := backend.Select()
	if err != nil {
		return nil, err
	}
	return create(entry, appName, appVersion)
}

// CreateNamed creates an instance on the named backend, bypassing
// priority selection. It fails with backend.ErrNotRegistered if no
// such backend is registered.
func CreateNamed(backendName, appName string, appVersion uint32) (*Instance, error) {
	entry, ok := backend.Lookup(backendName)
	if !ok {
		return nil, fmt.Errorf("hal: create instance %q: %w", backendName, backend.ErrNotRegistered)
	}
	return create(entry, appName, appVersion)
}

func create(entry backend.Entry, appName string, appVersion uint32) (*Instance, error) {
	raw, err := entry.Create(appName, appVersion)
	if err != nil {
		return nil, fmt.Errorf("hal: create instance on %q: %w", entry.Name, err)
	}
	Logger().Info("hal: instance created", "backend", entry.Name, "app", appName)
	return &Instance{raw: raw, name: entry.Name}, nil
}

// Backend returns the name of the backend this instance runs on.
func (inst *Instance) Backend() string { return inst.name }

// EnumerateAdapters lists the adapters the backend exposes, best
// first.
func (inst *Instance) EnumerateAdapters() []*Adapter {
	raws := inst.raw.EnumerateAdapters()
	adapters := make([]*Adapter, len(raws))
	for i, raw := range raws {
		adapters[i] = &Adapter{raw: raw}
	}
	return adapters
}

// CreateSurface wraps a window handle in a surface. The window type is
// interpreted by the backend; an unsupported type fails with
// ErrWindowUnsupported.
func (inst *Instance) CreateSurface(w Window) (*Surface, error) {
	raw, err := inst.raw.CreateSurface(w)
	if err != nil {
		return nil, err
	}
	return &Surface{raw: raw}, nil
}

// DestroySurface releases a surface. Any swapchain configured on it
// must be unconfigured first.
func (inst *Instance) DestroySurface(s *Surface) {
	inst.raw.DestroySurface(s.raw)
}

// Destroy tears the instance down. All devices opened through it must
// be destroyed first.
func (inst *Instance) Destroy() {
	inst.raw.Destroy()
}

// Adapter is one physical device exposed by an instance.
type Adapter struct {
	raw backend.Adapter
}

// Info returns the adapter's static description.
func (a *Adapter) Info() AdapterInfo { return a.raw.Info() }

// QueueFamilies lists the queue families the adapter exposes.
func (a *Adapter) QueueFamilies() []QueueFamily { return a.raw.QueueFamilies() }

// OpenDevice is the result of opening an adapter: a logical device and
// the queues requested from one family.
type OpenDevice struct {
	Device *Device
	Queues []*Queue
}

// Open creates a logical device on the adapter with count queues from
// the given family. The returned queues carry the family's capability.
func (a *Adapter) Open(family QueueFamilyID, count int) (*OpenDevice, error) {
	var fam QueueFamily
	found := false
	for _, f := range a.QueueFamilies() {
		if f.ID == family {
			fam = f
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("hal: open adapter: queue family %d: %w", family, ErrCreation)
	}
	if count < 1 || count > fam.MaxQueues {
		return nil, fmt.Errorf("hal: open adapter: %d queues from family %d (max %d): %w",
			count, family, fam.MaxQueues, ErrCreation)
	}
	rawDev, rawQueues, err := a.raw.Open(family, count)
	if err != nil {
		return nil, err
	}
	dev := &Device{raw: rawDev, families: make(map[QueueFamilyID]QueueFamily)}
	for _, f := range a.QueueFamilies() {
		dev.families[f.ID] = f
	}
	queues := make([]*Queue, len(rawQueues))
	for i, rq := range rawQueues {
		queues[i] = &Queue{raw: rq, capability: fam.Capability, family: family}
	}
	Logger().Debug("hal: device opened",
		"adapter", a.Info().Name, "family", family, "queues", count)
	return &OpenDevice{Device: dev, Queues: queues}, nil
}

// Device is a logical device: the factory for pools, synchronization
// primitives, and resources.
type Device struct {
	raw      backend.Device
	families map[QueueFamilyID]QueueFamily
}

// Raw returns the backend device. It is the escape hatch for code that
// shares the device with other libraries, such as the gpuctx provider.
func (d *Device) Raw() backend.Device { return d.raw }

// OpenPool creates a command pool over the given queue family. The
// pool's buffers carry the family's capability.
func (d *Device) OpenPool(family QueueFamilyID, flags PoolFlags) (*CommandPool, error) {
	fam, ok := d.families[family]
	if !ok {
		return nil, fmt.Errorf("hal: open pool: queue family %d: %w", family, ErrCreation)
	}
	raw, err := d.raw.CreateCommandPool(family, flags)
	if err != nil {
		return nil, err
	}
	return &CommandPool{raw: raw, device: d, capability: fam.Capability, flags: flags}, nil
}

// CreateFence creates a fence, optionally already signaled.
func (d *Device) CreateFence(signaled bool) (*Fence, error) {
	raw, err := d.raw.CreateFence(signaled)
	if err != nil {
		return nil, err
	}
	return &Fence{raw: raw}, nil
}

// DestroyFence releases a fence. No submission may still reference it.
func (d *Device) DestroyFence(f *Fence) {
	d.raw.DestroyFence(f.raw)
}

// CreateSemaphore creates an unsignaled semaphore.
func (d *Device) CreateSemaphore() (*Semaphore, error) {
	raw, err := d.raw.CreateSemaphore()
	if err != nil {
		return nil, err
	}
	return &Semaphore{raw: raw}, nil
}

// DestroySemaphore releases a semaphore. No submission may still
// reference it.
func (d *Device) DestroySemaphore(s *Semaphore) {
	d.raw.DestroySemaphore(s.raw)
}

// CreateBuffer creates a buffer of the given size. A sparse buffer has
// no backing memory until ranges are bound through Queue.BindSparse.
func (d *Device) CreateBuffer(size uint64, sparse bool) (Buffer, error) {
	return d.raw.CreateBuffer(size, sparse)
}

// DestroyBuffer releases a buffer.
func (d *Device) DestroyBuffer(b Buffer) {
	d.raw.DestroyBuffer(b)
}

// CreateImage creates a two-dimensional image.
func (d *Device) CreateImage(extent Extent, format gputypes.TextureFormat) (Image, error) {
	return d.raw.CreateImage(extent, format)
}

// DestroyImage releases an image.
func (d *Device) DestroyImage(img Image) {
	d.raw.DestroyImage(img)
}

// AllocateMemory allocates device memory for sparse binding.
func (d *Device) AllocateMemory(size uint64) (Memory, error) {
	return d.raw.AllocateMemory(size)
}

// FreeMemory releases a memory allocation. No sparse resource may
// still be bound to it.
func (d *Device) FreeMemory(m Memory) {
	d.raw.FreeMemory(m)
}

// WaitIdle blocks until every queue of the device is idle.
func (d *Device) WaitIdle() error {
	return d.raw.WaitIdle()
}

// Destroy tears the device down. The device must be idle and every
// object created from it destroyed first.
func (d *Device) Destroy() {
	d.raw.Destroy()
}
