// Package gpuctx adapts an opened hal device to the gpucontext
// provider contracts, so libraries from the gogpu ecosystem can share
// the device instead of opening their own.
//
// The provider implements gpucontext.DeviceProvider; when the device
// was opened through the wgpu backend it also answers HalDevice and
// HalQueue with the native wgpu handles, which is what compute
// accelerators probe for. On other backends those return nil and
// consumers fall back to their own device.
package gpuctx

import (
	"errors"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/hal"
	"github.com/gogpu/hal/backend/wgpu"
)

// ErrNilDevice is returned by NewProvider when the device or queue is
// nil.
var ErrNilDevice = errors.New("gpuctx: nil device or queue")

// Provider shares one hal device and queue with gpucontext consumers.
// It does not own either: destroying them stays with the caller, after
// every consumer is done.
type Provider struct {
	dev    *hal.Device
	queue  *hal.Queue
	format gputypes.TextureFormat
}

// NewProvider wraps an opened device and queue. The format is reported
// as the preferred surface format; pick the one the swapchain was
// configured with.
func NewProvider(dev *hal.Device, queue *hal.Queue, format gputypes.TextureFormat) (*Provider, error) {
	if dev == nil || queue == nil {
		return nil, ErrNilDevice
	}
	return &Provider{dev: dev, queue: queue, format: format}, nil
}

func (p *Provider) Device() gpucontext.Device {
	return &ctxDevice{dev: p.dev}
}

func (p *Provider) Queue() gpucontext.Queue { return p.queue }

func (p *Provider) Adapter() gpucontext.Adapter { return nil }

func (p *Provider) SurfaceFormat() gputypes.TextureFormat { return p.format }

// HalDevice returns the native wgpu device, or nil when the underlying
// backend is not wgpu.
func (p *Provider) HalDevice() any {
	raw, ok := wgpu.NativeDevice(p.dev.Raw())
	if !ok {
		return nil
	}
	return raw
}

// HalQueue is the queue counterpart of HalDevice.
func (p *Provider) HalQueue() any {
	raw, ok := wgpu.NativeQueue(p.queue.Raw())
	if !ok {
		return nil
	}
	return raw
}

// ctxDevice bridges Poll/Destroy onto the hal device. Destroy is a
// no-op: the provider never owns the device.
type ctxDevice struct {
	dev *hal.Device
}

func (d *ctxDevice) Poll(wait bool) {
	if wait {
		_ = d.dev.WaitIdle()
	}
}

func (d *ctxDevice) Destroy() {}
