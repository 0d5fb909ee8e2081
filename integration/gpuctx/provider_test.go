package gpuctx

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/hal"
	"github.com/gogpu/hal/backend/soft"
)

var _ gpucontext.DeviceProvider = (*Provider)(nil)

func openSoft(t *testing.T) (*hal.Device, *hal.Queue) {
	t.Helper()
	inst, err := hal.CreateNamed(soft.Name, "gpuctx-test", 1)
	if err != nil {
		t.Fatalf("CreateNamed: %v", err)
	}
	t.Cleanup(inst.Destroy)
	adapters := inst.EnumerateAdapters()
	if len(adapters) == 0 {
		t.Fatal("no adapters")
	}
	opened, err := adapters[0].Open(0, 1)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(opened.Device.Destroy)
	return opened.Device, opened.Queues[0]
}

func TestNewProviderNil(t *testing.T) {
	if _, err := NewProvider(nil, nil, gputypes.TextureFormatBGRA8Unorm); !errors.Is(err, ErrNilDevice) {
		t.Errorf("NewProvider(nil) err = %v, want ErrNilDevice", err)
	}
}

func TestProviderSurfaceFormat(t *testing.T) {
	dev, q := openSoft(t)
	p, err := NewProvider(dev, q, gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if got := p.SurfaceFormat(); got != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("SurfaceFormat = %v, want RGBA8Unorm", got)
	}
}

func TestHalHandlesNilOnSoftBackend(t *testing.T) {
	dev, q := openSoft(t)
	p, err := NewProvider(dev, q, gputypes.TextureFormatBGRA8Unorm)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if h := p.HalDevice(); h != nil {
		t.Errorf("HalDevice on soft backend = %v, want nil", h)
	}
	if h := p.HalQueue(); h != nil {
		t.Errorf("HalQueue on soft backend = %v, want nil", h)
	}
}

func TestPollWaitsForQueue(t *testing.T) {
	dev, q := openSoft(t)
	p, err := NewProvider(dev, q, gputypes.TextureFormatBGRA8Unorm)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	// Poll(true) must not deadlock or panic on an idle device.
	p.Device().Poll(true)
	p.Device().Poll(false)
}
