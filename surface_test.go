package hal

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func TestDefaultSwapchainConfig(t *testing.T) {
	caps := SurfaceCapabilities{
		PresentModes:        PresentModes(PresentModeFifo | PresentModeMailbox),
		CompositeAlphaModes: CompositeAlphaModes(CompositeAlphaOpaque),
		ImageCount:          Range{Min: 2, Max: 8},
		Extents: ExtentRange{
			Min: Extent{Width: 1, Height: 1},
			Max: Extent{Width: 4096, Height: 4096},
		},
		Usage: gputypes.TextureUsageRenderAttachment,
	}
	formats := []gputypes.TextureFormat{gputypes.TextureFormatRGBA8Unorm}

	cfg := DefaultSwapchainConfig(caps, formats, Extent{Width: 800, Height: 600})
	if cfg.Format != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("format = %v, want first supported format", cfg.Format)
	}
	if cfg.PresentMode != PresentModeFifo {
		t.Errorf("present mode = %v, want Fifo", cfg.PresentMode)
	}
	if cfg.ImageCount != 2 {
		t.Errorf("image count = %d, want 2", cfg.ImageCount)
	}
	if cfg.Extent != (Extent{Width: 800, Height: 600}) {
		t.Errorf("extent = %v, want 800x600", cfg.Extent)
	}
	if cfg.CompositeAlpha != CompositeAlphaOpaque {
		t.Errorf("composite alpha = %v, want Opaque", cfg.CompositeAlpha)
	}
}

func TestDefaultSwapchainConfigNoFormats(t *testing.T) {
	cfg := DefaultSwapchainConfig(SurfaceCapabilities{
		ImageCount: Range{Min: 1, Max: 3},
		Extents: ExtentRange{
			Min: Extent{Width: 1, Height: 1},
			Max: Extent{Width: 4096, Height: 4096},
		},
	}, nil, Extent{Width: 100, Height: 100})
	if cfg.Format != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("format = %v, want BGRA8Unorm fallback", cfg.Format)
	}
}

func TestDefaultSwapchainConfigClamps(t *testing.T) {
	caps := SurfaceCapabilities{
		ImageCount: Range{Min: 3, Max: 3},
		Extents: ExtentRange{
			Min: Extent{Width: 64, Height: 64},
			Max: Extent{Width: 256, Height: 256},
		},
	}
	cfg := DefaultSwapchainConfig(caps, nil, Extent{Width: 8, Height: 1024})
	if cfg.ImageCount != 3 {
		t.Errorf("image count = %d, want 3 (clamped to minimum)", cfg.ImageCount)
	}
	if cfg.Extent != (Extent{Width: 64, Height: 256}) {
		t.Errorf("extent = %v, want clamped to 64x256", cfg.Extent)
	}
}

func TestDefaultSwapchainConfigFixedExtent(t *testing.T) {
	cur := Extent{Width: 1920, Height: 1080}
	caps := SurfaceCapabilities{
		ImageCount:    Range{Min: 1, Max: 2},
		CurrentExtent: &cur,
	}
	cfg := DefaultSwapchainConfig(caps, nil, Extent{Width: 10, Height: 10})
	if cfg.Extent != cur {
		t.Errorf("extent = %v, want the window-prescribed %v", cfg.Extent, cur)
	}
}
