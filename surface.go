package hal

import (
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/hal/backend"
)

// Surface is a presentable target created from a window handle. It
// stays valid across swapchain reconfigurations; per-configuration
// state lives in the swapchain the backend manages behind it.
//
// The acquire protocol allows a single outstanding image: after
// AcquireImage succeeds, the image must be presented (or the swapchain
// reconfigured) before the next acquire.
type Surface struct {
	raw backend.Surface
}

// SupportsQueueFamily reports whether queues of the given family can
// present to this surface.
func (s *Surface) SupportsQueueFamily(f QueueFamily) bool {
	return s.raw.SupportsQueueFamily(f)
}

// Capabilities queries what swapchain configurations the surface
// accepts on the given adapter. The result is read-only hardware
// state; querying never changes the surface.
func (s *Surface) Capabilities(a *Adapter) SurfaceCapabilities {
	return s.raw.Capabilities(a.raw)
}

// SupportedFormats lists the image formats the surface accepts on the
// given adapter. An empty slice means any format works.
func (s *Surface) SupportedFormats(a *Adapter) []gputypes.TextureFormat {
	return s.raw.SupportedFormats(a.raw)
}

// ConfigureSwapchain creates the swapchain for the given
// configuration, tearing down any previous one first. The previous
// swapchain's resources are released even when creating the new one
// fails. Any outstanding acquired image is invalidated.
func (s *Surface) ConfigureSwapchain(d *Device, cfg SwapchainConfig) error {
	if err := s.raw.ConfigureSwapchain(d.raw, cfg); err != nil {
		return err
	}
	Logger().Debug("hal: swapchain configured",
		"extent", cfg.Extent, "format", cfg.Format, "images", cfg.ImageCount)
	return nil
}

// UnconfigureSwapchain releases the swapchain, if any. Safe to call on
// an unconfigured surface.
func (s *Surface) UnconfigureSwapchain(d *Device) {
	s.raw.UnconfigureSwapchain(d.raw)
}

// AcquireImage obtains the next presentable image, blocking up to
// timeout. The suboptimal result reports that the image is usable but
// the swapchain no longer matches the surface; ErrOutOfDate means it
// must be reconfigured before another acquire can succeed.
func (s *Surface) AcquireImage(timeout time.Duration) (SwapchainImage, bool, error) {
	return s.raw.AcquireImage(timeout)
}

// DefaultSwapchainConfig derives a reasonable swapchain configuration
// from the surface's capabilities and format list for the given
// extent: the first supported format (BGRA8 when the surface takes
// any), FIFO presentation, double buffering clamped to the supported
// image count, opaque compositing, and render-attachment usage.
func DefaultSwapchainConfig(caps SurfaceCapabilities, formats []gputypes.TextureFormat, extent Extent) SwapchainConfig {
	format := gputypes.TextureFormatBGRA8Unorm
	if len(formats) > 0 {
		format = formats[0]
	}
	imageCount := uint32(2)
	if imageCount < caps.ImageCount.Min {
		imageCount = caps.ImageCount.Min
	}
	if imageCount > caps.ImageCount.Max {
		imageCount = caps.ImageCount.Max
	}
	if caps.CurrentExtent != nil {
		extent = *caps.CurrentExtent
	} else {
		if extent.Width < caps.Extents.Min.Width {
			extent.Width = caps.Extents.Min.Width
		}
		if extent.Width > caps.Extents.Max.Width {
			extent.Width = caps.Extents.Max.Width
		}
		if extent.Height < caps.Extents.Min.Height {
			extent.Height = caps.Extents.Min.Height
		}
		if extent.Height > caps.Extents.Max.Height {
			extent.Height = caps.Extents.Max.Height
		}
	}
	alpha := CompositeAlphaOpaque
	if !caps.CompositeAlphaModes.Has(CompositeAlphaOpaque) && caps.CompositeAlphaModes.Has(CompositeAlphaInherit) {
		alpha = CompositeAlphaInherit
	}
	return SwapchainConfig{
		Format:         format,
		Extent:         extent,
		ImageCount:     imageCount,
		PresentMode:    PresentModeFifo,
		CompositeAlpha: alpha,
		Usage:          caps.Usage,
	}
}
