package soft

import (
	"image"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"

	"github.com/gogpu/hal/backend"
)

// PixelWindow is the presentation contract of the soft backend: any
// window that reports a size and accepts a finished frame. Surfaces
// are created from values implementing it.
type PixelWindow interface {
	// Size returns the current client area in pixels.
	Size() (width, height int)

	// Blit hands the window one finished frame. The image is only
	// valid for the duration of the call.
	Blit(frame *image.RGBA)
}

// swapchainImage is the single presentable image of a configured
// swapchain. It doubles as a render target.
type swapchainImage struct {
	res        *imageRes
	generation uint64
}

func (si *swapchainImage) Extent() backend.Extent         { return si.res.extent }
func (si *swapchainImage) Format() gputypes.TextureFormat { return si.res.format }

// swapchain is the per-configuration state: the renderbuffer and the
// single acquirable image over it. The id stands in for the backing
// framebuffer handle a windowing API would allocate; tracking it makes
// reconfiguration leaks observable in tests.
type swapchain struct {
	id     uint64
	cfg    backend.SwapchainConfig
	img    *swapchainImage
	scaled *image.RGBA // reused scale buffer for mismatched windows
}

// softSurface presents a renderbuffer to a PixelWindow.
type softSurface struct {
	win PixelWindow

	mu        sync.Mutex
	chain     *swapchain
	acquired  bool
	presented chan struct{} // pulsed on present, wakes blocked acquires

	nextID   uint64
	liveFBOs map[uint64]struct{}
}

func newSurface(win PixelWindow) *softSurface {
	return &softSurface{
		win:       win,
		presented: make(chan struct{}, 1),
		liveFBOs:  make(map[uint64]struct{}),
	}
}

// LiveFramebuffers reports how many framebuffer handles the surface
// currently holds. One while configured, zero after unconfigure.
func (s *softSurface) LiveFramebuffers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.liveFBOs)
}

func (s *softSurface) SupportsQueueFamily(f backend.QueueFamily) bool {
	// Presentation is a blit; any family that can transfer can present.
	return f.Capability.SupportsTransfer()
}

func (s *softSurface) Capabilities(a backend.Adapter) backend.SurfaceCapabilities {
	w, h := s.win.Size()
	cur := backend.Extent{Width: uint32(w), Height: uint32(h)}
	return backend.SurfaceCapabilities{
		PresentModes:        backend.PresentModes(backend.PresentModeFifo | backend.PresentModeImmediate),
		CompositeAlphaModes: backend.CompositeAlphaModes(backend.CompositeAlphaOpaque | backend.CompositeAlphaInherit),
		ImageCount:          backend.Range{Min: 1, Max: 3},
		CurrentExtent:       &cur,
		Extents: backend.ExtentRange{
			Min: backend.Extent{Width: 1, Height: 1},
			Max: backend.Extent{Width: 16384, Height: 16384},
		},
		MaxImageLayers: 1,
		Usage: gputypes.TextureUsageRenderAttachment |
			gputypes.TextureUsageCopySrc |
			gputypes.TextureUsageCopyDst,
	}
}

// SupportedFormats returns nil: the renderbuffer is 8-bit RGBA in host
// memory and any requested format is accepted and stored as such.
func (s *softSurface) SupportedFormats(a backend.Adapter) []gputypes.TextureFormat {
	return nil
}

func (s *softSurface) ConfigureSwapchain(dev backend.Device, cfg backend.SwapchainConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Tear down the old swapchain before creating the new one, so a
	// failure never leaks the previous framebuffer.
	if s.chain != nil {
		delete(s.liveFBOs, s.chain.id)
		s.chain = nil
		s.acquired = false
	}

	if cfg.Extent.Width == 0 || cfg.Extent.Height == 0 {
		return backend.ErrCreation
	}

	s.nextID++
	chain := &swapchain{
		id:  s.nextID,
		cfg: cfg,
		img: &swapchainImage{
			res:        newImage(cfg.Extent, cfg.Format),
			generation: s.nextID,
		},
	}
	s.liveFBOs[chain.id] = struct{}{}
	s.chain = chain
	return nil
}

func (s *softSurface) UnconfigureSwapchain(dev backend.Device) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chain != nil {
		delete(s.liveFBOs, s.chain.id)
		s.chain = nil
		s.acquired = false
	}
}

// AcquireImage hands out the swapchain image. With one image in
// flight, a second acquire blocks until the first is presented or the
// timeout expires.
func (s *softSurface) AcquireImage(timeout time.Duration) (backend.SwapchainImage, bool, error) {
	deadline := time.Now().Add(timeout)
	for {
		s.mu.Lock()
		if s.chain == nil {
			s.mu.Unlock()
			return nil, false, backend.ErrSwapchainNotConfigured
		}
		if !s.acquired {
			s.acquired = true
			img := s.chain.img
			suboptimal := s.windowDrifted()
			s.mu.Unlock()
			return img, suboptimal, nil
		}
		s.mu.Unlock()

		remain := time.Until(deadline)
		if remain <= 0 {
			return nil, false, backend.ErrAcquireTimeout
		}
		timer := time.NewTimer(remain)
		select {
		case <-s.presented:
			timer.Stop()
		case <-timer.C:
			return nil, false, backend.ErrAcquireTimeout
		}
	}
}

// windowDrifted reports whether the window no longer matches the
// swapchain extent. Callers hold s.mu.
func (s *softSurface) windowDrifted() bool {
	w, h := s.win.Size()
	return uint32(w) != s.chain.cfg.Extent.Width || uint32(h) != s.chain.cfg.Extent.Height
}

// present blits the image to the window. Called from the queue worker.
func (s *softSurface) present(img *swapchainImage) (bool, error) {
	s.mu.Lock()
	if s.chain == nil || img != s.chain.img {
		// The swapchain was reconfigured after this image was acquired.
		s.mu.Unlock()
		return false, backend.ErrOutOfDate
	}
	chain := s.chain
	drifted := s.windowDrifted()
	s.acquired = false
	select {
	case s.presented <- struct{}{}:
	default:
	}
	s.mu.Unlock()

	frame := img.res.rgba()
	if drifted {
		// Scale into the window's current size; the caller should
		// reconfigure, but the frame still lands.
		w, h := s.win.Size()
		if w > 0 && h > 0 {
			if chain.scaled == nil || chain.scaled.Rect.Dx() != w || chain.scaled.Rect.Dy() != h {
				chain.scaled = image.NewRGBA(image.Rect(0, 0, w, h))
			}
			draw.ApproxBiLinear.Scale(chain.scaled, chain.scaled.Rect, frame, frame.Rect, draw.Src, nil)
			s.win.Blit(chain.scaled)
		}
		return true, nil
	}
	s.win.Blit(frame)
	return false, nil
}
