package wgpu

import (
	"fmt"
	stdimage "image"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	whal "github.com/gogpu/wgpu/hal"
	"golang.org/x/image/draw"

	"github.com/gogpu/hal/backend"
)

// FramebufferWindow is the window contract of this backend: anything
// that reports a pixel size and accepts a finished RGBA frame. The
// swapchain renders into a texture and reads it back through a staging
// buffer, so no native surface handle is needed.
type FramebufferWindow interface {
	Size() (width, height int)
	Blit(frame *stdimage.RGBA)
}

// swapchainImage is the single presentable image of a configured
// swapchain. The generation pins it to the swapchain that created it;
// presenting an image from a torn-down swapchain fails with
// ErrOutOfDate.
type swapchainImage struct {
	tex        *texture
	generation uint64
}

func (s *swapchainImage) Extent() backend.Extent         { return s.tex.extent }
func (s *swapchainImage) Format() gputypes.TextureFormat { return s.tex.format }

// swapchain holds the render target plus the staging buffer the
// readback path copies it through. Rows in the staging buffer are
// padded to the 256-byte alignment the copy requires.
type swapchain struct {
	generation uint64
	cfg        backend.SwapchainConfig
	dev        *device
	img        *swapchainImage
	staging    whal.Buffer
	paddedRow  uint32
}

func (c *swapchain) destroy() {
	c.dev.raw.DestroyTextureView(c.img.tex.view)
	c.dev.raw.DestroyTexture(c.img.tex.raw)
	c.dev.raw.DestroyBuffer(c.staging)
}

type wgpuSurface struct {
	win FramebufferWindow

	mu        sync.Mutex
	chain     *swapchain
	acquired  bool
	presented chan struct{}
	nextGen   uint64
}

func newSurface(win FramebufferWindow) *wgpuSurface {
	return &wgpuSurface{win: win, presented: make(chan struct{}, 1)}
}

func (s *wgpuSurface) SupportsQueueFamily(f backend.QueueFamily) bool {
	return f.Capability.Supports(backend.CapabilityGraphics)
}

func (s *wgpuSurface) Capabilities(a backend.Adapter) backend.SurfaceCapabilities {
	w, h := s.win.Size()
	cur := backend.Extent{Width: uint32(w), Height: uint32(h)}
	return backend.SurfaceCapabilities{
		PresentModes:        backend.PresentModes(backend.PresentModeFifo),
		CompositeAlphaModes: backend.CompositeAlphaModes(backend.CompositeAlphaOpaque | backend.CompositeAlphaInherit),
		ImageCount:          backend.Range{Min: 1, Max: 3},
		CurrentExtent:       &cur,
		Extents: backend.ExtentRange{
			Min: backend.Extent{Width: 1, Height: 1},
			Max: backend.Extent{Width: 8192, Height: 8192},
		},
		MaxImageLayers: 1,
		Usage:          gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst,
	}
}

func (s *wgpuSurface) SupportedFormats(a backend.Adapter) []gputypes.TextureFormat {
	return []gputypes.TextureFormat{
		gputypes.TextureFormatBGRA8Unorm,
		gputypes.TextureFormatRGBA8Unorm,
	}
}

func (s *wgpuSurface) ConfigureSwapchain(d backend.Device, cfg backend.SwapchainConfig) error {
	dev, ok := d.(*device)
	if !ok {
		return fmt.Errorf("wgpu: configure swapchain on foreign device %T: %w", d, backend.ErrCreation)
	}
	if cfg.Extent.Width == 0 || cfg.Extent.Height == 0 {
		return fmt.Errorf("wgpu: swapchain extent %dx%d: %w",
			cfg.Extent.Width, cfg.Extent.Height, backend.ErrCreation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The old swapchain is gone before the new one exists.
	if s.chain != nil {
		s.chain.destroy()
		s.chain = nil
		s.acquired = false
	}

	tex, view, err := dev.createTexture(cfg.Extent, cfg.Format, "hal_swapchain")
	if err != nil {
		return err
	}
	paddedRow := (cfg.Extent.Width*4 + 255) &^ 255
	staging, err := dev.raw.CreateBuffer(&whal.BufferDescriptor{
		Label: "hal_swapchain_staging",
		Size:  uint64(paddedRow) * uint64(cfg.Extent.Height),
		Usage: gputypes.BufferUsageCopyDst | gputypes.BufferUsageMapRead,
	})
	if err != nil {
		dev.raw.DestroyTextureView(view)
		dev.raw.DestroyTexture(tex)
		return fmt.Errorf("wgpu: swapchain staging buffer: %w", err)
	}

	s.nextGen++
	s.chain = &swapchain{
		generation: s.nextGen,
		cfg:        cfg,
		dev:        dev,
		img: &swapchainImage{
			tex: &texture{
				dev:    dev,
				raw:    tex,
				view:   view,
				extent: cfg.Extent,
				format: cfg.Format,
			},
			generation: s.nextGen,
		},
		staging:   staging,
		paddedRow: paddedRow,
	}
	return nil
}

func (s *wgpuSurface) UnconfigureSwapchain(d backend.Device) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chain != nil {
		s.chain.destroy()
		s.chain = nil
		s.acquired = false
	}
}

func (s *wgpuSurface) AcquireImage(timeout time.Duration) (backend.SwapchainImage, bool, error) {
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
			suboptimal := s.windowDrifted(s.chain.cfg.Extent)
			s.mu.Unlock()
			return img, suboptimal, nil
		}
		s.mu.Unlock()

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, false, backend.ErrAcquireTimeout
		}
		select {
		case <-s.presented:
		case <-time.After(remaining):
			return nil, false, backend.ErrAcquireTimeout
		}
	}
}

func (s *wgpuSurface) windowDrifted(configured backend.Extent) bool {
	w, h := s.win.Size()
	return uint32(w) != configured.Width || uint32(h) != configured.Height
}

// present reads the swapchain texture back through the staging buffer
// and hands the frame to the window, scaling when the window size
// drifted from the configured extent.
func (s *wgpuSurface) present(q *queue, img backend.SwapchainImage) (bool, error) {
	sci, ok := img.(*swapchainImage)
	if !ok {
		return false, fmt.Errorf("wgpu: present foreign image %T: %w", img, backend.ErrOutOfDate)
	}

	s.mu.Lock()
	chain := s.chain
	if chain == nil || sci.generation != chain.generation {
		s.mu.Unlock()
		return false, backend.ErrOutOfDate
	}
	s.acquired = false
	s.mu.Unlock()

	frame, err := s.readback(q, chain)
	if err != nil {
		return false, err
	}

	suboptimal := false
	w, h := s.win.Size()
	if uint32(w) != chain.cfg.Extent.Width || uint32(h) != chain.cfg.Extent.Height {
		suboptimal = true
		if w > 0 && h > 0 {
			scaled := stdimage.NewRGBA(stdimage.Rect(0, 0, w, h))
			draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), frame, frame.Bounds(), draw.Src, nil)
			frame = scaled
		}
	}
	s.win.Blit(frame)

	select {
	case s.presented <- struct{}{}:
	default:
	}
	return suboptimal, nil
}

// readback copies the swapchain texture into the staging buffer, waits
// for the copy, and unpacks the padded rows into an RGBA frame.
func (s *wgpuSurface) readback(q *queue, chain *swapchain) (*stdimage.RGBA, error) {
	dev := chain.dev
	ext := chain.cfg.Extent

	enc, err := dev.raw.CreateCommandEncoder(&whal.CommandEncoderDescriptor{Label: "hal_present"})
	if err != nil {
		return nil, fmt.Errorf("wgpu: present encoder: %w", err)
	}
	if err := enc.BeginEncoding("hal_present"); err != nil {
		return nil, fmt.Errorf("wgpu: present encoding: %w", err)
	}
	enc.CopyTextureToBuffer(chain.img.tex.raw, chain.staging, []whal.BufferTextureCopy{{
		BufferLayout: whal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  chain.paddedRow,
			RowsPerImage: ext.Height,
		},
		TextureBase: whal.ImageCopyTexture{Texture: chain.img.tex.raw, MipLevel: 0},
		Size:        whal.Extent3D{Width: ext.Width, Height: ext.Height, DepthOrArrayLayers: 1},
	}})
	raw, err := enc.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("wgpu: present encoding: %w", err)
	}
	if err := dev.rawQueue.Submit([]whal.CommandBuffer{raw}, nil, 0); err != nil {
		return nil, fmt.Errorf("wgpu: present submit: %w", err)
	}
	dev.raw.FreeCommandBuffer(raw)
	if err := q.WaitIdle(); err != nil {
		return nil, err
	}

	padded := make([]byte, uint64(chain.paddedRow)*uint64(ext.Height))
	if err := dev.rawQueue.ReadBuffer(chain.staging, 0, padded); err != nil {
		return nil, fmt.Errorf("wgpu: present readback: %w", err)
	}

	frame := stdimage.NewRGBA(stdimage.Rect(0, 0, int(ext.Width), int(ext.Height)))
	rowBytes := int(ext.Width) * 4
	for y := 0; y < int(ext.Height); y++ {
		copy(frame.Pix[y*frame.Stride:y*frame.Stride+rowBytes],
			padded[y*int(chain.paddedRow):y*int(chain.paddedRow)+rowBytes])
	}
	if chain.cfg.Format == gputypes.TextureFormatBGRA8Unorm {
		swapRB(frame.Pix)
	}
	return frame, nil
}

// swapRB converts BGRA pixel data to RGBA in place.
func swapRB(pix []byte) {
	for i := 0; i+4 <= len(pix); i += 4 {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
}
