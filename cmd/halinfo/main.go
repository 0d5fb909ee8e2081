// Command halinfo lists the registered hal backends and their
// adapters, and can render a single presented frame to a PNG as a
// smoke test of the full record/submit/present path.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"time"

	"github.com/gogpu/hal"
	"github.com/gogpu/hal/backend"
	_ "github.com/gogpu/hal/backend/soft"
	_ "github.com/gogpu/hal/backend/wgpu"
)

func main() {
	var (
		name   = flag.String("backend", "", "backend to use (default: highest priority available)")
		frame  = flag.String("frame", "", "render one frame and write it to this PNG file")
		width  = flag.Int("width", 640, "frame width")
		height = flag.Int("height", 480, "frame height")
	)
	flag.Parse()

	fmt.Println("registered backends:")
	for _, n := range backend.Registered() {
		e, _ := backend.Lookup(n)
		avail := "unavailable"
		if e.Available == nil || e.Available() {
			avail = "available"
		}
		fmt.Printf("  %-8s priority=%-4d %s\n", n, e.Priority, avail)
	}

	inst, err := createInstance(*name)
	if err != nil {
		log.Fatalf("create instance: %v", err)
	}
	defer inst.Destroy()
	fmt.Printf("\nusing backend %q\n", inst.Backend())

	adapters := inst.EnumerateAdapters()
	if len(adapters) == 0 {
		log.Fatal("no adapters found")
	}
	for i, a := range adapters {
		info := a.Info()
		fmt.Printf("\nadapter %d: %s (%s, device type %d)\n", i, info.Name, info.Vendor, info.DeviceType)
		for _, f := range a.QueueFamilies() {
			fmt.Printf("  family %d: %-8s max queues %d\n", f.ID, f.Capability, f.MaxQueues)
		}
	}

	if *frame != "" {
		if err := renderFrame(inst, adapters[0], *frame, *width, *height); err != nil {
			log.Fatalf("render frame: %v", err)
		}
		fmt.Printf("\nframe written to %s (%dx%d)\n", *frame, *width, *height)
	}
}

func createInstance(name string) (*hal.Instance, error) {
	if name != "" {
		return hal.CreateNamed(name, "halinfo", 1)
	}
	return hal.Create("halinfo", 1)
}

// pngWindow collects the presented frame so it can be encoded after
// the swapchain is torn down. It satisfies the window contract of both
// bundled backends.
type pngWindow struct {
	w, h  int
	frame *image.RGBA
}

func (w *pngWindow) Size() (int, int) { return w.w, w.h }
func (w *pngWindow) Blit(frame *image.RGBA) { w.frame = frame }

// renderFrame drives one acquire/record/submit/present cycle and
// encodes the blitted result.
func renderFrame(inst *hal.Instance, adapter *hal.Adapter, path string, width, height int) error {
	var family *hal.QueueFamily
	for _, f := range adapter.QueueFamilies() {
		if f.Capability.Supports(hal.Graphics) {
			family = &f
			break
		}
	}
	if family == nil {
		return fmt.Errorf("adapter has no graphics-capable queue family")
	}

	opened, err := adapter.Open(family.ID, 1)
	if err != nil {
		return err
	}
	dev, queue := opened.Device, opened.Queues[0]
	defer dev.Destroy()
	defer dev.WaitIdle()

	win := &pngWindow{w: width, h: height}
	surface, err := inst.CreateSurface(win)
	if err != nil {
		return err
	}
	defer inst.DestroySurface(surface)

	caps := surface.Capabilities(adapter)
	cfg := hal.DefaultSwapchainConfig(caps, surface.SupportedFormats(adapter),
		hal.Extent{Width: uint32(width), Height: uint32(height)})
	if err := surface.ConfigureSwapchain(dev, cfg); err != nil {
		return err
	}
	defer surface.UnconfigureSwapchain(dev)

	img, _, err := surface.AcquireImage(time.Second)
	if err != nil {
		return err
	}

	pool, err := dev.OpenPool(family.ID, 0)
	if err != nil {
		return err
	}
	defer pool.Destroy()

	cb, err := pool.AcquireCommandBuffer(hal.OneShot)
	if err != nil {
		return err
	}
	if err := cb.Begin(false); err != nil {
		return err
	}
	if err := cb.BeginRenderPass(img.(hal.Image), hal.Rect{Width: cfg.Extent.Width, Height: cfg.Extent.Height}); err != nil {
		return err
	}
	if err := cb.Draw(3, 1); err != nil {
		return err
	}
	if err := cb.EndRenderPass(); err != nil {
		return err
	}
	if err := cb.Finish(); err != nil {
		return err
	}

	fence, err := dev.CreateFence(false)
	if err != nil {
		return err
	}
	defer dev.DestroyFence(fence)
	if err := queue.Submit(hal.Submission{CommandBuffers: []*hal.CommandBuffer{cb}}, fence); err != nil {
		return err
	}
	if ok, err := fence.Wait(5 * time.Second); err != nil || !ok {
		return fmt.Errorf("fence wait: ok=%v err=%v", ok, err)
	}

	if _, err := queue.Present(surface, img, nil); err != nil {
		return err
	}
	if win.frame == nil {
		return fmt.Errorf("present produced no frame")
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, win.frame)
}
