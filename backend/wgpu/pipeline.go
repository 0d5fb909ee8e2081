package wgpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	whal "github.com/gogpu/wgpu/hal"
)

//go:embed shaders/dispatch_probe.wgsl
var dispatchProbeWGSL string

//go:embed shaders/solid_fill.wgsl
var solidFillWGSL string

// compileWGSL compiles WGSL through naga into SPIR-V words.
func compileWGSL(src string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("wgpu: compile shader: %w", err)
	}
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

// dispatchPipeline is the device-owned compute state behind Dispatch.
type dispatchPipeline struct {
	module    whal.ShaderModule
	bgLayout  whal.BindGroupLayout
	layout    whal.PipelineLayout
	pipeline  whal.ComputePipeline
	counter   whal.Buffer
	bindGroup whal.BindGroup
}

// fillPipeline is the render state behind Draw: one solid-fill
// pipeline per target format.
type fillPipeline struct {
	module    whal.ShaderModule
	layout    whal.PipelineLayout
	perFormat map[gputypes.TextureFormat]whal.RenderPipeline
}

// ensurePipelines builds the shared compute and render state once.
func (d *device) ensurePipelines() error {
	d.pipeOnce.Do(func() { d.pipeErr = d.buildPipelines() })
	return d.pipeErr
}

func (d *device) buildPipelines() error {
	// Dispatch probe.
	words, err := compileWGSL(dispatchProbeWGSL)
	if err != nil {
		return err
	}
	module, err := d.raw.CreateShaderModule(&whal.ShaderModuleDescriptor{
		Label:  "hal_dispatch_probe",
		Source: whal.ShaderSource{SPIRV: words},
	})
	if err != nil {
		return fmt.Errorf("wgpu: dispatch shader module: %w", err)
	}
	d.dispatch.module = module

	bgLayout, err := d.raw.CreateBindGroupLayout(&whal.BindGroupLayoutDescriptor{
		Label: "hal_dispatch_bgl",
		Entries: []gputypes.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage},
		}},
	})
	if err != nil {
		return fmt.Errorf("wgpu: dispatch bind group layout: %w", err)
	}
	d.dispatch.bgLayout = bgLayout

	layout, err := d.raw.CreatePipelineLayout(&whal.PipelineLayoutDescriptor{
		Label:            "hal_dispatch_pl",
		BindGroupLayouts: []whal.BindGroupLayout{bgLayout},
	})
	if err != nil {
		return fmt.Errorf("wgpu: dispatch pipeline layout: %w", err)
	}
	d.dispatch.layout = layout

	pipeline, err := d.raw.CreateComputePipeline(&whal.ComputePipelineDescriptor{
		Label:  "hal_dispatch",
		Layout: layout,
		Compute: whal.ComputeState{
			Module:     module,
			EntryPoint: "main",
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: dispatch pipeline: %w", err)
	}
	d.dispatch.pipeline = pipeline

	counter, err := d.raw.CreateBuffer(&whal.BufferDescriptor{
		Label: "hal_dispatch_counter",
		Size:  4,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("wgpu: dispatch counter buffer: %w", err)
	}
	d.dispatch.counter = counter

	bindGroup, err := d.raw.CreateBindGroup(&whal.BindGroupDescriptor{
		Label:  "hal_dispatch_bg",
		Layout: bgLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: counter.NativeHandle(), Offset: 0, Size: 4}},
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: dispatch bind group: %w", err)
	}
	d.dispatch.bindGroup = bindGroup

	// Solid fill.
	words, err = compileWGSL(solidFillWGSL)
	if err != nil {
		return err
	}
	fillModule, err := d.raw.CreateShaderModule(&whal.ShaderModuleDescriptor{
		Label:  "hal_solid_fill",
		Source: whal.ShaderSource{SPIRV: words},
	})
	if err != nil {
		return fmt.Errorf("wgpu: fill shader module: %w", err)
	}
	d.fill.module = fillModule

	fillLayout, err := d.raw.CreatePipelineLayout(&whal.PipelineLayoutDescriptor{
		Label: "hal_fill_pl",
	})
	if err != nil {
		return fmt.Errorf("wgpu: fill pipeline layout: %w", err)
	}
	d.fill.layout = fillLayout
	d.fill.perFormat = make(map[gputypes.TextureFormat]whal.RenderPipeline)
	return nil
}

// fillPipelineFor returns (building on first use) the solid-fill
// pipeline targeting the given format.
func (d *device) fillPipelineFor(format gputypes.TextureFormat) (whal.RenderPipeline, error) {
	if err := d.ensurePipelines(); err != nil {
		return nil, err
	}
	if p, ok := d.fill.perFormat[format]; ok {
		return p, nil
	}
	p, err := d.raw.CreateRenderPipeline(&whal.RenderPipelineDescriptor{
		Label:  "hal_fill",
		Layout: d.fill.layout,
		Vertex: whal.VertexState{
			Module:     d.fill.module,
			EntryPoint: "vs_main",
		},
		Fragment: &whal.FragmentState{
			Module:     d.fill.module,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{Format: format, WriteMask: gputypes.ColorWriteMaskAll},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: fill pipeline for %v: %w", format, err)
	}
	d.fill.perFormat[format] = p
	return p, nil
}

func (d *device) destroyPipelines() {
	if d.dispatch.pipeline != nil {
		d.raw.DestroyComputePipeline(d.dispatch.pipeline)
	}
	if d.dispatch.counter != nil {
		d.raw.DestroyBuffer(d.dispatch.counter)
	}
	if d.dispatch.module != nil {
		d.raw.DestroyShaderModule(d.dispatch.module)
	}
	for _, p := range d.fill.perFormat {
		d.raw.DestroyRenderPipeline(p)
	}
	if d.fill.module != nil {
		d.raw.DestroyShaderModule(d.fill.module)
	}
}
