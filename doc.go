// Package hal is a backend-agnostic hardware abstraction layer for GPU
// command recording, submission, and frame presentation.
//
// An application records work once against the typed API of this
// package; a concrete backend (a software rasterizer, a WebGPU-class
// native stack) supplies the execution engine underneath. All backends
// honor the same observable behavior even though their native
// mechanics differ: a backend without a native presentable surface
// renders into an offscreen buffer and blits it to the window at
// present time, while a backend with a compositor-owned surface
// renders into it directly.
//
// # Capabilities
//
// Every queue family, command pool, and command buffer carries a
// [Capability]: Transfer, Compute, Graphics, or General. Capabilities
// form a lattice (General ⊇ Graphics ⊇ Transfer, General ⊇ Compute ⊇
// Transfer) and gate which recording operations are legal. Go's type
// system cannot carry this relation statically the way a phantom type
// parameter would, so the capability is a runtime tag checked at every
// gated operation; violations return typed errors instead of being
// undefined behavior.
//
// # Lifecycle
//
// The normal flow is:
//
//	inst, _ := hal.Create("app", 1)
//	adapter := inst.EnumerateAdapters()[0]
//	gpu, _ := adapter.Open(family, 1)
//	pool, _ := gpu.Device.OpenPool(family, 0)
//	cb := pool.AcquireCommandBuffer(hal.OneShot)
//	cb.Begin(false)
//	// ... record ...
//	cb.Finish()
//	fence, _ := gpu.Device.CreateFence(false)
//	gpu.Queues[0].Submit(hal.Submission{CommandBuffers: []*hal.CommandBuffer{cb}}, fence)
//	fence.Wait(time.Second)
//
// Presentation follows the acquire → render → present cycle on a
// [Surface] configured with a swapchain.
//
// # Validation
//
// Submit validates capabilities, buffer states, and fence state by
// default and fails with typed errors. SubmitTrusted is the explicit
// opt-in fast path that skips validation for call sites that guarantee
// the preconditions themselves.
package hal
