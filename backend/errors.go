package backend

import "errors"

// Errors shared by all backends. Everything here is recoverable by the
// caller; programming-contract violations are reported by the typed
// wrappers in the hal package instead.
var (
	// ErrOutOfMemory is returned when allocating a pool, a command
	// buffer, or backing storage fails. The caller may free resources
	// and retry.
	ErrOutOfMemory = errors.New("hal: out of memory")

	// ErrUnsupportedBackend is returned by instance creation when no
	// viable backend or adapter exists.
	ErrUnsupportedBackend = errors.New("hal: unsupported backend")

	// ErrWindowUnsupported is returned by surface creation when the
	// window handle is of a kind the backend cannot present to.
	ErrWindowUnsupported = errors.New("hal: window handle not supported by backend")

	// ErrSurfaceLost means the native surface is gone and must be
	// recreated from the window before any further use.
	ErrSurfaceLost = errors.New("hal: surface lost")

	// ErrOutOfDate means the surface properties changed enough that the
	// configured swapchain can no longer present; the caller should
	// reconfigure and retry.
	ErrOutOfDate = errors.New("hal: swapchain out of date")

	// ErrAcquireTimeout is returned by AcquireImage when no image
	// became available within the timeout.
	ErrAcquireTimeout = errors.New("hal: swapchain image acquire timed out")

	// ErrSwapchainNotConfigured is returned by AcquireImage and Present
	// before ConfigureSwapchain succeeded on the surface.
	ErrSwapchainNotConfigured = errors.New("hal: swapchain not configured")

	// ErrCreation is wrapped by ConfigureSwapchain failures: an
	// unsupported format/extent combination or a failed native resource
	// creation.
	ErrCreation = errors.New("hal: swapchain creation failed")

	// ErrDeviceLost means the device stopped responding; all resources
	// created from it are invalid.
	ErrDeviceLost = errors.New("hal: device lost")
)
