// Package backend defines the raw driver contracts implemented by
// concrete GPU backends, plus the registry through which backends make
// themselves available to the hal package.
//
// The interfaces here are deliberately untyped with respect to command
// capabilities: a raw command buffer accepts any recording call, and a
// raw queue accepts any submission. Capability gating, lifecycle
// checking, and submission validation are the responsibility of the
// strongly-typed wrappers in the root hal package. Backends only need
// to translate each call into their native API.
//
// Backends register themselves from an init function:
//
//	func init() {
//	    backend.Register(backend.Entry{
//	        Name:      "soft",
//	        Priority:  10,
//	        Available: func() bool { return true },
//	        Create:    newInstance,
//	    })
//	}
//
// GPU backends register at priority 100, software fallbacks at 10; the
// highest-priority available backend wins when the caller does not ask
// for one by name.
package backend
