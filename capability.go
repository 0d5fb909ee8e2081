package hal

import "github.com/gogpu/hal/backend"

// Capability is the runtime tag describing which operations a queue,
// pool, or command buffer may carry. See [backend.Capability] for the
// lattice semantics.
type Capability = backend.Capability

// Capability values, from narrowest to widest.
const (
	// Transfer permits copies and fills only.
	Transfer = backend.CapabilityTransfer

	// Compute permits dispatches plus everything Transfer permits.
	Compute = backend.CapabilityCompute

	// Graphics permits render passes and draws plus everything Transfer
	// permits.
	Graphics = backend.CapabilityGraphics

	// General permits every operation.
	General = backend.CapabilityGeneral
)

// Shot declares how many times a command buffer may be submitted
// between recordings.
type Shot uint8

const (
	// OneShot buffers are usable for exactly one submit/reset cycle.
	// Begin sets the native one-time-submit flag.
	OneShot Shot = iota

	// MultiShot buffers may be resubmitted without re-recording.
	MultiShot
)

// flags returns the begin flags derived from the shot and the
// allow-pending-resubmit request. A pending resubmission adds the
// simultaneous-use flag regardless of shot.
func (s Shot) flags(allowPendingResubmit bool) backend.CommandBufferFlags {
	var f backend.CommandBufferFlags
	if s == OneShot {
		f |= backend.FlagOneTimeSubmit
	}
	if allowPendingResubmit {
		f |= backend.FlagSimultaneousUse
	}
	return f
}

// Level distinguishes primary from secondary command buffers.
type Level = backend.Level

// Level values.
const (
	// Primary buffers are submitted to queues directly and may execute
	// secondary buffers.
	Primary = backend.LevelPrimary

	// Secondary buffers are only executable from a primary buffer.
	Secondary = backend.LevelSecondary
)
