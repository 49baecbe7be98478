package dockstream

// ConnectionState is the lifecycle state of a streaming session.
type ConnectionState int

const (
	StateIdle       ConnectionState = iota // No session started yet.
	StateConnecting                        // Transport open in flight.
	StateStreaming                         // First chunk received, deltas arriving.
	StateCompleted                         // Done chunk received; final response set.
	StateErrored                           // Terminated by a classified failure.
	StateCancelled                         // Terminated by StopStreaming.
)

func (s ConnectionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateErrored:
		return "errored"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions can occur for a session
// in this state. A retry never resurrects a terminal session; it spawns a
// fresh one starting at StateConnecting.
func (s ConnectionState) Terminal() bool {
	switch s {
	case StateCompleted, StateErrored, StateCancelled:
		return true
	}
	return false
}

// canTransition is the legal-transition table. Illegal transitions are
// no-ops at the call sites, never errors: cancellation in particular must
// be safe to request redundantly.
func canTransition(from, to ConnectionState) bool {
	switch from {
	case StateIdle:
		return to == StateConnecting
	case StateConnecting:
		return to == StateStreaming || to == StateErrored || to == StateCancelled
	case StateStreaming:
		return to == StateCompleted || to == StateErrored || to == StateCancelled
	default:
		// Terminal states admit nothing.
		return false
	}
}
