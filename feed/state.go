package feed

// State represents the health of a Feed.
type State int32

const (
	// StateIdle indicates the Feed has not been started.
	StateIdle State = iota

	// StateWaiting indicates the Feed is watching but has not yet handled
	// a document.
	StateWaiting

	// StateHealthy indicates every action of the last document was
	// dispatched.
	StateHealthy

	// StateDegraded indicates the last document failed to decode or one of
	// its actions was rejected. Actions dispatched before the failure stay
	// applied.
	StateDegraded
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWaiting:
		return "waiting"
	case StateHealthy:
		return "healthy"
	case StateDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}
