package stream

// State is the connection manager's lifecycle state.
type State int32

// Connection states. The manager cycles Connecting -> Open -> Closed ->
// Connecting for as long as it runs; Idle is both the initial state and the
// terminal state after teardown.
const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
