package stream

// State is the connection lifecycle state.
type State int

const (
	Disconnected State = iota
	Attempting
	Connected
	Error
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Attempting:
		return "connecting"
	case Connected:
		return "connected"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Live reports whether the machine is connecting or connected, the two states
// in which Activate is a no-op.
func (s State) Live() bool {
	return s == Attempting || s == Connected
}
