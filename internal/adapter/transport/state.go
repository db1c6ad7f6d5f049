package transport

// State is the connection lifecycle position of a Transport. It is mutated
// only under the transport's own lock.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateAuthenticating
	StateListening
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateAuthenticating:
		return "authenticating"
	case StateListening:
		return "listening"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
