package initialization

// State is a step of the initialization state machine.
type State int

const (
	StateIdle State = iota
	StateInitializing
	StateAwaitingChallenge
	StateSolving
	StateVerifying
	StateEstablished
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitializing:
		return "initializing"
	case StateAwaitingChallenge:
		return "awaiting_challenge"
	case StateSolving:
		return "solving"
	case StateVerifying:
		return "verifying"
	case StateEstablished:
		return "established"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends an Initialize call.
func (s State) Terminal() bool {
	return s == StateEstablished || s == StateFailed
}
