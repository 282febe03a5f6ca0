package domain

type SessionState int

const (
	Uninitialized SessionState = iota
	Authenticating
	Authenticated
	Ready
	Disconnected
)

func (s SessionState) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	case Ready:
		return "ready"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// SessionInfo is the handle the engine hands over once the session is usable.
type SessionInfo struct {
	ID       string
	PushName string
	Platform string
}

const (
	StatusReadyText    = "WhatsApp client is ready"
	StatusNotReadyText = "WhatsApp client is not ready yet"
)

type Status struct {
	Ready   bool
	State   SessionState
	Message string
}

func NewStatus(state SessionState, info *SessionInfo) Status {
	ready := state == Ready && info != nil
	msg := StatusNotReadyText
	if ready {
		msg = StatusReadyText
	}
	return Status{Ready: ready, State: state, Message: msg}
}
