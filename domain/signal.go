package domain

// SignalKind enumerates what the engine reports about its own lifecycle.
type SignalKind int

const (
	SignalChallenge SignalKind = iota
	SignalAuthenticated
	SignalReady
	SignalAuthFailure
	SignalDisconnected
)

func (k SignalKind) String() string {
	switch k {
	case SignalChallenge:
		return "challenge"
	case SignalAuthenticated:
		return "authenticated"
	case SignalReady:
		return "ready"
	case SignalAuthFailure:
		return "auth_failure"
	case SignalDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// EngineSignal carries the challenge token, the session info or a reason
// depending on Kind.
type EngineSignal struct {
	Kind      SignalKind
	Challenge string
	Info      *SessionInfo
	Reason    string
}
