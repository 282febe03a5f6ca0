package runtime

import (
	"sync"
	"wa-gateway/domain"
)

// Session holds the lifecycle state of the single engine handle.
// The bridge is the only writer; dispatch reads it on every call.
type Session struct {
	mu    sync.RWMutex
	state domain.SessionState
	info  *domain.SessionInfo
}

func NewSession() *Session {
	return &Session{state: domain.Uninitialized}
}

func (s *Session) State() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Info returns a copy of the session handle, nil until the session is ready.
func (s *Session) Info() *domain.SessionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.info == nil {
		return nil
	}
	info := *s.info
	return &info
}

func (s *Session) Status() domain.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.NewStatus(s.state, s.info)
}

// Transition moves to state and drops the session handle. Only MarkReady
// stores one, so a Ready reached here stays closed to dispatch.
func (s *Session) Transition(state domain.SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.info = nil
}

func (s *Session) MarkReady(info domain.SessionInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = domain.Ready
	s.info = &info
}
