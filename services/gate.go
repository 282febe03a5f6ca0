package services

import (
	"wa-gateway/contract"
	"wa-gateway/domain"
	"wa-gateway/errors"
)

// Gate refuses outbound work until the session is ready.
type Gate struct {
	session contract.ISession
}

func NewGate(session contract.ISession) *Gate {
	return &Gate{session: session}
}

func (g *Gate) RequireReady() error {
	state := g.session.State()
	if state == domain.Uninitialized {
		return errors.ErrSessionNeverInitialized
	}
	if state != domain.Ready || g.session.Info() == nil {
		return errors.ErrSessionNotReady
	}
	return nil
}
