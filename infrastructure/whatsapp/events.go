package whatsapp

import (
	"context"
	"wa-gateway/domain"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/types/events"
)

const (
	reasonConnectionClosed = "connection closed"
	reasonStreamReplaced   = "stream replaced by another client"
	reasonPairingTimeout   = "pairing timed out"
)

func (e *Engine) handleEvent(evt interface{}) {
	switch v := evt.(type) {
	case *events.PairSuccess:
		e.emit(domain.EngineSignal{Kind: domain.SignalAuthenticated})
	case *events.Connected:
		e.emit(domain.EngineSignal{Kind: domain.SignalAuthenticated})
		e.emit(domain.EngineSignal{Kind: domain.SignalReady, Info: e.sessionInfo()})
	case *events.LoggedOut:
		e.emit(domain.EngineSignal{Kind: domain.SignalAuthFailure, Reason: v.Reason.String()})
		go e.restart()
	case *events.TemporaryBan:
		e.emit(domain.EngineSignal{Kind: domain.SignalAuthFailure, Reason: v.String()})
	case *events.ConnectFailure:
		e.emit(domain.EngineSignal{Kind: domain.SignalDisconnected, Reason: v.Reason.String()})
	case *events.StreamReplaced:
		e.emit(domain.EngineSignal{Kind: domain.SignalDisconnected, Reason: reasonStreamReplaced})
	case *events.Disconnected:
		e.emit(domain.EngineSignal{Kind: domain.SignalDisconnected, Reason: reasonConnectionClosed})
	case *events.Message:
		e.receive(incomingFrom(v))
	}
}

func (e *Engine) pumpPairing(ctx context.Context, items <-chan whatsmeow.QRChannelItem) {
	for item := range items {
		switch {
		case item.Event == whatsmeow.QRChannelEventCode:
			e.emit(domain.EngineSignal{Kind: domain.SignalChallenge, Challenge: item.Code})
		case item == whatsmeow.QRChannelTimeout:
			if ctx.Err() == nil {
				e.emit(domain.EngineSignal{Kind: domain.SignalDisconnected, Reason: reasonPairingTimeout})
			}
		case item.Event == whatsmeow.QRChannelEventError:
			e.emit(domain.EngineSignal{Kind: domain.SignalAuthFailure, Reason: item.Error.Error()})
		case item == whatsmeow.QRChannelSuccess:
			e.log.Info("Pairing completed")
		default:
			e.log.Warn("Pairing ended", "event", item.Event)
		}
	}
}

// restart pairs again after a logout. The store drops the device on logout
// so the next Initialize starts from a blank one.
func (e *Engine) restart() {
	e.mu.RLock()
	ctx := e.lifetime
	e.mu.RUnlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}
	_ = e.Destroy(ctx)
	if err := e.Initialize(ctx); err != nil {
		e.log.Error("Restart after logout failed", "error", err)
		e.emit(domain.EngineSignal{Kind: domain.SignalDisconnected, Reason: err.Error()})
	}
}

// emit blocks: lifecycle signals are never dropped.
func (e *Engine) emit(sig domain.EngineSignal) {
	e.signals <- sig
}

func (e *Engine) receive(msg domain.IncomingMessage) {
	if msg.From.IsZero() && msg.Chat.IsZero() {
		return
	}
	select {
	case e.incoming <- msg:
	default:
		e.log.Warn("Incoming queue full, message dropped", "id", msg.ID)
	}
}

func (e *Engine) sessionInfo() *domain.SessionInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.client == nil || e.client.Store == nil || e.client.Store.ID == nil {
		return nil
	}
	return &domain.SessionInfo{
		ID:       fromJID(*e.client.Store.ID).String(),
		PushName: e.client.Store.PushName,
		Platform: e.client.Store.Platform,
	}
}

func incomingFrom(v *events.Message) domain.IncomingMessage {
	return domain.IncomingMessage{
		ID:        v.Info.ID,
		From:      fromJID(v.Info.Sender),
		Chat:      fromJID(v.Info.Chat),
		Body:      textOf(v.Message),
		FromMe:    v.Info.IsFromMe,
		Timestamp: v.Info.Timestamp,
	}
}
