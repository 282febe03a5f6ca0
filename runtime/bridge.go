package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
	"wa-gateway/contract"
	"wa-gateway/domain"
	"wa-gateway/domain/event"
)

// Bridge turns engine signals into session transitions and lifecycle events.
// Events are pushed on a single channel drained by the fan-out worker, which
// keeps the publication order identical for every observer.
type Bridge struct {
	log           *slog.Logger
	engine        contract.Engine
	session       *Session
	registry      contract.IRegistry
	renderer      contract.ChallengeRenderer
	events        chan<- event.LifecycleEvent
	attachTimeout time.Duration
	retryInterval time.Duration
}

func NewBridge(log *slog.Logger, engine contract.Engine, session *Session,
	registry contract.IRegistry, renderer contract.ChallengeRenderer,
	events chan<- event.LifecycleEvent, attachTimeout, retryInterval time.Duration) *Bridge {
	return &Bridge{
		log:           log.With("component", "bridge"),
		engine:        engine,
		session:       session,
		registry:      registry,
		renderer:      renderer,
		events:        events,
		attachTimeout: attachTimeout,
		retryInterval: retryInterval,
	}
}

// Attach greets the observer with a connecting notice, then subscribes it.
// Nothing published before the subscription is replayed.
func (b *Bridge) Attach(ctx context.Context, handle string, sink contract.EventSink) {
	ctx, cancel := context.WithTimeout(ctx, b.attachTimeout)
	defer cancel()
	if err := sink.Consume(ctx, event.Connecting{}); err != nil {
		b.log.Warn("Observer could not be greeted, dropping it", "handle", handle, "error", err)
		closeSink(sink)
		return
	}
	b.registry.Subscribe(handle, sink)
	b.log.Debug("Observer attached", "handle", handle)
}

func (b *Bridge) Detach(handle string) {
	if _, ok := b.registry.Unsubscribe(handle); ok {
		b.log.Debug("Observer detached", "handle", handle)
	}
}

// Initialize starts the engine for the first time.
func (b *Bridge) Initialize(ctx context.Context) error {
	b.session.Transition(domain.Authenticating)
	if err := b.engine.Initialize(ctx); err != nil {
		b.session.Transition(domain.Uninitialized)
		return fmt.Errorf("engine initialization failed: %w", err)
	}
	return nil
}

func (b *Bridge) Handle(ctx context.Context, sig domain.EngineSignal) error {
	b.log.Debug("Engine signal received", "kind", sig.Kind.String())
	switch sig.Kind {
	case domain.SignalChallenge:
		dataURL, err := b.renderer.Render(sig.Challenge)
		if err != nil {
			b.log.Error("Challenge rendering failed", "error", err)
			return nil
		}
		b.session.Transition(domain.Authenticating)
		return b.publish(ctx,
			event.ChallengePresented{DataURL: dataURL, Code: sig.Challenge},
			event.StatusMessage{Text: event.TextQRReceived})

	case domain.SignalAuthenticated:
		b.session.Transition(domain.Authenticated)
		return b.publish(ctx,
			event.Authenticated{},
			event.StatusMessage{Text: event.TextAuthenticated})

	case domain.SignalReady:
		if sig.Info == nil {
			b.session.Transition(domain.Ready)
			b.log.Warn("Session ready without a session handle, dispatch stays closed")
		} else {
			b.session.MarkReady(*sig.Info)
			b.log.Info("Session ready", "id", sig.Info.ID, "push_name", sig.Info.PushName)
		}
		return b.publish(ctx,
			event.Ready{},
			event.StatusMessage{Text: event.TextReady})

	case domain.SignalAuthFailure:
		// the engine goes back to pairing on its own
		b.session.Transition(domain.Authenticating)
		b.log.Warn("Authentication failed", "reason", sig.Reason)
		return b.publish(ctx, event.AuthFailed{Reason: sig.Reason})

	case domain.SignalDisconnected:
		b.session.Transition(domain.Disconnected)
		b.log.Warn("Session disconnected", "reason", sig.Reason)
		if err := b.publish(ctx, event.Disconnected{Reason: sig.Reason}); err != nil {
			return err
		}
		return b.reconnect(ctx)

	default:
		b.log.Warn("Unknown engine signal", "kind", int(sig.Kind))
		return nil
	}
}

// reconnect tears the engine down and starts it again until it succeeds
// or ctx ends.
func (b *Bridge) reconnect(ctx context.Context) error {
	if err := b.engine.Destroy(ctx); err != nil {
		b.log.Warn("Engine destroy failed", "error", err)
	}
	for {
		b.session.Transition(domain.Authenticating)
		err := b.engine.Initialize(ctx)
		if err == nil {
			b.log.Info("Engine reinitialized")
			return nil
		}
		b.session.Transition(domain.Disconnected)
		b.log.Error("Engine reinitialization failed", "error", err, "retry_in", b.retryInterval)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.retryInterval):
		}
	}
}

func (b *Bridge) publish(ctx context.Context, events ...event.LifecycleEvent) error {
	for _, e := range events {
		select {
		case b.events <- e:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func closeSink(sink contract.EventSink) {
	if c, ok := sink.(io.Closer); ok {
		_ = c.Close()
	}
}
