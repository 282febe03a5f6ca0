package sink

import (
	"context"
	"io"
	"wa-gateway/domain/event"

	"github.com/mdp/qrterminal"
)

// ConsoleSink prints the pairing QR code to a terminal so the session can be
// linked without opening a realtime client.
type ConsoleSink struct {
	out io.Writer
}

func NewConsoleSink(out io.Writer) *ConsoleSink {
	return &ConsoleSink{out: out}
}

func (s *ConsoleSink) Consume(_ context.Context, e event.LifecycleEvent) error {
	evt, ok := e.(event.ChallengePresented)
	if !ok || evt.Code == "" {
		return nil
	}
	qrterminal.GenerateHalfBlock(evt.Code, qrterminal.L, s.out)
	return nil
}
