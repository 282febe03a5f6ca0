package workers

import (
	"context"
	"log/slog"
	"wa-gateway/contract"
	"wa-gateway/domain"
)

// IncomingPump hands received messages to a handler. A failing message is
// logged and skipped.
type IncomingPump struct {
	log      *slog.Logger
	incoming <-chan domain.IncomingMessage
	handler  contract.IncomingHandler
}

func NewIncomingPump(log *slog.Logger, incoming <-chan domain.IncomingMessage, handler contract.IncomingHandler) *IncomingPump {
	return &IncomingPump{log: log.With("component", "incoming_pump"), incoming: incoming, handler: handler}
}

func (w *IncomingPump) Run(ctx context.Context) error {
	for {
		select {
		case msg, ok := <-w.incoming:
			if !ok {
				return nil
			}
			if err := w.handler.Handle(ctx, msg); err != nil {
				w.log.Warn("Incoming message handling failed", "id", msg.ID, "from", msg.From.String(), "error", err)
			}
		case <-ctx.Done():
			return nil
		}
	}
}
