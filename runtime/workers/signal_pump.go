package workers

import (
	"context"
	"log/slog"
	"wa-gateway/contract"
	"wa-gateway/domain"
)

// SignalPump forwards engine lifecycle signals to the bridge in the order
// the engine emitted them.
type SignalPump struct {
	log     *slog.Logger
	signals <-chan domain.EngineSignal
	handler contract.SignalHandler
}

func NewSignalPump(log *slog.Logger, signals <-chan domain.EngineSignal, handler contract.SignalHandler) *SignalPump {
	return &SignalPump{log: log.With("component", "signal_pump"), signals: signals, handler: handler}
}

func (w *SignalPump) Run(ctx context.Context) error {
	for {
		select {
		case sig, ok := <-w.signals:
			if !ok {
				w.log.Info("Engine signal channel closed")
				return nil
			}
			if err := w.handler.Handle(ctx, sig); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}
