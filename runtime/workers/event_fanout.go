package workers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
	"wa-gateway/contract"
	"wa-gateway/domain/event"
	"wa-gateway/errors"
	"wa-gateway/observability"
)

// EventFanout delivers every lifecycle event to the permanent sinks and to
// every observer attached in the registry, one event at a time.
//
// Each delivery is bounded by sinkTimeout. An observer that cannot take an
// event in time is evicted and closed rather than left behind with a gap.
type EventFanout struct {
	log            *slog.Logger
	permanentSinks []contract.EventSink
	registry       contract.IRegistry
	events         <-chan event.LifecycleEvent
	sinkTimeout    time.Duration
	monitoring     *observability.MonitoringManager
}

func NewEventFanout(log *slog.Logger, permanentSinks []contract.EventSink,
	registry contract.IRegistry, events <-chan event.LifecycleEvent,
	sinkTimeout time.Duration, monitoring *observability.MonitoringManager) *EventFanout {
	return &EventFanout{
		log:            log.With("component", "fanout"),
		permanentSinks: permanentSinks,
		registry:       registry,
		events:         events,
		sinkTimeout:    sinkTimeout,
		monitoring:     monitoring,
	}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt := <-w.events:
			w.Fanout(ctx, evt)
		case <-ctx.Done():
			w.log.Debug("Context done, stopping lifecycle fan-out")
			return nil
		}
	}
}

// Fanout One sink for each event
func (w *EventFanout) Fanout(ctx context.Context, evt event.LifecycleEvent) {
	for _, sink := range w.permanentSinks {
		if err := w.deliver(ctx, sink, evt); err != nil {
			w.log.Warn("Permanent sink failed", "event", evt.Name(), "error", err)
		}
	}
	for handle, sink := range w.registry.Sinks() {
		if err := w.deliver(ctx, sink, evt); err != nil {
			w.evict(handle, err)
		}
	}
}

func (w *EventFanout) deliver(ctx context.Context, sink contract.EventSink, evt event.LifecycleEvent) error {
	sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
	defer cancel()
	if err := sink.Consume(sinkCtx, evt); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrObserverSlow, err)
	}
	return nil
}

func (w *EventFanout) evict(handle string, cause error) {
	sink, ok := w.registry.Unsubscribe(handle)
	if !ok {
		return
	}
	w.monitoring.IncrObserversEvicted()
	w.log.Warn("Observer evicted", "handle", handle, "error", cause)
	if c, ok := sink.(io.Closer); ok {
		if err := c.Close(); err != nil {
			w.log.Debug("Observer close failed", "handle", handle, "error", err)
		}
	}
}
