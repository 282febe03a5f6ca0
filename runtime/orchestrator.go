// Package runtime owns the session handle and the propagation of its
// lifecycle to observers. It holds no dispatch rules.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"wa-gateway/contract"
	"wa-gateway/domain"
	"wa-gateway/domain/event"
	"wa-gateway/observability"
	"wa-gateway/runtime/workers"
)

type OrchestratorConfig struct {
	BufferSize      int
	SinkTimeout     time.Duration
	RestartInterval time.Duration
	MetricInterval  time.Duration
}

type Orchestrator struct {
	mu              sync.Mutex
	log             *slog.Logger
	supervisor      contract.ISupervisor
	engine          contract.Engine
	registry        *Registry
	bridge          *Bridge
	monitoring      *observability.MonitoringManager
	permanentSinks  []contract.EventSink
	incomingHandler contract.IncomingHandler
	events          chan event.LifecycleEvent
	config          OrchestratorConfig
	cancel          context.CancelFunc
	done            chan struct{}
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor, engine contract.Engine,
	session *Session, registry *Registry, renderer contract.ChallengeRenderer,
	monitoring *observability.MonitoringManager, config OrchestratorConfig) *Orchestrator {
	events := make(chan event.LifecycleEvent, config.BufferSize)
	return &Orchestrator{
		log:        log.With("component", "orchestrator"),
		supervisor: supervisor,
		engine:     engine,
		registry:   registry,
		bridge: NewBridge(log, engine, session, registry, renderer, events,
			config.SinkTimeout, config.RestartInterval),
		monitoring: monitoring,
		events:     events,
		config:     config,
		done:       make(chan struct{}),
	}
}

// RegisterSinks adds observers that live as long as the process and are
// never evicted.
func (o *Orchestrator) RegisterSinks(sinks ...contract.EventSink) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.permanentSinks = append(o.permanentSinks, sinks...)
}

// OnIncoming routes received messages to handler. Without one they are
// drained and dropped.
func (o *Orchestrator) OnIncoming(handler contract.IncomingHandler) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.incomingHandler = handler
}

func (o *Orchestrator) Bridge() contract.IBridge { return o.bridge }

func (o *Orchestrator) Observers() int { return o.registry.Len() }

// Start launches the supervised workers, then initializes the engine.
// Workers are running before the engine can emit its first signal.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	fanout := workers.NewEventFanout(o.log, o.permanentSinks, o.registry, o.events,
		o.config.SinkTimeout, o.monitoring)
	incoming := o.incomingHandler
	if incoming == nil {
		incoming = dropIncoming{}
	}
	o.supervisor.Add(
		fanout,
		workers.NewSignalPump(o.log, o.engine.Signals(), o.bridge),
		workers.NewIncomingPump(o.log, o.engine.Incoming(), incoming),
	)
	if o.config.MetricInterval > 0 {
		o.supervisor.Add(
			workers.NewHealthMonitoringWorker(o.log, o.monitoring, o.config.MetricInterval),
			workers.NewChannelCapacityWorker(o.log, []workers.NamedChannel{
				{Name: "signals", Channel: o.engine.Signals()},
				{Name: "incoming", Channel: o.engine.Incoming()},
				{Name: "events", Channel: o.events},
			}, o.monitoring, o.config.MetricInterval),
		)
	}
	runCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.mu.Unlock()

	go func() {
		defer close(o.done)
		o.log.Info("Starting orchestrator and all supervised workers")
		o.supervisor.Run(runCtx)
	}()

	if err := o.bridge.Initialize(ctx); err != nil {
		cancel()
		<-o.done
		return fmt.Errorf("orchestrator failed to start: %w", err)
	}
	return nil
}

// Stop cancels the workers, waits for them and releases the engine.
func (o *Orchestrator) Stop(ctx context.Context) {
	o.log.Info("Requesting orchestrator shutdown")
	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
	}
	o.mu.Unlock()
	o.supervisor.Stop()
	select {
	case <-o.done:
	case <-ctx.Done():
		o.log.Warn("Workers did not stop in time")
	}
	if err := o.engine.Destroy(ctx); err != nil {
		o.log.Warn("Engine destroy failed", "error", err)
	}
}

type dropIncoming struct{}

func (dropIncoming) Handle(context.Context, domain.IncomingMessage) error { return nil }
