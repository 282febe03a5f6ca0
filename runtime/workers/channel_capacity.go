package workers

import (
	"context"
	"log/slog"
	"reflect"
	"time"
	"wa-gateway/observability"
)

// backlogWarnPercent is the fill level from which a queue is reported.
const backlogWarnPercent = 80

type NamedChannel struct {
	Name    string
	Channel any
}

// ChannelCapacityWorker periodically samples the length and capacity of the
// internal queues. Reading len and cap is non-blocking, so sampling does not
// interfere with the goroutines using them.
type ChannelCapacityWorker struct {
	log            *slog.Logger
	channels       []NamedChannel
	monitoring     *observability.MonitoringManager
	metricInterval time.Duration
}

func NewChannelCapacityWorker(log *slog.Logger,
	channels []NamedChannel, monitoring *observability.MonitoringManager,
	metricInterval time.Duration) *ChannelCapacityWorker {
	return &ChannelCapacityWorker{
		log:            log.With("component", "backlog"),
		channels:       channels,
		monitoring:     monitoring,
		metricInterval: metricInterval,
	}
}

func (w ChannelCapacityWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping queue sampling")
			return nil
		case <-ticker.C:
			w.sample()
		}
	}
}

func (w ChannelCapacityWorker) sample() {
	for _, nc := range w.channels {
		v := reflect.ValueOf(nc.Channel)
		// Verify if this is a channel
		if v.Kind() != reflect.Chan {
			w.log.Error("Provided object is not a channel", "name", nc.Name)
			continue
		}
		depth := observability.QueueDepth{Length: v.Len(), Capacity: v.Cap()}
		w.monitoring.UpdateQueue(nc.Name, depth)
		if depth.Capacity > 0 && depth.Length*100 >= depth.Capacity*backlogWarnPercent {
			w.log.Warn("Queue is filling up", "name", nc.Name, "length", depth.Length, "capacity", depth.Capacity)
		}
	}
}
