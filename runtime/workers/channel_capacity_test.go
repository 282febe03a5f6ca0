package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"
	"wa-gateway/observability"

	"github.com/stretchr/testify/require"
)

func TestChannelCapacityWorker_RecordsDepth(t *testing.T) {
	req := require.New(t)
	monitoring := observability.NewMonitoringManager(slog.Default())
	incoming := make(chan int, 4)
	incoming <- 1
	incoming <- 2
	var readOnly <-chan int = incoming

	// Given a worker watching a typed channel, a receive-only view and a non channel
	w := NewChannelCapacityWorker(slog.Default(), []NamedChannel{
		{Name: "incoming", Channel: incoming},
		{Name: "view", Channel: readOnly},
		{Name: "bogus", Channel: 42},
	}, monitoring, 10*time.Millisecond)

	// When it runs for a few ticks
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Then the backlog shows up in the stats
	req.Eventually(func() bool {
		queues := monitoring.GetLatest(domainStatus(), 0).Queues
		return queues["incoming"] == observability.QueueDepth{Length: 2, Capacity: 4} &&
			queues["view"] == observability.QueueDepth{Length: 2, Capacity: 4}
	}, time.Second, 10*time.Millisecond)
	_, found := monitoring.GetLatest(domainStatus(), 0).Queues["bogus"]
	req.False(found)

	cancel()
	req.NoError(<-done)
}
