package observability

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
	"wa-gateway/domain"
)

// ProcessStats is the last sample taken of the gateway process.
type ProcessStats struct {
	Status     string  `json:"status"`
	CPUPercent float64 `json:"cpu_percent"`
	MemPercent float32 `json:"mem_percent"`
	RSSMb      uint64  `json:"rss_mb"`
	SampledAt  string  `json:"sampled_at,omitempty"`
}

// QueueDepth is the last sampled backlog of one internal queue.
type QueueDepth struct {
	Length   int `json:"length"`
	Capacity int `json:"capacity"`
}

// MonitoringStats is what /healthz answers.
type MonitoringStats struct {
	SessionState string `json:"session_state"`
	ClientReady  bool   `json:"client_ready"`
	Observers    int    `json:"observers"`

	MessagesSent     uint64 `json:"messages_sent"`
	SendFailures     uint64 `json:"send_failures"`
	ObserversEvicted uint64 `json:"observers_evicted"`

	Process       ProcessStats          `json:"process"`
	Queues        map[string]QueueDepth `json:"queues,omitempty"`
	AllocMemMb    uint64                `json:"alloc_mem_mb"`
	NumGC         uint32                `json:"num_gc"`
	Goroutines    int                   `json:"goroutines"`
	UptimeSeconds int64                 `json:"uptime_seconds"`
}

// MonitoringManager aggregates gateway counters and process samples.
// A nil manager is valid and records nothing.
type MonitoringManager struct {
	log       *slog.Logger
	startedAt time.Time

	messagesSent     atomic.Uint64
	sendFailures     atomic.Uint64
	observersEvicted atomic.Uint64

	mu      sync.RWMutex
	process ProcessStats
	queues  map[string]QueueDepth
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	return &MonitoringManager{
		log:       log.With("component", "monitoring"),
		startedAt: time.Now(),
	}
}

func (mm *MonitoringManager) IncrMessagesSent() {
	if mm != nil {
		mm.messagesSent.Add(1)
	}
}

func (mm *MonitoringManager) IncrSendFailures() {
	if mm != nil {
		mm.sendFailures.Add(1)
	}
}

func (mm *MonitoringManager) IncrObserversEvicted() {
	if mm != nil {
		mm.observersEvicted.Add(1)
	}
}

func (mm *MonitoringManager) UpdateProcess(stats ProcessStats) {
	if mm == nil {
		return
	}
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.process = stats
	mm.log.Debug("Process sampled", "cpu", stats.CPUPercent, "mem", stats.MemPercent, "rss_mb", stats.RSSMb)
}

func (mm *MonitoringManager) UpdateQueue(name string, depth QueueDepth) {
	if mm == nil {
		return
	}
	mm.mu.Lock()
	defer mm.mu.Unlock()
	if mm.queues == nil {
		mm.queues = make(map[string]QueueDepth)
	}
	mm.queues[name] = depth
}

func (mm *MonitoringManager) GetLatest(status domain.Status, observers int) MonitoringStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	stats := MonitoringStats{
		SessionState: status.State.String(),
		ClientReady:  status.Ready,
		Observers:    observers,
		AllocMemMb:   m.Alloc / 1024 / 1024,
		NumGC:        m.NumGC,
		Goroutines:   runtime.NumGoroutine(),
	}
	if mm == nil {
		return stats
	}
	stats.MessagesSent = mm.messagesSent.Load()
	stats.SendFailures = mm.sendFailures.Load()
	stats.ObserversEvicted = mm.observersEvicted.Load()
	stats.UptimeSeconds = int64(time.Since(mm.startedAt).Seconds())
	mm.mu.RLock()
	stats.Process = mm.process
	if len(mm.queues) > 0 {
		stats.Queues = make(map[string]QueueDepth, len(mm.queues))
		for name, depth := range mm.queues {
			stats.Queues[name] = depth
		}
	}
	mm.mu.RUnlock()
	return stats
}
