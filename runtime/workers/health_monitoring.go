package workers

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"
	"wa-gateway/observability"

	"github.com/shirou/gopsutil/process"
)

// HealthMonitoringWorker samples the gateway process on a fixed interval.
type HealthMonitoringWorker struct {
	log            *slog.Logger
	monitoring     *observability.MonitoringManager
	metricInterval time.Duration
	pid            int32
}

func NewHealthMonitoringWorker(log *slog.Logger, monitoring *observability.MonitoringManager,
	metricInterval time.Duration) *HealthMonitoringWorker {
	return &HealthMonitoringWorker{
		log:            log.With("component", "health"),
		monitoring:     monitoring,
		metricInterval: metricInterval,
		pid:            int32(os.Getpid()),
	}
}

func (w *HealthMonitoringWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(w.pid)
	if err != nil {
		return err
	}
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	w.sample(p)
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping process sampling")
			return nil
		case <-ticker.C:
			w.sample(p)
		}
	}
}

func (w *HealthMonitoringWorker) sample(p *process.Process) {
	status, err := p.Status()
	if err != nil {
		w.log.Error("Error while finding process status", "err", err)
		return
	}
	cpu, err := p.CPUPercent()
	if err != nil {
		w.log.Error("Error while finding process cpu usage", "err", err)
		return
	}
	ram, err := p.MemoryPercent()
	if err != nil {
		w.log.Error("Error while finding process ram usage", "err", err)
		return
	}
	var rss uint64
	if mem, err := p.MemoryInfo(); err == nil {
		rss = mem.RSS / 1024 / 1024
	}
	w.monitoring.UpdateProcess(observability.ProcessStats{
		Status:     toStatus(status),
		CPUPercent: cpu,
		MemPercent: ram,
		RSSMb:      rss,
		SampledAt:  time.Now().UTC().Format(time.RFC3339),
	})
}

func toStatus(status string) string {
	switch strings.ToUpper(status) {
	case "R":
		return "running"
	case "S":
		return "sleeping"
	case "T":
		return "stopped"
	case "Z":
		return "zombie"
	case "I":
		return "idle"
	default:
		return strings.ToLower(status)
	}
}
