// Package metrics exposes the Prometheus instruments the scheduler and
// world ops update, plus a host resource sampler feeding the same
// registry — the ambient observability layer the teacher's
// eventbus.MetricsExporter models for its own subsystem, generalized here
// to cover the engine loop (spec.md §4.5, §5).
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/latticeworld/worldcore/internal/logging"
)

var metricsLog = logging.GetLogger("metrics")

// Scheduler holds the instruments Engine updates every tick: how long a
// dispatch took, how deep the wake queue sits, and which world ops ran.
type Scheduler struct {
	TickDuration prometheus.Histogram
	WakeDepth    prometheus.Gauge
	OpsTotal     *prometheus.CounterVec
}

// NewScheduler builds and registers a fresh Scheduler instrument set.
func NewScheduler() *Scheduler {
	s := &Scheduler{
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "worldcore",
			Subsystem: "scheduler",
			Name:      "tick_duration_seconds",
			Help:      "Time spent handling one dispatched request or wake reason.",
			Buckets:   prometheus.DefBuckets,
		}),
		WakeDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "worldcore",
			Subsystem: "scheduler",
			Name:      "wake_queue_depth",
			Help:      "Entries currently pending in the wake queue.",
		}),
		OpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "worldcore",
			Subsystem: "world",
			Name:      "ops_total",
			Help:      "World op invocations, by op name.",
		}, []string{"op"}),
	}
	prometheus.MustRegister(s.TickDuration, s.WakeDepth, s.OpsTotal)
	return s
}

// ObserveTick records one dispatch's wall time. Nil-safe so callers don't
// need to branch when metrics are disabled.
func (s *Scheduler) ObserveTick(d time.Duration) {
	if s == nil {
		return
	}
	s.TickDuration.Observe(d.Seconds())
}

// SetWakeDepth records the wake queue's current length.
func (s *Scheduler) SetWakeDepth(n int) {
	if s == nil {
		return
	}
	s.WakeDepth.Set(float64(n))
}

// CountOp increments the counter for a named world op.
func (s *Scheduler) CountOp(name string) {
	if s == nil {
		return
	}
	s.OpsTotal.WithLabelValues(name).Inc()
}

// StartHostSampler periodically samples host CPU/memory utilization into
// the Prometheus registry until ctx is cancelled.
func StartHostSampler(ctx context.Context, interval time.Duration) {
	cpuGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "worldcore", Subsystem: "host", Name: "cpu_percent",
		Help: "Host CPU utilization percent, sampled over the last interval.",
	})
	memGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "worldcore", Subsystem: "host", Name: "mem_used_percent",
		Help: "Host memory utilization percent.",
	})
	prometheus.MustRegister(cpuGauge, memGauge)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if pcts, err := cpu.Percent(0, false); err != nil {
					metricsLog.Warn("cpu sample failed: %v", err)
				} else if len(pcts) > 0 {
					cpuGauge.Set(pcts[0])
				}
				if vm, err := mem.VirtualMemory(); err != nil {
					metricsLog.Warn("mem sample failed: %v", err)
				} else {
					memGauge.Set(vm.UsedPercent)
				}
			}
		}
	}()
}
