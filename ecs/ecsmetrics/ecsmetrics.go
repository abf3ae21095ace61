// Package ecsmetrics reports Executor tick summaries through real
// Prometheus instrumentation, replacing the teacher's hand-written
// Prometheus text exposition with github.com/prometheus/client_golang
// collector types.
package ecsmetrics

import (
	ecs "github.com/parasys/ecs"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector observes Executor tick summaries and exposes them as
// Prometheus metrics. It implements ecs.TickObserver, so it can be
// registered directly via ExecutorBuilder.WithObserver.
type Collector struct {
	tickDuration    prometheus.Summary
	systemsTotal    prometheus.Gauge
	systemsExecuted prometheus.Gauge
	commandsApplied prometheus.Counter
	tickErrors      prometheus.Counter
}

// NewCollector builds a Collector with metric names prefixed by
// namespace (e.g. "ecs"), ready to be registered against a
// prometheus.Registerer.
func NewCollector(namespace string) *Collector {
	return &Collector{
		tickDuration: prometheus.NewSummary(prometheus.SummaryOpts{
			Namespace:  namespace,
			Name:       "tick_duration_seconds",
			Help:       "Duration of a single executor tick.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}),
		systemsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tick_systems_total",
			Help:      "Number of systems registered with the executor.",
		}),
		systemsExecuted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tick_systems_executed",
			Help:      "Number of systems that ran during the most recent tick.",
		}),
		commandsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tick_commands_applied_total",
			Help:      "Deferred structural mutations applied across all ticks.",
		}),
		tickErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tick_errors_total",
			Help:      "Ticks that returned a non-nil error.",
		}),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.tickDuration.Describe(ch)
	c.systemsTotal.Describe(ch)
	c.systemsExecuted.Describe(ch)
	c.commandsApplied.Describe(ch)
	c.tickErrors.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.tickDuration.Collect(ch)
	c.systemsTotal.Collect(ch)
	c.systemsExecuted.Collect(ch)
	c.commandsApplied.Collect(ch)
	c.tickErrors.Collect(ch)
}

// TickCompleted implements ecs.TickObserver.
func (c *Collector) TickCompleted(summary ecs.TickSummary) {
	c.tickDuration.Observe(summary.Duration.Seconds())
	c.systemsTotal.Set(float64(summary.SystemsTotal))
	c.systemsExecuted.Set(float64(summary.SystemsExecuted))
	c.commandsApplied.Add(float64(summary.CommandsApplied))
	if summary.Error != nil {
		c.tickErrors.Inc()
	}
}

var (
	_ prometheus.Collector = (*Collector)(nil)
	_ ecs.TickObserver     = (*Collector)(nil)
)
