package ecsmetrics

import (
	"errors"
	"testing"
	"time"

	ecs "github.com/parasys/ecs"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCollectorImplementsPrometheusCollector(t *testing.T) {
	c := NewCollector("ecs_test")
	reg := prometheus.NewRegistry()
	if err := reg.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
}

func TestCollectorRecordsTickSummary(t *testing.T) {
	c := NewCollector("ecs_test")
	c.TickCompleted(ecs.TickSummary{
		Tick:            1,
		Duration:        10 * time.Millisecond,
		SystemsTotal:    3,
		SystemsExecuted: 2,
		CommandsApplied: 5,
	})

	metrics := gather(t, c)
	if v := metrics["ecs_test_tick_systems_total"]; v != 3 {
		t.Fatalf("expected systems_total=3, got %v", v)
	}
	if v := metrics["ecs_test_tick_systems_executed"]; v != 2 {
		t.Fatalf("expected systems_executed=2, got %v", v)
	}
	if v := metrics["ecs_test_tick_commands_applied_total"]; v != 5 {
		t.Fatalf("expected commands_applied_total=5, got %v", v)
	}
	if v := metrics["ecs_test_tick_errors_total"]; v != 0 {
		t.Fatalf("expected tick_errors_total=0, got %v", v)
	}
}

func TestCollectorCountsTickErrors(t *testing.T) {
	c := NewCollector("ecs_test")
	c.TickCompleted(ecs.TickSummary{Tick: 1, Error: errors.New("boom")})
	c.TickCompleted(ecs.TickSummary{Tick: 2, Error: errors.New("boom again")})

	metrics := gather(t, c)
	if v := metrics["ecs_test_tick_errors_total"]; v != 2 {
		t.Fatalf("expected tick_errors_total=2, got %v", v)
	}
}

func gather(t *testing.T, c *Collector) map[string]float64 {
	t.Helper()
	reg := prometheus.NewRegistry()
	if err := reg.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	result := make(map[string]float64, len(families))
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			result[mf.GetName()] = metricValue(m)
		}
	}
	return result
}

func metricValue(m *dto.Metric) float64 {
	switch {
	case m.GetGauge() != nil:
		return m.GetGauge().GetValue()
	case m.GetCounter() != nil:
		return m.GetCounter().GetValue()
	case m.GetSummary() != nil:
		return float64(m.GetSummary().GetSampleCount())
	default:
		return 0
	}
}
