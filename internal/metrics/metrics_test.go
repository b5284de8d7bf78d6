package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveInstruction("deposit", "ok", 5*time.Millisecond)
	m.ObserveInstruction("deposit", "state", time.Millisecond)
	m.ObserveInstruction("deposit", "ok", time.Millisecond)
	m.Transition("funded")
	m.Moved("in", 1000)
	m.Moved("out", 400)
	m.Published(3)
	m.RelayError()

	if got := testutil.ToFloat64(m.instructions.WithLabelValues("deposit", "ok")); got != 2 {
		t.Errorf("deposit ok: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.instructions.WithLabelValues("deposit", "state")); got != 1 {
		t.Errorf("deposit state: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.transitions.WithLabelValues("funded")); got != 1 {
		t.Errorf("funded transitions: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.moved.WithLabelValues("in")); got != 1000 {
		t.Errorf("moved in: got %v, want 1000", got)
	}
	if got := testutil.ToFloat64(m.published); got != 3 {
		t.Errorf("published: got %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.relayErrors); got != 1 {
		t.Errorf("relay errors: got %v, want 1", got)
	}
}

func TestNilMetricsIsNoOp(t *testing.T) {
	var m *Metrics
	m.ObserveInstruction("init", "ok", time.Second)
	m.Transition("initialized")
	m.Moved("in", 1)
	m.Published(1)
	m.RelayError()
}
