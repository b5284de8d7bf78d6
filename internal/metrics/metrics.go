// Package metrics exposes Prometheus instrumentation for the engine and relay.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "escrowd"

// Metrics holds every collector the service exports. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	instructions *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	transitions  *prometheus.CounterVec
	moved        *prometheus.CounterVec
	published    prometheus.Counter
	relayErrors  prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		instructions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "instructions_total",
			Help:      "Instructions executed, by operation and result kind.",
		}, []string{"op", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "instruction_duration_seconds",
			Help:      "Instruction latency including the store transaction.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_transitions_total",
			Help:      "Committed session transitions, by resulting status.",
		}, []string{"status"}),
		moved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "custody_moved_units_total",
			Help:      "Token base units moved into or out of custody, by direction.",
		}, []string{"direction"}),
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_published_total",
			Help:      "Events published to the event stream.",
		}),
		relayErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_errors_total",
			Help:      "Relay passes that failed.",
		}),
	}
	reg.MustRegister(m.instructions, m.duration, m.transitions, m.moved, m.published, m.relayErrors)
	return m
}

// ObserveInstruction records one instruction outcome. result is "ok" or an error kind.
func (m *Metrics) ObserveInstruction(op, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.instructions.WithLabelValues(op, result).Inc()
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// Transition records a committed status change.
func (m *Metrics) Transition(status string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(status).Inc()
}

// Moved records custody inflow ("in") or outflow ("out").
func (m *Metrics) Moved(direction string, amount uint64) {
	if m == nil {
		return
	}
	m.moved.WithLabelValues(direction).Add(float64(amount))
}

// Published records events handed to the stream.
func (m *Metrics) Published(n int) {
	if m == nil {
		return
	}
	m.published.Add(float64(n))
}

// RelayError records a failed relay pass.
func (m *Metrics) RelayError() {
	if m == nil {
		return
	}
	m.relayErrors.Inc()
}
