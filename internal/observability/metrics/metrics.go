package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes application-level instruments for the ingestion pipeline.
type Metrics struct {
	eventsReceived  *prometheus.CounterVec
	eventsProjected *prometheus.CounterVec
	eventsSkipped   *prometheus.CounterVec
	eventsFailed    *prometheus.CounterVec
}

// New registers pipeline counters on the provided registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		eventsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billingsync",
			Name:      "webhook_events_received_total",
			Help:      "Webhook events received, by event type and verification mode.",
		}, []string{"event_type", "mode"}),
		eventsProjected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billingsync",
			Name:      "webhook_events_projected_total",
			Help:      "Webhook events projected into storage, by event type.",
		}, []string{"event_type"}),
		eventsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billingsync",
			Name:      "webhook_events_skipped_total",
			Help:      "Webhook events acknowledged without a write, by event type and reason.",
		}, []string{"event_type", "reason"}),
		eventsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billingsync",
			Name:      "webhook_events_failed_total",
			Help:      "Webhook events that failed processing, by event type and error type.",
		}, []string{"event_type", "error_type"}),
	}

	if reg != nil {
		reg.MustRegister(m.eventsReceived, m.eventsProjected, m.eventsSkipped, m.eventsFailed)
	}
	return m
}

// RecordReceived counts an inbound event.
func (m *Metrics) RecordReceived(eventType, mode string) {
	if m == nil {
		return
	}
	m.eventsReceived.WithLabelValues(orUnknown(eventType), orUnknown(mode)).Inc()
}

// RecordProjected counts a successful projection.
func (m *Metrics) RecordProjected(eventType string) {
	if m == nil {
		return
	}
	m.eventsProjected.WithLabelValues(orUnknown(eventType)).Inc()
}

// RecordSkipped counts an acknowledged no-op.
func (m *Metrics) RecordSkipped(eventType, reason string) {
	if m == nil {
		return
	}
	m.eventsSkipped.WithLabelValues(orUnknown(eventType), orUnknown(reason)).Inc()
}

// RecordFailed counts a processing failure.
func (m *Metrics) RecordFailed(eventType, errorType string) {
	if m == nil {
		return
	}
	m.eventsFailed.WithLabelValues(orUnknown(eventType), orUnknown(errorType)).Inc()
}

func orUnknown(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
