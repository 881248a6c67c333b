package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMonitor records one counter increment per (stage, event_kind)
// plus a gauge of in-flight groups per stage.
type PrometheusMonitor struct {
	events   *prometheus.CounterVec
	inFlight *prometheus.GaugeVec
}

// NewPrometheusMonitor registers its metrics against reg (use
// prometheus.DefaultRegisterer for the global registry) and returns a
// Monitor backed by them.
func NewPrometheusMonitor(reg prometheus.Registerer) *PrometheusMonitor {
	factory := promauto.With(reg)
	return &PrometheusMonitor{
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dpucluster",
			Subsystem: "pipeline",
			Name:      "events_total",
			Help:      "Total pipeline events emitted, by stage and event kind.",
		}, []string{"stage", "event"}),
		inFlight: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "dpucluster",
			Subsystem: "pipeline",
			Name:      "groups_in_flight",
			Help:      "Number of groups currently owned by each stage.",
		}, []string{"stage"}),
	}
}

// Emit implements Monitor.
func (m *PrometheusMonitor) Emit(ev Event) {
	_, _, stage := eventFields(ev)
	m.events.WithLabelValues(stage.String(), eventName(ev)).Inc()

	switch ev.(type) {
	case GroupLoadingBegin:
		m.inFlight.WithLabelValues(StageLoader.String()).Inc()
	case GroupLoadingEnd:
		m.inFlight.WithLabelValues(StageLoader.String()).Dec()
	case JobExecutionTrackingBegin:
		m.inFlight.WithLabelValues(StageTracker.String()).Inc()
	case JobExecutionTrackingEnd:
		m.inFlight.WithLabelValues(StageTracker.String()).Dec()
	case OutputFetchingBegin:
		m.inFlight.WithLabelValues(StageFetcher.String()).Inc()
	case OutputFetchingEnd:
		m.inFlight.WithLabelValues(StageFetcher.String()).Dec()
	}
}

var _ Monitor = (*PrometheusMonitor)(nil)
