package pipeline

import (
	"sync"

	"github.com/opentracing/opentracing-go"
)

// TracingMonitor opens one opentracing.Span per GroupId at
// GroupLoadingBegin/JobExecutionTrackingBegin/OutputFetchingBegin and
// finishes it at the matching ...End, so each group's Loader, Tracker and
// Fetcher phases show up as separate spans even though those stages run
// concurrently with other groups'. Each span is started without a parent
// or reference, so the three phases of one group are not joined into a
// single trace. The exporter (e.g. jaeger-client-go) is wired in by the
// caller.
type TracingMonitor struct {
	tracer opentracing.Tracer

	mu    sync.Mutex
	spans map[GroupId]opentracing.Span
}

// NewTracingMonitor returns a Monitor that opens spans against tracer.
func NewTracingMonitor(tracer opentracing.Tracer) *TracingMonitor {
	return &TracingMonitor{tracer: tracer, spans: make(map[GroupId]opentracing.Span)}
}

// Emit implements Monitor.
func (m *TracingMonitor) Emit(ev Event) {
	switch e := ev.(type) {
	case GroupLoadingBegin:
		m.start(e.Group, "group_loading")
	case GroupLoadingEnd:
		m.finish(e.Group)
	case JobExecutionTrackingBegin:
		m.start(e.Group, "job_execution_tracking")
	case JobExecutionTrackingEnd:
		m.finish(e.Group)
	case OutputFetchingBegin:
		m.start(e.Group, "output_fetching")
	case OutputFetchingEnd:
		m.finish(e.Group)
	}
}

func (m *TracingMonitor) start(group GroupId, op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spans[group] = m.tracer.StartSpan(op)
}

func (m *TracingMonitor) finish(group GroupId) {
	m.mu.Lock()
	span, ok := m.spans[group]
	delete(m.spans, group)
	m.mu.Unlock()
	if ok {
		span.Finish()
	}
}

var _ Monitor = (*TracingMonitor)(nil)
