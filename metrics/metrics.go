// Package metrics provides Prometheus-based metrics recording for the
// blackboard engine. The engine records through the Recorder interface; the
// NoopRecorder default keeps library use metric-free unless a recorder is
// supplied.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder receives engine lifecycle observations.
type Recorder interface {
	// ArtifactPublished records one artifact appended to the store.
	ArtifactPublished(typeName string)

	// ArtifactFiltered records one artifact a subscription saw but did not
	// receive (predicate, visibility, or predicate error).
	ArtifactFiltered(agent, typeName string)

	// GroupMatched records one emitted match group.
	GroupMatched(agent string)

	// BatchFlushed records one batch buffer flush; cause is "size" or
	// "timeout" (or "forced").
	BatchFlushed(agent, cause string)

	// InvocationObserved records one completed agent invocation.
	InvocationObserved(agent string, duration time.Duration, err error)
}

// NoopRecorder discards all observations.
type NoopRecorder struct{}

// ArtifactPublished implements Recorder.
func (NoopRecorder) ArtifactPublished(string) {}

// ArtifactFiltered implements Recorder.
func (NoopRecorder) ArtifactFiltered(string, string) {}

// GroupMatched implements Recorder.
func (NoopRecorder) GroupMatched(string) {}

// BatchFlushed implements Recorder.
func (NoopRecorder) BatchFlushed(string, string) {}

// InvocationObserved implements Recorder.
func (NoopRecorder) InvocationObserved(string, time.Duration, error) {}

// PrometheusRecorder implements Recorder using Prometheus collectors.
type PrometheusRecorder struct {
	artifactsTotal     *prometheus.CounterVec
	filteredTotal      *prometheus.CounterVec
	groupsTotal        *prometheus.CounterVec
	batchFlushesTotal  *prometheus.CounterVec
	invocationsTotal   *prometheus.CounterVec
	invocationDuration *prometheus.HistogramVec
}

// NewPrometheusRecorder creates a recorder registering its collectors with
// the given registerer. A nil registerer uses the default registry.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &PrometheusRecorder{
		artifactsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blackboard_artifacts_published_total",
				Help: "Total number of artifacts published to the blackboard by type",
			},
			[]string{"type"},
		),
		filteredTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blackboard_artifacts_filtered_total",
				Help: "Total number of artifacts seen but not delivered, by agent and type",
			},
			[]string{"agent", "type"},
		),
		groupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blackboard_match_groups_total",
				Help: "Total number of emitted match groups by agent",
			},
			[]string{"agent"},
		),
		batchFlushesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blackboard_batch_flushes_total",
				Help: "Total number of batch buffer flushes by agent and cause",
			},
			[]string{"agent", "cause"},
		),
		invocationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blackboard_invocations_total",
				Help: "Total number of agent invocations by agent and status",
			},
			[]string{"agent", "status"},
		),
		invocationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "blackboard_invocation_duration_seconds",
				Help:    "Duration of agent invocations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"agent"},
		),
	}
}

// ArtifactPublished implements Recorder.
func (p *PrometheusRecorder) ArtifactPublished(typeName string) {
	p.artifactsTotal.WithLabelValues(typeName).Inc()
}

// ArtifactFiltered implements Recorder.
func (p *PrometheusRecorder) ArtifactFiltered(agent, typeName string) {
	p.filteredTotal.WithLabelValues(agent, typeName).Inc()
}

// GroupMatched implements Recorder.
func (p *PrometheusRecorder) GroupMatched(agent string) {
	p.groupsTotal.WithLabelValues(agent).Inc()
}

// BatchFlushed implements Recorder.
func (p *PrometheusRecorder) BatchFlushed(agent, cause string) {
	p.batchFlushesTotal.WithLabelValues(agent, cause).Inc()
}

// InvocationObserved implements Recorder.
func (p *PrometheusRecorder) InvocationObserved(agent string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	p.invocationsTotal.WithLabelValues(agent, status).Inc()
	p.invocationDuration.WithLabelValues(agent).Observe(duration.Seconds())
}
