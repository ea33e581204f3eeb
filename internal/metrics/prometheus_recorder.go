package metrics

import (
	"fmt"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once             sync.Once
	reg              *prom.Registry
	apiAttempts      *prom.CounterVec
	apiRetries       *prom.CounterVec
	retriesExhausted prom.Counter
	statusSeen       *prom.CounterVec
	buildOutcome     *prom.CounterVec
	buildDuration    prom.Histogram
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.once.Do(func() {
		pr.apiAttempts = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "cirrusrun",
			Name:      "api_attempts_total",
			Help:      "GraphQL request attempts by result",
		}, []string{"result"})
		pr.apiRetries = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "cirrusrun",
			Name:      "api_retries_total",
			Help:      "GraphQL retries by backoff kind",
		}, []string{"kind"})
		pr.retriesExhausted = prom.NewCounter(prom.CounterOpts{
			Namespace: "cirrusrun",
			Name:      "api_retry_exhausted_total",
			Help:      "Calls that gave up after exhausting retries",
		})
		pr.statusSeen = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "cirrusrun",
			Name:      "build_status_observations_total",
			Help:      "Build status values observed while polling",
		}, []string{"status"})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "cirrusrun",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final result",
		}, []string{"outcome"})
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "cirrusrun",
			Name:      "build_wait_duration_seconds",
			Help:      "Time spent waiting for a build to finish",
			Buckets:   prom.ExponentialBuckets(10, 2, 10),
		})
		reg.MustRegister(pr.apiAttempts, pr.apiRetries, pr.retriesExhausted, pr.statusSeen, pr.buildOutcome, pr.buildDuration)
	})
	return pr
}

func (p *PrometheusRecorder) IncAPIAttempt(result AttemptResult) {
	if p == nil || p.apiAttempts == nil {
		return
	}
	p.apiAttempts.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncAPIRetry(kind RetryKind) {
	if p == nil || p.apiRetries == nil {
		return
	}
	p.apiRetries.WithLabelValues(string(kind)).Inc()
}

func (p *PrometheusRecorder) IncAPIRetryExhausted() {
	if p == nil || p.retriesExhausted == nil {
		return
	}
	p.retriesExhausted.Inc()
}

func (p *PrometheusRecorder) ObserveBuildStatus(status string) {
	if p == nil || p.statusSeen == nil {
		return
	}
	p.statusSeen.WithLabelValues(status).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcome) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

// WriteTextfile writes the registry in the text exposition format, for pickup by the
// node_exporter textfile collector. The write is atomic.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
