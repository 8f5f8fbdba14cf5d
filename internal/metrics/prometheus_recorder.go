package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once           sync.Once
	registry       *prom.Registry
	buildDuration  prom.Histogram
	buildOutcome   *prom.CounterVec
	regenReasons   *prom.CounterVec
	deployDuration prom.Histogram
	deployOutcome  *prom.CounterVec
	submitRetries  prom.Counter
	pollCount      prom.Histogram
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.once.Do(func() {
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "meshbuild",
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "meshbuild",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"})
		pr.regenReasons = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "meshbuild",
			Name:      "regeneration_decisions_total",
			Help:      "Regeneration gate decisions by reason",
		}, []string{"reason"})
		pr.deployDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "meshbuild",
			Name:      "deploy_duration_seconds",
			Help:      "Total deploy duration including polling",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		})
		pr.deployOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "meshbuild",
			Name:      "deploy_outcomes_total",
			Help:      "Deploy outcomes by terminal status",
		}, []string{"outcome"})
		pr.submitRetries = prom.NewCounter(prom.CounterOpts{
			Namespace: "meshbuild",
			Name:      "submit_retries_total",
			Help:      "Mesh update submissions retried after transient failure",
		})
		pr.pollCount = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "meshbuild",
			Name:      "status_polls_per_deploy",
			Help:      "Status polls performed per deploy",
			Buckets:   []float64{1, 2, 3, 5, 10, 20, 40},
		})
		reg.MustRegister(pr.buildDuration, pr.buildOutcome, pr.regenReasons,
			pr.deployDuration, pr.deployOutcome, pr.submitRetries, pr.pollCount)
	})
	return pr
}

// Registry exposes the backing registry for HTTP serving.
func (pr *PrometheusRecorder) Registry() *prom.Registry { return pr.registry }

func (pr *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	pr.buildDuration.Observe(d.Seconds())
}

func (pr *PrometheusRecorder) IncBuildOutcome(outcome string) {
	pr.buildOutcome.WithLabelValues(outcome).Inc()
}

func (pr *PrometheusRecorder) IncRegenReason(reason string) {
	pr.regenReasons.WithLabelValues(reason).Inc()
}

func (pr *PrometheusRecorder) ObserveDeployDuration(d time.Duration) {
	pr.deployDuration.Observe(d.Seconds())
}

func (pr *PrometheusRecorder) IncDeployOutcome(outcome string) {
	pr.deployOutcome.WithLabelValues(outcome).Inc()
}

func (pr *PrometheusRecorder) IncSubmitRetry() {
	pr.submitRetries.Inc()
}

func (pr *PrometheusRecorder) ObservePollCount(n int) {
	pr.pollCount.Observe(float64(n))
}
