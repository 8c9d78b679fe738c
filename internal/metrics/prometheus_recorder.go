package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry         *prom.Registry
	stepDuration     *prom.HistogramVec
	pipelineDuration prom.Histogram
	stepResults      *prom.CounterVec
	publishOutcome   *prom.CounterVec
	platformFetch    *prom.CounterVec
	lastRun          prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on the
// given registry (a nil registry gets a fresh one).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.stepDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: "predmarkets",
		Name:      "step_duration_seconds",
		Help:      "Duration of individual publish pipeline steps",
		Buckets:   prom.DefBuckets,
	}, []string{"step"})
	pr.pipelineDuration = prom.NewHistogram(prom.HistogramOpts{
		Namespace: "predmarkets",
		Name:      "pipeline_duration_seconds",
		Help:      "Total publish pipeline duration",
		Buckets:   prom.DefBuckets,
	})
	pr.stepResults = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "predmarkets",
		Name:      "step_results_total",
		Help:      "Step result counts by outcome",
	}, []string{"step", "result"})
	pr.publishOutcome = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "predmarkets",
		Name:      "publish_outcomes_total",
		Help:      "Publish outcomes by final status",
	}, []string{"outcome"})
	pr.platformFetch = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "predmarkets",
		Name:      "platform_fetch_total",
		Help:      "Market data fetch results by platform and status",
	}, []string{"platform", "status"})
	pr.lastRun = prom.NewGauge(prom.GaugeOpts{
		Namespace: "predmarkets",
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix timestamp of the last completed run",
	})
	reg.MustRegister(pr.stepDuration, pr.pipelineDuration, pr.stepResults, pr.publishOutcome, pr.platformFetch, pr.lastRun)
	return pr
}

func (p *PrometheusRecorder) ObserveStepDuration(step string, d time.Duration) {
	if p == nil || p.stepDuration == nil {
		return
	}
	p.stepDuration.WithLabelValues(step).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObservePipelineDuration(d time.Duration) {
	if p == nil || p.pipelineDuration == nil {
		return
	}
	p.pipelineDuration.Observe(d.Seconds())
	p.lastRun.SetToCurrentTime()
}

func (p *PrometheusRecorder) IncStepResult(step string, result ResultLabel) {
	if p == nil || p.stepResults == nil {
		return
	}
	p.stepResults.WithLabelValues(step, string(result)).Inc()
}

func (p *PrometheusRecorder) IncPublishOutcome(outcome string) {
	if p == nil || p.publishOutcome == nil {
		return
	}
	p.publishOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) IncPlatformFetch(platform, status string) {
	if p == nil || p.platformFetch == nil {
		return
	}
	p.platformFetch.WithLabelValues(platform, status).Inc()
}

// WriteTextfile persists the registry in text exposition format, the layout the
// node_exporter textfile collector scrapes. This is how one-shot cron runs
// surface metrics without a listener.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if p == nil || p.registry == nil {
		return nil
	}
	return prom.WriteToTextfile(path, p.registry)
}
