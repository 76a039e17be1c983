package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"keyword-report/pkg/api"
	"keyword-report/pkg/fetcher"
	"keyword-report/pkg/ranking"
)

const namespace = "keyword_report"

// Metrics records one run's batch, classification and dispatch counters
// on a private registry so a batch job can push them when it ends
type Metrics struct {
	registry           *prometheus.Registry
	batchesTotal       *prometheus.CounterVec
	recordsSkipped     prometheus.Counter
	batchDuration      prometheus.Histogram
	keywordsClassified *prometheus.CounterVec
	dispatchesTotal    *prometheus.CounterVec
	runDuration        prometheus.Gauge
	lastRunTimestamp   prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		batchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Keyword tool batch requests by outcome and failure kind",
		}, []string{"outcome", "kind"}),
		recordsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "Malformed keyword items dropped by the parser",
		}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Keyword tool request latency",
			Buckets:   prometheus.DefBuckets,
		}),
		keywordsClassified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keywords_classified_total",
			Help:      "Ranked keywords by category and label",
		}, []string{"category", "label"}),
		dispatchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatches_total",
			Help:      "Report dispatch attempts by outcome",
		}, []string{"outcome"}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of the last pipeline run",
		}),
		lastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last pipeline run finished",
		}),
	}

	m.registry.MustRegister(
		m.batchesTotal,
		m.recordsSkipped,
		m.batchDuration,
		m.keywordsClassified,
		m.dispatchesTotal,
		m.runDuration,
		m.lastRunTimestamp,
	)
	return m
}

// Registry exposes the underlying registry for handlers and tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveBatch implements fetcher.BatchObserver
func (m *Metrics) ObserveBatch(outcome fetcher.BatchOutcome) {
	if outcome.Succeeded() {
		m.batchesTotal.WithLabelValues("success", "none").Inc()
	} else {
		m.batchesTotal.WithLabelValues("failure", api.ClassifyError(outcome.Err).String()).Inc()
	}
	m.recordsSkipped.Add(float64(outcome.Skipped))
	m.batchDuration.Observe(outcome.Duration.Seconds())
}

func (m *Metrics) observeCategory(name string, entries []ranking.ClassifiedEntry) {
	// Touch both labels so an empty category still exports zeros
	m.keywordsClassified.WithLabelValues(name, string(ranking.Attainable))
	m.keywordsClassified.WithLabelValues(name, string(ranking.Competitive))
	for _, entry := range entries {
		m.keywordsClassified.WithLabelValues(name, string(entry.Label)).Inc()
	}
}

func (m *Metrics) observeDispatch(err error) {
	if err != nil {
		m.dispatchesTotal.WithLabelValues("failure").Inc()
		return
	}
	m.dispatchesTotal.WithLabelValues("success").Inc()
}

func (m *Metrics) observeRun(duration time.Duration, finished time.Time) {
	m.runDuration.Set(duration.Seconds())
	m.lastRunTimestamp.Set(float64(finished.Unix()))
}

// Push sends the registry to a Prometheus Pushgateway
func (m *Metrics) Push(ctx context.Context, gatewayURL, job string) error {
	if gatewayURL == "" {
		return fmt.Errorf("pushgateway url is empty")
	}
	if err := push.New(gatewayURL, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}
