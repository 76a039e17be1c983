package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"keyword-report/internal/service"
	"keyword-report/pkg/logger"
	"keyword-report/pkg/ranking"
	"keyword-report/pkg/storage"
)

var (
	latestEntriesDesc = prometheus.NewDesc(
		namespace+"_latest_entries",
		"Ranked keywords in the most recent stored report by category and label",
		[]string{"category", "label"},
		nil,
	)
	latestFailedDesc = prometheus.NewDesc(
		namespace+"_latest_category_failed",
		"Whether a category in the most recent stored report had no usable data",
		[]string{"category"},
		nil,
	)
	latestGeneratedDesc = prometheus.NewDesc(
		namespace+"_latest_generated_timestamp_seconds",
		"Generation time of the most recent stored report",
		nil,
		nil,
	)
)

// ReportCollector is a custom Prometheus collector that reads the latest
// stored report on each scrape
type ReportCollector struct {
	archive service.ReportArchive
	timeout time.Duration
	log     *logger.Logger
}

func NewReportCollector(archive service.ReportArchive, log *logger.Logger) *ReportCollector {
	if log == nil {
		log = logger.GetLogger()
	}
	return &ReportCollector{
		archive: archive,
		timeout: 5 * time.Second,
		log:     log.Component("report_collector"),
	}
}

func (c *ReportCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- latestEntriesDesc
	ch <- latestFailedDesc
	ch <- latestGeneratedDesc
}

func (c *ReportCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	latest, err := c.archive.Latest(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			c.log.WithError(err).Error("Failed to collect report metrics")
		}
		return
	}

	ch <- prometheus.MustNewConstMetric(latestGeneratedDesc, prometheus.GaugeValue, float64(latest.GeneratedAt.Unix()))

	for _, category := range latest.Categories {
		counts := map[ranking.Label]int{ranking.Attainable: 0, ranking.Competitive: 0}
		for _, entry := range category.Entries {
			counts[entry.Label]++
		}
		for label, count := range counts {
			ch <- prometheus.MustNewConstMetric(latestEntriesDesc, prometheus.GaugeValue, float64(count), category.Name, string(label))
		}

		failed := 0.0
		if category.Failed {
			failed = 1
		}
		ch <- prometheus.MustNewConstMetric(latestFailedDesc, prometheus.GaugeValue, failed, category.Name)
	}
}
