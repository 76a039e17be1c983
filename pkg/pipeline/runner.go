package pipeline

import (
	"context"
	"time"

	"keyword-report/internal/service"
	"keyword-report/pkg/logger"
	"keyword-report/pkg/ranking"
	"keyword-report/pkg/report"
)

// Category is a named list of seed keywords
type Category struct {
	Name  string
	Seeds []string
}

// RunResult describes what one run produced. Errors here are informational;
// the report is always built.
type RunResult struct {
	Report      *report.FinalReport
	Dispatched  bool
	DispatchErr error
	SaveErr     error
	Duration    time.Duration
}

// Runner drives fetch, classify, report, save and dispatch for a list of
// categories, one category at a time
type Runner struct {
	fetcher    service.StatsFetcher
	classifier *ranking.Classifier
	builder    *report.Builder
	notifier   service.NotificationService
	archive    service.ReportArchive
	metrics    *Metrics
	location   *time.Location

	deliveryTimeout time.Duration
	now        func() time.Time
	log        *logger.Logger
}

// Run never returns an error: failed categories render as failure lines,
// and save or dispatch failures are logged and kept in the result
func (r *Runner) Run(ctx context.Context, categories []Category) *RunResult {
	start := r.now()
	r.log.WithField("categories", len(categories)).Info("Starting keyword report run")

	progress := logger.NewProgressReporter(r.log, len(categories), "Categories", 0)
	reports := make([]report.CategoryReport, 0, len(categories))
	for _, category := range categories {
		reports = append(reports, r.runCategory(ctx, category))
		progress.Step()
	}

	finalReport := r.builder.BuildFinal(start.In(r.location), reports)
	result := &RunResult{Report: finalReport}

	// A partial report still goes out after the run deadline has passed
	deliverCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.deliveryTimeout)
	defer cancel()

	if r.archive != nil {
		if err := r.archive.Save(deliverCtx, finalReport); err != nil {
			result.SaveErr = err
			r.log.WithError(err).WithField("report_id", finalReport.ID).Warn("Failed to save report history")
		}
	}

	if err := r.notifier.Send(deliverCtx, finalReport.Text); err != nil {
		result.DispatchErr = err
		r.log.WithError(err).WithField("report_id", finalReport.ID).Error("Failed to dispatch report")
	} else {
		result.Dispatched = true
	}

	finished := r.now()
	result.Duration = finished.Sub(start)

	if r.metrics != nil {
		r.metrics.observeDispatch(result.DispatchErr)
		r.metrics.observeRun(result.Duration, finished)
	}

	r.log.WithFields(map[string]interface{}{
		"report_id":  finalReport.ID,
		"date":       finalReport.Date,
		"dispatched": result.Dispatched,
		"duration":   result.Duration.String(),
	}).Info("Keyword report run completed")

	return result
}

func (r *Runner) runCategory(ctx context.Context, category Category) report.CategoryReport {
	log := r.log.WithField("category", category.Name)
	log.WithField("seeds", len(category.Seeds)).Info("Processing category")

	fetched := r.fetcher.Fetch(ctx, category.Seeds)
	entries := r.classifier.Classify(fetched.Records)

	cr := report.CategoryReport{
		Name:             category.Name,
		Entries:          entries,
		Failed:           len(fetched.Records) == 0,
		SucceededBatches: fetched.SucceededBatches(),
		FailedBatches:    fetched.FailedBatches(),
	}

	if r.metrics != nil {
		r.metrics.observeCategory(category.Name, entries)
	}

	fields := map[string]interface{}{
		"records":           len(fetched.Records),
		"entries":           len(entries),
		"succeeded_batches": cr.SucceededBatches,
		"failed_batches":    cr.FailedBatches,
	}
	if cr.Failed {
		log.WithFields(fields).Warn("No usable records for category")
	} else {
		log.WithFields(fields).Info("Category classified")
	}

	return cr
}
