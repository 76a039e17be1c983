package fetcher

import (
	"context"
	"fmt"
	"time"

	"keyword-report/pkg/api"
	"keyword-report/pkg/logger"
)

// DefaultBatchSize is the keyword tool's hint keyword limit
const DefaultBatchSize = api.MaxHintKeywords

// Executor serializes requests and enforces the inter-batch delay
type Executor interface {
	Execute(ctx context.Context, fn func() error) error
}

// BatchObserver is notified after every batch request
type BatchObserver interface {
	ObserveBatch(outcome BatchOutcome)
}

// BatchOutcome is the typed result of one batch request. A failed batch
// has Err set and no records, which is distinct from a successful batch
// that returned zero items.
type BatchOutcome struct {
	Index    int                 `json:"index"`
	Keywords []string            `json:"keywords"`
	Records  []api.KeywordRecord `json:"-"`
	Skipped  int                 `json:"skipped"`
	Err      error               `json:"-"`
	Duration time.Duration       `json:"duration"`
}

// Succeeded reports whether the request returned a parseable response
func (o BatchOutcome) Succeeded() bool {
	return o.Err == nil
}

// Result is everything one Fetch call collected
type Result struct {
	Records []api.KeywordRecord
	Batches []BatchOutcome
}

// SucceededBatches returns the number of batches that returned data or an empty list
func (r *Result) SucceededBatches() int {
	count := 0
	for _, batch := range r.Batches {
		if batch.Succeeded() {
			count++
		}
	}
	return count
}

// FailedBatches returns the number of batches that contributed nothing due to an error
func (r *Result) FailedBatches() int {
	return len(r.Batches) - r.SucceededBatches()
}

// Fetcher queries seed keywords in fixed-size batches, one at a time
type Fetcher struct {
	client    api.StatsClient
	executor  Executor
	batchSize int
	observer  BatchObserver
	log       *logger.Logger
}

// Option customizes a Fetcher
type Option func(*Fetcher)

// WithBatchSize sets the batch size, clamped to 1..api.MaxHintKeywords
func WithBatchSize(size int) Option {
	return func(f *Fetcher) {
		if size < 1 {
			size = 1
		}
		if size > api.MaxHintKeywords {
			size = api.MaxHintKeywords
		}
		f.batchSize = size
	}
}

// WithObserver registers a per-batch observer
func WithObserver(observer BatchObserver) Option {
	return func(f *Fetcher) {
		f.observer = observer
	}
}

// WithLogger sets the logger
func WithLogger(log *logger.Logger) Option {
	return func(f *Fetcher) {
		f.log = log
	}
}

// New creates a fetcher. The executor should be shared by every fetcher
// talking to the same upstream so the delay applies process-wide.
func New(client api.StatsClient, executor Executor, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:    client,
		executor:  executor,
		batchSize: DefaultBatchSize,
		log:       logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.log = f.log.Component("stats_fetcher")
	return f
}

// Fetch issues one request per batch in input order. Failed batches are
// logged and skipped; there is no retry and no abort.
func (f *Fetcher) Fetch(ctx context.Context, seeds []string) *Result {
	batches := Partition(seeds, f.batchSize)
	result := &Result{
		Records: make([]api.KeywordRecord, 0),
		Batches: make([]BatchOutcome, 0, len(batches)),
	}

	for i, batch := range batches {
		outcome := f.fetchBatch(ctx, i, batch)
		result.Batches = append(result.Batches, outcome)
		result.Records = append(result.Records, outcome.Records...)

		if f.observer != nil {
			f.observer.ObserveBatch(outcome)
		}

		fields := map[string]interface{}{
			"batch_number": i + 1,
			"progress":     fmt.Sprintf("%d/%d", i+1, len(batches)),
			"records":      len(outcome.Records),
			"skipped":      outcome.Skipped,
		}
		if outcome.Succeeded() {
			f.log.WithFields(fields).Debug("Batch fetched")
		} else {
			fields["failure_kind"] = api.ClassifyError(outcome.Err).String()
			f.log.WithError(outcome.Err).WithFields(fields).Warn("Batch failed, skipping")
		}
	}

	f.log.WithFields(map[string]interface{}{
		"seeds":          len(seeds),
		"total_batches":  len(batches),
		"failed_batches": result.FailedBatches(),
		"records":        len(result.Records),
	}).Info("Fetch completed")

	return result
}

func (f *Fetcher) fetchBatch(ctx context.Context, index int, keywords []string) BatchOutcome {
	outcome := BatchOutcome{Index: index, Keywords: keywords}
	start := time.Now()

	var queryResult *api.QueryResult
	err := f.executor.Execute(ctx, func() error {
		var queryErr error
		queryResult, queryErr = f.client.Query(ctx, keywords)
		outcome.Duration = time.Since(start)
		return queryErr
	})
	if outcome.Duration == 0 {
		outcome.Duration = time.Since(start)
	}

	if err != nil {
		outcome.Err = err
		return outcome
	}
	if queryResult != nil {
		outcome.Records = queryResult.Records
		outcome.Skipped = queryResult.Skipped
	}
	return outcome
}

// Partition splits seeds into consecutive chunks of at most size, in order
func Partition(seeds []string, size int) [][]string {
	if size < 1 {
		size = 1
	}

	batches := make([][]string, 0, (len(seeds)+size-1)/size)
	for i := 0; i < len(seeds); i += size {
		end := i + size
		if end > len(seeds) {
			end = len(seeds)
		}
		batches = append(batches, seeds[i:end:end])
	}
	return batches
}

