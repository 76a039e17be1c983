package pipeline

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"

	"keyword-report/internal/service"
	"keyword-report/pkg/logger"
	"keyword-report/pkg/ranking"
	"keyword-report/pkg/report"
)

// RunnerBuilder assembles a Runner, collecting validation errors until Build
type RunnerBuilder struct {
	fetcher    service.StatsFetcher
	notifier   service.NotificationService
	archive    service.ReportArchive
	metrics    *Metrics
	thresholds ranking.Thresholds
	language   language.Tag
	legend     string
	location   *time.Location
	now        func() time.Time
	log        *logger.Logger
	errors     []error

	deliveryTimeout time.Duration
}

// defaultDeliveryTimeout bounds save and dispatch once fetching is over
const defaultDeliveryTimeout = time.Minute

// NewRunnerBuilder starts from the default thresholds and Korean formatting
// in Korea Standard Time
func NewRunnerBuilder() *RunnerBuilder {
	return &RunnerBuilder{
		thresholds: ranking.DefaultThresholds(),
		language:   language.Korean,
		location:   time.FixedZone("KST", 9*60*60),
		now:        time.Now,
		errors:     make([]error, 0),

		deliveryTimeout: defaultDeliveryTimeout,
	}
}

func (b *RunnerBuilder) WithFetcher(f service.StatsFetcher) *RunnerBuilder {
	if f == nil {
		b.errors = append(b.errors, fmt.Errorf("stats fetcher cannot be nil"))
		return b
	}
	b.fetcher = f
	return b
}

func (b *RunnerBuilder) WithNotifier(n service.NotificationService) *RunnerBuilder {
	if n == nil {
		b.errors = append(b.errors, fmt.Errorf("notifier cannot be nil"))
		return b
	}
	b.notifier = n
	return b
}

// WithArchive enables report history; a nil archive disables it
func (b *RunnerBuilder) WithArchive(a service.ReportArchive) *RunnerBuilder {
	b.archive = a
	return b
}

func (b *RunnerBuilder) WithMetrics(m *Metrics) *RunnerBuilder {
	b.metrics = m
	return b
}

// WithThresholds sets filtering and labelling thresholds with validation
func (b *RunnerBuilder) WithThresholds(t ranking.Thresholds) *RunnerBuilder {
	if t.RankLimit <= 0 {
		b.errors = append(b.errors, fmt.Errorf("rank limit must be positive, got: %d", t.RankLimit))
		return b
	}
	if t.MinVolume < 0 {
		b.errors = append(b.errors, fmt.Errorf("min volume cannot be negative, got: %d", t.MinVolume))
		return b
	}
	if t.Ceiling < t.MinVolume {
		b.errors = append(b.errors, fmt.Errorf("ceiling (%d) must not be below min volume (%d)", t.Ceiling, t.MinVolume))
		return b
	}
	b.thresholds = t
	return b
}

// WithLanguage sets the BCP 47 tag used for thousands separators
func (b *RunnerBuilder) WithLanguage(tag string) *RunnerBuilder {
	if tag == "" {
		return b
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		b.errors = append(b.errors, fmt.Errorf("invalid language tag %q: %w", tag, err))
		return b
	}
	b.language = parsed
	return b
}

func (b *RunnerBuilder) WithLegend(legend string) *RunnerBuilder {
	b.legend = legend
	return b
}

// WithTimezone sets the zone the report date is rendered in
func (b *RunnerBuilder) WithTimezone(name string) *RunnerBuilder {
	if name == "" {
		return b
	}
	location, err := time.LoadLocation(name)
	if err != nil {
		b.errors = append(b.errors, fmt.Errorf("invalid timezone %q: %w", name, err))
		return b
	}
	b.location = location
	return b
}

func (b *RunnerBuilder) WithClock(now func() time.Time) *RunnerBuilder {
	if now != nil {
		b.now = now
	}
	return b
}

// WithDeliveryTimeout bounds saving and dispatching the report. It runs
// on its own clock so an expired run deadline does not block delivery.
func (b *RunnerBuilder) WithDeliveryTimeout(timeout time.Duration) *RunnerBuilder {
	if timeout <= 0 {
		b.errors = append(b.errors, fmt.Errorf("delivery timeout must be positive, got: %s", timeout))
		return b
	}
	b.deliveryTimeout = timeout
	return b
}

func (b *RunnerBuilder) WithLogger(log *logger.Logger) *RunnerBuilder {
	b.log = log
	return b
}

// Validate checks all configuration and returns any validation errors
func (b *RunnerBuilder) Validate() error {
	errs := b.errors
	if b.fetcher == nil {
		errs = append(errs, fmt.Errorf("stats fetcher is required"))
	}
	if b.notifier == nil {
		errs = append(errs, fmt.Errorf("notifier is required"))
	}
	if len(errs) == 0 {
		return nil
	}

	messages := make([]string, 0, len(errs))
	for _, err := range errs {
		messages = append(messages, err.Error())
	}
	return fmt.Errorf("runner configuration failed: %s", strings.Join(messages, "; "))
}

func (b *RunnerBuilder) Build() (*Runner, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	log := b.log
	if log == nil {
		log = logger.GetLogger()
	}

	return &Runner{
		fetcher:    b.fetcher,
		classifier: ranking.NewClassifier(b.thresholds),
		builder: report.NewBuilder(report.Options{
			RankLimit: b.thresholds.RankLimit,
			MinVolume: b.thresholds.MinVolume,
			Language:  b.language,
			Legend:    b.legend,
		}),
		notifier: b.notifier,
		archive:  b.archive,
		metrics:  b.metrics,
		location: b.location,
		now:      b.now,
		log:      log.Component("pipeline"),

		deliveryTimeout: b.deliveryTimeout,
	}, nil
}
