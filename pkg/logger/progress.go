package logger

import (
	"fmt"
	"sync"
	"time"
)

// ProgressReporter logs "done/total" lines with an ETA for a known number
// of steps. A line is emitted at most once per interval and always on the
// final step.
type ProgressReporter struct {
	mu          sync.Mutex
	total       int
	current     int
	description string
	interval    time.Duration
	startTime   time.Time
	lastReport  time.Time
	now         func() time.Time
	logger      *Logger
}

func NewProgressReporter(log *Logger, total int, description string, interval time.Duration) *ProgressReporter {
	if log == nil {
		log = GetLogger()
	}
	start := time.Now()
	return &ProgressReporter{
		total:       total,
		description: description,
		interval:    interval,
		startTime:   start,
		now:         time.Now,
		logger:      log.WithField("component", "progress"),
	}
}

// Step advances the counter by one and reports if due. It returns whether
// a line was logged.
func (pr *ProgressReporter) Step() bool {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	if pr.current < pr.total {
		pr.current++
	}
	now := pr.now()
	if pr.current < pr.total && now.Sub(pr.lastReport) < pr.interval {
		return false
	}
	pr.report(now)
	pr.lastReport = now
	return true
}

// Progress returns the current step, the total and the completed percentage
func (pr *ProgressReporter) Progress() (current, total int, percentage float64) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return pr.current, pr.total, pr.percentage()
}

func (pr *ProgressReporter) percentage() float64 {
	if pr.total == 0 {
		return 100
	}
	return float64(pr.current) / float64(pr.total) * 100
}

// must be called with lock held
func (pr *ProgressReporter) report(now time.Time) {
	elapsed := now.Sub(pr.startTime)

	var eta string
	if pr.current > 0 && pr.current < pr.total {
		remaining := time.Duration(pr.total-pr.current) * (elapsed / time.Duration(pr.current))
		eta = fmt.Sprintf(" (ETA: %s)", remaining.Round(time.Second))
	}

	pr.logger.WithFields(map[string]interface{}{
		"current": pr.current,
		"total":   pr.total,
		"elapsed": elapsed.Round(time.Millisecond).String(),
	}).Info(fmt.Sprintf("%s: %d/%d (%.1f%%)%s", pr.description, pr.current, pr.total, pr.percentage(), eta))
}
