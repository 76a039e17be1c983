package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"keyword-report/pkg/report"
)

const (
	reportIndexKey    = "reports/index"
	reportKeyPrefix   = "reports/"
	defaultMaxReports = 90
)

// ReportStore keeps a bounded history of final reports on top of a Storage
type ReportStore struct {
	storage    Storage
	maxReports int
	mu         sync.Mutex
}

// NewReportStore creates a store keeping at most maxReports reports
func NewReportStore(storage Storage, maxReports int) *ReportStore {
	if maxReports <= 0 {
		maxReports = defaultMaxReports
	}
	return &ReportStore{storage: storage, maxReports: maxReports}
}

// Save persists the report and appends it to the index, trimming the oldest
func (rs *ReportStore) Save(ctx context.Context, r *report.FinalReport) error {
	if r == nil || r.ID == "" {
		return fmt.Errorf("report must have an id")
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	if err := rs.storage.Save(ctx, reportKeyPrefix+r.ID, r); err != nil {
		return fmt.Errorf("failed to save report %s: %w", r.ID, err)
	}

	index, err := rs.loadIndex(ctx)
	if err != nil {
		return err
	}
	index = append(index, r.ID)

	var expired []string
	if len(index) > rs.maxReports {
		expired = index[:len(index)-rs.maxReports]
		index = append([]string(nil), index[len(index)-rs.maxReports:]...)
	}

	if err := rs.storage.Save(ctx, reportIndexKey, index); err != nil {
		return fmt.Errorf("failed to save report index: %w", err)
	}

	for _, id := range expired {
		if err := rs.storage.Delete(ctx, reportKeyPrefix+id); err != nil {
			return fmt.Errorf("failed to delete expired report %s: %w", id, err)
		}
	}

	return nil
}

// Get loads one report by id
func (rs *ReportStore) Get(ctx context.Context, id string) (*report.FinalReport, error) {
	var r report.FinalReport
	if err := rs.storage.Load(ctx, reportKeyPrefix+id, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Latest returns the most recently saved report
func (rs *ReportStore) Latest(ctx context.Context) (*report.FinalReport, error) {
	rs.mu.Lock()
	index, err := rs.loadIndex(ctx)
	rs.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if len(index) == 0 {
		return nil, fmt.Errorf("%w: no reports stored", ErrNotFound)
	}
	return rs.Get(ctx, index[len(index)-1])
}

// List returns up to limit report summaries, newest first
func (rs *ReportStore) List(ctx context.Context, limit int) ([]report.Summary, error) {
	rs.mu.Lock()
	index, err := rs.loadIndex(ctx)
	rs.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > len(index) {
		limit = len(index)
	}

	summaries := make([]report.Summary, 0, limit)
	for i := len(index) - 1; i >= 0 && len(summaries) < limit; i-- {
		r, err := rs.Get(ctx, index[i])
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		summaries = append(summaries, r.Summarize())
	}
	return summaries, nil
}

func (rs *ReportStore) loadIndex(ctx context.Context) ([]string, error) {
	var index []string
	if err := rs.storage.Load(ctx, reportIndexKey, &index); err != nil {
		if errors.Is(err, ErrNotFound) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to load report index: %w", err)
	}
	return index, nil
}
