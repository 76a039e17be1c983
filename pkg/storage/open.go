package storage

import (
	"fmt"

	"keyword-report/pkg/logger"
)

// OpenReportStore returns a report history backed by the data directory when
// persist is set, and by process memory otherwise. If the data directory
// cannot be used the history falls back to memory and the cause is returned
// alongside the usable store.
func OpenReportStore(config StorageConfig, persist bool, log *logger.Logger) (*ReportStore, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if !persist {
		log.Debug("Report history kept in memory")
		return NewReportStore(NewMemoryStorage(), config.MaxReports), nil
	}

	fileStorage, err := NewFileStorage(config, log)
	if err != nil {
		return NewReportStore(NewMemoryStorage(), config.MaxReports), fmt.Errorf("file history unavailable: %w", err)
	}
	return NewReportStore(fileStorage, config.MaxReports), nil
}
