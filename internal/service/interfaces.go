package service

import (
	"context"

	"keyword-report/pkg/fetcher"
	"keyword-report/pkg/report"
)

type StatsFetcher interface {
	Fetch(ctx context.Context, seeds []string) *fetcher.Result
}

type ReportArchive interface {
	Save(ctx context.Context, r *report.FinalReport) error
	Get(ctx context.Context, id string) (*report.FinalReport, error)
	Latest(ctx context.Context) (*report.FinalReport, error)
	List(ctx context.Context, limit int) ([]report.Summary, error)
}

type NotificationService interface {
	Send(ctx context.Context, text string) error
}
