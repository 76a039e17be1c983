package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"keyword-report/pkg/ranking"
	"keyword-report/pkg/report"
)

func testReport(id string) *report.FinalReport {
	return &report.FinalReport{
		ID:          id,
		Date:        "2026-10-14",
		GeneratedAt: time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC),
		Categories: []report.CategoryReport{
			{Name: "a", Entries: []ranking.ClassifiedEntry{{Keyword: "k", Total: 1500, Label: ranking.Attainable}}},
		},
		Text: "report " + id,
	}
}

func TestReportStore_SaveAndLatest(t *testing.T) {
	store := NewReportStore(NewMemoryStorage(), 10)
	ctx := context.Background()

	if _, err := store.Latest(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on empty store, got %v", err)
	}

	for _, id := range []string{"r1", "r2", "r3"} {
		if err := store.Save(ctx, testReport(id)); err != nil {
			t.Fatalf("Save %s failed: %v", id, err)
		}
	}

	latest, err := store.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest.ID != "r3" || latest.Text != "report r3" {
		t.Errorf("Unexpected latest report: %+v", latest)
	}
	if latest.Categories[0].Entries[0].Label != ranking.Attainable {
		t.Errorf("Expected entries to survive storage, got %+v", latest.Categories)
	}
}

func TestReportStore_ListNewestFirst(t *testing.T) {
	store := NewReportStore(NewMemoryStorage(), 10)
	ctx := context.Background()

	for i := 1; i <= 4; i++ {
		store.Save(ctx, testReport(fmt.Sprintf("r%d", i)))
	}

	summaries, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(summaries) != 2 || summaries[0].ID != "r4" || summaries[1].ID != "r3" {
		t.Errorf("Unexpected summaries: %+v", summaries)
	}
	if summaries[0].Entries != 1 {
		t.Errorf("Expected entry count in summary, got %d", summaries[0].Entries)
	}

	all, _ := store.List(ctx, 0)
	if len(all) != 4 {
		t.Errorf("Expected 4 summaries with no limit, got %d", len(all))
	}
}

func TestReportStore_TrimsHistory(t *testing.T) {
	backing := NewMemoryStorage()
	store := NewReportStore(backing, 2)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if err := store.Save(ctx, testReport(fmt.Sprintf("r%d", i))); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	if exists, _ := backing.Exists(ctx, "reports/r1"); exists {
		t.Error("Expected oldest report to be deleted")
	}
	if _, err := store.Get(ctx, "r2"); err != nil {
		t.Errorf("Expected r2 to be kept, got %v", err)
	}

	summaries, _ := store.List(ctx, 0)
	if len(summaries) != 2 {
		t.Errorf("Expected 2 reports kept, got %d", len(summaries))
	}
}

func TestReportStore_RejectsMissingID(t *testing.T) {
	store := NewReportStore(NewMemoryStorage(), 0)

	if err := store.Save(context.Background(), &report.FinalReport{}); err == nil {
		t.Error("Expected error for report without id")
	}
}

func TestReportStore_WithFileStorage(t *testing.T) {
	fs, err := NewFileStorage(StorageConfig{DataDir: t.TempDir(), CacheSize: 8}, nil)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	store := NewReportStore(fs, 5)
	ctx := context.Background()

	if err := store.Save(ctx, testReport("disk")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reopened, _ := NewFileStorage(StorageConfig{DataDir: fs.dataDir}, nil)
	latest, err := NewReportStore(reopened, 5).Latest(ctx)
	if err != nil {
		t.Fatalf("Latest from reopened storage failed: %v", err)
	}
	if latest.ID != "disk" {
		t.Errorf("Expected disk report, got %s", latest.ID)
	}
}
