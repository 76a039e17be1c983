package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"keyword-report/pkg/logger"
	"keyword-report/pkg/report"
	"keyword-report/pkg/storage"
)

const (
	firstID  = "0b9a6f0e-4a43-4d83-9c43-7a0f9d1b7b01"
	secondID = "0b9a6f0e-4a43-4d83-9c43-7a0f9d1b7b02"
)

func newTestApp(t *testing.T, archive *storage.ReportStore) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger.Nop())})
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "keyword_report_up 1\n")
	})
	NewController(archive, DefaultControllerConfig(), logger.Nop()).Register(app, metrics)
	return app
}

func seededStore(t *testing.T) *storage.ReportStore {
	t.Helper()

	store := storage.NewReportStore(storage.NewMemoryStorage(), 10)
	for i, id := range []string{firstID, secondID} {
		err := store.Save(context.Background(), &report.FinalReport{
			ID:          id,
			Date:        fmt.Sprintf("2024-03-%02d", i+1),
			GeneratedAt: time.Date(2024, 3, 1+i, 8, 0, 0, 0, time.UTC),
			Categories:  []report.CategoryReport{{Name: "fortune"}},
			Text:        "report " + id,
		})
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}
	return store
}

func do(t *testing.T, app *fiber.App, path string) (int, string) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestController_Health(t *testing.T) {
	app := newTestApp(t, seededStore(t))

	code, body := do(t, app, "/health")
	if code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", code, body)
	}

	var status StatusResponse
	if err := json.Unmarshal([]byte(body), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.Status != "ok" || status.LatestReport != secondID {
		t.Errorf("status = %+v", status)
	}
}

func TestController_HealthEmptyHistory(t *testing.T) {
	app := newTestApp(t, storage.NewReportStore(storage.NewMemoryStorage(), 10))

	code, body := do(t, app, "/health")
	if code != http.StatusOK || !strings.Contains(body, `"status":"ok"`) {
		t.Errorf("code = %d, body = %s", code, body)
	}
}

func TestController_ListReports(t *testing.T) {
	app := newTestApp(t, seededStore(t))

	code, body := do(t, app, "/api/reports?limit=1")
	if code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", code, body)
	}

	var summaries []report.Summary
	if err := json.Unmarshal([]byte(body), &summaries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(summaries) != 1 || summaries[0].ID != secondID {
		t.Errorf("summaries = %+v", summaries)
	}

	if code, _ := do(t, app, "/api/reports?limit=0"); code != http.StatusBadRequest {
		t.Errorf("limit=0 status = %d, want 400", code)
	}
}

func TestController_LatestReport(t *testing.T) {
	app := newTestApp(t, seededStore(t))

	code, body := do(t, app, "/api/reports/latest")
	if code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", code, body)
	}

	var latest report.FinalReport
	if err := json.Unmarshal([]byte(body), &latest); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if latest.ID != secondID {
		t.Errorf("latest id = %s, want %s", latest.ID, secondID)
	}

	empty := newTestApp(t, storage.NewReportStore(storage.NewMemoryStorage(), 10))
	if code, _ := do(t, empty, "/api/reports/latest"); code != http.StatusNotFound {
		t.Errorf("empty history status = %d, want 404", code)
	}
}

func TestController_GetReport(t *testing.T) {
	app := newTestApp(t, seededStore(t))

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantBody string
	}{
		{"json", "/api/reports/" + firstID, http.StatusOK, `"id":"` + firstID + `"`},
		{"text", "/api/reports/" + firstID + "/text", http.StatusOK, "report " + firstID},
		{"invalid id", "/api/reports/not-a-uuid", http.StatusBadRequest, "invalid report id"},
		{"unknown id", "/api/reports/9f2c1c2e-0000-4000-8000-000000000000", http.StatusNotFound, "report not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := do(t, app, tt.path)
			if code != tt.wantCode {
				t.Errorf("status = %d, want %d (body %s)", code, tt.wantCode, body)
			}
			if !strings.Contains(body, tt.wantBody) {
				t.Errorf("body = %s, want substring %q", body, tt.wantBody)
			}
		})
	}
}

func TestController_Metrics(t *testing.T) {
	app := newTestApp(t, seededStore(t))

	code, body := do(t, app, "/metrics")
	if code != http.StatusOK || !strings.Contains(body, "keyword_report_up 1") {
		t.Errorf("code = %d, body = %s", code, body)
	}
}

// brokenArchive fails every read with a non-NotFound error
type brokenArchive struct {
	*storage.ReportStore
}

func (brokenArchive) Latest(ctx context.Context) (*report.FinalReport, error) {
	return nil, errors.New("disk unreadable")
}

func TestController_InternalErrorsAreHidden(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger.Nop())})
	archive := brokenArchive{storage.NewReportStore(storage.NewMemoryStorage(), 1)}
	NewController(archive, ControllerConfig{}, logger.Nop()).Register(app, nil)

	code, body := do(t, app, "/api/reports/latest")
	if code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", code)
	}
	if strings.Contains(body, "disk unreadable") {
		t.Errorf("internal error leaked: %s", body)
	}

	code, body = do(t, app, "/health")
	if code != http.StatusOK || !strings.Contains(body, "degraded") {
		t.Errorf("health = %d %s, want degraded", code, body)
	}

	if code, _ := do(t, app, "/metrics"); code != http.StatusNotFound {
		t.Errorf("metrics without handler status = %d, want 404", code)
	}
}
