package report

import (
	"time"

	"keyword-report/pkg/ranking"
)

// CategoryReport is the ranked outcome for one seed category
type CategoryReport struct {
	Name             string                    `json:"name"`
	Entries          []ranking.ClassifiedEntry `json:"entries"`
	Failed           bool                      `json:"failed"`
	SucceededBatches int                       `json:"succeeded_batches"`
	FailedBatches    int                       `json:"failed_batches"`
}

// FinalReport is the complete dispatched report
type FinalReport struct {
	ID          string           `json:"id"`
	Date        string           `json:"date"`
	GeneratedAt time.Time        `json:"generated_at"`
	Categories  []CategoryReport `json:"categories"`
	Legend      string           `json:"legend"`
	Text        string           `json:"text"`
}

// Summary is a lightweight listing view of a stored report
type Summary struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"`
	GeneratedAt time.Time `json:"generated_at"`
	Categories  int       `json:"categories"`
	Entries     int       `json:"entries"`
	Failed      int       `json:"failed_categories"`
}

// Summarize returns the listing view of the report
func (r *FinalReport) Summarize() Summary {
	summary := Summary{
		ID:          r.ID,
		Date:        r.Date,
		GeneratedAt: r.GeneratedAt,
		Categories:  len(r.Categories),
	}
	for _, category := range r.Categories {
		summary.Entries += len(category.Entries)
		if category.Failed {
			summary.Failed++
		}
	}
	return summary
}
