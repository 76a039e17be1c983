package ranking

import (
	"sort"

	"keyword-report/pkg/api"
)

// Label is the two-tier competition class of a ranked keyword
type Label string

const (
	Attainable  Label = "Attainable"
	Competitive Label = "Competitive"
)

// Thresholds controls filtering, ranking and labelling
type Thresholds struct {
	MinVolume int64 `json:"min_volume"`
	RankLimit int   `json:"rank_limit"`
	Ceiling   int64 `json:"ceiling"`
}

// DefaultThresholds returns the standard report thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinVolume: 1000,
		RankLimit: 10,
		Ceiling:   15000,
	}
}

// ClassifiedEntry is one ranked keyword with its combined volume
type ClassifiedEntry struct {
	Keyword string `json:"keyword"`
	PC      int64  `json:"pc"`
	Mobile  int64  `json:"mobile"`
	Total   int64  `json:"total"`
	Label   Label  `json:"label"`
}

// Classifier filters, deduplicates, ranks and labels keyword records
type Classifier struct {
	thresholds Thresholds
}

// NewClassifier creates a classifier with the given thresholds
func NewClassifier(thresholds Thresholds) *Classifier {
	return &Classifier{thresholds: thresholds}
}

// Thresholds returns the classifier configuration
func (c *Classifier) Thresholds() Thresholds {
	return c.thresholds
}

// Classify returns at most RankLimit entries, highest total first.
// Duplicated keywords keep their first qualifying occurrence and equal
// totals keep discovery order.
func (c *Classifier) Classify(records []api.KeywordRecord) []ClassifiedEntry {
	entries := make([]ClassifiedEntry, 0, len(records))
	seen := make(map[string]struct{}, len(records))

	for _, record := range records {
		pc := Normalize(record.PC)
		mobile := Normalize(record.Mobile)
		total := pc + mobile

		if total < c.thresholds.MinVolume {
			continue
		}
		if _, dup := seen[record.Keyword]; dup {
			continue
		}
		seen[record.Keyword] = struct{}{}

		entries = append(entries, ClassifiedEntry{
			Keyword: record.Keyword,
			PC:      pc,
			Mobile:  mobile,
			Total:   total,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Total > entries[j].Total
	})

	if c.thresholds.RankLimit >= 0 && len(entries) > c.thresholds.RankLimit {
		entries = entries[:c.thresholds.RankLimit]
	}

	for i := range entries {
		entries[i].Label = c.label(entries[i].Total)
	}

	return entries
}

func (c *Classifier) label(total int64) Label {
	if total <= c.thresholds.Ceiling {
		return Attainable
	}
	return Competitive
}
