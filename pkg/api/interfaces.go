package api

import "context"

// KeywordRecord is one keywordList item returned by the keyword tool
type KeywordRecord struct {
	Keyword     string `json:"keyword"`
	PC          Volume `json:"pc"`
	Mobile      Volume `json:"mobile"`
	Competition string `json:"competition,omitempty"`
}

// QueryResult holds the records of one successful request
// Skipped counts malformed items that were dropped while parsing
type QueryResult struct {
	Records []KeywordRecord `json:"records"`
	Skipped int             `json:"skipped"`
}

// StatsClient queries keyword statistics for a batch of hint keywords
type StatsClient interface {
	Query(ctx context.Context, keywords []string) (*QueryResult, error)
}
