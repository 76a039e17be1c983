package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

// keywordToolItem is the subset of a keywordList entry the pipeline reads
type keywordToolItem struct {
	RelKeyword         string  `json:"relKeyword"`
	MonthlyPcQcCnt     *Volume `json:"monthlyPcQcCnt"`
	MonthlyMobileQcCnt *Volume `json:"monthlyMobileQcCnt"`
	CompIdx            string  `json:"compIdx"`
}

// KeywordToolParser turns keyword tool response bodies into records
type KeywordToolParser struct{}

// NewKeywordToolParser creates a new keyword tool response parser
func NewKeywordToolParser() *KeywordToolParser {
	return &KeywordToolParser{}
}

// ParseResponse decodes the keywordList array item by item so that a
// single malformed item is dropped instead of failing the whole batch
func (p *KeywordToolParser) ParseResponse(body []byte) (*QueryResult, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("empty response body from keyword tool")
	}

	var envelope struct {
		KeywordList json.RawMessage `json:"keywordList"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode keyword tool response: %w (response: %s)", err, truncate(body, 200))
	}
	if len(envelope.KeywordList) == 0 || string(envelope.KeywordList) == "null" {
		return nil, fmt.Errorf("keyword tool response has no keywordList (response: %s)", truncate(body, 200))
	}

	var items []json.RawMessage
	if err := json.Unmarshal(envelope.KeywordList, &items); err != nil {
		return nil, fmt.Errorf("keywordList is not an array: %w", err)
	}

	result := &QueryResult{Records: make([]KeywordRecord, 0, len(items))}
	for _, raw := range items {
		record, ok := p.parseItem(raw)
		if !ok {
			result.Skipped++
			continue
		}
		result.Records = append(result.Records, record)
	}

	return result, nil
}

func (p *KeywordToolParser) parseItem(raw json.RawMessage) (KeywordRecord, bool) {
	var item keywordToolItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return KeywordRecord{}, false
	}

	keyword := strings.TrimSpace(item.RelKeyword)
	if keyword == "" || item.MonthlyPcQcCnt == nil || item.MonthlyMobileQcCnt == nil {
		return KeywordRecord{}, false
	}

	return KeywordRecord{
		Keyword:     keyword,
		PC:          *item.MonthlyPcQcCnt,
		Mobile:      *item.MonthlyMobileQcCnt,
		Competition: item.CompIdx,
	}, true
}

func truncate(body []byte, limit int) string {
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit])
}
