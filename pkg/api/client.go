package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/valyala/fasthttp"
	"keyword-report/pkg/logger"
)

const (
	keywordToolURI    = "/keywordstool"
	defaultAPIBaseURL = "https://api.naver.com"
	defaultAPITimeout = 30 * time.Second

	// MaxHintKeywords is the most hint keywords the keyword tool accepts per request
	MaxHintKeywords = 5
)

// ClientConfig holds keyword tool credentials and transport settings
type ClientConfig struct {
	BaseURL       string
	AccessLicense string
	SecretKey     string
	CustomerID    string
	Timeout       time.Duration
}

// KeywordToolClient queries the search ad keyword tool over fasthttp
type KeywordToolClient struct {
	config ClientConfig
	signer *Signer
	parser *KeywordToolParser
	client *fasthttp.Client
	now    func() time.Time
	log    *logger.Logger

	// Metrics
	totalRequests  uint64
	failedRequests uint64
}

// NewKeywordToolClient creates a client; all three credentials are required
func NewKeywordToolClient(config ClientConfig, log *logger.Logger) (*KeywordToolClient, error) {
	if config.AccessLicense == "" || config.SecretKey == "" || config.CustomerID == "" {
		return nil, fmt.Errorf("keyword tool access license, secret key and customer id are required")
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultAPIBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout <= 0 {
		config.Timeout = defaultAPITimeout
	}
	if log == nil {
		log = logger.GetLogger()
	}

	client := &fasthttp.Client{
		ReadTimeout:         config.Timeout,
		WriteTimeout:        config.Timeout,
		MaxConnsPerHost:     4,
		MaxIdleConnDuration: 90 * time.Second,
	}

	return &KeywordToolClient{
		config: config,
		signer: NewSigner(config.SecretKey),
		parser: NewKeywordToolParser(),
		client: client,
		now:    time.Now,
		log:    log.Component("keyword_tool_client"),
	}, nil
}

// Query requests related-keyword statistics for up to MaxHintKeywords hints
func (c *KeywordToolClient) Query(ctx context.Context, keywords []string) (*QueryResult, error) {
	atomic.AddUint64(&c.totalRequests, 1)
	start := time.Now()

	result, err := c.doQuery(ctx, keywords)
	if err != nil {
		atomic.AddUint64(&c.failedRequests, 1)
		c.log.WithError(err).WithFields(map[string]interface{}{
			"keywords_count": len(keywords),
			"failure_kind":   ClassifyError(err).String(),
		}).Warn("Keyword tool query failed")
		return nil, err
	}

	c.log.WithFields(map[string]interface{}{
		"keywords_count": len(keywords),
		"records":        len(result.Records),
		"skipped":        result.Skipped,
		"duration_ms":    time.Since(start).Milliseconds(),
	}).Debug("Keyword tool query completed")

	return result, nil
}

// Stats returns the number of requests sent and how many failed
func (c *KeywordToolClient) Stats() (total, failed uint64) {
	return atomic.LoadUint64(&c.totalRequests), atomic.LoadUint64(&c.failedRequests)
}

func (c *KeywordToolClient) doQuery(ctx context.Context, keywords []string) (*QueryResult, error) {
	hints := hintKeywords(keywords)
	if len(hints) == 0 {
		return nil, &RequestError{Kind: FailureInvalid, Err: errors.New("no keywords provided")}
	}
	if len(hints) > MaxHintKeywords {
		return nil, &RequestError{Kind: FailureInvalid, Err: fmt.Errorf("%d hint keywords exceeds limit of %d", len(hints), MaxHintKeywords)}
	}
	if err := ctx.Err(); err != nil {
		return nil, &RequestError{Kind: FailureCanceled, Err: err}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	query := url.Values{}
	query.Set("hintKeywords", strings.Join(hints, ","))
	query.Set("showDetail", "1")

	timestamp := strconv.FormatInt(c.now().UnixMilli(), 10)

	req.SetRequestURI(c.config.BaseURL + keywordToolURI + "?" + query.Encode())
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "keyword-report/1.0")
	req.Header.Set("X-Timestamp", timestamp)
	req.Header.Set("X-API-KEY", c.config.AccessLicense)
	req.Header.Set("X-Customer", c.config.CustomerID)
	req.Header.Set("X-Signature", c.signer.Sign(timestamp, fasthttp.MethodGet, keywordToolURI))

	if err := c.client.DoDeadline(req, resp, c.deadline(ctx)); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &RequestError{Kind: FailureCanceled, Err: ctxErr}
		}
		return nil, &RequestError{Kind: FailureTransport, Err: err}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, &RequestError{
			Kind:       FailureStatus,
			StatusCode: resp.StatusCode(),
			Err:        errors.New(truncate(resp.Body(), 200)),
		}
	}

	result, err := c.parser.ParseResponse(resp.Body())
	if err != nil {
		return nil, &RequestError{Kind: FailureDecode, Err: err}
	}

	return result, nil
}

// deadline is the earlier of the context deadline and the configured timeout
func (c *KeywordToolClient) deadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(c.config.Timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		return ctxDeadline
	}
	return deadline
}

// hintKeywords drops blanks and strips spaces, which the keyword tool rejects
func hintKeywords(keywords []string) []string {
	hints := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		hint := strings.Join(strings.Fields(keyword), "")
		if hint != "" {
			hints = append(hints, hint)
		}
	}
	return hints
}
