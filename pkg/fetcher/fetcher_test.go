package fetcher

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"keyword-report/pkg/api"
	"keyword-report/pkg/logger"
)

// fakeClient answers each query with one record per hint keyword
type fakeClient struct {
	mu      sync.Mutex
	calls   [][]string
	failOn  map[int]error
	emptyOn map[int]bool
}

func (c *fakeClient) Query(ctx context.Context, keywords []string) (*api.QueryResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	call := len(c.calls)
	c.calls = append(c.calls, append([]string(nil), keywords...))

	if err, ok := c.failOn[call]; ok {
		return nil, err
	}
	if c.emptyOn[call] {
		return &api.QueryResult{Records: []api.KeywordRecord{}}, nil
	}

	result := &api.QueryResult{Skipped: 1}
	for _, keyword := range keywords {
		result.Records = append(result.Records, api.KeywordRecord{
			Keyword: keyword,
			PC:      api.Measured(1000),
			Mobile:  api.Measured(1000),
		})
	}
	return result, nil
}

type recordingObserver struct {
	outcomes []BatchOutcome
}

func (o *recordingObserver) ObserveBatch(outcome BatchOutcome) {
	o.outcomes = append(o.outcomes, outcome)
}

func seeds(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("seed%02d", i)
	}
	return out
}

func TestPartition(t *testing.T) {
	batches := Partition(seeds(12), 5)

	if len(batches) != 3 {
		t.Fatalf("Expected 3 batches, got %d", len(batches))
	}

	sizes := []int{len(batches[0]), len(batches[1]), len(batches[2])}
	if !reflect.DeepEqual(sizes, []int{5, 5, 2}) {
		t.Errorf("Expected sizes [5 5 2], got %v", sizes)
	}
	if batches[1][0] != "seed05" || batches[2][1] != "seed11" {
		t.Errorf("Expected input order to be preserved, got %v", batches)
	}

	if got := Partition(nil, 5); len(got) != 0 {
		t.Errorf("Expected no batches for empty input, got %d", len(got))
	}
	if got := Partition(seeds(3), 0); len(got) != 3 {
		t.Errorf("Expected size < 1 to fall back to 1, got %d batches", len(got))
	}
}

func TestPartition_BatchesDoNotAlias(t *testing.T) {
	input := seeds(6)
	batches := Partition(input, 5)

	batches[0] = append(batches[0], "extra")
	if input[5] != "seed05" {
		t.Errorf("Appending to a batch overwrote the input: %v", input)
	}
}

func TestFetcher_Fetch_PreservesOrder(t *testing.T) {
	client := &fakeClient{}
	f := New(client, api.NewSequentialExecutor(0), WithLogger(logger.Nop()))

	result := f.Fetch(context.Background(), seeds(12))

	if len(client.calls) != 3 {
		t.Fatalf("Expected 3 requests, got %d", len(client.calls))
	}
	if len(result.Records) != 12 {
		t.Fatalf("Expected 12 records, got %d", len(result.Records))
	}
	for i, rec := range result.Records {
		if rec.Keyword != fmt.Sprintf("seed%02d", i) {
			t.Errorf("Record %d out of order: %s", i, rec.Keyword)
		}
	}
	if result.Batches[0].Skipped != 1 {
		t.Errorf("Expected skipped count to be carried, got %d", result.Batches[0].Skipped)
	}
}

func TestFetcher_Fetch_SkipsFailedBatches(t *testing.T) {
	client := &fakeClient{failOn: map[int]error{
		1: &api.RequestError{Kind: api.FailureStatus, StatusCode: 500, Err: errors.New("boom")},
	}}
	observer := &recordingObserver{}
	f := New(client, api.NewSequentialExecutor(0), WithLogger(logger.Nop()), WithObserver(observer))

	result := f.Fetch(context.Background(), seeds(12))

	if len(client.calls) != 3 {
		t.Fatalf("Expected processing to continue after a failure, got %d calls", len(client.calls))
	}
	if len(result.Records) != 7 {
		t.Errorf("Expected 7 records (5 + 2), got %d", len(result.Records))
	}
	if result.FailedBatches() != 1 || result.SucceededBatches() != 2 {
		t.Errorf("Expected 1 failed and 2 succeeded, got %d and %d", result.FailedBatches(), result.SucceededBatches())
	}
	if result.Batches[1].Succeeded() || len(result.Batches[1].Records) != 0 {
		t.Errorf("Expected batch 2 to be a failure with no records: %+v", result.Batches[1])
	}
	if len(observer.outcomes) != 3 {
		t.Errorf("Expected observer to see 3 batches, got %d", len(observer.outcomes))
	}
}

func TestFetcher_Fetch_EmptyBatchIsNotFailure(t *testing.T) {
	client := &fakeClient{emptyOn: map[int]bool{0: true}}
	f := New(client, api.NewSequentialExecutor(0), WithLogger(logger.Nop()))

	result := f.Fetch(context.Background(), seeds(3))

	if len(result.Records) != 0 {
		t.Errorf("Expected no records, got %d", len(result.Records))
	}
	if !result.Batches[0].Succeeded() {
		t.Error("Expected empty batch to count as succeeded")
	}
}

func TestFetcher_Fetch_AllBatchesFail(t *testing.T) {
	transportErr := &api.RequestError{Kind: api.FailureTransport, Err: errors.New("connection refused")}
	client := &fakeClient{failOn: map[int]error{0: transportErr, 1: transportErr}}
	f := New(client, api.NewSequentialExecutor(0), WithLogger(logger.Nop()))

	result := f.Fetch(context.Background(), seeds(10))

	if result.Records == nil || len(result.Records) != 0 {
		t.Errorf("Expected empty non-nil records, got %v", result.Records)
	}
	if result.FailedBatches() != 2 {
		t.Errorf("Expected 2 failed batches, got %d", result.FailedBatches())
	}
}

func TestFetcher_Fetch_WaitsBetweenBatches(t *testing.T) {
	delay := 20 * time.Millisecond
	client := &fakeClient{failOn: map[int]error{0: errors.New("fail")}}
	f := New(client, api.NewSequentialExecutor(delay), WithLogger(logger.Nop()))

	start := time.Now()
	f.Fetch(context.Background(), seeds(11))

	if elapsed := time.Since(start); elapsed < 3*delay {
		t.Errorf("Expected at least %v for 3 batches, got %v", 3*delay, elapsed)
	}
}

func TestFetcher_Fetch_CanceledContext(t *testing.T) {
	client := &fakeClient{}
	f := New(client, api.NewSequentialExecutor(0), WithLogger(logger.Nop()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := f.Fetch(ctx, seeds(7))

	if len(client.calls) != 0 {
		t.Errorf("Expected no requests on a cancelled context, got %d", len(client.calls))
	}
	if result.FailedBatches() != 2 {
		t.Errorf("Expected every batch to be recorded as failed, got %d", result.FailedBatches())
	}
}

func TestWithBatchSize_Clamps(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{0, 1},
		{3, 3},
		{5, 5},
		{9, api.MaxHintKeywords},
	}

	for _, test := range tests {
		f := New(&fakeClient{}, api.NewSequentialExecutor(0), WithLogger(logger.Nop()), WithBatchSize(test.input))
		if f.batchSize != test.expected {
			t.Errorf("For %d, expected batch size %d, got %d", test.input, test.expected, f.batchSize)
		}
	}
}
