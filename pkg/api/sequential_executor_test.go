package api

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestSequentialExecutor_IntervalControl(t *testing.T) {
	delay := 50 * time.Millisecond
	executor := NewSequentialExecutor(delay)

	start := time.Now()
	var executionTimes []time.Time

	for i := 0; i < 3; i++ {
		err := executor.Execute(context.Background(), func() error {
			executionTimes = append(executionTimes, time.Now())
			return nil
		})

		if err != nil {
			t.Errorf("Execution %d failed: %v", i, err)
		}
	}

	if len(executionTimes) != 3 {
		t.Fatalf("Expected 3 executions, got %d", len(executionTimes))
	}

	// First execution should be immediate
	if firstDelay := executionTimes[0].Sub(start); firstDelay > 40*time.Millisecond {
		t.Errorf("First execution delayed too much: %v", firstDelay)
	}

	for i := 1; i < len(executionTimes); i++ {
		if interval := executionTimes[i].Sub(executionTimes[i-1]); interval < delay {
			t.Errorf("Execution %d interval too short: %v (expected >= %v)", i, interval, delay)
		}
	}

	// The delay also follows the last request
	if total := time.Since(start); total < 3*delay {
		t.Errorf("Expected total time >= %v, got %v", 3*delay, total)
	}
}

func TestSequentialExecutor_DelaysAfterFailure(t *testing.T) {
	delay := 40 * time.Millisecond
	executor := NewSequentialExecutor(delay)

	testError := errors.New("test error")

	start := time.Now()
	err := executor.Execute(context.Background(), func() error {
		return testError
	})

	if err != testError {
		t.Errorf("Expected test error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < delay {
		t.Errorf("Expected delay after failed request, elapsed %v", elapsed)
	}
}

func TestSequentialExecutor_ContextCancellation(t *testing.T) {
	executor := NewSequentialExecutor(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := executor.Execute(ctx, func() error {
		called = true
		return nil
	})

	if err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if called {
		t.Error("Expected function not to run on a cancelled context")
	}
}

func TestSequentialExecutor_CancelCutsDelayShort(t *testing.T) {
	executor := NewSequentialExecutor(5 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := executor.Execute(ctx, func() error { return nil }); err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Expected cancellation to end the delay early, elapsed %v", elapsed)
	}
}

func TestSequentialExecutor_ConcurrentAccess(t *testing.T) {
	executor := NewSequentialExecutor(0)

	const numGoroutines = 5
	var (
		mu      sync.Mutex
		active  int
		overlap bool
		wg      sync.WaitGroup
	)

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			executor.Execute(context.Background(), func() error {
				mu.Lock()
				active++
				if active > 1 {
					overlap = true
				}
				mu.Unlock()

				time.Sleep(5 * time.Millisecond)

				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
		}()
	}

	wg.Wait()

	if overlap {
		t.Error("Expected executions never to overlap")
	}
}
