package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestExecutorRunsJobs(t *testing.T) {
	e := NewExecutor()
	e.Start()
	defer e.Stop()

	done := make(chan error, 1)
	err := e.Submit(Job{
		ID: "test-job",
		Handler: func(ctx context.Context) error {
			return nil
		},
		Result: done,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("job failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("job never completed")
	}
}

func TestExecutorRunReturnsHandlerError(t *testing.T) {
	e := NewExecutor()
	e.Start()
	defer e.Stop()

	want := errors.New("lock held")
	err := e.Run("failing-job", func(ctx context.Context) error {
		return want
	})
	if !errors.Is(err, want) {
		t.Fatalf("Run = %v, want %v", err, want)
	}
}

func TestExecutorSerializesJobs(t *testing.T) {
	e := NewExecutor()
	e.Start()
	defer e.Stop()

	var mu sync.Mutex
	var running int
	var maxRunning int

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Run("job", func(ctx context.Context) error {
				mu.Lock()
				running++
				if running > maxRunning {
					maxRunning = running
				}
				mu.Unlock()

				time.Sleep(5 * time.Millisecond)

				mu.Lock()
				running--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	if maxRunning != 1 {
		t.Fatalf("observed %d concurrent jobs, want 1", maxRunning)
	}
}
