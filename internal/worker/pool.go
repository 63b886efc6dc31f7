package worker

import (
	"context"
	"sync"

	"github.com/fabriclab/sanctl/internal/log"
)

// Executor serializes mutating fabric operations. CFS and zone sessions
// are switch-global, so overlapping configuration changes from the REST
// and MCP surfaces would race each other for the lock; funneling them
// through a single worker keeps one change in flight at a time.
type Executor struct {
	jobs   chan Job
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// Job represents a unit of work
type Job struct {
	ID      string
	Handler func(context.Context) error
	Result  chan error
}

// NewExecutor creates a new serialized executor
func NewExecutor() *Executor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Executor{
		jobs:   make(chan Job, 100),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start starts the executor worker
func (e *Executor) Start() {
	e.wg.Add(1)
	go e.worker()
	log.Info("Config executor started")
}

// Stop stops the executor
func (e *Executor) Stop() {
	close(e.jobs)
	e.cancel()
	e.wg.Wait()
}

// Submit queues a job for execution
func (e *Executor) Submit(job Job) error {
	select {
	case e.jobs <- job:
		return nil
	case <-e.ctx.Done():
		return e.ctx.Err()
	}
}

// Run queues a job and waits for its result.
func (e *Executor) Run(id string, handler func(context.Context) error) error {
	result := make(chan error, 1)
	if err := e.Submit(Job{ID: id, Handler: handler, Result: result}); err != nil {
		return err
	}
	select {
	case err := <-result:
		return err
	case <-e.ctx.Done():
		return e.ctx.Err()
	}
}

// worker is the single worker goroutine
func (e *Executor) worker() {
	defer e.wg.Done()

	for {
		select {
		case <-e.ctx.Done():
			return
		case job, ok := <-e.jobs:
			if !ok {
				return
			}

			log.Debug("Executing fabric job", "job_id", job.ID)

			err := job.Handler(e.ctx)
			if job.Result != nil {
				job.Result <- err
			}
		}
	}
}
