package workers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// BackgroundTask represents a background task that can be cancelled
type BackgroundTask struct {
	Name     string
	Handler  func(ctx context.Context) error
	Interval time.Duration // For periodic tasks, 0 means run once

	// Critical tasks stop the whole worker when they fail or return
	Critical bool
}

// BackgroundWorker manages and runs background tasks with graceful shutdown
type BackgroundWorker struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	err    error
}

// NewBackgroundWorker creates a new BackgroundWorker whose tasks stop when ctx is done
func NewBackgroundWorker(ctx context.Context) *BackgroundWorker {
	cctx, cancel := context.WithCancel(ctx)
	return &BackgroundWorker{
		ctx:    cctx,
		cancel: cancel,
	}
}

// Start runs task in its own goroutine
func (bw *BackgroundWorker) Start(task BackgroundTask) {
	bw.wg.Add(1)
	go func() {
		defer bw.wg.Done()
		err := bw.run(task)
		if task.Critical {
			bw.fail(task.Name, err)
		} else if err != nil {
			log.Printf("Background task '%s' error: %v", task.Name, err)
		}
	}()
}

// StartPeriodicTask runs handler now and then every interval until the worker stops
func (bw *BackgroundWorker) StartPeriodicTask(name string, interval time.Duration, handler func(ctx context.Context) error) {
	bw.Start(BackgroundTask{
		Name:     name,
		Handler:  handler,
		Interval: interval,
	})
}

// run executes a task, turning panics into errors
func (bw *BackgroundWorker) run(t BackgroundTask) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in task %s: %v", t.Name, r)
		}
	}()

	if t.Interval <= 0 {
		return t.Handler(bw.ctx)
	}

	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	// Run once immediately
	if err := t.Handler(bw.ctx); err != nil {
		log.Printf("Background task '%s' error: %v", t.Name, err)
	}

	for {
		select {
		case <-bw.ctx.Done():
			log.Printf("Background task '%s' stopping", t.Name)
			return nil
		case <-ticker.C:
			if err := t.Handler(bw.ctx); err != nil {
				log.Printf("Background task '%s' error: %v", t.Name, err)
			}
		}
	}
}

// fail records the first error of a critical task and stops the worker
func (bw *BackgroundWorker) fail(name string, err error) {
	if err != nil && !errors.Is(err, context.Canceled) {
		bw.mu.Lock()
		if bw.err == nil {
			bw.err = fmt.Errorf("task %s: %w", name, err)
		}
		bw.mu.Unlock()
	}
	bw.cancel()
}

// Done is closed when the worker is shut down or a critical task ended
func (bw *BackgroundWorker) Done() <-chan struct{} {
	return bw.ctx.Done()
}

// Shutdown gracefully stops all background tasks and returns the error of the first failed
// critical task
func (bw *BackgroundWorker) Shutdown() error {
	log.Println("Shutting down background tasks...")
	bw.cancel()
	bw.wg.Wait()
	log.Println("All background tasks stopped.")

	bw.mu.Lock()
	defer bw.mu.Unlock()
	return bw.err
}
