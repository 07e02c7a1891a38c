package catalog

import (
	"context"
	"log/slog"
	"sync"
)

// Task represents a unit of work
type Task func(ctx context.Context) error

// WorkerPool manages concurrent catalog imports
type WorkerPool struct {
	workerCount int
	taskQueue   chan Task
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	closed      bool
	closeMux    sync.Mutex
}

// NewWorkerPool creates a pool with the specified number of workers
func NewWorkerPool(workerCount int) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		workerCount: workerCount,
		taskQueue:   make(chan Task, workerCount*2),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start launches worker goroutines
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
	slog.Info("catalog worker pool started", "workers", wp.workerCount)
}

// Submit adds a task to the queue
func (wp *WorkerPool) Submit(task Task) {
	select {
	case wp.taskQueue <- task:
	case <-wp.ctx.Done():
		slog.Warn("catalog worker pool is shutting down, task rejected")
	}
}

// Wait blocks until all queued tasks complete
func (wp *WorkerPool) Wait() {
	wp.closeMux.Lock()
	if !wp.closed {
		close(wp.taskQueue)
		wp.closed = true
	}
	wp.closeMux.Unlock()

	wp.wg.Wait()
}

// Shutdown cancels all workers
func (wp *WorkerPool) Shutdown() {
	wp.cancel()
	wp.Wait()
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for {
		select {
		case task, ok := <-wp.taskQueue:
			if !ok {
				return
			}
			if err := task(wp.ctx); err != nil {
				slog.Error("catalog task failed", "worker", id, "error", err)
			}
		case <-wp.ctx.Done():
			return
		}
	}
}
