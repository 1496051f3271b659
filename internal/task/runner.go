package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// RunnerConfig holds configuration for the task runner.
type RunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks.
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue.
	QueueSize int
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount: 2,
		QueueSize:   100,
	}
}

// Runner manages background task processing with a fixed worker pool
// draining an in-memory queue.
type Runner struct {
	taskChan   chan Task
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     RunnerConfig
	logger     *slog.Logger
}

// NewRunner creates a new Runner. Zero config fields fall back to
// defaults.
func NewRunner(config RunnerConfig, logger *slog.Logger) *Runner {
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultRunnerConfig().WorkerCount
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultRunnerConfig().QueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		taskChan:   make(chan Task, config.QueueSize),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger.With(slog.String("component", "task_runner")),
	}
}

// Submit adds a new task to the queue. It returns an error when the
// queue is full rather than blocking the caller.
func (r *Runner) Submit(task Task) error {
	select {
	case r.taskChan <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full, try again later")
	}
}

// Start launches the worker pool.
func (r *Runner) Start() {
	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.logger.Info("task runner started",
		slog.Int("worker_count", r.config.WorkerCount),
		slog.Int("queue_size", r.config.QueueSize))
}

// Stop gracefully shuts down the runner, waiting for in-flight tasks.
func (r *Runner) Stop() {
	r.cancelFunc()
	r.wg.Wait()
	close(r.taskChan)
}

// worker processes tasks from the queue until shutdown.
func (r *Runner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", slog.Int("worker_id", id))

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", slog.Int("worker_id", id))
			return

		case task, ok := <-r.taskChan:
			if !ok {
				return
			}
			r.processTask(task, id)
		}
	}
}

// processTask handles execution of a single task.
func (r *Runner) processTask(task Task, workerID int) {
	logger := r.logger.With(
		slog.String("task_id", task.ID().String()),
		slog.String("task_type", task.Type()),
		slog.Int("worker_id", workerID),
	)

	logger.Info("processing task")

	if err := task.Execute(r.ctx); err != nil {
		logger.Error("task execution failed", slog.String("error", err.Error()))
		return
	}

	logger.Info("task completed")
}
