package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/getsendy/sendy-pipeline/app/cfg"
	"github.com/getsendy/sendy-pipeline/app/pipeline"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)
var _ PipelineRunnerInterface = (*Scheduler)(nil)

// pipelineWorkers stays at 1: a single worker keeps at most one scheduled
// pipeline run in flight, which the dedupe check depends on.
const pipelineWorkers = 1

const taskTimeout = 5 * time.Minute

type Scheduler struct {
	runner    *pipeline.Runner
	interval  time.Duration
	runMu     sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	taskQueue chan TaskInterface
}

func NewScheduler(runner *pipeline.Runner) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		runner:    runner,
		interval:  time.Duration(cfg.PipelineInterval) * time.Second,
		ctx:       ctx,
		cancel:    cancel,
		taskQueue: make(chan TaskInterface, 16),
	}
}

// RunPipeline executes ingestion followed by enrichment and generation as
// one unit. The mutex also covers manual API triggers, which bypass the
// task queue.
func (s *Scheduler) RunPipeline(ctx context.Context) (int, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	created, err := s.runner.RunIngestion(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("ingestion failed: %w", err)
	}

	if err := s.runner.RunEnrichmentAndGeneration(ctx, nil, nil); err != nil {
		return created, fmt.Errorf("enrichment and generation failed: %w", err)
	}

	return created, nil
}

func (s *Scheduler) Start() {
	for i := 0; i < pipelineWorkers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueuePipelineRun()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueuePipelineRun()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueuePipelineRun() {
	task := NewRunPipelineTask(s)
	if err := s.EnqueueTask(task); err != nil {
		slog.Warn("Failed to enqueue RunPipelineTask", "error", err)
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
