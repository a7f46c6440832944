package tasks

import "context"

// TaskSchedulerInterface defines the interface for background task
// scheduling. Used by the main application to manage recurring pipeline
// runs.
// Example usage:
//
//	scheduler := NewScheduler(runner)
//	scheduler.Start()
//	defer scheduler.Stop()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// PipelineRunnerInterface is a serialized entry point for a full pipeline
// run (ingestion followed by enrichment and generation). Both the recurring
// task and the manual API trigger go through it, so at most one run is
// active at a time.
type PipelineRunnerInterface interface {
	RunPipeline(ctx context.Context) (int, error)
}
