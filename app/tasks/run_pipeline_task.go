package tasks

import (
	"context"
	"log/slog"
)

type RunPipelineTask struct {
	Task
	runner PipelineRunnerInterface
}

func NewRunPipelineTask(runner PipelineRunnerInterface) *RunPipelineTask {
	return &RunPipelineTask{
		Task:   NewTask(TaskTypeRunPipeline),
		runner: runner,
	}
}

func (t *RunPipelineTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	created, err := t.runner.RunPipeline(ctx)
	if err != nil {
		return err
	}

	slog.Info("Task completed",
		"type", "RunPipeline",
		"duration", t.GetDuration(),
		"created", created)

	return nil
}
