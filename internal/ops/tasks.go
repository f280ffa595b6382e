package ops

import (
	"context"

	"github.com/tendhq/tend/internal/config"
	"github.com/tendhq/tend/internal/db"
	"github.com/tendhq/tend/internal/errors"
	"github.com/tendhq/tend/internal/record"
)

// ListTasksInput contains parameters for the ListTasks operation.
type ListTasksInput struct {
	// Status filters by lifecycle state; empty means all.
	Status string
}

// ListTasksOutput contains the result of the ListTasks operation.
type ListTasksOutput struct {
	Tasks []record.Task `json:"tasks"`
	Count int           `json:"count"`
}

// ListTasks returns tracked tasks, newest first.
func ListTasks(ctx context.Context, store *db.Store, cfg *config.Config, input ListTasksInput) (*ListTasksOutput, error) {
	status := record.TaskStatus(input.Status)
	switch status {
	case "", record.TaskActive, record.TaskBlocked, record.TaskCompleted, record.TaskDeferred:
	default:
		return nil, errors.NewInvalidRequest("unknown task status: " + input.Status)
	}

	sctx, cancel := storageCtx(ctx, cfg)
	defer cancel()
	tasks, err := store.ListTasks(sctx, status)
	if err != nil {
		return nil, err
	}
	return &ListTasksOutput{Tasks: tasks, Count: len(tasks)}, nil
}
