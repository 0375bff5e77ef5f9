package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	TypeSnapshotRefresh = "snapshot:refresh"
	TypeSnapshotPrune   = "snapshot:prune"
)

// TaskPayload is the common payload for all tasks
type TaskPayload struct {
	Kind string `json:"kind,omitempty"`
}

// NewSnapshotRefreshTask creates a task that pulls one listing kind from the
// backend into the cache
func NewSnapshotRefreshTask(kind string) (*asynq.Task, error) {
	payload, err := json.Marshal(TaskPayload{Kind: kind})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeSnapshotRefresh, payload), nil
}

// NewSnapshotPruneTask creates a task that prunes old snapshots of one kind
func NewSnapshotPruneTask(kind string) (*asynq.Task, error) {
	payload, err := json.Marshal(TaskPayload{Kind: kind})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeSnapshotPrune, payload), nil
}

// ParseTaskPayload parses task payload from an Asynq task
func ParseTaskPayload(task *asynq.Task) (TaskPayload, error) {
	var payload TaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payload, nil
}
