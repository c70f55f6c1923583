package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskDispatchTick = "dispatch.tick"

type DispatchTickPayload struct {
	RequestedAt time.Time `json:"requestedAt"`
}

func NewDispatchTickTask(payload DispatchTickPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDispatchTick, data), nil
}

func ParseDispatchTickPayload(task *asynq.Task) (DispatchTickPayload, error) {
	var payload DispatchTickPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return DispatchTickPayload{}, err
	}
	return payload, nil
}
