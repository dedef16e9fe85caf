package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskLeadsRefetch re-pulls the whole collection from the remote lead
// service. It is the reconciliation path for fire-and-forget mutations whose
// failures only surfaced in logs.
const TaskLeadsRefetch = "leads.refetch"

type LeadsRefetchPayload struct {
	Reason string `json:"reason"`
}

const (
	RefetchReasonPeriodic = "periodic"
	RefetchReasonManual   = "manual"
)

func NewLeadsRefetchTask(payload LeadsRefetchPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadsRefetch, data), nil
}

func ParseLeadsRefetchPayload(task *asynq.Task) (LeadsRefetchPayload, error) {
	var payload LeadsRefetchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadsRefetchPayload{}, err
	}
	return payload, nil
}
