package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeGenerateScript  = "project:script"
	TypeSweepScripting  = "projects:sweep-scripting"
	generateScriptQueue = "default"

	// scriptUniqueTTL suppresses duplicate triggers for the same project
	// while one is pending or running.
	scriptUniqueTTL = 10 * time.Minute
)

type GenerateScriptTaskPayload struct {
	ProjectID string
}

// NewGenerateScriptTask builds the auto-scripting trigger for a project that
// has just entered the scripting status. Failures are not retried; the
// project stays in scripting until the trigger is issued again.
func NewGenerateScriptTask(projectID string) (*asynq.Task, error) {
	payload, err := json.Marshal(GenerateScriptTaskPayload{ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeGenerateScript, payload,
		asynq.MaxRetry(0),
		asynq.Queue(generateScriptQueue),
		asynq.Unique(scriptUniqueTTL),
	), nil
}

func NewSweepScriptingTask() (*asynq.Task, error) {
	return asynq.NewTask(TypeSweepScripting, nil, asynq.MaxRetry(0)), nil
}
