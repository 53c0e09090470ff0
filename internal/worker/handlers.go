package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"article-reels/internal/models"
	"article-reels/pkg/tasks"
)

// Scripter runs automatic script generation for one project.
type Scripter interface {
	AutoScript(ctx context.Context, projectID string) error
}

// AwaitingScript lists projects that are in scripting with no segments.
type AwaitingScript interface {
	ListProjectsAwaitingScript(ctx context.Context) ([]models.Project, error)
}

type TaskHandler struct {
	asynqClient tasks.TaskEnqueuer
	scripter    Scripter
	projects    AwaitingScript
}

func NewTaskHandler(client tasks.TaskEnqueuer, scripter Scripter, projects AwaitingScript) *TaskHandler {
	return &TaskHandler{asynqClient: client, scripter: scripter, projects: projects}
}

func (h *TaskHandler) HandleGenerateScriptTask(ctx context.Context, t *asynq.Task) error {
	var p tasks.GenerateScriptTaskPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %v: %w", err, asynq.SkipRetry)
	}
	if p.ProjectID == "" {
		return fmt.Errorf("task payload has no project id: %w", asynq.SkipRetry)
	}

	log.Printf("Generating script for project: %s", p.ProjectID)
	if err := h.scripter.AutoScript(ctx, p.ProjectID); err != nil {
		return fmt.Errorf("failed to generate script for project %s: %w", p.ProjectID, err)
	}
	return nil
}

// HandleSweepScriptingTask re-issues the scripting trigger for every project
// left in scripting without a script, e.g. after a failed generation.
func (h *TaskHandler) HandleSweepScriptingTask(ctx context.Context, t *asynq.Task) error {
	log.Println("Sweeping projects awaiting a script...")

	projects, err := h.projects.ListProjectsAwaitingScript(ctx)
	if err != nil {
		return fmt.Errorf("failed to list projects awaiting script: %w", err)
	}

	enqueued := 0
	for _, p := range projects {
		task, err := tasks.NewGenerateScriptTask(p.ID)
		if err != nil {
			log.Printf("failed to create script task for project %s: %v", p.ID, err)
			continue
		}

		_, err = h.asynqClient.Enqueue(task)
		if errors.Is(err, asynq.ErrDuplicateTask) {
			continue
		}
		if err != nil {
			log.Printf("failed to enqueue script task for project %s: %v", p.ID, err)
			continue
		}
		enqueued++
	}

	log.Printf("Finished sweep: %d of %d projects re-queued.", enqueued, len(projects))
	return nil
}
