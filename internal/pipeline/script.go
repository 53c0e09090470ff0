package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"article-reels/internal/adapters"
	"article-reels/internal/models"
)

// GenerateScript asks the script generator for narration lines and replaces
// every segment of the project with them. A project in scripting moves to
// draft on success. On failure nothing is written.
func (c *Controller) GenerateScript(ctx context.Context, projectID string) ([]models.Segment, error) {
	p, err := c.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !p.HasContent() {
		return nil, invalid("project %s has no article content", projectID)
	}
	if p.Status != models.StatusScripting && p.Status != models.StatusDraft {
		return nil, fmt.Errorf("%w: cannot script a project in %s", ErrInvalidTransition, p.Status)
	}

	log.Printf("Generating script for project %s (%q)", p.ID, p.Title)
	lines, err := c.scripts.GenerateScript(ctx, *p.ArticleContent, p.Title)
	if err != nil {
		return nil, fmt.Errorf("generate script: %w", err)
	}

	segments := segmentsFromLines(p.ID, lines)
	if len(segments) == 0 {
		return nil, fmt.Errorf("generate script: no segments returned: %w", ErrAdapter)
	}

	// The script and the move to draft commit together.
	var next *models.Status
	if p.Status != models.StatusDraft {
		draft := models.StatusDraft
		if !p.Status.CanTransition(draft) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, draft)
		}
		next = &draft
	}
	if err := c.store.ReplaceSegments(ctx, p.ID, segments, next); err != nil {
		return nil, err
	}
	if next != nil {
		log.Printf("Project %s: %s -> %s", p.ID, p.Status, *next)
		p.Status = *next
	}
	log.Printf("Script generated for project %s: %d segments", p.ID, len(segments))
	return segments, nil
}

func segmentsFromLines(projectID string, lines []adapters.ScriptLine) []models.Segment {
	segments := make([]models.Segment, 0, len(lines))
	for _, l := range lines {
		text := strings.TrimSpace(l.Line)
		if text == "" {
			continue
		}
		seg := models.Segment{
			ID:        uuid.NewString(),
			ProjectID: projectID,
			Text:      text,
		}
		if kw := strings.TrimSpace(l.Keywords); kw != "" {
			seg.Keywords = &kw
		}
		segments = append(segments, seg)
	}
	models.Renumber(segments)
	return segments
}

// RegenerateScript discards the current script, with any clips assigned to
// it, and generates a new one. Only draft projects can be regenerated.
func (c *Controller) RegenerateScript(ctx context.Context, projectID string) ([]models.Segment, error) {
	p, err := c.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.Status != models.StatusDraft {
		return nil, fmt.Errorf("%w: regenerate requires draft, project is %s", ErrInvalidTransition, p.Status)
	}
	return c.GenerateScript(ctx, projectID)
}

// AutoScript runs script generation for a project that entered scripting
// without a script. It does nothing for any other project.
func (c *Controller) AutoScript(ctx context.Context, projectID string) error {
	p, err := c.store.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	if p.Status != models.StatusScripting {
		log.Printf("Project %s is %s, skipping automatic scripting", p.ID, p.Status)
		return nil
	}
	n, err := c.store.CountSegments(ctx, p.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("Project %s already has %d segments, skipping automatic scripting", p.ID, n)
		return nil
	}
	_, err = c.GenerateScript(ctx, p.ID)
	return err
}
