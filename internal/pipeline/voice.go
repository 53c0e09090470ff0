package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"article-reels/internal/models"
)

// GenerateVoice narrates the full script, segments joined in line order by
// single spaces, with the project's voice, and stores the audio reference and
// duration on the project. The returned project carries a playable URL.
func (c *Controller) GenerateVoice(ctx context.Context, projectID string) (*models.Project, error) {
	p, err := c.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	segments, err := c.store.ListSegments(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, invalid("project %s has no script segments", projectID)
	}
	text := models.FullText(segments)
	if strings.TrimSpace(text) == "" {
		return nil, invalid("project %s script is empty", projectID)
	}

	log.Printf("Generating voice for project %s with %s (%d words)", p.ID, p.VoiceType, len(strings.Fields(text)))
	narration, err := c.voice.Synthesize(ctx, text, p.VoiceType)
	if err != nil {
		return nil, fmt.Errorf("synthesize voice: %w", err)
	}

	voiceRef, err := c.audio.SaveNarration(ctx, p.ID, narration.Audio)
	if err != nil {
		return nil, fmt.Errorf("store narration: %w", err)
	}

	duration := narration.EstimatedDuration
	if duration <= 0 {
		duration = models.EstimateDuration(text)
	}
	if err := c.store.UpdateProject(ctx, p.ID, models.ProjectUpdate{VoiceURL: &voiceRef, Duration: &duration}); err != nil {
		return nil, err
	}
	p.VoiceURL = &voiceRef
	p.Duration = duration
	log.Printf("Voice generated for project %s: %ds", p.ID, duration)
	return c.playable(ctx, p)
}
