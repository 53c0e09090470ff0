package pipeline

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"

	"article-reels/internal/models"
)

// ReorderSegments moves the segment at index from to index to (0-based, in
// current playback order) and renumbers the script 1..N. All line numbers
// are written in one batch. from == to writes nothing.
func (c *Controller) ReorderSegments(ctx context.Context, projectID string, from, to int) ([]models.Segment, error) {
	if _, err := c.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	segments, err := c.store.ListSegments(ctx, projectID)
	if err != nil {
		return nil, err
	}
	n := len(segments)
	if from < 0 || from >= n || to < 0 || to >= n {
		return nil, invalid("move %d -> %d out of range for %d segments", from, to, n)
	}
	if from == to {
		return segments, nil
	}

	moved, err := models.MoveSegment(segments, from, to)
	if err != nil {
		return nil, invalid("%v", err)
	}
	if err := c.store.ReorderSegments(ctx, projectID, moved); err != nil {
		return nil, err
	}
	log.Printf("Project %s: moved segment %s from %d to %d", projectID, segments[from].ID, from, to)
	return moved, nil
}

// AddSegment appends a manual line with line number count+1.
func (c *Controller) AddSegment(ctx context.Context, projectID, text, keywords string) (*models.Segment, error) {
	if _, err := c.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	n, err := c.store.CountSegments(ctx, projectID)
	if err != nil {
		return nil, err
	}

	seg := &models.Segment{
		ID:         uuid.NewString(),
		ProjectID:  projectID,
		LineNumber: n + 1,
		Text:       strings.TrimSpace(text),
	}
	kw := strings.TrimSpace(keywords)
	seg.Keywords = &kw
	if err := c.store.InsertSegment(ctx, seg); err != nil {
		return nil, err
	}
	return seg, nil
}

// UpdateSegment edits a segment's text or keywords.
func (c *Controller) UpdateSegment(ctx context.Context, segmentID string, u models.SegmentUpdate) (*models.Segment, error) {
	if u.Empty() {
		return nil, invalid("nothing to update")
	}
	if err := c.store.UpdateSegment(ctx, segmentID, u); err != nil {
		return nil, err
	}
	return c.store.GetSegment(ctx, segmentID)
}

// DeleteSegment removes one segment. Remaining line numbers are left as they
// are; the gap closes on the next reorder or regenerate.
func (c *Controller) DeleteSegment(ctx context.Context, segmentID string) error {
	return c.store.DeleteSegment(ctx, segmentID)
}
