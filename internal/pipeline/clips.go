package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"article-reels/internal/models"
)

const (
	// DefaultClipCandidates is how many clips a manual search returns.
	DefaultClipCandidates = 8
	maxClipCandidates     = 80
)

// MatchResult summarises an automatic clip match.
type MatchResult struct {
	Matched   int `json:"matched"`
	Skipped   int `json:"skipped"`
	Unmatched int `json:"unmatched"`
	Failed    int `json:"failed"`
}

// MatchClips assigns the top search result to every segment that has
// keywords, one segment at a time in line order. It is not transactional:
// a failure on one segment is recorded and the loop moves on, and clips
// already assigned are kept. Any failure is reported as a *MatchError.
func (c *Controller) MatchClips(ctx context.Context, projectID string) (MatchResult, error) {
	var res MatchResult
	if _, err := c.store.GetProject(ctx, projectID); err != nil {
		return res, err
	}
	segments, err := c.store.ListSegments(ctx, projectID)
	if err != nil {
		return res, err
	}
	if len(segments) == 0 {
		return res, invalid("project %s has no script segments", projectID)
	}

	var merr *MatchError
	fail := func(seg models.Segment, err error) {
		log.Printf("Clip match failed for segment %s (line %d): %v", seg.ID, seg.LineNumber, err)
		if merr == nil {
			merr = &MatchError{Total: len(segments)}
		}
		merr.Failed = append(merr.Failed, seg.ID)
		merr.Last = err
		res.Failed++
	}

	for _, seg := range segments {
		terms := seg.SearchTerms()
		if terms == "" {
			res.Skipped++
			continue
		}
		clips, err := c.clips.SearchClips(ctx, terms, 1)
		if err != nil {
			fail(seg, fmt.Errorf("search clips: %w", err))
			continue
		}
		if len(clips) == 0 {
			res.Unmatched++
			continue
		}
		if err := c.store.AssignClip(ctx, seg.ID, clips[0].Assignment()); err != nil {
			fail(seg, err)
			continue
		}
		res.Matched++
	}

	log.Printf("Clip matching for project %s: matched=%d skipped=%d unmatched=%d failed=%d",
		projectID, res.Matched, res.Skipped, res.Unmatched, res.Failed)
	if merr != nil {
		return res, merr
	}
	return res, nil
}

// SearchClips returns up to limit candidate clips for keywords. Zero
// candidates is not an error; the caller should retry with other keywords.
func (c *Controller) SearchClips(ctx context.Context, keywords string, limit int) ([]models.VideoClip, error) {
	keywords = strings.TrimSpace(keywords)
	if keywords == "" {
		return nil, invalid("keywords are required")
	}
	if limit <= 0 {
		limit = DefaultClipCandidates
	}
	if limit > maxClipCandidates {
		limit = maxClipCandidates
	}
	clips, err := c.clips.SearchClips(ctx, keywords, limit)
	if err != nil {
		return nil, fmt.Errorf("search clips: %w", err)
	}
	if clips == nil {
		clips = []models.VideoClip{}
	}
	return clips, nil
}

// SelectClip writes the chosen clip's url, thumbnail and duration onto the
// segment in a single update.
func (c *Controller) SelectClip(ctx context.Context, segmentID string, clip models.VideoClip) (*models.Segment, error) {
	if strings.TrimSpace(clip.URL) == "" {
		return nil, invalid("clip url is required")
	}
	if clip.Duration < 0 {
		return nil, invalid("clip duration must not be negative")
	}
	if err := c.store.AssignClip(ctx, segmentID, clip.Assignment()); err != nil {
		return nil, err
	}
	return c.store.GetSegment(ctx, segmentID)
}
