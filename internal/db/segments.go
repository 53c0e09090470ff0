package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"article-reels/internal/models"
)

const segmentColumns = `id, project_id, line_number, text, keywords, clip_url, clip_thumbnail, clip_duration, audio_start, audio_end, created_at, updated_at`

const insertSegment = `
	INSERT INTO script_segments (id, project_id, line_number, text, keywords, clip_url, clip_thumbnail, clip_duration, audio_start, audio_end, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

// ListSegments returns a project's segments in playback order.
func (s *Store) ListSegments(ctx context.Context, projectID string) ([]models.Segment, error) {
	segments := []models.Segment{}
	err := s.db.SelectContext(ctx, &segments,
		"SELECT "+segmentColumns+" FROM script_segments WHERE project_id = $1 ORDER BY line_number ASC, created_at ASC", projectID)
	if err != nil {
		return nil, fmt.Errorf("list segments for project %s: %w", projectID, err)
	}
	return segments, nil
}

func (s *Store) GetSegment(ctx context.Context, id string) (*models.Segment, error) {
	seg := &models.Segment{}
	err := s.db.GetContext(ctx, seg, "SELECT "+segmentColumns+" FROM script_segments WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("segment %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get segment %s: %w", id, err)
	}
	return seg, nil
}

func (s *Store) CountSegments(ctx context.Context, projectID string) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM script_segments WHERE project_id = $1", projectID); err != nil {
		return 0, fmt.Errorf("count segments for project %s: %w", projectID, err)
	}
	return n, nil
}

func (s *Store) InsertSegment(ctx context.Context, seg *models.Segment) error {
	return insertSegmentWith(ctx, s.db, seg, time.Now().UTC())
}

func insertSegmentWith(ctx context.Context, ex sqlx.ExecerContext, seg *models.Segment, now time.Time) error {
	seg.CreatedAt = now
	seg.UpdatedAt = now
	_, err := ex.ExecContext(ctx, insertSegment,
		seg.ID, seg.ProjectID, seg.LineNumber, seg.Text, seg.Keywords, seg.ClipURL, seg.ClipThumbnail,
		seg.ClipDuration, seg.AudioStart, seg.AudioEnd, seg.CreatedAt, seg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert segment %s: %w", seg.ID, err)
	}
	return nil
}

// UpdateSegment applies the non-nil fields of u and bumps updated_at.
func (s *Store) UpdateSegment(ctx context.Context, id string, u models.SegmentUpdate) error {
	sets := []string{}
	args := []interface{}{}
	add := func(col string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if u.Text != nil {
		add("text", *u.Text)
	}
	if u.Keywords != nil {
		add("keywords", *u.Keywords)
	}
	add("updated_at", time.Now().UTC())

	args = append(args, id)
	query := fmt.Sprintf("UPDATE script_segments SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update segment %s: %w", id, err)
	}
	if err := checkAffected(res); err != nil {
		return fmt.Errorf("update segment %s: %w", id, err)
	}
	return nil
}

// AssignClip writes all clip fields in one statement.
func (s *Store) AssignClip(ctx context.Context, id string, clip models.ClipAssignment) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE script_segments SET clip_url = $1, clip_thumbnail = $2, clip_duration = $3, updated_at = $4 WHERE id = $5",
		clip.URL, clip.Thumbnail, clip.Duration, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("assign clip to segment %s: %w", id, err)
	}
	if err := checkAffected(res); err != nil {
		return fmt.Errorf("assign clip to segment %s: %w", id, err)
	}
	return nil
}

func (s *Store) DeleteSegment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM script_segments WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete segment %s: %w", id, err)
	}
	if err := checkAffected(res); err != nil {
		return fmt.Errorf("delete segment %s: %w", id, err)
	}
	return nil
}

// ReplaceSegments deletes every segment of the project and inserts segments
// in one transaction, so readers never observe an empty script. When next is
// non-nil the project's status is set in the same transaction.
func (s *Store) ReplaceSegments(ctx context.Context, projectID string, segments []models.Segment, next *models.Status) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace segments: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM script_segments WHERE project_id = $1", projectID); err != nil {
		tx.Rollback()
		return fmt.Errorf("delete segments for project %s: %w", projectID, err)
	}

	now := time.Now().UTC()
	for i := range segments {
		segments[i].ProjectID = projectID
		if err := insertSegmentWith(ctx, tx, &segments[i], now); err != nil {
			tx.Rollback()
			return err
		}
	}

	if next != nil {
		res, err := tx.ExecContext(ctx, "UPDATE projects SET status = $1, updated_at = $2 WHERE id = $3", *next, now, projectID)
		if err == nil {
			err = checkAffected(res)
		}
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("set status of project %s: %w", projectID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace segments: %w", err)
	}
	return nil
}

// ReorderSegments writes each segment's line_number in one transaction.
func (s *Store) ReorderSegments(ctx context.Context, projectID string, segments []models.Segment) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reorder segments: %w", err)
	}

	now := time.Now().UTC()
	for _, seg := range segments {
		res, err := tx.ExecContext(ctx,
			"UPDATE script_segments SET line_number = $1, updated_at = $2 WHERE id = $3 AND project_id = $4",
			seg.LineNumber, now, seg.ID, projectID)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("reorder segment %s: %w", seg.ID, err)
		}
		if err := checkAffected(res); err != nil {
			tx.Rollback()
			return fmt.Errorf("reorder segment %s: %w", seg.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reorder segments: %w", err)
	}
	return nil
}
