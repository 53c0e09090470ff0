package models

import (
	"strings"
	"time"
)

// Segment is one narration line of a project's script.
type Segment struct {
	ID            string    `db:"id" json:"id"`
	ProjectID     string    `db:"project_id" json:"project_id"`
	LineNumber    int       `db:"line_number" json:"line_number"`
	Text          string    `db:"text" json:"text"`
	Keywords      *string   `db:"keywords" json:"keywords"`
	ClipURL       *string   `db:"clip_url" json:"clip_url"`
	ClipThumbnail *string   `db:"clip_thumbnail" json:"clip_thumbnail"`
	ClipDuration  float64   `db:"clip_duration" json:"clip_duration"`
	AudioStart    float64   `db:"audio_start" json:"audio_start"`
	AudioEnd      float64   `db:"audio_end" json:"audio_end"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// HasClip reports whether a clip has been assigned.
func (s *Segment) HasClip() bool {
	return s.ClipURL != nil && *s.ClipURL != ""
}

// SearchTerms returns the trimmed keywords, or "" when none are set.
func (s *Segment) SearchTerms() string {
	if s.Keywords == nil {
		return ""
	}
	return strings.TrimSpace(*s.Keywords)
}

// SegmentUpdate is a partial update of a segment's editable fields.
type SegmentUpdate struct {
	Text     *string
	Keywords *string
}

// Empty reports whether the update carries no fields.
func (u SegmentUpdate) Empty() bool {
	return u.Text == nil && u.Keywords == nil
}

// ClipAssignment is written to a segment as a single update.
type ClipAssignment struct {
	URL       string
	Thumbnail string
	Duration  float64
}

// FullText joins segment texts in the given order with single spaces.
func FullText(segments []Segment) string {
	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = s.Text
	}
	return strings.Join(parts, " ")
}
