package models

import "time"

// Project is one article-to-video conversion job.
type Project struct {
	ID             string    `db:"id" json:"id"`
	Title          string    `db:"title" json:"title"`
	ArticleURL     *string   `db:"article_url" json:"article_url"`
	ArticleContent *string   `db:"article_content" json:"article_content"`
	Status         Status    `db:"status" json:"status"`
	VoiceType      string    `db:"voice_type" json:"voice_type"`
	VoiceURL       *string   `db:"voice_url" json:"voice_url"`
	VideoURL       *string   `db:"video_url" json:"video_url"`
	Duration       int       `db:"duration" json:"duration"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// HasContent reports whether article text is available for scripting.
func (p *Project) HasContent() bool {
	return p.ArticleContent != nil && *p.ArticleContent != ""
}

// HasVoice reports whether narration audio has been generated.
func (p *Project) HasVoice() bool {
	return p.VoiceURL != nil && *p.VoiceURL != ""
}

// ProjectUpdate is a partial update. Nil fields are left unchanged.
type ProjectUpdate struct {
	Title     *string
	Status    *Status
	VoiceType *string
	VoiceURL  *string
	VideoURL  *string
	Duration  *int
}

// Empty reports whether the update carries no fields.
func (u ProjectUpdate) Empty() bool {
	return u.Title == nil && u.Status == nil && u.VoiceType == nil &&
		u.VoiceURL == nil && u.VideoURL == nil && u.Duration == nil
}
