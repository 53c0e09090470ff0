package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"article-reels/internal/models"
)

const projectColumns = `id, title, article_url, article_content, status, voice_type, voice_url, video_url, duration, created_at, updated_at`

func (s *Store) CreateProject(ctx context.Context, p *models.Project) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, title, article_url, article_content, status, voice_type, voice_url, video_url, duration, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.Title, p.ArticleURL, p.ArticleContent, p.Status, p.VoiceType, p.VoiceURL, p.VideoURL, p.Duration, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert project %s: %w", p.ID, err)
	}
	return nil
}

func (s *Store) GetProject(ctx context.Context, id string) (*models.Project, error) {
	p := &models.Project{}
	err := s.db.GetContext(ctx, p, "SELECT "+projectColumns+" FROM projects WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", id, err)
	}
	return p, nil
}

// ListProjects returns the most recently updated projects first. A non-empty
// status restricts the list to projects in that status.
func (s *Store) ListProjects(ctx context.Context, limit int, status models.Status) ([]models.Project, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := "SELECT " + projectColumns + " FROM projects"
	args := []interface{}{}
	if status != "" {
		args = append(args, status)
		query += " WHERE status = $1"
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY updated_at DESC LIMIT $%d", len(args))

	projects := []models.Project{}
	err := s.db.SelectContext(ctx, &projects, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// ListProjectsAwaitingScript returns projects stuck in scripting with no segments.
func (s *Store) ListProjectsAwaitingScript(ctx context.Context) ([]models.Project, error) {
	projects := []models.Project{}
	err := s.db.SelectContext(ctx, &projects, `
		SELECT `+projectColumns+` FROM projects p
		WHERE p.status = $1
		  AND NOT EXISTS (SELECT 1 FROM script_segments s WHERE s.project_id = p.id)
		ORDER BY p.created_at ASC`, models.StatusScripting)
	if err != nil {
		return nil, fmt.Errorf("list projects awaiting script: %w", err)
	}
	return projects, nil
}

// UpdateProject applies the non-nil fields of u and bumps updated_at.
func (s *Store) UpdateProject(ctx context.Context, id string, u models.ProjectUpdate) error {
	sets := []string{}
	args := []interface{}{}
	add := func(col string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if u.Title != nil {
		add("title", *u.Title)
	}
	if u.Status != nil {
		add("status", *u.Status)
	}
	if u.VoiceType != nil {
		add("voice_type", *u.VoiceType)
	}
	if u.VoiceURL != nil {
		add("voice_url", *u.VoiceURL)
	}
	if u.VideoURL != nil {
		add("video_url", *u.VideoURL)
	}
	if u.Duration != nil {
		add("duration", *u.Duration)
	}
	add("updated_at", time.Now().UTC())

	args = append(args, id)
	query := fmt.Sprintf("UPDATE projects SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update project %s: %w", id, err)
	}
	if err := checkAffected(res); err != nil {
		return fmt.Errorf("update project %s: %w", id, err)
	}
	return nil
}

// DeleteProject removes a project; its segments go with it via ON DELETE CASCADE.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	if err := checkAffected(res); err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	return nil
}
