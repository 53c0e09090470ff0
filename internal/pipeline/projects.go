package pipeline

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"article-reels/internal/models"
	"article-reels/pkg/tasks"
)

// validateArticleURL accepts absolute http(s) URLs only.
func validateArticleURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", invalid("article url is required")
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", invalid("malformed article url %q", raw)
	}
	return u.String(), nil
}

// CreateProject extracts the article at rawURL and creates a project for it.
// A project with article text starts in scripting and gets its automatic
// script generation queued.
func (c *Controller) CreateProject(ctx context.Context, rawURL string) (*models.Project, error) {
	articleURL, err := validateArticleURL(rawURL)
	if err != nil {
		return nil, err
	}

	log.Printf("Extracting article: %s", articleURL)
	article, err := c.extractor.Extract(ctx, articleURL)
	if err != nil {
		return nil, fmt.Errorf("extract article: %w", err)
	}

	title := strings.TrimSpace(article.Title)
	if title == "" {
		u, _ := url.Parse(articleURL)
		title = u.Host
	}
	return c.createProject(ctx, title, &articleURL, article.Content)
}

// CreateProjectFromText creates a project from pasted article text.
func (c *Controller) CreateProjectFromText(ctx context.Context, title, content string) (*models.Project, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, invalid("title is required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, invalid("article content is required")
	}
	return c.createProject(ctx, title, nil, content)
}

func (c *Controller) createProject(ctx context.Context, title string, articleURL *string, content string) (*models.Project, error) {
	p := &models.Project{
		ID:         uuid.NewString(),
		Title:      title,
		ArticleURL: articleURL,
		Status:     models.StatusDraft,
		VoiceType:  models.DefaultVoice,
	}
	if strings.TrimSpace(content) != "" {
		p.ArticleContent = &content
		p.Status = models.StatusScripting
	}

	if err := c.store.CreateProject(ctx, p); err != nil {
		return nil, err
	}
	log.Printf("Project %s created in status %s", p.ID, p.Status)

	if p.Status == models.StatusScripting {
		c.enqueueScript(p.ID)
	}
	return p, nil
}

// enqueueScript issues the automatic scripting trigger. An enqueue failure
// is logged only: the project stays in scripting and the sweep re-issues it.
func (c *Controller) enqueueScript(projectID string) {
	if c.tasks == nil {
		return
	}
	task, err := tasks.NewGenerateScriptTask(projectID)
	if err != nil {
		log.Printf("Error creating script task for project %s: %v", projectID, err)
		return
	}
	if _, err := c.tasks.Enqueue(task); err != nil {
		log.Printf("Error enqueuing script task for project %s: %v", projectID, err)
	}
}

// ProjectChanges are the user-editable project fields.
type ProjectChanges struct {
	Title     *string
	VoiceType *string
}

// UpdateProject edits the title or voice selection.
func (c *Controller) UpdateProject(ctx context.Context, id string, ch ProjectChanges) (*models.Project, error) {
	u := models.ProjectUpdate{}
	if ch.Title != nil {
		t := strings.TrimSpace(*ch.Title)
		if t == "" {
			return nil, invalid("title must not be empty")
		}
		u.Title = &t
	}
	if ch.VoiceType != nil {
		v, ok := models.LookupVoice(*ch.VoiceType)
		if !ok {
			return nil, invalid("unknown voice %q", *ch.VoiceType)
		}
		u.VoiceType = &v.ID
	}
	if u.Empty() {
		return nil, invalid("nothing to update")
	}

	if err := c.store.UpdateProject(ctx, id, u); err != nil {
		return nil, err
	}
	p, err := c.store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.playable(ctx, p)
}

// RenderReport is sent by the external renderer when it finishes.
type RenderReport struct {
	VideoURL string
	Error    string
}

// ReportRender records the renderer's outcome: completed with a video URL,
// or failed.
func (c *Controller) ReportRender(ctx context.Context, id string, r RenderReport) (*models.Project, error) {
	failed := strings.TrimSpace(r.Error) != ""
	if !failed {
		u, err := url.ParseRequestURI(strings.TrimSpace(r.VideoURL))
		if err != nil || u.Host == "" {
			return nil, invalid("video url is required")
		}
	}

	p, err := c.store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	if failed {
		log.Printf("Render failed for project %s: %s", id, r.Error)
		if err := c.setStatus(ctx, p, models.StatusFailed); err != nil {
			return nil, err
		}
		return c.playable(ctx, p)
	}

	next := models.StatusCompleted
	if !p.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, next)
	}
	videoURL := strings.TrimSpace(r.VideoURL)
	if err := c.store.UpdateProject(ctx, id, models.ProjectUpdate{Status: &next, VideoURL: &videoURL}); err != nil {
		return nil, err
	}
	log.Printf("Project %s: %s -> %s", id, p.Status, next)
	p.Status = next
	p.VideoURL = &videoURL
	return c.playable(ctx, p)
}
