package pipeline

import (
	"context"
	"fmt"
	"log"

	"article-reels/internal/adapters"
	"article-reels/internal/models"
	"article-reels/internal/storage"
	"article-reels/pkg/tasks"
)

// Store is the relational persistence the pipeline needs.
type Store interface {
	CreateProject(ctx context.Context, p *models.Project) error
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ListProjects(ctx context.Context, limit int, status models.Status) ([]models.Project, error)
	UpdateProject(ctx context.Context, id string, u models.ProjectUpdate) error
	DeleteProject(ctx context.Context, id string) error

	ListSegments(ctx context.Context, projectID string) ([]models.Segment, error)
	GetSegment(ctx context.Context, id string) (*models.Segment, error)
	CountSegments(ctx context.Context, projectID string) (int, error)
	InsertSegment(ctx context.Context, seg *models.Segment) error
	UpdateSegment(ctx context.Context, id string, u models.SegmentUpdate) error
	AssignClip(ctx context.Context, id string, clip models.ClipAssignment) error
	DeleteSegment(ctx context.Context, id string) error
	ReplaceSegments(ctx context.Context, projectID string, segments []models.Segment, next *models.Status) error
	ReorderSegments(ctx context.Context, projectID string, segments []models.Segment) error
}

type Extractor interface {
	Extract(ctx context.Context, url string) (adapters.Article, error)
}

type ScriptGenerator interface {
	GenerateScript(ctx context.Context, content, title string) ([]adapters.ScriptLine, error)
}

type ClipSearcher interface {
	SearchClips(ctx context.Context, keywords string, perPage int) ([]models.VideoClip, error)
}

type VoiceSynthesizer interface {
	Synthesize(ctx context.Context, text, voiceType string) (adapters.Narration, error)
}

// Deps are the collaborators of a Controller.
type Deps struct {
	Store     Store
	Extractor Extractor
	Scripts   ScriptGenerator
	Clips     ClipSearcher
	Voice     VoiceSynthesizer
	Audio     storage.AudioStore
	Tasks     tasks.TaskEnqueuer
}

// Controller drives projects through the pipeline. Every stage calls one
// external service and persists its result before the project advances.
// A failed call leaves the project status unchanged.
type Controller struct {
	store     Store
	extractor Extractor
	scripts   ScriptGenerator
	clips     ClipSearcher
	voice     VoiceSynthesizer
	audio     storage.AudioStore
	tasks     tasks.TaskEnqueuer
}

func New(d Deps) *Controller {
	return &Controller{
		store:     d.Store,
		extractor: d.Extractor,
		scripts:   d.Scripts,
		clips:     d.Clips,
		voice:     d.Voice,
		audio:     d.Audio,
		tasks:     d.Tasks,
	}
}

// setStatus moves p to next after checking the transition table.
func (c *Controller) setStatus(ctx context.Context, p *models.Project, next models.Status) error {
	if !p.Status.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, next)
	}
	if p.Status == next {
		return nil
	}
	if err := c.store.UpdateProject(ctx, p.ID, models.ProjectUpdate{Status: &next}); err != nil {
		return err
	}
	log.Printf("Project %s: %s -> %s", p.ID, p.Status, next)
	p.Status = next
	return nil
}

// ProjectView is a project with its ordered segments and derived progress.
type ProjectView struct {
	Project  *models.Project  `json:"project"`
	Segments []models.Segment `json:"segments"`
	Progress models.Progress  `json:"progress"`
}

// playable swaps the stored narration reference for a URL that can be
// fetched now. The stored value is left alone.
func (c *Controller) playable(ctx context.Context, p *models.Project) (*models.Project, error) {
	if !p.HasVoice() {
		return p, nil
	}
	u, err := c.audio.Resolve(ctx, *p.VoiceURL)
	if err != nil {
		return nil, fmt.Errorf("resolve narration for project %s: %w", p.ID, err)
	}
	p.VoiceURL = &u
	return p, nil
}

func (c *Controller) GetProject(ctx context.Context, id string) (*ProjectView, error) {
	p, err := c.store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	segs, err := c.store.ListSegments(ctx, id)
	if err != nil {
		return nil, err
	}
	if p, err = c.playable(ctx, p); err != nil {
		return nil, err
	}
	return &ProjectView{Project: p, Segments: segs, Progress: models.ComputeProgress(p, segs)}, nil
}

// ListProjects returns recent projects, optionally only those in status.
func (c *Controller) ListProjects(ctx context.Context, limit int, status models.Status) ([]models.Project, error) {
	projects, err := c.store.ListProjects(ctx, limit, status)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if _, err := c.playable(ctx, &projects[i]); err != nil {
			return nil, err
		}
	}
	return projects, nil
}

func (c *Controller) DeleteProject(ctx context.Context, id string) error {
	if err := c.store.DeleteProject(ctx, id); err != nil {
		return err
	}
	log.Printf("Project %s deleted", id)
	return nil
}
