package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"article-reels/internal/adapters"
	"article-reels/internal/db"
	"article-reels/internal/models"
)

// memStore is an in-memory Store.
type memStore struct {
	projects map[string]*models.Project
	segments map[string]*models.Segment
	failOn   map[string]error
	reorders int
}

func newMemStore() *memStore {
	return &memStore{
		projects: map[string]*models.Project{},
		segments: map[string]*models.Segment{},
		failOn:   map[string]error{},
	}
}

func (m *memStore) CreateProject(_ context.Context, p *models.Project) error {
	if err := m.failOn["CreateProject"]; err != nil {
		return err
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.projects[p.ID] = &cp
	return nil
}

func (m *memStore) GetProject(_ context.Context, id string) (*models.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", id, db.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) ListProjects(_ context.Context, limit int, status models.Status) ([]models.Project, error) {
	out := []models.Project{}
	for _, p := range m.projects {
		if status == "" || p.Status == status {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memStore) UpdateProject(_ context.Context, id string, u models.ProjectUpdate) error {
	if err := m.failOn["UpdateProject"]; err != nil {
		return err
	}
	p, ok := m.projects[id]
	if !ok {
		return db.ErrNotFound
	}
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	if u.VoiceType != nil {
		p.VoiceType = *u.VoiceType
	}
	if u.VoiceURL != nil {
		v := *u.VoiceURL
		p.VoiceURL = &v
	}
	if u.VideoURL != nil {
		v := *u.VideoURL
		p.VideoURL = &v
	}
	if u.Duration != nil {
		p.Duration = *u.Duration
	}
	p.UpdatedAt = time.Now()
	return nil
}

func (m *memStore) DeleteProject(_ context.Context, id string) error {
	if _, ok := m.projects[id]; !ok {
		return db.ErrNotFound
	}
	delete(m.projects, id)
	for sid, s := range m.segments {
		if s.ProjectID == id {
			delete(m.segments, sid)
		}
	}
	return nil
}

func (m *memStore) ListSegments(_ context.Context, projectID string) ([]models.Segment, error) {
	out := []models.Segment{}
	for _, s := range m.segments {
		if s.ProjectID == projectID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LineNumber < out[j].LineNumber })
	return out, nil
}

func (m *memStore) GetSegment(_ context.Context, id string) (*models.Segment, error) {
	s, ok := m.segments[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) CountSegments(ctx context.Context, projectID string) (int, error) {
	segs, _ := m.ListSegments(ctx, projectID)
	return len(segs), nil
}

func (m *memStore) InsertSegment(_ context.Context, seg *models.Segment) error {
	cp := *seg
	m.segments[seg.ID] = &cp
	return nil
}

func (m *memStore) UpdateSegment(_ context.Context, id string, u models.SegmentUpdate) error {
	s, ok := m.segments[id]
	if !ok {
		return db.ErrNotFound
	}
	if u.Text != nil {
		s.Text = *u.Text
	}
	if u.Keywords != nil {
		k := *u.Keywords
		s.Keywords = &k
	}
	return nil
}

func (m *memStore) AssignClip(_ context.Context, id string, clip models.ClipAssignment) error {
	if err := m.failOn["AssignClip:"+id]; err != nil {
		return err
	}
	s, ok := m.segments[id]
	if !ok {
		return db.ErrNotFound
	}
	u, th := clip.URL, clip.Thumbnail
	s.ClipURL, s.ClipThumbnail, s.ClipDuration = &u, &th, clip.Duration
	return nil
}

func (m *memStore) DeleteSegment(_ context.Context, id string) error {
	if _, ok := m.segments[id]; !ok {
		return db.ErrNotFound
	}
	delete(m.segments, id)
	return nil
}

// ReplaceSegments behaves like a transaction: a status failure leaves
// segments untouched.
func (m *memStore) ReplaceSegments(_ context.Context, projectID string, segments []models.Segment, next *models.Status) error {
	if err := m.failOn["ReplaceSegments"]; err != nil {
		return err
	}
	p, ok := m.projects[projectID]
	if !ok {
		return db.ErrNotFound
	}
	if next != nil {
		if err := m.failOn["UpdateProject"]; err != nil {
			return err
		}
		p.Status = *next
		p.UpdatedAt = time.Now()
	}
	for id, s := range m.segments {
		if s.ProjectID == projectID {
			delete(m.segments, id)
		}
	}
	for _, s := range segments {
		cp := s
		cp.ProjectID = projectID
		m.segments[s.ID] = &cp
	}
	return nil
}

func (m *memStore) ReorderSegments(_ context.Context, projectID string, segments []models.Segment) error {
	if err := m.failOn["ReorderSegments"]; err != nil {
		return err
	}
	m.reorders++
	for _, s := range segments {
		m.segments[s.ID].LineNumber = s.LineNumber
	}
	return nil
}

// seedProject stores a project with n segments whose keywords are "kw<i>".
func (m *memStore) seedProject(id string, status models.Status, n int) *models.Project {
	content := "Some article body text."
	p := &models.Project{ID: id, Title: "Story " + id, ArticleContent: &content, Status: status, VoiceType: "aria"}
	m.projects[id] = p
	for i := 0; i < n; i++ {
		kw := fmt.Sprintf("kw%d", i+1)
		sid := fmt.Sprintf("%s-s%d", id, i+1)
		m.segments[sid] = &models.Segment{
			ID: sid, ProjectID: id, LineNumber: i + 1,
			Text: fmt.Sprintf("Line %d.", i+1), Keywords: &kw,
		}
	}
	return p
}

type fakeExtractor struct {
	article adapters.Article
	err     error
	calls   int
}

func (f *fakeExtractor) Extract(_ context.Context, url string) (adapters.Article, error) {
	f.calls++
	return f.article, f.err
}

type fakeScripts struct {
	lines []adapters.ScriptLine
	err   error
	calls int
}

func (f *fakeScripts) GenerateScript(_ context.Context, content, title string) ([]adapters.ScriptLine, error) {
	f.calls++
	return f.lines, f.err
}

type fakeClips struct {
	fail    map[string]bool
	empty   map[string]bool
	queries []string
	perPage []int
}

func (f *fakeClips) SearchClips(_ context.Context, keywords string, perPage int) ([]models.VideoClip, error) {
	f.queries = append(f.queries, keywords)
	f.perPage = append(f.perPage, perPage)
	if f.fail[keywords] {
		return nil, fmt.Errorf("search-clips: connection reset: %w", adapters.ErrAdapter)
	}
	if f.empty[keywords] {
		return []models.VideoClip{}, nil
	}
	clips := []models.VideoClip{}
	for i := 0; i < perPage && i < 3; i++ {
		clips = append(clips, models.VideoClip{
			ID:        int64(i + 1),
			URL:       fmt.Sprintf("https://clips.example/%s/%d.mp4", keywords, i),
			Thumbnail: fmt.Sprintf("https://clips.example/%s/%d.jpg", keywords, i),
			Duration:  float64(10 + i),
		})
	}
	return clips, nil
}

type fakeVoice struct {
	narration adapters.Narration
	err       error
	text      string
	voice     string
}

func (f *fakeVoice) Synthesize(_ context.Context, text, voiceType string) (adapters.Narration, error) {
	f.text, f.voice = text, voiceType
	return f.narration, f.err
}

type fakeAudio struct {
	err        error
	resolveErr error
}

func (f *fakeAudio) SaveNarration(_ context.Context, projectID string, audio []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "ref://" + projectID + "/voice.mp3", nil
}

func (f *fakeAudio) Resolve(_ context.Context, ref string) (string, error) {
	if f.resolveErr != nil {
		return "", f.resolveErr
	}
	if rest, ok := strings.CutPrefix(ref, "ref://"); ok {
		return "https://storage.example/" + rest, nil
	}
	return ref, nil
}

var errBoom = errors.New("boom")
