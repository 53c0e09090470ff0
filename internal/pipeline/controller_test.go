package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"article-reels/internal/adapters"
	"article-reels/internal/models"
	"article-reels/internal/test"
	"article-reels/pkg/tasks"
)

type harness struct {
	ctl       *Controller
	store     *memStore
	extractor *fakeExtractor
	scripts   *fakeScripts
	clips     *fakeClips
	voice     *fakeVoice
	audio     *fakeAudio
	enqueuer  *test.MockTaskEnqueuer
}

func newHarness() *harness {
	h := &harness{
		store:     newMemStore(),
		extractor: &fakeExtractor{},
		scripts:   &fakeScripts{},
		clips:     &fakeClips{fail: map[string]bool{}, empty: map[string]bool{}},
		voice:     &fakeVoice{},
		audio:     &fakeAudio{},
		enqueuer:  &test.MockTaskEnqueuer{},
	}
	h.ctl = New(Deps{
		Store:     h.store,
		Extractor: h.extractor,
		Scripts:   h.scripts,
		Clips:     h.clips,
		Voice:     h.voice,
		Audio:     h.audio,
		Tasks:     h.enqueuer,
	})
	return h
}

func lines(n int) []adapters.ScriptLine {
	out := make([]adapters.ScriptLine, n)
	for i := range out {
		out[i] = adapters.ScriptLine{Line: "Generated line " + string(rune('A'+i)), Keywords: "city, night"}
	}
	return out
}

func TestCreateProjectValidatesBeforeNetwork(t *testing.T) {
	for _, raw := range []string{"", "   ", "not a url", "ftp://files.example/a", "/relative/path", "https://"} {
		h := newHarness()
		_, err := h.ctl.CreateProject(context.Background(), raw)
		assert.True(t, errors.Is(err, ErrValidation), "url %q", raw)
		assert.Equal(t, 0, h.extractor.calls, "url %q", raw)
		assert.Empty(t, h.store.projects)
	}
}

func TestCreateProjectStartsScripting(t *testing.T) {
	h := newHarness()
	h.extractor.article = adapters.Article{Title: "Big News", Content: "The body."}

	p, err := h.ctl.CreateProject(context.Background(), "https://news.example/big")
	require.NoError(t, err)
	assert.Equal(t, models.StatusScripting, p.Status)
	assert.Equal(t, "Big News", p.Title)
	assert.Equal(t, "https://news.example/big", *p.ArticleURL)
	assert.Equal(t, models.DefaultVoice, p.VoiceType)

	require.Len(t, h.enqueuer.EnqueuedTasks, 1)
	assert.Equal(t, tasks.TypeGenerateScript, h.enqueuer.EnqueuedTasks[0].Type())
	assert.Contains(t, string(h.enqueuer.EnqueuedTasks[0].Payload()), p.ID)
}

func TestCreateProjectWithoutContentIsDraft(t *testing.T) {
	h := newHarness()
	h.extractor.article = adapters.Article{Content: ""}

	p, err := h.ctl.CreateProject(context.Background(), "https://news.example/empty")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, p.Status)
	assert.Equal(t, "news.example", p.Title)
	assert.Empty(t, h.enqueuer.EnqueuedTasks)
}

func TestCreateProjectExtractorFailure(t *testing.T) {
	h := newHarness()
	h.extractor.err = adapters.ErrAdapter

	_, err := h.ctl.CreateProject(context.Background(), "https://news.example/big")
	assert.True(t, errors.Is(err, ErrAdapter))
	assert.Empty(t, h.store.projects)
}

func TestCreateProjectEnqueueFailureKeepsProject(t *testing.T) {
	h := newHarness()
	h.extractor.article = adapters.Article{Title: "T", Content: "body"}
	h.enqueuer.Err = errBoom

	p, err := h.ctl.CreateProject(context.Background(), "https://news.example/big")
	require.NoError(t, err)
	assert.Equal(t, models.StatusScripting, h.store.projects[p.ID].Status)
}

func TestCreateProjectFromText(t *testing.T) {
	h := newHarness()
	_, err := h.ctl.CreateProjectFromText(context.Background(), "Title", "  ")
	assert.True(t, errors.Is(err, ErrValidation))

	p, err := h.ctl.CreateProjectFromText(context.Background(), "Title", "Pasted body")
	require.NoError(t, err)
	assert.Nil(t, p.ArticleURL)
	assert.Equal(t, models.StatusScripting, p.Status)
	assert.Len(t, h.enqueuer.EnqueuedTasks, 1)
}

func TestGenerateScriptReplacesAllSegments(t *testing.T) {
	h := newHarness()
	h.store.seedProject("p1", models.StatusScripting, 3)
	h.scripts.lines = lines(5)

	segs, err := h.ctl.GenerateScript(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, segs, 5)

	stored, _ := h.store.ListSegments(context.Background(), "p1")
	require.Len(t, stored, 5)
	for i, s := range stored {
		assert.Equal(t, i+1, s.LineNumber)
		assert.False(t, strings.HasPrefix(s.ID, "p1-s"), "old segment %s survived", s.ID)
		assert.Equal(t, "city, night", *s.Keywords)
	}
	assert.Equal(t, models.StatusDraft, h.store.projects["p1"].Status)
}

func TestGenerateScriptFailureLeavesState(t *testing.T) {
	h := newHarness()
	h.store.seedProject("p1", models.StatusScripting, 2)
	h.scripts.err = adapters.ErrAdapter

	_, err := h.ctl.GenerateScript(context.Background(), "p1")
	assert.True(t, errors.Is(err, ErrAdapter))
	assert.Equal(t, models.StatusScripting, h.store.projects["p1"].Status)
	stored, _ := h.store.ListSegments(context.Background(), "p1")
	assert.Len(t, stored, 2)
}

func TestGenerateScriptStatusFailureKeepsOldScript(t *testing.T) {
	h := newHarness()
	h.store.seedProject("p1", models.StatusScripting, 0)
	h.scripts.lines = lines(5)
	h.store.failOn["UpdateProject"] = errBoom

	_, err := h.ctl.GenerateScript(context.Background(), "p1")
	assert.True(t, errors.Is(err, errBoom))
	stored, _ := h.store.ListSegments(context.Background(), "p1")
	assert.Empty(t, stored)
	assert.Equal(t, models.StatusScripting, h.store.projects["p1"].Status)

	// Nothing was committed, so the automatic trigger still applies.
	delete(h.store.failOn, "UpdateProject")
	require.NoError(t, h.ctl.AutoScript(context.Background(), "p1"))
	assert.Equal(t, 2, h.scripts.calls)
	stored, _ = h.store.ListSegments(context.Background(), "p1")
	assert.Len(t, stored, 5)
	assert.Equal(t, models.StatusDraft, h.store.projects["p1"].Status)
}

func TestGenerateScriptEmptyResponseIsFailure(t *testing.T) {
	h := newHarness()
	h.store.seedProject("p1", models.StatusScripting, 2)
	h.scripts.lines = []adapters.ScriptLine{{Line: "  "}}

	_, err := h.ctl.GenerateScript(context.Background(), "p1")
	assert.True(t, errors.Is(err, ErrAdapter))
	stored, _ := h.store.ListSegments(context.Background(), "p1")
	assert.Len(t, stored, 2)
}

func TestGenerateScriptRequiresContent(t *testing.T) {
	h := newHarness()
	p := h.store.seedProject("p1", models.StatusDraft, 0)
	p.ArticleContent = nil

	_, err := h.ctl.GenerateScript(context.Background(), "p1")
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, 0, h.scripts.calls)
}

func TestGenerateScriptRejectsCompletedProject(t *testing.T) {
	h := newHarness()
	h.store.seedProject("p1", models.StatusCompleted, 2)
	h.scripts.lines = lines(5)

	_, err := h.ctl.GenerateScript(context.Background(), "p1")
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Equal(t, 0, h.scripts.calls)
}

func TestRegenerateScriptDiscardsClips(t *testing.T) {
	h := newHarness()
	h.store.seedProject("p1", models.StatusDraft, 2)
	clip := "https://clips.example/old.mp4"
	h.store.segments["p1-s1"].ClipURL = &clip
	h.scripts.lines = lines(6)

	segs, err := h.ctl.RegenerateScript(context.Background(), "p1")
	require.NoError(t, err)
	assert.Len(t, segs, 6)
	for _, s := range segs {
		assert.False(t, s.HasClip())
	}
	assert.Equal(t, models.StatusDraft, h.store.projects["p1"].Status)
}

func TestRegenerateScriptOnlyInDraft(t *testing.T) {
	h := newHarness()
	h.store.seedProject("p1", models.StatusScripting, 0)

	_, err := h.ctl.RegenerateScript(context.Background(), "p1")
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestAutoScript(t *testing.T) {
	h := newHarness()
	h.store.seedProject("fresh", models.StatusScripting, 0)
	h.store.seedProject("scripted", models.StatusScripting, 2)
	h.store.seedProject("draft", models.StatusDraft, 0)
	h.scripts.lines = lines(5)

	require.NoError(t, h.ctl.AutoScript(context.Background(), "scripted"))
	require.NoError(t, h.ctl.AutoScript(context.Background(), "draft"))
	assert.Equal(t, 0, h.scripts.calls)

	require.NoError(t, h.ctl.AutoScript(context.Background(), "fresh"))
	assert.Equal(t, 1, h.scripts.calls)
	assert.Equal(t, models.StatusDraft, h.store.projects["fresh"].Status)
}

func TestMatchClipsContinuesPastFailures(t *testing.T) {
	h := newHarness()
	h.store.seedProject("p1", models.StatusDraft, 3)
	h.clips.fail["kw2"] = true

	res, err := h.ctl.MatchClips(context.Background(), "p1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPartialMatch))
	assert.True(t, errors.Is(err, ErrAdapter))

	var merr *MatchError
	require.True(t, errors.As(err, &merr))
	assert.Equal(t, []string{"p1-s2"}, merr.Failed)
	assert.Equal(t, 3, merr.Total)
	assert.Equal(t, MatchResult{Matched: 2, Failed: 1}, res)

	assert.True(t, h.store.segments["p1-s1"].HasClip())
	assert.False(t, h.store.segments["p1-s2"].HasClip())
	assert.Nil(t, h.store.segments["p1-s2"].ClipThumbnail)
	assert.Equal(t, 0.0, h.store.segments["p1-s2"].ClipDuration)
	assert.True(t, h.store.segments["p1-s3"].HasClip())

	assert.Equal(t, []string{"kw1", "kw2", "kw3"}, h.clips.queries)
	assert.Equal(t, []int{1, 1, 1}, h.clips.perPage)
	assert.Equal(t, models.StatusDraft, h.store.projects["p1"].Status)
}

func TestMatchClipsSkipsEmptyKeywordsAndNoResults(t *testing.T) {
	h := newHarness()
	h.store.seedProject("p1", models.StatusDraft, 3)
	blank := "   "
	h.store.segments["p1-s1"].Keywords = &blank
	h.clips.empty["kw3"] = true

	res, err := h.ctl.MatchClips(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, MatchResult{Matched: 1, Skipped: 1, Unmatched: 1}, res)
	assert.Equal(t, []string{"kw2"}, h.clips.queries[:1])

	s2 := h.store.segments["p1-s2"]
	assert.Equal(t, "https://clips.example/kw2/0.mp4", *s2.ClipURL)
	assert.Equal(t, "https://clips.example/kw2/0.jpg", *s2.ClipThumbnail)
	assert.Equal(t, 10.0, s2.ClipDuration)
}

func TestMatchClipsAssignFailureCounts(t *testing.T) {
	h := newHarness()
	h.store.seedProject("p1", models.StatusDraft, 2)
	h.store.failOn["AssignClip:p1-s1"] = errBoom

	res, err := h.ctl.MatchClips(context.Background(), "p1")
	assert.True(t, errors.Is(err, ErrPartialMatch))
	assert.True(t, errors.Is(err, errBoom))
	assert.Equal(t, 1, res.Matched)
	assert.Equal(t, 1, res.Failed)
}

func TestMatchClipsWithoutSegments(t *testing.T) {
	h := newHarness()
	h.store.seedProject("p1", models.StatusDraft, 0)
	_, err := h.ctl.MatchClips(context.Background(), "p1")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestSearchAndSelectClip(t *testing.T) {
	h := newHarness()
	h.store.seedProject("p1", models.StatusDraft, 1)

	_, err := h.ctl.SearchClips(context.Background(), " ", 0)
	assert.True(t, errors.Is(err, ErrValidation))

	clips, err := h.ctl.SearchClips(context.Background(), "ocean", 0)
	require.NoError(t, err)
	assert.Equal(t, []int{DefaultClipCandidates}, h.clips.perPage)
	require.NotEmpty(t, clips)

	h.clips.empty["desert"] = true
	none, err := h.ctl.SearchClips(context.Background(), "desert", 4)
	require.NoError(t, err)
	assert.Empty(t, none)

	seg, err := h.ctl.SelectClip(context.Background(), "p1-s1", clips[1])
	require.NoError(t, err)
	assert.Equal(t, clips[1].URL, *seg.ClipURL)
	assert.Equal(t, clips[1].Thumbnail, *seg.ClipThumbnail)
	assert.Equal(t, clips[1].Duration, seg.ClipDuration)

	_, err = h.ctl.SelectClip(context.Background(), "p1-s1", models.VideoClip{})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestGenerateVoice(t *testing.T) {
	h := newHarness()
	p := h.store.seedProject("p1", models.StatusDraft, 3)
	p.VoiceType = "george"
	h.voice.narration = adapters.Narration{Audio: []byte("mp3"), EstimatedDuration: 0}

	got, err := h.ctl.GenerateVoice(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Line 1. Line 2. Line 3.", h.voice.text)
	assert.Equal(t, "george", h.voice.voice)
	assert.Equal(t, "https://storage.example/p1/voice.mp3", *got.VoiceURL)
	assert.Equal(t, models.EstimateDuration("Line 1. Line 2. Line 3."), got.Duration)
	assert.Equal(t, got.Duration, h.store.projects["p1"].Duration)
	assert.True(t, h.store.projects["p1"].HasVoice())
}

func TestNarrationStoredAsReferenceAndResolvedOnRead(t *testing.T) {
	h := newHarness()
	h.store.seedProject("p1", models.StatusDraft, 1)
	h.voice.narration = adapters.Narration{Audio: []byte("mp3")}

	_, err := h.ctl.GenerateVoice(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "ref://p1/voice.mp3", *h.store.projects["p1"].VoiceURL)

	view, err := h.ctl.GetProject(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "https://storage.example/p1/voice.mp3", *view.Project.VoiceURL)

	list, err := h.ctl.ListProjects(context.Background(), 10, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "https://storage.example/p1/voice.mp3", *list[0].VoiceURL)
	assert.Equal(t, "ref://p1/voice.mp3", *h.store.projects["p1"].VoiceURL)

	h.audio.resolveErr = errBoom
	_, err = h.ctl.GetProject(context.Background(), "p1")
	assert.ErrorIs(t, err, errBoom)
}

func TestGenerateVoiceUsesReportedDuration(t *testing.T) {
	h := newHarness()
	h.store.seedProject("p1", models.StatusDraft, 2)
	h.voice.narration = adapters.Narration{Audio: []byte("mp3"), EstimatedDuration: 42}

	got, err := h.ctl.GenerateVoice(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 42, got.Duration)
}

func TestGenerateVoiceFailures(t *testing.T) {
	h := newHarness()
	h.store.seedProject("empty", models.StatusDraft, 0)
	_, err := h.ctl.GenerateVoice(context.Background(), "empty")
	assert.True(t, errors.Is(err, ErrValidation))

	h.store.seedProject("p1", models.StatusDraft, 2)
	h.voice.err = adapters.ErrAdapter
	_, err = h.ctl.GenerateVoice(context.Background(), "p1")
	assert.True(t, errors.Is(err, ErrAdapter))
	assert.False(t, h.store.projects["p1"].HasVoice())

	h.voice.err = nil
	h.voice.narration = adapters.Narration{Audio: []byte("mp3")}
	h.audio.err = errBoom
	_, err = h.ctl.GenerateVoice(context.Background(), "p1")
	assert.True(t, errors.Is(err, errBoom))
	assert.False(t, h.store.projects["p1"].HasVoice())
}

func TestReorderSegments(t *testing.T) {
	h := newHarness()
	h.store.seedProject("p1", models.StatusDraft, 4)

	segs, err := h.ctl.ReorderSegments(context.Background(), "p1", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1-s2", "p1-s3", "p1-s1", "p1-s4"}, segIDs(segs))

	stored, _ := h.store.ListSegments(context.Background(), "p1")
	assert.Equal(t, []string{"p1-s2", "p1-s3", "p1-s1", "p1-s4"}, segIDs(stored))
	for i, s := range stored {
		assert.Equal(t, i+1, s.LineNumber)
	}
	assert.Equal(t, "Line 1.", stored[2].Text)
	assert.Equal(t, 1, h.store.reorders)
}

func TestReorderSameIndexWritesNothing(t *testing.T) {
	h := newHarness()
	h.store.seedProject("p1", models.StatusDraft, 3)

	segs, err := h.ctl.ReorderSegments(context.Background(), "p1", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1-s1", "p1-s2", "p1-s3"}, segIDs(segs))
	assert.Equal(t, 0, h.store.reorders)
}

func TestReorderOutOfRange(t *testing.T) {
	h := newHarness()
	h.store.seedProject("p1", models.StatusDraft, 3)
	_, err := h.ctl.ReorderSegments(context.Background(), "p1", 0, 3)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestReorderMissingProject(t *testing.T) {
	h := newHarness()
	_, err := h.ctl.ReorderSegments(context.Background(), "missing", 0, 1)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
}

func TestReorderClosesGapsLeftByDelete(t *testing.T) {
	h := newHarness()
	h.store.seedProject("p1", models.StatusDraft, 4)
	require.NoError(t, h.ctl.DeleteSegment(context.Background(), "p1-s2"))

	stored, _ := h.store.ListSegments(context.Background(), "p1")
	assert.Equal(t, []int{1, 3, 4}, lineNumbers(stored))

	segs, err := h.ctl.ReorderSegments(context.Background(), "p1", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1-s4", "p1-s1", "p1-s3"}, segIDs(segs))
	stored, _ = h.store.ListSegments(context.Background(), "p1")
	assert.Equal(t, []int{1, 2, 3}, lineNumbers(stored))
}

func TestDeleteSegmentKeepsOtherLineNumbers(t *testing.T) {
	h := newHarness()
	h.store.seedProject("p1", models.StatusDraft, 3)

	require.NoError(t, h.ctl.DeleteSegment(context.Background(), "p1-s1"))
	_, exists := h.store.segments["p1-s1"]
	assert.False(t, exists)
	stored, _ := h.store.ListSegments(context.Background(), "p1")
	assert.Equal(t, []string{"p1-s2", "p1-s3"}, segIDs(stored))
	assert.Equal(t, []int{2, 3}, lineNumbers(stored))

	assert.True(t, errors.Is(h.ctl.DeleteSegment(context.Background(), "p1-s1"), ErrNotFound))
}

func TestAddSegmentUsesCountPlusOne(t *testing.T) {
	h := newHarness()
	h.store.seedProject("p1", models.StatusDraft, 3)

	seg, err := h.ctl.AddSegment(context.Background(), "p1", "", "")
	require.NoError(t, err)
	assert.Equal(t, 4, seg.LineNumber)
	assert.Equal(t, "", seg.Text)

	_, err = h.ctl.AddSegment(context.Background(), "missing", "x", "")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUpdateSegment(t *testing.T) {
	h := newHarness()
	h.store.seedProject("p1", models.StatusDraft, 1)

	_, err := h.ctl.UpdateSegment(context.Background(), "p1-s1", models.SegmentUpdate{})
	assert.True(t, errors.Is(err, ErrValidation))

	text := "Rewritten hook."
	seg, err := h.ctl.UpdateSegment(context.Background(), "p1-s1", models.SegmentUpdate{Text: &text})
	require.NoError(t, err)
	assert.Equal(t, text, seg.Text)
	assert.Equal(t, "kw1", *seg.Keywords)
}

func TestUpdateProjectVoice(t *testing.T) {
	h := newHarness()
	h.store.seedProject("p1", models.StatusDraft, 0)

	bad := "matilda"
	_, err := h.ctl.UpdateProject(context.Background(), "p1", ProjectChanges{VoiceType: &bad})
	assert.True(t, errors.Is(err, ErrValidation))

	good := "Charlotte"
	p, err := h.ctl.UpdateProject(context.Background(), "p1", ProjectChanges{VoiceType: &good})
	require.NoError(t, err)
	assert.Equal(t, "charlotte", p.VoiceType)

	_, err = h.ctl.UpdateProject(context.Background(), "p1", ProjectChanges{})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestReportRender(t *testing.T) {
	h := newHarness()
	h.store.seedProject("p1", models.StatusRendering, 0)
	h.store.seedProject("p2", models.StatusScripting, 0)
	h.store.seedProject("p3", models.StatusRendering, 0)

	_, err := h.ctl.ReportRender(context.Background(), "p1", RenderReport{})
	assert.True(t, errors.Is(err, ErrValidation))

	p, err := h.ctl.ReportRender(context.Background(), "p1", RenderReport{VideoURL: "https://cdn.example/p1.mp4"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, p.Status)
	assert.Equal(t, "https://cdn.example/p1.mp4", *h.store.projects["p1"].VideoURL)

	_, err = h.ctl.ReportRender(context.Background(), "p2", RenderReport{VideoURL: "https://cdn.example/p2.mp4"})
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Equal(t, models.StatusScripting, h.store.projects["p2"].Status)

	p, err = h.ctl.ReportRender(context.Background(), "p3", RenderReport{Error: "encoder crashed"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, p.Status)
	assert.Nil(t, h.store.projects["p3"].VideoURL)
}

func TestGetProjectView(t *testing.T) {
	h := newHarness()
	h.store.seedProject("p1", models.StatusDraft, 2)

	v, err := h.ctl.GetProject(context.Background(), "p1")
	require.NoError(t, err)
	assert.Len(t, v.Segments, 2)
	assert.Equal(t, []string{models.StepInput, models.StepScript}, v.Progress.CompletedSteps)

	_, err = h.ctl.GetProject(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDeleteProjectCascades(t *testing.T) {
	h := newHarness()
	h.store.seedProject("p1", models.StatusDraft, 2)
	require.NoError(t, h.ctl.DeleteProject(context.Background(), "p1"))
	assert.Empty(t, h.store.segments)
}

func segIDs(segs []models.Segment) []string {
	out := make([]string, len(segs))
	for i, s := range segs {
		out[i] = s.ID
	}
	return out
}

func lineNumbers(segs []models.Segment) []int {
	out := make([]int, len(segs))
	for i, s := range segs {
		out[i] = s.LineNumber
	}
	return out
}
