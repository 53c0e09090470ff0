package models

// Step identifiers shown by the editor.
const (
	StepInput  = "input"
	StepScript = "script"
	StepClips  = "clips"
	StepVoice  = "voice"
	StepExport = "export"
)

// Progress is derived from a project and its segments; it is never stored.
type Progress struct {
	CompletedSteps []string `json:"completed_steps"`
	SegmentCount   int      `json:"segment_count"`
	ClipCount      int      `json:"clip_count"`
}

// ComputeProgress returns the completed steps for a project.
func ComputeProgress(p *Project, segments []Segment) Progress {
	prog := Progress{CompletedSteps: []string{StepInput}, SegmentCount: len(segments)}
	for i := range segments {
		if segments[i].HasClip() {
			prog.ClipCount++
		}
	}
	if prog.SegmentCount > 0 {
		prog.CompletedSteps = append(prog.CompletedSteps, StepScript)
	}
	if prog.ClipCount > 0 {
		prog.CompletedSteps = append(prog.CompletedSteps, StepClips)
	}
	if p != nil && p.HasVoice() {
		prog.CompletedSteps = append(prog.CompletedSteps, StepVoice)
	}
	if p != nil && p.Status == StatusCompleted && p.VideoURL != nil && *p.VideoURL != "" {
		prog.CompletedSteps = append(prog.CompletedSteps, StepExport)
	}
	return prog
}

// Done reports whether step is in the completed list.
func (p Progress) Done(step string) bool {
	for _, s := range p.CompletedSteps {
		if s == step {
			return true
		}
	}
	return false
}
