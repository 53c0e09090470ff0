package models

import "fmt"

// Status is a project's position in the pipeline.
type Status string

const (
	StatusDraft           Status = "draft"
	StatusExtracting      Status = "extracting"
	StatusScripting       Status = "scripting"
	StatusMatchingClips   Status = "matching_clips"
	StatusGeneratingVoice Status = "generating_voice"
	StatusRendering       Status = "rendering"
	StatusCompleted       Status = "completed"
	StatusFailed          Status = "failed"
)

// transitions lists the statuses reachable from each status.
// matching_clips, generating_voice and rendering are reserved for the
// external renderer; no stage operation in this module sets them.
var transitions = map[Status][]Status{
	StatusDraft: {
		StatusExtracting, StatusScripting, StatusMatchingClips,
		StatusGeneratingVoice, StatusRendering, StatusCompleted, StatusFailed,
	},
	StatusExtracting:      {StatusScripting, StatusDraft, StatusFailed},
	StatusScripting:       {StatusDraft, StatusFailed},
	StatusMatchingClips:   {StatusDraft, StatusFailed},
	StatusGeneratingVoice: {StatusDraft, StatusFailed},
	StatusRendering:       {StatusCompleted, StatusFailed},
	StatusCompleted:       {StatusDraft},
	StatusFailed:          {StatusDraft},
}

// ParseStatus converts a stored value into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := transitions[st]; !ok {
		return "", fmt.Errorf("unknown project status %q", s)
	}
	return st, nil
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether a project in status s may move to next.
// Staying in the same status is always allowed.
func (s Status) CanTransition(next Status) bool {
	if s == next {
		return s.Valid()
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s Status) String() string { return string(s) }
