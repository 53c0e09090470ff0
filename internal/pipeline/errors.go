package pipeline

import (
	"errors"
	"fmt"

	"article-reels/internal/adapters"
	"article-reels/internal/db"
)

var (
	// ErrValidation is returned before any network call when input is
	// missing or malformed. No state has changed.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when a project or segment does not exist.
	ErrNotFound = db.ErrNotFound
	// ErrInvalidTransition is returned when an operation would move a
	// project to a status its current status does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrAdapter marks a failed external service call.
	ErrAdapter = adapters.ErrAdapter
	// ErrPartialMatch is wrapped by MatchError.
	ErrPartialMatch = errors.New("clip matching partially failed")
)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// MatchError reports the segments whose clip search or assignment failed
// during an automatic match. Segments matched before or after a failure keep
// their clips.
type MatchError struct {
	Failed []string
	Total  int
	Last   error
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("clip matching failed for %d of %d segments: %v", len(e.Failed), e.Total, e.Last)
}

func (e *MatchError) Unwrap() []error {
	return []error{ErrPartialMatch, e.Last}
}
