package models

import "fmt"

// MoveSegment removes the segment at index from and reinserts it at index to,
// then renumbers every segment 1..N by position. The input slice is not
// modified. from == to returns a renumbered copy of the input order.
func MoveSegment(segments []Segment, from, to int) ([]Segment, error) {
	n := len(segments)
	if from < 0 || from >= n || to < 0 || to >= n {
		return nil, fmt.Errorf("move %d -> %d out of range for %d segments", from, to, n)
	}

	out := make([]Segment, 0, n)
	out = append(out, segments[:from]...)
	out = append(out, segments[from+1:]...)

	moved := segments[from]
	out = append(out, Segment{})
	copy(out[to+1:], out[to:])
	out[to] = moved

	Renumber(out)
	return out, nil
}

// Renumber assigns line numbers 1..N in slice order.
func Renumber(segments []Segment) {
	for i := range segments {
		segments[i].LineNumber = i + 1
	}
}
