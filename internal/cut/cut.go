// Package cut detects silence in per-frame audio levels and partitions the
// frame range into kept and removed segments
package cut

import (
	"errors"
	"fmt"
)

// Role classifies a segment as programme material to keep or silence to cut.
type Role int

const (
	RoleKept Role = iota
	RoleRemoved
)

func (r Role) String() string {
	switch r {
	case RoleKept:
		return "kept"
	case RoleRemoved:
		return "removed"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Segment is a half-open frame span [Start, End) carrying its final role.
// The slice returned by Split partitions the full frame range in order, and
// adjacent segments never share a role.
type Segment struct {
	Start int
	End   int
	Role  Role
}

// Frames returns the length of the span.
func (s Segment) Frames() int {
	return s.End - s.Start
}

// Params holds the detection controls. All three are passed explicitly;
// nothing is read from global state.
type Params struct {
	// ThresholdDB is the silence threshold in dBFS. A frame is silent only
	// when its level is strictly below this value; a level exactly at the
	// threshold counts as active. Must be negative.
	ThresholdDB float64

	// MinSilenceFrames is the shortest silence worth cutting; shorter silent
	// runs stay in the programme. Must be positive.
	MinSilenceFrames int

	// MarginFrames is the number of frames preserved on each side of every
	// cut so speech is never trimmed flush. May be zero.
	MarginFrames int
}

// ErrEmptyInput reports a level sequence with no frames.
var ErrEmptyInput = errors.New("empty level sequence")

// ParameterError reports a detection or configuration value outside its
// domain.
type ParameterError struct {
	Param  string
	Value  any
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Param, e.Value, e.Reason)
}

// Validate checks the parameter domains. The pipeline calls this before any
// decoding starts; Split repeats it so the engine stands alone.
func (p Params) Validate() error {
	if p.ThresholdDB >= 0 {
		return &ParameterError{Param: "threshold", Value: p.ThresholdDB, Reason: "must be below 0 dBFS"}
	}
	if p.MinSilenceFrames <= 0 {
		return &ParameterError{Param: "min-length", Value: p.MinSilenceFrames, Reason: "must be at least one frame"}
	}
	if p.MarginFrames < 0 {
		return &ParameterError{Param: "margin", Value: p.MarginFrames, Reason: "must not be negative"}
	}
	return nil
}

// run is a maximal span of consecutive frames sharing one classification.
type run struct {
	start, end int
	quiet      bool
}

// span is a half-open frame interval.
type span struct {
	start, end int
}

// Split classifies per-frame levels against the detection parameters and
// returns the ordered partition of [0, len(levels)) into kept and removed
// segments.
//
// Stages, in order: classification against the threshold, reclassification
// of silent runs shorter than the minimum, margin extension of active runs
// with transitive merging across consumed gaps, and re-derivation of the
// final partition. Split is pure: identical inputs yield identical output.
func Split(levels []float64, p Params) ([]Segment, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(levels) == 0 {
		return nil, ErrEmptyInput
	}

	runs := classify(levels, p.ThresholdDB)
	runs = absorbShortSilences(runs, p.MinSilenceFrames)
	active := extendMargins(runs, p.MarginFrames, p.MinSilenceFrames, len(levels))
	return partition(active, len(levels)), nil
}

// Tally sums segment lengths by role.
func Tally(segments []Segment) (kept, removed int) {
	for _, s := range segments {
		if s.Role == RoleKept {
			kept += s.Frames()
		} else {
			removed += s.Frames()
		}
	}
	return kept, removed
}

// classify groups consecutive frames of identical silent/active state into
// runs covering the whole range.
func classify(levels []float64, threshold float64) []run {
	runs := make([]run, 0, 16)
	for i, level := range levels {
		quiet := level < threshold
		if n := len(runs); n > 0 && runs[n-1].quiet == quiet {
			runs[n-1].end = i + 1
			continue
		}
		runs = append(runs, run{start: i, end: i + 1, quiet: quiet})
	}
	return runs
}

// absorbShortSilences reclassifies silent runs shorter than minFrames as
// active and folds the result back into maximal runs. Active runs are never
// filtered by length; a one-frame blip of speech is legitimate.
func absorbShortSilences(runs []run, minFrames int) []run {
	out := make([]run, 0, len(runs))
	for _, r := range runs {
		if r.quiet && r.end-r.start < minFrames {
			r.quiet = false
		}
		if n := len(out); n > 0 && out[n-1].quiet == r.quiet {
			out[n-1].end = r.end
			continue
		}
		out = append(out, r)
	}
	return out
}

// extendMargins grows every active run by margin frames on each side,
// clamped to [0, total). Because both neighbours take their margin from the
// silent gap between them, a gap left shorter than minFrames is consumed
// whole rather than surviving as a sliver below the minimum worth cutting.
// The single left-to-right sweep folds each extended run into the previous
// span when its gap collapses, so a chain of short gaps merges transitively
// in one pass. Leading and trailing gaps are consumed under the same rule;
// the array boundary itself never shrinks.
func extendMargins(runs []run, margin, minFrames, total int) []span {
	active := make([]span, 0, len(runs))
	for _, r := range runs {
		if r.quiet {
			continue
		}
		s := span{start: r.start - margin, end: r.end + margin}
		if s.start < 0 {
			s.start = 0
		}
		if s.end > total {
			s.end = total
		}
		if n := len(active); n > 0 && s.start-active[n-1].end < minFrames {
			if s.end > active[n-1].end {
				active[n-1].end = s.end
			}
			continue
		}
		active = append(active, s)
	}
	if len(active) > 0 {
		if first := &active[0]; first.start > 0 && first.start < minFrames {
			first.start = 0
		}
		if last := &active[len(active)-1]; last.end < total && total-last.end < minFrames {
			last.end = total
		}
	}
	return active
}

// partition rebuilds the full frame range from the merged active spans;
// everything between and around them is removed material.
func partition(active []span, total int) []Segment {
	segments := make([]Segment, 0, 2*len(active)+1)
	cursor := 0
	for _, a := range active {
		if a.start > cursor {
			segments = append(segments, Segment{Start: cursor, End: a.start, Role: RoleRemoved})
		}
		segments = append(segments, Segment{Start: a.start, End: a.end, Role: RoleKept})
		cursor = a.end
	}
	if cursor < total {
		segments = append(segments, Segment{Start: cursor, End: total, Role: RoleRemoved})
	}
	return segments
}
