// Package timeline projects final segments onto output tracks
package timeline

import (
	"fmt"

	"gitlab.com/mathbou/autocut/internal/cut"
	"gitlab.com/mathbou/autocut/internal/timecode"
)

// Track identifies the output track a clip lands on.
type Track int

const (
	// TrackPrimary carries the kept programme in original order.
	TrackPrimary Track = iota
	// TrackSecondary is the bin of removed material. Its clips keep their
	// original source positions; the track is not compacted.
	TrackSecondary
)

func (t Track) String() string {
	switch t {
	case TrackPrimary:
		return "primary"
	case TrackSecondary:
		return "secondary"
	default:
		return fmt.Sprintf("Track(%d)", int(t))
	}
}

// Clip is one segment projected onto an output track. SourceIn and
// SourceOut are frame indices into the original media; clips are never
// time-shifted, so a clip also records where it sat in the source.
type Clip struct {
	SourceIn  int
	SourceOut int
	Track     Track
}

// Frames returns the clip length.
func (c Clip) Frames() int {
	return c.SourceOut - c.SourceIn
}

// Timeline is the ordered clip list plus the frame rate serialization
// needs to convert frame indices into rational time.
type Timeline struct {
	Rate  timecode.Rate
	Clips []Clip
}

// Assemble projects segments onto the output tracks in source order: kept
// segments become primary-track clips, removed segments secondary-track
// clips. Concatenating either track's source spans reconstructs exactly
// the frames of that role; the union of both tracks reconstructs the whole
// frame range.
func Assemble(segments []cut.Segment, rate timecode.Rate) Timeline {
	clips := make([]Clip, 0, len(segments))
	for _, s := range segments {
		track := TrackPrimary
		if s.Role == cut.RoleRemoved {
			track = TrackSecondary
		}
		clips = append(clips, Clip{SourceIn: s.Start, SourceOut: s.End, Track: track})
	}
	return Timeline{Rate: rate, Clips: clips}
}

// Primary returns the kept clips in order.
func (t Timeline) Primary() []Clip {
	return t.byTrack(TrackPrimary)
}

// Secondary returns the removed clips in order.
func (t Timeline) Secondary() []Clip {
	return t.byTrack(TrackSecondary)
}

func (t Timeline) byTrack(track Track) []Clip {
	clips := make([]Clip, 0, len(t.Clips))
	for _, c := range t.Clips {
		if c.Track == track {
			clips = append(clips, c)
		}
	}
	return clips
}
