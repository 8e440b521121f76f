package cut

import (
	"errors"
	"reflect"
	"testing"
)

// seq builds a level sequence from (level, count) pairs:
// seq(-10, 5, -80, 30) is five frames at -10 dB then thirty at -80 dB.
func seq(pairs ...float64) []float64 {
	var out []float64
	for i := 0; i+1 < len(pairs); i += 2 {
		for n := 0; n < int(pairs[i+1]); n++ {
			out = append(out, pairs[i])
		}
	}
	return out
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name   string
		levels []float64
		params Params
		want   []Segment
	}{
		{
			name:   "long_silence_between_speech",
			levels: seq(-10, 10, -80, 20, -10, 10),
			params: Params{ThresholdDB: -60, MinSilenceFrames: 15, MarginFrames: 0},
			want: []Segment{
				{0, 10, RoleKept},
				{10, 30, RoleRemoved},
				{30, 40, RoleKept},
			},
		},
		{
			name:   "silence_below_minimum_stays_in_programme",
			levels: seq(-10, 10, -80, 20, -10, 10),
			params: Params{ThresholdDB: -60, MinSilenceFrames: 25, MarginFrames: 0},
			want:   []Segment{{0, 40, RoleKept}},
		},
		{
			name:   "margin_shrinks_the_cut",
			levels: seq(-10, 5, -80, 30, -10, 5),
			params: Params{ThresholdDB: -60, MinSilenceFrames: 10, MarginFrames: 5},
			want: []Segment{
				{0, 10, RoleKept},
				{10, 30, RoleRemoved},
				{30, 40, RoleKept},
			},
		},
		{
			name:   "all_silent",
			levels: seq(-90, 50),
			params: Params{ThresholdDB: -60, MinSilenceFrames: 15, MarginFrames: 4},
			want:   []Segment{{0, 50, RoleRemoved}},
		},
		{
			name:   "all_silent_but_shorter_than_minimum",
			levels: seq(-90, 10),
			params: Params{ThresholdDB: -60, MinSilenceFrames: 15, MarginFrames: 4},
			want:   []Segment{{0, 10, RoleKept}},
		},
		{
			name:   "all_active",
			levels: seq(-20, 30),
			params: Params{ThresholdDB: -60, MinSilenceFrames: 5, MarginFrames: 2},
			want:   []Segment{{0, 30, RoleKept}},
		},
		{
			name:   "level_at_threshold_is_active",
			levels: seq(-60, 30, -10, 10),
			params: Params{ThresholdDB: -60, MinSilenceFrames: 5, MarginFrames: 0},
			want:   []Segment{{0, 40, RoleKept}},
		},
		{
			name:   "leading_and_trailing_silence_removed",
			levels: seq(-80, 20, -10, 10, -80, 20),
			params: Params{ThresholdDB: -60, MinSilenceFrames: 10, MarginFrames: 2},
			want: []Segment{
				{0, 18, RoleRemoved},
				{18, 32, RoleKept},
				{32, 50, RoleRemoved},
			},
		},
		{
			name: "gap_left_below_minimum_is_consumed_whole",
			// The 12-frame silence survives the minimum-length filter but
			// the margins would leave only 4 frames of it, so the cut is
			// not worth making and the neighbours merge across it.
			levels: seq(-10, 10, -80, 12, -10, 10),
			params: Params{ThresholdDB: -60, MinSilenceFrames: 10, MarginFrames: 4},
			want:   []Segment{{0, 32, RoleKept}},
		},
		{
			name:   "leading_silence_left_below_minimum_is_consumed",
			levels: seq(-80, 12, -10, 10, -80, 20),
			params: Params{ThresholdDB: -60, MinSilenceFrames: 10, MarginFrames: 4},
			want: []Segment{
				{0, 26, RoleKept},
				{26, 42, RoleRemoved},
			},
		},
		{
			name:   "one_frame_active_blip_preserved",
			levels: seq(-80, 20, -10, 1, -80, 20),
			params: Params{ThresholdDB: -60, MinSilenceFrames: 10, MarginFrames: 0},
			want: []Segment{
				{0, 20, RoleRemoved},
				{20, 21, RoleKept},
				{21, 41, RoleRemoved},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Split(tt.levels, tt.params)
			if err != nil {
				t.Fatalf("Split() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Split() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSplitTransitiveMerge(t *testing.T) {
	// Four short bursts of speech separated by three silences. Every gap
	// survives the minimum-length filter, but the margins consume each one
	// entirely, so the whole range collapses into a single kept segment in
	// one sweep.
	levels := seq(-10, 5, -80, 3, -10, 5, -80, 3, -10, 5, -80, 3, -10, 5)
	params := Params{ThresholdDB: -60, MinSilenceFrames: 2, MarginFrames: 4}

	got, err := Split(levels, params)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	want := []Segment{{0, 29, RoleKept}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split() = %v, want %v", got, want)
	}
}

func TestSplitParameterErrors(t *testing.T) {
	levels := seq(-10, 10)

	tests := []struct {
		name      string
		params    Params
		wantParam string
	}{
		{"zero_threshold", Params{ThresholdDB: 0, MinSilenceFrames: 10}, "threshold"},
		{"positive_threshold", Params{ThresholdDB: 3, MinSilenceFrames: 10}, "threshold"},
		{"zero_min_length", Params{ThresholdDB: -50, MinSilenceFrames: 0}, "min-length"},
		{"negative_min_length", Params{ThresholdDB: -50, MinSilenceFrames: -4}, "min-length"},
		{"negative_margin", Params{ThresholdDB: -50, MinSilenceFrames: 10, MarginFrames: -1}, "margin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split(levels, tt.params)
			var perr *ParameterError
			if !errors.As(err, &perr) {
				t.Fatalf("Split() error = %v, want *ParameterError", err)
			}
			if perr.Param != tt.wantParam {
				t.Errorf("ParameterError.Param = %q, want %q", perr.Param, tt.wantParam)
			}
		})
	}
}

func TestSplitEmptyInput(t *testing.T) {
	_, err := Split(nil, Params{ThresholdDB: -50, MinSilenceFrames: 10, MarginFrames: 4})
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("Split(nil) error = %v, want ErrEmptyInput", err)
	}
}

func TestSplitValidatesBeforeClassifying(t *testing.T) {
	// Parameter errors win over empty input: validation is the fail-fast
	// step the pipeline runs before any decoding.
	_, err := Split(nil, Params{ThresholdDB: 0, MinSilenceFrames: 10, MarginFrames: 4})
	var perr *ParameterError
	if !errors.As(err, &perr) {
		t.Fatalf("Split() error = %v, want *ParameterError", err)
	}
}

// syntheticLevels produces a deterministic pseudo-random sequence of loud
// and quiet stretches of varying length.
func syntheticLevels(frames int) []float64 {
	levels := make([]float64, frames)
	rngState := uint32(12345)
	quiet := false
	runLeft := 0
	for i := range levels {
		if runLeft == 0 {
			rngState = rngState*1664525 + 1013904223
			runLeft = int(rngState%97) + 3
			quiet = !quiet
		}
		rngState = rngState*1664525 + 1013904223
		jitter := float64(rngState%1000) / 100.0
		if quiet {
			levels[i] = -90 + jitter
		} else {
			levels[i] = -30 + jitter
		}
		runLeft--
	}
	return levels
}

func TestSplitInvariants(t *testing.T) {
	levels := syntheticLevels(5000)
	paramSets := []Params{
		{ThresholdDB: -60, MinSilenceFrames: 10, MarginFrames: 0},
		{ThresholdDB: -60, MinSilenceFrames: 10, MarginFrames: 4},
		{ThresholdDB: -60, MinSilenceFrames: 44, MarginFrames: 4},
		{ThresholdDB: -60, MinSilenceFrames: 5, MarginFrames: 25},
		{ThresholdDB: -35, MinSilenceFrames: 20, MarginFrames: 8},
	}

	for _, params := range paramSets {
		segments, err := Split(levels, params)
		if err != nil {
			t.Fatalf("Split(%+v) error = %v", params, err)
		}
		if len(segments) == 0 {
			t.Fatalf("Split(%+v) returned no segments", params)
		}

		// Partition: exact cover of [0, len(levels)) in order.
		cursor := 0
		for i, s := range segments {
			if s.Start != cursor {
				t.Fatalf("params %+v: segment %d starts at %d, want %d", params, i, s.Start, cursor)
			}
			if s.End <= s.Start {
				t.Fatalf("params %+v: segment %d is empty or inverted: %v", params, i, s)
			}
			cursor = s.End
		}
		if cursor != len(levels) {
			t.Fatalf("params %+v: partition ends at %d, want %d", params, cursor, len(levels))
		}

		// No two consecutive segments share a role.
		for i := 1; i < len(segments); i++ {
			if segments[i].Role == segments[i-1].Role {
				t.Fatalf("params %+v: segments %d and %d share role %v", params, i-1, i, segments[i].Role)
			}
		}

		// Every removed segment satisfies the minimum silence length.
		for _, s := range segments {
			if s.Role == RoleRemoved && s.Frames() < params.MinSilenceFrames {
				t.Fatalf("params %+v: removed segment %v shorter than minimum %d", params, s, params.MinSilenceFrames)
			}
		}

		// Pure function: identical inputs give identical output.
		again, err := Split(levels, params)
		if err != nil {
			t.Fatalf("Split(%+v) second run error = %v", params, err)
		}
		if !reflect.DeepEqual(segments, again) {
			t.Fatalf("params %+v: Split is not deterministic", params)
		}
	}
}

func TestSplitMarginLowerBound(t *testing.T) {
	// Kept segments away from the array boundary extend at least margin
	// frames beyond the raw classification boundary on each side.
	levels := seq(-80, 30, -10, 10, -80, 30, -10, 10, -80, 30)
	params := Params{ThresholdDB: -60, MinSilenceFrames: 10, MarginFrames: 3}

	segments, err := Split(levels, params)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	want := []Segment{
		{0, 27, RoleRemoved},
		{27, 43, RoleKept},
		{43, 67, RoleRemoved},
		{67, 83, RoleKept},
		{83, 110, RoleRemoved},
	}
	if !reflect.DeepEqual(segments, want) {
		t.Errorf("Split() = %v, want %v", segments, want)
	}
}

func TestTally(t *testing.T) {
	segments := []Segment{
		{0, 10, RoleKept},
		{10, 30, RoleRemoved},
		{30, 45, RoleKept},
	}
	kept, removed := Tally(segments)
	if kept != 25 || removed != 20 {
		t.Errorf("Tally() = (%d, %d), want (25, 20)", kept, removed)
	}
}

func TestRoleString(t *testing.T) {
	if got := RoleKept.String(); got != "kept" {
		t.Errorf("RoleKept.String() = %q, want %q", got, "kept")
	}
	if got := RoleRemoved.String(); got != "removed" {
		t.Errorf("RoleRemoved.String() = %q, want %q", got, "removed")
	}
}
