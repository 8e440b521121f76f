// Package timecode converts between frame indices and rational time values
package timecode

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Rate is a video frame rate expressed as the exact ratio Num/Den frames
// per second, the way ffprobe reports it ("30000/1001" for NTSC 29.97).
// Keeping the ratio instead of a float means frame arithmetic stays exact
// over arbitrarily long inputs.
type Rate struct {
	Num int64
	Den int64
}

// ParseRate parses an ffprobe rational rate string such as "25/1" or
// "30000/1001". A bare integer ("24") is accepted with an implied
// denominator of 1.
func ParseRate(s string) (Rate, error) {
	numPart, denPart, hasDen := strings.Cut(strings.TrimSpace(s), "/")

	num, err := strconv.ParseInt(strings.TrimSpace(numPart), 10, 64)
	if err != nil {
		return Rate{}, fmt.Errorf("parse frame rate %q: %w", s, err)
	}

	den := int64(1)
	if hasDen {
		den, err = strconv.ParseInt(strings.TrimSpace(denPart), 10, 64)
		if err != nil {
			return Rate{}, fmt.Errorf("parse frame rate %q: %w", s, err)
		}
	}

	rate := Rate{Num: num, Den: den}
	if !rate.Valid() {
		return Rate{}, fmt.Errorf("parse frame rate %q: not a positive rate", s)
	}
	return rate, nil
}

// Valid reports whether the rate describes a positive number of frames per
// second. ffprobe emits "0/0" for streams without timing information.
func (r Rate) Valid() bool {
	return r.Num > 0 && r.Den > 0
}

// FPS returns the rate as a float for display. Frame arithmetic never uses
// this value.
func (r Rate) FPS() float64 {
	return float64(r.Num) / float64(r.Den)
}

// String renders the rate for display: whole rates bare ("25"), fractional
// rates with two decimals ("29.97").
func (r Rate) String() string {
	if r.Num%r.Den == 0 {
		return strconv.FormatInt(r.Num/r.Den, 10)
	}
	return strconv.FormatFloat(r.FPS(), 'f', 2, 64)
}

// FramesFromSeconds converts a duration in seconds to a whole number of
// frames, rounding half up.
func (r Rate) FramesFromSeconds(seconds float64) int {
	frames := new(big.Rat).SetFloat64(seconds)
	if frames == nil || frames.Sign() < 0 {
		return 0
	}
	frames.Mul(frames, new(big.Rat).SetFrac64(r.Num, r.Den))
	frames.Add(frames, big.NewRat(1, 2))
	return int(new(big.Int).Quo(frames.Num(), frames.Denom()).Int64())
}

// FrameCount returns the number of whole frames covered by a probed
// duration in seconds (floor).
func (r Rate) FrameCount(seconds float64) int {
	frames := new(big.Rat).SetFloat64(seconds)
	if frames == nil || frames.Sign() < 0 {
		return 0
	}
	frames.Mul(frames, new(big.Rat).SetFrac64(r.Num, r.Den))
	return int(new(big.Int).Quo(frames.Num(), frames.Denom()).Int64())
}

// Seconds returns the wall-clock length of a frame span, for display only.
func (r Rate) Seconds(frames int) float64 {
	return float64(frames) * float64(r.Den) / float64(r.Num)
}

// RationalSeconds renders a frame index as a reduced rational-seconds
// string, the time format FCPXML expects: frame 10 at 30000/1001 fps is
// "1001/3000s". Whole values drop the denominator ("1s", "0s").
func (r Rate) RationalSeconds(frame int) string {
	seconds := new(big.Rat).SetFrac64(int64(frame)*r.Den, r.Num)
	return seconds.RatString() + "s"
}

// FrameDuration returns the exact length of one frame as a
// rational-seconds string ("1001/30000s" for NTSC 29.97).
func (r Rate) FrameDuration() string {
	return new(big.Rat).SetFrac64(r.Den, r.Num).RatString() + "s"
}

// Timecode renders a frame index as a non-drop-frame HH:MM:SS:FF string
// using the nominal (rounded) rate. Display only; NTSC timecodes drift from
// wall clock as NDF always does.
func (r Rate) Timecode(frame int) string {
	nominal := int(r.FPS() + 0.5)
	if nominal < 1 {
		nominal = 1
	}
	ff := frame % nominal
	totalSeconds := frame / nominal
	hh := totalSeconds / 3600
	mm := totalSeconds / 60 % 60
	ss := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hh, mm, ss, ff)
}

// SampleBound returns the index of the first audio sample belonging to the
// given frame at the given sample rate, using floor division so NTSC rates
// stay sample-aligned over long inputs.
func (r Rate) SampleBound(frame int, sampleRate int) int64 {
	return int64(frame) * int64(sampleRate) * r.Den / r.Num
}
