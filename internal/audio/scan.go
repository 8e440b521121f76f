// Package audio measures per-frame peak levels from scratch WAV files
package audio

import (
	"fmt"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"gitlab.com/mathbou/autocut/internal/timecode"
)

// SilenceFloorDB is the digital-silence floor in dBFS. Levels are clamped
// to [SilenceFloorDB, 0]; frames with no audio report the floor.
const SilenceFloorDB = -120.0

// scanChunkSamples is the reused decode buffer size.
const scanChunkSamples = 32768

// ScanWAV reads a mono 16-bit scratch WAV and returns one peak level in
// dBFS per video frame, covering [0, totalFrames) with no missing indices.
// Frame windows are derived with exact integer sample arithmetic so NTSC
// rates stay aligned over long inputs. If the audio ends early, the
// remaining tail frames report the silence floor; samples beyond the last
// frame are ignored. progress, when non-nil, is called once per completed
// frame with its measured level.
func ScanWAV(path string, rate timecode.Rate, totalFrames int, progress func(frame int, level float64)) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("scan %s: not a valid WAV file", path)
	}
	if dec.NumChans != 1 {
		return nil, fmt.Errorf("scan %s: expected mono scratch audio, got %d channels", path, dec.NumChans)
	}
	if dec.BitDepth != 16 {
		return nil, fmt.Errorf("scan %s: expected 16-bit scratch audio, got %d-bit", path, dec.BitDepth)
	}

	sampleRate := int(dec.SampleRate)
	levels := make([]float64, totalFrames)
	for i := range levels {
		levels[i] = SilenceFloorDB
	}

	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:   make([]int, scanChunkSamples),
	}

	frame := 0
	peak := 0
	var sampleIndex int64
	nextBound := rate.SampleBound(1, sampleRate)

	flush := func() {
		level := dbfs(peak)
		levels[frame] = level
		if progress != nil {
			progress(frame, level)
		}
		peak = 0
		frame++
		nextBound = rate.SampleBound(frame+1, sampleRate)
	}

scan:
	for {
		buf.Data = buf.Data[:cap(buf.Data)]
		n, err := dec.PCMBuffer(buf)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", path, err)
		}
		if n == 0 {
			break
		}
		for _, sample := range buf.Data[:n] {
			for sampleIndex >= nextBound {
				flush()
				if frame >= totalFrames {
					break scan
				}
			}
			if sample < 0 {
				sample = -sample
			}
			if sample > peak {
				peak = sample
			}
			sampleIndex++
		}
	}

	// Audio ending mid-frame still yields a measurement for that frame.
	if frame < totalFrames && sampleIndex > rate.SampleBound(frame, sampleRate) {
		flush()
	}

	return levels, nil
}

// Combine merges per-source level sequences into one effective sequence by
// per-frame maximum: a frame is silent only when it is silent on every
// monitored source.
func Combine(sources ...[]float64) []float64 {
	if len(sources) == 0 {
		return nil
	}
	combined := append([]float64(nil), sources[0]...)
	for _, source := range sources[1:] {
		for i, level := range source {
			if i >= len(combined) {
				break
			}
			if level > combined[i] {
				combined[i] = level
			}
		}
	}
	return combined
}

// SpanPeak returns the loudest level within the frame span [start, end),
// clamped to the sequence bounds. An empty span reports the silence floor.
func SpanPeak(levels []float64, start, end int) float64 {
	if start < 0 {
		start = 0
	}
	if end > len(levels) {
		end = len(levels)
	}
	peak := SilenceFloorDB
	for i := start; i < end; i++ {
		if levels[i] > peak {
			peak = levels[i]
		}
	}
	return peak
}

// dbfs converts a peak 16-bit magnitude to dBFS, clamped to [-120, 0].
func dbfs(peak int) float64 {
	if peak <= 0 {
		return SilenceFloorDB
	}
	level := 20 * math.Log10(float64(peak)/32768.0)
	if level < SilenceFloorDB {
		return SilenceFloorDB
	}
	if level > 0 {
		return 0
	}
	return level
}
