// Package editor orchestrates one cut: probe, extract, scan, segment,
// assemble, and serialize, reporting progress along the way.
package editor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"gitlab.com/mathbou/autocut/internal/audio"
	"gitlab.com/mathbou/autocut/internal/cut"
	"gitlab.com/mathbou/autocut/internal/fcpxml"
	"gitlab.com/mathbou/autocut/internal/media"
	"gitlab.com/mathbou/autocut/internal/timecode"
	"gitlab.com/mathbou/autocut/internal/timeline"
)

// Pipeline phases reported to the progress callback.
const (
	PhaseProbe   = 1
	PhaseAnalyze = 2
	PhaseWrite   = 3
	PhaseCount   = 3
)

// ProgressFunc receives pipeline updates. phase counts from 1 to PhaseCount,
// progress runs 0 to 1 within the phase, and level is the most recently
// measured frame level in dBFS while analyzing (the silence floor otherwise).
type ProgressFunc func(phase int, phaseName string, progress, level float64)

// Options carries every input of one pipeline run. The caller resolves
// configuration and flags first; nothing here is read from global state.
type Options struct {
	// InputPath is the video (or audio) file to cut.
	InputPath string

	// AudioPaths optionally replaces the input's embedded audio as the
	// monitored sources. Each becomes an audio lane in the project.
	AudioPaths []string

	ThresholdDB   float64
	MinSilenceSec float64
	MarginFrames  int

	SampleRate           int
	DurationToleranceSec float64

	FFmpeg  string
	FFprobe string
}

// SourceStats summarizes one monitored source after scanning.
type SourceStats struct {
	Label    string
	Path     string
	Embedded bool
	PeakDB   float64
	MeanDB   float64
}

// Result captures everything a caller needs to summarize a finished run.
type Result struct {
	OutputPath string

	Rate        timecode.Rate
	Width       int
	Height      int
	DurationSec float64
	TotalFrames int

	// Params holds the effective detection parameters with the minimum
	// silence length already converted to frames.
	Params cut.Params

	// Levels is the combined per-frame sequence the engine ran on.
	Levels   []float64
	Sources  []SourceStats
	Segments []cut.Segment
	Timeline timeline.Timeline

	KeptClips     int
	RemovedClips  int
	KeptFrames    int
	RemovedFrames int
}

// source is one stream to extract and scan.
type source struct {
	path        string
	streamIndex int
	durationSec float64
	embedded    bool
}

// Process runs the whole pipeline for one input and writes the project file
// next to it. Any parameter, probe, or decode failure aborts before the
// output file exists.
func Process(ctx context.Context, opts Options, progress ProgressFunc) (*Result, error) {
	report := func(phase int, name string, fraction, level float64) {
		if progress != nil {
			progress(phase, name, fraction, level)
		}
	}

	if err := opts.validate(); err != nil {
		return nil, err
	}

	report(PhaseProbe, "Probing", 0, audio.SilenceFloorDB)

	if err := media.CheckTools(
		media.Tool{Name: "ffmpeg", Command: opts.FFmpeg},
		media.Tool{Name: "ffprobe", Command: opts.FFprobe},
	); err != nil {
		return nil, err
	}

	probe, err := media.Inspect(ctx, opts.FFprobe, opts.InputPath)
	if err != nil {
		return nil, err
	}
	video, ok := probe.VideoStream()
	if !ok {
		return nil, &media.DecodeError{Path: opts.InputPath, Err: errors.New("no video stream")}
	}
	rate, err := video.FrameRate()
	if err != nil {
		return nil, &media.DecodeError{Path: opts.InputPath, Err: err}
	}
	durationSec := probe.DurationSeconds()
	if durationSec <= 0 {
		return nil, fmt.Errorf("%s: %w", opts.InputPath, cut.ErrEmptyInput)
	}
	totalFrames := rate.FrameCount(durationSec)
	if totalFrames == 0 {
		return nil, fmt.Errorf("%s: %w", opts.InputPath, cut.ErrEmptyInput)
	}

	params := cut.Params{
		ThresholdDB:      opts.ThresholdDB,
		MinSilenceFrames: rate.FramesFromSeconds(opts.MinSilenceSec),
		MarginFrames:     opts.MarginFrames,
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	sources, err := monitoredSources(ctx, opts, probe, durationSec)
	if err != nil {
		return nil, err
	}

	report(PhaseProbe, "Probing", 1, audio.SilenceFloorDB)

	scratchDir, err := os.MkdirTemp("", "autocut-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratchDir)

	report(PhaseAnalyze, "Analyzing", 0, audio.SilenceFloorDB)

	sourceLevels, err := analyzeSources(ctx, opts, sources, scratchDir, rate, totalFrames, report)
	if err != nil {
		return nil, err
	}

	levels := audio.Combine(sourceLevels...)

	segments, err := cut.Split(levels, params)
	if err != nil {
		return nil, err
	}
	edit := timeline.Assemble(segments, rate)

	report(PhaseWrite, "Writing", 0, audio.SilenceFloorDB)

	// Lanes are only emitted for override sources; embedded audio travels
	// with the video asset itself.
	var laneLevels [][]float64
	if len(opts.AudioPaths) > 0 {
		laneLevels = sourceLevels
	}
	doc := fcpxml.Build(fcpxml.Params{
		InputPath:   opts.InputPath,
		Width:       video.CodedWidth,
		Height:      video.CodedHeight,
		Rate:        rate,
		TotalFrames: totalFrames,
		AudioPaths:  opts.AudioPaths,
		Clips:       projectClips(edit.Clips, laneLevels, opts.ThresholdDB),
	})
	outputPath := fcpxml.OutputPath(opts.InputPath)
	if err := fcpxml.Write(outputPath, doc); err != nil {
		return nil, err
	}

	report(PhaseWrite, "Writing", 1, audio.SilenceFloorDB)

	kept, removed := cut.Tally(segments)
	result := &Result{
		OutputPath:    outputPath,
		Rate:          rate,
		Width:         video.CodedWidth,
		Height:        video.CodedHeight,
		DurationSec:   durationSec,
		TotalFrames:   totalFrames,
		Params:        params,
		Levels:        levels,
		Sources:       sourceStats(sources, sourceLevels),
		Segments:      segments,
		Timeline:      edit,
		KeptClips:     len(edit.Primary()),
		RemovedClips:  len(edit.Secondary()),
		KeptFrames:    kept,
		RemovedFrames: removed,
	}
	return result, nil
}

// validate rejects out-of-domain options before any external process runs.
// The frame-domain check in Process repeats this once the rate is known.
func (o Options) validate() error {
	if o.ThresholdDB >= 0 {
		return &cut.ParameterError{Param: "threshold", Value: o.ThresholdDB, Reason: "must be below 0 dBFS"}
	}
	if o.MinSilenceSec <= 0 {
		return &cut.ParameterError{Param: "min-length", Value: o.MinSilenceSec, Reason: "must be positive"}
	}
	if o.MarginFrames < 0 {
		return &cut.ParameterError{Param: "margin", Value: o.MarginFrames, Reason: "must not be negative"}
	}
	if o.SampleRate <= 0 {
		return &cut.ParameterError{Param: "sample-rate", Value: o.SampleRate, Reason: "must be positive"}
	}
	if o.DurationToleranceSec < 0 {
		return &cut.ParameterError{Param: "duration-tolerance", Value: o.DurationToleranceSec, Reason: "must not be negative"}
	}
	return nil
}

// monitoredSources resolves which audio streams feed the engine: the given
// override files, or the input's first embedded audio stream. Overrides are
// probed so a mismatched recording fails before extraction starts.
func monitoredSources(ctx context.Context, opts Options, probe media.Result, videoSec float64) ([]source, error) {
	if len(opts.AudioPaths) == 0 {
		if len(probe.AudioStreams()) == 0 {
			return nil, &media.DecodeError{Path: opts.InputPath, Err: errors.New("no audio stream")}
		}
		return []source{{path: opts.InputPath, streamIndex: 0, durationSec: videoSec, embedded: true}}, nil
	}

	sources := make([]source, 0, len(opts.AudioPaths))
	for _, path := range opts.AudioPaths {
		probed, err := media.Inspect(ctx, opts.FFprobe, path)
		if err != nil {
			return nil, err
		}
		if len(probed.AudioStreams()) == 0 {
			return nil, &media.DecodeError{Path: path, Err: errors.New("no audio stream")}
		}
		sec := probed.DurationSeconds()
		if diff := math.Abs(sec - videoSec); diff > opts.DurationToleranceSec {
			return nil, &media.DecodeError{
				Path: path,
				Err:  fmt.Errorf("duration %.2fs differs from video %.2fs beyond %.2fs tolerance", sec, videoSec, opts.DurationToleranceSec),
			}
		}
		sources = append(sources, source{path: path, streamIndex: 0, durationSec: sec})
	}
	return sources, nil
}

// analyzeSources extracts and scans every source in parallel and returns one
// level sequence per source. Extraction counts as the first half of a
// source's progress and scanning as the second; the reported fraction is the
// mean across sources.
func analyzeSources(ctx context.Context, opts Options, sources []source, scratchDir string, rate timecode.Rate, totalFrames int, report ProgressFunc) ([][]float64, error) {
	sourceLevels := make([][]float64, len(sources))
	errs := make([]error, len(sources))
	fractions := make([]float64, len(sources))
	var mu sync.Mutex

	update := func(i int, fraction, level float64) {
		mu.Lock()
		fractions[i] = fraction
		var sum float64
		for _, f := range fractions {
			sum += f
		}
		overall := sum / float64(len(fractions))
		mu.Unlock()
		report(PhaseAnalyze, "Analyzing", overall, level)
	}

	var wg sync.WaitGroup
	for i, src := range sources {
		i, src := i, src
		wg.Add(1)
		go func() {
			defer wg.Done()
			scratch := filepath.Join(scratchDir, fmt.Sprintf("source_%d.wav", i))
			err := media.ExtractWAV(ctx, opts.FFmpeg, src.path, src.streamIndex, scratch, opts.SampleRate, src.durationSec, func(fraction float64) {
				update(i, fraction/2, audio.SilenceFloorDB)
			})
			if err != nil {
				errs[i] = &media.DecodeError{Path: src.path, Err: err}
				return
			}
			levels, err := audio.ScanWAV(scratch, rate, totalFrames, func(frame int, level float64) {
				update(i, 0.5+float64(frame+1)/float64(2*totalFrames), level)
			})
			if err != nil {
				errs[i] = &media.DecodeError{Path: src.path, Err: err}
				return
			}
			sourceLevels[i] = levels
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return sourceLevels, nil
}

// projectClips maps the assembled timeline onto serializer clips:
// primary-track clips stay on the spine, secondary-track clips are marked
// removed. When laneLevels is non-empty, each primary clip lists the lanes
// whose peak over the clip's span reaches the threshold; quiet lanes stay
// disconnected.
func projectClips(clips []timeline.Clip, laneLevels [][]float64, thresholdDB float64) []fcpxml.Clip {
	out := make([]fcpxml.Clip, 0, len(clips))
	for _, c := range clips {
		clip := fcpxml.Clip{Start: c.SourceIn, End: c.SourceOut, Removed: c.Track == timeline.TrackSecondary}
		if !clip.Removed {
			for lane, levels := range laneLevels {
				if audio.SpanPeak(levels, c.SourceIn, c.SourceOut) >= thresholdDB {
					clip.AudibleLanes = append(clip.AudibleLanes, lane)
				}
			}
		}
		out = append(out, clip)
	}
	return out
}

func sourceStats(sources []source, sourceLevels [][]float64) []SourceStats {
	stats := make([]SourceStats, len(sources))
	for i, src := range sources {
		levels := sourceLevels[i]
		var sum float64
		for _, level := range levels {
			sum += level
		}
		mean := audio.SilenceFloorDB
		if len(levels) > 0 {
			mean = sum / float64(len(levels))
		}
		stats[i] = SourceStats{
			Label:    filepath.Base(src.path),
			Path:     src.path,
			Embedded: src.embedded,
			PeakDB:   audio.SpanPeak(levels, 0, len(levels)),
			MeanDB:   mean,
		}
	}
	return stats
}
