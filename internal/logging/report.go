// Package logging handles generation of analysis reports for cut projects

package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gitlab.com/mathbou/autocut/internal/audio"
	"gitlab.com/mathbou/autocut/internal/editor"
)

// writeSection writes a section header with title and dashed underline.
// The underline length matches the title length.
func writeSection(f *os.File, title string) {
	fmt.Fprintln(f, title)
	fmt.Fprintln(f, strings.Repeat("-", len(title)))
}

// ReportData contains all the information needed to generate an analysis report
type ReportData struct {
	InputPath   string
	StartTime   time.Time
	EndTime     time.Time
	ProbeTime   time.Duration
	AnalyzeTime time.Duration
	WriteTime   time.Duration
	Result      *editor.Result
}

// GenerateReport creates a detailed analysis report and saves it alongside
// the project file (project path with .fcpxml replaced by .log). It returns
// the report path.
//
// Report structure:
// 1. Header - file info and timestamp
// 2. Processing Summary - phase timings
// 3. Detection Parameters - effective threshold/min-length/margin
// 4. Monitored Sources - per-source level table
// 5. Segments - the full cut list with timecodes and peaks
// 6. Cut Summary - kept/removed totals and interpretation
func GenerateReport(data ReportData) (string, error) {
	logPath := strings.TrimSuffix(data.Result.OutputPath, filepath.Ext(data.Result.OutputPath)) + ".log"

	f, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("create log file: %w", err)
	}
	defer f.Close()

	writeReportHeader(f, data)
	writeProcessingSummary(f, data)
	writeDetectionParameters(f, data.Result)
	writeSourceTable(f, data.Result)
	writeSegmentTable(f, data.Result)
	writeCutSummary(f, data.Result)

	return logPath, nil
}

// writeReportHeader outputs the report header with file info and timestamp.
func writeReportHeader(f *os.File, data ReportData) {
	r := data.Result
	fmt.Fprintln(f, "AutoCut Analysis Report")
	fmt.Fprintln(f, "=======================")
	fmt.Fprintf(f, "File: %s\n", filepath.Base(data.InputPath))
	fmt.Fprintf(f, "Processed: %s\n", data.EndTime.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(f, "Duration: %s (%d frames @ %s fps)\n",
		formatDuration(time.Duration(r.DurationSec*float64(time.Second))), r.TotalFrames, r.Rate)
	fmt.Fprintf(f, "Project: %s\n", filepath.Base(r.OutputPath))
	fmt.Fprintln(f, "")
}

// writeProcessingSummary outputs the processing time summary for all phases.
func writeProcessingSummary(f *os.File, data ReportData) {
	writeSection(f, "Processing Summary")

	fmt.Fprintf(f, "Phase 1 (Probing):   %s\n", formatDuration(data.ProbeTime))
	fmt.Fprintf(f, "Phase 2 (Analyzing): %s\n", formatDuration(data.AnalyzeTime))
	fmt.Fprintf(f, "Phase 3 (Writing):   %s\n", formatDuration(data.WriteTime))

	totalTime := data.EndTime.Sub(data.StartTime)
	fmt.Fprintf(f, "Total:               %s", formatDuration(totalTime))

	if data.Result.DurationSec > 0 && totalTime > 0 {
		videoDuration := time.Duration(data.Result.DurationSec * float64(time.Second))
		rtf := float64(videoDuration) / float64(totalTime)
		fmt.Fprintf(f, " (%.0fx real-time)", rtf)
	}
	fmt.Fprintln(f, "")
	fmt.Fprintln(f, "")
}

// writeDetectionParameters outputs the effective engine parameters, with the
// minimum silence length shown in both frames and seconds.
func writeDetectionParameters(f *os.File, r *editor.Result) {
	writeSection(f, "Detection Parameters")

	fmt.Fprintf(f, "Threshold:       %.1f dBFS\n", r.Params.ThresholdDB)
	fmt.Fprintf(f, "Minimum silence: %d frames (%.2f s)\n",
		r.Params.MinSilenceFrames, r.Rate.Seconds(r.Params.MinSilenceFrames))
	fmt.Fprintf(f, "Margin:          %d frames\n", r.Params.MarginFrames)
	fmt.Fprintln(f, "")
}

// writeSourceTable outputs the per-source level table.
func writeSourceTable(f *os.File, r *editor.Result) {
	writeSection(f, "Monitored Sources")

	table := NewMetricTable("Peak", "Mean")
	for _, src := range r.Sources {
		label := src.Label
		if src.Embedded {
			label += " (embedded)"
		}
		table.AddRow(label, []string{
			formatMetricDB(src.PeakDB, 1),
			formatMetricDB(src.MeanDB, 1),
		}, "dBFS", "")
	}
	fmt.Fprint(f, table.String())
	fmt.Fprintln(f, "")
}

// writeSegmentTable outputs the full cut list: one row per segment with its
// role, frame span, NDF timecode span, length, and peak level.
func writeSegmentTable(f *os.File, r *editor.Result) {
	writeSection(f, "Segments")

	table := NewMetricTable("Role", "Frames", "Timecode", "Length", "Peak")
	for i, seg := range r.Segments {
		table.AddRow(fmt.Sprintf("#%d", i+1), []string{
			seg.Role.String(),
			fmt.Sprintf("%d-%d", seg.Start, seg.End),
			fmt.Sprintf("%s - %s", r.Rate.Timecode(seg.Start), r.Rate.Timecode(seg.End)),
			fmt.Sprintf("%.1fs", r.Rate.Seconds(seg.Frames())),
			formatMetricDB(audio.SpanPeak(r.Levels, seg.Start, seg.End), 1),
		}, "", "")
	}
	fmt.Fprint(f, table.String())
	fmt.Fprintln(f, "")
}

// writeCutSummary outputs kept/removed totals with percentages and a
// one-line reading of the cut density.
func writeCutSummary(f *os.File, r *editor.Result) {
	writeSection(f, "Cut Summary")

	total := r.KeptFrames + r.RemovedFrames
	keptPct, removedPct := 0.0, 0.0
	if total > 0 {
		keptPct = 100 * float64(r.KeptFrames) / float64(total)
		removedPct = 100 * float64(r.RemovedFrames) / float64(total)
	}

	fmt.Fprintf(f, "Kept:    %d clips, %s (%.1f%%)\n",
		r.KeptClips, formatDuration(time.Duration(r.Rate.Seconds(r.KeptFrames)*float64(time.Second))), keptPct)
	fmt.Fprintf(f, "Removed: %d clips, %s (%.1f%%)\n",
		r.RemovedClips, formatDuration(time.Duration(r.Rate.Seconds(r.RemovedFrames)*float64(time.Second))), removedPct)
	fmt.Fprintf(f, "Runtime change: %s s\n", formatMetricSigned(-r.Rate.Seconds(r.RemovedFrames), 1))
	fmt.Fprintln(f, "")
	fmt.Fprintln(f, interpretCutDensity(removedPct))
}

// interpretCutDensity describes how much of the recording the cut removes.
func interpretCutDensity(removedPct float64) string {
	switch {
	case removedPct < 5:
		return "Barely any silence; the recording is already tight."
	case removedPct < 20:
		return "A light trim; pauses are short and purposeful."
	case removedPct < 40:
		return "A moderate cut; expect a noticeably brisker edit."
	case removedPct < 60:
		return "A heavy cut; long gaps dominate the recording."
	default:
		return "Mostly silence; check the threshold if this seems wrong."
	}
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}

	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60

	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	hours := minutes / 60
	minutes = minutes % 60
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}
