package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"gitlab.com/mathbou/autocut/internal/cli"
	"gitlab.com/mathbou/autocut/internal/config"
	"gitlab.com/mathbou/autocut/internal/editor"
	"gitlab.com/mathbou/autocut/internal/logging"
	"gitlab.com/mathbou/autocut/internal/ui"
)

var (
	version = "0.0.1"
)

// CLI defines the command-line interface
type CLI struct {
	Version    bool     `short:"v" help:"Show version information"`
	Config     string   `short:"c" type:"path" help:"Path to TOML config file (optional)"`
	Logs       bool     `help:"Save a per-file analysis report"`
	AudioFiles []string `short:"a" name:"audio-file" type:"existingfile" help:"External audio file to monitor instead of the embedded audio (repeatable)"`
	Threshold  *float64 `short:"t" placeholder:"DB" help:"Silence threshold in dBFS"`
	MinLength  *float64 `placeholder:"SECONDS" help:"Minimum silence duration in seconds"`
	Margin     *int     `short:"m" placeholder:"FRAMES" help:"Frames kept on each side of a cut"`
	Files      []string `arg:"" name:"files" help:"Video files to process" type:"existingfile" optional:""`
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("autocut"),
		kong.Description("Silence-based rough cuts for video editing"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	// Handle version flag
	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	// Validate input
	if len(cliArgs.Files) == 0 {
		cli.PrintError("No input files specified")
		ctx.PrintUsage(false)
		os.Exit(1)
	}

	// Defaults, then config file, then environment
	cfg, err := config.Load(cliArgs.Config)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	// Flags beat everything; revalidate what they changed
	if cliArgs.Threshold != nil {
		cfg.Detect.ThresholdDB = *cliArgs.Threshold
	}
	if cliArgs.MinLength != nil {
		cfg.Detect.MinSilenceSec = *cliArgs.MinLength
	}
	if cliArgs.Margin != nil {
		cfg.Detect.MarginFrames = *cliArgs.Margin
	}
	if err := cfg.Validate(); err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	// Create the Bubbletea UI model
	model := ui.NewModel(cliArgs.Files)

	// Start the TUI
	p := tea.NewProgram(model, tea.WithAltScreen())

	// Start processing in background
	go func() {
		for i, inputPath := range cliArgs.Files {
			fileStart := time.Now()

			// Signal file start
			p.Send(ui.FileStartMsg{
				FileIndex: i,
				FileName:  inputPath,
			})

			// Create progress handler
			ph := &progressHandler{p: p}

			// Run the pipeline for this file
			opts := editor.Options{
				InputPath:            inputPath,
				AudioPaths:           cliArgs.AudioFiles,
				ThresholdDB:          cfg.Detect.ThresholdDB,
				MinSilenceSec:        cfg.Detect.MinSilenceSec,
				MarginFrames:         cfg.Detect.MarginFrames,
				SampleRate:           cfg.Audio.SampleRate,
				DurationToleranceSec: cfg.Audio.DurationToleranceSec,
				FFmpeg:               cfg.Tools.FFmpeg,
				FFprobe:              cfg.Tools.FFprobe,
			}
			result, err := editor.Process(context.Background(), opts, ph.callback)
			if err != nil {
				p.Send(ui.FileCompleteMsg{
					FileIndex: i,
					Error:     err,
				})
				continue
			}
			analyzeTime := time.Since(fileStart) - ph.probeTime - ph.writeTime

			// Generate analysis report if --logs flag is set
			reportPath := ""
			var reportErr error
			if cliArgs.Logs {
				reportPath, reportErr = logging.GenerateReport(logging.ReportData{
					InputPath:   inputPath,
					StartTime:   fileStart,
					EndTime:     time.Now(),
					ProbeTime:   ph.probeTime,
					AnalyzeTime: analyzeTime,
					WriteTime:   ph.writeTime,
					Result:      result,
				})
			}

			// Signal file complete with actual data
			p.Send(ui.FileCompleteMsg{
				FileIndex:      i,
				KeptClips:      result.KeptClips,
				RemovedClips:   result.RemovedClips,
				KeptSeconds:    result.Rate.Seconds(result.KeptFrames),
				RemovedSeconds: result.Rate.Seconds(result.RemovedFrames),
				OutputPath:     result.OutputPath,
				ReportPath:     reportPath,
				ReportError:    reportErr,
			})
		}

		// Signal all complete
		p.Send(ui.AllCompleteMsg{})
	}()

	// Run the program
	final, err := p.Run()
	if err != nil {
		cli.PrintError(fmt.Sprintf("UI error: %v", err))
		os.Exit(1)
	}
	if m, ok := final.(ui.Model); ok && m.CompletedFiles == 0 {
		os.Exit(1)
	}
}

// progressHandler forwards editor progress to the TUI and times the probe
// and write phases; analysis time is the remainder of the run.
type progressHandler struct {
	p          *tea.Program
	probeStart time.Time
	probeTime  time.Duration
	writeStart time.Time
	writeTime  time.Duration
}

func (ph *progressHandler) callback(phase int, phaseName string, progress float64, level float64) {
	// Track phase timing
	if phase == editor.PhaseProbe && progress == 0.0 {
		ph.probeStart = time.Now()
	} else if phase == editor.PhaseProbe && progress == 1.0 {
		ph.probeTime = time.Since(ph.probeStart)
	} else if phase == editor.PhaseWrite && progress == 0.0 {
		ph.writeStart = time.Now()
	} else if phase == editor.PhaseWrite && progress == 1.0 {
		ph.writeTime = time.Since(ph.writeStart)
	}

	ph.p.Send(ui.ProgressMsg{
		Phase:     phase,
		PhaseName: phaseName,
		Progress:  progress,
		Level:     level,
	})
}
