// Package ui provides the Bubbletea terminal user interface for autocut
package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// FileStatus represents the processing state of a single file
type FileStatus int

const (
	StatusQueued FileStatus = iota
	StatusProbing
	StatusAnalyzing
	StatusWriting
	StatusComplete
	StatusError
)

// FileProgress tracks progress for a single video file
type FileProgress struct {
	InputPath   string
	OutputPath  string
	ReportPath  string
	ReportError error
	Status      FileStatus

	// Phase tracking
	CurrentPhase int // 1, 2 or 3
	PhaseName    string

	// Progress tracking (percentage-based)
	Progress    float64 // 0.0 to 1.0
	StartTime   time.Time
	ElapsedTime time.Duration

	// Level statistics during analysis
	CurrentLevel float64 // Current audio level in dBFS
	PeakLevel    float64 // Peak level seen so far

	// Completion results
	KeptClips      int
	RemovedClips   int
	KeptSeconds    float64
	RemovedSeconds float64

	// Error tracking
	Error error
}

// Model is the Bubbletea model for the cutting UI
type Model struct {
	// File queue
	Files          []FileProgress
	CurrentIndex   int
	TotalFiles     int
	CompletedFiles int
	FailedFiles    int

	// Global state
	StartTime time.Time
	Done      bool

	// Channel for receiving progress updates from the editor
	ProgressChan chan tea.Msg

	// Terminal dimensions
	Width  int
	Height int
}

// NewModel creates a new UI model with the given input files
func NewModel(inputFiles []string) Model {
	files := make([]FileProgress, len(inputFiles))
	for i, path := range inputFiles {
		files[i] = FileProgress{
			InputPath: path,
			Status:    StatusQueued,
			PeakLevel: -120.0, // Initialize to digital silence
		}
	}

	return Model{
		Files:        files,
		CurrentIndex: -1, // No file processing yet
		TotalFiles:   len(inputFiles),
		StartTime:    time.Now(),
		ProgressChan: make(chan tea.Msg, 100), // Buffered channel
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return waitForProgress(m.ProgressChan)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case ProgressMsg:
		// Update the current file's progress
		if m.CurrentIndex >= 0 && m.CurrentIndex < len(m.Files) {
			m.Files[m.CurrentIndex] = updateFileProgress(m.Files[m.CurrentIndex], msg)
		}

		// Listen for the next progress message
		return m, waitForProgress(m.ProgressChan)

	case FileStartMsg:
		// Start processing next file
		m.CurrentIndex = msg.FileIndex
		m.Files[m.CurrentIndex].Status = StatusProbing
		m.Files[m.CurrentIndex].StartTime = time.Now()
		return m, waitForProgress(m.ProgressChan)

	case FileCompleteMsg:
		// Mark file as complete
		if m.CurrentIndex >= 0 && m.CurrentIndex < len(m.Files) {
			m.Files[m.CurrentIndex].Status = StatusComplete
			m.Files[m.CurrentIndex].KeptClips = msg.KeptClips
			m.Files[m.CurrentIndex].RemovedClips = msg.RemovedClips
			m.Files[m.CurrentIndex].KeptSeconds = msg.KeptSeconds
			m.Files[m.CurrentIndex].RemovedSeconds = msg.RemovedSeconds
			m.Files[m.CurrentIndex].OutputPath = msg.OutputPath
			m.Files[m.CurrentIndex].ReportPath = msg.ReportPath
			m.Files[m.CurrentIndex].ReportError = msg.ReportError
			m.Files[m.CurrentIndex].Error = msg.Error

			if msg.Error != nil {
				m.Files[m.CurrentIndex].Status = StatusError
				m.FailedFiles++
			} else {
				m.CompletedFiles++
			}
		}
		return m, waitForProgress(m.ProgressChan)

	case AllCompleteMsg:
		// All files processed
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the UI
func (m Model) View() string {
	if m.Width == 0 {
		return fmt.Sprintf("Initializing...\nFiles: %d\nCurrent: %d\n", len(m.Files), m.CurrentIndex)
	}

	if m.Done {
		return renderCompletionSummary(m)
	}

	return renderProcessingView(m)
}

// updateFileProgress updates a FileProgress based on a ProgressMsg
func updateFileProgress(fp FileProgress, msg ProgressMsg) FileProgress {
	// Reset the start time when transitioning to a new phase
	if msg.Phase != fp.CurrentPhase {
		fp.StartTime = time.Now()
	}

	fp.Progress = msg.Progress
	fp.CurrentPhase = msg.Phase
	fp.PhaseName = msg.PhaseName
	fp.ElapsedTime = time.Since(fp.StartTime)

	if msg.Level != 0 {
		fp.CurrentLevel = msg.Level
		if msg.Level > fp.PeakLevel {
			fp.PeakLevel = msg.Level
		}
	}

	switch msg.Phase {
	case 1:
		fp.Status = StatusProbing
	case 2:
		fp.Status = StatusAnalyzing
	case 3:
		fp.Status = StatusWriting
	}

	return fp
}

// waitForProgress creates a command that waits for progress messages
func waitForProgress(progressChan chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-progressChan
	}
}
