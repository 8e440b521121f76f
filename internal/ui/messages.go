package ui

// ProgressMsg represents a progress update from the editor
type ProgressMsg struct {
	Phase     int     // 1, 2 or 3
	PhaseName string  // "Probing", "Analyzing" or "Writing"
	Progress  float64 // 0.0 to 1.0
	Level     float64 // Current audio level in dBFS
}

// FileStartMsg indicates a new file has started processing
type FileStartMsg struct {
	FileIndex int
	FileName  string
}

// FileCompleteMsg indicates a file has finished processing. ReportError
// carries a failed --logs report write; the project file itself succeeded.
type FileCompleteMsg struct {
	FileIndex      int
	KeptClips      int
	RemovedClips   int
	KeptSeconds    float64
	RemovedSeconds float64
	OutputPath     string
	ReportPath     string
	ReportError    error
	Error          error
}

// AllCompleteMsg indicates all files have been processed
type AllCompleteMsg struct{}
