package media

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestCheckTools(t *testing.T) {
	t.Run("not_configured", func(t *testing.T) {
		err := CheckTools(Tool{Name: "ffmpeg", Command: "  "})
		if err == nil || !strings.Contains(err.Error(), "ffmpeg") {
			t.Errorf("CheckTools() error = %v, want one naming ffmpeg", err)
		}
	})

	t.Run("missing_binary", func(t *testing.T) {
		err := CheckTools(Tool{Name: "ffprobe", Command: "definitely-not-installed-anywhere"})
		if err == nil || !strings.Contains(err.Error(), "ffprobe") {
			t.Errorf("CheckTools() error = %v, want one naming ffprobe", err)
		}
	})

	t.Run("found_on_path", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("test fixture is a shell stub")
		}
		dir := t.TempDir()
		stub := filepath.Join(dir, "ffmpeg")
		if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
			t.Fatal(err)
		}
		t.Setenv("PATH", dir)

		if err := CheckTools(Tool{Name: "ffmpeg", Command: "ffmpeg"}, Tool{Name: "direct path", Command: stub}); err != nil {
			t.Errorf("CheckTools() error = %v, want nil", err)
		}
	})

	t.Run("first_failure_wins", func(t *testing.T) {
		err := CheckTools(
			Tool{Name: "ffmpeg", Command: "definitely-not-installed-anywhere"},
			Tool{Name: "ffprobe", Command: ""},
		)
		if err == nil || !strings.Contains(err.Error(), "ffmpeg") {
			t.Errorf("CheckTools() error = %v, want the ffmpeg failure", err)
		}
	})
}
